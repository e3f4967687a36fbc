package messages

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// MessageType is the 4-byte id that opens every frame on the wire.
type MessageType int32

const (
	MessageTypeInputState      MessageType = 1
	MessageTypeBoxAdded        MessageType = 2
	MessageTypeBoxUpdateMotion MessageType = 3
	MessageTypeSpawn           MessageType = 4
	MessageTypeRemoveBox       MessageType = 5
	MessageTypeSetHealth       MessageType = 6
	MessageTypeNotifyHit       MessageType = 7
	MessageTypeServerMessage   MessageType = 8
	MessageTypePing            MessageType = 9
	MessageTypeConnectionInfo  MessageType = 10
)

const (
	// HeaderSize is the size of the type id that prefixes every frame
	HeaderSize = 4
	// LengthPrefixSize is the size of the length field of variable-length payloads
	LengthPrefixSize = 4
	// MaxServerMessageLength bounds the text of a ServerMessage
	MaxServerMessageLength = 4096
	// MaxPlayerNameLength bounds the name carried by ConnectionInfo
	MaxPlayerNameLength = 64
)

const (
	boolSize  = 1
	int32Size = 4
	f64Size   = 8
	vec3Size  = 3 * f64Size
	quatSize  = 4 * f64Size
)

// payloadSizes holds the payload length of every fixed-size message type.
var payloadSizes = map[MessageType]int{
	MessageTypeInputState:      7*boolSize + 2*f64Size,
	MessageTypeBoxAdded:        int32Size + 4*vec3Size + quatSize + f64Size + boolSize + int32Size + 2*f64Size + 2*boolSize,
	MessageTypeBoxUpdateMotion: int32Size + 3*vec3Size + quatSize,
	MessageTypeSpawn:           int32Size,
	MessageTypeRemoveBox:       int32Size,
	MessageTypeSetHealth:       int32Size,
	MessageTypeNotifyHit:       2 * int32Size,
	MessageTypePing:            0,
}

// maxTextLengths holds the length limit of every variable-length message type.
var maxTextLengths = map[MessageType]int{
	MessageTypeServerMessage:  MaxServerMessageLength,
	MessageTypeConnectionInfo: MaxPlayerNameLength,
}

func (t MessageType) String() string {
	switch t {
	case MessageTypeInputState:
		return "InputState"
	case MessageTypeBoxAdded:
		return "BoxAdded"
	case MessageTypeBoxUpdateMotion:
		return "BoxUpdateMotion"
	case MessageTypeSpawn:
		return "Spawn"
	case MessageTypeRemoveBox:
		return "RemoveBox"
	case MessageTypeSetHealth:
		return "SetHealth"
	case MessageTypeNotifyHit:
		return "NotifyHit"
	case MessageTypeServerMessage:
		return "ServerMessage"
	case MessageTypePing:
		return "Ping"
	case MessageTypeConnectionInfo:
		return "ConnectionInfo"
	default:
		return fmt.Sprintf("MessageType(%d)", int32(t))
	}
}

// Known reports whether t is part of the message catalogue.
func (t MessageType) Known() bool {
	if _, ok := payloadSizes[t]; ok {
		return true
	}
	_, ok := maxTextLengths[t]
	return ok
}

// Size returns the payload length for a fixed-size message type.
// ok is false for unknown and variable-length types.
func Size(t MessageType) (size int, ok bool) {
	size, ok = payloadSizes[t]
	return size, ok
}

// Message is implemented by every type in the catalogue.
type Message interface {
	Type() MessageType
}

// InputState is the latest sampled input of a client.
// CameraX is the pitch and CameraY the yaw, both in degrees.
type InputState struct {
	Forward   bool
	Backwards bool
	Left      bool
	Right     bool
	Fire      bool
	Jump      bool
	Walk      bool
	CameraX   float64
	CameraY   float64
}

// Spawn attaches the receiving client to its character box.
type Spawn struct {
	BoxID int32
}

// BoxAdded carries the full state of a box. Size.X holds the radius of spheres.
type BoxAdded struct {
	ID                int32
	Position          mgl64.Vec3
	Size              mgl64.Vec3
	Velocity          mgl64.Vec3
	AngularVelocity   mgl64.Vec3
	Rotation          mgl64.Quat
	Mass              float64
	AffectedByPhysics bool
	TextureID         int32
	TextureMultiplier float64
	BounceMultiplier  float64
	IsSphere          bool
	IsCharacter       bool
}

// BoxUpdateMotion updates the motion state of a box already known by the client.
type BoxUpdateMotion struct {
	ID              int32
	Position        mgl64.Vec3
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Rotation        mgl64.Quat
}

type RemoveBox struct {
	BoxID int32
}

// SetHealth tells a client its own health.
type SetHealth struct {
	Health int32
}

// NotifyHit reports that a bullet fired by EmitterBoxID hit VictimBoxID.
type NotifyHit struct {
	EmitterBoxID int32
	VictimBoxID  int32
}

// ServerMessage is a text notice shown to players.
type ServerMessage struct {
	Text string
}

type Ping struct{}

// ConnectionInfo is the first message sent by a client.
type ConnectionInfo struct {
	Name string
}

func (*InputState) Type() MessageType      { return MessageTypeInputState }
func (*Spawn) Type() MessageType           { return MessageTypeSpawn }
func (*BoxAdded) Type() MessageType        { return MessageTypeBoxAdded }
func (*BoxUpdateMotion) Type() MessageType { return MessageTypeBoxUpdateMotion }
func (*RemoveBox) Type() MessageType       { return MessageTypeRemoveBox }
func (*SetHealth) Type() MessageType       { return MessageTypeSetHealth }
func (*NotifyHit) Type() MessageType       { return MessageTypeNotifyHit }
func (*ServerMessage) Type() MessageType   { return MessageTypeServerMessage }
func (*Ping) Type() MessageType            { return MessageTypePing }
func (*ConnectionInfo) Type() MessageType  { return MessageTypeConnectionInfo }
