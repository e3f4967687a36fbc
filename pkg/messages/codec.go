package messages

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl64"
)

// Encode serializes a message as a complete frame: [type id][payload].
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, fmt.Errorf("cannot encode nil message")
	}
	w := newWriter(m.Type())
	switch msg := m.(type) {
	case *InputState:
		w.writeBool(msg.Forward)
		w.writeBool(msg.Backwards)
		w.writeBool(msg.Left)
		w.writeBool(msg.Right)
		w.writeBool(msg.Fire)
		w.writeBool(msg.Jump)
		w.writeBool(msg.Walk)
		w.writeFloat64(msg.CameraX)
		w.writeFloat64(msg.CameraY)
	case *Spawn:
		w.writeInt32(msg.BoxID)
	case *BoxAdded:
		w.writeInt32(msg.ID)
		w.writeVec3(msg.Position)
		w.writeVec3(msg.Size)
		w.writeVec3(msg.Velocity)
		w.writeVec3(msg.AngularVelocity)
		w.writeQuat(msg.Rotation)
		w.writeFloat64(msg.Mass)
		w.writeBool(msg.AffectedByPhysics)
		w.writeInt32(msg.TextureID)
		w.writeFloat64(msg.TextureMultiplier)
		w.writeFloat64(msg.BounceMultiplier)
		w.writeBool(msg.IsSphere)
		w.writeBool(msg.IsCharacter)
	case *BoxUpdateMotion:
		w.writeInt32(msg.ID)
		w.writeVec3(msg.Position)
		w.writeVec3(msg.Velocity)
		w.writeVec3(msg.AngularVelocity)
		w.writeQuat(msg.Rotation)
	case *RemoveBox:
		w.writeInt32(msg.BoxID)
	case *SetHealth:
		w.writeInt32(msg.Health)
	case *NotifyHit:
		w.writeInt32(msg.EmitterBoxID)
		w.writeInt32(msg.VictimBoxID)
	case *ServerMessage:
		if err := w.writeText(msg.Text, MaxServerMessageLength); err != nil {
			return nil, err
		}
	case *Ping:
	case *ConnectionInfo:
		if err := w.writeText(msg.Name, MaxPlayerNameLength); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("cannot encode message of type %T", m)
	}
	return w.buf, nil
}

// Decode parses exactly one complete frame.
func Decode(frame []byte) (Message, error) {
	if len(frame) < HeaderSize {
		return nil, protocolErrorf(0, "frame of %d bytes is shorter than its header", len(frame))
	}
	t := MessageType(int32(binary.BigEndian.Uint32(frame)))
	n, complete, err := frameLength(t, frame)
	if err != nil {
		return nil, err
	}
	if !complete || n != len(frame) {
		return nil, protocolErrorf(t, "frame of %d bytes does not match expected length", len(frame))
	}

	r := &reader{data: frame, off: HeaderSize}
	switch t {
	case MessageTypeInputState:
		return &InputState{
			Forward:   r.readBool(),
			Backwards: r.readBool(),
			Left:      r.readBool(),
			Right:     r.readBool(),
			Fire:      r.readBool(),
			Jump:      r.readBool(),
			Walk:      r.readBool(),
			CameraX:   r.readFloat64(),
			CameraY:   r.readFloat64(),
		}, nil
	case MessageTypeSpawn:
		return &Spawn{BoxID: r.readInt32()}, nil
	case MessageTypeBoxAdded:
		return &BoxAdded{
			ID:                r.readInt32(),
			Position:          r.readVec3(),
			Size:              r.readVec3(),
			Velocity:          r.readVec3(),
			AngularVelocity:   r.readVec3(),
			Rotation:          r.readQuat(),
			Mass:              r.readFloat64(),
			AffectedByPhysics: r.readBool(),
			TextureID:         r.readInt32(),
			TextureMultiplier: r.readFloat64(),
			BounceMultiplier:  r.readFloat64(),
			IsSphere:          r.readBool(),
			IsCharacter:       r.readBool(),
		}, nil
	case MessageTypeBoxUpdateMotion:
		return &BoxUpdateMotion{
			ID:              r.readInt32(),
			Position:        r.readVec3(),
			Velocity:        r.readVec3(),
			AngularVelocity: r.readVec3(),
			Rotation:        r.readQuat(),
		}, nil
	case MessageTypeRemoveBox:
		return &RemoveBox{BoxID: r.readInt32()}, nil
	case MessageTypeSetHealth:
		return &SetHealth{Health: r.readInt32()}, nil
	case MessageTypeNotifyHit:
		return &NotifyHit{EmitterBoxID: r.readInt32(), VictimBoxID: r.readInt32()}, nil
	case MessageTypeServerMessage:
		text, err := r.readText(t)
		if err != nil {
			return nil, err
		}
		return &ServerMessage{Text: text}, nil
	case MessageTypePing:
		return &Ping{}, nil
	case MessageTypeConnectionInfo:
		name, err := r.readText(t)
		if err != nil {
			return nil, err
		}
		return &ConnectionInfo{Name: name}, nil
	default:
		return nil, protocolErrorf(t, "unknown message type")
	}
}

// frameLength returns the total length of the frame starting at buf[0].
// complete is false when more bytes are needed to know the length.
func frameLength(t MessageType, buf []byte) (n int, complete bool, err error) {
	if size, ok := payloadSizes[t]; ok {
		return HeaderSize + size, true, nil
	}
	limit, ok := maxTextLengths[t]
	if !ok {
		return 0, false, protocolErrorf(t, "unknown message type")
	}
	if len(buf) < HeaderSize+LengthPrefixSize {
		return 0, false, nil
	}
	length := int32(binary.BigEndian.Uint32(buf[HeaderSize:]))
	if length < 0 || int(length) > limit {
		return 0, false, protocolErrorf(t, "text length %d out of range [0, %d]", length, limit)
	}
	return HeaderSize + LengthPrefixSize + int(length), true, nil
}

type writer struct {
	buf []byte
}

func newWriter(t MessageType) *writer {
	size := payloadSizes[t]
	w := &writer{buf: make([]byte, 0, HeaderSize+size)}
	w.writeInt32(int32(t))
	return w
}

func (w *writer) writeBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *writer) writeInt32(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

func (w *writer) writeFloat64(v float64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *writer) writeVec3(v mgl64.Vec3) {
	w.writeFloat64(v[0])
	w.writeFloat64(v[1])
	w.writeFloat64(v[2])
}

// writeQuat writes x, y, z, w.
func (w *writer) writeQuat(q mgl64.Quat) {
	w.writeVec3(q.V)
	w.writeFloat64(q.W)
}

func (w *writer) writeText(s string, limit int) error {
	if !utf8.ValidString(s) {
		return fmt.Errorf("text is not valid UTF-8")
	}
	if len(s) > limit {
		return fmt.Errorf("text of %d bytes exceeds limit of %d", len(s), limit)
	}
	w.writeInt32(int32(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// reader assumes the frame length was validated before reading.
type reader struct {
	data []byte
	off  int
}

func (r *reader) readBool() bool {
	v := r.data[r.off] != 0
	r.off++
	return v
}

func (r *reader) readInt32() int32 {
	v := int32(binary.BigEndian.Uint32(r.data[r.off:]))
	r.off += int32Size
	return v
}

func (r *reader) readFloat64() float64 {
	v := math.Float64frombits(binary.BigEndian.Uint64(r.data[r.off:]))
	r.off += f64Size
	return v
}

func (r *reader) readVec3() mgl64.Vec3 {
	return mgl64.Vec3{r.readFloat64(), r.readFloat64(), r.readFloat64()}
}

func (r *reader) readQuat() mgl64.Quat {
	v := r.readVec3()
	return mgl64.Quat{W: r.readFloat64(), V: v}
}

func (r *reader) readText(t MessageType) (string, error) {
	length := int(r.readInt32())
	b := r.data[r.off : r.off+length]
	r.off += length
	if !utf8.Valid(b) {
		return "", protocolErrorf(t, "text is not valid UTF-8")
	}
	return string(b), nil
}
