package messages

import (
	"errors"
	"fmt"
)

// ProtocolError is returned when bytes received from a peer cannot be a valid frame.
// It is fatal for the connection that produced them.
type ProtocolError struct {
	Type   MessageType
	Reason string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error (type %d): %s", int32(e.Type), e.Reason)
}

func protocolErrorf(t MessageType, format string, args ...interface{}) *ProtocolError {
	return &ProtocolError{Type: t, Reason: fmt.Sprintf(format, args...)}
}

// IsProtocolError reports whether err, or any error it wraps, is a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
