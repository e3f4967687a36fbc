package network

import (
	"errors"
	"fmt"
)

// ErrConnectionClosed is returned when writing to a connection that is already torn down.
var ErrConnectionClosed = errors.New("connection closed")

// ConnectionError is returned when a listener cannot be bound or a server cannot be reached.
type ConnectionError struct {
	Op   string
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err, or any error it wraps, is a ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
