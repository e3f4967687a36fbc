package network

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lleps/peinbol/pkg/log"
	"github.com/lleps/peinbol/pkg/messages"
	"github.com/lleps/peinbol/pkg/queue"
)

const (
	// readBufferSize is the size of the chunks read from a socket
	readBufferSize = 4096
	// DefaultOutQueueSize is the number of encoded frames a connection can hold before it is considered too slow
	DefaultOutQueueSize = 4096
)

// Connection is an accepted client socket. Reads and writes run on their own
// goroutines; the game loop only calls Send and Close.
type Connection struct {
	ID         uuid.UUID
	RemoteAddr string

	conn         net.Conn
	out          chan []byte
	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	onClose   func(*Connection)

	log *log.Logger
}

func newConnection(conn net.Conn, outQueueSize int, writeTimeout time.Duration, onClose func(*Connection)) *Connection {
	if outQueueSize <= 0 {
		outQueueSize = DefaultOutQueueSize
	}
	id := uuid.New()
	return &Connection{
		ID:           id,
		RemoteAddr:   conn.RemoteAddr().String(),
		conn:         conn,
		out:          make(chan []byte, outQueueSize),
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		onClose:      onClose,
		log:          log.Default().With("connection", id.String()),
	}
}

func (c *Connection) start(events queue.Queue) {
	go c.readLoop(events)
	go c.writeLoop()
}

// Send encodes m and queues it for writing. It never blocks: a connection
// whose outbound queue is full is closed.
func (c *Connection) Send(m messages.Message) error {
	b, err := messages.Encode(m)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", m.Type(), err)
	}
	return c.sendBytes(b)
}

func (c *Connection) sendBytes(b []byte) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	select {
	case c.out <- b:
		return nil
	case <-c.closeCh:
		return ErrConnectionClosed
	default:
		c.log.Warn("Outbound queue full, closing slow connection")
		c.Close()
		return ErrConnectionClosed
	}
}

// Closed reports whether the connection has been torn down.
func (c *Connection) Closed() bool {
	return c.closed.Load()
}

// Close tears the connection down. Only the first call has any effect.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.closeCh)
		if err := c.conn.Close(); err != nil {
			c.log.Trace("Failed to close socket: %v", err)
		}
		if c.onClose != nil {
			c.onClose(c)
		}
	})
}

func (c *Connection) readLoop(events queue.Queue) {
	defer c.Close()

	decoder := messages.NewDecoder()
	buf := make([]byte, readBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			decoder.Feed(buf[:n])
			if !c.drain(decoder, events) {
				return
			}
		}
		if err != nil {
			switch {
			case c.closed.Load(), errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
				c.log.Debug("Connection closed: %v", err)
			default:
				c.log.Warn("Failed to read from connection: %v", err)
			}
			return
		}
	}
}

// drain hands every complete frame to the event queue.
// It returns false when the stream is corrupt.
func (c *Connection) drain(decoder *messages.Decoder, events queue.Queue) bool {
	for {
		msg, err := decoder.Next()
		if err != nil {
			c.log.Warn("Closing connection after protocol error: %v", err)
			return false
		}
		if msg == nil {
			return true
		}

		if _, ok := msg.(*messages.Ping); ok {
			if err := c.Send(&messages.Ping{}); err != nil {
				c.log.Debug("Failed to answer ping: %v", err)
			}
			continue
		}

		if err := events.Enqueue(&MessageEvent{ConnectionID: c.ID, Message: msg}); err != nil {
			c.log.Error("Failed to enqueue %s: %v", msg.Type(), err)
		}
	}
}

func (c *Connection) writeLoop() {
	w := bufio.NewWriter(c.conn)
	for {
		select {
		case <-c.closeCh:
			return
		case b := <-c.out:
			if c.writeTimeout > 0 {
				_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			}
			if err := c.write(w, b); err != nil {
				if !c.closed.Load() {
					c.log.Warn("Failed to write to connection: %v", err)
				}
				c.Close()
				return
			}
		}
	}
}

// write flushes b along with every frame already waiting in the queue.
func (c *Connection) write(w *bufio.Writer, b []byte) error {
	if _, err := w.Write(b); err != nil {
		return err
	}
	for pending := len(c.out); pending > 0; pending-- {
		if _, err := w.Write(<-c.out); err != nil {
			return err
		}
	}
	return w.Flush()
}
