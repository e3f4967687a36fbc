package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lleps/peinbol/pkg/log"
	"github.com/lleps/peinbol/pkg/messages"
	"github.com/lleps/peinbol/pkg/queue"
)

// Client is a connection to a game server. Received messages are queued on
// Events by a reader goroutine; Send writes synchronously.
type Client struct {
	ID     uuid.UUID
	conn   net.Conn
	events queue.Queue
	ping   *PingTracker

	writeLock sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
	done      chan struct{}

	log *log.Logger
}

// Dial connects to host:port and blocks until the connection is established or fails.
// Failures are returned as *ConnectionError.
func Dial(ctx context.Context, host string, port int, events queue.Queue) (*Client, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &ConnectionError{Op: "dial", Addr: addr, Err: err}
	}

	id := uuid.New()
	c := &Client{
		ID:     id,
		conn:   conn,
		events: events,
		ping:   NewPingTracker(DefaultPingSamples),
		done:   make(chan struct{}),
		log:    log.Default().With("connection", id.String()),
	}
	if err := events.Enqueue(&ConnectEvent{ConnectionID: id, RemoteAddr: addr}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enqueue connect event: %w", err)
	}
	go c.readLoop()
	return c, nil
}

// Send serializes m and writes it to the socket.
func (c *Client) Send(m messages.Message) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	c.writeLock.Lock()
	err := messages.WriteMessage(c.conn, m)
	c.writeLock.Unlock()
	if err != nil {
		c.Close()
		return err
	}
	return nil
}

// Ping sends a ping unless one is already in flight. It reports whether a ping was sent.
func (c *Client) Ping(now time.Time) (bool, error) {
	if !c.ping.Start(now) {
		return false, nil
	}
	if err := c.Send(&messages.Ping{}); err != nil {
		c.ping.Cancel()
		return false, err
	}
	return true, nil
}

// RTT returns the estimated round trip time to the server.
func (c *Client) RTT() time.Duration {
	return c.ping.RTT()
}

// Done is closed once the connection is torn down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Close tears the connection down and queues a single DisconnectEvent.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		err = c.conn.Close()
		if qerr := c.events.Enqueue(&DisconnectEvent{ConnectionID: c.ID}); qerr != nil {
			c.log.Error("Failed to enqueue disconnect event: %v", qerr)
		}
		close(c.done)
	})
	return err
}

func (c *Client) readLoop() {
	defer c.Close()

	decoder := messages.NewDecoder()
	buf := make([]byte, readBufferSize)
	for {
		n, err := c.conn.Read(buf)
		if n > 0 {
			decoder.Feed(buf[:n])
			for {
				msg, derr := decoder.Next()
				if derr != nil {
					c.log.Error("Closing connection after protocol error: %v", derr)
					return
				}
				if msg == nil {
					break
				}
				c.handle(msg)
			}
		}
		if err != nil {
			if c.closed.Load() || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				c.log.Info("Connection to server closed")
			} else {
				c.log.Warn("Failed to read from server: %v", err)
			}
			return
		}
	}
}

func (c *Client) handle(msg messages.Message) {
	if _, ok := msg.(*messages.Ping); ok {
		if rtt, ok := c.ping.Complete(time.Now()); ok {
			c.log.Trace("Ping answered in %v", rtt)
		}
		return
	}
	if err := c.events.Enqueue(&MessageEvent{ConnectionID: c.ID, Message: msg}); err != nil {
		c.log.Error("Failed to enqueue %s: %v", msg.Type(), err)
	}
}
