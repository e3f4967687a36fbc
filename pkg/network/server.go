package network

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lleps/peinbol/pkg/log"
	"github.com/lleps/peinbol/pkg/messages"
	"github.com/lleps/peinbol/pkg/queue"
)

// Server accepts TCP connections and turns their traffic into events on a shared queue.
type Server struct {
	addr         string
	events       queue.Queue
	outQueueSize int
	writeTimeout time.Duration

	listener    net.Listener
	connections map[uuid.UUID]*Connection
	lock        sync.RWMutex
}

// NewServerOptions contains options for creating a new Server.
type NewServerOptions struct {
	// Addr is the ip:port to bind
	Addr string
	// Events receives ConnectEvent, MessageEvent and DisconnectEvent values
	Events       queue.Queue
	OutQueueSize int
	WriteTimeout time.Duration
}

func NewServer(opts NewServerOptions) *Server {
	return &Server{
		addr:         opts.Addr,
		events:       opts.Events,
		outQueueSize: opts.OutQueueSize,
		writeTimeout: opts.WriteTimeout,
		connections:  make(map[uuid.UUID]*Connection),
	}
}

// Listen binds the listening socket. It returns a *ConnectionError on failure.
func (s *Server) Listen() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return &ConnectionError{Op: "listen", Addr: s.addr, Err: err}
	}
	s.listener = l
	log.Info("TCP server listening on %s", l.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is done or the listener is closed.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	stop := context.AfterFunc(ctx, func() {
		s.listener.Close()
	})
	defer stop()

	var backoff time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff < time.Second {
				backoff *= 2
			}
			log.Error("Failed to accept TCP connection: %v; retrying in %v", err, backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		s.accept(conn)
	}
}

func (s *Server) accept(conn net.Conn) {
	c := newConnection(conn, s.outQueueSize, s.writeTimeout, s.removeConnection)

	// a connection the game never heard of must not produce a disconnect
	if err := s.events.Enqueue(&ConnectEvent{ConnectionID: c.ID, RemoteAddr: c.RemoteAddr}); err != nil {
		log.Error("Failed to enqueue connect event for %s: %v", c.ID, err)
		conn.Close()
		return
	}

	s.lock.Lock()
	s.connections[c.ID] = c
	s.lock.Unlock()
	c.log.Debug("Accepted connection from %s", c.RemoteAddr)
	c.start(s.events)
}

// removeConnection runs once per connection, from Connection.Close.
func (s *Server) removeConnection(c *Connection) {
	s.lock.Lock()
	delete(s.connections, c.ID)
	s.lock.Unlock()

	if err := s.events.Enqueue(&DisconnectEvent{ConnectionID: c.ID}); err != nil {
		log.Error("Failed to enqueue disconnect event for %s: %v", c.ID, err)
	}
}

func (s *Server) connection(id uuid.UUID) (*Connection, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	c, ok := s.connections[id]
	return c, ok
}

// Send queues m for the given connection.
// It returns ErrConnectionClosed if the connection is gone.
func (s *Server) Send(id uuid.UUID, m messages.Message) error {
	c, ok := s.connection(id)
	if !ok {
		return ErrConnectionClosed
	}
	return c.Send(m)
}

// Broadcast queues m for every live connection. Connections closing
// concurrently are skipped silently.
func (s *Server) Broadcast(m messages.Message) {
	b, err := messages.Encode(m)
	if err != nil {
		log.Error("Failed to encode %s for broadcast: %v", m.Type(), err)
		return
	}

	s.lock.RLock()
	live := make([]*Connection, 0, len(s.connections))
	for _, c := range s.connections {
		live = append(live, c)
	}
	s.lock.RUnlock()

	for _, c := range live {
		if err := c.sendBytes(b); err != nil {
			log.Trace("Skipped broadcast of %s to %s: %v", m.Type(), c.ID, err)
		}
	}
}

// Multicast sends m to the given connections, encoding it once.
// Unknown or closing connections are skipped.
func (s *Server) Multicast(ids []uuid.UUID, m messages.Message) {
	if len(ids) == 0 {
		return
	}
	b, err := messages.Encode(m)
	if err != nil {
		log.Error("Failed to encode %s for multicast: %v", m.Type(), err)
		return
	}

	for _, id := range ids {
		c, ok := s.connection(id)
		if !ok {
			continue
		}
		if err := c.sendBytes(b); err != nil {
			log.Trace("Skipped multicast of %s to %s: %v", m.Type(), c.ID, err)
		}
	}
}

// Disconnect closes the given connection. The DisconnectEvent follows through the queue.
func (s *Server) Disconnect(id uuid.UUID) {
	if c, ok := s.connection(id); ok {
		c.Close()
	}
}

// ConnectionCount returns the number of live connections.
func (s *Server) ConnectionCount() int {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return len(s.connections)
}

// Close stops accepting and tears down every live connection.
func (s *Server) Close() error {
	var err error
	if s.listener != nil {
		if cerr := s.listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}

	s.lock.RLock()
	live := make([]*Connection, 0, len(s.connections))
	for _, c := range s.connections {
		live = append(live, c)
	}
	s.lock.RUnlock()

	for _, c := range live {
		c.Close()
	}
	return err
}
