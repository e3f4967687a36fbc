package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lleps/peinbol/pkg/game"
	"github.com/lleps/peinbol/pkg/log"
	"github.com/lleps/peinbol/pkg/messages"
	"github.com/lleps/peinbol/pkg/network"
	"github.com/lleps/peinbol/pkg/queue"
)

// bot drives a player without a screen: it walks in circles, fires in
// bursts and keeps a mirror of the world.
type bot struct {
	client *network.Client
	events *queue.InMemoryQueue
	mirror *game.Mirror

	inputInterval time.Duration
	yawPerSecond  float64
	fireEvery     time.Duration
	fireFor       time.Duration
	started       time.Time
	lastPing      time.Time
	lastReport    time.Time
}

func main() {
	host := flag.String("host", "localhost", "Server host")
	port := flag.Int("port", 8080, "Server port")
	name := flag.String("name", "bot", "Player name")
	logLevel := flag.String("log-level", "info", "Log level")
	logFormat := flag.String("log-format", log.FormatConsole, "Log format (json or console)")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	logger, err := log.New(parsedLogLevel, *logFormat)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	log.SetDefaultLogger(logger)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events := queue.NewInMemoryQueue(0)
	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	client, err := network.Dial(dialCtx, *host, *port, events)
	cancel()
	if err != nil {
		log.Error("Failed to connect: %v", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := client.Send(&messages.ConnectionInfo{Name: *name}); err != nil {
		log.Error("Failed to send connection info: %v", err)
		os.Exit(1)
	}
	log.Info("Connected to %s:%d as %s", *host, *port, *name)

	b := &bot{
		client:        client,
		events:        events,
		mirror:        game.NewMirror(),
		inputInterval: 16 * time.Millisecond,
		yawPerSecond:  45,
		fireEvery:     2 * time.Second,
		fireFor:       250 * time.Millisecond,
	}
	b.run(ctx)
}

func (b *bot) run(ctx context.Context) {
	ticker := time.NewTicker(b.inputInterval)
	defer ticker.Stop()
	b.started = time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.client.Done():
			b.drainEvents()
			log.Info("Server closed the connection")
			return
		case <-b.events.Notify():
			b.drainEvents()
		case now := <-ticker.C:
			b.drainEvents()
			if err := b.client.Send(b.input(now)); err != nil {
				log.Error("Failed to send input: %v", err)
				return
			}
			b.ping(now)
			b.report(now)
		}
	}
}

// input returns the scripted input for the moment now.
func (b *bot) input(now time.Time) *messages.InputState {
	elapsed := now.Sub(b.started)
	yaw := math.Mod(elapsed.Seconds()*b.yawPerSecond, 360)
	return &messages.InputState{
		Forward: true,
		Fire:    elapsed%b.fireEvery < b.fireFor,
		Jump:    elapsed%(5*time.Second) < b.inputInterval,
		CameraX: 0,
		CameraY: yaw,
	}
}

func (b *bot) ping(now time.Time) {
	if now.Sub(b.lastPing) < time.Second {
		return
	}
	sent, err := b.client.Ping(now)
	if err != nil {
		log.Warn("Failed to ping: %v", err)
		return
	}
	if sent {
		b.lastPing = now
	}
}

func (b *bot) report(now time.Time) {
	if now.Sub(b.lastReport) < 5*time.Second {
		return
	}
	b.lastReport = now
	if own, ok := b.mirror.Own(); ok {
		log.Info("Health %d at %.1f %.1f %.1f, %d boxes, rtt %v",
			b.mirror.Health(), own.Position.X(), own.Position.Y(), own.Position.Z(), b.mirror.Len(), b.client.RTT())
		return
	}
	log.Info("Waiting for spawn, %d boxes, rtt %v", b.mirror.Len(), b.client.RTT())
}

func (b *bot) drainEvents() {
	pending, err := b.events.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read events: %v", err)
		return
	}
	for _, item := range pending {
		switch event := item.(type) {
		case *network.MessageEvent:
			b.handle(event.Message)
		case *network.ConnectEvent:
			log.Debug("Connection %s established", event.ConnectionID)
		case *network.DisconnectEvent:
			log.Debug("Connection %s closed", event.ConnectionID)
		}
	}
}

func (b *bot) handle(msg messages.Message) {
	b.mirror.Apply(msg)
	switch m := msg.(type) {
	case *messages.ServerMessage:
		log.Info("Server: %s", m.Text)
	case *messages.SetHealth:
		log.Info("Health is now %d", m.Health)
	case *messages.NotifyHit:
		own, ok := b.mirror.Own()
		switch {
		case ok && m.EmitterBoxID == own.ID:
			log.Info("Hit box %d", m.VictimBoxID)
		case ok && m.VictimBoxID == own.ID:
			log.Info("Got hit by box %d", m.EmitterBoxID)
		default:
			log.Trace("Box %d hit box %d", m.EmitterBoxID, m.VictimBoxID)
		}
	case *messages.Spawn:
		log.Info("Spawned as box %d", m.BoxID)
	}
}
