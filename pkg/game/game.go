package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/lleps/peinbol/pkg/game/constants"
	"github.com/lleps/peinbol/pkg/log"
	"github.com/lleps/peinbol/pkg/messages"
	"github.com/lleps/peinbol/pkg/network"
	"github.com/lleps/peinbol/pkg/physics"
	"github.com/lleps/peinbol/pkg/queue"
	"github.com/lleps/peinbol/pkg/repositories/models"
	"github.com/lleps/peinbol/pkg/state"
)

// GameManager owns the world. Every method runs on the game loop goroutine.
type GameManager struct {
	events    queue.Queue
	sender    Sender
	snapshots state.SnapshotStore
	killChan  chan<- *models.Kill

	world   *physics.World
	ids     *idAllocator
	rng     *rand.Rand
	matchID uuid.UUID

	players     map[uuid.UUID]*Player
	characters  map[int32]uuid.UUID
	bullets     map[int32]*bullet
	lastMotion  map[int32]motion
	pendingHits []hit
	nextSeq     uint64

	tickInterval      time.Duration
	broadcastInterval time.Duration
	bulletTTL         time.Duration
	fireCooldown      time.Duration

	tick          uint64
	lastTick      time.Time
	lastBroadcast time.Time
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	// EventQueue carries network.ConnectEvent, network.DisconnectEvent and network.MessageEvent values
	EventQueue queue.Queue
	Sender     Sender
	// SnapshotStore receives a snapshot after every tick; optional
	SnapshotStore state.SnapshotStore
	// KillChan receives kill records; optional
	KillChan chan<- *models.Kill
	// Seed drives world generation and spawn points; 0 picks a time based seed
	Seed    int64
	MatchID uuid.UUID

	TickInterval      time.Duration
	BroadcastInterval time.Duration
	BulletTTL         time.Duration
	FireCooldown      time.Duration
}

type motion struct {
	position        mgl64.Vec3
	velocity        mgl64.Vec3
	angularVelocity mgl64.Vec3
	rotation        mgl64.Quat
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	matchID := opts.MatchID
	if matchID == uuid.Nil {
		matchID = uuid.New()
	}

	gm := &GameManager{
		events:            opts.EventQueue,
		sender:            opts.Sender,
		snapshots:         opts.SnapshotStore,
		killChan:          opts.KillChan,
		world:             physics.NewWorld(),
		ids:               newIDAllocator(),
		rng:               rand.New(rand.NewSource(seed)),
		matchID:           matchID,
		players:           make(map[uuid.UUID]*Player),
		characters:        make(map[int32]uuid.UUID),
		bullets:           make(map[int32]*bullet),
		lastMotion:        make(map[int32]motion),
		tickInterval:      durationOrDefault(opts.TickInterval, constants.TickInterval),
		broadcastInterval: durationOrDefault(opts.BroadcastInterval, constants.BroadcastInterval),
		bulletTTL:         durationOrDefault(opts.BulletTTL, constants.BulletTTL),
		fireCooldown:      durationOrDefault(opts.FireCooldown, constants.FireCooldown),
	}
	gm.world.OnCollision(gm.handleCollision)
	return gm
}

func durationOrDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// MatchID identifies this run of the game.
func (gm *GameManager) MatchID() uuid.UUID {
	return gm.matchID
}

// Start generates the world and runs the game loop until ctx is done.
func (gm *GameManager) Start(ctx context.Context) error {
	gm.initializeWorld()
	log.Info("Game loop started for match %s with %d boxes", gm.matchID, gm.world.Len())

	ticker := time.NewTicker(gm.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t := <-ticker.C:
			gm.gameTick(t)
		}
	}
}

func (gm *GameManager) initializeWorld() {
	for _, b := range GenerateWorld(gm.rng, gm.ids.Next) {
		gm.addBox(b)
	}
}

// gameTick runs one iteration of the game loop.
func (gm *GameManager) gameTick(now time.Time) {
	gm.tick++
	var delta time.Duration
	if !gm.lastTick.IsZero() {
		delta = now.Sub(gm.lastTick)
	}
	if delta > constants.MaxSimulationStep {
		delta = constants.MaxSimulationStep
	}
	gm.lastTick = now

	gm.processEvents()

	active := gm.activePlayers()
	for _, p := range active {
		applyMovement(p, gm.character(p), now)
	}

	if delta > 0 {
		gm.world.Simulate(float64(delta) / float64(time.Millisecond))
	}

	for _, p := range active {
		gm.fire(p, gm.character(p), now)
	}

	gm.processHits(now)
	gm.expireBullets(now)

	if now.Sub(gm.lastBroadcast) >= gm.broadcastInterval {
		gm.broadcastMotion()
		gm.lastBroadcast = now
	}

	gm.publishSnapshot(now)
}

// processEvents drains the event queue, oldest first.
func (gm *GameManager) processEvents() {
	pendingEvents, err := gm.events.ReadAllMessages()
	if err != nil {
		log.Error("Failed to read connection events: %v", err)
		return
	}
	for _, item := range pendingEvents {
		switch event := item.(type) {
		case *network.ConnectEvent:
			gm.handleConnect(event)
		case *network.DisconnectEvent:
			gm.handleDisconnect(event)
		case *network.MessageEvent:
			gm.handleMessage(event)
		default:
			log.Error("Unhandled event type: %T", event)
		}
	}
}

func (gm *GameManager) handleConnect(event *network.ConnectEvent) {
	if _, ok := gm.players[event.ConnectionID]; ok {
		invariantViolation("connection %s connected twice", event.ConnectionID)
	}
	gm.nextSeq++
	gm.players[event.ConnectionID] = &Player{
		ConnectionID: event.ConnectionID,
		State:        PlayerStateConnecting,
		seq:          gm.nextSeq,
	}
	log.Debug("Connection %s from %s is waiting for its name", event.ConnectionID, event.RemoteAddr)
}

func (gm *GameManager) handleDisconnect(event *network.DisconnectEvent) {
	p, ok := gm.players[event.ConnectionID]
	if !ok {
		invariantViolation("disconnect from connection %s with no player", event.ConnectionID)
	}
	delete(gm.players, event.ConnectionID)

	if p.State != PlayerStateActive {
		return
	}
	gm.removeBox(p.BoxID)
	gm.sender.Broadcast(&messages.ServerMessage{Text: p.Name + " left"})
	log.Info("Player %s left", p.Name)
}

func (gm *GameManager) handleMessage(event *network.MessageEvent) {
	p, ok := gm.players[event.ConnectionID]
	if !ok {
		invariantViolation("%s from connection %s with no player", event.Message.Type(), event.ConnectionID)
	}
	if p.State == PlayerStateDisconnected {
		return
	}

	switch m := event.Message.(type) {
	case *messages.ConnectionInfo:
		if p.State != PlayerStateConnecting {
			log.Debug("Ignoring repeated connection info from %s", p.Name)
			return
		}
		gm.join(p, m.Name)
	case *messages.InputState:
		p.Input = *m
	default:
		log.Warn("Unexpected %s from connection %s", m.Type(), event.ConnectionID)
	}
}

// join gives a connecting player a character and streams the world to it.
func (gm *GameManager) join(p *Player, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("player-%d", p.seq)
	}

	spawnRange := int(constants.PlayerSpawnRange)
	box := &physics.Box{
		ID:   gm.ids.Next(),
		Kind: physics.ShapeCharacter,
		Position: mgl64.Vec3{
			float64(gm.rng.Intn(2*spawnRange+1) - spawnRange),
			constants.PlayerSpawnHeight,
			float64(gm.rng.Intn(2*spawnRange+1) - spawnRange),
		},
		Size:              mgl64.Vec3{constants.PlayerWidth, constants.PlayerHeight, constants.PlayerWidth},
		Mass:              constants.PlayerMass,
		AffectedByPhysics: true,
		TextureID:         constants.TextureMetal,
		TextureMultiplier: 0.01,
	}

	p.Name = name
	p.BoxID = box.ID
	p.Health = constants.PlayerMaxHealth
	gm.addBox(box)
	gm.characters[box.ID] = p.ConnectionID
	p.State = PlayerStateActive

	if err := gm.sendResync(p); err != nil {
		log.Debug("Failed to stream the world to %s: %v", name, err)
	}
	gm.sender.Broadcast(&messages.ServerMessage{Text: name + " joined"})
	log.Info("Player %s joined as box %d", name, box.ID)
}

// sendResync streams every live box to the player, then its spawn and health.
func (gm *GameManager) sendResync(p *Player) error {
	for _, b := range gm.world.Boxes() {
		if err := gm.sender.Send(p.ConnectionID, BoxAddedFromBox(b)); err != nil {
			return err
		}
	}
	if err := gm.sender.Send(p.ConnectionID, &messages.Spawn{BoxID: p.BoxID}); err != nil {
		return err
	}
	return gm.sender.Send(p.ConnectionID, &messages.SetHealth{Health: p.Health})
}

func (gm *GameManager) character(p *Player) *physics.Box {
	box, ok := gm.world.Get(p.BoxID)
	if !ok {
		invariantViolation("player %s has no character box %d", p.Name, p.BoxID)
	}
	return box
}

// activePlayers returns the active players in arrival order.
func (gm *GameManager) activePlayers() []*Player {
	active := make([]*Player, 0, len(gm.players))
	for _, p := range gm.players {
		if p.State == PlayerStateActive {
			active = append(active, p)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].seq < active[j].seq })
	return active
}

// multicast sends m to every active player.
func (gm *GameManager) multicast(m messages.Message) {
	active := gm.activePlayers()
	if len(active) == 0 {
		return
	}
	ids := make([]uuid.UUID, len(active))
	for i, p := range active {
		ids[i] = p.ConnectionID
	}
	gm.sender.Multicast(ids, m)
}

func (gm *GameManager) addBox(b *physics.Box) {
	if err := gm.world.Register(b); err != nil {
		invariantViolation("failed to add box: %v", err)
	}
	gm.multicast(BoxAddedFromBox(b))
}

// removeBox takes a box out of the world and every table that refers to it.
// It reports whether the box was still there.
func (gm *GameManager) removeBox(id int32) bool {
	if !gm.world.Unregister(id) {
		return false
	}
	delete(gm.bullets, id)
	delete(gm.characters, id)
	delete(gm.lastMotion, id)
	gm.multicast(&messages.RemoveBox{BoxID: id})
	return true
}

// broadcastMotion sends the motion of every dynamic box that changed since
// the previous broadcast.
func (gm *GameManager) broadcastMotion() {
	for _, b := range gm.world.Boxes() {
		if b.Static() || !b.AffectedByPhysics {
			continue
		}
		m := motion{
			position:        b.Position,
			velocity:        b.Velocity,
			angularVelocity: b.AngularVelocity,
			rotation:        b.Rotation,
		}
		if last, ok := gm.lastMotion[b.ID]; ok && last == m {
			continue
		}
		gm.lastMotion[b.ID] = m
		gm.multicast(BoxUpdateMotionFromBox(b))
	}
}

func (gm *GameManager) publishSnapshot(now time.Time) {
	if gm.snapshots == nil {
		return
	}

	players := make([]state.PlayerSummary, 0, len(gm.players))
	for _, p := range gm.players {
		players = append(players, state.PlayerSummary{
			Name:   p.Name,
			State:  p.State.String(),
			BoxID:  p.BoxID,
			Health: p.Health,
		})
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })

	snapshot := &state.WorldSnapshot{
		MatchID:   gm.matchID,
		Tick:      gm.tick,
		Timestamp: now,
		Players:   players,
		Boxes:     gm.world.Snapshot(),
	}
	if err := gm.snapshots.Set(context.Background(), snapshot); err != nil {
		log.Error("Failed to publish snapshot: %v", err)
	}
}
