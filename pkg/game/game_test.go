package game

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	gamemocks "github.com/lleps/peinbol/mocks/github.com/lleps/peinbol/pkg/game"
	queuemocks "github.com/lleps/peinbol/mocks/github.com/lleps/peinbol/pkg/queue"
	"github.com/lleps/peinbol/pkg/game/constants"
	"github.com/lleps/peinbol/pkg/kinematic"
	"github.com/lleps/peinbol/pkg/messages"
	"github.com/lleps/peinbol/pkg/network"
	"github.com/lleps/peinbol/pkg/physics"
	"github.com/lleps/peinbol/pkg/queue"
	"github.com/lleps/peinbol/pkg/repositories/models"
	"github.com/lleps/peinbol/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type delivery struct {
	// to is nil for broadcasts
	to  []uuid.UUID
	msg messages.Message
}

// outbox records everything the game sends.
type outbox struct {
	deliveries  []delivery
	disconnects []uuid.UUID
}

func newOutbox(t *testing.T) (*gamemocks.Sender, *outbox) {
	out := &outbox{}
	sender := gamemocks.NewSender(t)
	sender.EXPECT().Send(mock.Anything, mock.Anything).RunAndReturn(func(id uuid.UUID, m messages.Message) error {
		out.deliveries = append(out.deliveries, delivery{to: []uuid.UUID{id}, msg: m})
		return nil
	}).Maybe()
	sender.EXPECT().Multicast(mock.Anything, mock.Anything).Run(func(ids []uuid.UUID, m messages.Message) {
		out.deliveries = append(out.deliveries, delivery{to: append([]uuid.UUID(nil), ids...), msg: m})
	}).Maybe()
	sender.EXPECT().Broadcast(mock.Anything).Run(func(m messages.Message) {
		out.deliveries = append(out.deliveries, delivery{msg: m})
	}).Maybe()
	sender.EXPECT().Disconnect(mock.Anything).Run(func(id uuid.UUID) {
		out.disconnects = append(out.disconnects, id)
	}).Maybe()
	return sender, out
}

// received returns every message that reached the connection, in order.
func (o *outbox) received(id uuid.UUID) []messages.Message {
	var got []messages.Message
	for _, d := range o.deliveries {
		if d.to == nil {
			got = append(got, d.msg)
			continue
		}
		for _, to := range d.to {
			if to == id {
				got = append(got, d.msg)
				break
			}
		}
	}
	return got
}

func (o *outbox) reset() {
	o.deliveries = nil
	o.disconnects = nil
}

func ofType[T messages.Message](msgs []messages.Message) []T {
	var got []T
	for _, m := range msgs {
		if typed, ok := m.(T); ok {
			got = append(got, typed)
		}
	}
	return got
}

func newTestGame(t *testing.T, opts NewGameManagerOptions) (*GameManager, *queue.InMemoryQueue, *outbox) {
	events := queue.NewInMemoryQueue(0)
	sender, out := newOutbox(t)
	opts.EventQueue = events
	opts.Sender = sender
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	return NewGameManager(opts), events, out
}

func addFloor(gm *GameManager) *physics.Box {
	floor := &physics.Box{
		ID:       gm.ids.Next(),
		Kind:     physics.ShapeBox,
		Position: mgl64.Vec3{0, 0, 0},
		Size:     mgl64.Vec3{100, 1, 100},
	}
	gm.addBox(floor)
	return floor
}

func join(t *testing.T, gm *GameManager, events queue.Queue, name string, now time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, events.Enqueue(&network.ConnectEvent{ConnectionID: id, RemoteAddr: "127.0.0.1:5000"}))
	require.NoError(t, events.Enqueue(&network.MessageEvent{ConnectionID: id, Message: &messages.ConnectionInfo{Name: name}}))
	gm.gameTick(now)
	require.Equal(t, PlayerStateActive, gm.players[id].State)
	return id
}

func TestGameManager_processEvents(t *testing.T) {
	mockQueue := queuemocks.NewQueue(t)
	sender, _ := newOutbox(t)
	id := uuid.New()

	tests := []struct {
		name   string
		events []interface{}
		want   func(t *testing.T, gm *GameManager)
	}{
		{
			name:   "connect creates a connecting player",
			events: []interface{}{&network.ConnectEvent{ConnectionID: id}},
			want: func(t *testing.T, gm *GameManager) {
				require.Contains(t, gm.players, id)
				assert.Equal(t, PlayerStateConnecting, gm.players[id].State)
				assert.Equal(t, int32(0), gm.players[id].BoxID)
			},
		},
		{
			name: "input before connection info is stored",
			events: []interface{}{
				&network.MessageEvent{ConnectionID: id, Message: &messages.InputState{Forward: true, CameraY: 45}},
			},
			want: func(t *testing.T, gm *GameManager) {
				assert.Equal(t, PlayerStateConnecting, gm.players[id].State)
				assert.Equal(t, messages.InputState{Forward: true, CameraY: 45}, gm.players[id].Input)
			},
		},
		{
			name: "connection info activates the player",
			events: []interface{}{
				&network.MessageEvent{ConnectionID: id, Message: &messages.ConnectionInfo{Name: "  ana "}},
			},
			want: func(t *testing.T, gm *GameManager) {
				p := gm.players[id]
				assert.Equal(t, PlayerStateActive, p.State)
				assert.Equal(t, "ana", p.Name)
				assert.Equal(t, constants.PlayerMaxHealth, p.Health)
				box, ok := gm.world.Get(p.BoxID)
				require.True(t, ok)
				assert.Equal(t, physics.ShapeCharacter, box.Kind)
				assert.Equal(t, id, gm.characters[p.BoxID])
			},
		},
		{
			name: "repeated connection info is ignored",
			events: []interface{}{
				&network.MessageEvent{ConnectionID: id, Message: &messages.ConnectionInfo{Name: "other"}},
			},
			want: func(t *testing.T, gm *GameManager) {
				assert.Equal(t, "ana", gm.players[id].Name)
				assert.Equal(t, 1, len(gm.characters))
			},
		},
		{
			name:   "disconnect deletes the player and its box",
			events: []interface{}{&network.DisconnectEvent{ConnectionID: id}},
			want: func(t *testing.T, gm *GameManager) {
				assert.NotContains(t, gm.players, id)
				assert.Empty(t, gm.characters)
				assert.Equal(t, 0, gm.world.Len())
			},
		},
	}

	// the cases run in order against the same game
	gm := NewGameManager(NewGameManagerOptions{EventQueue: mockQueue, Sender: sender, Seed: 1})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockQueue.EXPECT().ReadAllMessages().Return(tt.events, nil).Once()
			gm.processEvents()
			tt.want(t, gm)
		})
	}
}

func TestGameManager_joinAndLeave(t *testing.T) {
	gm, events, out := newTestGame(t, NewGameManagerOptions{})
	floor := addFloor(gm)

	ana := join(t, gm, events, "ana", t0)
	anaBox := gm.players[ana].BoxID

	got := out.received(ana)
	require.GreaterOrEqual(t, len(got), 5)
	assert.Equal(t, BoxAddedFromBox(floor), got[0])
	assert.Equal(t, anaBox, got[1].(*messages.BoxAdded).ID)
	assert.True(t, got[1].(*messages.BoxAdded).IsCharacter)
	assert.Equal(t, &messages.Spawn{BoxID: anaBox}, got[2])
	assert.Equal(t, &messages.SetHealth{Health: 100}, got[3])
	assert.Equal(t, &messages.ServerMessage{Text: "ana joined"}, got[4])

	out.reset()
	bob := join(t, gm, events, "", t0.Add(16*time.Millisecond))
	bobBox := gm.players[bob].BoxID
	assert.Equal(t, "player-2", gm.players[bob].Name)

	// ana learns about bob's character, bob gets the whole world
	added := ofType[*messages.BoxAdded](out.received(ana))
	require.Len(t, added, 1)
	assert.Equal(t, bobBox, added[0].ID)
	assert.Len(t, ofType[*messages.BoxAdded](out.received(bob)), 3)

	out.reset()
	require.NoError(t, events.Enqueue(&network.DisconnectEvent{ConnectionID: bob}))
	gm.gameTick(t0.Add(32 * time.Millisecond))

	assert.Equal(t, []*messages.RemoveBox{{BoxID: bobBox}}, ofType[*messages.RemoveBox](out.received(ana)))
	assert.Contains(t, ofType[*messages.ServerMessage](out.received(ana)), &messages.ServerMessage{Text: "player-2 left"})
	assert.NotContains(t, gm.players, bob)
	assert.False(t, gm.world.Contains(bobBox))
}

func TestGameManager_fireAndExpire(t *testing.T) {
	gm, events, out := newTestGame(t, NewGameManagerOptions{})
	ana := join(t, gm, events, "ana", t0)
	anaBox, _ := gm.world.Get(gm.players[ana].BoxID)
	anaBox.Position = mgl64.Vec3{0, 0, 0}
	anaBox.Velocity = mgl64.Vec3{}

	fired := t0.Add(16 * time.Millisecond)
	require.NoError(t, events.Enqueue(&network.MessageEvent{ConnectionID: ana, Message: &messages.InputState{Fire: true, CameraY: 0}}))
	gm.gameTick(fired)

	require.Len(t, gm.bullets, 1)
	var bulletID int32
	for id := range gm.bullets {
		bulletID = id
	}
	bullet, ok := gm.world.Get(bulletID)
	require.True(t, ok)
	assert.Equal(t, physics.ShapeSphere, bullet.Kind)
	assert.Greater(t, bullet.Velocity.Dot(kinematic.Front(0, 0, 1)), 0.0)
	assert.InDelta(t, constants.BulletSpeed, bullet.Velocity.Len(), 1e-9)

	// holding the trigger respects the cooldown
	gm.gameTick(fired.Add(16 * time.Millisecond))
	assert.Len(t, gm.bullets, 1)

	require.NoError(t, events.Enqueue(&network.MessageEvent{ConnectionID: ana, Message: &messages.InputState{}}))
	bob := join(t, gm, events, "bob", fired.Add(32*time.Millisecond))
	resync := ofType[*messages.BoxAdded](out.received(bob))
	var sphere *messages.BoxAdded
	for _, m := range resync {
		if m.ID == bulletID {
			sphere = m
		}
	}
	require.NotNil(t, sphere)
	assert.True(t, sphere.IsSphere)

	removals := func() int {
		n := 0
		for _, m := range ofType[*messages.RemoveBox](out.received(ana)) {
			if m.BoxID == bulletID {
				n++
			}
		}
		return n
	}

	gm.gameTick(fired.Add(constants.BulletTTL))
	assert.True(t, gm.world.Contains(bulletID))
	assert.Equal(t, 0, removals())

	gm.gameTick(fired.Add(constants.BulletTTL + time.Millisecond))
	assert.False(t, gm.world.Contains(bulletID))
	assert.Empty(t, gm.bullets)
	assert.Equal(t, 1, removals())

	gm.gameTick(fired.Add(constants.BulletTTL + time.Second))
	assert.Equal(t, 1, removals())
}

func TestGameManager_damageKillsOnce(t *testing.T) {
	kills := make(chan *models.Kill, 4)
	gm, events, out := newTestGame(t, NewGameManagerOptions{KillChan: kills})
	ana := join(t, gm, events, "ana", t0)
	bob := join(t, gm, events, "bob", t0)
	shooter := gm.players[ana]
	victim := gm.players[bob]
	victimBox, _ := gm.world.Get(victim.BoxID)
	out.reset()

	shooter.Input.Fire = true
	for i := 1; i <= 11; i++ {
		now := t0.Add(time.Duration(i) * time.Second)
		gm.fire(shooter, gm.character(shooter), now)
		var bulletID int32
		for id := range gm.bullets {
			bulletID = id
		}
		bullet, ok := gm.world.Get(bulletID)
		require.True(t, ok)

		gm.handleCollision(bullet, victimBox)
		gm.processHits(now)
		if i <= 10 {
			assert.False(t, gm.world.Contains(bulletID), "hit %d should remove the bullet", i)
		} else {
			assert.True(t, gm.world.Contains(bulletID), "a dead player cannot be hit")
		}
	}

	var health []int32
	for _, m := range ofType[*messages.SetHealth](out.received(bob)) {
		health = append(health, m.Health)
	}
	assert.Equal(t, []int32{90, 80, 70, 60, 50, 40, 30, 20, 10, 0}, health)
	assert.Len(t, ofType[*messages.NotifyHit](out.received(ana)), 10)
	assert.Equal(t, &messages.NotifyHit{EmitterBoxID: shooter.BoxID, VictimBoxID: victim.BoxID}, ofType[*messages.NotifyHit](out.received(ana))[0])
	assert.Equal(t, []uuid.UUID{bob}, out.disconnects)
	assert.Len(t, ofType[*messages.ServerMessage](out.received(ana)), 1)
	assert.False(t, gm.world.Contains(victim.BoxID))
	assert.Equal(t, PlayerStateDisconnected, victim.State)

	require.Len(t, kills, 1)
	kill := <-kills
	assert.Equal(t, "ana", kill.Killer)
	assert.Equal(t, "bob", kill.Victim)
	assert.Equal(t, gm.MatchID(), kill.MatchID)

	// input still in flight from the dead player is dropped, then the disconnect removes it quietly
	out.reset()
	require.NoError(t, events.Enqueue(&network.MessageEvent{ConnectionID: bob, Message: &messages.InputState{Fire: true}}))
	require.NoError(t, events.Enqueue(&network.DisconnectEvent{ConnectionID: bob}))
	require.NotPanics(t, func() { gm.gameTick(t0.Add(20 * time.Second)) })
	assert.NotContains(t, gm.players, bob)
	assert.Empty(t, ofType[*messages.ServerMessage](out.received(ana)))
	assert.NotContains(t, ofType[*messages.RemoveBox](out.received(ana)), &messages.RemoveBox{BoxID: victim.BoxID})
}

func TestGameManager_selfHitIsIgnored(t *testing.T) {
	gm, events, out := newTestGame(t, NewGameManagerOptions{})
	ana := join(t, gm, events, "ana", t0)
	p := gm.players[ana]
	box := gm.character(p)
	out.reset()

	p.Input.Fire = true
	gm.fire(p, box, t0.Add(time.Second))
	require.Len(t, gm.bullets, 1)
	var bulletID int32
	for id := range gm.bullets {
		bulletID = id
	}
	bullet, _ := gm.world.Get(bulletID)

	gm.handleCollision(box, bullet)
	gm.processHits(t0.Add(time.Second))

	assert.True(t, gm.world.Contains(bulletID))
	assert.Equal(t, constants.PlayerMaxHealth, p.Health)
	assert.Empty(t, ofType[*messages.NotifyHit](out.received(ana)))
}

func TestGameManager_eventWithoutPlayerPanics(t *testing.T) {
	tests := []struct {
		name  string
		event interface{}
	}{
		{
			name:  "message",
			event: &network.MessageEvent{ConnectionID: uuid.New(), Message: &messages.InputState{}},
		},
		{
			name:  "disconnect",
			event: &network.DisconnectEvent{ConnectionID: uuid.New()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gm, events, _ := newTestGame(t, NewGameManagerOptions{})
			require.NoError(t, events.Enqueue(tt.event))

			var recovered interface{}
			func() {
				defer func() { recovered = recover() }()
				gm.gameTick(t0)
			}()

			require.NotNil(t, recovered)
			err, ok := recovered.(error)
			require.True(t, ok)
			var violation *InvariantViolation
			assert.ErrorAs(t, err, &violation)
		})
	}
}

// newBullet fires one bullet from p and returns its box.
func newBullet(t *testing.T, gm *GameManager, p *Player, now time.Time) *physics.Box {
	t.Helper()
	before := make(map[int32]bool, len(gm.bullets))
	for id := range gm.bullets {
		before[id] = true
	}
	p.Input.Fire = true
	gm.fire(p, gm.character(p), now)
	for id := range gm.bullets {
		if !before[id] {
			b, ok := gm.world.Get(id)
			require.True(t, ok)
			return b
		}
	}
	require.FailNow(t, "no bullet fired")
	return nil
}

func TestGameManager_hitsRecordedWhileProcessingAreKept(t *testing.T) {
	var inject func()
	sender := gamemocks.NewSender(t)
	sender.EXPECT().Send(mock.Anything, mock.Anything).RunAndReturn(func(uuid.UUID, messages.Message) error {
		if inject != nil {
			f := inject
			inject = nil
			f()
		}
		return nil
	}).Maybe()
	sender.EXPECT().Multicast(mock.Anything, mock.Anything).Maybe()
	sender.EXPECT().Broadcast(mock.Anything).Maybe()
	sender.EXPECT().Disconnect(mock.Anything).Maybe()

	events := queue.NewInMemoryQueue(0)
	gm := NewGameManager(NewGameManagerOptions{EventQueue: events, Sender: sender, Seed: 1})
	shooter := gm.players[join(t, gm, events, "ana", t0)]
	victim := gm.players[join(t, gm, events, "bob", t0)]
	victimBox := gm.character(victim)

	first := newBullet(t, gm, shooter, t0.Add(1*time.Second))
	second := newBullet(t, gm, shooter, t0.Add(2*time.Second))
	third := newBullet(t, gm, shooter, t0.Add(3*time.Second))
	fourth := newBullet(t, gm, shooter, t0.Add(4*time.Second))

	gm.handleCollision(first, victimBox)
	gm.handleCollision(second, victimBox)
	// the first SetHealth records two more hits, as a handler would
	inject = func() {
		gm.handleCollision(third, victimBox)
		gm.handleCollision(fourth, victimBox)
	}
	gm.processHits(t0.Add(4 * time.Second))

	assert.False(t, gm.world.Contains(first.ID))
	assert.False(t, gm.world.Contains(second.ID))
	assert.True(t, gm.world.Contains(third.ID))
	assert.True(t, gm.world.Contains(fourth.ID))
	assert.Equal(t, constants.PlayerMaxHealth-2*constants.BulletDamage, victim.Health)
	assert.Equal(t, []hit{
		{bulletID: third.ID, victimBoxID: victimBox.ID},
		{bulletID: fourth.ID, victimBoxID: victimBox.ID},
	}, gm.pendingHits)
}

func TestGameManager_motionIsBroadcastOnChange(t *testing.T) {
	gm, events, out := newTestGame(t, NewGameManagerOptions{})
	addFloor(gm)
	crate := &physics.Box{
		ID:                gm.ids.Next(),
		Position:          mgl64.Vec3{5, 1, 5},
		Size:              mgl64.Vec3{1, 1, 1},
		Mass:              constants.CrateMass,
		AffectedByPhysics: true,
	}
	gm.addBox(crate)

	ana := join(t, gm, events, "ana", t0)
	box := gm.character(gm.players[ana])
	box.Position = mgl64.Vec3{0, 1.5, 0}

	motionOf := func(id int32) int {
		n := 0
		for _, m := range ofType[*messages.BoxUpdateMotion](out.received(ana)) {
			if m.ID == id {
				n++
			}
		}
		return n
	}
	assert.Equal(t, 1, motionOf(crate.ID))

	out.reset()
	gm.gameTick(t0.Add(16 * time.Millisecond))
	assert.Equal(t, 0, motionOf(crate.ID), "resting crate")
	assert.Equal(t, 1, motionOf(box.ID), "moved character")
	assert.True(t, box.InGround())

	out.reset()
	gm.gameTick(t0.Add(32 * time.Millisecond))
	assert.Empty(t, ofType[*messages.BoxUpdateMotion](out.received(ana)))
}

func TestGameManager_publishesSnapshots(t *testing.T) {
	store := state.NewInMemorySnapshotStore()
	gm, events, _ := newTestGame(t, NewGameManagerOptions{SnapshotStore: store})
	addFloor(gm)
	join(t, gm, events, "ana", t0)

	snapshot, err := store.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snapshot.Tick)
	assert.Equal(t, t0, snapshot.Timestamp)
	assert.Equal(t, gm.MatchID(), snapshot.MatchID)
	require.Len(t, snapshot.Players, 1)
	assert.Equal(t, "ana", snapshot.Players[0].Name)
	assert.Equal(t, "active", snapshot.Players[0].State)
	assert.Len(t, snapshot.Boxes, 2)
}

func TestGameManager_initializeWorld(t *testing.T) {
	gm, _, _ := newTestGame(t, NewGameManagerOptions{Seed: 7})
	gm.initializeWorld()
	assert.Equal(t, 1+4+constants.InteriorWallCount+constants.CrateCount, gm.world.Len())

	other, _, _ := newTestGame(t, NewGameManagerOptions{Seed: 7})
	other.initializeWorld()
	assert.Equal(t, gm.world.Snapshot(), other.world.Snapshot())
}

func TestGenerateWorld(t *testing.T) {
	ids := newIDAllocator()
	boxes := GenerateWorld(rand.New(rand.NewSource(42)), ids.Next)

	seen := map[int32]bool{}
	var interior, crates []*physics.Box
	for i, b := range boxes {
		assert.False(t, seen[b.ID], "duplicate id %d", b.ID)
		seen[b.ID] = true
		switch {
		case i < 5:
			assert.True(t, b.Static())
		case b.Mass > 0:
			crates = append(crates, b)
		default:
			interior = append(interior, b)
		}
	}
	assert.Equal(t, mgl64.Vec3{100, 1, 100}, boxes[0].Size)
	assert.Len(t, interior, constants.InteriorWallCount)
	assert.Len(t, crates, constants.CrateCount)

	spawn := &physics.Box{Position: mgl64.Vec3{0, 2, 0}, Size: mgl64.Vec3{constants.SpawnAreaSize, 100, constants.SpawnAreaSize}}
	for i, a := range interior {
		assert.False(t, physics.Overlaps(a, spawn), "wall %d in spawn area", a.ID)
		assert.LessOrEqual(t, a.Position.X()+a.Size.X()/2, constants.ArenaSize/2)
		for _, b := range interior[i+1:] {
			assert.False(t, physics.Overlaps(a, b), "walls %d and %d overlap", a.ID, b.ID)
		}
	}
	for _, c := range crates {
		assert.True(t, c.AffectedByPhysics)
		assert.Equal(t, constants.CrateMass, c.Mass)
	}
}
