package game

import (
	"slices"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lleps/peinbol/pkg/game/constants"
	"github.com/lleps/peinbol/pkg/kinematic"
	"github.com/lleps/peinbol/pkg/log"
	"github.com/lleps/peinbol/pkg/messages"
	"github.com/lleps/peinbol/pkg/physics"
	"github.com/lleps/peinbol/pkg/repositories/models"
)

var killMessages = []string{
	"{killer} took down {victim}",
	"{killer} showed no mercy to {victim}",
	"{victim} did not think twice before messing with {killer}",
	"{victim} never saw {killer} coming",
	"{killer}'s bullet went straight through {victim}'s head",
	"{killer} is dominating {victim}",
}

// KillMessage fills a kill message template.
func KillMessage(template, killer, victim string) string {
	return strings.NewReplacer("{killer}", killer, "{victim}", victim).Replace(template)
}

// fire spawns a bullet in front of the player if the trigger is held and
// the cooldown has elapsed.
func (gm *GameManager) fire(p *Player, box *physics.Box, now time.Time) {
	if !p.Input.Fire || now.Sub(p.LastFire) < gm.fireCooldown {
		return
	}
	p.LastFire = now

	yaw, pitch := p.Input.CameraY, p.Input.CameraX
	origin := box.Position.
		Add(mgl64.Vec3{0, constants.BulletSpawnHeight, 0}).
		Add(kinematic.Front(yaw, pitch, constants.BulletSpawnDistance))

	b := &physics.Box{
		ID:                gm.ids.Next(),
		Kind:              physics.ShapeSphere,
		Position:          origin,
		Size:              mgl64.Vec3{constants.BulletRadius, constants.BulletRadius, constants.BulletRadius},
		Mass:              constants.BulletMass,
		AffectedByPhysics: true,
		BounceMultiplier:  constants.BulletBounce,
		TextureID:         constants.TextureMetal,
		TextureMultiplier: 1,
	}
	b.ApplyImpulse(kinematic.Front(yaw, pitch, constants.BulletSpeed*constants.BulletMass))

	gm.bullets[b.ID] = &bullet{
		spawnedAt:   now,
		emitterBox:  p.BoxID,
		emitterName: p.Name,
	}
	gm.addBox(b)
	log.Trace("Player %s fired bullet %d", p.Name, b.ID)
}

// handleCollision records overlapping pairs for processHits. It runs inside
// the physics step, so it must not change the world.
func (gm *GameManager) handleCollision(a, b *physics.Box) {
	switch {
	case a.Kind == physics.ShapeSphere && b.Kind == physics.ShapeCharacter:
		gm.pendingHits = append(gm.pendingHits, hit{bulletID: a.ID, victimBoxID: b.ID})
	case b.Kind == physics.ShapeSphere && a.Kind == physics.ShapeCharacter:
		gm.pendingHits = append(gm.pendingHits, hit{bulletID: b.ID, victimBoxID: a.ID})
	}
}

type hit struct {
	bulletID    int32
	victimBoxID int32
}

// processHits applies damage for bullets that touched a character this tick.
func (gm *GameManager) processHits(now time.Time) {
	hits := gm.pendingHits
	gm.pendingHits = nil

	for _, h := range hits {
		b, ok := gm.bullets[h.bulletID]
		if !ok {
			// removed by an earlier hit this tick
			continue
		}
		if b.emitterBox == h.victimBoxID {
			continue
		}
		victimID, ok := gm.characters[h.victimBoxID]
		if !ok {
			continue
		}
		victim := gm.players[victimID]
		if victim == nil || victim.State != PlayerStateActive {
			continue
		}

		gm.removeBox(h.bulletID)

		victim.Health -= constants.BulletDamage
		if victim.Health < 0 {
			victim.Health = 0
		}
		if err := gm.sender.Send(victim.ConnectionID, &messages.SetHealth{Health: victim.Health}); err != nil {
			log.Debug("Failed to send health to %s: %v", victim.Name, err)
		}
		gm.multicast(&messages.NotifyHit{EmitterBoxID: b.emitterBox, VictimBoxID: h.victimBoxID})
		log.Debug("%s hit %s, health %d", b.emitterName, victim.Name, victim.Health)

		if victim.Health <= 0 {
			gm.kill(victim, b.emitterName, now)
		}
	}
}

// kill takes the victim out of the world and closes its connection. The
// player itself is deleted when the disconnect event arrives.
func (gm *GameManager) kill(victim *Player, killer string, now time.Time) {
	gm.removeBox(victim.BoxID)
	victim.State = PlayerStateDisconnected

	text := KillMessage(killMessages[gm.rng.Intn(len(killMessages))], killer, victim.Name)
	gm.sender.Broadcast(&messages.ServerMessage{Text: text})
	log.Info("%s", text)

	gm.sender.Disconnect(victim.ConnectionID)
	gm.recordKill(killer, victim.Name, now)
}

func (gm *GameManager) recordKill(killer, victim string, now time.Time) {
	if gm.killChan == nil {
		return
	}
	kill := &models.Kill{
		MatchID:   gm.matchID,
		Killer:    killer,
		Victim:    victim,
		Timestamp: now.UnixMilli(),
	}
	select {
	case gm.killChan <- kill:
	default:
		log.Warn("Dropped kill record of %s by %s: stats queue full", victim, killer)
	}
}

// expireBullets removes bullets older than the TTL.
func (gm *GameManager) expireBullets(now time.Time) {
	var expired []int32
	for id, b := range gm.bullets {
		if now.Sub(b.spawnedAt) > gm.bulletTTL {
			expired = append(expired, id)
		}
	}
	slices.Sort(expired)
	for _, id := range expired {
		gm.removeBox(id)
	}
}
