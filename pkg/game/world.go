package game

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lleps/peinbol/pkg/collisions"
	"github.com/lleps/peinbol/pkg/game/constants"
	"github.com/lleps/peinbol/pkg/log"
	"github.com/lleps/peinbol/pkg/physics"
)

// GenerateWorld lays out the arena: a floor, four boundary walls, random
// interior walls and loose crates. The same rng seed yields the same layout.
func GenerateWorld(rng *rand.Rand, nextID func() int32) []*physics.Box {
	half := constants.ArenaSize / 2
	footprint := collisions.NewFootprint(constants.ArenaSize, constants.ArenaSize)
	footprint.Reserve(0, 0, constants.SpawnAreaSize, constants.SpawnAreaSize, collisions.TagSpawn)

	boxes := []*physics.Box{
		{
			ID:                nextID(),
			Kind:              physics.ShapeBox,
			Position:          mgl64.Vec3{0, 0, 0},
			Size:              mgl64.Vec3{constants.ArenaSize, 1, constants.ArenaSize},
			TextureID:         constants.TextureGrass,
			TextureMultiplier: 50,
		},
	}

	// boundary walls
	for _, wall := range []struct {
		position mgl64.Vec3
		size     mgl64.Vec3
	}{
		{position: mgl64.Vec3{-half, -15, 0}, size: mgl64.Vec3{2, 50, constants.ArenaSize}},
		{position: mgl64.Vec3{half, -15, 0}, size: mgl64.Vec3{2, 50, constants.ArenaSize}},
		{position: mgl64.Vec3{0, -15, -half}, size: mgl64.Vec3{constants.ArenaSize, 50, 2}},
		{position: mgl64.Vec3{0, -15, half}, size: mgl64.Vec3{constants.ArenaSize, 50, 2}},
	} {
		boxes = append(boxes, &physics.Box{
			ID:                nextID(),
			Kind:              physics.ShapeBox,
			Position:          wall.position,
			Size:              wall.size,
			TextureID:         constants.TextureBricks,
			TextureMultiplier: 10,
		})
	}

	walls := 0
	for i := 0; i < constants.InteriorWallCount; i++ {
		for attempt := 0; attempt < constants.PlacementAttempts; attempt++ {
			x, z := randomPlacement(rng), randomPlacement(rng)
			height := float64(constants.InteriorWallMinHeight + rng.Intn(constants.InteriorWallMaxHeight-constants.InteriorWallMinHeight+1))
			size := mgl64.Vec3{constants.InteriorWallThickness, height, constants.InteriorWallLength}
			if rng.Intn(2) == 1 {
				size = mgl64.Vec3{constants.InteriorWallLength, height, constants.InteriorWallThickness}
			}
			if !footprint.Reserve(x, z, size.X(), size.Z(), collisions.TagWall, collisions.TagWall, collisions.TagSpawn) {
				continue
			}
			boxes = append(boxes, &physics.Box{
				ID:                nextID(),
				Kind:              physics.ShapeBox,
				Position:          mgl64.Vec3{x, 2, z},
				Size:              size,
				TextureID:         constants.TextureMetal,
				TextureMultiplier: 1,
			})
			walls++
			break
		}
	}

	crates := 0
	for i := 0; i < constants.CrateCount; i++ {
		for attempt := 0; attempt < constants.PlacementAttempts; attempt++ {
			x, z := randomPlacement(rng), randomPlacement(rng)
			if !footprint.Reserve(x, z, 1, 1, collisions.TagCrate, collisions.TagWall, collisions.TagCrate) {
				continue
			}
			boxes = append(boxes, &physics.Box{
				ID:                nextID(),
				Kind:              physics.ShapeBox,
				Position:          mgl64.Vec3{x, 2, z},
				Size:              mgl64.Vec3{1, 1, 1},
				Mass:              constants.CrateMass,
				AffectedByPhysics: true,
				TextureID:         constants.CrateTextures[rng.Intn(len(constants.CrateTextures))],
				TextureMultiplier: 1,
			})
			crates++
			break
		}
	}

	log.Debug("Generated world with %d interior walls and %d crates", walls, crates)
	return boxes
}

// randomPlacement returns a whole coordinate within the placement range.
func randomPlacement(rng *rand.Rand) float64 {
	r := int(constants.ArenaPlacementRange)
	return float64(rng.Intn(2*r+1) - r)
}
