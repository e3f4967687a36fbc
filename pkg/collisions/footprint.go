package collisions

import (
	"math"

	"github.com/solarlune/resolv"
)

const (
	// TagWall marks a footprint taken by a wall
	TagWall = "wall"
	// TagCrate marks a footprint taken by a loose crate
	TagCrate = "crate"
	// TagSpawn marks the area kept clear for players to spawn into
	TagSpawn = "spawn"
)

// Footprint tracks which parts of the ground plane are already taken while
// a world is being laid out. Coordinates are world X/Z with the origin at the
// centre of the area.
type Footprint struct {
	space     *resolv.Space
	halfWidth float64
	halfDepth float64
}

// NewFootprint creates an empty footprint of width (X) by depth (Z) world
// units, split into cells of one unit.
func NewFootprint(width, depth float64) *Footprint {
	return &Footprint{
		space:     resolv.NewSpace(int(math.Ceil(width)), int(math.Ceil(depth)), 1, 1),
		halfWidth: width / 2,
		halfDepth: depth / 2,
	}
}

// Reserve takes the rectangle of sizeX by sizeZ centred at (x, z) unless it
// shares a cell with something already reserved under one of the blocking
// tags. With no blocking tags anything reserved blocks. It reports whether
// the rectangle was taken.
func (f *Footprint) Reserve(x, z, sizeX, sizeZ float64, tag string, blocking ...string) bool {
	if !f.inside(x, z, sizeX, sizeZ) {
		return false
	}
	obj := f.object(x, z, sizeX, sizeZ, tag)
	f.space.Add(obj)
	if obj.Check(0, 0, blocking...) != nil {
		f.space.Remove(obj)
		return false
	}
	return true
}

func (f *Footprint) inside(x, z, sizeX, sizeZ float64) bool {
	return x-sizeX/2 >= -f.halfWidth && x+sizeX/2 <= f.halfWidth &&
		z-sizeZ/2 >= -f.halfDepth && z+sizeZ/2 <= f.halfDepth
}

// object converts a centred world rectangle into a resolv object whose
// origin is the top-left corner of the space.
func (f *Footprint) object(x, z, sizeX, sizeZ float64, tags ...string) *resolv.Object {
	return resolv.NewObject(x-sizeX/2+f.halfWidth, z-sizeZ/2+f.halfDepth, sizeX, sizeZ, tags...)
}
