package constants

import "time"

const (
	// PlayerMass is the mass of a character box
	PlayerMass float64 = 30.0
	// PlayerWidth is the X and Z size of a character box
	PlayerWidth float64 = 1.0
	// PlayerHeight is the Y size of a character box
	PlayerHeight float64 = 2.0
	// PlayerSpawnRange bounds the random X and Z of a spawn point
	PlayerSpawnRange float64 = 20.0
	// PlayerSpawnHeight is the Y a character drops from
	PlayerSpawnHeight float64 = 15.0
	// PlayerMaxHealth is the health a player spawns with
	PlayerMaxHealth int32 = 100

	// PlayerAcceleration is the horizontal acceleration produced by movement keys, in m/s²
	PlayerAcceleration float64 = 40.0
	// PlayerRunSpeed caps the horizontal speed movement keys can reach
	PlayerRunSpeed float64 = 7.0
	// PlayerWalkSpeed caps the horizontal speed while walking on the ground
	PlayerWalkSpeed float64 = 2.0
	// PlayerJumpSpeed is the vertical speed a jump adds
	PlayerJumpSpeed float64 = 6.0
	// PlayerJumpCooldown is the minimum time between jumps
	PlayerJumpCooldown = 300 * time.Millisecond

	// FireCooldown is the default minimum time between shots
	FireCooldown = 200 * time.Millisecond
	// BulletMass is the mass of a bullet sphere
	BulletMass float64 = 3.0
	// BulletRadius is the radius of a bullet sphere
	BulletRadius float64 = 0.2
	// BulletBounce is the restitution of a bullet
	BulletBounce float64 = 0.8
	// BulletSpeed is the speed a bullet leaves the weapon with, in m/s
	BulletSpeed float64 = 40.0
	// BulletSpawnDistance is how far in front of the eyes a bullet appears
	BulletSpawnDistance float64 = 1.5
	// BulletSpawnHeight is the eye height above the character centre
	BulletSpawnHeight float64 = 0.8
	// BulletTTL is the default lifetime of a bullet that hit nobody
	BulletTTL = 8000 * time.Millisecond
	// BulletDamage is the health a hit takes from the victim
	BulletDamage int32 = 10

	// TickInterval is the default sleep between game loop iterations
	TickInterval = 16 * time.Millisecond
	// BroadcastInterval is the default minimum time between motion broadcasts
	BroadcastInterval = 16 * time.Millisecond
	// MaxSimulationStep caps the time simulated in a single tick
	MaxSimulationStep = 100 * time.Millisecond

	// ArenaSize is the X and Z size of the floor
	ArenaSize float64 = 100.0
	// ArenaPlacementRange bounds the random X and Z of generated walls and crates
	ArenaPlacementRange float64 = 40.0
	// InteriorWallCount is the number of random walls
	InteriorWallCount = 26
	// InteriorWallLength is the long side of a random wall
	InteriorWallLength float64 = 6.0
	// InteriorWallThickness is the short side of a random wall
	InteriorWallThickness float64 = 2.0
	// InteriorWallMinHeight and InteriorWallMaxHeight bound a random wall's height
	InteriorWallMinHeight = 3
	InteriorWallMaxHeight = 10
	// CrateCount is the number of loose crates
	CrateCount = 21
	// CrateMass is the mass of a loose crate
	CrateMass float64 = 3.0
	// SpawnAreaSize is the side of the square around the origin kept free of walls
	SpawnAreaSize float64 = 8.0
	// PlacementAttempts bounds the retries for a single wall or crate
	PlacementAttempts = 20
)

// Texture ids understood by the clients.
const (
	TextureGrass int32 = iota + 1
	TextureBricks
	TextureMetal
	TextureCloth
	TextureCreeper
	TextureFootball
	TextureRubik
)

// CrateTextures are picked at random for loose crates.
var CrateTextures = []int32{TextureCloth, TextureMetal, TextureCreeper, TextureFootball, TextureRubik}
