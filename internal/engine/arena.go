package engine

import (
	"fmt"

	"github.com/ballsym/extension/pkg/core"
)

// Arena approximates a field as an axis-aligned box centered on the kickoff
// spot, floor at z=0.
type Arena struct {
	HalfWidth  float64 // x extent
	HalfLength float64 // y extent, back walls
	Height     float64 // ceiling

	BallRadius      float32
	CollisionRadius float32
}

// collisionRadiusPadding is added to the ball radius to get the radius used
// against arena geometry
const collisionRadiusPadding float32 = 1.9

const standardGravityZ float32 = -650

var arenas = map[core.Preset]Arena{
	core.PresetStandard: {
		HalfWidth: 4096, HalfLength: 5120, Height: 2044,
		BallRadius: 91.25, CollisionRadius: 93.15,
	},
	core.PresetStandardThrowback: {
		HalfWidth: 4096, HalfLength: 5900, Height: 2300,
		BallRadius: 91.25, CollisionRadius: 93.15,
	},
	core.PresetStandardHeatseeker: {
		HalfWidth: 4096, HalfLength: 5120, Height: 2044,
		BallRadius: 91.25, CollisionRadius: 93.15,
	},
	core.PresetHoops: {
		HalfWidth: 2966.67, HalfLength: 3581, Height: 1820,
		BallRadius: 96.3831, CollisionRadius: 98.2,
	},
	core.PresetDropshot: {
		HalfWidth: 5026, HalfLength: 4555, Height: 2000,
		BallRadius: 100.2565, CollisionRadius: 102.24,
	},
}

// ArenaFor returns the arena geometry of a preset.
func ArenaFor(preset core.Preset) (Arena, error) {
	a, ok := arenas[preset]
	if !ok {
		return Arena{}, fmt.Errorf("no arena for preset %q", preset)
	}
	return a, nil
}
