package telemetry

import (
	"fmt"
	"math"

	"github.com/ballsym/extension/internal/engine"
	"github.com/ballsym/extension/pkg/core"
)

// Validate checks every field of a snapshot and resolves its collision
// radius. It never touches session state.
func Validate(snap core.TelemetrySnapshot) (float32, error) {
	scalars := []struct {
		name string
		v    float32
	}{
		{"game_info.seconds_elapsed", snap.Time},
		{"game_info.world_gravity_z", snap.GravityZ},
		{"latest_touch.game_seconds", snap.LastTouch.Time},
	}
	for _, s := range scalars {
		if !finite(s.v) {
			return 0, fmt.Errorf("%w: %s is not a finite number", core.ErrInvalidTelemetry, s.name)
		}
	}

	vectors := []struct {
		name string
		v    core.Vec3
	}{
		{"physics.location", snap.Location},
		{"physics.velocity", snap.Velocity},
		{"physics.angular_velocity", snap.AngularVelocity},
	}
	for _, vec := range vectors {
		if !finite(vec.v.X) || !finite(vec.v.Y) || !finite(vec.v.Z) {
			return 0, fmt.Errorf("%w: %s has a non-finite component", core.ErrInvalidTelemetry, vec.name)
		}
	}

	r, err := Radius(snap.Shape)
	if err != nil {
		return 0, err
	}
	if !finite(r) || r <= 0 {
		return 0, fmt.Errorf("%w: collision shape resolves to radius %v", core.ErrInvalidTelemetry, r)
	}
	return r, nil
}

// Apply validates snap and then writes it into sim and ball. On error
// neither is modified.
func Apply(eng engine.Engine, sim *engine.Context, ball *core.BallState, snap core.TelemetrySnapshot) error {
	radius, err := Validate(snap)
	if err != nil {
		return err
	}

	sim.Gravity.Z = snap.GravityZ
	eng.Update(ball, snap.Time, snap.Location, snap.Velocity, snap.AngularVelocity)

	if abs32(ball.Radius-radius) > epsilon {
		eng.SetRadius(ball, radius)
	}

	if !sim.Heatseeker {
		return nil
	}
	ball.Target = NextTarget(ball.Target, *ball, snap)
	return nil
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}
