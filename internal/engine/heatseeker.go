package engine

import (
	"math"

	"github.com/ballsym/extension/pkg/core"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	heatseekerInitialSpeed = 2900.
	heatseekerMaxSpeed     = 4600.
	heatseekerTurnBlend    = 1.45
	heatseekerSpeedBlend   = 0.3
	heatseekerTargetZ      = 320.

	// HeatseekerTurnaroundY is the |y| past which a homing ball retargets the
	// opposite goal.
	HeatseekerTurnaroundY float32 = 4820
)

// StepHeatseeker advances a heatseeker ball by dt. A ball with a neutral
// target falls like a regular ball; otherwise it steers towards the target
// goal and ignores gravity.
func (e *Reference) StepHeatseeker(sim *Context, ball *core.BallState, dt float32) {
	if ball.Target == core.TargetNeutral {
		e.Step(sim, ball, dt)
		return
	}

	h := float64(dt)
	p := toR3(ball.Location)
	v := toR3(ball.Velocity)

	goal := r3.Vec{Y: float64(ball.Target) * sim.Arena.HalfLength, Z: heatseekerTargetZ}
	want := unitOr(r3.Sub(goal, p), r3.Vec{Y: float64(ball.Target)})

	speed := r3.Norm(v)
	dir := unitOr(v, want)
	dir = unitOr(r3.Add(dir, r3.Scale(math.Min(1, heatseekerTurnBlend*h), r3.Sub(want, dir))), want)

	targetSpeed := math.Min(math.Max(speed, heatseekerInitialSpeed), heatseekerMaxSpeed)
	speed += (targetSpeed - speed) * math.Min(1, heatseekerSpeedBlend*h)

	e.integrate(sim, ball, r3.Scale(speed, dir), h)
	ball.Time += dt
}

// PredictHeatseeker is Predict for heatseeker physics. The target flips when
// the ball passes the turnaround line on the side it was homing to.
func (e *Reference) PredictHeatseeker(sim *Context, ball core.BallState) []core.BallState {
	return e.trajectory(ball, func(b *core.BallState) {
		e.StepHeatseeker(sim, b, SimulationDt)
		y := b.Location.Y
		switch {
		case b.Target == core.TargetOrangeGoal && y >= HeatseekerTurnaroundY:
			b.Target = core.TargetBlueGoal
		case b.Target == core.TargetBlueGoal && y <= -HeatseekerTurnaroundY:
			b.Target = core.TargetOrangeGoal
		}
	})
}

func unitOr(v, fallback r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < 1e-9 {
		return fallback
	}
	return r3.Scale(1/n, v)
}
