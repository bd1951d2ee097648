// Package engine defines the simulation engine contract used by sessions and
// ships a reference implementation of it.
//
// The session layer only relies on the Engine interface: loading a preset,
// overwriting ball kinematics, changing the ball radius, stepping one tick and
// producing a raw trajectory. Any implementation that honors those calls can
// be plugged into a session.
package engine

import "github.com/ballsym/extension/pkg/core"

// TickRate is the fixed simulation rate in Hz.
const TickRate = 120

// SimulationDt is the length of one fixed tick in seconds.
const SimulationDt float32 = 1. / TickRate

// Context is the arena configuration and world state a ball is simulated in.
// A session replaces it wholesale on reload and only ever writes Gravity.Z
// afterwards.
type Context struct {
	Preset     core.Preset
	Gravity    core.Vec3
	Arena      Arena
	Heatseeker bool
}

// Engine is the physics collaborator behind a session.
//
// Step and Predict must be deterministic for identical inputs. Predict never
// mutates the ball passed to it; its first sample is one tick after ball.Time.
type Engine interface {
	Load(preset core.Preset) (Context, core.BallState, error)
	Update(ball *core.BallState, time float32, location, velocity, angularVelocity core.Vec3)
	SetRadius(ball *core.BallState, radius float32)
	Step(sim *Context, ball *core.BallState, dt float32)
	StepHeatseeker(sim *Context, ball *core.BallState, dt float32)
	Predict(sim *Context, ball core.BallState) []core.BallState
	PredictHeatseeker(sim *Context, ball core.BallState) []core.BallState
}
