package engine

import (
	"math"

	"github.com/ballsym/extension/pkg/core"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// PredictionHorizon is how far ahead Predict simulates, in seconds.
	PredictionHorizon = 6
	// PredictionSlices is the number of samples in one prediction.
	PredictionSlices = PredictionHorizon * TickRate

	ballDrag        = 0.0305
	maxSpeed        = 6000.
	maxAngularSpeed = 6.

	// surface response, after RLUtilities
	restitution  = 0.6
	surfaceMu    = 0.285
	slipScale    = 2.0
	spinInertiaA = 0.0003839
)

// Reference is a box-arena ball simulation. It is deterministic and has no
// state of its own, so one value can serve any number of sessions.
type Reference struct{}

// NewReference returns the reference engine.
func NewReference() *Reference {
	return &Reference{}
}

var _ Engine = (*Reference)(nil)

// Load builds the context and resting ball of a preset.
func (e *Reference) Load(preset core.Preset) (Context, core.BallState, error) {
	arena, err := ArenaFor(preset)
	if err != nil {
		return Context{}, core.BallState{}, err
	}

	sim := Context{
		Preset:     preset,
		Gravity:    core.Vec3{Z: standardGravityZ},
		Arena:      arena,
		Heatseeker: preset.Heatseeker(),
	}
	ball := core.BallState{
		Location:        core.Vec3{Z: arena.CollisionRadius},
		Radius:          arena.BallRadius,
		CollisionRadius: arena.CollisionRadius,
	}
	return sim, ball, nil
}

// Update overwrites the ball clock and kinematics.
func (e *Reference) Update(ball *core.BallState, time float32, location, velocity, angularVelocity core.Vec3) {
	ball.Time = time
	ball.Location = location
	ball.Velocity = velocity
	ball.AngularVelocity = angularVelocity
}

// SetRadius changes the ball radius and the collision radius derived from it.
func (e *Reference) SetRadius(ball *core.BallState, radius float32) {
	ball.Radius = radius
	ball.CollisionRadius = radius + collisionRadiusPadding
}

// Step advances the ball by dt under gravity, drag and arena contact.
func (e *Reference) Step(sim *Context, ball *core.BallState, dt float32) {
	h := float64(dt)
	v := toR3(ball.Velocity)
	v = r3.Add(v, r3.Scale(h, r3.Sub(toR3(sim.Gravity), r3.Scale(ballDrag, v))))
	e.integrate(sim, ball, v, h)
	ball.Time += dt
}

// Predict returns PredictionSlices samples starting one tick after ball.Time.
func (e *Reference) Predict(sim *Context, ball core.BallState) []core.BallState {
	return e.trajectory(ball, func(b *core.BallState) { e.Step(sim, b, SimulationDt) })
}

func (e *Reference) trajectory(ball core.BallState, step func(*core.BallState)) []core.BallState {
	out := make([]core.BallState, 0, PredictionSlices)
	for i := 0; i < PredictionSlices; i++ {
		step(&ball)
		out = append(out, ball)
	}
	return out
}

// integrate moves the ball with velocity v over h seconds and resolves
// contacts against the arena box.
func (e *Reference) integrate(sim *Context, ball *core.BallState, v r3.Vec, h float64) {
	w := clampNorm(toR3(ball.AngularVelocity), maxAngularSpeed)
	v = clampNorm(v, maxSpeed)
	p := r3.Add(toR3(ball.Location), r3.Scale(h, v))

	r := float64(ball.CollisionRadius)
	for _, pl := range planes(sim.Arena) {
		depth := r - (r3.Dot(p, pl.normal) - pl.offset)
		if depth <= 0 {
			continue
		}
		p = r3.Add(p, r3.Scale(depth, pl.normal))
		v, w = bounce(pl.normal, r, v, w)
	}

	ball.Location = fromR3(p)
	ball.Velocity = fromR3(v)
	ball.AngularVelocity = fromR3(w)
}

// bounce applies restitution along n and friction plus spin transfer at the
// contact point.
func bounce(n r3.Vec, radius float64, v, w r3.Vec) (r3.Vec, r3.Vec) {
	vn := r3.Dot(v, n)
	if vn >= 0 {
		return v, w
	}

	contact := r3.Scale(-radius, n)
	vPerp := r3.Scale(vn, n)
	vPara := r3.Sub(v, vPerp)
	slip := r3.Add(vPara, r3.Cross(contact, w))

	ratio := r3.Norm(vPerp) / math.Max(r3.Norm(slip), 1e-4)
	dPerp := r3.Scale(-(1 + restitution), vPerp)
	dPara := r3.Scale(-math.Min(1, slipScale*ratio)*surfaceMu, slip)

	w = r3.Add(w, r3.Scale(spinInertiaA, r3.Cross(contact, dPara)))
	v = r3.Add(v, r3.Add(dPerp, dPara))
	return v, w
}

type plane struct {
	normal r3.Vec
	offset float64
}

// planes returns the inward-facing boundary planes of the arena box.
func planes(a Arena) [6]plane {
	return [6]plane{
		{normal: r3.Vec{Z: 1}, offset: 0},
		{normal: r3.Vec{Z: -1}, offset: -a.Height},
		{normal: r3.Vec{X: 1}, offset: -a.HalfWidth},
		{normal: r3.Vec{X: -1}, offset: -a.HalfWidth},
		{normal: r3.Vec{Y: 1}, offset: -a.HalfLength},
		{normal: r3.Vec{Y: -1}, offset: -a.HalfLength},
	}
}

func clampNorm(v r3.Vec, limit float64) r3.Vec {
	n := r3.Norm(v)
	if n <= limit || n == 0 {
		return v
	}
	return r3.Scale(limit/n, v)
}

func toR3(v core.Vec3) r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func fromR3(v r3.Vec) core.Vec3 {
	return core.Vec3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
