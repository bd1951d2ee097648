// pkg/core/ball.go
package core

import "fmt"

// Vec3 is a single-precision vector in arena units (uu)
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Tuple returns the vector as an (x, y, z) triple
func (v Vec3) Tuple() [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

// Target is the goal a heatseeker ball is currently homing towards.
type Target int8

const (
	TargetNeutral    Target = 0
	TargetBlueGoal   Target = -1
	TargetOrangeGoal Target = 1
)

func (t Target) String() string {
	switch t {
	case TargetBlueGoal:
		return "blue"
	case TargetOrangeGoal:
		return "orange"
	default:
		return "neutral"
	}
}

// BallState is the simulated ball at one point in time.
// Radius and CollisionRadius are only ever changed together by the engine.
type BallState struct {
	Time            float32 `json:"time"`
	Location        Vec3    `json:"location"`
	Velocity        Vec3    `json:"velocity"`
	AngularVelocity Vec3    `json:"angularVelocity"`
	Radius          float32 `json:"radius"`
	CollisionRadius float32 `json:"collisionRadius"`
	Target          Target  `json:"target"`
}

// BallSlice is one full-fidelity sample of a trajectory
type BallSlice struct {
	Time            float32    `json:"time"`
	Location        [3]float32 `json:"location"`
	Velocity        [3]float32 `json:"velocity"`
	AngularVelocity [3]float32 `json:"angular_velocity"`
}

// SliceFromBall converts a ball state into an output slice.
func SliceFromBall(b BallState) BallSlice {
	return BallSlice{
		Time:            b.Time,
		Location:        b.Location.Tuple(),
		Velocity:        b.Velocity.Tuple(),
		AngularVelocity: b.AngularVelocity.Tuple(),
	}
}

func (s BallSlice) String() string {
	return fmt.Sprintf("Ball @%.2fs - location: %v, velocity: %v, angular velocity: %v",
		s.Time, s.Location, s.Velocity, s.AngularVelocity)
}

// HalfBallSlice is a reduced sample without angular velocity
type HalfBallSlice struct {
	Time     float32    `json:"time"`
	Location [3]float32 `json:"location"`
	Velocity [3]float32 `json:"velocity"`
}

// HalfSliceFromBall converts a ball state into a reduced output slice.
func HalfSliceFromBall(b BallState) HalfBallSlice {
	return HalfBallSlice{
		Time:     b.Time,
		Location: b.Location.Tuple(),
		Velocity: b.Velocity.Tuple(),
	}
}

func (s HalfBallSlice) String() string {
	return fmt.Sprintf("Ball @%.2fs - location: %v, velocity: %v", s.Time, s.Location, s.Velocity)
}

// BallPrediction holds every engine sample with all fields.
type BallPrediction struct {
	NumSlices int         `json:"num_slices"`
	Slices    []BallSlice `json:"slices"`
}

func (p BallPrediction) String() string {
	return fmt.Sprintf("Ball prediction - %d slices", p.NumSlices)
}

// HalfBallPrediction holds every second engine sample, starting at the first.
type HalfBallPrediction struct {
	NumSlices int             `json:"num_slices"`
	Slices    []HalfBallSlice `json:"slices"`
}

func (p HalfBallPrediction) String() string {
	return fmt.Sprintf("Ball prediction - %d slices", p.NumSlices)
}
