package engine

import (
	"testing"

	"github.com/ballsym/extension/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadPreset(t *testing.T, p core.Preset) (*Reference, Context, core.BallState) {
	t.Helper()
	e := NewReference()
	sim, ball, err := e.Load(p)
	require.NoError(t, err)
	return e, sim, ball
}

func TestLoad_AllPresets(t *testing.T) {
	for _, p := range core.Presets {
		t.Run(string(p), func(t *testing.T) {
			_, sim, ball := loadPreset(t, p)
			assert.Equal(t, p, sim.Preset)
			assert.Equal(t, standardGravityZ, sim.Gravity.Z)
			assert.Equal(t, p == core.PresetStandardHeatseeker, sim.Heatseeker)
			assert.Equal(t, sim.Arena.BallRadius, ball.Radius)
			assert.Equal(t, sim.Arena.CollisionRadius, ball.CollisionRadius)
			assert.Equal(t, core.TargetNeutral, ball.Target)
		})
	}
}

func TestLoad_UnknownPreset(t *testing.T) {
	_, _, err := NewReference().Load(core.Preset("rumble"))
	require.Error(t, err)
}

func TestSetRadius_UpdatesCollisionRadius(t *testing.T) {
	e, _, ball := loadPreset(t, core.PresetStandard)
	e.SetRadius(&ball, 50)
	assert.Equal(t, float32(50), ball.Radius)
	assert.InDelta(t, 51.9, ball.CollisionRadius, 1e-5)
}

func TestStep_FallsUnderGravity(t *testing.T) {
	e, sim, ball := loadPreset(t, core.PresetStandard)
	e.Update(&ball, 0, core.Vec3{Z: 1000}, core.Vec3{}, core.Vec3{})

	e.Step(&sim, &ball, SimulationDt)

	assert.InDelta(t, SimulationDt, ball.Time, 1e-7)
	assert.Less(t, ball.Velocity.Z, float32(0))
	assert.Less(t, ball.Location.Z, float32(1000))
}

func TestStep_StaysInsideArena(t *testing.T) {
	e, sim, ball := loadPreset(t, core.PresetHoops)
	e.Update(&ball, 0, core.Vec3{X: 2500, Y: -3000, Z: 500}, core.Vec3{X: 3000, Y: -3000, Z: -2500}, core.Vec3{X: 1})

	for i := 0; i < 5*TickRate; i++ {
		e.Step(&sim, &ball, SimulationDt)
		r := float64(ball.CollisionRadius)
		require.GreaterOrEqual(t, float64(ball.Location.Z), r-1e-3, "tick %d", i)
		require.LessOrEqual(t, float64(ball.Location.Z), sim.Arena.Height-r+1e-3, "tick %d", i)
		require.LessOrEqual(t, abs(float64(ball.Location.X)), sim.Arena.HalfWidth-r+1e-3, "tick %d", i)
		require.LessOrEqual(t, abs(float64(ball.Location.Y)), sim.Arena.HalfLength-r+1e-3, "tick %d", i)
	}
}

func TestStep_ClampsSpeed(t *testing.T) {
	e, sim, ball := loadPreset(t, core.PresetStandard)
	sim.Gravity = core.Vec3{}
	e.Update(&ball, 0, core.Vec3{Z: 1000}, core.Vec3{X: 9000}, core.Vec3{Z: 20})

	e.Step(&sim, &ball, SimulationDt)

	assert.LessOrEqual(t, ball.Velocity.X, float32(maxSpeed))
	assert.InDelta(t, maxAngularSpeed, ball.AngularVelocity.Z, 1e-4)
}

func TestPredict_LengthAndClock(t *testing.T) {
	e, sim, ball := loadPreset(t, core.PresetStandard)
	ball.Time = 10

	raw := e.Predict(&sim, ball)

	require.Len(t, raw, PredictionSlices)
	assert.InDelta(t, 10+SimulationDt, raw[0].Time, 1e-5)
	assert.InDelta(t, 10+PredictionHorizon, raw[len(raw)-1].Time, 5e-3)
	assert.Equal(t, float32(10), ball.Time, "input ball must not change")
}

func TestPredict_Deterministic(t *testing.T) {
	e, sim, ball := loadPreset(t, core.PresetDropshot)
	e.Update(&ball, 3, core.Vec3{X: 100, Y: 200, Z: 800}, core.Vec3{X: 1200, Y: -400, Z: 300}, core.Vec3{X: 0.5, Y: -0.2})

	assert.Equal(t, e.Predict(&sim, ball), e.Predict(&sim, ball))
}

func TestStepHeatseeker_NeutralMatchesStep(t *testing.T) {
	e, sim, ball := loadPreset(t, core.PresetStandardHeatseeker)
	e.Update(&ball, 0, core.Vec3{Z: 600}, core.Vec3{X: 300}, core.Vec3{})
	plain := ball

	e.StepHeatseeker(&sim, &ball, SimulationDt)
	e.Step(&sim, &plain, SimulationDt)

	assert.Equal(t, plain, ball)
}

func TestStepHeatseeker_HomesTowardsTarget(t *testing.T) {
	e, sim, ball := loadPreset(t, core.PresetStandardHeatseeker)
	e.Update(&ball, 0, core.Vec3{Z: 400}, core.Vec3{X: 1000}, core.Vec3{})
	ball.Target = core.TargetBlueGoal

	for i := 0; i < TickRate; i++ {
		e.StepHeatseeker(&sim, &ball, SimulationDt)
	}

	assert.Less(t, ball.Velocity.Y, float32(0), "ball should turn towards the blue goal")
	assert.Less(t, ball.Location.Y, float32(0))
}

func TestPredictHeatseeker_FlipsAtTurnaround(t *testing.T) {
	e, sim, ball := loadPreset(t, core.PresetStandardHeatseeker)
	e.Update(&ball, 0, core.Vec3{Y: 4000, Z: 320}, core.Vec3{Y: 4000}, core.Vec3{})
	ball.Target = core.TargetOrangeGoal

	raw := e.PredictHeatseeker(&sim, ball)

	flipped := false
	for _, b := range raw {
		if b.Target == core.TargetBlueGoal {
			flipped = true
			break
		}
	}
	assert.True(t, flipped)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
