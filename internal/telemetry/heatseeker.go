package telemetry

import (
	"math"

	"github.com/ballsym/extension/internal/engine"
	"github.com/ballsym/extension/pkg/core"
)

// epsilon is the float32 machine epsilon
const epsilon = float32(1.1920929e-07)

// touchWindow is how recent a touch must be to decide the target outright
const touchWindow float32 = 0.1

// NextTarget returns the heatseeker target after observing a snapshot.
// ball is the state after the snapshot has been applied. Only the first
// matching rule fires:
//
//  1. nobody has touched the ball: neutral
//  2. a touch within the last 0.1s: the goal the touching team attacks
//  3. no target yet, or the ball is at a back wall: follow the ball's y velocity
//
// Otherwise the current target is kept.
func NextTarget(current core.Target, ball core.BallState, snap core.TelemetrySnapshot) core.Target {
	touch := snap.LastTouch

	switch {
	case touch.Time < epsilon:
		return core.TargetNeutral
	case snap.Time-touch.Time < touchWindow:
		return teamTarget(touch.Team)
	case current == core.TargetNeutral || abs32(ball.Location.Y) >= engine.HeatseekerTurnaroundY:
		if ball.Velocity.Y < 0 {
			return core.TargetBlueGoal
		}
		return core.TargetOrangeGoal
	}
	return current
}

// teamTarget maps a touching team to the goal it attacks: orange (team 1)
// shoots at the blue goal.
func teamTarget(team int) core.Target {
	if team == 1 {
		return core.TargetBlueGoal
	}
	return core.TargetOrangeGoal
}

func abs32(f float32) float32 {
	return float32(math.Abs(float64(f)))
}
