package session

import (
	"fmt"

	"github.com/ballsym/extension/internal/engine"
	"github.com/ballsym/extension/pkg/core"
)

// Step advances the ball by one fixed tick and returns the new state.
func (s *Session) Step() (core.BallSlice, error) {
	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()
	s.ballMu.Lock()
	defer s.ballMu.Unlock()

	if err := s.usable(); err != nil {
		return core.BallSlice{}, fmt.Errorf("step: %w", err)
	}

	step := s.engine.Step
	if s.sim.Heatseeker {
		step = s.engine.StepHeatseeker
	}

	if err := s.critical("step", func() {
		step(s.sim, &s.ball, engine.SimulationDt)
	}); err != nil {
		return core.BallSlice{}, err
	}
	return core.SliceFromBall(s.ball), nil
}
