package session

import (
	"fmt"

	"github.com/ballsym/extension/internal/engine"
	"github.com/ballsym/extension/pkg/core"
)

// Fidelity selects how much of a raw trajectory is materialized
type Fidelity int

const (
	// FidelityFull keeps every sample with angular velocity.
	FidelityFull Fidelity = iota
	// FidelityHalf keeps samples 0, 2, 4, ... without angular velocity.
	FidelityHalf
)

func (f Fidelity) String() string {
	if f == FidelityHalf {
		return "half"
	}
	return "full"
}

// Prediction is the result of Predict at either fidelity.
// First and Last are the bounding raw samples at full fidelity.
type Prediction struct {
	Fidelity Fidelity
	Full     core.BallPrediction
	Half     core.HalfBallPrediction
	First    core.BallSlice
	Last     core.BallSlice
}

// Value returns the materialized sequence for the prediction's fidelity.
func (p Prediction) Value() any {
	if p.Fidelity == FidelityHalf {
		return p.Half
	}
	return p.Full
}

// Len is the number of slices in the materialized sequence.
func (p Prediction) Len() int {
	if p.Fidelity == FidelityHalf {
		return p.Half.NumSlices
	}
	return p.Full.NumSlices
}

// Predict runs one prediction. A nil startTime predicts from the ball's own
// clock.
func (s *Session) Predict(f Fidelity, startTime *float32) (Prediction, error) {
	raw, err := s.trajectory(startTime)
	if err != nil {
		return Prediction{}, err
	}
	p := Prediction{Fidelity: f}
	if n := len(raw); n > 0 {
		p.First = core.SliceFromBall(raw[0])
		p.Last = core.SliceFromBall(raw[n-1])
	}
	if f == FidelityHalf {
		p.Half = Half(raw)
	} else {
		p.Full = Full(raw)
	}
	return p, nil
}

// PredictFull predicts from the current ball state at full fidelity.
func (s *Session) PredictFull() (core.BallPrediction, error) {
	raw, err := s.trajectory(nil)
	if err != nil {
		return core.BallPrediction{}, err
	}
	return Full(raw), nil
}

// PredictFullFrom predicts at full fidelity with the ball clock re-rooted at
// startTime.
func (s *Session) PredictFullFrom(startTime float32) (core.BallPrediction, error) {
	raw, err := s.trajectory(&startTime)
	if err != nil {
		return core.BallPrediction{}, err
	}
	return Full(raw), nil
}

// PredictHalf predicts from the current ball state at half fidelity.
func (s *Session) PredictHalf() (core.HalfBallPrediction, error) {
	raw, err := s.trajectory(nil)
	if err != nil {
		return core.HalfBallPrediction{}, err
	}
	return Half(raw), nil
}

// PredictHalfFrom predicts at half fidelity with the ball clock re-rooted at
// startTime.
func (s *Session) PredictHalfFrom(startTime float32) (core.HalfBallPrediction, error) {
	raw, err := s.trajectory(&startTime)
	if err != nil {
		return core.HalfBallPrediction{}, err
	}
	return Half(raw), nil
}

// trajectory copies context and ball under shared locks and runs the engine
// on the copies, so concurrent steps never show through a prediction.
func (s *Session) trajectory(startTime *float32) ([]core.BallState, error) {
	sim, ball, err := s.snapshot()
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	if startTime != nil {
		ball.Time = *startTime
	}
	if sim.Heatseeker {
		return s.engine.PredictHeatseeker(&sim, ball), nil
	}
	return s.engine.Predict(&sim, ball), nil
}

func (s *Session) snapshot() (engine.Context, core.BallState, error) {
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()
	s.ballMu.RLock()
	defer s.ballMu.RUnlock()

	if err := s.usable(); err != nil {
		return engine.Context{}, core.BallState{}, err
	}
	return *s.sim, s.ball, nil
}

// Full materializes every raw sample.
func Full(raw []core.BallState) core.BallPrediction {
	slices := make([]core.BallSlice, len(raw))
	for i, b := range raw {
		slices[i] = core.SliceFromBall(b)
	}
	return core.BallPrediction{NumSlices: len(slices), Slices: slices}
}

// Half materializes raw samples 0, 2, 4, ... The engine's first sample is one
// tick after the ball's clock, so the half sequence starts at the same instant
// as the full one.
func Half(raw []core.BallState) core.HalfBallPrediction {
	slices := make([]core.HalfBallSlice, 0, (len(raw)+1)/2)
	for i := 0; i < len(raw); i += 2 {
		slices = append(slices, core.HalfSliceFromBall(raw[i]))
	}
	return core.HalfBallPrediction{NumSlices: len(slices), Slices: slices}
}
