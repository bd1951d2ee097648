// Package session owns one simulated ball and its arena and serializes every
// access to them.
//
// Lock order is always context before ball. Load, Step and Apply hold both
// exclusively; predictions hold both shared only long enough to copy them.
// A panic while holding exclusive access poisons the session until the next
// successful Load.
package session

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ballsym/extension/internal/engine"
	"github.com/ballsym/extension/internal/telemetry"
	"github.com/ballsym/extension/pkg/core"

	"github.com/google/uuid"
)

// Session pairs a simulation context with a ball for one consumer.
type Session struct {
	engine engine.Engine

	ctxMu sync.RWMutex
	id    uuid.UUID       // replaced by every successful Load
	sim   *engine.Context // nil until the first Load

	ballMu sync.RWMutex
	ball   core.BallState

	poisoned atomic.Bool
}

// New creates an unloaded session on top of eng.
func New(eng engine.Engine) *Session {
	return &Session{
		id:     uuid.New(),
		engine: eng,
	}
}

// ID identifies the loaded session in logs and recordings. Each Load
// starts a new one.
func (s *Session) ID() string {
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()
	return s.id.String()
}

// Load resets the session to a preset. Context and ball are swapped under
// both locks so readers see either the old pair or the new one.
func (s *Session) Load(preset core.Preset) error {
	sim, ball, err := s.engine.Load(preset)
	if err != nil {
		return fmt.Errorf("load %s: %w", preset, err)
	}
	ball.Target = core.TargetNeutral

	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()
	s.ballMu.Lock()
	defer s.ballMu.Unlock()

	s.id = uuid.New()
	s.sim = &sim
	s.ball = ball
	s.poisoned.Store(false)
	return nil
}

// Applied is the session as one snapshot left it.
type Applied struct {
	SessionID string
	Ball      core.BallState
}

// Apply ingests one telemetry snapshot and returns the resulting state
// read under the same locks. An invalid snapshot is rejected before
// anything is written.
func (s *Session) Apply(snap core.TelemetrySnapshot) (Applied, error) {
	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()
	s.ballMu.Lock()
	defer s.ballMu.Unlock()

	if err := s.usable(); err != nil {
		return Applied{}, fmt.Errorf("tick: %w", err)
	}

	var err error
	if perr := s.critical("tick", func() {
		err = telemetry.Apply(s.engine, s.sim, &s.ball, snap)
	}); perr != nil {
		return Applied{}, perr
	}
	if err != nil {
		return Applied{}, fmt.Errorf("tick: %w", err)
	}
	return Applied{SessionID: s.id.String(), Ball: s.ball}, nil
}

// Info is a point-in-time view of the session for status reporting
type Info struct {
	ID         string      `json:"id"`
	Loaded     bool        `json:"loaded"`
	Preset     core.Preset `json:"preset,omitempty"`
	Heatseeker bool        `json:"heatseeker"`
	Poisoned   bool        `json:"poisoned"`
	Target     string      `json:"target"`
	Time       float32     `json:"time"`
}

// Info reports what is loaded. It never fails.
func (s *Session) Info() Info {
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()
	s.ballMu.RLock()
	defer s.ballMu.RUnlock()

	info := Info{
		ID:       s.id.String(),
		Poisoned: s.poisoned.Load(),
		Target:   s.ball.Target.String(),
		Time:     s.ball.Time,
	}
	if s.sim != nil {
		info.Loaded = true
		info.Preset = s.sim.Preset
		info.Heatseeker = s.sim.Heatseeker
	}
	return info
}

// Ball returns a copy of the current ball state.
func (s *Session) Ball() (core.BallState, error) {
	s.ctxMu.RLock()
	defer s.ctxMu.RUnlock()
	s.ballMu.RLock()
	defer s.ballMu.RUnlock()

	if err := s.usable(); err != nil {
		return core.BallState{}, err
	}
	return s.ball, nil
}

// usable must be called with at least one lock held.
func (s *Session) usable() error {
	if s.poisoned.Load() {
		return core.ErrSessionPoisoned
	}
	if s.sim == nil {
		return core.ErrSessionUninitialized
	}
	return nil
}

// critical runs fn while the caller holds exclusive access. A panic in fn
// poisons the session and comes back as ErrSessionPoisoned.
func (s *Session) critical(op string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.poisoned.Store(true)
			err = fmt.Errorf("%s: %w: %v", op, core.ErrSessionPoisoned, r)
		}
	}()
	fn()
	return nil
}
