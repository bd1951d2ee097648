package handlers

import (
	"fmt"
	"time"

	"github.com/ballsym/extension/internal/logging"
	"github.com/ballsym/extension/internal/parser"
	"github.com/ballsym/extension/internal/session"
	"github.com/ballsym/extension/internal/telemetry"
	"github.com/ballsym/extension/pkg/core"
)

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Session          *session.Session
	Parser           *parser.Parser
	LogManager       *logging.SlogManager
	ExtensionName    string
	ExtensionVersion string
	BuildDate        string
}

// Service turns host command arguments into session operations
type Service struct {
	deps         Dependencies
	writeLogFunc func(functionName, data, level string)
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	s := &Service{deps: deps}
	s.writeLogFunc = func(functionName, data, level string) {
		if deps.LogManager != nil {
			deps.LogManager.WriteLog(functionName, data, level)
		}
	}
	return s
}

// Session returns the session the service drives
func (s *Service) Session() *session.Session {
	return s.deps.Session
}

func (s *Service) writeLog(functionName, data, level string) {
	s.writeLogFunc(functionName, data, level)
}

// LoadPreset resets the session to the named preset. Legacy names such as
// "soccar" are accepted.
func (s *Service) LoadPreset(name string) (session.Info, error) {
	functionName := "load_" + name

	preset, err := core.ParsePreset(name)
	if err != nil {
		s.writeLog(functionName, err.Error(), "ERROR")
		return session.Info{}, err
	}
	if err := s.deps.Session.Load(preset); err != nil {
		s.writeLog(functionName, fmt.Sprintf(`Error loading preset: %v`, err), "ERROR")
		return session.Info{}, err
	}

	info := s.deps.Session.Info()
	s.writeLog(functionName, fmt.Sprintf(`Loaded preset %s (heatseeker=%t)`, info.Preset, info.Heatseeker), "INFO")
	return info, nil
}

// Tick decodes and applies one telemetry packet.
// Args: [packet]
func (s *Service) Tick(data []string) (core.TickRecord, error) {
	functionName := "tick"

	snap, err := s.deps.Parser.ParseTick(data)
	if err != nil {
		s.writeLog(functionName, fmt.Sprintf(`Error parsing packet: %v`, err), "WARN")
		return core.TickRecord{}, err
	}
	applied, err := s.deps.Session.Apply(snap)
	if err != nil {
		return core.TickRecord{}, err
	}

	// Apply already validated the shape, so the radius resolves.
	radius, _ := telemetry.Radius(snap.Shape)

	return core.TickRecord{
		SessionID:  applied.SessionID,
		ReceivedAt: time.Now(),
		Snapshot:   snap,
		Shape:      snap.Shape.Type().String(),
		Radius:     radius,
		Target:     applied.Ball.Target,
	}, nil
}

// StepBall advances the ball one fixed tick.
func (s *Service) StepBall() (core.BallSlice, error) {
	return s.deps.Session.Step()
}

// Predict runs a prediction. With forTime the first arg is the start time.
// Args: [] or [time]
func (s *Service) Predict(f session.Fidelity, data []string, forTime bool) (session.Prediction, *float32, error) {
	var startTime *float32
	if forTime {
		t, err := s.deps.Parser.ParseTime(data)
		if err != nil {
			return session.Prediction{}, nil, fmt.Errorf("start time: %w", err)
		}
		startTime = &t
	}

	p, err := s.deps.Session.Predict(f, startTime)
	if err != nil {
		return session.Prediction{}, nil, err
	}
	return p, startTime, nil
}

// VersionInfo is reported by the version command
type VersionInfo struct {
	Extension string `json:"extension"`
	Version   string `json:"version"`
	BuildDate string `json:"buildDate"`
}

// Version reports the extension build.
func (s *Service) Version() VersionInfo {
	return VersionInfo{
		Extension: s.deps.ExtensionName,
		Version:   s.deps.ExtensionVersion,
		BuildDate: s.deps.BuildDate,
	}
}

// Status reports what the session has loaded.
func (s *Service) Status() session.Info {
	return s.deps.Session.Info()
}

// LoadCommands maps every load command to the preset name it loads.
var LoadCommands = map[string]string{
	"load_standard":            "standard",
	"load_soccar":              "soccar",
	"load_dropshot":            "dropshot",
	"load_hoops":               "hoops",
	"load_standard_throwback":  "standard_throwback",
	"load_soccar_throwback":    "soccar_throwback",
	"load_standard_heatseeker": "standard_heatseeker",
}

// PredictionCommand describes one prediction command of the host table.
type PredictionCommand struct {
	Fidelity session.Fidelity
	ForTime  bool
}

// PredictionCommands maps every prediction command to its variant.
var PredictionCommands = map[string]PredictionCommand{
	"get_ball_prediction_struct":               {Fidelity: session.FidelityHalf},
	"get_ball_prediction_struct_full":          {Fidelity: session.FidelityFull},
	"get_ball_prediction_struct_for_time":      {Fidelity: session.FidelityHalf, ForTime: true},
	"get_ball_prediction_struct_for_time_full": {Fidelity: session.FidelityFull, ForTime: true},
}
