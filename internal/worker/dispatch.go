package worker

import (
	"fmt"
	"time"

	"github.com/ballsym/extension/internal/dispatcher"
	"github.com/ballsym/extension/internal/handlers"
	"github.com/ballsym/extension/pkg/core"
)

// RecordCommand is the internal command that carries recording payloads to
// the recorder.
const RecordCommand = ":RECORD:"

// RegisterHandlers registers the host command table with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	m.dispatcher = d

	// Session lifecycle - sync
	for cmd, preset := range handlers.LoadCommands {
		d.Register(cmd, m.timed(cmd, m.handleLoad(preset)), dispatcher.Logged(), dispatcher.Timed())
	}

	// Telemetry and stepping - sync, the caller needs the result
	d.Register("tick", m.timed("tick", m.handleTick), dispatcher.Logged(), dispatcher.Timed())
	d.Register("step_ball", m.timed("step_ball", m.handleStepBall), dispatcher.Logged(), dispatcher.Timed())

	// Predictions - sync
	for cmd, pc := range handlers.PredictionCommands {
		d.Register(cmd, m.timed(cmd, m.handlePrediction(cmd, pc)), dispatcher.Logged(), dispatcher.Timed())
	}

	d.Register("version", m.handleVersion)
	d.Register("status", m.handleStatus)

	// Recording - buffered, one worker keeps records in order
	if m.hasRecorder() {
		d.Register(RecordCommand, m.handleRecord, dispatcher.Buffered(10000))
	}
}

// timed reports the handler's latency to the latency sink, if any.
func (m *Manager) timed(command string, h dispatcher.HandlerFunc) dispatcher.HandlerFunc {
	if m.deps.Latency == nil {
		return h
	}
	return func(e dispatcher.Event) (any, error) {
		start := time.Now()
		result, err := h(e)
		m.deps.Latency.RecordLatency(command, time.Since(start), err)
		return result, err
	}
}

// record queues a payload for the recorder. A full queue drops the record.
func (m *Manager) record(payload any) {
	if !m.hasRecorder() || m.dispatcher == nil {
		return
	}
	_, err := m.dispatcher.Dispatch(dispatcher.Event{
		Command:   RecordCommand,
		Payload:   payload,
		Timestamp: time.Now(),
	})
	if err != nil {
		m.writeLog(RecordCommand, fmt.Sprintf("Dropped %T: %v", payload, err), "WARN")
	}
}

func (m *Manager) handleLoad(preset string) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		info, err := m.deps.Service.LoadPreset(preset)
		if err != nil {
			return nil, err
		}
		m.record(&core.SessionInfo{
			ID:               info.ID,
			Preset:           info.Preset,
			StartTime:        e.Timestamp,
			ExtensionVersion: m.deps.Service.Version().Version,
		})
		return nil, nil
	}
}

func (m *Manager) handleTick(e dispatcher.Event) (any, error) {
	rec, err := m.deps.Service.Tick(e.Args)
	if err != nil {
		return nil, err
	}
	m.record(&rec)
	return nil, nil
}

func (m *Manager) handleStepBall(e dispatcher.Event) (any, error) {
	slice, err := m.deps.Service.StepBall()
	if err != nil {
		return nil, err
	}
	m.record(&core.StepRecord{
		SessionID: m.deps.Service.Session().ID(),
		Slice:     slice,
	})
	return slice, nil
}

func (m *Manager) handlePrediction(command string, pc handlers.PredictionCommand) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		start := time.Now()
		p, startTime, err := m.deps.Service.Predict(pc.Fidelity, e.Args, pc.ForTime)
		if err != nil {
			return nil, err
		}
		m.record(&core.PredictionRecord{
			SessionID: m.deps.Service.Session().ID(),
			Command:   command,
			StartTime: startTime,
			NumSlices: p.Len(),
			First:     p.First,
			Last:      p.Last,
			Duration:  time.Since(start),
			CreatedAt: start,
		})
		return p.Value(), nil
	}
}

func (m *Manager) handleVersion(e dispatcher.Event) (any, error) {
	return m.deps.Service.Version(), nil
}

func (m *Manager) handleStatus(e dispatcher.Event) (any, error) {
	return m.deps.Service.Status(), nil
}

// handleRecord runs on the record worker goroutine only.
func (m *Manager) handleRecord(e dispatcher.Event) (any, error) {
	switch r := e.Payload.(type) {
	case *core.SessionInfo:
		if m.sessionOpen {
			if err := m.recorder.EndSession(); err != nil {
				m.writeLog(RecordCommand, fmt.Sprintf("Error ending recording session: %v", err), "ERROR")
			}
			m.sessionOpen = false
		}
		if err := m.recorder.StartSession(r); err != nil {
			return nil, fmt.Errorf("starting recording session: %w", err)
		}
		m.sessionOpen = true
		return nil, nil
	case *core.TickRecord:
		return nil, m.recorder.RecordTick(r)
	case *core.StepRecord:
		return nil, m.recorder.RecordStep(r)
	case *core.PredictionRecord:
		return nil, m.recorder.RecordPrediction(r)
	default:
		return nil, fmt.Errorf("unexpected record payload %T", e.Payload)
	}
}
