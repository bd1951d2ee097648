// Package worker binds the host command table to the handler service and
// feeds recordings and latency metrics off the command path.
package worker

import (
	"fmt"
	"time"

	"github.com/ballsym/extension/internal/dispatcher"
	"github.com/ballsym/extension/internal/handlers"
	"github.com/ballsym/extension/internal/logging"
	"github.com/ballsym/extension/internal/storage"
)

// LatencySink receives the execution time of every timed command.
type LatencySink interface {
	RecordLatency(command string, d time.Duration, err error)
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Service    *handlers.Service
	LogManager *logging.SlogManager
	Latency    LatencySink // optional
}

// Manager registers command handlers and owns the recording stream
type Manager struct {
	deps       Dependencies
	recorder   storage.Recorder
	dispatcher *dispatcher.Dispatcher

	// only touched by the record worker goroutine, then by Close
	sessionOpen bool
}

// NewManager creates a new worker manager. recorder may be nil.
func NewManager(deps Dependencies, recorder storage.Recorder) *Manager {
	return &Manager{
		deps:     deps,
		recorder: recorder,
	}
}

func (m *Manager) hasRecorder() bool {
	return m.recorder != nil
}

func (m *Manager) writeLog(functionName, data, level string) {
	if m.deps.LogManager != nil {
		m.deps.LogManager.WriteLog(functionName, data, level)
	}
}

// Close ends the open recording session and closes the recorder. Call it
// after the dispatcher has been closed so every queued record is written.
func (m *Manager) Close() error {
	if !m.hasRecorder() {
		return nil
	}
	if m.sessionOpen {
		if err := m.recorder.EndSession(); err != nil {
			m.writeLog(":RECORD:", fmt.Sprintf("Error ending recording session: %v", err), "ERROR")
		}
		m.sessionOpen = false
	}
	if exp, ok := m.recorder.(storage.Exportable); ok && exp.ExportedFilePath() != "" {
		m.writeLog(":RECORD:", "Recording exported to "+exp.ExportedFilePath(), "INFO")
	}
	return m.recorder.Close()
}
