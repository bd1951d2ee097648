// internal/storage/storage.go
package storage

import "github.com/ballsym/extension/pkg/core"

// Recorder is the interface all session recording backends must satisfy
type Recorder interface {
	// Lifecycle
	Init() error
	Close() error

	// Session management
	StartSession(info *core.SessionInfo) error
	EndSession() error

	// Recording
	RecordTick(r *core.TickRecord) error
	RecordStep(r *core.StepRecord) error
	RecordPrediction(r *core.PredictionRecord) error
}

// Exportable is an optional interface for backends that write a file when
// a session ends.
type Exportable interface {
	ExportedFilePath() string
}
