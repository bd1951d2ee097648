// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"sync"

	"github.com/ballsym/extension/internal/config"
	"github.com/ballsym/extension/pkg/core"
)

// ErrNoSession is returned when recording before StartSession.
var ErrNoSession = errors.New("no session started")

// Backend buffers one session's records and writes them as a single JSON
// document when the session ends.
type Backend struct {
	cfg config.MemoryConfig

	mu          sync.RWMutex
	session     *core.SessionInfo
	ticks       []core.TickRecord
	steps       []core.StepRecord
	predictions []core.PredictionRecord

	lastExportPath string
}

// New creates a memory backend writing into cfg.OutputDir.
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// Init is a no-op; the output directory is created on export.
func (b *Backend) Init() error { return nil }

// Close is a no-op. An unfinished session is not exported.
func (b *Backend) Close() error { return nil }

// StartSession begins a session, discarding anything held for the previous
// one.
func (b *Backend) StartSession(info *core.SessionInfo) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.session = info
	b.ticks, b.steps, b.predictions = nil, nil, nil
	return nil
}

// EndSession exports the session and forgets it. On a failed export the
// session is kept so EndSession can be retried.
func (b *Backend) EndSession() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	if err := b.exportJSON(); err != nil {
		return err
	}
	b.session = nil
	return nil
}

// appendRecord adds r to dst while a session is open.
func appendRecord[T any](b *Backend, dst *[]T, r *T) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session == nil {
		return ErrNoSession
	}
	*dst = append(*dst, *r)
	return nil
}

// RecordTick keeps an applied snapshot.
func (b *Backend) RecordTick(r *core.TickRecord) error {
	return appendRecord(b, &b.ticks, r)
}

// RecordStep keeps a stepped slice.
func (b *Backend) RecordStep(r *core.StepRecord) error {
	return appendRecord(b, &b.steps, r)
}

// RecordPrediction keeps a prediction summary.
func (b *Backend) RecordPrediction(r *core.PredictionRecord) error {
	return appendRecord(b, &b.predictions, r)
}

// Counts reports how many records of each kind the open session holds.
func (b *Backend) Counts() (ticks, steps, predictions int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.ticks), len(b.steps), len(b.predictions)
}

// ExportedFilePath is the file written by the last successful EndSession.
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
