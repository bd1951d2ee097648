// Package gormstore implements storage.Recorder on GORM, for SQLite or
// Postgres, with internal queues drained by a background writer.
package gormstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ballsym/extension/internal/database"
	"github.com/ballsym/extension/internal/logging"
	"github.com/ballsym/extension/internal/queue"
	"github.com/ballsym/extension/pkg/core"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrNoSession is returned when recording before StartSession.
var ErrNoSession = errors.New("no session started")

const defaultFlushInterval = 2 * time.Second

// Dependencies holds everything the backend needs.
type Dependencies struct {
	DB            *database.Manager
	LogManager    *logging.SlogManager
	FlushInterval time.Duration
	DumpInterval  time.Duration // periodic dump of an in-memory SQLite database
}

// queues holds the write queues for batch insertion.
type queues struct {
	Ticks       *queue.Queue[Tick]
	Steps       *queue.Queue[Step]
	Predictions *queue.Queue[Prediction]
}

func newQueues() *queues {
	return &queues{
		Ticks:       queue.New[Tick](),
		Steps:       queue.New[Step](),
		Predictions: queue.New[Prediction](),
	}
}

// Backend implements storage.Recorder with queue-based batch writes.
type Backend struct {
	deps      Dependencies
	queues    *queues
	sessionID atomic.Uint64

	flushMu  sync.Mutex
	stopChan chan struct{}
	done     chan struct{}
}

// New creates a new GORM recording backend.
func New(deps Dependencies) *Backend {
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = defaultFlushInterval
	}
	return &Backend{
		deps:   deps,
		queues: newQueues(),
	}
}

func (b *Backend) db() *gorm.DB {
	return b.deps.DB.DB
}

func (b *Backend) writeLog(functionName, data, level string) {
	if b.deps.LogManager != nil {
		b.deps.LogManager.WriteLog(functionName, data, level)
	}
}

// Init migrates the schema and starts the writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil || !b.deps.DB.Connected() {
		return fmt.Errorf("gormstore: %w", database.ErrNotConnected)
	}
	if err := b.deps.DB.Migrate(Models...); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})
	go b.writerLoop()
	return nil
}

// Close stops the writer, flushes what is left and closes the connection.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
		<-b.done
		b.stopChan = nil
	}
	if b.deps.DB == nil || !b.deps.DB.Connected() {
		return nil
	}
	b.Flush()
	return b.deps.DB.Close()
}

// StartSession inserts the session row synchronously so later records can
// reference its ID.
func (b *Backend) StartSession(info *core.SessionInfo) error {
	b.Flush()

	row := Session{
		UUID:             info.ID,
		Preset:           string(info.Preset),
		StartTime:        info.StartTime,
		ExtensionVersion: info.ExtensionVersion,
	}
	if err := b.db().Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	b.sessionID.Store(uint64(row.ID))
	return nil
}

// EndSession flushes pending records, stamps the end time and, for an
// in-memory SQLite database, dumps it to disk.
func (b *Backend) EndSession() error {
	id := uint(b.sessionID.Load())
	if id == 0 {
		return ErrNoSession
	}
	b.Flush()

	now := time.Now()
	if err := b.db().Model(&Session{}).Where("id = ?", id).Update("end_time", now).Error; err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	b.sessionID.Store(0)

	if b.deps.DB.DumpPath != "" {
		if err := b.deps.DB.Dump(); err != nil {
			return err
		}
	}
	return nil
}

// RecordTick converts and queues an applied snapshot.
func (b *Backend) RecordTick(r *core.TickRecord) error {
	id := uint(b.sessionID.Load())
	if id == 0 {
		return ErrNoSession
	}
	snap := r.Snapshot
	payload, err := json.Marshal(map[string]any{
		"location":        snap.Location,
		"velocity":        snap.Velocity,
		"angularVelocity": snap.AngularVelocity,
		"lastTouch":       snap.LastTouch,
	})
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	b.queues.Ticks.Push(Tick{
		SessionID:  id,
		Time:       snap.Time,
		ReceivedAt: r.ReceivedAt,
		GravityZ:   snap.GravityZ,
		Shape:      r.Shape,
		Radius:     r.Radius,
		Target:     int8(r.Target),
		Snapshot:   datatypes.JSON(payload),
	})
	return nil
}

// RecordStep converts and queues a stepped slice.
func (b *Backend) RecordStep(r *core.StepRecord) error {
	id := uint(b.sessionID.Load())
	if id == 0 {
		return ErrNoSession
	}
	payload, err := json.Marshal(r.Slice)
	if err != nil {
		return fmt.Errorf("failed to encode slice: %w", err)
	}
	b.queues.Steps.Push(Step{
		SessionID: id,
		Time:      r.Slice.Time,
		Slice:     datatypes.JSON(payload),
	})
	return nil
}

// RecordPrediction converts and queues a prediction summary.
func (b *Backend) RecordPrediction(r *core.PredictionRecord) error {
	id := uint(b.sessionID.Load())
	if id == 0 {
		return ErrNoSession
	}
	first, err := json.Marshal(r.First)
	if err != nil {
		return fmt.Errorf("failed to encode first slice: %w", err)
	}
	last, err := json.Marshal(r.Last)
	if err != nil {
		return fmt.Errorf("failed to encode last slice: %w", err)
	}
	b.queues.Predictions.Push(Prediction{
		SessionID:  id,
		Command:    r.Command,
		StartTime:  r.StartTime,
		NumSlices:  r.NumSlices,
		First:      datatypes.JSON(first),
		Last:       datatypes.JSON(last),
		DurationMs: float64(r.Duration.Microseconds()) / 1000,
		CreatedAt:  r.CreatedAt,
	})
	return nil
}

// Flush drains every queue into the database.
func (b *Backend) Flush() {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	db := b.db()
	writeQueue(db, b.queues.Ticks, "ticks", b.writeLog)
	writeQueue(db, b.queues.Steps, "steps", b.writeLog)
	writeQueue(db, b.queues.Predictions, "predictions", b.writeLog)
}

// writeQueue writes all items from a queue to the database in a transaction.
// Items are pushed back when the insert fails.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], name string, log func(string, string, string)) {
	if q.Empty() {
		return
	}

	tx := db.Begin()
	items := q.Drain()
	if err := tx.Create(&items).Error; err != nil {
		log(":DB:WRITER:", fmt.Sprintf("Error creating %s: %v", name, err), "ERROR")
		tx.Rollback()
		q.Requeue(items)
		return
	}
	tx.Commit()
}

func (b *Backend) writerLoop() {
	defer close(b.done)

	flush := time.NewTicker(b.deps.FlushInterval)
	defer flush.Stop()

	var dump <-chan time.Time
	if b.deps.DB.DumpPath != "" && b.deps.DumpInterval > 0 {
		t := time.NewTicker(b.deps.DumpInterval)
		defer t.Stop()
		dump = t.C
	}

	for {
		select {
		case <-b.stopChan:
			return
		case <-flush.C:
			b.Flush()
		case <-dump:
			start := time.Now()
			if err := b.deps.DB.Dump(); err != nil {
				b.writeLog("gormstore:dumpLoop", fmt.Sprintf("Error dumping to disk: %v", err), "ERROR")
			} else {
				b.writeLog("gormstore:dumpLoop", fmt.Sprintf("Dumped to disk in %s", time.Since(start)), "DEBUG")
			}
		}
	}
}
