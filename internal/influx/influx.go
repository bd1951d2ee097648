// Package influx ships per-command latency points to InfluxDB, falling back
// to a gzip line-protocol file when the server cannot be reached.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ballsym/extension/internal/config"
	"github.com/ballsym/extension/internal/queue"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
	"github.com/rs/zerolog"
)

// Measurement is the name every latency point is written under.
const Measurement = "command_latency"

const (
	defaultFlushInterval = time.Second
	batchSize            = 500
	retentionSeconds     = 60 * 60 * 24 * 30
)

// ErrDisabled is returned by Connect when influx.enabled is false.
var ErrDisabled = errors.New("influx disabled")

// Manager buffers latency points and writes them to InfluxDB or to the
// backup file.
type Manager struct {
	Client  influxdb2.Client
	Writer  influxdb2_api.WriteAPI
	IsValid bool
	Logger  zerolog.Logger

	cfg     config.InfluxConfig
	pending *queue.Queue[*influxdb2_write.Point]

	backupMu   sync.Mutex
	backupFile *os.File
	backup     *gzip.Writer

	flushInterval time.Duration
	stop          chan struct{}
	done          chan struct{}
}

// NewManager creates a disconnected manager.
func NewManager(log zerolog.Logger, cfg config.InfluxConfig) *Manager {
	return &Manager{
		Logger:        log,
		cfg:           cfg,
		pending:       queue.New[*influxdb2_write.Point](),
		flushInterval: defaultFlushInterval,
	}
}

// Connect pings the server and prepares the bucket. An unreachable server is
// not an error: points go to the backup file instead.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.cfg.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(
		m.cfg.URL(),
		m.cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(batchSize).
			SetFlushInterval(1000),
	)

	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.IsValid = false
		m.Logger.Warn().Err(err).Str("backupPath", m.cfg.BackupPath).
			Msg("InfluxDB unreachable, writing latency points to backup file")
		if err := m.openBackup(); err != nil {
			return err
		}
	} else {
		if err := m.setupBucket(ctx); err != nil {
			return err
		}
		m.Writer = m.Client.WriteAPI(m.cfg.Org, m.cfg.Bucket)
		go func(errorsCh <-chan error) {
			for writeErr := range errorsCh {
				m.Logger.Error().Err(writeErr).Str("bucket", m.cfg.Bucket).
					Msg("Error sending data to InfluxDB")
			}
		}(m.Writer.Errors())
		m.IsValid = true
		m.Logger.Info().Str("url", m.cfg.URL()).Msg("InfluxDB client initialized")
	}

	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.flushLoop()
	return nil
}

func (m *Manager) openBackup() error {
	m.backupMu.Lock()
	defer m.backupMu.Unlock()
	if m.backup != nil {
		return nil
	}
	file, err := os.OpenFile(m.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.backup = gzip.NewWriter(file)
	return nil
}

func (m *Manager) setupBucket(ctx context.Context) error {
	orgs := m.Client.OrganizationsAPI()
	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.Logger.Info().Str("org", m.cfg.Org).Msg("Organization not found, creating")
		if org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org); err != nil {
			return fmt.Errorf("creating organization %s: %w", m.cfg.Org, err)
		}
	}

	if _, err = m.Client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err == nil {
		return nil
	}
	m.Logger.Info().Str("bucket", m.cfg.Bucket).Msg("Bucket not found, creating")
	rule := domain.RetentionRuleTypeExpire
	_, err = m.Client.BucketsAPI().CreateBucketWithName(ctx, org, m.cfg.Bucket, domain.RetentionRule{
		Type:         &rule,
		EverySeconds: retentionSeconds,
	})
	if err != nil {
		return fmt.Errorf("creating bucket %s: %w", m.cfg.Bucket, err)
	}
	return nil
}

// LatencyPoint builds the point recorded for one command execution.
func LatencyPoint(command string, d time.Duration, err error, at time.Time) *influxdb2_write.Point {
	status := "ok"
	if err != nil {
		status = "error"
	}
	return influxdb2_write.NewPoint(
		Measurement,
		map[string]string{"command": command, "status": status},
		map[string]any{"duration_us": d.Microseconds()},
		at,
	)
}

// RecordLatency queues one latency point. It never blocks on I/O.
func (m *Manager) RecordLatency(command string, d time.Duration, err error) {
	m.pending.Push(LatencyPoint(command, d, err, time.Now()))
}

// Pending reports how many points wait for the next flush.
func (m *Manager) Pending() int {
	return m.pending.Len()
}

// Flush hands every queued point to the write API or the backup file.
func (m *Manager) Flush() error {
	for !m.pending.Empty() {
		batch := m.pending.DrainN(batchSize)
		if m.IsValid {
			for _, p := range batch {
				m.Writer.WritePoint(p)
			}
			continue
		}
		if err := m.writeBackup(batch); err != nil {
			m.pending.Requeue(batch)
			return err
		}
	}
	return nil
}

func (m *Manager) writeBackup(points []*influxdb2_write.Point) error {
	m.backupMu.Lock()
	defer m.backupMu.Unlock()
	if m.backup == nil {
		return errors.New("influxDB client not initialized and backup writer not available")
	}
	for _, p := range points {
		line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
		if _, err := m.backup.Write([]byte(line)); err != nil {
			return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
		}
	}
	return nil
}

func (m *Manager) flushLoop() {
	defer close(m.done)
	ticker := time.NewTicker(m.flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if err := m.Flush(); err != nil {
				m.Logger.Error().Err(err).Msg("Error flushing latency points")
			}
		}
	}
}

// Close stops the flush loop, writes what is left and releases the client
// and the backup file.
func (m *Manager) Close() error {
	if m.stop != nil {
		close(m.stop)
		<-m.done
		m.stop = nil
	}

	err := m.Flush()
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}

	m.backupMu.Lock()
	defer m.backupMu.Unlock()
	if m.backup != nil {
		err = errors.Join(err, m.backup.Close(), m.backupFile.Close())
		m.backup = nil
		m.backupFile = nil
	}
	return err
}
