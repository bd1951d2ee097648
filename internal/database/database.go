// Package database opens the GORM connections used by the recording
// backends: Postgres, or SQLite on disk or in memory.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ballsym/extension/internal/config"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotConnected is returned by operations that need an open database.
var ErrNotConnected = errors.New("database not connected")

const memoryDSN = "file::memory:?cache=shared"

// sqlitePragmas trade durability for write speed; recordings are rebuilt
// from the dump, not recovered from a crash.
var sqlitePragmas = []string{
	"PRAGMA user_version = 1",
	"PRAGMA journal_mode = MEMORY",
	"PRAGMA synchronous = OFF",
	"PRAGMA cache_size = -32000",
	"PRAGMA temp_store = MEMORY",
}

// Manager owns one database connection.
type Manager struct {
	DB *gorm.DB

	// DumpPath is where an in-memory SQLite database is copied by Dump.
	// Empty for every other kind of database.
	DumpPath string

	pool *sql.DB
	log  zerolog.Logger
}

// NewManager returns an unconnected Manager.
func NewManager(log zerolog.Logger) *Manager {
	return &Manager{log: log}
}

// Connected reports whether Connect succeeded and Close was not called.
func (m *Manager) Connected() bool {
	return m.pool != nil
}

// Connect opens the database selected by rec.Type. A postgres database that
// cannot be reached is replaced by SQLite.
func (m *Manager) Connect(rec config.RecordingConfig, dbCfg config.DBConfig) error {
	if rec.Type == "postgres" {
		db, err := openPostgres(dbCfg)
		if err == nil {
			err = m.adopt(db)
		}
		if err == nil {
			m.pool.SetMaxOpenConns(10)
			m.log.Info().Str("host", dbCfg.Host).Str("database", dbCfg.Database).Msg("Connected to Postgres")
			return nil
		}
		m.log.Error().Err(err).Msg("Postgres unavailable, recording to SQLite instead")
	}

	db, err := openSQLite(rec.SQLite.Path)
	if err != nil {
		return fmt.Errorf("opening SQLite: %w", err)
	}
	if err := m.adopt(db); err != nil {
		return fmt.Errorf("opening SQLite: %w", err)
	}

	if rec.SQLite.Path == "" {
		m.DumpPath = rec.SQLite.DumpPath
		m.log.Info().Str("dumpPath", m.DumpPath).Msg("Recording to in-memory SQLite")
	} else {
		m.log.Info().Str("path", rec.SQLite.Path).Msg("Recording to SQLite file")
	}
	return nil
}

// adopt takes ownership of db once its pool answers a ping.
func (m *Manager) adopt(db *gorm.DB) error {
	pool, err := db.DB()
	if err != nil {
		return err
	}
	if err := pool.Ping(); err != nil {
		_ = pool.Close()
		return err
	}
	m.DB, m.pool = db, pool
	return nil
}

func openPostgres(cfg config.DBConfig) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true,
	}), gormConfig(10000))
}

func openSQLite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = memoryDSN
	}
	cfg := gormConfig(2000)
	cfg.PrepareStmt = true

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		return nil, err
	}
	for _, p := range sqlitePragmas {
		if err := db.Exec(p).Error; err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return db, nil
}

func gormConfig(batch int) *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        batch,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}
}

// Migrate creates or updates the tables of the given models.
func (m *Manager) Migrate(models ...any) error {
	if m.DB == nil {
		return ErrNotConnected
	}
	start := time.Now()
	if err := m.DB.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	m.log.Debug().Str("dialect", m.DB.Dialector.Name()).Int("models", len(models)).
		Dur("took", time.Since(start)).Msg("Schema migrated")
	return nil
}

// Dump copies an in-memory database to DumpPath, replacing the previous
// copy only once the new one is complete.
func (m *Manager) Dump() error {
	if m.DumpPath == "" {
		return errors.New("no dump path for this database")
	}
	if m.DB == nil {
		return ErrNotConnected
	}

	// VACUUM INTO refuses to overwrite
	tmp := m.DumpPath + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clearing %s: %w", tmp, err)
	}

	start := time.Now()
	if err := m.DB.Exec("VACUUM INTO ?", "file:"+tmp).Error; err != nil {
		return fmt.Errorf("dumping to %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, m.DumpPath); err != nil {
		return fmt.Errorf("replacing %s: %w", m.DumpPath, err)
	}

	m.log.Debug().Str("path", m.DumpPath).Dur("took", time.Since(start)).Msg("Dumped in-memory database")
	return nil
}

// Close releases the connection pool. It is safe to call more than once.
func (m *Manager) Close() error {
	if m.pool == nil {
		return nil
	}
	pool := m.pool
	m.pool = nil
	return pool.Close()
}
