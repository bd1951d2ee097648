package storage

import (
	"fmt"

	"github.com/ballsym/extension/internal/config"
	"github.com/ballsym/extension/internal/database"
	"github.com/ballsym/extension/internal/logging"
	"github.com/ballsym/extension/internal/storage/gormstore"
	"github.com/ballsym/extension/internal/storage/memory"
	"github.com/rs/zerolog"
)

// Dependencies are the shared services a database-backed recorder needs.
type Dependencies struct {
	LogManager *logging.SlogManager
	DBLogger   zerolog.Logger
}

// NewRecorder creates a recording backend based on configuration.
// A disabled configuration yields a nil Recorder and no error.
func NewRecorder(rec config.RecordingConfig, dbCfg config.DBConfig, deps Dependencies) (Recorder, error) {
	if !rec.Enabled {
		return nil, nil
	}
	switch rec.Type {
	case "memory":
		return memory.New(rec.Memory), nil
	case "sqlite", "postgres":
		m := database.NewManager(deps.DBLogger)
		if err := m.Connect(rec, dbCfg); err != nil {
			return nil, fmt.Errorf("connecting %s recorder: %w", rec.Type, err)
		}
		return gormstore.New(gormstore.Dependencies{
			DB:           m,
			LogManager:   deps.LogManager,
			DumpInterval: rec.SQLite.DumpInterval,
		}), nil
	default:
		return nil, fmt.Errorf("unknown recording type: %s", rec.Type)
	}
}
