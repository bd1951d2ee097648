package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// load writes body as the config file of a fresh directory and loads it.
func load(t *testing.T, body string) {
	t.Helper()
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0o644))
	require.NoError(t, Load(dir))
}

func TestLoad_Defaults(t *testing.T) {
	load(t, `{}`)

	want := map[string]any{
		"logLevel":                        "info",
		"logsDir":                         "./ballsymlogs",
		"defaultPreset":                   "standard",
		"recording.enabled":               false,
		"recording.type":                  "memory",
		"recording.memory.outputDir":      "./recordings",
		"recording.memory.compressOutput": true,
		"recording.sqlite.dumpPath":       "./recordings/ballsym.db",
		"db.host":                         "localhost",
		"db.port":                         "5432",
		"influx.enabled":                  false,
		"influx.bucket":                   "ballsym_latency",
		"otel.enabled":                    false,
		"monitor.enabled":                 false,
		"bench.iterations":                1000,
	}
	for key, v := range want {
		assert.EqualValues(t, v, viper.Get(key), key)
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	load(t, `{
		"logLevel": "debug",
		"defaultPreset": "hoops",
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	assert.Equal(t, "debug", GetString("logLevel"))
	assert.Equal(t, "hoops", GetString("defaultPreset"))
	assert.Equal(t, "10.0.0.1", GetDBConfig().Host)
	assert.Equal(t, "5433", GetDBConfig().Port)
	assert.Equal(t, "ballsym", GetDBConfig().Database, "unset keys keep their default")
}

func TestLoad_EnvironmentWins(t *testing.T) {
	t.Setenv("BALLSYM_DEFAULTPRESET", "dropshot")
	t.Setenv("BALLSYM_RECORDING_TYPE", "sqlite")
	t.Setenv("BALLSYM_BENCH_ITERATIONS", "25")
	load(t, `{"defaultPreset": "hoops"}`)

	assert.Equal(t, "dropshot", GetString("defaultPreset"))
	assert.Equal(t, "sqlite", GetRecordingConfig().Type)
	assert.Equal(t, 25, GetInt("bench.iterations"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(filepath.Join(t.TempDir(), "absent"))
	var notFound viper.ConfigFileNotFoundError
	require.ErrorAs(t, err, &notFound)

	assert.Equal(t, "standard", GetString("defaultPreset"), "defaults survive a missing file")
}

func TestGetRecordingConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		load(t, `{}`)
		rc := GetRecordingConfig()
		assert.False(t, rc.Enabled)
		assert.Equal(t, "memory", rc.Type)
		assert.True(t, rc.Memory.CompressOutput)
		assert.Empty(t, rc.SQLite.Path, "in-memory sqlite by default")
		assert.Equal(t, time.Minute, rc.SQLite.DumpInterval)
	})

	t.Run("override", func(t *testing.T) {
		load(t, `{
			"recording": {
				"enabled": true,
				"type": "sqlite",
				"memory": { "outputDir": "/tmp/out", "compressOutput": false },
				"sqlite": { "path": "/tmp/ballsym.db", "dumpInterval": "10m" }
			}
		}`)
		assert.Equal(t, RecordingConfig{
			Enabled: true,
			Type:    "sqlite",
			Memory:  MemoryConfig{OutputDir: "/tmp/out"},
			SQLite: SQLiteConfig{
				Path:         "/tmp/ballsym.db",
				DumpPath:     "./recordings/ballsym.db",
				DumpInterval: 10 * time.Minute,
			},
		}, GetRecordingConfig())
	})
}

func TestDBConfig_DSN(t *testing.T) {
	load(t, `{"db": {"host": "db", "password": "pw"}}`)

	assert.Equal(t,
		"host=db port=5432 user=postgres password=pw dbname=ballsym sslmode=disable",
		GetDBConfig().DSN())
}

func TestInfluxConfig_URL(t *testing.T) {
	load(t, `{"influx": {"enabled": true, "protocol": "https", "host": "metrics"}}`)

	ic := GetInfluxConfig()
	assert.True(t, ic.Enabled)
	assert.Equal(t, "https://metrics:8086", ic.URL())
	assert.Equal(t, "ballsym-metrics", ic.Org)
}

func TestGetOTelConfig(t *testing.T) {
	load(t, `{"otel": {"enabled": true, "batchTimeout": "30s", "endpoint": "localhost:4318", "insecure": false}}`)

	assert.Equal(t, OTelConfig{
		Enabled:      true,
		ServiceName:  "ballsym",
		BatchTimeout: 30 * time.Second,
		Endpoint:     "localhost:4318",
	}, GetOTelConfig())
}

func TestGetMonitorConfig(t *testing.T) {
	load(t, `{"monitor": {"enabled": true}}`)

	assert.Equal(t, MonitorConfig{Enabled: true, Interval: time.Second}, GetMonitorConfig())
}

func TestSetDefaults_WithoutFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	SetDefaults()

	assert.Equal(t, "memory", GetRecordingConfig().Type)
	assert.Equal(t, 5*time.Second, GetOTelConfig().BatchTimeout)
}
