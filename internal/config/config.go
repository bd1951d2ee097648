package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "ballsym.cfg.json"

// MemoryConfig holds in-memory/JSON recording backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite recording backend settings.
// An empty Path keeps the database in memory and dumps it to DumpPath.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpPath     string        `json:"dumpPath" mapstructure:"dumpPath"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// RecordingConfig selects where session recordings go
type RecordingConfig struct {
	Enabled bool
	Type    string // memory, sqlite or postgres
	Memory  MemoryConfig
	SQLite  SQLiteConfig
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// DSN renders the connection string understood by the postgres driver.
func (c DBConfig) DSN() string {
	return fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		c.Host, c.Port, c.Username, c.Password, c.Database)
}

// InfluxConfig holds latency metrics settings
type InfluxConfig struct {
	Enabled    bool
	Host       string
	Port       string
	Protocol   string
	Token      string
	Org        string
	Bucket     string
	BackupPath string
}

// URL is the server address assembled from protocol, host and port.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// MonitorConfig controls the periodic status file
type MonitorConfig struct {
	Enabled  bool
	Interval time.Duration
}

// EnvPrefix prefixes environment overrides: BALLSYM_LOGLEVEL,
// BALLSYM_RECORDING_TYPE and so on.
const EnvPrefix = "BALLSYM"

// Load registers defaults and environment overrides, then reads FileName
// from configDir. Defaults and overrides stay in effect when the file
// cannot be read.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading %s from %s: %w", FileName, configDir, err)
	}
	return nil
}

// SetDefaults registers every default value. Load calls it; callers running
// without a config file can call it directly.
func SetDefaults() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./ballsymlogs")
	viper.SetDefault("defaultPreset", "standard")

	viper.SetDefault("recording.enabled", false)
	viper.SetDefault("recording.type", "memory")
	viper.SetDefault("recording.memory.outputDir", "./recordings")
	viper.SetDefault("recording.memory.compressOutput", true)
	viper.SetDefault("recording.sqlite.path", "")
	viper.SetDefault("recording.sqlite.dumpPath", "./recordings/ballsym.db")
	viper.SetDefault("recording.sqlite.dumpInterval", "1m")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "ballsym")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "ballsym-metrics")
	viper.SetDefault("influx.bucket", "ballsym_latency")
	viper.SetDefault("influx.backupPath", "./ballsymlogs/influx_backup.log.gz")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "ballsym")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("monitor.enabled", false)
	viper.SetDefault("monitor.interval", "1s")

	viper.SetDefault("bench.iterations", 1000)
	viper.SetDefault("bench.plotPath", "")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetRecordingConfig returns the recording section.
func GetRecordingConfig() RecordingConfig {
	return RecordingConfig{
		Enabled: viper.GetBool("recording.enabled"),
		Type:    viper.GetString("recording.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("recording.memory.outputDir"),
			CompressOutput: viper.GetBool("recording.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("recording.sqlite.path"),
			DumpPath:     viper.GetString("recording.sqlite.dumpPath"),
			DumpInterval: viper.GetDuration("recording.sqlite.dumpInterval"),
		},
	}
}

// GetDBConfig returns the Postgres connection section.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
	}
}

// GetInfluxConfig returns the latency metrics section.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Protocol:   viper.GetString("influx.protocol"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetOTelConfig returns the OpenTelemetry section.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetMonitorConfig returns the status monitor section.
func GetMonitorConfig() MonitorConfig {
	return MonitorConfig{
		Enabled:  viper.GetBool("monitor.enabled"),
		Interval: viper.GetDuration("monitor.interval"),
	}
}
