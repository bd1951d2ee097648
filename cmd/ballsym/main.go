package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ballsym/extension/internal/config"
	"github.com/ballsym/extension/internal/dispatcher"
	"github.com/ballsym/extension/internal/engine"
	"github.com/ballsym/extension/internal/handlers"
	"github.com/ballsym/extension/internal/influx"
	"github.com/ballsym/extension/internal/logging"
	"github.com/ballsym/extension/internal/monitor"
	intOtel "github.com/ballsym/extension/internal/otel"
	"github.com/ballsym/extension/internal/parser"
	"github.com/ballsym/extension/internal/session"
	"github.com/ballsym/extension/internal/storage"
	"github.com/ballsym/extension/internal/worker"
	"github.com/ballsym/extension/pkg/extension"

	"github.com/rs/zerolog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentExtensionVersion string = "0.0.1"
	BuildDate               string = "unknown"

	ExtensionName string = "ballsym"
)

// global variables
var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	LogFilePath string
	LogFile     *os.File

	SessionStartTime time.Time = time.Now()

	// Services
	sess            *session.Session
	handlerService  *handlers.Service
	workerManager   *worker.Manager
	eventDispatcher *dispatcher.Dispatcher
	influxManager   *influx.Manager
	monitorService  *monitor.Service

	// Recording backend (optional)
	recorder storage.Recorder
)

func setup(configDir string) error {
	SlogManager = logging.NewSlogManager()
	SlogManager.Setup(nil, "info", nil)
	Logger = SlogManager.Logger()

	if err := config.Load(configDir); err != nil {
		Logger.Warn("Failed to load config, using defaults!", "error", err)
	} else {
		Logger.Info("Loaded config")
	}

	logsDir := config.GetString("logsDir")
	var err error
	LogFile, LogFilePath, err = logging.OpenFile(logsDir, ExtensionName, SessionStartTime)
	if err != nil {
		Logger.Error("Failed to open log file, logging to stdout", "error", err, "path", LogFilePath)
		LogFile = nil
	}

	if otelCfg := config.GetOTelConfig(); otelCfg.Enabled && LogFile != nil {
		OTelProvider, err = intOtel.New(context.Background(), otelCfg, LogFile, CurrentExtensionVersion)
		if err != nil {
			Logger.Error("Failed to initialize OTel provider", "error", err)
		}
	}

	// Re-setup logging with file output and optional OTel
	var otelLogProvider *sdklog.LoggerProvider
	if OTelProvider != nil {
		otelLogProvider = OTelProvider.LoggerProvider()
	}
	if LogFile != nil {
		SlogManager.Setup(LogFile, config.GetString("logLevel"), otelLogProvider)
	} else {
		SlogManager.Setup(nil, config.GetString("logLevel"), otelLogProvider)
	}
	Logger = SlogManager.Logger()
	Logger.Info("Logging to file", "path", LogFilePath)

	sess = session.New(engine.NewReference())
	SlogManager.GetSessionID = sess.ID
	SlogManager.GetPreset = func() string { return string(sess.Info().Preset) }

	eventDispatcher, err = dispatcher.New(SlogManager.Component("dispatcher"))
	if err != nil {
		return fmt.Errorf("failed to create dispatcher: %w", err)
	}

	handlerService = handlers.NewService(handlers.Dependencies{
		Session:          sess,
		Parser:           parser.NewParser(Logger),
		LogManager:       SlogManager,
		ExtensionName:    ExtensionName,
		ExtensionVersion: CurrentExtensionVersion,
		BuildDate:        BuildDate,
	})

	if err := initRecorder(); err != nil {
		Logger.Error("Recording disabled", "error", err)
		recorder = nil
	}

	var latency worker.LatencySink
	influxManager = influx.NewManager(zerologFor("influx"), config.GetInfluxConfig())
	if err := influxManager.Connect(context.Background()); err != nil {
		if !errors.Is(err, influx.ErrDisabled) {
			Logger.Error("Failed to set up latency metrics", "error", err)
		}
		influxManager = nil
	} else {
		latency = influxManager
	}

	workerManager = worker.NewManager(worker.Dependencies{
		Service:    handlerService,
		LogManager: SlogManager,
		Latency:    latency,
	}, recorder)
	workerManager.RegisterHandlers(eventDispatcher)

	if mc := config.GetMonitorConfig(); mc.Enabled {
		queues := map[string]func() int{}
		if influxManager != nil {
			queues["latency"] = influxManager.Pending
		}
		monitorService = monitor.NewService(monitor.Dependencies{
			Session:    sess,
			LogManager: SlogManager,
			StatusPath: filepath.Join(logsDir, "status.json"),
			Interval:   mc.Interval,
			Queues:     queues,
		})
		if err := monitorService.Start(); err != nil {
			Logger.Error("Failed to start status monitor", "error", err)
			monitorService = nil
		}
	}

	extension.SetVersion(CurrentExtensionVersion)
	extension.SetDispatcher(eventDispatcher)
	Logger.Info("Dispatcher ready", "version", CurrentExtensionVersion, "commands", eventDispatcher.Commands())
	return nil
}

func initRecorder() error {
	rec, err := storage.NewRecorder(config.GetRecordingConfig(), config.GetDBConfig(), storage.Dependencies{
		LogManager: SlogManager,
		DBLogger:   zerologFor("database"),
	})
	if err != nil {
		return err
	}
	if rec == nil {
		return nil
	}
	if err := rec.Init(); err != nil {
		return fmt.Errorf("initializing recorder: %w", err)
	}
	recorder = rec
	Logger.Info("Recording enabled", "type", config.GetRecordingConfig().Type)
	return nil
}

// zerologFor returns the zerolog logger used by the storage and metrics
// managers. It shares the log file with slog.
func zerologFor(component string) zerolog.Logger {
	var w = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true, TimeFormat: time.RFC3339}
	if LogFile != nil {
		w.Out = LogFile
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(config.GetString("logLevel")))
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("component", component).Logger()
}

func shutdown() {
	if monitorService != nil {
		monitorService.Stop()
	}
	if eventDispatcher != nil {
		eventDispatcher.Close()
	}
	if workerManager != nil {
		if err := workerManager.Close(); err != nil {
			Logger.Error("Failed to close recorder", "error", err)
		}
	}
	if influxManager != nil {
		if err := influxManager.Close(); err != nil {
			Logger.Error("Failed to close latency metrics", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := SlogManager.Flush(ctx); err != nil {
		Logger.Error("Failed to flush logs", "error", err)
	}
	if OTelProvider != nil {
		if err := OTelProvider.Shutdown(ctx); err != nil {
			Logger.Error("Failed to shut down OTel", "error", err)
		}
	}
	Logger.Info("Shut down")
	if LogFile != nil {
		LogFile.Close()
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [serve|bench [iterations]|version] [-config dir]\n", ExtensionName)
}

func main() {
	args := os.Args[1:]
	configDir := "."
	for i := 0; i < len(args); i++ {
		if args[i] == "-config" && i+1 < len(args) {
			configDir = args[i+1]
			args = append(args[:i:i], args[i+2:]...)
			break
		}
	}

	mode := "serve"
	if len(args) > 0 {
		mode = strings.ToLower(args[0])
	}

	if mode == "version" {
		fmt.Printf("%s %s (%s)\n", ExtensionName, CurrentExtensionVersion, BuildDate)
		return
	}
	if mode != "serve" && mode != "bench" {
		usage()
		os.Exit(2)
	}

	if err := setup(configDir); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	err := run(mode, args[min(1, len(args)):])
	shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(mode string, args []string) error {
	switch mode {
	case "bench":
		iterations := config.GetInt("bench.iterations")
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid iteration count %q: %w", args[0], err)
			}
			iterations = n
		}
		return bench(os.Stdout, iterations, config.GetString("bench.plotPath"))
	default:
		if preset := config.GetString("defaultPreset"); preset != "" {
			Logger.Info("Loading default preset", "preset", preset, "reply", extension.Call("load_"+preset))
		}
		return serve(os.Stdin, os.Stdout)
	}
}
