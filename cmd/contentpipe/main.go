// Content pipeline CLI.
//
// Usage:
//
//	contentpipe run --text "..."                  # run one workflow
//	contentpipe run --config config.yaml --text "..."
//	contentpipe resume --thread t1 --comment "ok" # resume a paused run
//	contentpipe version
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/BaSui01/contentpipe/config"
	"github.com/BaSui01/contentpipe/internal/metrics"
	"github.com/BaSui01/contentpipe/internal/telemetry"
	"github.com/BaSui01/contentpipe/state"
	"github.com/BaSui01/contentpipe/workflow"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runWorkflow(os.Args[2:])
	case "resume":
		resumeWorkflow(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runWorkflow(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	text := fs.String("text", "", "Input text to build content from")
	platform := fs.String("platform", "blog", "Target platform (blog, twitter, linkedin)")
	userID := fs.String("user", "", "User id recorded on the workflow")
	threadID := fs.String("thread", "", "Enable checkpointing under this thread id")
	fs.Parse(args)

	if *text == "" {
		fmt.Fprintln(os.Stderr, "run requires --text")
		os.Exit(1)
	}

	logger, providers, coordinator := bootstrap(*configPath)
	defer logger.Sync()
	defer shutdownTelemetry(providers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	input := map[string]any{
		"text":     *text,
		"platform": *platform,
	}
	var opts []state.Option
	if *userID != "" {
		opts = append(opts, state.WithUserID(*userID))
	}

	var (
		final *state.WorkflowState
		err   error
	)
	if *threadID != "" {
		final, err = coordinator.RunWithCheckpoint(ctx, input, *threadID, opts...)
	} else {
		final, err = coordinator.Run(ctx, input, opts...)
	}
	if err != nil {
		logger.Fatal("workflow execution failed", zap.Error(err))
	}

	printState(final)
	if final.Status == state.StatusFailed {
		os.Exit(1)
	}
}

func resumeWorkflow(args []string) {
	fs := flag.NewFlagSet("resume", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to config file")
	threadID := fs.String("thread", "", "Thread id of the paused workflow")
	reviewer := fs.String("reviewer", "cli", "Reviewer recorded in the feedback")
	approved := fs.Bool("approved", true, "Approve the content")
	comment := fs.String("comment", "", "Review comment")
	fs.Parse(args)

	if *threadID == "" {
		fmt.Fprintln(os.Stderr, "resume requires --thread")
		os.Exit(1)
	}

	logger, providers, coordinator := bootstrap(*configPath)
	defer logger.Sync()
	defer shutdownTelemetry(providers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	final, err := coordinator.Resume(ctx, *threadID, map[string]any{
		"reviewer":    *reviewer,
		"approved":    *approved,
		"comment":     *comment,
		"reviewed_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Fatal("resume failed", zap.Error(err))
	}

	printState(final)
	if final.Status == state.StatusFailed {
		os.Exit(1)
	}
}

// bootstrap loads config and wires logger, telemetry, checkpoint store, and
// the coordinator.
func bootstrap(configPath string) (*zap.Logger, *telemetry.Providers, *workflow.Coordinator) {
	loader := config.NewLoader()
	if configPath != "" {
		loader = loader.WithConfigPath(configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Log)

	providers, err := telemetry.Init(cfg.Telemetry, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}

	store, err := openCheckpointStore(cfg.Checkpoint, logger)
	if err != nil {
		logger.Fatal("failed to open checkpoint store", zap.Error(err))
	}

	collector := metrics.NewCollector("contentpipe", prometheus.DefaultRegisterer, logger)

	coordinator := workflow.NewCoordinator(logger,
		workflow.WithCoordinatorCheckpointStore(store),
		workflow.WithCoordinatorMaxSteps(cfg.Engine.MaxSteps),
		workflow.WithCoordinatorParallelGeneration(cfg.Engine.ParallelGeneration),
		workflow.WithCoordinatorMetrics(collector),
	)
	return logger, providers, coordinator
}

func openCheckpointStore(cfg config.CheckpointConfig, logger *zap.Logger) (workflow.CheckpointStore, error) {
	switch cfg.Backend {
	case "memory":
		return workflow.NewMemoryCheckpointStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		logger.Info("checkpoint store connected", zap.String("backend", "redis"), zap.String("addr", cfg.RedisAddr))
		return workflow.NewRedisCheckpointStore(client, workflow.WithTTL(cfg.RedisTTL)), nil
	case "sqlite":
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		logger.Info("checkpoint store connected", zap.String("backend", "sqlite"), zap.String("path", cfg.SQLitePath))
		return workflow.NewGormCheckpointStore(db)
	default:
		return nil, fmt.Errorf("unknown checkpoint backend %q", cfg.Backend)
	}
}

func shutdownTelemetry(providers *telemetry.Providers, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := providers.Shutdown(ctx); err != nil {
		logger.Warn("telemetry shutdown failed", zap.Error(err))
	}
}

func printState(st *state.WorkflowState) {
	out, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode state: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func printVersion() {
	fmt.Printf("contentpipe %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`contentpipe - multi-agent content generation pipeline

Usage:
  contentpipe <command> [options]

Commands:
  run       Run one content workflow
  resume    Resume a workflow paused for human review
  version   Show version information
  help      Show this help message

Options for 'run':
  --config <path>     Path to configuration file (YAML)
  --text <string>     Input text (required)
  --platform <name>   Target platform: blog, twitter, linkedin
  --user <id>         User id recorded on the workflow
  --thread <id>       Checkpoint under this thread id and pause for review

Options for 'resume':
  --config <path>     Path to configuration file (YAML)
  --thread <id>       Thread id of the paused workflow (required)
  --reviewer <name>   Reviewer name
  --approved          Approve the content (default true)
  --comment <string>  Review comment

Examples:
  contentpipe run --text "Edge computing for retail analytics"
  contentpipe run --text "..." --platform linkedin --thread review-42
  contentpipe resume --thread review-42 --comment "ship it"
  contentpipe version`)
}

func initLogger(cfg config.LogConfig) *zap.Logger {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var encoderConfig zapcore.EncoderConfig
	encoding := "json"
	if cfg.Format == "console" {
		encoding = "console"
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Format == "console",
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapConfig.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
