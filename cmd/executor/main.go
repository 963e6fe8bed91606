// Package main is the entry point for the pipeline-executor binary.
//
// Startup sequence:
//  1. Parse CLI flags / environment variables
//  2. Build logger, then resolve deprecated flag aliases
//  3. Resolve the server URI (name service or URI file)
//  4. Either launch numExec sibling executor processes (Supervisor) or, if
//     --local is set, numExec <= 1, or this process was itself spawned as a
//     sibling, run a single executor instance (Lifecycle) directly
//  5. Run until the executor retires (graceful teardown) or SIGINT/SIGTERM
//     arrives (abrupt teardown)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/arkeep-io/pipeline-executor/internal/discovery"
	"github.com/arkeep-io/pipeline-executor/internal/executorstate"
	"github.com/arkeep-io/pipeline-executor/internal/lifecycle"
	"github.com/arkeep-io/pipeline-executor/internal/supervisor"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type config struct {
	queueType string
	queueName string

	// Deprecated aliases (§ deprecated flag precedence): when set, they are
	// only honored if the replacement flag was left at its default, and a
	// warning is logged either way.
	queueDeprecated        string
	sgeQueueOptsDeprecated string

	uriFile        string
	useNameService bool

	memTotal  float64
	procTotal int
	numExec   int
	local     bool

	heartbeatInterval time.Duration
	waitTimeout       time.Duration
	timeToSeppuku     float64 // minutes
	timeToAcceptJobs  float64 // minutes

	logLevel string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &config{}

	root := &cobra.Command{
		Use:   "pipeline-executor",
		Short: "Pipeline executor — runs pipeline stages on behalf of a pipeline server",
		Long: `pipeline-executor registers with a pipeline server, requests runnable
stages, executes them as local child processes under a resource budget,
reports outcomes, and retires itself safely on idle timeout, drain
deadline, or server request.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	root.AddCommand(newVersionCmd())

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.queueType, "queue-type", envOrDefault("PIPELINE_QUEUE_TYPE", "local"), "Scheduler queue type (local, sge, pbs)")
	flags.StringVar(&cfg.queueName, "queue-name", envOrDefault("PIPELINE_QUEUE_NAME", ""), "Scheduler queue name")
	flags.StringVar(&cfg.queueDeprecated, "queue", "", "Deprecated alias for --queue-type; a warning is logged when used")
	flags.StringVar(&cfg.sgeQueueOptsDeprecated, "sge-queue-opts", "", "Deprecated alias for --queue-name; a warning is logged when used")

	flags.StringVar(&cfg.uriFile, "uri-file", envOrDefault("PIPELINE_URI_FILE", ""), "Path to a file containing the server URI (first line)")
	flags.BoolVar(&cfg.useNameService, "use-ns", false, "Use the naming service instead of a URI file")

	flags.Float64Var(&cfg.memTotal, "mem", 0, "Per-executor memory budget in GB (0 = detect from host)")
	flags.IntVar(&cfg.procTotal, "proc", 0, "Per-executor process budget (0 = detect from host core count)")
	flags.IntVar(&cfg.numExec, "num-executors", 1, "Supervisor spawn count; N<0 is a usage error")
	flags.BoolVar(&cfg.local, "local", false, "Run as an executor directly, bypassing the supervisor fan-out")

	flags.DurationVar(&cfg.heartbeatInterval, "heartbeat-interval", executorstate.DefaultHeartbeatInterval, "Interval between heartbeats to the server")
	flags.DurationVar(&cfg.waitTimeout, "wait-timeout", executorstate.DefaultWaitTimeout, "How long to wait between getCommand polls when idle")
	flags.Float64Var(&cfg.timeToSeppuku, "time-to-seppuku", 0, "Idle timeout in minutes (0 = disabled)")
	flags.Float64Var(&cfg.timeToAcceptJobs, "time-to-accept-jobs", 0, "Drain deadline in minutes from registration (0 = disabled)")

	flags.StringVar(&cfg.logLevel, "log-level", envOrDefault("PIPELINE_LOG_LEVEL", "info"), "Log level (debug, info, warn, error)")

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pipeline-executor %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func run(ctx context.Context, cfg *config) error {
	logger, err := buildLogger(cfg.logLevel)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	resolveDeprecatedFlags(cfg, logger)

	if cfg.numExec < 0 {
		return fmt.Errorf("--num-executors must be >= 0, got %d", cfg.numExec)
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting pipeline executor",
		zap.String("version", version),
		zap.String("queue_type", cfg.queueType),
		zap.Int("num_exec", cfg.numExec),
	)

	execCfg := buildExecutorConfig(cfg)

	serverURI, err := discovery.ResolveServerURI(ctx, discovery.Config{
		UseNameService: execCfg.Discovery.UseNameService,
		URIFile:        execCfg.Discovery.URIFile,
	})
	if err != nil {
		return fmt.Errorf("failed to resolve pipeline server: %w", err)
	}

	if cfg.local || supervisor.IsChild() || cfg.numExec <= 1 {
		exec := lifecycle.New(execCfg, logger)
		if err := exec.Run(ctx, serverURI); err != nil {
			return fmt.Errorf("executor exited with error: %w", err)
		}
		logger.Info("pipeline executor stopped")
		return nil
	}

	if err := supervisor.Launch(ctx, cfg.numExec, logger); err != nil {
		return fmt.Errorf("supervisor exited with error: %w", err)
	}
	logger.Info("all sibling executors stopped")
	return nil
}

// resolveDeprecatedFlags applies the "new flag wins, log a warning either
// way" precedence rule: --queue/--sge-queue-opts only take effect when the
// replacement flag was left at its default.
func resolveDeprecatedFlags(cfg *config, logger *zap.Logger) {
	if cfg.queueDeprecated != "" {
		logger.Warn("--queue is deprecated, use --queue-type instead")
		if cfg.queueType == "local" {
			cfg.queueType = cfg.queueDeprecated
		}
	}
	if cfg.sgeQueueOptsDeprecated != "" {
		logger.Warn("--sge-queue-opts is deprecated, use --queue-name instead")
		if cfg.queueName == "" {
			cfg.queueName = cfg.sgeQueueOptsDeprecated
		}
	}
}

func buildExecutorConfig(cfg *config) executorstate.Config {
	ec := executorstate.Config{
		MemTotal:          cfg.memTotal,
		ProcTotal:         cfg.procTotal,
		HeartbeatInterval: cfg.heartbeatInterval,
		WaitTimeout:       cfg.waitTimeout,
		Discovery: executorstate.DiscoveryConfig{
			UseNameService: cfg.useNameService,
			URIFile:        cfg.uriFile,
		},
	}
	if cfg.timeToSeppuku > 0 {
		d := time.Duration(cfg.timeToSeppuku * float64(time.Minute))
		ec.IdleLimit = &d
	}
	if cfg.timeToAcceptJobs > 0 {
		d := time.Duration(cfg.timeToAcceptJobs * float64(time.Minute))
		ec.AcceptLimit = &d
	}
	return ec.WithDefaults()
}

func buildLogger(level string) (*zap.Logger, error) {
	var cfg zap.Config

	switch level {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	switch level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
