// Command processor runs the health statistics pipeline over a datasets
// tree and records the outcome next to the outputs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"healthstats/internal/config"
	"healthstats/internal/exporter"
	"healthstats/internal/infrastructure"
	"healthstats/internal/operations"
	"healthstats/internal/validation"
)

// Exit codes
const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

var runHistoryHeader = []string{"run_id", "started", "finished", "status", "steps_completed", "rows_written", "error"}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stderr)
	stop()
	os.Exit(code)
}

// run parses args, executes the pipeline and returns the process exit code
func run(ctx context.Context, args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("processor", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to a YAML config file")
	root := flags.String("root", "", "datasets root directory (overrides paths.datasets_dir)")
	step := flags.String("step", "", "run a single step by ID instead of the whole pipeline")
	strict := flags.Bool("strict", false, "fail on life expectancy series that match no rule")
	continueOnError := flags.Bool("continue-on-error", false, "keep running steps that do not depend on a failed one")
	check := flags.Bool("check", false, "validate the raw sources and output tree, then exit without running")
	if err := flags.Parse(args); err != nil {
		return exitUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "processor: %v\n", err)
		return exitUsage
	}
	if *root != "" {
		cfg.Paths.DatasetsDir = *root
	}
	if *strict {
		cfg.Pipeline.StrictSeries = true
	}

	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "processor: %v\n", err)
		return exitUsage
	}
	defer infrastructure.CloseLogFile()

	if *check {
		if err := checkSources(cfg, logger); err != nil {
			logger.ErrorContext(ctx, "source check failed", slog.String("error", err.Error()))
			return exitFailed
		}
		return exitOK
	}

	if err := execute(ctx, cfg, *step, *continueOnError, logger); err != nil {
		logger.ErrorContext(ctx, "pipeline failed", slog.String("error", err.Error()))
		return exitFailed
	}
	return exitOK
}

// checkSources validates every raw input and that the outputs can be written
func checkSources(cfg *config.Config, logger *slog.Logger) error {
	paths := config.PathsFromConfig(cfg.Paths)
	v := validation.NewSourceValidator(logger)

	reports, err := v.ValidateSources(validation.PipelineSources(paths, cfg.Pipeline))
	passed := 0
	for _, r := range reports {
		if r.OK() {
			passed++
		}
	}
	logger.Info("source check finished",
		slog.Int("sources", len(reports)),
		slog.Int("passed", passed))
	if err != nil {
		return err
	}
	return v.ValidateOutputDirectory(paths.CombinedDir)
}

// execute runs the configured pipeline, then writes the run manifest, the
// run history row and the metrics textfile whatever the outcome
func execute(ctx context.Context, cfg *config.Config, step string, continueOnError bool, logger *slog.Logger) error {
	paths := config.PathsFromConfig(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}
	paths.LogPathResolution(logger)

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	tracer, err := operations.NewOperationTracer(providers)
	if err != nil {
		return err
	}

	registry := operations.NewRegistry()
	options := operations.NewStageOptions(paths, cfg.Pipeline, tracer.Metrics(), logger)
	if err := operations.RegisterPipeline(registry, options, logger); err != nil {
		return err
	}

	opsConfig := operations.NewConfigBuilder().WithContinueOnError(continueOnError).Build()
	manager := operations.NewManager(registry, opsConfig, logger, tracer)

	resp, runErr := manager.Execute(ctx, operations.OperationRequest{Step: step})

	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	if resp != nil {
		manifest := operations.NewRunManifest(resp)
		if err := manifest.SaveToFile(paths.RunManifestJSON); err != nil {
			errs = append(errs, err)
		}
		if err := appendRunHistory(paths.RunHistoryCSV, manifest, exporter.NewCSVWriter(logger)); err != nil {
			errs = append(errs, err)
		}
		logger.InfoContext(ctx, "run recorded",
			slog.String("run_id", resp.ID),
			slog.String("status", string(resp.Status)),
			slog.String("manifest", paths.RunManifestJSON))
	}
	if cfg.Telemetry.MetricsTextfile != "" {
		if err := providers.WriteMetricsTextfile(cfg.Telemetry.MetricsTextfile); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// appendRunHistory adds one row per run, writing the header on first use
func appendRunHistory(path string, m *operations.RunManifest, w *exporter.CSVWriter) error {
	rows := 0
	for _, s := range m.Summaries {
		rows += s.RowsWritten
	}

	record := []string{
		m.OperationID,
		m.StartTime.UTC().Format(time.RFC3339),
		m.EndTime.UTC().Format(time.RFC3339),
		m.Status,
		strconv.Itoa(m.CompletedSteps),
		strconv.Itoa(rows),
		m.Error,
	}

	if !config.FileExists(path) {
		return w.WriteCSV(path, exporter.WriteOptions{
			Headers: runHistoryHeader,
			Records: [][]string{record},
		})
	}
	return w.AppendToCSV(path, [][]string{record})
}
