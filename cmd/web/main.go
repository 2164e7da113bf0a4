// Command web serves the processor's outputs over a read-only JSON API.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"healthstats/internal/app"
	"healthstats/internal/config"
	"healthstats/internal/infrastructure"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr io.Writer) int {
	flags := flag.NewFlagSet("web", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "path to a YAML config file")
	root := flags.String("root", "", "datasets root directory (overrides paths.datasets_dir)")
	port := flags.Int("port", 0, "listen port (overrides server.port)")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "web: %v\n", err)
		return 2
	}
	if *root != "" {
		cfg.Paths.DatasetsDir = *root
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "web: %v\n", err)
		return 2
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize OpenTelemetry", slog.String("error", err.Error()))
		return 1
	}

	application, err := app.NewApplication(cfg, logger, providers)
	if err != nil {
		logger.Error("Failed to initialize application", slog.String("error", err.Error()))
		return 1
	}

	if err := application.Run(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
