// Package app wires the healthstats read API: configuration, services,
// middleware and the HTTP server.
//
// # Initialization Flow
//
//	1. cmd/web loads configuration, the logger and OpenTelemetry
//	2. NewApplication builds the dataset and health services
//	3. setupRouter installs middleware and mounts the handlers
//	4. Run serves until SIGINT or SIGTERM, then shuts down gracefully
//
// # Usage
//
//	application, err := app.NewApplication(cfg, logger, providers)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Error Handling
//
// Initialization errors are returned to the caller. The package never
// calls os.Exit, leaving the exit code to main.
package app
