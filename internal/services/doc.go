// Package services implements the read side of healthstats. It sits between
// the HTTP handlers and the datasets tree the processor writes, so handlers
// never touch files directly.
//
// DatasetService loads the processor's CSV outputs and hands them back as
// JSON-ready rows. HealthService reports liveness and whether a run has
// produced outputs yet.
//
// Services receive their dependencies through constructors:
//
//	paths := config.PathsFromConfig(cfg.Paths)
//	datasets := services.NewDatasetService(paths, logger)
//	health := services.NewHealthService(config.AppVersion, paths, logger)
package services
