// Package operations runs the healthstats data preparation pipeline as a
// sequence of dependent steps.
//
// Core Components:
//
// Manager: executes the registered steps in dependency order under a per-step
// timeout, records a span and metrics for each step and skips the steps
// downstream of a failure.
//
// Step: a single unit of work. Each step declares the datasets it needs and
// produces; BaseStage.Validate accepts an input that an upstream step left in
// memory or, failing that, a file on disk.
//
// Registry: registration-ordered set of steps with topological ordering.
//
// State: runtime state of the operation and its steps, including the
// in-memory tables handed from one step to the next and the per-step
// summaries.
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	options := operations.NewStageOptions(paths, cfg.Pipeline, tracer.Metrics(), logger)
//	if err := operations.RegisterPipeline(registry, options, logger); err != nil {
//		return err
//	}
//	manager := operations.NewManager(registry, operations.NewConfig(), logger, tracer)
//	resp, err := manager.Execute(ctx, operations.OperationRequest{})
//
// Running a single step (OperationRequest.Step) reads its upstream datasets
// from the files written by a previous run.
package operations
