package operations

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"healthstats/internal/infrastructure"
)

// Manager orchestrates operation execution
type Manager struct {
	registry *Registry
	config   *Config
	logger   *slog.Logger
	tracer   *OperationTracer
}

// NewManager creates a new operation manager with dependency injection
func NewManager(registry *Registry, config *Config, logger *slog.Logger, tracer *OperationTracer) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = NewNoopOperationTracer()
	}

	return &Manager{
		registry: registry,
		config:   config,
		logger:   logger.With(slog.String("component", "operations")),
		tracer:   tracer,
	}
}

// RegisterStage registers a Step with the operation
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered stages
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Execute runs a operation with the given request. When req.Step is set only
// that step runs and its inputs come from disk; otherwise every registered
// step runs in dependency order.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = infrastructure.NewRunID()
	}
	ctx = infrastructure.WithRunID(ctx, req.ID)

	state := NewOperationState(req.ID)
	m.logOperationStart(ctx, req)

	steps, err := m.selectSteps(req)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
		state.Fail(err)
		return m.createResponse(state), err
	}

	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID, len(steps))
	defer span.End()

	state.Start()
	err = m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel()
		state.mu.Lock()
		state.Error = err
		state.mu.Unlock()
	default:
		state.Fail(err)
	}
	m.tracer.RecordOperationCompletion(span, state.Status, err)
	m.logOperationComplete(ctx, req.ID, state.Duration(), string(state.Status))

	return m.createResponse(state), err
}

// selectSteps resolves the request into the ordered list of steps to run
func (m *Manager) selectSteps(req OperationRequest) ([]Step, error) {
	if req.Step != "" {
		step, err := m.registry.Get(req.Step)
		if err != nil {
			return nil, err
		}
		return []Step{step}, nil
	}
	return m.registry.GetDependencyOrder()
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	var firstErr error
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		stepState := state.GetStage(step.ID())
		if stepState != nil && stepState.GetStatus() == StepStatusSkipped {
			m.logger.InfoContext(ctx, "stage_skipped",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()),
				slog.String("reason", stepState.Message))
			continue
		}

		m.logger.InfoContext(ctx, "executing_stage",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(steps)))

		err := m.executeStage(ctx, state, step)
		if err == nil {
			continue
		}
		m.logStageError(ctx, state.ID, step.ID(), err)
		if GetErrorType(err) == ErrorTypeCancellation {
			m.skipRemaining(state, steps[i+1:], "operation cancelled")
			return err
		}
		m.skipDependentStages(state, step.ID())
		if !m.config.ContinueOnError {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("step %s failed", step.ID()))
			return err
		}
		if firstErr == nil {
			firstErr = err
		}
		m.logger.WarnContext(ctx, "stage_failed_continuing",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()))
	}
	return firstErr
}

// executeStage validates and runs a single Step under its timeout
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		stepState = NewStepState(step.ID(), step.Name())
		state.SetStage(step.ID(), stepState)
	}

	ctx, span := m.tracer.TraceStageExecution(ctx, state.ID, step.ID())
	defer span.End()

	if err := step.Validate(state); err != nil {
		verr := NewValidationError(step.ID(), err)
		stepState.Fail(verr)
		m.tracer.RecordStageCompletion(ctx, span, step.ID(), 0, verr)
		return verr
	}

	timeout := m.config.GetStageTimeout(step.ID())
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	m.logStageStart(ctx, state.ID, step.ID())
	stepState.Start()
	start := time.Now()
	err := step.Execute(stageCtx, state)
	duration := time.Since(start)

	if err != nil {
		switch {
		case stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
			err = NewTimeoutError(step.ID(), timeout.String(), err)
		case stderrors.Is(err, context.Canceled) || ctx.Err() != nil:
			err = NewCancellationError(step.ID(), err)
		default:
			err = NewExecutionError(step.ID(), err)
		}
		stepState.Fail(err)
		m.tracer.RecordStageCompletion(ctx, span, step.ID(), duration, err)
		return err
	}

	stepState.Complete()
	m.tracer.RecordStageCompletion(ctx, span, step.ID(), duration, nil)
	m.logStageComplete(ctx, state.ID, step.ID(), duration)
	return nil
}

// skipDependentStages marks every pending step downstream of the failed
// step as skipped
func (m *Manager) skipDependentStages(state *OperationState, failedStageID string) {
	for _, id := range m.registry.GetDependents(failedStageID) {
		stepState := state.GetStage(id)
		if stepState != nil && stepState.GetStatus() == StepStatusPending {
			stepState.Skip(fmt.Sprintf("dependency %s failed", failedStageID))
		}
	}
}

// skipRemaining marks the pending steps in steps as skipped
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		stepState := state.GetStage(step.ID())
		if stepState != nil && stepState.GetStatus() == StepStatusPending {
			stepState.Skip(reason)
		}
	}
}

// createResponse creates a operation response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:        state.ID,
		Status:    state.Status,
		Duration:  state.Duration(),
		Steps:     state.Steps,
		Summaries: state.GetSummaries(),
		Datasets:  state.GetDatasets(),

		CompletedSteps: len(state.GetCompletedStages()),
		HasFailures:    state.HasFailures(),
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}
