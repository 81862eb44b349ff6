package harness

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/canvas/internal/component"
	"github.com/roach88/canvas/internal/library"
	"github.com/roach88/canvas/internal/model"
	"github.com/roach88/canvas/internal/session"
)

// Harness executes scenario steps against one editing session.
type Harness struct {
	session *session.Session
	aliases map[string]string
	logger  *slog.Logger
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes session logs to l. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh session over an empty canvas. Element ids
// come from a sequential generator ("el-1", "el-2", ...) and generated
// component, variant and prop ids from a second one ("c-1", ...), so runs
// are reproducible.
//
// Execution flow:
//  1. Load the scenario library, if any, into the registry
//  2. Execute steps, binding produced ids to aliases
//  3. Evaluate assertions against the final session
//
// A step that fails unexpectedly, or does not fail when it should, is
// recorded in Result.Errors and execution continues. Failed steps leave
// the canvas unchanged. An error is returned only when the scenario cannot
// be set up or the session is corrupted.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := &runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	registry := component.NewRegistry(model.NewSequentialGenerator("c"), component.WithLogger(cfg.logger))
	if scenario.Library != "" {
		components, err := library.LoadDir(scenario.Library)
		if err != nil {
			return nil, fmt.Errorf("failed to load library: %w", err)
		}
		for _, c := range components {
			if err := registry.Load(c); err != nil {
				return nil, fmt.Errorf("failed to load component %s: %w", c.ID, err)
			}
		}
	}

	sessOpts := []session.Option{
		session.WithIDGenerator(model.NewSequentialGenerator("el")),
		session.WithRegistry(registry),
		session.WithLogger(cfg.logger),
	}
	if scenario.HistoryDepth > 0 {
		sessOpts = append(sessOpts, session.WithHistoryDepth(scenario.HistoryDepth))
	}

	h := &Harness{
		session: session.New(sessOpts...),
		aliases: make(map[string]string),
		logger:  cfg.logger,
	}

	result := NewResult()
	if err := h.executeSteps(scenario.Steps, result); err != nil {
		return nil, err
	}

	for _, msg := range EvaluateAssertions(h, scenario.Assertions) {
		result.AddError(msg)
	}
	for k, v := range h.aliases {
		result.Aliases[k] = v
	}
	result.Document = h.session.Resolved()
	return result, nil
}

// executeSteps runs all steps in order.
func (h *Harness) executeSteps(steps []Step, result *Result) error {
	for i, step := range steps {
		fn, ok := ops[step.Op]
		if !ok {
			return fmt.Errorf("step %d: unknown op %q", i, step.Op)
		}

		ev := TraceEvent{Step: i, Op: step.Op, As: step.As}
		args, err := substitute(step.Args, h.aliases)
		if err != nil {
			// The binding step failed earlier; that failure is already recorded.
			result.AddError(fmt.Sprintf("steps[%d] %s: %v", i, step.Op, err))
			result.AddTrace(ev)
			continue
		}
		argMap, _ := args.(map[string]any)

		id, err := fn(h, argMap)
		if err := h.session.Err(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}

		switch {
		case err != nil:
			ev.Error = string(model.ErrorCodeOf(err))
			if step.Error == "" {
				result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", i, step.Op, err))
			} else if ev.Error != step.Error {
				result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got %s: %v", i, step.Op, step.Error, ev.Error, err))
			}
		case step.Error != "":
			result.AddError(fmt.Sprintf("steps[%d] %s: expected error %s, got success", i, step.Op, step.Error))
		default:
			ev.ID = id
			if step.As != "" {
				if id == "" {
					result.AddError(fmt.Sprintf("steps[%d] %s: as %q but the op produces no id", i, step.Op, step.As))
				} else {
					h.aliases[step.As] = id
				}
			}
		}

		h.logger.Debug("step executed", "step", i, "op", step.Op, "id", ev.ID, "error", ev.Error)
		result.AddTrace(ev)
	}
	return nil
}

// resolveRef maps "$alias" to its id. Plain ids pass through.
func (h *Harness) resolveRef(ref string) string {
	s, err := substitute(ref, h.aliases)
	if err != nil {
		return ref
	}
	return s.(string)
}
