package harness

import "github.com/roach88/canvas/internal/model"

// TraceEvent records one executed step.
type TraceEvent struct {
	Step  int    `json:"step"`
	Op    string `json:"op"`
	As    string `json:"as,omitempty"`
	ID    string `json:"id,omitempty"`    // id produced by the step, if any
	Error string `json:"error,omitempty"` // error code of a rejected step
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step behaved as declared and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains step and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// Aliases maps every "as" name to the id it was bound to.
	Aliases map[string]string `json:"aliases,omitempty"`

	// Document is the resolved document after the last step.
	Document model.Document `json:"document"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Trace:   []TraceEvent{},
		Errors:  []string{},
		Aliases: make(map[string]string),
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
