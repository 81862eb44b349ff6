package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/canvas/internal/model"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Index    int
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "assertions[%d] %s failed\n", e.Index, e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the harness session.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(h *Harness, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertResolvedStyle:
			err = h.assertResolved(i, a, model.ScopeStyle)
		case AssertResolvedProp:
			err = h.assertResolved(i, a, model.ScopeProps)
		case AssertElementCount:
			err = assertCount(i, a, h.session.Store().Len())
		case AssertRootCount:
			err = assertCount(i, a, len(h.session.Store().RootIDs()))
		case AssertTreeValid:
			if verr := h.session.Store().Validate(); verr != nil {
				err = &AssertionError{Index: i, Type: a.Type, Expected: "a valid tree", Actual: verr.Error()}
			}
		case AssertCanUndo:
			err = assertBool(i, a, h.session.CanUndo())
		case AssertCanRedo:
			err = assertBool(i, a, h.session.CanRedo())
		case AssertHasInstance:
			err = h.assertHasInstance(i, a)
		case AssertOverrideCount:
			err = h.assertOverrideCount(i, a)
		default:
			err = fmt.Errorf("assertions[%d]: unknown assertion type %q", i, a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// assertResolved compares one key of the resolved element against the
// expected value. A nil expected value asserts the key is absent.
func (h *Harness) assertResolved(i int, a Assertion, sc model.BindingScope) error {
	id := h.resolveRef(a.Element)
	el, err := h.session.Resolve(id)
	if err != nil {
		return &AssertionError{Index: i, Type: a.Type, Expected: fmt.Sprintf("element %s", id), Actual: err.Error()}
	}

	rec := el.Style
	if sc == model.ScopeProps {
		if rec, err = model.PropsToRecord(el.Props); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	want, err := model.FromAny(a.Value)
	if err != nil {
		return fmt.Errorf("assertions[%d]: value: %w", i, err)
	}
	got, ok := rec.Get(a.Key)
	switch {
	case want == nil && !ok:
		return nil
	case want == nil:
		return &AssertionError{Index: i, Type: a.Type, Expected: fmt.Sprintf("%s.%s absent", id, a.Key), Actual: describe(got)}
	case !ok:
		return &AssertionError{Index: i, Type: a.Type, Expected: fmt.Sprintf("%s.%s = %s", id, a.Key, describe(want)), Actual: "absent"}
	case !model.Equal(want, got):
		return &AssertionError{Index: i, Type: a.Type, Expected: fmt.Sprintf("%s.%s = %s", id, a.Key, describe(want)), Actual: describe(got)}
	}
	return nil
}

func (h *Harness) assertHasInstance(i int, a Assertion) error {
	id := h.resolveRef(a.Element)
	want := a.Expect == nil || *a.Expect
	_, got := h.session.Store().Instance(id)
	if got != want {
		return &AssertionError{Index: i, Type: a.Type, Expected: fmt.Sprintf("instance at %s: %t", id, want), Actual: fmt.Sprintf("%t", got)}
	}
	return nil
}

func (h *Harness) assertOverrideCount(i int, a Assertion) error {
	id := h.resolveRef(a.Element)
	inst, ok := h.session.Store().Instance(id)
	if !ok {
		return &AssertionError{Index: i, Type: a.Type, Expected: fmt.Sprintf("instance at %s", id), Actual: "no instance"}
	}
	n := 0
	for _, o := range inst.Overrides {
		n += len(o.Style) + len(o.Props)
	}
	return assertCount(i, a, n)
}

func assertCount(i int, a Assertion, got int) error {
	if *a.Count != got {
		return &AssertionError{Index: i, Type: a.Type, Expected: fmt.Sprintf("%d", *a.Count), Actual: fmt.Sprintf("%d", got)}
	}
	return nil
}

func assertBool(i int, a Assertion, got bool) error {
	if *a.Expect != got {
		return &AssertionError{Index: i, Type: a.Type, Expected: fmt.Sprintf("%t", *a.Expect), Actual: fmt.Sprintf("%t", got)}
	}
	return nil
}

func describe(v model.Value) string {
	data, err := model.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
