// Package history implements a bounded two-stack snapshot history.
//
// Push records the state before a mutation and clears the redo stack.
// Undo and Redo swap the live state with the top of one stack, moving the
// state they replace onto the other. The history never inspects states.
package history

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
)

// ErrCorrupted is returned once applying a snapshot has failed. The stacks no
// longer agree with the live state, and every later Undo/Redo fails too.
var ErrCorrupted = errors.New("history corrupted")

// History is a linear undo/redo history over snapshots of type S.
//
// Thread-safety: not safe for concurrent use; the owner serializes access.
type History[S any] struct {
	past   *doublylinkedlist.List // oldest first
	future *doublylinkedlist.List // oldest first; the next redo is last
	limit  int
	err    error
}

// New creates a history that keeps at most limit undo steps.
// A limit <= 0 keeps every step.
func New[S any](limit int) *History[S] {
	return &History[S]{
		past:   doublylinkedlist.New(),
		future: doublylinkedlist.New(),
		limit:  limit,
	}
}

// Push records s, the state before a mutation, and clears the redo stack.
// When the history is full the oldest step is dropped.
func (h *History[S]) Push(s S) {
	h.past.Add(s)
	if h.limit > 0 {
		for h.past.Size() > h.limit {
			h.past.Remove(0)
		}
	}
	h.future.Clear()
}

// Undo moves one step back: current() is pushed onto the redo stack and the
// most recent snapshot is handed to apply. Returns false if there is nothing
// to undo.
func (h *History[S]) Undo(current func() S, apply func(S) error) (bool, error) {
	return h.step("undo", h.past, h.future, current, apply)
}

// Redo moves one step forward; the mirror image of Undo.
func (h *History[S]) Redo(current func() S, apply func(S) error) (bool, error) {
	return h.step("redo", h.future, h.past, current, apply)
}

func (h *History[S]) step(op string, from, to *doublylinkedlist.List, current func() S, apply func(S) error) (bool, error) {
	if h.err != nil {
		return false, h.err
	}
	if from.Empty() {
		return false, nil
	}

	last := from.Size() - 1
	v, _ := from.Get(last)
	snapshot := v.(S)

	to.Add(current())
	from.Remove(last)

	if err := apply(snapshot); err != nil {
		h.err = fmt.Errorf("%w: %s: %w", ErrCorrupted, op, err)
		return false, h.err
	}
	return true, nil
}

// CanUndo reports whether Undo would change state.
func (h *History[S]) CanUndo() bool {
	return h.err == nil && !h.past.Empty()
}

// CanRedo reports whether Redo would change state.
func (h *History[S]) CanRedo() bool {
	return h.err == nil && !h.future.Empty()
}

// Depth returns the number of undo and redo steps held.
func (h *History[S]) Depth() (undo, redo int) {
	return h.past.Size(), h.future.Size()
}

// Err returns the corruption error, if any.
func (h *History[S]) Err() error {
	return h.err
}

// Clear drops every step and forgets a previous corruption. Used when the
// live state is replaced wholesale (loading a page).
func (h *History[S]) Clear() {
	h.past.Clear()
	h.future.Clear()
	h.err = nil
}
