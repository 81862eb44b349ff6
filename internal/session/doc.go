// Package session is the editing API a panel or a script talks to.
//
// A Session owns one canvas store, one component registry and the resolver
// over both, plus the undo/redo history for the canvas. Every canvas
// mutation goes through Session, which snapshots the canvas before calling
// into the store and records the snapshot only if the mutation succeeded.
// Callers never touch the history themselves.
//
// What is recorded:
//   - element edits, selection-independent structure changes
//   - placing, linking, overriding and detaching instances
//   - variant selection and prop values
//
// What is not recorded:
//   - selection and hover changes
//   - component registry edits (library state), including push-to-master
//
// A Session is not safe for concurrent use. It has a single writer.
package session
