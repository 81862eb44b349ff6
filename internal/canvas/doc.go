// Package canvas implements the element store: the live element tree, its
// ordered root list, the selection/hover state and the table of component
// instances placed on the canvas.
//
// All mutations run inside a transaction (Store.Update). A transaction works
// on shallow copies of the id maps and clones an element record the first
// time it writes to it, so committed records are never modified in place.
// That makes Snapshot cheap: it copies maps and id slices, never elements.
//
// A transaction that returns an error is discarded and leaves the store
// untouched. Transactions that change the tree shape or the instance table
// are checked against tree integrity and instance ownership before commit.
//
// The store is single-writer and not safe for concurrent use.
package canvas
