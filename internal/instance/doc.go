// Package instance implements the instance resolver: placing components on
// the canvas, linking existing subtrees to components, and computing the
// effective element for every component-derived element.
//
// Resolution for canvas element e of instance i of component c:
//
//  1. start from the master template element the link points at
//  2. if e is the instance root and i selects a variant, merge its deltas
//  3. merge the values of props bound to e's template element
//  4. merge i's override for e
//
// Every step is a flat model.Merge: later layers win per key, nil unsets,
// composite values are replaced wholesale. The result is never written back
// to the canvas; the canvas keeps the placed copy plus the override delta.
//
// If the component (or the linked template element) no longer exists, the
// element's own stored values take the place of step 1 and resolution goes
// on without a master.
package instance
