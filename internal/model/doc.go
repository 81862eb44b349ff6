// Package model provides the document types shared by every canvas package.
//
// This package contains types and pure functions only. All other internal
// packages import model; model imports nothing internal. This keeps the
// document model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Element, Component and Instance records are treated as immutable once
//     they are stored; mutators clone, modify and replace (copy-on-write).
//   - Style and props values are the sealed Value union; absence of a key
//     means "inherit default".
//   - Merging is flat and shallow (Merge): later layers win per key,
//     composite values are replaced wholesale.
//   - Persisted JSON uses camelCase keys (elements, rootElementIds, parentId).
package model
