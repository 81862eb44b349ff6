// Package pagestore persists page documents and the component library in
// SQLite.
//
// Pages are saved as canonical JSON together with a content hash and a
// revision counter. Saving a document whose hash matches the stored one is
// a no-op; any other save bumps the revision by one. Loading decodes and
// validates the stored document, so a page that was corrupted at rest is
// rejected rather than repaired.
//
// The store implements session.PageStore.
package pagestore
