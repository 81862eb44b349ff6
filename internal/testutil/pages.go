package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/roach88/canvas/internal/model"
)

// ErrSaveFailed is returned by MemoryPages.SavePage while FailSaves is set.
var ErrSaveFailed = errors.New("testutil: save failed")

// MemoryPages is an in-memory page store for tests.
//
// Documents are stored as canonical JSON so a loaded page never aliases a
// saved one.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type MemoryPages struct {
	mu        sync.Mutex
	pages     map[string][]byte
	saves     int
	failSaves bool
}

// NewMemoryPages creates an empty page store.
func NewMemoryPages() *MemoryPages {
	return &MemoryPages{pages: make(map[string][]byte)}
}

// FailSaves makes every later SavePage fail (or succeed again).
func (m *MemoryPages) FailSaves(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSaves = fail
}

// Saves returns the number of successful saves.
func (m *MemoryPages) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// SavePage stores doc under id.
func (m *MemoryPages) SavePage(_ context.Context, id string, doc model.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaves {
		return ErrSaveFailed
	}
	data, err := model.MarshalCanonical(doc)
	if err != nil {
		return err
	}
	m.pages[id] = data
	m.saves++
	return nil
}

// LoadPage returns the document stored under id.
func (m *MemoryPages) LoadPage(_ context.Context, id string) (model.Document, error) {
	m.mu.Lock()
	data, ok := m.pages[id]
	m.mu.Unlock()
	if !ok {
		return model.Document{}, model.NewNotFound("loadPage", "page", id)
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Document{}, fmt.Errorf("page %q: %w", id, err)
	}
	return doc, nil
}

// Put stores raw JSON under id, bypassing encoding. Used to plant
// malformed pages.
func (m *MemoryPages) Put(id string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[id] = data
}
