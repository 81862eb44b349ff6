package canvas

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/canvas/internal/model"
)

// State is an immutable copy of the canvas state: the unit of undo/redo.
//
// Element and instance records are shared with the live store and with
// other snapshots; they must not be modified.
type State struct {
	Elements  map[string]*model.Element
	Roots     []string
	Selected  []string
	Hovered   string
	Instances map[string]*model.Instance
}

// Store owns the canvas element tree.
type Store struct {
	elements  map[string]*model.Element
	roots     []string
	selected  []string
	hovered   string
	instances map[string]*model.Instance

	ids    model.IDGenerator
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates an empty store that allocates ids from ids.
func New(ids model.IDGenerator, opts ...Option) *Store {
	s := &Store{
		elements:  make(map[string]*model.Element),
		roots:     []string{},
		instances: make(map[string]*model.Instance),
		ids:       ids,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewID allocates an id that is not used by any element in the store.
func (s *Store) NewID() string {
	for {
		id := s.ids.NewID()
		if _, taken := s.elements[id]; !taken {
			return id
		}
	}
}

// Snapshot returns the current state. Only maps and id slices are copied.
func (s *Store) Snapshot() State {
	return State{
		Elements:  maps.Clone(s.elements),
		Roots:     slices.Clone(s.roots),
		Selected:  slices.Clone(s.selected),
		Hovered:   s.hovered,
		Instances: maps.Clone(s.instances),
	}
}

// Same reports whether st and other hold the same records. Records are
// copy-on-write, so a record that was not written keeps its pointer and
// the comparison never looks inside one.
func (st State) Same(other State) bool {
	if st.Hovered != other.Hovered ||
		!slices.Equal(st.Roots, other.Roots) ||
		!slices.Equal(st.Selected, other.Selected) {
		return false
	}
	return maps.Equal(st.Elements, other.Elements) && maps.Equal(st.Instances, other.Instances)
}

// Restore replaces the live state with st after checking it.
// A state that fails tree integrity or instance ownership is rejected with
// a CORRUPT error and the live state is left unchanged.
func (s *Store) Restore(st State) error {
	if err := checkState(st); err != nil {
		return err
	}
	s.set(st)
	return nil
}

func (s *Store) set(st State) {
	s.elements = maps.Clone(st.Elements)
	if s.elements == nil {
		s.elements = make(map[string]*model.Element)
	}
	s.roots = slices.Clone(st.Roots)
	if s.roots == nil {
		s.roots = []string{}
	}
	s.selected = slices.Clone(st.Selected)
	s.hovered = st.Hovered
	s.instances = maps.Clone(st.Instances)
	if s.instances == nil {
		s.instances = make(map[string]*model.Instance)
	}
}

func checkState(st State) error {
	doc := model.Document{Elements: st.Elements, RootElementIDs: st.Roots, Instances: st.Instances}
	if err := model.ValidateDocument(doc); err != nil {
		return err
	}
	for _, id := range st.Selected {
		if _, ok := st.Elements[id]; !ok {
			return model.NewCorrupt("restore", fmt.Sprintf("selected element %q is missing", id))
		}
	}
	if st.Hovered != "" {
		if _, ok := st.Elements[st.Hovered]; !ok {
			return model.NewCorrupt("restore", fmt.Sprintf("hovered element %q is missing", st.Hovered))
		}
	}
	return nil
}

// Load replaces the live state with a deep copy of doc and clears the
// selection. Documents that violate tree integrity or instance ownership
// are rejected, never repaired.
func (s *Store) Load(doc model.Document) error {
	if err := model.ValidateDocument(doc); err != nil {
		return err
	}
	st := State{
		Elements:  model.CloneElements(doc.Elements),
		Roots:     slices.Clone(doc.RootElementIDs),
		Instances: make(map[string]*model.Instance, len(doc.Instances)),
	}
	for id, inst := range doc.Instances {
		st.Instances[id] = inst.Clone()
	}
	s.set(st)
	s.logger.Debug("canvas loaded", "elements", len(st.Elements), "roots", len(st.Roots), "instances", len(st.Instances))
	return nil
}

// Document returns a deep copy of the persisted part of the state.
func (s *Store) Document() model.Document {
	doc := model.Document{
		Elements:       model.CloneElements(s.elements),
		RootElementIDs: slices.Clone(s.roots),
	}
	if len(s.instances) > 0 {
		doc.Instances = make(map[string]*model.Instance, len(s.instances))
		for id, inst := range s.instances {
			doc.Instances[id] = inst.Clone()
		}
	}
	return doc
}

// Validate checks the live state. It only fails if the store has a bug.
func (s *Store) Validate() error {
	return checkState(s.Snapshot())
}

// Element returns a copy of the element with the given id.
func (s *Store) Element(id string) (*model.Element, bool) {
	el, ok := s.elements[id]
	if !ok {
		return nil, false
	}
	return el.Clone(), true
}

// Has reports whether the element exists.
func (s *Store) Has(id string) bool {
	_, ok := s.elements[id]
	return ok
}

// Len returns the number of elements.
func (s *Store) Len() int {
	return len(s.elements)
}

// ElementIDs returns all element ids in lexical order.
func (s *Store) ElementIDs() []string {
	ids := slices.Collect(maps.Keys(s.elements))
	slices.Sort(ids)
	return ids
}

// RootIDs returns the ordered root list.
func (s *Store) RootIDs() []string {
	return slices.Clone(s.roots)
}

// Descendants returns id and everything below it in depth-first pre-order.
func (s *Store) Descendants(id string) []string {
	return model.Descendants(s.elements, id)
}

// Subtree returns a deep copy of the subtree rooted at id, keyed by id.
// The copy of the root keeps its parentId.
func (s *Store) Subtree(id string) (map[string]*model.Element, error) {
	if !s.Has(id) {
		return nil, model.NewNotFound("subtree", "element", id)
	}
	out := make(map[string]*model.Element)
	for _, d := range s.Descendants(id) {
		out[d] = s.elements[d].Clone()
	}
	return out, nil
}

// Update runs fn in a transaction. If fn returns an error, or the result
// fails the integrity checks, nothing is committed.
//
// The Tx must not be used after fn returns.
func (s *Store) Update(fn func(tx *Tx) error) error {
	tx := s.begin()
	if err := fn(tx); err != nil {
		return err
	}
	if tx.structural {
		if err := checkState(tx.state()); err != nil {
			s.logger.Error("transaction rejected by integrity check", "error", err)
			return err
		}
	}
	s.set(tx.state())
	return nil
}

// AddElement inserts a new element and returns its id.
func (s *Store) AddElement(ne NewElement) (string, error) {
	var id string
	err := s.Update(func(tx *Tx) error {
		var err error
		id, err = tx.AddElement(ne)
		return err
	})
	return id, err
}

// UpdateElement applies a metadata, style and props patch to one element.
func (s *Store) UpdateElement(id string, patch ElementPatch) error {
	return s.Update(func(tx *Tx) error { return tx.UpdateElement(id, patch) })
}

// UpdateElementStyle shallow-merges patch into the element's style.
func (s *Store) UpdateElementStyle(id string, patch model.Record) error {
	return s.Update(func(tx *Tx) error { return tx.UpdateElementStyle(id, patch) })
}

// UpdateElementProps shallow-merges patch into the element's props.
func (s *Store) UpdateElementProps(id string, patch model.Record) error {
	return s.Update(func(tx *Tx) error { return tx.UpdateElementProps(id, patch) })
}

// SetZIndex sets the element's zIndex style.
func (s *Store) SetZIndex(id string, z int) error {
	return s.UpdateElementStyle(id, model.Record{"zIndex": model.Number(z)})
}

// DeleteElement removes an element and its subtree.
func (s *Store) DeleteElement(id string) error {
	return s.Update(func(tx *Tx) error { return tx.DeleteElement(id) })
}

// DuplicateElement clones a subtree as the next sibling of its source.
func (s *Store) DuplicateElement(id string) (string, error) {
	var out string
	err := s.Update(func(tx *Tx) error {
		var err error
		out, err = tx.DuplicateElement(id)
		return err
	})
	return out, err
}

// PasteElement clones a subtree as the next sibling of its source and
// shifts the clone's left/top by dx/dy.
func (s *Store) PasteElement(id string, dx, dy float64) (string, error) {
	var out string
	err := s.Update(func(tx *Tx) error {
		var err error
		out, err = tx.PasteElement(id, dx, dy)
		return err
	})
	return out, err
}

// MoveElement reparents or reorders an element.
func (s *Store) MoveElement(id, parentID string, index int) error {
	return s.Update(func(tx *Tx) error { return tx.MoveElement(id, parentID, index) })
}
