package canvas

import "slices"

// Selection returns the selected element ids in selection order.
func (s *Store) Selection() []string {
	return slices.Clone(s.selected)
}

// Hovered returns the hovered element id, or "".
func (s *Store) Hovered() string {
	return s.hovered
}

// Select replaces the selection. Unknown ids and duplicates are dropped.
func (s *Store) Select(ids ...string) {
	s.selected = nil
	for _, id := range ids {
		s.AddToSelection(id)
	}
}

// AddToSelection appends id to the selection if it exists.
func (s *Store) AddToSelection(id string) {
	if !s.Has(id) || slices.Contains(s.selected, id) {
		return
	}
	s.selected = append(s.selected, id)
}

// Deselect removes id from the selection.
func (s *Store) Deselect(id string) {
	s.selected = remove(slices.Clone(s.selected), id)
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() {
	s.selected = nil
}

// SetHovered sets the hovered element. Unknown ids clear it.
func (s *Store) SetHovered(id string) {
	if !s.Has(id) {
		id = ""
	}
	s.hovered = id
}
