package session

import (
	"github.com/roach88/canvas/internal/canvas"
	"github.com/roach88/canvas/internal/model"
)

// AddElement inserts a new element and returns its id.
func (s *Session) AddElement(ne canvas.NewElement) (string, error) {
	var id string
	err := s.mutate("addElement", func() error {
		var err error
		id, err = s.store.AddElement(ne)
		return err
	})
	return id, err
}

// UpdateElement applies a partial update. On a component-derived element
// the style and props parts become instance overrides; the rest is
// written to the element.
func (s *Session) UpdateElement(id string, patch canvas.ElementPatch) error {
	if !s.resolver.IsDerived(id) {
		return s.mutate("updateElement", func() error {
			return s.store.UpdateElement(id, patch)
		})
	}
	style, props := patch.Style, patch.Props
	patch.Style, patch.Props = nil, nil
	return s.mutate("updateElement", func() error {
		if patch.Name != nil || patch.Locked != nil || patch.Hidden != nil {
			if err := s.store.UpdateElement(id, patch); err != nil {
				return err
			}
		}
		if len(style) == 0 && len(props) == 0 {
			return nil
		}
		return s.resolver.SetOverride(id, style, props)
	})
}

// UpdateElementStyle merges a style patch into the element, or into its
// instance override if the element is derived from a component.
func (s *Session) UpdateElementStyle(id string, patch model.Record) error {
	return s.mutate("updateElementStyle", func() error {
		if s.resolver.IsDerived(id) {
			return s.resolver.SetOverride(id, patch, nil)
		}
		return s.store.UpdateElementStyle(id, patch)
	})
}

// UpdateElementProps merges a props patch into the element, or into its
// instance override if the element is derived from a component.
func (s *Session) UpdateElementProps(id string, patch model.Record) error {
	return s.mutate("updateElementProps", func() error {
		if s.resolver.IsDerived(id) {
			return s.resolver.SetOverride(id, nil, patch)
		}
		return s.store.UpdateElementProps(id, patch)
	})
}

// SetZIndex sets the element's zIndex style.
func (s *Session) SetZIndex(id string, z int) error {
	return s.UpdateElementStyle(id, model.Record{"zIndex": model.Number(z)})
}

// DeleteElement removes an element and its subtree.
func (s *Session) DeleteElement(id string) error {
	return s.mutate("deleteElement", func() error {
		return s.store.DeleteElement(id)
	})
}

// DuplicateElement copies the subtree rooted at id next to it.
func (s *Session) DuplicateElement(id string) (string, error) {
	var dup string
	err := s.mutate("duplicateElement", func() error {
		var err error
		dup, err = s.store.DuplicateElement(id)
		return err
	})
	return dup, err
}

// PasteElement copies the subtree rooted at id next to it, shifted by
// (dx, dy). A derived copy is shifted through its instance override, from
// the position the source resolves to.
func (s *Session) PasteElement(id string, dx, dy float64) (string, error) {
	var dup string
	err := s.mutate("pasteElement", func() error {
		var err error
		if !s.resolver.IsDerived(id) {
			dup, err = s.store.PasteElement(id, dx, dy)
			return err
		}
		src, err := s.resolver.Resolve(id)
		if err != nil {
			return err
		}
		if dup, err = s.store.DuplicateElement(id); err != nil {
			return err
		}
		pos := shiftedPosition(src.Style, dx, dy)
		if len(pos) == 0 {
			return nil
		}
		return s.resolver.SetOverride(dup, pos, nil)
	})
	return dup, err
}

// shiftedPosition returns the numeric left/top of style moved by (dx, dy).
// Keys that are absent or not numbers are left out.
func shiftedPosition(style model.Record, dx, dy float64) model.Record {
	out := model.Record{}
	for key, d := range map[string]float64{"left": dx, "top": dy} {
		if n, ok := style[key].(model.Number); ok {
			out[key] = n + model.Number(d)
		}
	}
	return out
}

// MoveElement reparents or reorders an element.
func (s *Session) MoveElement(id, parentID string, index int) error {
	return s.mutate("moveElement", func() error {
		return s.store.MoveElement(id, parentID, index)
	})
}

// Select replaces the selection. Unknown ids are dropped. Not recorded.
func (s *Session) Select(ids ...string) {
	s.store.Select(ids...)
}

// AddToSelection adds one element to the selection. Not recorded.
func (s *Session) AddToSelection(id string) {
	s.store.AddToSelection(id)
}

// Deselect removes one element from the selection. Not recorded.
func (s *Session) Deselect(id string) {
	s.store.Deselect(id)
}

// ClearSelection empties the selection. Not recorded.
func (s *Session) ClearSelection() {
	s.store.ClearSelection()
}

// SetHovered sets the hovered element; "" clears it. Not recorded.
func (s *Session) SetHovered(id string) {
	s.store.SetHovered(id)
}

// Selection returns the selected ids in selection order.
func (s *Session) Selection() []string {
	return s.store.Selection()
}
