package model

import (
	"encoding/json"
	"fmt"
	"slices"
)

// Element is a node in the canvas tree (or in a component template).
type Element struct {
	ID       string      `json:"id"`
	Type     ElementType `json:"type"`
	ParentID string      `json:"parentId"` // "" for roots, serialized as null
	Children []string    `json:"children"` // paint/tab order within the parent
	Style    Record      `json:"style"`
	Props    Props       `json:"props"`
	Name     string      `json:"name,omitempty"`
	Locked   bool        `json:"locked,omitempty"` // UI contract, not enforced by the store
	Hidden   bool        `json:"hidden,omitempty"` // render hint
}

// NewElement returns an element of type t with type defaults applied.
func NewElement(id string, t ElementType) *Element {
	return &Element{
		ID:       id,
		Type:     t,
		Children: []string{},
		Style:    DefaultStyle(t),
		Props:    DefaultProps(t),
	}
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := *e
	out.Children = slices.Clone(e.Children)
	if out.Children == nil {
		out.Children = []string{}
	}
	out.Style = e.Style.Clone()
	if out.Style == nil {
		out.Style = Record{}
	}
	out.Props = CloneProps(e.Props)
	return &out
}

// IsRoot reports whether the element has no parent.
func (e *Element) IsRoot() bool {
	return e.ParentID == ""
}

// elementWire is the JSON shape of an Element.
type elementWire struct {
	ID       string          `json:"id"`
	Type     ElementType     `json:"type"`
	ParentID *string         `json:"parentId"`
	Children []string        `json:"children"`
	Style    Record          `json:"style"`
	Props    json.RawMessage `json:"props"`
	Name     string          `json:"name,omitempty"`
	Locked   bool            `json:"locked,omitempty"`
	Hidden   bool            `json:"hidden,omitempty"`
}

// MarshalJSON implements json.Marshaler. Roots serialize parentId as null.
func (e Element) MarshalJSON() ([]byte, error) {
	w := elementWire{
		ID:       e.ID,
		Type:     e.Type,
		Children: e.Children,
		Style:    e.Style,
		Name:     e.Name,
		Locked:   e.Locked,
		Hidden:   e.Hidden,
	}
	if w.Children == nil {
		w.Children = []string{}
	}
	if w.Style == nil {
		w.Style = Record{}
	}
	if e.ParentID != "" {
		parent := e.ParentID
		w.ParentID = &parent
	}
	props := e.Props
	if props == nil {
		props = DefaultProps(e.Type)
	}
	data, err := json.Marshal(props)
	if err != nil {
		return nil, fmt.Errorf("element %s props: %w", e.ID, err)
	}
	w.Props = data
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. Props are decoded strictly by
// element type; an unknown type or an unknown props key is an error.
func (e *Element) UnmarshalJSON(data []byte) error {
	var w elementWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if !w.Type.Valid() {
		return fmt.Errorf("element %q: unknown type %q", w.ID, w.Type)
	}

	var props Props
	if len(w.Props) == 0 || string(w.Props) == "null" {
		props = DefaultProps(w.Type)
	} else {
		var rec Record
		if err := json.Unmarshal(w.Props, &rec); err != nil {
			return fmt.Errorf("element %q props: %w", w.ID, err)
		}
		p, err := DecodeProps(w.Type, rec, true)
		if err != nil {
			return fmt.Errorf("element %q: %w", w.ID, err)
		}
		props = p
	}

	*e = Element{
		ID:       w.ID,
		Type:     w.Type,
		Children: w.Children,
		Style:    w.Style.Compact(),
		Props:    props,
		Name:     w.Name,
		Locked:   w.Locked,
		Hidden:   w.Hidden,
	}
	if e.Children == nil {
		e.Children = []string{}
	}
	if w.ParentID != nil {
		e.ParentID = *w.ParentID
	}
	return nil
}

// CloneElements deep-copies an element map.
func CloneElements(in map[string]*Element) map[string]*Element {
	out := make(map[string]*Element, len(in))
	for id, el := range in {
		out[id] = el.Clone()
	}
	return out
}

// Descendants returns id and every element below it in depth-first
// pre-order. Missing ids are skipped. A visited set guards against cycles in
// unvalidated input.
func Descendants(elements map[string]*Element, id string) []string {
	var out []string
	seen := make(map[string]bool)
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		el, ok := elements[cur]
		if !ok {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		for i := len(el.Children) - 1; i >= 0; i-- {
			stack = append(stack, el.Children[i])
		}
	}
	return out
}
