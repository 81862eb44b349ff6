package model

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Instance binds one placed canvas element (the instance root) to a
// component.
type Instance struct {
	ElementID   string              `json:"elementId"`
	ComponentID string              `json:"componentId"`
	VariantID   string              `json:"variantId,omitempty"` // "" selects the base
	Overrides   map[string]Override `json:"overrides"`           // canvas id -> delta
	PropValues  map[string]Value    `json:"propValues"`          // prop id -> value
	Links       map[string]string   `json:"links"`               // canvas id -> template id
}

// Override is a per-instance, per-element partial delta. A nil value
// unsets the key in the resolved element.
type Override struct {
	Style Record `json:"style,omitempty"`
	Props Record `json:"props,omitempty"`
}

// Empty reports whether the override carries no keys.
func (o Override) Empty() bool {
	return len(o.Style) == 0 && len(o.Props) == 0
}

// Clone returns a deep copy of the override.
func (o Override) Clone() Override {
	return Override{Style: o.Style.Clone(), Props: o.Props.Clone()}
}

// NewInstance returns an instance with empty overrides and prop values.
func NewInstance(elementID, componentID string) *Instance {
	return &Instance{
		ElementID:   elementID,
		ComponentID: componentID,
		Overrides:   make(map[string]Override),
		PropValues:  make(map[string]Value),
		Links:       make(map[string]string),
	}
}

// Clone returns a deep copy of the instance.
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	out := *i
	out.Overrides = make(map[string]Override, len(i.Overrides))
	for k, o := range i.Overrides {
		out.Overrides[k] = o.Clone()
	}
	out.PropValues = make(map[string]Value, len(i.PropValues))
	for k, v := range i.PropValues {
		out.PropValues[k] = CloneValue(v)
	}
	out.Links = maps.Clone(i.Links)
	if out.Links == nil {
		out.Links = make(map[string]string)
	}
	return &out
}

// Derived reports whether canvas element id was derived from the template.
func (i *Instance) Derived(id string) bool {
	_, ok := i.Links[id]
	return ok
}

// UnmarshalJSON implements json.Unmarshaler so prop values decode into the
// Value union and missing maps come back empty.
func (i *Instance) UnmarshalJSON(data []byte) error {
	var w struct {
		ElementID   string                     `json:"elementId"`
		ComponentID string                     `json:"componentId"`
		VariantID   string                     `json:"variantId,omitempty"`
		Overrides   map[string]Override        `json:"overrides"`
		PropValues  map[string]json.RawMessage `json:"propValues"`
		Links       map[string]string          `json:"links"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	out := NewInstance(w.ElementID, w.ComponentID)
	out.VariantID = w.VariantID
	for k, o := range w.Overrides {
		out.Overrides[k] = o
	}
	for k, raw := range w.PropValues {
		v, err := DecodeValue(raw)
		if err != nil {
			return fmt.Errorf("instance %q prop value %q: %w", w.ElementID, k, err)
		}
		if v != nil {
			out.PropValues[k] = v
		}
	}
	maps.Copy(out.Links, w.Links)
	*i = *out
	return nil
}

// Document is the persisted page editor data:
//
//	{ elements: { [id]: Element }, rootElementIds: [...], instances?: {...} }
//
// The instances map is optional so that documents produced by other tools
// load unchanged.
type Document struct {
	Elements       map[string]*Element  `json:"elements"`
	RootElementIDs []string             `json:"rootElementIds"`
	Instances      map[string]*Instance `json:"instances,omitempty"`
}

// NewDocument returns an empty document.
func NewDocument() Document {
	return Document{
		Elements:       make(map[string]*Element),
		RootElementIDs: []string{},
	}
}
