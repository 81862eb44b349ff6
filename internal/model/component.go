package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
)

// Component is a named, freestanding template: one element tree keyed by
// template ids, plus variants and a typed prop interface.
type Component struct {
	ID            string              `json:"id"`
	Name          string              `json:"name"`
	Category      string              `json:"category,omitempty"`
	Tags          []string            `json:"tags,omitempty"`
	Description   string              `json:"description,omitempty"`
	Elements      map[string]*Element `json:"elements"`
	RootElementID string              `json:"rootElementId"`
	Variants      []Variant           `json:"variants"`
	Props         []PropDef           `json:"props"`
	Revision      int64               `json:"revision"` // bumped on every master edit
}

// Variant is a named delta applied to the component's root element only.
type Variant struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	StyleOverrides Record `json:"styleOverrides,omitempty"`
	PropsOverrides Record `json:"propsOverrides,omitempty"`
}

// PropType is the declared type of a component prop.
type PropType string

const (
	PropString  PropType = "string"
	PropNumber  PropType = "number"
	PropBoolean PropType = "boolean"
	PropColor   PropType = "color"
	PropSelect  PropType = "select"
)

// BindingScope selects which record of the bound element a prop writes to.
type BindingScope string

const (
	ScopeStyle BindingScope = "style"
	ScopeProps BindingScope = "props"
)

// PropBinding routes a prop value onto one key of one template element.
type PropBinding struct {
	ElementID string       `json:"elementId"` // template id
	Scope     BindingScope `json:"scope"`
	Key       string       `json:"key"`
}

// PropDef declares one typed prop of a component.
type PropDef struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Type         PropType     `json:"type"`
	DefaultValue Value        `json:"defaultValue"`
	Options      []string     `json:"options,omitempty"`
	Binding      *PropBinding `json:"binding,omitempty"`
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|(rgb|rgba|hsl|hsla)\(.*\)|[a-zA-Z]+|var\(--.*\))$`)

// Accepts reports whether v is a legal value for the prop.
func (p PropDef) Accepts(v Value) bool {
	switch p.Type {
	case PropString:
		_, ok := v.(String)
		return ok
	case PropNumber:
		_, ok := v.(Number)
		return ok
	case PropBoolean:
		_, ok := v.(Bool)
		return ok
	case PropColor:
		s, ok := v.(String)
		return ok && colorPattern.MatchString(string(s))
	case PropSelect:
		s, ok := v.(String)
		return ok && slices.Contains(p.Options, string(s))
	default:
		return false
	}
}

// Clone returns a deep copy of the component.
func (c *Component) Clone() *Component {
	if c == nil {
		return nil
	}
	out := *c
	out.Tags = slices.Clone(c.Tags)
	out.Elements = CloneElements(c.Elements)
	out.Variants = make([]Variant, len(c.Variants))
	for i, v := range c.Variants {
		out.Variants[i] = v.Clone()
	}
	out.Props = make([]PropDef, len(c.Props))
	for i, p := range c.Props {
		out.Props[i] = p.Clone()
	}
	return &out
}

// Root returns the template root element.
func (c *Component) Root() (*Element, bool) {
	el, ok := c.Elements[c.RootElementID]
	return el, ok
}

// Variant looks up a variant by id.
func (c *Component) Variant(id string) (Variant, bool) {
	for _, v := range c.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}

// Prop looks up a prop definition by id.
func (c *Component) Prop(id string) (PropDef, bool) {
	for _, p := range c.Props {
		if p.ID == id {
			return p, true
		}
	}
	return PropDef{}, false
}

// Clone returns a deep copy of the variant.
func (v Variant) Clone() Variant {
	v.StyleOverrides = v.StyleOverrides.Clone()
	v.PropsOverrides = v.PropsOverrides.Clone()
	return v
}

// Clone returns a deep copy of the prop definition.
func (p PropDef) Clone() PropDef {
	p.DefaultValue = CloneValue(p.DefaultValue)
	p.Options = slices.Clone(p.Options)
	if p.Binding != nil {
		b := *p.Binding
		p.Binding = &b
	}
	return p
}

// UnmarshalJSON implements json.Unmarshaler for PropDef so that the
// default value decodes into the Value union.
func (p *PropDef) UnmarshalJSON(data []byte) error {
	var w struct {
		ID           string          `json:"id"`
		Name         string          `json:"name"`
		Type         PropType        `json:"type"`
		DefaultValue json.RawMessage `json:"defaultValue"`
		Options      []string        `json:"options,omitempty"`
		Binding      *PropBinding    `json:"binding,omitempty"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	var def Value
	if len(w.DefaultValue) > 0 {
		v, err := DecodeValue(w.DefaultValue)
		if err != nil {
			return fmt.Errorf("prop %q default: %w", w.ID, err)
		}
		def = v
	}
	*p = PropDef{
		ID:           w.ID,
		Name:         w.Name,
		Type:         w.Type,
		DefaultValue: def,
		Options:      w.Options,
		Binding:      w.Binding,
	}
	return nil
}
