package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// ElementType is the closed set of canvas element kinds.
// The type decides which Props variant an element carries.
type ElementType string

const (
	TypeContainer ElementType = "container"
	TypeText      ElementType = "text"
	TypeButton    ElementType = "button"
	TypeImage     ElementType = "image"
	TypeInput     ElementType = "input"
	TypeMenu      ElementType = "menu"
	TypeSlider    ElementType = "slider"
)

// ElementTypes lists every valid element type in declaration order.
var ElementTypes = []ElementType{
	TypeContainer, TypeText, TypeButton, TypeImage, TypeInput, TypeMenu, TypeSlider,
}

// Valid reports whether t is one of the closed set of element types.
func (t ElementType) Valid() bool {
	return slices.Contains(ElementTypes, t)
}

// Props is the type-specific payload of an element. It is a sealed union:
// one struct per ElementType, selected by Kind.
type Props interface {
	Kind() ElementType
}

// ContainerProps configures a layout container.
type ContainerProps struct {
	Layout string `json:"layout"` // "block" | "flex" | "grid"
}

// TextProps holds text content.
type TextProps struct {
	Content string `json:"content"`
	Tag     string `json:"tag"` // "p", "h1".."h6", "span"
}

// ButtonProps holds a button label and optional link target.
type ButtonProps struct {
	Label  string `json:"label"`
	Href   string `json:"href,omitempty"`
	Target string `json:"target,omitempty"`
}

// ImageProps holds an image source.
type ImageProps struct {
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
	Fit string `json:"fit"` // "cover" | "contain" | "fill"
}

// InputProps configures a form input.
type InputProps struct {
	Placeholder string `json:"placeholder,omitempty"`
	InputType   string `json:"inputType"`
	Name        string `json:"name,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// MenuProps binds the element to a backend menu.
type MenuProps struct {
	MenuID      string `json:"menuId,omitempty"`
	Orientation string `json:"orientation"` // "horizontal" | "vertical"
}

// Slide is one entry of a slider.
type Slide struct {
	ImageSrc string `json:"imageSrc"`
	Caption  string `json:"caption,omitempty"`
	Link     string `json:"link,omitempty"`
}

// SliderProps holds an ordered slide list.
type SliderProps struct {
	Slides     []Slide `json:"slides"`
	Autoplay   bool    `json:"autoplay,omitempty"`
	IntervalMs int     `json:"intervalMs,omitempty"`
}

func (ContainerProps) Kind() ElementType { return TypeContainer }
func (TextProps) Kind() ElementType      { return TypeText }
func (ButtonProps) Kind() ElementType    { return TypeButton }
func (ImageProps) Kind() ElementType     { return TypeImage }
func (InputProps) Kind() ElementType     { return TypeInput }
func (MenuProps) Kind() ElementType      { return TypeMenu }
func (SliderProps) Kind() ElementType    { return TypeSlider }

// DefaultProps returns the props an element of type t starts with.
// Returns nil for an unknown type.
func DefaultProps(t ElementType) Props {
	switch t {
	case TypeContainer:
		return ContainerProps{Layout: "block"}
	case TypeText:
		return TextProps{Content: "Text", Tag: "p"}
	case TypeButton:
		return ButtonProps{Label: "Button"}
	case TypeImage:
		return ImageProps{Fit: "cover"}
	case TypeInput:
		return InputProps{InputType: "text"}
	case TypeMenu:
		return MenuProps{Orientation: "horizontal"}
	case TypeSlider:
		return SliderProps{Slides: []Slide{}, IntervalMs: 5000}
	default:
		return nil
	}
}

// newProps returns a pointer to a zero props struct for decoding.
func newProps(t ElementType) (any, error) {
	switch t {
	case TypeContainer:
		return &ContainerProps{}, nil
	case TypeText:
		return &TextProps{}, nil
	case TypeButton:
		return &ButtonProps{}, nil
	case TypeImage:
		return &ImageProps{}, nil
	case TypeInput:
		return &InputProps{}, nil
	case TypeMenu:
		return &MenuProps{}, nil
	case TypeSlider:
		return &SliderProps{}, nil
	default:
		return nil, fmt.Errorf("unknown element type %q", t)
	}
}

// CloneProps returns a deep copy of p.
func CloneProps(p Props) Props {
	switch v := p.(type) {
	case nil:
		return nil
	case SliderProps:
		v.Slides = slices.Clone(v.Slides)
		if v.Slides == nil {
			v.Slides = []Slide{}
		}
		return v
	case ContainerProps, TextProps, ButtonProps, ImageProps, InputProps, MenuProps:
		return v
	default:
		panic(fmt.Sprintf("model: unhandled props type %T", p))
	}
}

// PropsKeys returns the record keys valid for props of type t.
func PropsKeys(t ElementType) []string {
	ptr, err := newProps(t)
	if err != nil {
		return nil
	}
	rt := reflect.TypeOf(ptr).Elem()
	keys := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		name, _, _ := strings.Cut(rt.Field(i).Tag.Get("json"), ",")
		keys = append(keys, name)
	}
	return keys
}

// IsPropsKey reports whether key is a field of props of type t.
func IsPropsKey(t ElementType, key string) bool {
	return slices.Contains(PropsKeys(t), key)
}

// PropsToRecord flattens typed props into a Record keyed by json field name.
func PropsToRecord(p Props) (Record, error) {
	if p == nil {
		return Record{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal props: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("flatten props: %w", err)
	}
	return rec.Compact(), nil
}

// DecodeProps builds typed props of type t from a flat record, starting
// from the zero struct. When strict is true, keys that are not fields of
// the props type are rejected; resolution decodes leniently so stale
// override keys never break rendering.
func DecodeProps(t ElementType, rec Record, strict bool) (Props, error) {
	ptr, err := newProps(t)
	if err != nil {
		return nil, err
	}

	input := make(map[string]any, len(rec))
	for k, v := range rec {
		if v == nil {
			continue
		}
		input[k] = ToAny(v)
	}

	dconfig := &mapstructure.DecoderConfig{
		Result:      ptr,
		TagName:     "json",
		ErrorUnused: strict,
	}
	decoder, err := mapstructure.NewDecoder(dconfig)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("decode %s props: %w", t, err)
	}

	props := reflect.ValueOf(ptr).Elem().Interface().(Props)
	if s, ok := props.(SliderProps); ok && s.Slides == nil {
		s.Slides = []Slide{}
		props = s
	}
	return props, nil
}

// PatchProps applies a flat props patch to p with Merge semantics and
// decodes the result strictly. The input is never modified.
func PatchProps(p Props, patch Record) (Props, error) {
	if p == nil {
		return nil, fmt.Errorf("patch props: nil props")
	}
	base, err := PropsToRecord(p)
	if err != nil {
		return nil, err
	}
	return DecodeProps(p.Kind(), Merge(base, patch), true)
}

// DecodePropsLenient decodes rec into props of type t, dropping unknown
// keys and keys whose values do not fit their field. It never fails for a
// valid type; stale or mistyped keys simply fall away.
func DecodePropsLenient(t ElementType, rec Record) Props {
	if p, err := DecodeProps(t, rec, false); err == nil {
		return p
	}
	kept := make(Record, len(rec))
	for _, k := range rec.SortedKeys() {
		if _, err := DecodeProps(t, Record{k: rec[k]}, true); err == nil {
			kept[k] = rec[k]
		}
	}
	p, err := DecodeProps(t, kept, false)
	if err != nil {
		return DefaultProps(t)
	}
	return p
}
