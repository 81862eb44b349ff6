package library

import (
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/canvas/internal/model"
)

// CompileError is a library compilation error with its CUE position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// CompileComponent parses one component struct, e.g. the value at
// "component.Card" with id "Card".
func CompileComponent(id string, v cue.Value) (*model.Component, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	if id == "" {
		return nil, &CompileError{Field: "component", Message: "component id is required", Pos: v.Pos()}
	}
	c := &model.Component{
		ID:       id,
		Elements: make(map[string]*model.Element),
		Variants: []model.Variant{},
		Props:    []model.PropDef{},
	}

	var err error
	if c.Name, err = optionalString(v, "name", c.ID); err != nil {
		return nil, err
	}
	if c.Category, err = optionalString(v, "category", ""); err != nil {
		return nil, err
	}
	if c.Description, err = optionalString(v, "description", ""); err != nil {
		return nil, err
	}
	if c.Tags, err = optionalStrings(v, "tags"); err != nil {
		return nil, err
	}

	rootVal := v.LookupPath(cue.ParsePath("root"))
	if !rootVal.Exists() {
		return nil, &CompileError{Field: "root", Message: "root is required", Pos: v.Pos()}
	}
	if c.RootElementID, err = rootVal.String(); err != nil {
		return nil, formatCUEError(err)
	}

	if err := parseElements(v, c); err != nil {
		return nil, err
	}
	if err := parseVariants(v, c); err != nil {
		return nil, err
	}
	if err := parseProps(v, c); err != nil {
		return nil, err
	}

	if err := model.ValidateComponent(c); err != nil {
		return nil, &CompileError{Field: "component", Message: err.Error(), Pos: v.Pos()}
	}
	return c, nil
}

// parseElements builds the template tree. Parent links are derived from
// the children lists.
func parseElements(v cue.Value, c *model.Component) error {
	elementsVal := v.LookupPath(cue.ParsePath("elements"))
	if !elementsVal.Exists() {
		return &CompileError{Field: "elements", Message: "at least one element is required", Pos: v.Pos()}
	}
	iter, err := elementsVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	for iter.Next() {
		id := iter.Label()
		ev := iter.Value()

		typeVal := ev.LookupPath(cue.ParsePath("type"))
		if !typeVal.Exists() {
			return &CompileError{Field: "elements." + id + ".type", Message: "type is required", Pos: ev.Pos()}
		}
		typeName, err := typeVal.String()
		if err != nil {
			return formatCUEError(err)
		}
		typ := model.ElementType(typeName)
		if !typ.Valid() {
			return &CompileError{Field: "elements." + id + ".type", Message: fmt.Sprintf("unknown element type %q", typeName), Pos: typeVal.Pos()}
		}

		el := model.NewElement(id, typ)
		style, err := record(ev, "style")
		if err != nil {
			return err
		}
		for _, k := range style.SortedKeys() {
			if !model.IsStyleKey(k) {
				return &CompileError{Field: "elements." + id + ".style", Message: fmt.Sprintf("unknown style key %q", k), Pos: ev.Pos()}
			}
		}
		el.Style = model.Merge(el.Style, style)

		props, err := record(ev, "props")
		if err != nil {
			return err
		}
		if len(props) > 0 {
			p, err := model.PatchProps(el.Props, props)
			if err != nil {
				return &CompileError{Field: "elements." + id + ".props", Message: err.Error(), Pos: ev.Pos()}
			}
			el.Props = p
		}

		if el.Name, err = optionalString(ev, "name", ""); err != nil {
			return err
		}
		children, err := optionalStrings(ev, "children")
		if err != nil {
			return err
		}
		if children != nil {
			el.Children = children
		}
		c.Elements[id] = el
	}

	for _, el := range c.Elements {
		for _, child := range el.Children {
			ch, ok := c.Elements[child]
			if !ok {
				return &CompileError{Field: "elements." + el.ID + ".children", Message: fmt.Sprintf("unknown element %q", child), Pos: elementsVal.Pos()}
			}
			if ch.ParentID != "" {
				return &CompileError{Field: "elements." + child, Message: fmt.Sprintf("element has two parents %q and %q", ch.ParentID, el.ID), Pos: elementsVal.Pos()}
			}
			ch.ParentID = el.ID
		}
	}
	return nil
}

func parseVariants(v cue.Value, c *model.Component) error {
	variantsVal := v.LookupPath(cue.ParsePath("variants"))
	if !variantsVal.Exists() {
		return nil
	}
	iter, err := variantsVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		id := iter.Label()
		vv := iter.Value()

		variant := model.Variant{ID: id}
		if variant.Name, err = optionalString(vv, "name", id); err != nil {
			return err
		}
		if variant.Description, err = optionalString(vv, "description", ""); err != nil {
			return err
		}
		if variant.StyleOverrides, err = record(vv, "style"); err != nil {
			return err
		}
		if variant.PropsOverrides, err = record(vv, "props"); err != nil {
			return err
		}
		c.Variants = append(c.Variants, variant)
	}
	return nil
}

func parseProps(v cue.Value, c *model.Component) error {
	propsVal := v.LookupPath(cue.ParsePath("props"))
	if !propsVal.Exists() {
		return nil
	}
	iter, err := propsVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		id := iter.Label()
		pv := iter.Value()
		field := "props." + id

		p := model.PropDef{ID: id}
		if p.Name, err = optionalString(pv, "name", id); err != nil {
			return err
		}
		typeName, err := optionalString(pv, "type", "")
		if err != nil {
			return err
		}
		p.Type = model.PropType(typeName)
		switch p.Type {
		case model.PropString, model.PropNumber, model.PropBoolean, model.PropColor, model.PropSelect:
		default:
			return &CompileError{Field: field + ".type", Message: fmt.Sprintf("unknown prop type %q", typeName), Pos: pv.Pos()}
		}
		if p.Options, err = optionalStrings(pv, "options"); err != nil {
			return err
		}

		if dv := pv.LookupPath(cue.ParsePath("default")); dv.Exists() {
			val, err := value(dv)
			if err != nil {
				return err
			}
			if !p.Accepts(val) {
				return &CompileError{Field: field + ".default", Message: fmt.Sprintf("default does not fit prop type %s", p.Type), Pos: dv.Pos()}
			}
			p.DefaultValue = val
		}

		if bv := pv.LookupPath(cue.ParsePath("bind")); bv.Exists() {
			b, err := parseBinding(field, bv)
			if err != nil {
				return err
			}
			if _, ok := c.Elements[b.ElementID]; !ok {
				return &CompileError{Field: field + ".bind.element", Message: fmt.Sprintf("unknown element %q", b.ElementID), Pos: bv.Pos()}
			}
			p.Binding = b
		}
		c.Props = append(c.Props, p)
	}
	return nil
}

// parseBinding reads {element: "...", style: "key"} or
// {element: "...", props: "key"}.
func parseBinding(field string, v cue.Value) (*model.PropBinding, error) {
	b := &model.PropBinding{}
	var err error
	if b.ElementID, err = optionalString(v, "element", ""); err != nil {
		return nil, err
	}
	style, err := optionalString(v, "style", "")
	if err != nil {
		return nil, err
	}
	props, err := optionalString(v, "props", "")
	if err != nil {
		return nil, err
	}
	switch {
	case b.ElementID == "":
		return nil, &CompileError{Field: field + ".bind.element", Message: "element is required", Pos: v.Pos()}
	case style != "" && props == "":
		b.Scope, b.Key = model.ScopeStyle, style
	case props != "" && style == "":
		b.Scope, b.Key = model.ScopeProps, props
	default:
		return nil, &CompileError{Field: field + ".bind", Message: "exactly one of style or props is required", Pos: v.Pos()}
	}
	return b, nil
}

func optionalString(v cue.Value, path, fallback string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return fallback, nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalStrings(v cue.Value, path string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// record reads a struct field as a Record via its JSON form.
func record(v cue.Value, path string) (model.Record, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return nil, nil
	}
	data, err := fv.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var rec model.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &CompileError{Field: path, Message: err.Error(), Pos: fv.Pos()}
	}
	return rec.Compact(), nil
}

func value(v cue.Value) (model.Value, error) {
	data, err := v.MarshalJSON()
	if err != nil {
		return nil, formatCUEError(err)
	}
	val, err := model.DecodeValue(data)
	if err != nil {
		return nil, &CompileError{Field: "default", Message: err.Error(), Pos: v.Pos()}
	}
	return val, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
