package component

import (
	"fmt"
	"slices"

	"github.com/roach88/canvas/internal/model"
)

// AddProp appends a prop definition and returns its id. An empty id is
// allocated.
func (r *Registry) AddProp(componentID string, p model.PropDef) (string, error) {
	const op = "addProp"
	c, err := r.lookup(op, componentID)
	if err != nil {
		return "", err
	}
	if p.ID == "" {
		p.ID = r.ids.NewID()
	}
	if _, exists := c.Prop(p.ID); exists {
		return "", model.NewStructural(op, p.ID, "prop id already in use")
	}
	if err := checkPropDef(op, c, p); err != nil {
		return "", err
	}
	c.Props = append(c.Props, p.Clone())
	c.Revision++
	return p.ID, nil
}

// UpdateProp replaces the prop definition with the same id.
func (r *Registry) UpdateProp(componentID string, p model.PropDef) error {
	const op = "updateProp"
	c, err := r.lookup(op, componentID)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(c.Props, func(x model.PropDef) bool { return x.ID == p.ID })
	if i < 0 {
		return model.NewNotFound(op, "prop", p.ID)
	}
	if err := checkPropDef(op, c, p); err != nil {
		return err
	}
	c.Props[i] = p.Clone()
	c.Revision++
	return nil
}

// DeleteProp removes a prop definition. Instance prop values that still
// name it are ignored during resolution and purged lazily.
func (r *Registry) DeleteProp(componentID, propID string) error {
	const op = "deleteProp"
	c, err := r.lookup(op, componentID)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(c.Props, func(x model.PropDef) bool { return x.ID == propID })
	if i < 0 {
		return model.NewNotFound(op, "prop", propID)
	}
	c.Props = slices.Delete(c.Props, i, i+1)
	c.Revision++
	return nil
}

func checkPropDef(op string, c *model.Component, p model.PropDef) error {
	if p.Name == "" {
		return model.NewInvalid(op, p.ID, "prop name is required")
	}
	switch p.Type {
	case model.PropString, model.PropNumber, model.PropBoolean, model.PropColor:
	case model.PropSelect:
		if len(p.Options) == 0 {
			return model.NewInvalid(op, p.ID, "select prop needs options")
		}
	default:
		return model.NewInvalid(op, p.ID, fmt.Sprintf("unknown prop type %q", p.Type))
	}
	if p.DefaultValue != nil && !p.Accepts(p.DefaultValue) {
		return model.NewInvalid(op, p.ID, fmt.Sprintf("default value does not fit type %s", p.Type))
	}
	if p.Binding == nil {
		return nil
	}

	el, ok := c.Elements[p.Binding.ElementID]
	if !ok {
		return model.NewNotFound(op, "template element", p.Binding.ElementID)
	}
	switch p.Binding.Scope {
	case model.ScopeStyle:
		if !model.IsStyleKey(p.Binding.Key) {
			return model.NewInvalid(op, p.ID, fmt.Sprintf("unknown style key %q", p.Binding.Key))
		}
	case model.ScopeProps:
		if !model.IsPropsKey(el.Type, p.Binding.Key) {
			return model.NewInvalid(op, p.ID, fmt.Sprintf("key %q is not a %s prop", p.Binding.Key, el.Type))
		}
		if p.DefaultValue != nil {
			if _, err := model.DecodeProps(el.Type, model.Record{p.Binding.Key: p.DefaultValue}, true); err != nil {
				return model.NewInvalid(op, p.ID, err.Error())
			}
		}
	default:
		return model.NewInvalid(op, p.ID, fmt.Sprintf("unknown binding scope %q", p.Binding.Scope))
	}
	return nil
}
