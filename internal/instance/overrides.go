package instance

import (
	"fmt"

	"github.com/roach88/canvas/internal/canvas"
	"github.com/roach88/canvas/internal/model"
)

// derived returns the element and the instance that derived it.
func (r *Resolver) derived(op, id string) (*model.Element, *model.Instance, error) {
	el, ok := r.store.Element(id)
	if !ok {
		return nil, nil, model.NewNotFound(op, "element", id)
	}
	inst, ok := r.store.InstanceOf(id)
	if !ok || !inst.Derived(id) {
		return nil, nil, model.NewStructural(op, id, "element is not derived from a component")
	}
	return el, inst, nil
}

func (r *Resolver) put(inst *model.Instance) error {
	return r.store.Update(func(tx *canvas.Tx) error {
		return tx.PutInstance(inst)
	})
}

// SetVariant selects a variant for the instance rooted at elementID.
// An empty variantID selects the base appearance.
func (r *Resolver) SetVariant(elementID, variantID string) error {
	const op = "setVariant"
	inst, ok := r.store.Instance(elementID)
	if !ok {
		return model.NewNotFound(op, "instance", elementID)
	}
	if variantID != "" {
		c, ok := r.registry.Get(inst.ComponentID)
		if !ok {
			return model.NewDangling(op, elementID, fmt.Sprintf("component %q no longer exists", inst.ComponentID))
		}
		if _, ok := c.Variant(variantID); !ok {
			return model.NewNotFound(op, "variant", variantID)
		}
	}
	inst.VariantID = variantID
	return r.put(inst)
}

// SetOverride merges style and props patches into the instance override for
// a derived element. A nil value in a patch overrides the key as unset.
func (r *Resolver) SetOverride(elementID string, style, props model.Record) error {
	const op = "setOverride"
	el, inst, err := r.derived(op, elementID)
	if err != nil {
		return err
	}
	for _, k := range style.SortedKeys() {
		if !model.IsStyleKey(k) {
			return model.NewInvalid(op, elementID, fmt.Sprintf("unknown style key %q", k))
		}
	}
	for _, k := range props.SortedKeys() {
		if !model.IsPropsKey(el.Type, k) {
			return model.NewInvalid(op, elementID, fmt.Sprintf("key %q is not a %s prop", k, el.Type))
		}
	}
	if _, err := model.DecodeProps(el.Type, props.Compact(), true); err != nil {
		return model.NewInvalid(op, elementID, err.Error())
	}

	o := inst.Overrides[elementID]
	o.Style = overlay(o.Style, style)
	o.Props = overlay(o.Props, props)
	inst.Overrides[elementID] = o
	return r.put(inst)
}

// overlay writes patch into base without treating nil as a delete: in an
// override, nil is a value ("unset") rather than an instruction.
func overlay(base, patch model.Record) model.Record {
	if len(patch) == 0 {
		return base
	}
	out := base.Clone()
	if out == nil {
		out = model.Record{}
	}
	for k, v := range patch {
		out[k] = model.CloneValue(v)
	}
	return out
}

// ResetProperty removes one key from a derived element's override, so the
// key falls back to the master (and variant) value. Resetting a key that is
// not overridden does nothing.
func (r *Resolver) ResetProperty(elementID string, scope model.BindingScope, key string) error {
	const op = "resetProperty"
	_, inst, err := r.derived(op, elementID)
	if err != nil {
		return err
	}
	o, ok := inst.Overrides[elementID]
	if !ok {
		return nil
	}
	switch scope {
	case model.ScopeStyle:
		if _, ok := o.Style[key]; !ok {
			return nil
		}
		o.Style = o.Style.Clone()
		delete(o.Style, key)
	case model.ScopeProps:
		if _, ok := o.Props[key]; !ok {
			return nil
		}
		o.Props = o.Props.Clone()
		delete(o.Props, key)
	default:
		return model.NewInvalid(op, elementID, fmt.Sprintf("unknown scope %q", scope))
	}
	if o.Empty() {
		delete(inst.Overrides, elementID)
	} else {
		inst.Overrides[elementID] = o
	}
	return r.put(inst)
}

// ResetOverrides removes every override of a derived element.
func (r *Resolver) ResetOverrides(elementID string) error {
	_, inst, err := r.derived("resetOverrides", elementID)
	if err != nil {
		return err
	}
	if _, ok := inst.Overrides[elementID]; !ok {
		return nil
	}
	delete(inst.Overrides, elementID)
	return r.put(inst)
}

// PushToMaster copies the element's current value for one key into the
// master template element. Every other instance that does not override the
// key resolves to the new value. The instance's own override is kept; it
// now matches the master and shows as redundant in Diff.
func (r *Resolver) PushToMaster(elementID string, scope model.BindingScope, key string) error {
	const op = "pushToMaster"
	el, inst, err := r.derived(op, elementID)
	if err != nil {
		return err
	}
	c, ok := r.registry.Get(inst.ComponentID)
	if !ok {
		return model.NewDangling(op, elementID, fmt.Sprintf("component %q no longer exists", inst.ComponentID))
	}
	tid := inst.Links[elementID]
	if _, ok := c.Elements[tid]; !ok {
		return model.NewDangling(op, elementID, fmt.Sprintf("template element %q no longer exists", tid))
	}

	l := layersFor(el, inst, c)
	var current model.Record
	switch scope {
	case model.ScopeStyle:
		current = l.style()
	case model.ScopeProps:
		current = l.props()
	default:
		return model.NewInvalid(op, elementID, fmt.Sprintf("unknown scope %q", scope))
	}
	v, _ := current.Get(key)
	patch := model.Record{key: v}

	if scope == model.ScopeStyle {
		err = r.registry.UpdateTemplate(c.ID, tid, patch, nil)
	} else {
		err = r.registry.UpdateTemplate(c.ID, tid, nil, patch)
	}
	if err != nil {
		return err
	}
	r.logger.Debug("pushed to master", "element", elementID, "component", c.ID, "scope", scope, "key", key)
	return nil
}

// PropertyDiff describes one overridden key of a derived element.
type PropertyDiff struct {
	Scope     model.BindingScope `json:"scope"`
	Key       string             `json:"key"`
	Master    model.Value        `json:"master"`
	Variant   model.Value        `json:"variant,omitempty"`
	Override  model.Value        `json:"override"`
	Effective model.Value        `json:"effective"`
	Redundant bool               `json:"redundant"` // override equals the inherited value
}

// Diff compares a derived element's override, key by key, against what the
// key would resolve to without it. Style keys come first, each group in
// lexical order.
func (r *Resolver) Diff(elementID string) ([]PropertyDiff, error) {
	el, inst, err := r.derived("diff", elementID)
	if err != nil {
		return nil, err
	}
	c, _ := r.registry.Get(inst.ComponentID)
	l := layersFor(el, inst, c)
	o := inst.Overrides[elementID]

	var out []PropertyDiff
	add := func(scope model.BindingScope, overrides, master, variant, effective model.Record) {
		for _, k := range overrides.SortedKeys() {
			inherited, _ := l.inherited(scope, k)
			d := PropertyDiff{
				Scope:     scope,
				Key:       k,
				Override:  overrides[k],
				Effective: effective[k],
				Redundant: model.Equal(overrides[k], inherited),
			}
			d.Master, _ = master.Get(k)
			d.Variant, _ = variant.Get(k)
			out = append(out, d)
		}
	}
	add(model.ScopeStyle, o.Style, l.baseStyle, l.variantStyle, l.style())
	add(model.ScopeProps, o.Props, l.baseProps, l.variantProps, l.props())
	return out, nil
}
