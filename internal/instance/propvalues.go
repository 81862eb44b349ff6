package instance

import (
	"fmt"

	"github.com/roach88/canvas/internal/canvas"
	"github.com/roach88/canvas/internal/model"
)

// SetPropValue binds a concrete value to one of the component's props for
// the instance rooted at elementID.
func (r *Resolver) SetPropValue(elementID, propID string, v model.Value) error {
	const op = "setPropValue"
	inst, ok := r.store.Instance(elementID)
	if !ok {
		return model.NewNotFound(op, "instance", elementID)
	}
	c, ok := r.registry.Get(inst.ComponentID)
	if !ok {
		return model.NewDangling(op, elementID, fmt.Sprintf("component %q no longer exists", inst.ComponentID))
	}
	p, ok := c.Prop(propID)
	if !ok {
		return model.NewNotFound(op, "prop", propID)
	}
	if v == nil || !p.Accepts(v) {
		return model.NewInvalid(op, propID, fmt.Sprintf("value does not fit prop type %s", p.Type))
	}
	inst.PropValues[propID] = model.CloneValue(v)
	return r.put(inst)
}

// ResetPropValue drops the instance's value for a prop, falling back to the
// prop default. Unknown prop ids are fine: stale values can be dropped
// after their prop was deleted.
func (r *Resolver) ResetPropValue(elementID, propID string) error {
	inst, ok := r.store.Instance(elementID)
	if !ok {
		return model.NewNotFound("resetPropValue", "instance", elementID)
	}
	if _, ok := inst.PropValues[propID]; !ok {
		return nil
	}
	delete(inst.PropValues, propID)
	return r.put(inst)
}

// EffectivePropValues returns the value of every declared prop for the
// instance: its own value when set and valid, else the default. Stale
// values of deleted props are not reported.
func (r *Resolver) EffectivePropValues(elementID string) (map[string]model.Value, error) {
	const op = "effectivePropValues"
	inst, ok := r.store.Instance(elementID)
	if !ok {
		return nil, model.NewNotFound(op, "instance", elementID)
	}
	c, ok := r.registry.Get(inst.ComponentID)
	if !ok {
		return map[string]model.Value{}, nil
	}
	out := make(map[string]model.Value, len(c.Props))
	for _, p := range c.Props {
		if v := effectivePropValue(inst, p); v != nil {
			out[p.ID] = v
		}
	}
	return out, nil
}

// ReconcilePropValues purges prop values that name deleted props or no
// longer fit their prop's type from every instance of the component. It
// returns the number of values removed. Instances of a deleted component
// are left alone.
func (r *Resolver) ReconcilePropValues(componentID string) (int, error) {
	c, ok := r.registry.Get(componentID)
	if !ok {
		return 0, model.NewNotFound("reconcilePropValues", "component", componentID)
	}

	removed := 0
	err := r.store.Update(func(tx *canvas.Tx) error {
		for _, inst := range r.store.Instances() {
			if inst.ComponentID != componentID {
				continue
			}
			changed := false
			for id, v := range inst.PropValues {
				if p, ok := c.Prop(id); ok && p.Accepts(v) {
					continue
				}
				delete(inst.PropValues, id)
				removed++
				changed = true
			}
			if changed {
				if err := tx.PutInstance(inst); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		r.logger.Debug("stale prop values purged", "component", componentID, "removed", removed)
	}
	return removed, nil
}
