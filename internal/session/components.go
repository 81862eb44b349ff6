package session

import (
	"github.com/roach88/canvas/internal/component"
	"github.com/roach88/canvas/internal/instance"
	"github.com/roach88/canvas/internal/model"
)

// CreateComponent copies the subtree rooted at rootID into a new component.
// Derived elements are copied as they resolve, so the component looks like
// what is on the canvas. The canvas is not changed; the source subtree
// keeps its own links.
func (s *Session) CreateComponent(name, rootID, category string) (string, error) {
	sub, err := s.store.Subtree(rootID)
	if err != nil {
		return "", err
	}
	for id, el := range sub {
		if !s.resolver.IsDerived(id) {
			continue
		}
		resolved, err := s.resolver.Resolve(id)
		if err != nil {
			return "", err
		}
		el.Style = resolved.Style
		el.Props = resolved.Props
	}
	return s.registry.Create(name, sub, rootID, category)
}

// CreateComponentFromSelection creates a component from the first selected
// element.
func (s *Session) CreateComponentFromSelection(name, category string) (string, error) {
	sel := s.store.Selection()
	if len(sel) == 0 {
		return "", model.NewInvalid("createComponent", "", "nothing is selected")
	}
	return s.CreateComponent(name, sel[0], category)
}

// UpdateComponent applies a metadata patch to a component.
func (s *Session) UpdateComponent(id string, patch component.ComponentPatch) error {
	return s.registry.Update(id, patch)
}

// DeleteComponent removes a component. Its instances keep resolving from
// their stored copies.
func (s *Session) DeleteComponent(id string) error {
	return s.registry.Delete(id)
}

// AddVariant adds a variant to a component.
func (s *Session) AddVariant(componentID string, v model.Variant) (string, error) {
	return s.registry.AddVariant(componentID, v)
}

// UpdateVariant replaces a variant.
func (s *Session) UpdateVariant(componentID string, v model.Variant) error {
	return s.registry.UpdateVariant(componentID, v)
}

// DeleteVariant removes a variant.
func (s *Session) DeleteVariant(componentID, variantID string) error {
	return s.registry.DeleteVariant(componentID, variantID)
}

// AddProp adds a prop definition to a component.
func (s *Session) AddProp(componentID string, p model.PropDef) (string, error) {
	return s.registry.AddProp(componentID, p)
}

// UpdateProp replaces a prop definition.
func (s *Session) UpdateProp(componentID string, p model.PropDef) error {
	return s.registry.UpdateProp(componentID, p)
}

// DeleteProp removes a prop definition. Instance values for it are left
// in place until ReconcilePropValues runs.
func (s *Session) DeleteProp(componentID, propID string) error {
	return s.registry.DeleteProp(componentID, propID)
}

// CreateInstance places a component and returns the instance root id.
func (s *Session) CreateInstance(componentID string, p instance.Placement) (string, error) {
	var id string
	err := s.mutate("createInstance", func() error {
		var err error
		id, err = s.resolver.CreateInstance(componentID, p)
		return err
	})
	return id, err
}

// LinkInstance turns an existing subtree into an instance of a component.
func (s *Session) LinkInstance(elementID, componentID string) error {
	return s.mutate("linkInstance", func() error {
		return s.resolver.LinkInstance(elementID, componentID)
	})
}

// SetVariant selects a variant for an instance; "" selects the base.
func (s *Session) SetVariant(elementID, variantID string) error {
	return s.mutate("setVariant", func() error {
		return s.resolver.SetVariant(elementID, variantID)
	})
}

// SetOverride merges style and props patches into a derived element's
// override.
func (s *Session) SetOverride(elementID string, style, props model.Record) error {
	return s.mutate("setOverride", func() error {
		return s.resolver.SetOverride(elementID, style, props)
	})
}

// ResetProperty drops one overridden key of a derived element.
func (s *Session) ResetProperty(elementID string, scope model.BindingScope, key string) error {
	return s.mutate("resetProperty", func() error {
		return s.resolver.ResetProperty(elementID, scope, key)
	})
}

// ResetOverrides drops every override of a derived element.
func (s *Session) ResetOverrides(elementID string) error {
	return s.mutate("resetOverrides", func() error {
		return s.resolver.ResetOverrides(elementID)
	})
}

// PushToMaster copies a derived element's current value for one key into
// the master. This edits the library and is not undoable.
func (s *Session) PushToMaster(elementID string, scope model.BindingScope, key string) error {
	return s.resolver.PushToMaster(elementID, scope, key)
}

// Detach turns an instance into plain elements with the values it
// currently resolves to.
func (s *Session) Detach(elementID string) error {
	return s.mutate("detach", func() error {
		return s.resolver.Detach(elementID)
	})
}

// SetPropValue sets an instance's value for a component prop.
func (s *Session) SetPropValue(elementID, propID string, v model.Value) error {
	return s.mutate("setPropValue", func() error {
		return s.resolver.SetPropValue(elementID, propID, v)
	})
}

// ResetPropValue drops an instance's value for a component prop.
func (s *Session) ResetPropValue(elementID, propID string) error {
	return s.mutate("resetPropValue", func() error {
		return s.resolver.ResetPropValue(elementID, propID)
	})
}

// ReconcilePropValues purges stale prop values from the component's
// instances and returns how many were removed.
func (s *Session) ReconcilePropValues(componentID string) (int, error) {
	var n int
	err := s.mutate("reconcilePropValues", func() error {
		var err error
		n, err = s.resolver.ReconcilePropValues(componentID)
		return err
	})
	return n, err
}

// Diff reports the overridden keys of a derived element.
func (s *Session) Diff(elementID string) ([]instance.PropertyDiff, error) {
	return s.resolver.Diff(elementID)
}

// Resolve returns the effective element for id.
func (s *Session) Resolve(id string) (*model.Element, error) {
	return s.resolver.Resolve(id)
}
