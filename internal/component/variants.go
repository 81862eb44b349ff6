package component

import (
	"fmt"
	"slices"

	"github.com/roach88/canvas/internal/model"
)

// AddVariant appends a variant and returns its id. An empty id is
// allocated. Variants are deltas on the root element only, so every key
// must be valid on the root's style or props.
func (r *Registry) AddVariant(componentID string, v model.Variant) (string, error) {
	const op = "addVariant"
	c, err := r.lookup(op, componentID)
	if err != nil {
		return "", err
	}
	if v.ID == "" {
		v.ID = r.ids.NewID()
	}
	v = compactVariant(v)
	if _, exists := c.Variant(v.ID); exists {
		return "", model.NewStructural(op, v.ID, "variant id already in use")
	}
	if err := checkVariant(c, v); err != nil {
		return "", err
	}
	c.Variants = append(c.Variants, v.Clone())
	c.Revision++
	return v.ID, nil
}

// UpdateVariant replaces the variant with the same id.
func (r *Registry) UpdateVariant(componentID string, v model.Variant) error {
	const op = "updateVariant"
	c, err := r.lookup(op, componentID)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(c.Variants, func(x model.Variant) bool { return x.ID == v.ID })
	if i < 0 {
		return model.NewNotFound(op, "variant", v.ID)
	}
	v = compactVariant(v)
	if err := checkVariant(c, v); err != nil {
		return err
	}
	c.Variants[i] = v.Clone()
	c.Revision++
	return nil
}

// DeleteVariant removes a variant. Instances that selected it fall back to
// the base appearance.
func (r *Registry) DeleteVariant(componentID, variantID string) error {
	const op = "deleteVariant"
	c, err := r.lookup(op, componentID)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(c.Variants, func(x model.Variant) bool { return x.ID == variantID })
	if i < 0 {
		return model.NewNotFound(op, "variant", variantID)
	}
	c.Variants = slices.Delete(c.Variants, i, i+1)
	c.Revision++
	return nil
}

// compactVariant drops unset entries; a variant delta only ever sets keys.
func compactVariant(v model.Variant) model.Variant {
	v.StyleOverrides = v.StyleOverrides.Compact()
	v.PropsOverrides = v.PropsOverrides.Compact()
	return v
}

func checkVariant(c *model.Component, v model.Variant) error {
	root, ok := c.Root()
	if !ok {
		return model.NewCorrupt("checkVariant", fmt.Sprintf("component %q has no root", c.ID))
	}
	return model.ValidateVariant(root.Type, v)
}
