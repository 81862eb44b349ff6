package model

import (
	"fmt"
	"slices"
)

// ValidateTree checks tree integrity for an element map and its
// ordered root list:
//   - every root exists, has no parent, and is listed once
//   - every child exists, points back at its parent, and is listed once
//   - every element is reachable from exactly one root (no orphans, no cycles)
func ValidateTree(elements map[string]*Element, roots []string) error {
	seen := make(map[string]bool, len(elements))

	var walk func(id, parent string) error
	walk = func(id, parent string) error {
		el, ok := elements[id]
		if !ok {
			return NewCorrupt("validateTree", fmt.Sprintf("element %q is referenced but missing", id))
		}
		if seen[id] {
			return NewCorrupt("validateTree", fmt.Sprintf("element %q is reachable more than once", id))
		}
		seen[id] = true
		if el.ID != id {
			return NewCorrupt("validateTree", fmt.Sprintf("element keyed %q carries id %q", id, el.ID))
		}
		if el.ParentID != parent {
			return NewCorrupt("validateTree", fmt.Sprintf("element %q has parentId %q, expected %q", id, el.ParentID, parent))
		}
		for _, child := range el.Children {
			if err := walk(child, id); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := walk(root, ""); err != nil {
			return err
		}
	}

	if len(seen) != len(elements) {
		for _, id := range sortedElementIDs(elements) {
			if !seen[id] {
				return NewCorrupt("validateTree", fmt.Sprintf("element %q is not reachable from any root", id))
			}
		}
	}
	return nil
}

// ValidateComponent checks component shape: the root exists and has no
// parent, and every template element is reachable from it.
func ValidateComponent(c *Component) error {
	root, ok := c.Root()
	if !ok {
		return NewCorrupt("validateComponent", fmt.Sprintf("component %q root %q is missing", c.ID, c.RootElementID))
	}
	if !root.IsRoot() {
		return NewCorrupt("validateComponent", fmt.Sprintf("component %q root %q has a parent", c.ID, c.RootElementID))
	}
	if err := ValidateTree(c.Elements, []string{c.RootElementID}); err != nil {
		return NewCorrupt("validateComponent", fmt.Sprintf("component %q: %v", c.ID, err))
	}
	for _, v := range c.Variants {
		if err := ValidateVariant(root.Type, v); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVariant checks that a variant only names keys that are valid on
// the root element's style and props.
func ValidateVariant(rootType ElementType, v Variant) error {
	for _, k := range v.StyleOverrides.SortedKeys() {
		if !IsStyleKey(k) {
			return NewStructural("validateVariant", v.ID, fmt.Sprintf("unknown style key %q", k))
		}
	}
	for _, k := range v.PropsOverrides.SortedKeys() {
		if !IsPropsKey(rootType, k) {
			return NewStructural("validateVariant", v.ID, fmt.Sprintf("key %q is not a %s prop", k, rootType))
		}
	}
	if _, err := DecodeProps(rootType, v.PropsOverrides.Compact(), true); err != nil {
		return NewStructural("validateVariant", v.ID, err.Error())
	}
	return nil
}

// ValidateInstance checks instance ownership: the instance root
// exists, and every override and link key is an element of the subtree
// rooted at the instance root.
func ValidateInstance(inst *Instance, elements map[string]*Element) error {
	if _, ok := elements[inst.ElementID]; !ok {
		return NewCorrupt("validateInstance", fmt.Sprintf("instance root %q is missing", inst.ElementID))
	}
	subtree := make(map[string]bool)
	for _, id := range Descendants(elements, inst.ElementID) {
		subtree[id] = true
	}
	for _, id := range sortedKeys(inst.Links) {
		if !subtree[id] {
			return NewCorrupt("validateInstance", fmt.Sprintf("instance %q links %q outside its subtree", inst.ElementID, id))
		}
	}
	for _, id := range sortedKeys(inst.Overrides) {
		if !subtree[id] || !inst.Derived(id) {
			return NewCorrupt("validateInstance", fmt.Sprintf("instance %q overrides %q which it does not own", inst.ElementID, id))
		}
	}
	return nil
}

// ValidateDocument checks the element tree and the ownership of every instance.
func ValidateDocument(doc Document) error {
	if err := ValidateTree(doc.Elements, doc.RootElementIDs); err != nil {
		return err
	}
	for _, id := range sortedKeys(doc.Instances) {
		inst := doc.Instances[id]
		if inst.ElementID != id {
			return NewCorrupt("validateDocument", fmt.Sprintf("instance keyed %q has elementId %q", id, inst.ElementID))
		}
		if err := ValidateInstance(inst, doc.Elements); err != nil {
			return err
		}
	}
	return nil
}

func sortedElementIDs(elements map[string]*Element) []string {
	return sortedKeys(elements)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
