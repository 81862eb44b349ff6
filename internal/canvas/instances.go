package canvas

import (
	"fmt"

	"github.com/roach88/canvas/internal/model"
)

// Instance returns a copy of the instance rooted at elementID.
func (s *Store) Instance(elementID string) (*model.Instance, bool) {
	inst, ok := s.instances[elementID]
	if !ok {
		return nil, false
	}
	return inst.Clone(), true
}

// Instances returns copies of all instances ordered by root element id.
func (s *Store) Instances() []*model.Instance {
	out := make([]*model.Instance, 0, len(s.instances))
	for _, id := range sortedKeys(s.instances) {
		out = append(out, s.instances[id].Clone())
	}
	return out
}

// InstanceOf returns the instance that derived elementID from its template.
func (s *Store) InstanceOf(elementID string) (*model.Instance, bool) {
	return instanceOf(s.instances, elementID)
}

func instanceOf(instances map[string]*model.Instance, elementID string) (*model.Instance, bool) {
	if inst, ok := instances[elementID]; ok {
		return inst.Clone(), true
	}
	for _, id := range sortedKeys(instances) {
		if instances[id].Derived(elementID) {
			return instances[id].Clone(), true
		}
	}
	return nil, false
}

// Instance returns a copy of the instance rooted at elementID.
func (tx *Tx) Instance(elementID string) (*model.Instance, bool) {
	inst, ok := tx.instances[elementID]
	if !ok {
		return nil, false
	}
	return inst.Clone(), true
}

// InstanceOf returns the instance that derived elementID from its template.
func (tx *Tx) InstanceOf(elementID string) (*model.Instance, bool) {
	return instanceOf(tx.instances, elementID)
}

// PutInstance stores inst, replacing any instance with the same root.
// Every link and override must address an element of the instance's subtree.
func (tx *Tx) PutInstance(inst *model.Instance) error {
	const op = "putInstance"
	if !tx.Has(inst.ElementID) {
		return model.NewNotFound(op, "element", inst.ElementID)
	}
	if err := model.ValidateInstance(inst, tx.elements); err != nil {
		return model.NewStructural(op, inst.ElementID, err.Error())
	}
	for _, id := range sortedKeys(tx.instances) {
		other := tx.instances[id]
		if id == inst.ElementID {
			continue
		}
		for link := range inst.Links {
			if other.Derived(link) {
				return model.NewStructural(op, inst.ElementID, fmt.Sprintf("element %q already belongs to instance %q", link, id))
			}
		}
	}
	tx.instances[inst.ElementID] = inst.Clone()
	tx.ownedInstance[inst.ElementID] = true
	tx.structural = true
	return nil
}

// RemoveInstance deletes the instance record rooted at elementID.
// The elements stay on the canvas.
func (tx *Tx) RemoveInstance(elementID string) error {
	if _, ok := tx.instances[elementID]; !ok {
		return model.NewNotFound("removeInstance", "instance", elementID)
	}
	delete(tx.instances, elementID)
	delete(tx.ownedInstance, elementID)
	tx.structural = true
	return nil
}
