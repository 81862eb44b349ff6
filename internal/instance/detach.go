package instance

import (
	"github.com/roach88/canvas/internal/canvas"
	"github.com/roach88/canvas/internal/model"
)

// Detach writes the fully resolved values of every derived element of the
// instance rooted at elementID into the canvas and deletes the instance
// record. Afterwards the elements are plain and resolve to exactly what
// they resolved to before.
func (r *Resolver) Detach(elementID string) error {
	const op = "detach"
	inst, ok := r.store.Instance(elementID)
	if !ok {
		return model.NewNotFound(op, "instance", elementID)
	}
	c, _ := r.registry.Get(inst.ComponentID)

	resolved := make(map[string]*model.Element, len(inst.Links))
	for id := range inst.Links {
		el, ok := r.store.Element(id)
		if !ok {
			continue
		}
		resolved[id] = layersFor(el, inst, c).apply(el)
	}

	err := r.store.Update(func(tx *canvas.Tx) error {
		for id, el := range resolved {
			if err := tx.SetContent(id, el.Style, el.Props); err != nil {
				return err
			}
		}
		return tx.RemoveInstance(elementID)
	})
	if err != nil {
		return err
	}
	r.logger.Debug("instance detached", "root", elementID, "component", inst.ComponentID, "elements", len(resolved))
	return nil
}
