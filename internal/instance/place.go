package instance

import (
	"fmt"

	"github.com/roach88/canvas/internal/canvas"
	"github.com/roach88/canvas/internal/model"
)

// Placement says where a new instance goes.
type Placement struct {
	ParentID string // "" or unknown places a root
	Index    *int   // nil appends
	Position *Point // optional; written as left/top on the root
}

// Point is a canvas position in pixels.
type Point struct {
	X, Y float64
}

// CreateInstance deep-clones the component's template into fresh canvas
// ids, inserts it, and registers an instance with no variant and no prop
// values. It returns the canvas id of the instance root.
//
// A position is recorded as the root's left/top override, since the root's
// own style resolves from the master.
func (r *Resolver) CreateInstance(componentID string, p Placement) (string, error) {
	const op = "createInstance"
	c, ok := r.registry.Get(componentID)
	if !ok {
		return "", model.NewNotFound(op, "component", componentID)
	}

	links := make(map[string]string, len(c.Elements))
	mapping := make(map[string]string, len(c.Elements))
	order := model.Descendants(c.Elements, c.RootElementID)
	for _, tid := range order {
		id := r.store.NewID()
		mapping[tid] = id
		links[id] = tid
	}

	elements := make(map[string]*model.Element, len(order))
	for _, tid := range order {
		el := c.Elements[tid].Clone()
		el.ID = mapping[tid]
		if tid != c.RootElementID {
			el.ParentID = mapping[el.ParentID]
		}
		for i, child := range el.Children {
			el.Children[i] = mapping[child]
		}
		elements[el.ID] = el
	}

	rootID := mapping[c.RootElementID]
	inst := model.NewInstance(rootID, c.ID)
	inst.Links = links
	if p.Position != nil {
		inst.Overrides[rootID] = model.Override{Style: model.Record{
			"left": model.Number(p.Position.X),
			"top":  model.Number(p.Position.Y),
		}}
	}

	index := canvas.Append
	if p.Index != nil {
		index = *p.Index
	}
	err := r.store.Update(func(tx *canvas.Tx) error {
		if err := tx.InsertTree(elements, rootID, p.ParentID, index); err != nil {
			return err
		}
		return tx.PutInstance(inst)
	})
	if err != nil {
		return "", err
	}
	r.logger.Debug("instance created", "component", c.ID, "root", rootID, "elements", len(elements))
	return rootID, nil
}

// LinkInstance turns an existing canvas subtree into an instance of a
// component. The subtree must have the template's shape: same element
// types, same child counts, position by position. Wherever the canvas
// differs from the master, the difference is captured as an override, so
// linking does not change how anything looks.
func (r *Resolver) LinkInstance(elementID, componentID string) error {
	const op = "linkInstance"
	c, ok := r.registry.Get(componentID)
	if !ok {
		return model.NewNotFound(op, "component", componentID)
	}
	if _, ok := r.store.Element(elementID); !ok {
		return model.NewNotFound(op, "element", elementID)
	}
	if _, ok := r.store.InstanceOf(elementID); ok {
		return model.NewStructural(op, elementID, "element already belongs to an instance")
	}

	inst := model.NewInstance(elementID, c.ID)
	if err := r.match(op, elementID, c.RootElementID, c, inst.Links); err != nil {
		return err
	}

	for id := range inst.Links {
		el, _ := r.store.Element(id)
		l := layersFor(el, inst, c)
		style := diffRecords(model.Merge(l.baseStyle, l.boundStyle), el.Style)
		props := diffRecords(model.Merge(l.baseProps, l.boundProps), propsRecord(el.Props))
		var o model.Override
		if len(style) > 0 {
			o.Style = style
		}
		if len(props) > 0 {
			o.Props = props
		}
		if !o.Empty() {
			inst.Overrides[id] = o
		}
	}

	return r.store.Update(func(tx *canvas.Tx) error {
		return tx.PutInstance(inst)
	})
}

// match walks a canvas subtree and a template subtree in parallel.
func (r *Resolver) match(op, canvasID, templateID string, c *model.Component, links map[string]string) error {
	el, _ := r.store.Element(canvasID)
	tmpl := c.Elements[templateID]
	if el.Type != tmpl.Type {
		return model.NewStructural(op, canvasID, fmt.Sprintf("%s element does not match %s template element", el.Type, tmpl.Type))
	}
	if len(el.Children) != len(tmpl.Children) {
		return model.NewStructural(op, canvasID, fmt.Sprintf("%d children do not match %d template children", len(el.Children), len(tmpl.Children)))
	}
	if other, ok := r.store.InstanceOf(canvasID); ok {
		return model.NewStructural(op, canvasID, fmt.Sprintf("element already belongs to instance %q", other.ElementID))
	}
	links[canvasID] = templateID
	for i := range el.Children {
		if err := r.match(op, el.Children[i], tmpl.Children[i], c, links); err != nil {
			return err
		}
	}
	return nil
}

// diffRecords returns the delta that turns base into target: changed and
// added keys with target's value, removed keys as nil.
func diffRecords(base, target model.Record) model.Record {
	out := model.Record{}
	for _, k := range target.SortedKeys() {
		if v, ok := base.Get(k); !ok || !model.Equal(v, target[k]) {
			out[k] = model.CloneValue(target[k])
		}
	}
	for _, k := range base.SortedKeys() {
		if _, ok := target.Get(k); !ok {
			out[k] = nil
		}
	}
	return out
}
