// Package component implements the component registry: named, reusable
// element templates with root-only variants and a typed prop interface.
//
// Templates live in their own id space ("template ids"), independent of any
// canvas placement. The registry hands out copies; callers never hold a
// pointer into registry state.
package component

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/canvas/internal/model"
)

// Registry owns component definitions.
//
// Thread-safety: not safe for concurrent use; the owning session serializes
// access.
type Registry struct {
	components map[string]*model.Component
	order      []string // creation order
	ids        model.IDGenerator
	logger     *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry that allocates component, template,
// variant and prop ids from ids.
func NewRegistry(ids model.IDGenerator, opts ...Option) *Registry {
	r := &Registry{
		components: make(map[string]*model.Component),
		ids:        ids,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ComponentPatch is a partial update of component metadata.
// Nil fields are left alone.
type ComponentPatch struct {
	Name        *string
	Category    *string
	Description *string
	Tags        []string
}

func (r *Registry) newID() string {
	for {
		id := r.ids.NewID()
		if _, taken := r.components[id]; !taken {
			return id
		}
	}
}

// Create copies a subtree (typically collected from the canvas selection)
// into a new component, re-keying every element into fresh template ids.
// The canvas is not touched.
func (r *Registry) Create(name string, elements map[string]*model.Element, rootID, category string) (string, error) {
	const op = "createComponent"
	if name == "" {
		return "", model.NewInvalid(op, "", "component name is required")
	}
	if _, ok := elements[rootID]; !ok {
		return "", model.NewNotFound(op, "element", rootID)
	}

	c := &model.Component{
		Name:     name,
		Category: category,
		Variants: []model.Variant{},
		Props:    []model.PropDef{},
	}
	if err := r.rekey(op, c, elements, rootID); err != nil {
		return "", err
	}
	return r.insert(op, c)
}

// Add inserts a copy of c under fresh component and template ids. Variant
// and prop ids are kept; prop bindings follow their elements.
func (r *Registry) Add(c *model.Component) (string, error) {
	const op = "addComponent"
	if c.Name == "" {
		return "", model.NewInvalid(op, c.ID, "component name is required")
	}
	if err := model.ValidateComponent(c); err != nil {
		return "", err
	}

	out := c.Clone()
	out.Revision = 0
	mapping := make(map[string]string)
	if err := r.rekeyWith(op, out, c.Elements, c.RootElementID, mapping); err != nil {
		return "", err
	}
	for i, p := range out.Props {
		if p.Binding != nil {
			out.Props[i].Binding.ElementID = mapping[p.Binding.ElementID]
		}
	}
	return r.insert(op, out)
}

// Load inserts a copy of c keeping all of its ids, replacing any component
// with the same id. Used to restore a saved library.
func (r *Registry) Load(c *model.Component) error {
	const op = "loadComponent"
	if c.ID == "" {
		return model.NewInvalid(op, "", "component id is required")
	}
	if err := validate(op, c); err != nil {
		return err
	}
	if _, exists := r.components[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	r.components[c.ID] = c.Clone()
	return nil
}

func (r *Registry) rekey(op string, c *model.Component, elements map[string]*model.Element, rootID string) error {
	return r.rekeyWith(op, c, elements, rootID, make(map[string]string))
}

// rekeyWith copies the tree under rootID into c with fresh template ids,
// recording old -> new in mapping. Elements not reachable from the root are
// rejected.
func (r *Registry) rekeyWith(op string, c *model.Component, elements map[string]*model.Element, rootID string, mapping map[string]string) error {
	order := model.Descendants(elements, rootID)
	if len(order) != len(elements) {
		return model.NewStructural(op, rootID, fmt.Sprintf("%d of %d elements are not under the root", len(elements)-len(order), len(elements)))
	}
	for _, old := range order {
		mapping[old] = r.ids.NewID()
	}

	out := make(map[string]*model.Element, len(order))
	for _, old := range order {
		el := elements[old].Clone()
		el.ID = mapping[old]
		if old == rootID {
			el.ParentID = ""
		} else {
			el.ParentID = mapping[el.ParentID]
		}
		for i, child := range el.Children {
			el.Children[i] = mapping[child]
		}
		out[el.ID] = el
	}
	c.Elements = out
	c.RootElementID = mapping[rootID]
	return nil
}

func (r *Registry) insert(op string, c *model.Component) (string, error) {
	c.ID = r.newID()
	if err := validate(op, c); err != nil {
		return "", err
	}
	r.components[c.ID] = c
	r.order = append(r.order, c.ID)
	r.logger.Debug("component registered", "op", op, "id", c.ID, "name", c.Name, "elements", len(c.Elements))
	return c.ID, nil
}

// Get returns a copy of the component.
func (r *Registry) Get(id string) (*model.Component, bool) {
	c, ok := r.components[id]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Has reports whether the component exists.
func (r *Registry) Has(id string) bool {
	_, ok := r.components[id]
	return ok
}

// List returns copies of all components in creation order.
func (r *Registry) List() []*model.Component {
	out := make([]*model.Component, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.components[id].Clone())
	}
	return out
}

// Len returns the number of components.
func (r *Registry) Len() int {
	return len(r.components)
}

// Update applies a metadata patch. The revision only moves when a field
// actually changes.
func (r *Registry) Update(id string, patch ComponentPatch) error {
	const op = "updateComponent"
	c, ok := r.components[id]
	if !ok {
		return model.NewNotFound(op, "component", id)
	}
	if patch.Name != nil && *patch.Name == "" {
		return model.NewInvalid(op, id, "component name is required")
	}
	changed := false
	set := func(field *string, v *string) {
		if v != nil && *field != *v {
			*field = *v
			changed = true
		}
	}
	set(&c.Name, patch.Name)
	set(&c.Category, patch.Category)
	set(&c.Description, patch.Description)
	if patch.Tags != nil && !slices.Equal(c.Tags, patch.Tags) {
		c.Tags = slices.Clone(patch.Tags)
		changed = true
	}
	if changed {
		c.Revision++
	}
	return nil
}

// Delete removes a component. Instances that reference it are left alone
// and resolve without a master from then on.
func (r *Registry) Delete(id string) error {
	if _, ok := r.components[id]; !ok {
		return model.NewNotFound("deleteComponent", "component", id)
	}
	delete(r.components, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	r.logger.Debug("component deleted", "id", id)
	return nil
}

// UpdateTemplate shallow-merges style and props patches into one template
// element of the master. Every instance that does not override the touched
// keys picks the change up on its next resolution.
func (r *Registry) UpdateTemplate(componentID, templateID string, style, props model.Record) error {
	const op = "updateTemplate"
	c, ok := r.components[componentID]
	if !ok {
		return model.NewNotFound(op, "component", componentID)
	}
	el, ok := c.Elements[templateID]
	if !ok {
		return model.NewNotFound(op, "template element", templateID)
	}
	for _, k := range style.SortedKeys() {
		if !model.IsStyleKey(k) {
			return model.NewInvalid(op, templateID, fmt.Sprintf("unknown style key %q", k))
		}
	}

	updated := el.Clone()
	if props != nil {
		p, err := model.PatchProps(el.Props, props)
		if err != nil {
			return model.NewInvalid(op, templateID, err.Error())
		}
		updated.Props = p
	}
	if style != nil {
		updated.Style = model.Merge(el.Style, style)
	}
	c.Elements[templateID] = updated
	c.Revision++
	return nil
}

// validate checks component shape, variants and prop definitions.
func validate(op string, c *model.Component) error {
	if err := model.ValidateComponent(c); err != nil {
		return err
	}
	for _, p := range c.Props {
		if err := checkPropDef(op, c, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) lookup(op, id string) (*model.Component, error) {
	c, ok := r.components[id]
	if !ok {
		return nil, model.NewNotFound(op, "component", id)
	}
	return c, nil
}
