package instance

import (
	"log/slog"

	"github.com/roach88/canvas/internal/canvas"
	"github.com/roach88/canvas/internal/component"
	"github.com/roach88/canvas/internal/model"
)

// Resolver reads masters from a registry and instance state from a canvas
// store.
type Resolver struct {
	store    *canvas.Store
	registry *component.Registry
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver creates a resolver over store and registry.
func NewResolver(store *canvas.Store, registry *component.Registry, opts ...Option) *Resolver {
	r := &Resolver{
		store:    store,
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// layers holds the per-step records of one resolution.
type layers struct {
	baseStyle, baseProps         model.Record
	variantStyle, variantProps   model.Record
	boundStyle, boundProps       model.Record
	overrideStyle, overrideProps model.Record
	dangling                     bool
}

func (l layers) style() model.Record {
	return model.Merge(l.baseStyle, l.variantStyle, l.boundStyle, l.overrideStyle)
}

func (l layers) props() model.Record {
	return model.Merge(l.baseProps, l.variantProps, l.boundProps, l.overrideProps)
}

// inherited is the value a key would have without the instance override.
func (l layers) inherited(scope model.BindingScope, key string) (model.Value, bool) {
	var rec model.Record
	if scope == model.ScopeStyle {
		rec = model.Merge(l.baseStyle, l.variantStyle, l.boundStyle)
	} else {
		rec = model.Merge(l.baseProps, l.variantProps, l.boundProps)
	}
	return rec.Get(key)
}

// layersFor collects the resolution layers for canvas element el of inst.
// c may be nil when the component has been deleted.
func layersFor(el *model.Element, inst *model.Instance, c *model.Component) layers {
	var l layers

	tid := inst.Links[el.ID]
	var tmpl *model.Element
	if c != nil {
		if t, ok := c.Elements[tid]; ok && t.Type == el.Type {
			tmpl = t
		}
	}
	if tmpl == nil {
		l.dangling = true
		tmpl = el
	}
	l.baseStyle = tmpl.Style
	l.baseProps = propsRecord(tmpl.Props)

	if c != nil && inst.VariantID != "" && el.ID == inst.ElementID {
		if v, ok := c.Variant(inst.VariantID); ok {
			l.variantStyle = v.StyleOverrides
			l.variantProps = v.PropsOverrides
		}
	}

	if c != nil {
		for _, p := range c.Props {
			if p.Binding == nil || p.Binding.ElementID != tid {
				continue
			}
			v := effectivePropValue(inst, p)
			if v == nil {
				continue
			}
			switch p.Binding.Scope {
			case model.ScopeStyle:
				if l.boundStyle == nil {
					l.boundStyle = model.Record{}
				}
				l.boundStyle[p.Binding.Key] = v
			case model.ScopeProps:
				if l.boundProps == nil {
					l.boundProps = model.Record{}
				}
				l.boundProps[p.Binding.Key] = v
			}
		}
	}

	if o, ok := inst.Overrides[el.ID]; ok {
		l.overrideStyle = o.Style
		l.overrideProps = o.Props
	}
	return l
}

// effectivePropValue is the instance's value for p if it is set and fits
// the declared type, otherwise the default.
func effectivePropValue(inst *model.Instance, p model.PropDef) model.Value {
	if v, ok := inst.PropValues[p.ID]; ok && v != nil && p.Accepts(v) {
		return v
	}
	return p.DefaultValue
}

func propsRecord(p model.Props) model.Record {
	rec, err := model.PropsToRecord(p)
	if err != nil {
		return model.Record{}
	}
	return rec
}

// apply returns a copy of el carrying the resolved style and props.
func (l layers) apply(el *model.Element) *model.Element {
	out := el.Clone()
	out.Style = l.style().Compact()
	out.Props = model.DecodePropsLenient(el.Type, l.props())
	return out
}

// components caches registry lookups for one resolution pass.
type components struct {
	registry *component.Registry
	byID     map[string]*model.Component
}

func (r *Resolver) cache() *components {
	return &components{registry: r.registry, byID: make(map[string]*model.Component)}
}

func (cs *components) get(id string) *model.Component {
	if c, ok := cs.byID[id]; ok {
		return c
	}
	c, _ := cs.registry.Get(id)
	cs.byID[id] = c
	return c
}

// Resolve returns the effective element for id. Elements that are not
// derived from a component resolve to themselves.
func (r *Resolver) Resolve(id string) (*model.Element, error) {
	el, ok := r.store.Element(id)
	if !ok {
		return nil, model.NewNotFound("resolve", "element", id)
	}
	inst, ok := r.store.InstanceOf(id)
	if !ok || !inst.Derived(id) {
		return el, nil
	}
	c := r.cache().get(inst.ComponentID)
	if c == nil {
		r.logger.Debug("resolving without master", "element", id, "component", inst.ComponentID)
	}
	return layersFor(el, inst, c).apply(el), nil
}

// ResolveDocument returns the whole canvas with every derived element
// resolved: the renderer's input. Instance records are not included.
func (r *Resolver) ResolveDocument() model.Document {
	doc := r.store.Document()
	cs := r.cache()
	for _, inst := range doc.Instances {
		c := cs.get(inst.ComponentID)
		for id := range inst.Links {
			el, ok := doc.Elements[id]
			if !ok {
				continue
			}
			doc.Elements[id] = layersFor(el, inst, c).apply(el)
		}
	}
	doc.Instances = nil
	return doc
}

// IsDerived reports whether id was derived from a component template.
func (r *Resolver) IsDerived(id string) bool {
	inst, ok := r.store.InstanceOf(id)
	return ok && inst.Derived(id)
}

// InstanceOf returns the instance that derived id.
func (r *Resolver) InstanceOf(id string) (*model.Instance, bool) {
	return r.store.InstanceOf(id)
}
