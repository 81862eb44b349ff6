package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/canvas/internal/model"
)

type boundCard struct {
	component *model.Component
	heading   string
	accent    string
}

func (f *fixture) boundCard(t *testing.T) boundCard {
	t.Helper()
	c := f.card(t)
	root, _ := c.Root()
	titleTmpl := root.Children[0]

	heading, err := f.registry.AddProp(c.ID, model.PropDef{
		Name:         "Heading",
		Type:         model.PropString,
		DefaultValue: model.String("Welcome"),
		Binding:      &model.PropBinding{ElementID: titleTmpl, Scope: model.ScopeProps, Key: "content"},
	})
	require.NoError(t, err)
	accent, err := f.registry.AddProp(c.ID, model.PropDef{
		Name:         "Accent",
		Type:         model.PropColor,
		DefaultValue: model.String("#fff"),
		Binding:      &model.PropBinding{ElementID: c.RootElementID, Scope: model.ScopeStyle, Key: "backgroundColor"},
	})
	require.NoError(t, err)

	c, _ = f.registry.Get(c.ID)
	return boundCard{component: c, heading: heading, accent: accent}
}

func (f *fixture) content(t *testing.T, id string) string {
	t.Helper()
	el, err := f.resolver.Resolve(id)
	require.NoError(t, err)
	props, ok := el.Props.(model.TextProps)
	require.True(t, ok)
	return props.Content
}

func TestBoundPropDefaultApplies(t *testing.T) {
	f := newFixture()
	bc := f.boundCard(t)
	a := f.place(t, bc.component)

	assert.Equal(t, "Welcome", f.content(t, f.titleOf(t, a)), "default beats the template value")

	values, err := f.resolver.EffectivePropValues(a)
	require.NoError(t, err)
	assert.Equal(t, map[string]model.Value{
		bc.heading: model.String("Welcome"),
		bc.accent:  model.String("#fff"),
	}, values)
}

func TestSetPropValue(t *testing.T) {
	f := newFixture()
	bc := f.boundCard(t)
	a := f.place(t, bc.component)
	b := f.place(t, bc.component)
	title := f.titleOf(t, a)

	require.NoError(t, f.resolver.SetPropValue(a, bc.heading, model.String("Hello")))
	require.NoError(t, f.resolver.SetPropValue(a, bc.accent, model.String("#123456")))

	assert.Equal(t, "Hello", f.content(t, title))
	assert.Equal(t, model.String("#123456"), f.style(t, a, "backgroundColor"))
	assert.Equal(t, "Welcome", f.content(t, f.titleOf(t, b)))

	// Overrides beat bound props.
	require.NoError(t, f.resolver.SetOverride(title, nil, model.Record{"content": model.String("Pinned")}))
	assert.Equal(t, "Pinned", f.content(t, title))

	require.NoError(t, f.resolver.ResetPropValue(a, bc.heading))
	require.NoError(t, f.resolver.ResetProperty(title, model.ScopeProps, "content"))
	assert.Equal(t, "Welcome", f.content(t, title))
}

func TestSetPropValueRejects(t *testing.T) {
	f := newFixture()
	bc := f.boundCard(t)
	a := f.place(t, bc.component)

	assert.True(t, model.IsInvalidError(f.resolver.SetPropValue(a, bc.heading, model.Number(3))))
	assert.True(t, model.IsInvalidError(f.resolver.SetPropValue(a, bc.accent, model.String("not a colour!"))))
	assert.True(t, model.IsInvalidError(f.resolver.SetPropValue(a, bc.heading, nil)))
	assert.True(t, model.IsReferenceError(f.resolver.SetPropValue(a, "ghost", model.String("x"))))
	assert.True(t, model.IsReferenceError(f.resolver.SetPropValue(f.titleOf(t, a), bc.heading, model.String("x"))))

	inst, _ := f.store.Instance(a)
	assert.Empty(t, inst.PropValues)

	require.NoError(t, f.registry.Delete(bc.component.ID))
	assert.True(t, model.IsDanglingError(f.resolver.SetPropValue(a, bc.heading, model.String("x"))))
}

func TestReconcilePropValues(t *testing.T) {
	f := newFixture()
	bc := f.boundCard(t)
	a := f.place(t, bc.component)
	b := f.place(t, bc.component)
	require.NoError(t, f.resolver.SetPropValue(a, bc.heading, model.String("A")))
	require.NoError(t, f.resolver.SetPropValue(b, bc.heading, model.String("B")))
	require.NoError(t, f.resolver.SetPropValue(b, bc.accent, model.String("#000")))

	require.NoError(t, f.registry.DeleteProp(bc.component.ID, bc.heading))

	// Stale values are ignored before they are purged.
	title := f.titleOf(t, a)
	assert.Equal(t, "Title", f.content(t, title))

	removed, err := f.resolver.ReconcilePropValues(bc.component.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	inst, _ := f.store.Instance(b)
	assert.Equal(t, map[string]model.Value{bc.accent: model.String("#000")}, inst.PropValues)

	removed, err = f.resolver.ReconcilePropValues(bc.component.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = f.resolver.ReconcilePropValues("ghost")
	assert.True(t, model.IsReferenceError(err))
}
