package component

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/canvas/internal/model"
)

// cardElements returns a canvas-keyed container with a title and a button.
func cardElements() map[string]*model.Element {
	card := model.NewElement("card", model.TypeContainer)
	card.Style["backgroundColor"] = model.String("#fff")
	card.Children = []string{"title", "cta"}
	card.ParentID = "page"

	title := model.NewElement("title", model.TypeText)
	title.ParentID = "card"
	title.Props = model.TextProps{Content: "Title", Tag: "h2"}

	cta := model.NewElement("cta", model.TypeButton)
	cta.ParentID = "card"

	return map[string]*model.Element{"card": card, "title": title, "cta": cta}
}

func newRegistry() *Registry {
	return NewRegistry(model.NewSequentialGenerator("c"))
}

func mustCreate(t *testing.T, r *Registry) *model.Component {
	t.Helper()
	id, err := r.Create("Card", cardElements(), "card", "layout")
	require.NoError(t, err)
	c, ok := r.Get(id)
	require.True(t, ok)
	return c
}

func TestCreateRekeysIntoTemplateIDs(t *testing.T) {
	r := newRegistry()
	elements := cardElements()

	id, err := r.Create("Card", elements, "card", "layout")
	require.NoError(t, err)

	c, ok := r.Get(id)
	require.True(t, ok)
	assert.Equal(t, "Card", c.Name)
	assert.Equal(t, "layout", c.Category)
	assert.Len(t, c.Elements, 3)
	assert.NotContains(t, c.Elements, "card", "template ids are fresh")

	root, ok := c.Root()
	require.True(t, ok)
	assert.True(t, root.IsRoot(), "the template root has no parent")
	assert.Equal(t, model.String("#fff"), root.Style["backgroundColor"])
	require.Len(t, root.Children, 2)

	title := c.Elements[root.Children[0]]
	assert.Equal(t, model.TextProps{Content: "Title", Tag: "h2"}, title.Props)
	assert.Equal(t, root.ID, title.ParentID)

	assert.Equal(t, "page", elements["card"].ParentID, "input is not modified")
	require.NoError(t, model.ValidateComponent(c))
}

func TestCreateRejects(t *testing.T) {
	r := newRegistry()

	_, err := r.Create("", cardElements(), "card", "")
	assert.True(t, model.IsInvalidError(err))

	_, err = r.Create("Card", cardElements(), "ghost", "")
	assert.True(t, model.IsReferenceError(err))

	elements := cardElements()
	elements["stray"] = model.NewElement("stray", model.TypeText)
	_, err = r.Create("Card", elements, "card", "")
	assert.True(t, model.IsStructuralError(err))

	assert.Zero(t, r.Len())
}

func TestUpdateAndDelete(t *testing.T) {
	r := newRegistry()
	c := mustCreate(t, r)
	name := "Product Card"

	require.NoError(t, r.Update(c.ID, ComponentPatch{Name: &name, Tags: []string{"shop"}}))
	got, _ := r.Get(c.ID)
	assert.Equal(t, "Product Card", got.Name)
	assert.Equal(t, []string{"shop"}, got.Tags)
	assert.Equal(t, "layout", got.Category)
	assert.Equal(t, int64(1), got.Revision)

	empty := ""
	assert.True(t, model.IsInvalidError(r.Update(c.ID, ComponentPatch{Name: &empty})))
	assert.True(t, model.IsReferenceError(r.Update("ghost", ComponentPatch{})))

	require.NoError(t, r.Delete(c.ID))
	assert.False(t, r.Has(c.ID))
	assert.Empty(t, r.List())
	assert.True(t, model.IsReferenceError(r.Delete(c.ID)))
}

func TestUpdateWithoutChangeKeepsRevision(t *testing.T) {
	r := newRegistry()
	c := mustCreate(t, r)
	tags := []string{"shop"}
	require.NoError(t, r.Update(c.ID, ComponentPatch{Tags: tags}))

	got, _ := r.Get(c.ID)
	require.Equal(t, int64(1), got.Revision)

	same := got.Name
	category := got.Category
	for _, patch := range []ComponentPatch{
		{},
		{Name: &same},
		{Category: &category, Tags: []string{"shop"}},
	} {
		require.NoError(t, r.Update(c.ID, patch))
	}
	got, _ = r.Get(c.ID)
	assert.Equal(t, int64(1), got.Revision)
}

func TestListKeepsCreationOrder(t *testing.T) {
	r := newRegistry()
	a, err := r.Create("B first", cardElements(), "card", "")
	require.NoError(t, err)
	b, err := r.Create("A second", cardElements(), "card", "")
	require.NoError(t, err)

	list := r.List()
	require.Len(t, list, 2)
	assert.Equal(t, a, list[0].ID)
	assert.Equal(t, b, list[1].ID)
}

func TestVariants(t *testing.T) {
	r := newRegistry()
	c := mustCreate(t, r)

	vid, err := r.AddVariant(c.ID, model.Variant{
		Name:           "Dark",
		StyleOverrides: model.Record{"backgroundColor": model.String("#000")},
		PropsOverrides: model.Record{"layout": model.String("flex")},
	})
	require.NoError(t, err)

	got, _ := r.Get(c.ID)
	v, ok := got.Variant(vid)
	require.True(t, ok)
	assert.Equal(t, "Dark", v.Name)

	v.StyleOverrides["color"] = model.String("#eee")
	require.NoError(t, r.UpdateVariant(c.ID, v))
	got, _ = r.Get(c.ID)
	v, _ = got.Variant(vid)
	assert.Equal(t, model.String("#eee"), v.StyleOverrides["color"])

	require.NoError(t, r.DeleteVariant(c.ID, vid))
	got, _ = r.Get(c.ID)
	assert.Empty(t, got.Variants)
	assert.True(t, model.IsReferenceError(r.DeleteVariant(c.ID, vid)))
}

func TestVariantKeysMustFitRoot(t *testing.T) {
	r := newRegistry()
	c := mustCreate(t, r)

	_, err := r.AddVariant(c.ID, model.Variant{Name: "Bad", StyleOverrides: model.Record{"colour": model.String("red")}})
	assert.True(t, model.IsStructuralError(err))

	_, err = r.AddVariant(c.ID, model.Variant{Name: "Bad", PropsOverrides: model.Record{"content": model.String("x")}})
	assert.True(t, model.IsStructuralError(err), "content is a text prop, the root is a container")

	_, err = r.AddVariant("ghost", model.Variant{Name: "x"})
	assert.True(t, model.IsReferenceError(err))

	got, _ := r.Get(c.ID)
	assert.Empty(t, got.Variants)
}

func TestProps(t *testing.T) {
	r := newRegistry()
	c := mustCreate(t, r)
	root, _ := c.Root()
	titleID := root.Children[0]

	pid, err := r.AddProp(c.ID, model.PropDef{
		Name:         "Heading",
		Type:         model.PropString,
		DefaultValue: model.String("Title"),
		Binding:      &model.PropBinding{ElementID: titleID, Scope: model.ScopeProps, Key: "content"},
	})
	require.NoError(t, err)

	got, _ := r.Get(c.ID)
	p, ok := got.Prop(pid)
	require.True(t, ok)
	assert.Equal(t, "Heading", p.Name)

	p.DefaultValue = model.String("Other")
	require.NoError(t, r.UpdateProp(c.ID, p))

	require.NoError(t, r.DeleteProp(c.ID, pid))
	assert.True(t, model.IsReferenceError(r.DeleteProp(c.ID, pid)))
	assert.True(t, model.IsReferenceError(r.UpdateProp(c.ID, p)))
}

func TestPropValidation(t *testing.T) {
	r := newRegistry()
	c := mustCreate(t, r)
	root, _ := c.Root()
	titleID := root.Children[0]

	tests := []struct {
		name string
		def  model.PropDef
	}{
		{"no name", model.PropDef{Type: model.PropString}},
		{"unknown type", model.PropDef{Name: "x", Type: "date"}},
		{"select without options", model.PropDef{Name: "x", Type: model.PropSelect}},
		{"default of wrong type", model.PropDef{Name: "x", Type: model.PropNumber, DefaultValue: model.String("1")}},
		{"bad style key", model.PropDef{Name: "x", Type: model.PropColor,
			Binding: &model.PropBinding{ElementID: root.ID, Scope: model.ScopeStyle, Key: "colour"}}},
		{"foreign props key", model.PropDef{Name: "x", Type: model.PropString,
			Binding: &model.PropBinding{ElementID: titleID, Scope: model.ScopeProps, Key: "label"}}},
		{"bad scope", model.PropDef{Name: "x", Type: model.PropString,
			Binding: &model.PropBinding{ElementID: titleID, Scope: "attrs", Key: "content"}}},
		{"default does not fit bound field", model.PropDef{Name: "x", Type: model.PropNumber, DefaultValue: model.Number(2),
			Binding: &model.PropBinding{ElementID: titleID, Scope: model.ScopeProps, Key: "content"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.AddProp(c.ID, tt.def)
			assert.True(t, model.IsInvalidError(err), "got %v", err)
		})
	}

	_, err := r.AddProp(c.ID, model.PropDef{Name: "x", Type: model.PropString,
		Binding: &model.PropBinding{ElementID: "ghost", Scope: model.ScopeProps, Key: "content"}})
	assert.True(t, model.IsReferenceError(err))
}

func TestUpdateTemplateBumpsRevision(t *testing.T) {
	r := newRegistry()
	c := mustCreate(t, r)

	require.NoError(t, r.UpdateTemplate(c.ID, c.RootElementID, model.Record{"backgroundColor": model.String("#000")}, nil))

	got, _ := r.Get(c.ID)
	root, _ := got.Root()
	assert.Equal(t, model.String("#000"), root.Style["backgroundColor"])
	assert.Equal(t, c.Revision+1, got.Revision)

	err := r.UpdateTemplate(c.ID, c.RootElementID, nil, model.Record{"content": model.String("x")})
	assert.True(t, model.IsInvalidError(err))
	assert.True(t, model.IsReferenceError(r.UpdateTemplate(c.ID, "ghost", nil, nil)))
}

func TestExportImportRoundTrip(t *testing.T) {
	r := newRegistry()
	c := mustCreate(t, r)
	_, err := r.AddVariant(c.ID, model.Variant{Name: "Dark", StyleOverrides: model.Record{"backgroundColor": model.String("#000")}})
	require.NoError(t, err)

	data, err := r.Export(c.ID)
	require.NoError(t, err)

	imported, err := r.Import(data)
	require.NoError(t, err)
	assert.NotEqual(t, c.ID, imported)

	orig, _ := r.Get(c.ID)
	copied, _ := r.Get(imported)
	assert.Equal(t, orig.Name, copied.Name)
	assert.Len(t, copied.Elements, len(orig.Elements))
	for id := range copied.Elements {
		assert.NotContains(t, orig.Elements, id, "import allocates fresh template ids")
	}
	require.Len(t, copied.Variants, 1)
	assert.Equal(t, model.String("#000"), copied.Variants[0].StyleOverrides["backgroundColor"])
}

func TestImportRejectsTampering(t *testing.T) {
	r := newRegistry()
	c := mustCreate(t, r)
	data, err := r.Export(c.ID)
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	env["component"].(map[string]any)["name"] = "Tampered"
	tampered, err := json.Marshal(env)
	require.NoError(t, err)

	_, err = r.Import(tampered)
	assert.True(t, model.IsCorruptError(err))
}

func TestImportRejectsFormatVersion(t *testing.T) {
	r := newRegistry()
	c := mustCreate(t, r)
	data, err := r.Export(c.ID)
	require.NoError(t, err)

	for _, version := range []string{"2.0.0", "0.9.0", "not-a-version"} {
		var env map[string]any
		require.NoError(t, json.Unmarshal(data, &env))
		env["formatVersion"] = version
		out, err := json.Marshal(env)
		require.NoError(t, err)

		_, err = r.Import(out)
		assert.True(t, model.IsInvalidError(err), version)
	}

	_, err = r.Import([]byte(`{"formatVersion":"1.2.0"}`))
	assert.True(t, model.IsInvalidError(err))
}

func TestLoadKeepsIDs(t *testing.T) {
	src := newRegistry()
	c := mustCreate(t, src)

	dst := NewRegistry(model.NewSequentialGenerator("other"))
	require.NoError(t, dst.Load(c))

	got, ok := dst.Get(c.ID)
	require.True(t, ok)
	assert.Equal(t, c.RootElementID, got.RootElementID)

	broken := c.Clone()
	broken.RootElementID = "ghost"
	assert.True(t, model.IsCorruptError(dst.Load(broken)))
}
