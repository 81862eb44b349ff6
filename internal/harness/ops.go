package harness

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/roach88/canvas/internal/canvas"
	"github.com/roach88/canvas/internal/component"
	"github.com/roach88/canvas/internal/instance"
	"github.com/roach88/canvas/internal/model"
)

// opFunc executes one step against the harness session. It returns the id
// the step produced, or "" if it produces none.
type opFunc func(h *Harness, args map[string]any) (string, error)

// ops is the closed set of scenario operations.
var ops = map[string]opFunc{
	"add_element":       opAddElement,
	"update_element":    opUpdateElement,
	"update_style":      opUpdateStyle,
	"update_props":      opUpdateProps,
	"set_z_index":       opSetZIndex,
	"delete_element":    opDeleteElement,
	"duplicate_element": opDuplicateElement,
	"paste_element":     opPasteElement,
	"move_element":      opMoveElement,
	"select":            opSelect,
	"clear_selection":   opClearSelection,
	"add_to_selection":  opAddToSelection,
	"hover":             opHover,
	"undo":              opUndo,
	"redo":              opRedo,

	"create_component":                opCreateComponent,
	"create_component_from_selection": opCreateComponentFromSelection,
	"update_component":                opUpdateComponent,
	"delete_component":                opDeleteComponent,
	"add_variant":                     opAddVariant,
	"delete_variant":                  opDeleteVariant,
	"add_prop":                        opAddProp,
	"delete_prop":                     opDeleteProp,

	"create_instance":       opCreateInstance,
	"link_instance":         opLinkInstance,
	"set_variant":           opSetVariant,
	"set_override":          opSetOverride,
	"reset_property":        opResetProperty,
	"reset_overrides":       opResetOverrides,
	"push_to_master":        opPushToMaster,
	"detach":                opDetach,
	"set_prop_value":        opSetPropValue,
	"reset_prop_value":      opResetPropValue,
	"reconcile_prop_values": opReconcilePropValues,
}

// decodeArgs decodes step args into a typed argument struct. Unknown keys
// are rejected.
func decodeArgs(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return model.NewInvalid("decodeArgs", "", err.Error())
	}
	return nil
}

// record converts a decoded YAML mapping into a Record. Null values are kept
// so that patches can unset keys.
func record(v any) (model.Record, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, model.NewInvalid("record", "", fmt.Sprintf("expected a mapping, got %T", v))
	}
	rec, err := model.RecordFromMap(m)
	if err != nil {
		return nil, model.NewInvalid("record", "", err.Error())
	}
	return rec, nil
}

func scope(s string) (model.BindingScope, error) {
	switch model.BindingScope(s) {
	case model.ScopeStyle, model.ScopeProps:
		return model.BindingScope(s), nil
	default:
		return "", model.NewInvalid("scope", "", fmt.Sprintf("scope must be style or props, got %q", s))
	}
}

type idArgs struct {
	ID string `mapstructure:"id"`
}

type elementArgs struct {
	Type   string `mapstructure:"type"`
	Parent string `mapstructure:"parent"`
	Index  *int   `mapstructure:"index"`
	Name   string `mapstructure:"name"`
	Style  any    `mapstructure:"style"`
	Props  any    `mapstructure:"props"`
}

func opAddElement(h *Harness, args map[string]any) (string, error) {
	var a elementArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	t := model.ElementType(a.Type)
	if !t.Valid() {
		return "", model.NewInvalid("addElement", "", fmt.Sprintf("unknown element type %q", a.Type))
	}
	style, err := record(a.Style)
	if err != nil {
		return "", err
	}
	ne := canvas.NewElement{Type: t, ParentID: a.Parent, Index: a.Index, Style: style, Name: a.Name}
	if a.Props != nil {
		patch, err := record(a.Props)
		if err != nil {
			return "", err
		}
		props, err := model.PatchProps(model.DefaultProps(t), patch)
		if err != nil {
			return "", model.NewInvalid("addElement", "", err.Error())
		}
		ne.Props = props
	}
	return h.session.AddElement(ne)
}

func opUpdateElement(h *Harness, args map[string]any) (string, error) {
	var a struct {
		ID     string  `mapstructure:"id"`
		Name   *string `mapstructure:"name"`
		Locked *bool   `mapstructure:"locked"`
		Hidden *bool   `mapstructure:"hidden"`
		Style  any     `mapstructure:"style"`
		Props  any     `mapstructure:"props"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	patch := canvas.ElementPatch{Name: a.Name, Locked: a.Locked, Hidden: a.Hidden}
	var err error
	if patch.Style, err = record(a.Style); err != nil {
		return "", err
	}
	if patch.Props, err = record(a.Props); err != nil {
		return "", err
	}
	return "", h.session.UpdateElement(a.ID, patch)
}

type patchArgs struct {
	ID    string `mapstructure:"id"`
	Style any    `mapstructure:"style"`
	Props any    `mapstructure:"props"`
}

func opUpdateStyle(h *Harness, args map[string]any) (string, error) {
	var a patchArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	style, err := record(a.Style)
	if err != nil {
		return "", err
	}
	return "", h.session.UpdateElementStyle(a.ID, style)
}

func opUpdateProps(h *Harness, args map[string]any) (string, error) {
	var a patchArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	props, err := record(a.Props)
	if err != nil {
		return "", err
	}
	return "", h.session.UpdateElementProps(a.ID, props)
}

func opSetZIndex(h *Harness, args map[string]any) (string, error) {
	var a struct {
		ID string `mapstructure:"id"`
		Z  int    `mapstructure:"z"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return "", h.session.SetZIndex(a.ID, a.Z)
}

func opDeleteElement(h *Harness, args map[string]any) (string, error) {
	var a idArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return "", h.session.DeleteElement(a.ID)
}

func opDuplicateElement(h *Harness, args map[string]any) (string, error) {
	var a idArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return h.session.DuplicateElement(a.ID)
}

func opPasteElement(h *Harness, args map[string]any) (string, error) {
	var a struct {
		ID string  `mapstructure:"id"`
		DX float64 `mapstructure:"dx"`
		DY float64 `mapstructure:"dy"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return h.session.PasteElement(a.ID, a.DX, a.DY)
}

func opMoveElement(h *Harness, args map[string]any) (string, error) {
	var a struct {
		ID     string `mapstructure:"id"`
		Parent string `mapstructure:"parent"`
		Index  *int   `mapstructure:"index"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	index := canvas.Append
	if a.Index != nil {
		index = *a.Index
	}
	return "", h.session.MoveElement(a.ID, a.Parent, index)
}

func opSelect(h *Harness, args map[string]any) (string, error) {
	var a struct {
		IDs []string `mapstructure:"ids"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	h.session.Select(a.IDs...)
	return "", nil
}

func opClearSelection(h *Harness, args map[string]any) (string, error) {
	if err := decodeArgs(args, &struct{}{}); err != nil {
		return "", err
	}
	h.session.ClearSelection()
	return "", nil
}

func opAddToSelection(h *Harness, args map[string]any) (string, error) {
	var a struct {
		ID string `mapstructure:"id"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	h.session.AddToSelection(a.ID)
	return "", nil
}

// opHover sets the hovered element; an empty id clears it.
func opHover(h *Harness, args map[string]any) (string, error) {
	var a struct {
		ID string `mapstructure:"id"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	h.session.SetHovered(a.ID)
	return "", nil
}

func opUndo(h *Harness, args map[string]any) (string, error) {
	if err := decodeArgs(args, &struct{}{}); err != nil {
		return "", err
	}
	ok, err := h.session.Undo()
	if err == nil && !ok {
		return "", model.NewInvalid("undo", "", "nothing to undo")
	}
	return "", err
}

func opRedo(h *Harness, args map[string]any) (string, error) {
	if err := decodeArgs(args, &struct{}{}); err != nil {
		return "", err
	}
	ok, err := h.session.Redo()
	if err == nil && !ok {
		return "", model.NewInvalid("redo", "", "nothing to redo")
	}
	return "", err
}

func opCreateComponent(h *Harness, args map[string]any) (string, error) {
	var a struct {
		Name     string `mapstructure:"name"`
		Root     string `mapstructure:"root"`
		Category string `mapstructure:"category"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return h.session.CreateComponent(a.Name, a.Root, a.Category)
}

func opCreateComponentFromSelection(h *Harness, args map[string]any) (string, error) {
	var a struct {
		Name     string `mapstructure:"name"`
		Category string `mapstructure:"category"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return h.session.CreateComponentFromSelection(a.Name, a.Category)
}

func opUpdateComponent(h *Harness, args map[string]any) (string, error) {
	var a struct {
		Component   string   `mapstructure:"component"`
		Name        *string  `mapstructure:"name"`
		Category    *string  `mapstructure:"category"`
		Description *string  `mapstructure:"description"`
		Tags        []string `mapstructure:"tags"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return "", h.session.UpdateComponent(a.Component, component.ComponentPatch{
		Name:        a.Name,
		Category:    a.Category,
		Description: a.Description,
		Tags:        a.Tags,
	})
}

type componentArgs struct {
	Component string `mapstructure:"component"`
}

func opDeleteComponent(h *Harness, args map[string]any) (string, error) {
	var a componentArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return "", h.session.DeleteComponent(a.Component)
}

func opAddVariant(h *Harness, args map[string]any) (string, error) {
	var a struct {
		Component   string `mapstructure:"component"`
		Name        string `mapstructure:"name"`
		Description string `mapstructure:"description"`
		Style       any    `mapstructure:"style"`
		Props       any    `mapstructure:"props"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	v := model.Variant{Name: a.Name, Description: a.Description}
	var err error
	if v.StyleOverrides, err = record(a.Style); err != nil {
		return "", err
	}
	if v.PropsOverrides, err = record(a.Props); err != nil {
		return "", err
	}
	return h.session.AddVariant(a.Component, v)
}

func opDeleteVariant(h *Harness, args map[string]any) (string, error) {
	var a struct {
		Component string `mapstructure:"component"`
		Variant   string `mapstructure:"variant"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return "", h.session.DeleteVariant(a.Component, a.Variant)
}

func opAddProp(h *Harness, args map[string]any) (string, error) {
	var a struct {
		Component string   `mapstructure:"component"`
		Name      string   `mapstructure:"name"`
		Type      string   `mapstructure:"type"`
		Default   any      `mapstructure:"default"`
		Options   []string `mapstructure:"options"`
		Bind      *struct {
			Element string `mapstructure:"element"`
			Scope   string `mapstructure:"scope"`
			Key     string `mapstructure:"key"`
		} `mapstructure:"bind"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	p := model.PropDef{Name: a.Name, Type: model.PropType(a.Type), Options: a.Options}
	def, err := model.FromAny(a.Default)
	if err != nil {
		return "", model.NewInvalid("addProp", "", err.Error())
	}
	p.DefaultValue = def
	if a.Bind != nil {
		sc, err := scope(a.Bind.Scope)
		if err != nil {
			return "", err
		}
		p.Binding = &model.PropBinding{ElementID: a.Bind.Element, Scope: sc, Key: a.Bind.Key}
	}
	return h.session.AddProp(a.Component, p)
}

func opDeleteProp(h *Harness, args map[string]any) (string, error) {
	var a struct {
		Component string `mapstructure:"component"`
		Prop      string `mapstructure:"prop"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return "", h.session.DeleteProp(a.Component, a.Prop)
}

func opCreateInstance(h *Harness, args map[string]any) (string, error) {
	var a struct {
		Component string   `mapstructure:"component"`
		Parent    string   `mapstructure:"parent"`
		Index     *int     `mapstructure:"index"`
		Left      *float64 `mapstructure:"left"`
		Top       *float64 `mapstructure:"top"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	p := instance.Placement{ParentID: a.Parent, Index: a.Index}
	if a.Left != nil || a.Top != nil {
		p.Position = &instance.Point{}
		if a.Left != nil {
			p.Position.X = *a.Left
		}
		if a.Top != nil {
			p.Position.Y = *a.Top
		}
	}
	return h.session.CreateInstance(a.Component, p)
}

func opLinkInstance(h *Harness, args map[string]any) (string, error) {
	var a struct {
		ID        string `mapstructure:"id"`
		Component string `mapstructure:"component"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return a.ID, h.session.LinkInstance(a.ID, a.Component)
}

func opSetVariant(h *Harness, args map[string]any) (string, error) {
	var a struct {
		ID      string `mapstructure:"id"`
		Variant string `mapstructure:"variant"`
	}
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return "", h.session.SetVariant(a.ID, a.Variant)
}

func opSetOverride(h *Harness, args map[string]any) (string, error) {
	var a patchArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	style, err := record(a.Style)
	if err != nil {
		return "", err
	}
	props, err := record(a.Props)
	if err != nil {
		return "", err
	}
	return "", h.session.SetOverride(a.ID, style, props)
}

type propertyArgs struct {
	ID    string `mapstructure:"id"`
	Scope string `mapstructure:"scope"`
	Key   string `mapstructure:"key"`
}

func opResetProperty(h *Harness, args map[string]any) (string, error) {
	var a propertyArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	sc, err := scope(a.Scope)
	if err != nil {
		return "", err
	}
	return "", h.session.ResetProperty(a.ID, sc, a.Key)
}

func opResetOverrides(h *Harness, args map[string]any) (string, error) {
	var a idArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return "", h.session.ResetOverrides(a.ID)
}

func opPushToMaster(h *Harness, args map[string]any) (string, error) {
	var a propertyArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	sc, err := scope(a.Scope)
	if err != nil {
		return "", err
	}
	return "", h.session.PushToMaster(a.ID, sc, a.Key)
}

func opDetach(h *Harness, args map[string]any) (string, error) {
	var a idArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return "", h.session.Detach(a.ID)
}

type propValueArgs struct {
	ID    string `mapstructure:"id"`
	Prop  string `mapstructure:"prop"`
	Value any    `mapstructure:"value"`
}

func opSetPropValue(h *Harness, args map[string]any) (string, error) {
	var a propValueArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	v, err := model.FromAny(a.Value)
	if err != nil {
		return "", model.NewInvalid("setPropValue", a.Prop, err.Error())
	}
	return "", h.session.SetPropValue(a.ID, a.Prop, v)
}

func opResetPropValue(h *Harness, args map[string]any) (string, error) {
	var a propValueArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	return "", h.session.ResetPropValue(a.ID, a.Prop)
}

func opReconcilePropValues(h *Harness, args map[string]any) (string, error) {
	var a componentArgs
	if err := decodeArgs(args, &a); err != nil {
		return "", err
	}
	_, err := h.session.ReconcilePropValues(a.Component)
	return "", err
}
