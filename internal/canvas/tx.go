package canvas

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/canvas/internal/model"
)

// Append as an index inserts at the end of the sibling list.
const Append = -1

// NewElement describes an element to add. Missing fields take the type's
// defaults.
type NewElement struct {
	Type     model.ElementType
	ParentID string       // "" or unknown adds a root
	Index    *int         // nil appends
	Style    model.Record // merged over DefaultStyle(Type)
	Props    model.Props  // nil means DefaultProps(Type)
	Name     string
}

// At returns a pointer to i, for NewElement.Index.
func At(i int) *int {
	return &i
}

// ElementPatch is a partial update. Nil fields are left alone.
type ElementPatch struct {
	Name   *string
	Locked *bool
	Hidden *bool
	Style  model.Record
	Props  model.Record
}

// Tx is a store transaction. See Store.Update.
type Tx struct {
	store     *Store
	elements  map[string]*model.Element
	roots     []string
	selected  []string
	hovered   string
	instances map[string]*model.Instance

	owned         map[string]bool
	ownedInstance map[string]bool
	structural    bool
}

func (s *Store) begin() *Tx {
	return &Tx{
		store:         s,
		elements:      maps.Clone(s.elements),
		roots:         slices.Clone(s.roots),
		selected:      slices.Clone(s.selected),
		hovered:       s.hovered,
		instances:     maps.Clone(s.instances),
		owned:         make(map[string]bool),
		ownedInstance: make(map[string]bool),
	}
}

func (tx *Tx) state() State {
	return State{
		Elements:  tx.elements,
		Roots:     tx.roots,
		Selected:  tx.selected,
		Hovered:   tx.hovered,
		Instances: tx.instances,
	}
}

// writable returns a transaction-private copy of the element.
func (tx *Tx) writable(id string) *model.Element {
	el := tx.elements[id]
	if tx.owned[id] {
		return el
	}
	el = el.Clone()
	tx.elements[id] = el
	tx.owned[id] = true
	return el
}

func (tx *Tx) writableInstance(id string) *model.Instance {
	inst := tx.instances[id]
	if tx.ownedInstance[id] {
		return inst
	}
	inst = inst.Clone()
	tx.instances[id] = inst
	tx.ownedInstance[id] = true
	return inst
}

func (tx *Tx) newID(reserved map[string]bool) string {
	for {
		id := tx.store.ids.NewID()
		if _, taken := tx.elements[id]; !taken && !reserved[id] {
			return id
		}
	}
}

// Element returns a copy of an element as seen by the transaction.
func (tx *Tx) Element(id string) (*model.Element, bool) {
	el, ok := tx.elements[id]
	if !ok {
		return nil, false
	}
	return el.Clone(), true
}

// Has reports whether the element exists in the transaction.
func (tx *Tx) Has(id string) bool {
	_, ok := tx.elements[id]
	return ok
}

// Descendants returns id and everything below it in depth-first pre-order.
func (tx *Tx) Descendants(id string) []string {
	return model.Descendants(tx.elements, id)
}

// AddElement inserts a new element and returns its id.
func (tx *Tx) AddElement(ne NewElement) (string, error) {
	const op = "addElement"
	if !ne.Type.Valid() {
		return "", model.NewInvalid(op, "", fmt.Sprintf("unknown element type %q", ne.Type))
	}
	if err := checkStyleKeys(op, "", ne.Style); err != nil {
		return "", err
	}
	props := ne.Props
	if props == nil {
		props = model.DefaultProps(ne.Type)
	}
	if props.Kind() != ne.Type {
		return "", model.NewInvalid(op, "", fmt.Sprintf("%s props on a %s element", props.Kind(), ne.Type))
	}

	id := tx.newID(nil)
	el := model.NewElement(id, ne.Type)
	el.Style = model.Merge(el.Style, ne.Style)
	el.Props = model.CloneProps(props)
	el.Name = ne.Name

	index := Append
	if ne.Index != nil {
		index = *ne.Index
	}

	if ne.ParentID != "" && tx.Has(ne.ParentID) {
		el.ParentID = ne.ParentID
		parent := tx.writable(ne.ParentID)
		parent.Children = insertAt(parent.Children, id, index)
	} else {
		if ne.ParentID != "" {
			tx.store.logger.Debug("parent not found, adding as root", "parent", ne.ParentID, "id", id)
		}
		tx.roots = insertAt(tx.roots, id, index)
	}

	tx.elements[id] = el
	tx.owned[id] = true
	tx.structural = true
	return id, nil
}

// UpdateElement applies a partial update to one element.
func (tx *Tx) UpdateElement(id string, patch ElementPatch) error {
	const op = "updateElement"
	if !tx.Has(id) {
		return model.NewNotFound(op, "element", id)
	}
	if err := checkStyleKeys(op, id, patch.Style); err != nil {
		return err
	}

	var props model.Props
	if patch.Props != nil {
		var err error
		props, err = model.PatchProps(tx.elements[id].Props, patch.Props)
		if err != nil {
			return model.NewInvalid(op, id, err.Error())
		}
	}

	el := tx.writable(id)
	if patch.Name != nil {
		el.Name = *patch.Name
	}
	if patch.Locked != nil {
		el.Locked = *patch.Locked
	}
	if patch.Hidden != nil {
		el.Hidden = *patch.Hidden
	}
	if patch.Style != nil {
		el.Style = model.Merge(el.Style, patch.Style)
	}
	if props != nil {
		el.Props = props
	}
	return nil
}

// UpdateElementStyle shallow-merges patch into the element's style.
func (tx *Tx) UpdateElementStyle(id string, patch model.Record) error {
	const op = "updateElementStyle"
	if !tx.Has(id) {
		return model.NewNotFound(op, "element", id)
	}
	if err := checkStyleKeys(op, id, patch); err != nil {
		return err
	}
	el := tx.writable(id)
	el.Style = model.Merge(el.Style, patch)
	return nil
}

// UpdateElementProps shallow-merges patch into the element's props.
func (tx *Tx) UpdateElementProps(id string, patch model.Record) error {
	const op = "updateElementProps"
	if !tx.Has(id) {
		return model.NewNotFound(op, "element", id)
	}
	props, err := model.PatchProps(tx.elements[id].Props, patch)
	if err != nil {
		return model.NewInvalid(op, id, err.Error())
	}
	tx.writable(id).Props = props
	return nil
}

// SetContent replaces the element's style and props wholesale.
// A nil props value resets to the type defaults.
func (tx *Tx) SetContent(id string, style model.Record, props model.Props) error {
	const op = "setContent"
	el, ok := tx.elements[id]
	if !ok {
		return model.NewNotFound(op, "element", id)
	}
	if err := checkStyleKeys(op, id, style); err != nil {
		return err
	}
	if props == nil {
		props = model.DefaultProps(el.Type)
	}
	if props.Kind() != el.Type {
		return model.NewInvalid(op, id, fmt.Sprintf("%s props on a %s element", props.Kind(), el.Type))
	}
	w := tx.writable(id)
	w.Style = style.Compact()
	w.Props = model.CloneProps(props)
	return nil
}

// DeleteElement removes an element and every descendant, detaches it from
// its parent (or the root list), and prunes the removed ids from the
// selection, the hover state and the instance table.
func (tx *Tx) DeleteElement(id string) error {
	const op = "deleteElement"
	el, ok := tx.elements[id]
	if !ok {
		return model.NewNotFound(op, "element", id)
	}

	if el.IsRoot() {
		tx.roots = remove(tx.roots, id)
	} else {
		parent := tx.writable(el.ParentID)
		parent.Children = remove(parent.Children, id)
	}

	gone := make(map[string]bool)
	for _, d := range tx.Descendants(id) {
		gone[d] = true
		delete(tx.elements, d)
		delete(tx.owned, d)
	}

	tx.selected = slices.DeleteFunc(tx.selected, func(s string) bool { return gone[s] })
	if gone[tx.hovered] {
		tx.hovered = ""
	}

	for _, key := range sortedKeys(tx.instances) {
		inst := tx.instances[key]
		if gone[inst.ElementID] {
			delete(tx.instances, key)
			delete(tx.ownedInstance, key)
			continue
		}
		if !referencesAny(inst, gone) {
			continue
		}
		w := tx.writableInstance(key)
		maps.DeleteFunc(w.Links, func(k, _ string) bool { return gone[k] })
		maps.DeleteFunc(w.Overrides, func(k string, _ model.Override) bool { return gone[k] })
	}

	tx.structural = true
	return nil
}

func referencesAny(inst *model.Instance, ids map[string]bool) bool {
	for k := range inst.Links {
		if ids[k] {
			return true
		}
	}
	for k := range inst.Overrides {
		if ids[k] {
			return true
		}
	}
	return false
}

// DuplicateElement deep-clones the subtree rooted at id with fresh ids and
// inserts the clone right after the source. It returns the new root id.
func (tx *Tx) DuplicateElement(id string) (string, error) {
	return tx.duplicate("duplicateElement", id, nil)
}

// PasteElement is DuplicateElement with the clone root's numeric left/top
// shifted by dx/dy.
func (tx *Tx) PasteElement(id string, dx, dy float64) (string, error) {
	return tx.duplicate("pasteElement", id, func(el *model.Element) {
		shift(el.Style, "left", dx)
		shift(el.Style, "top", dy)
	})
}

func shift(style model.Record, key string, d float64) {
	if n, ok := style[key].(model.Number); ok {
		style[key] = n + model.Number(d)
	}
}

func (tx *Tx) duplicate(op, id string, adjust func(*model.Element)) (string, error) {
	src, ok := tx.elements[id]
	if !ok {
		return "", model.NewNotFound(op, "element", id)
	}

	order := tx.Descendants(id)
	remap := make(map[string]string, len(order))
	reserved := make(map[string]bool, len(order))
	for _, old := range order {
		nid := tx.newID(reserved)
		reserved[nid] = true
		remap[old] = nid
	}

	for _, old := range order {
		clone := tx.elements[old].Clone()
		clone.ID = remap[old]
		if old == id {
			clone.ParentID = src.ParentID
			if adjust != nil {
				adjust(clone)
			}
		} else {
			clone.ParentID = remap[clone.ParentID]
		}
		for i, c := range clone.Children {
			clone.Children[i] = remap[c]
		}
		tx.elements[clone.ID] = clone
		tx.owned[clone.ID] = true
	}

	newRoot := remap[id]
	if src.IsRoot() {
		tx.roots = insertAfter(tx.roots, id, newRoot)
	} else {
		parent := tx.writable(src.ParentID)
		parent.Children = insertAfter(parent.Children, id, newRoot)
	}

	tx.duplicateInstances(order, remap)
	tx.structural = true
	return newRoot, nil
}

// duplicateInstances gives copied elements the same component provenance
// as their sources. An instance whose root was copied gets a new record; an
// instance that merely contains copied elements links the copies too.
func (tx *Tx) duplicateInstances(order []string, remap map[string]string) {
	for _, key := range sortedKeys(tx.instances) {
		inst := tx.instances[key]
		if nid, copied := remap[inst.ElementID]; copied {
			dup := model.NewInstance(nid, inst.ComponentID)
			dup.VariantID = inst.VariantID
			for k, v := range inst.PropValues {
				dup.PropValues[k] = model.CloneValue(v)
			}
			for _, old := range order {
				if tid, ok := inst.Links[old]; ok {
					dup.Links[remap[old]] = tid
				}
				if o, ok := inst.Overrides[old]; ok {
					dup.Overrides[remap[old]] = o.Clone()
				}
			}
			tx.instances[nid] = dup
			tx.ownedInstance[nid] = true
			continue
		}

		var w *model.Instance
		for _, old := range order {
			tid, ok := inst.Links[old]
			if !ok {
				continue
			}
			if w == nil {
				w = tx.writableInstance(key)
			}
			w.Links[remap[old]] = tid
			if o, ok := inst.Overrides[old]; ok {
				w.Overrides[remap[old]] = o.Clone()
			}
		}
	}
}

// MoveElement reparents id under parentID ("" moves it to the root list) at
// index among its new siblings (Append or out of range appends).
//
// Moving an element under itself or one of its descendants is rejected, as
// is moving a component-derived element out of its instance's subtree.
func (tx *Tx) MoveElement(id, parentID string, index int) error {
	const op = "moveElement"
	el, ok := tx.elements[id]
	if !ok {
		return model.NewNotFound(op, "element", id)
	}
	if parentID != "" && !tx.Has(parentID) {
		return model.NewNotFound(op, "element", parentID)
	}

	moving := tx.Descendants(id)
	if parentID != "" && slices.Contains(moving, parentID) {
		return model.NewStructural(op, id, fmt.Sprintf("cannot move under itself or its descendant %q", parentID))
	}

	for _, key := range sortedKeys(tx.instances) {
		inst := tx.instances[key]
		if slices.Contains(moving, inst.ElementID) {
			continue
		}
		if !slices.ContainsFunc(moving, inst.Derived) {
			continue
		}
		if parentID == "" || !slices.Contains(tx.Descendants(inst.ElementID), parentID) {
			return model.NewStructural(op, id, fmt.Sprintf("element belongs to instance %q and cannot leave it", inst.ElementID))
		}
	}

	if el.IsRoot() {
		tx.roots = remove(tx.roots, id)
	} else {
		old := tx.writable(el.ParentID)
		old.Children = remove(old.Children, id)
	}

	w := tx.writable(id)
	w.ParentID = parentID
	if parentID == "" {
		tx.roots = insertAt(tx.roots, id, index)
	} else {
		parent := tx.writable(parentID)
		parent.Children = insertAt(parent.Children, id, index)
	}

	tx.structural = true
	return nil
}

// InsertTree inserts a prepared subtree under parentID ("" or unknown adds
// a root). The elements must form one tree rooted at rootID with ids that
// are not yet used on the canvas.
func (tx *Tx) InsertTree(elements map[string]*model.Element, rootID, parentID string, index int) error {
	const op = "insertTree"
	if _, ok := elements[rootID]; !ok {
		return model.NewNotFound(op, "element", rootID)
	}

	staged := model.CloneElements(elements)
	staged[rootID].ParentID = ""
	if err := model.ValidateTree(staged, []string{rootID}); err != nil {
		return model.NewStructural(op, rootID, err.Error())
	}
	for _, id := range sortedKeys(staged) {
		if tx.Has(id) {
			return model.NewStructural(op, id, "element id already in use")
		}
		if err := checkStyleKeys(op, id, staged[id].Style); err != nil {
			return err
		}
	}

	if parentID != "" && tx.Has(parentID) {
		staged[rootID].ParentID = parentID
		parent := tx.writable(parentID)
		parent.Children = insertAt(parent.Children, rootID, index)
	} else {
		tx.roots = insertAt(tx.roots, rootID, index)
	}
	for id, el := range staged {
		tx.elements[id] = el
		tx.owned[id] = true
	}
	tx.structural = true
	return nil
}

func checkStyleKeys(op, id string, style model.Record) error {
	for _, k := range style.SortedKeys() {
		if !model.IsStyleKey(k) {
			return model.NewInvalid(op, id, fmt.Sprintf("unknown style key %q", k))
		}
	}
	return nil
}

func insertAt(list []string, id string, index int) []string {
	if index < 0 || index > len(list) {
		return append(list, id)
	}
	return slices.Insert(list, index, id)
}

func insertAfter(list []string, after, id string) []string {
	i := slices.Index(list, after)
	if i < 0 {
		return append(list, id)
	}
	return slices.Insert(list, i+1, id)
}

func remove(list []string, id string) []string {
	return slices.DeleteFunc(list, func(s string) bool { return s == id })
}

func sortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
