package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
)

var (
	ErrNotFound       = errors.New("object not found")
	ErrInvalidMove    = errors.New("invalid move target")
	ErrDuplicateID    = errors.New("duplicate object id")
	ErrInvalidKind    = errors.New("invalid object kind")
	ErrComponentIndex = errors.New("component index out of range")
)

// Position says where Move places the source relative to the target.
type Position int

const (
	Before Position = iota
	After
	IntoAsChild
)

func (p Position) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	case IntoAsChild:
		return "into"
	}
	return "unknown"
}

// DuplicateOffset is added to every position of a duplicated subtree.
var DuplicateOffset = rl.Vector2{X: 20, Y: 20}

const idPrefix = "obj-"

// Document owns the object tree of one scene. Every operation either commits
// completely or returns an error and leaves the tree untouched.
//
// Listeners on Changed run after a commit; UI state such as selection lives
// with the listener, never in the Document.
type Document struct {
	Changed Event

	scene   *Scene
	index   map[string]*GameObject
	parents map[string]string // child id -> parent id, "" for roots
	nextID  int
	repairs []string
}

// NewDocument takes ownership of s. Empty or duplicate ids found in s are
// replaced with fresh ones; Repairs reports them.
func NewDocument(s *Scene) *Document {
	if s == nil {
		s = NewScene("Main")
	}
	d := &Document{scene: s, nextID: 1}
	d.repairIDs()
	d.reindex()
	return d
}

// Scene returns the document's scene. Callers must not restructure it directly.
func (d *Document) Scene() *Scene {
	return d.scene
}

// Roots returns the top-level objects.
func (d *Document) Roots() []*GameObject {
	return d.scene.Objects
}

// Repairs lists the id fixes applied when the document was opened.
func (d *Document) Repairs() []string {
	return d.repairs
}

// Len returns the number of objects in the tree.
func (d *Document) Len() int {
	return len(d.index)
}

// Find returns the object with the given id.
func (d *Document) Find(id string) (*GameObject, bool) {
	g, ok := d.index[id]
	return g, ok
}

// ParentOf returns the parent id of id, "" for a root object.
func (d *Document) ParentOf(id string) (string, bool) {
	p, ok := d.parents[id]
	return p, ok
}

// IsDescendant reports whether id lies strictly inside ancestorID's subtree.
func (d *Document) IsDescendant(id, ancestorID string) bool {
	p, ok := d.parents[id]
	for ok && p != "" {
		if p == ancestorID {
			return true
		}
		p, ok = d.parents[p]
	}
	return false
}

// Walk visits every object depth-first, pre-order.
func (d *Document) Walk(fn func(n *GameObject) bool) {
	d.scene.Walk(fn)
}

// Create adds a new object of the given kind at the end of parentID's
// children, or at the root when parentID is empty. A child starts at its
// parent's anchor position; a root object starts at the viewport center.
func (d *Document) Create(parentID string, kind Kind) (*GameObject, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKind, kind)
	}
	var parent *GameObject
	if parentID != "" {
		p, ok := d.index[parentID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, parentID)
		}
		parent = p
	}

	obj := NewGameObject(d.allocID(nil), d.uniqueName(defaultName(kind)), kind)
	obj.Transform.Size = defaultSize(kind)
	for _, c := range defaultComponents(kind) {
		obj.AddComponent(Normalize(c))
	}

	if parent != nil {
		obj.Transform.Position = parent.Transform.Position
		parent.Children = append(parent.Children, obj)
	} else {
		vp := d.scene.Viewport
		obj.Transform.Position = rl.Vector2{X: vp.Width / 2, Y: vp.Height / 2}
		d.scene.Objects = append(d.scene.Objects, obj)
	}
	d.reindex()
	d.Changed.Invoke(Change{Op: ChangeCreate, IDs: []string{obj.ID}})
	return obj, nil
}

// Patch is a targeted update; nil fields are left unchanged.
type Patch struct {
	Name       *string
	Kind       *Kind
	Transform  *Transform
	Visible    *bool
	Tags       []string
	SetTags    bool
	Components []Component
	SetComps   bool
}

// Update applies patch to the object id. Components are normalized and
// copied, so the caller keeps no alias into the tree.
func (d *Document) Update(id string, patch Patch) error {
	g, ok := d.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if patch.Kind != nil && !patch.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, *patch.Kind)
	}

	if patch.Name != nil {
		g.Name = *patch.Name
	}
	if patch.Kind != nil {
		g.Kind = *patch.Kind
	}
	if patch.Transform != nil {
		t := *patch.Transform
		if !t.Anchor.Valid() {
			t.Anchor = g.Transform.Anchor
		}
		g.Transform = t
	}
	if patch.Visible != nil {
		g.Visible = *patch.Visible
	}
	if patch.SetTags {
		g.Tags = append(make([]string, 0, len(patch.Tags)), patch.Tags...)
	}
	if patch.SetComps {
		comps := make([]Component, 0, len(patch.Components))
		for _, c := range patch.Components {
			if c != nil {
				comps = append(comps, Normalize(c))
			}
		}
		g.Components = comps
	}
	d.Changed.Invoke(Change{Op: ChangeUpdate, IDs: []string{id}})
	return nil
}

// AddComponent appends a normalized copy of c to the object id.
func (d *Document) AddComponent(id string, c Component) error {
	g, ok := d.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if c == nil {
		return fmt.Errorf("add component to %s: nil component", id)
	}
	g.AddComponent(Normalize(c))
	d.Changed.Invoke(Change{Op: ChangeUpdate, IDs: []string{id}})
	return nil
}

// RemoveComponent removes and returns the component at index.
func (d *Document) RemoveComponent(id string, index int) (Component, error) {
	g, ok := d.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if index < 0 || index >= len(g.Components) {
		return nil, fmt.Errorf("%w: %d", ErrComponentIndex, index)
	}
	c := g.Components[index]
	g.Components = append(g.Components[:index:index], g.Components[index+1:]...)
	d.Changed.Invoke(Change{Op: ChangeUpdate, IDs: []string{id}})
	return c, nil
}

// ReplaceComponent swaps the component at index for a normalized copy of c.
func (d *Document) ReplaceComponent(id string, index int, c Component) error {
	g, ok := d.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if index < 0 || index >= len(g.Components) {
		return fmt.Errorf("%w: %d", ErrComponentIndex, index)
	}
	if c == nil {
		return fmt.Errorf("replace component on %s: nil component", id)
	}
	g.Components[index] = Normalize(c)
	d.Changed.Invoke(Change{Op: ChangeUpdate, IDs: []string{id}})
	return nil
}

// Removed is a detached subtree together with where it used to live.
type Removed struct {
	Node     *GameObject
	ParentID string
	Index    int
}

// Remove detaches id and its whole subtree and hands it to the caller.
func (d *Document) Remove(id string) (Removed, error) {
	g, ok := d.index[id]
	if !ok {
		return Removed{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	parentID := d.parents[id]
	siblings := d.siblings(parentID)
	idx := indexOf(*siblings, g)
	*siblings = removeAt(*siblings, idx)

	d.reindex()
	d.Changed.Invoke(Change{Op: ChangeRemove, IDs: g.IDs()})
	return Removed{Node: g, ParentID: parentID, Index: idx}, nil
}

// Insert places a copy of node at index among parentID's children (roots when
// parentID is empty). The index is clamped. Every id in the subtree must be
// non-empty and unused.
func (d *Document) Insert(parentID string, index int, node *GameObject) error {
	if node == nil {
		return fmt.Errorf("insert under %q: nil object", parentID)
	}
	if parentID != "" {
		if _, ok := d.index[parentID]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, parentID)
		}
	}
	seen := make(map[string]bool)
	for _, id := range node.IDs() {
		if id == "" || seen[id] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		if _, exists := d.index[id]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateID, id)
		}
		seen[id] = true
	}

	clone := node.Clone()
	siblings := d.siblings(parentID)
	*siblings = insertAt(*siblings, index, clone)
	d.reindex()
	d.Changed.Invoke(Change{Op: ChangeInsert, IDs: clone.IDs()})
	return nil
}

// Move places sourceID before or after targetID, or appends it to targetID's
// children. With IntoAsChild an empty targetID means the root list. Moving an
// object onto itself or into its own subtree is rejected. Absolute positions
// are kept, so the object does not jump on screen.
func (d *Document) Move(sourceID, targetID string, pos Position) error {
	src, ok := d.index[sourceID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, sourceID)
	}
	if sourceID == targetID {
		return fmt.Errorf("%w: %s onto itself", ErrInvalidMove, sourceID)
	}
	var target *GameObject
	if targetID != "" {
		if target, ok = d.index[targetID]; !ok {
			return fmt.Errorf("%w: %s", ErrNotFound, targetID)
		}
		if d.IsDescendant(targetID, sourceID) {
			return fmt.Errorf("%w: %s is inside %s", ErrInvalidMove, targetID, sourceID)
		}
	} else if pos != IntoAsChild {
		return fmt.Errorf("%w: %s %s root", ErrInvalidMove, sourceID, pos)
	}
	if pos != Before && pos != After && pos != IntoAsChild {
		return fmt.Errorf("%w: position %d", ErrInvalidMove, int(pos))
	}

	from := d.siblings(d.parents[sourceID])
	*from = removeAt(*from, indexOf(*from, src))

	switch pos {
	case IntoAsChild:
		if target == nil {
			d.scene.Objects = append(d.scene.Objects, src)
		} else {
			target.Children = append(target.Children, src)
		}
	case Before, After:
		to := d.siblings(d.parents[targetID])
		idx := indexOf(*to, target)
		if pos == After {
			idx++
		}
		*to = insertAt(*to, idx, src)
	}
	d.reindex()
	d.Changed.Invoke(Change{Op: ChangeMove, IDs: []string{sourceID}})
	return nil
}

// Duplicate deep-copies id's subtree with fresh ids, offsets it by
// DuplicateOffset and inserts it right after the original.
func (d *Document) Duplicate(id string) (*GameObject, error) {
	g, ok := d.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	clone := g.Clone()
	taken := make(map[string]bool)
	clone.Walk(func(n *GameObject) bool {
		n.ID = d.allocID(taken)
		taken[n.ID] = true
		return true
	})
	clone.Translate(DuplicateOffset)

	siblings := d.siblings(d.parents[id])
	*siblings = insertAt(*siblings, indexOf(*siblings, g)+1, clone)
	d.reindex()
	d.Changed.Invoke(Change{Op: ChangeDuplicate, IDs: clone.IDs()})
	return clone, nil
}

func (d *Document) siblings(parentID string) *[]*GameObject {
	if parentID == "" {
		return &d.scene.Objects
	}
	return &d.index[parentID].Children
}

func (d *Document) reindex() {
	d.index = make(map[string]*GameObject)
	d.parents = make(map[string]string)
	var visit func(g *GameObject, parentID string)
	visit = func(g *GameObject, parentID string) {
		d.index[g.ID] = g
		d.parents[g.ID] = parentID
		for _, child := range g.Children {
			visit(child, g.ID)
		}
	}
	for _, g := range d.scene.Objects {
		visit(g, "")
	}
}

// repairIDs gives every object a unique non-empty id and moves nextID past
// every numeric id already in use.
func (d *Document) repairIDs() {
	seen := make(map[string]bool)
	d.scene.Walk(func(n *GameObject) bool {
		if n.ID != "" {
			if num, err := strconv.Atoi(strings.TrimPrefix(n.ID, idPrefix)); err == nil && num >= d.nextID {
				d.nextID = num + 1
			}
		}
		return true
	})
	d.scene.Walk(func(n *GameObject) bool {
		if n.ID == "" || seen[n.ID] {
			old := n.ID
			n.ID = d.allocID(seen)
			d.repairs = append(d.repairs, fmt.Sprintf("object %q: id %q replaced by %s", n.Name, old, n.ID))
		}
		seen[n.ID] = true
		return true
	})
}

// allocID returns the next id not present in the index or in taken.
func (d *Document) allocID(taken map[string]bool) string {
	for {
		id := idPrefix + strconv.Itoa(d.nextID)
		d.nextID++
		if _, used := d.index[id]; used || taken[id] {
			continue
		}
		return id
	}
}

// uniqueName returns base, or "base (n)" with the smallest n not in use.
func (d *Document) uniqueName(base string) string {
	used := make(map[string]bool)
	d.scene.Walk(func(n *GameObject) bool {
		used[n.Name] = true
		return true
	})
	name := base
	for count := 1; used[name]; count++ {
		name = fmt.Sprintf("%s (%d)", base, count)
	}
	return name
}

func defaultName(k Kind) string {
	switch k {
	case KindRectangle:
		return "Rectangle"
	case KindCircle:
		return "Circle"
	case KindText:
		return "Text"
	case KindSprite:
		return "Sprite"
	}
	return "GameObject"
}

func defaultSize(k Kind) rl.Vector2 {
	switch k {
	case KindText:
		return rl.Vector2{X: 160, Y: 32}
	case KindSprite:
		return rl.Vector2{X: 64, Y: 64}
	case KindEmpty:
		return rl.Vector2{}
	}
	return rl.Vector2{X: 100, Y: 100}
}

func indexOf(list []*GameObject, g *GameObject) int {
	for i, c := range list {
		if c == g {
			return i
		}
	}
	return -1
}

func removeAt(list []*GameObject, i int) []*GameObject {
	copy(list[i:], list[i+1:])
	list[len(list)-1] = nil
	return list[:len(list)-1]
}

func insertAt(list []*GameObject, i int, g *GameObject) []*GameObject {
	if i < 0 {
		i = 0
	}
	if i > len(list) {
		i = len(list)
	}
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = g
	return list
}
