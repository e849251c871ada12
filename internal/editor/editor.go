package editor

import (
	"fmt"
	"scenestudio/internal/engine"
	"time"
)

// msgDuration is how long a status message stays visible.
const msgDuration = 2 * time.Second

// Editor is the UI session around one Document: selection, expanded tree
// rows, an in-progress hierarchy drag and the undo stack. The Document knows
// nothing about any of it; the session follows the Document through its
// Changed event.
type Editor struct {
	doc *engine.Document

	Selected string // object id, "" for none
	expanded map[string]bool

	// Hierarchy drag-and-drop
	dragging   bool
	dragSource string
	dropTarget string
	dropPos    engine.Position
	dropValid  bool

	// Status line
	msg     string
	msgTime time.Time
	now     func() time.Time

	undoStack []UndoState
}

func New(doc *engine.Document) *Editor {
	e := &Editor{
		doc:       doc,
		expanded:  make(map[string]bool),
		now:       time.Now,
		undoStack: make([]UndoState, 0, maxUndoStack),
	}
	doc.Changed.AddListener(e.onChange)
	return e
}

// Document returns the document being edited.
func (e *Editor) Document() *engine.Document {
	return e.doc
}

// onChange drops every reference the session holds to objects that left the
// tree.
func (e *Editor) onChange(c engine.Change) {
	if c.Op != engine.ChangeRemove {
		return
	}
	for _, id := range c.IDs {
		if e.Selected == id {
			e.Selected = ""
		}
		delete(e.expanded, id)
		if e.dragSource == id || e.dropTarget == id {
			e.CancelDrag()
		}
	}
}

// Select makes id the selection. An unknown id clears it.
func (e *Editor) Select(id string) {
	if _, ok := e.doc.Find(id); !ok {
		e.Selected = ""
		return
	}
	e.Selected = id
	// Reveal the selection in the hierarchy.
	for p, ok := e.doc.ParentOf(id); ok && p != ""; p, ok = e.doc.ParentOf(p) {
		e.expanded[p] = true
	}
}

// SelectedObject returns the selected object, or nil.
func (e *Editor) SelectedObject() *engine.GameObject {
	if g, ok := e.doc.Find(e.Selected); ok {
		return g
	}
	return nil
}

func (e *Editor) setMsg(format string, args ...any) {
	e.msg = fmt.Sprintf(format, args...)
	e.msgTime = e.now()
}

// Message returns the current status message while it is still fresh.
func (e *Editor) Message() string {
	if e.msg == "" || e.now().Sub(e.msgTime) > msgDuration {
		return ""
	}
	return e.msg
}

// CreateObject adds an object of kind. With asChild it goes under the current
// selection, otherwise at the root. The new object is selected.
func (e *Editor) CreateObject(kind engine.Kind, asChild bool) (*engine.GameObject, error) {
	parentID := ""
	if asChild {
		parentID = e.Selected
	}
	obj, err := e.doc.Create(parentID, kind)
	if err != nil {
		e.setMsg("Create failed: %v", err)
		return nil, err
	}
	e.Select(obj.ID)
	e.setMsg("Created %s", obj.Name)
	return obj, nil
}

// DeleteSelected removes the selected subtree, keeping it for undo.
func (e *Editor) DeleteSelected() error {
	if e.Selected == "" {
		return nil
	}
	removed, err := e.doc.Remove(e.Selected)
	if err != nil {
		e.setMsg("Delete failed: %v", err)
		return err
	}
	e.pushDeleteUndo(removed)
	e.setMsg("Deleted %s", removed.Node.Name)
	return nil
}

// DuplicateSelected copies the selected subtree and selects the copy.
func (e *Editor) DuplicateSelected() (*engine.GameObject, error) {
	if e.Selected == "" {
		return nil, nil
	}
	clone, err := e.doc.Duplicate(e.Selected)
	if err != nil {
		e.setMsg("Duplicate failed: %v", err)
		return nil, err
	}
	e.Select(clone.ID)
	e.setMsg("Duplicated %s", clone.Name)
	return clone, nil
}

// SetTransform replaces id's transform, recording the old one for undo.
func (e *Editor) SetTransform(id string, tr engine.Transform) error {
	g, ok := e.doc.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", engine.ErrNotFound, id)
	}
	old := g.Transform
	if err := e.doc.Update(id, engine.Patch{Transform: &tr}); err != nil {
		return err
	}
	e.pushTransformUndo(id, old)
	return nil
}

// Rename gives id a new display name.
func (e *Editor) Rename(id, name string) error {
	if err := e.doc.Update(id, engine.Patch{Name: &name}); err != nil {
		e.setMsg("Rename failed: %v", err)
		return err
	}
	return nil
}

// --- hierarchy drag-and-drop ---

// BeginDrag starts dragging id in the hierarchy.
func (e *Editor) BeginDrag(id string) {
	if _, ok := e.doc.Find(id); !ok {
		return
	}
	e.dragging = true
	e.dragSource = id
	e.dropTarget = ""
	e.dropValid = false
}

// DragOver records where the drag would land. An empty targetID with
// IntoAsChild drops at the root. Targets inside the dragged subtree are
// refused and leave no drop target.
func (e *Editor) DragOver(targetID string, pos engine.Position) bool {
	if !e.dragging {
		return false
	}
	if targetID == e.dragSource || (targetID != "" && e.doc.IsDescendant(targetID, e.dragSource)) {
		e.dropValid = false
		return false
	}
	if targetID == "" && pos != engine.IntoAsChild {
		e.dropValid = false
		return false
	}
	e.dropTarget = targetID
	e.dropPos = pos
	e.dropValid = true
	return true
}

// Dragging reports the dragged object id, if any.
func (e *Editor) Dragging() (string, bool) {
	return e.dragSource, e.dragging
}

// Drop commits the drag as a Document move.
func (e *Editor) Drop() error {
	if !e.dragging {
		return nil
	}
	source, target, pos, valid := e.dragSource, e.dropTarget, e.dropPos, e.dropValid
	e.CancelDrag()
	if !valid {
		return nil
	}

	parentID, _ := e.doc.ParentOf(source)
	index := e.siblingIndex(source, parentID)
	if err := e.doc.Move(source, target, pos); err != nil {
		e.setMsg("Move failed: %v", err)
		return err
	}
	e.pushMoveUndo(source, parentID, index)
	if g, ok := e.doc.Find(source); ok {
		e.setMsg("Moved %s", g.Name)
	}
	if pos == engine.IntoAsChild && target != "" {
		e.expanded[target] = true
	}
	return nil
}

func (e *Editor) CancelDrag() {
	e.dragging = false
	e.dragSource = ""
	e.dropTarget = ""
	e.dropValid = false
}

func (e *Editor) siblingIndex(id, parentID string) int {
	siblings := e.doc.Roots()
	if parentID != "" {
		if p, ok := e.doc.Find(parentID); ok {
			siblings = p.Children
		}
	}
	for i, g := range siblings {
		if g.ID == id {
			return i
		}
	}
	return -1
}

// --- hierarchy rows ---

// Row is one visible line of the hierarchy tree.
type Row struct {
	ID          string
	Name        string
	Depth       int
	HasChildren bool
	Expanded    bool
	Selected    bool
}

// ToggleExpanded opens or closes id's children in the hierarchy.
func (e *Editor) ToggleExpanded(id string) {
	if e.expanded[id] {
		delete(e.expanded, id)
	} else if _, ok := e.doc.Find(id); ok {
		e.expanded[id] = true
	}
}

func (e *Editor) IsExpanded(id string) bool {
	return e.expanded[id]
}

// Rows flattens the tree into the lines the hierarchy shows; children of
// collapsed objects are hidden.
func (e *Editor) Rows() []Row {
	var rows []Row
	var visit func(g *engine.GameObject, depth int)
	visit = func(g *engine.GameObject, depth int) {
		open := e.expanded[g.ID]
		rows = append(rows, Row{
			ID:          g.ID,
			Name:        g.Name,
			Depth:       depth,
			HasChildren: len(g.Children) > 0,
			Expanded:    open,
			Selected:    g.ID == e.Selected,
		})
		if !open {
			return
		}
		for _, child := range g.Children {
			visit(child, depth+1)
		}
	}
	for _, g := range e.doc.Roots() {
		visit(g, 0)
	}
	return rows
}
