package editor

import "scenestudio/internal/engine"

const maxUndoStack = 50

// UndoActionType represents the type of action that can be undone
type UndoActionType int

const (
	UndoTransform UndoActionType = iota
	UndoDelete
	UndoMove
)

// UndoState captures state for undo operations
type UndoState struct {
	Type      UndoActionType
	ID        string
	Transform engine.Transform

	// Delete and move undo put the subtree back at ParentID/Index.
	Removed  engine.Removed
	ParentID string
	Index    int
}

func (e *Editor) pushTransformUndo(id string, old engine.Transform) {
	e.addUndoState(UndoState{Type: UndoTransform, ID: id, Transform: old})
}

func (e *Editor) pushDeleteUndo(removed engine.Removed) {
	e.addUndoState(UndoState{Type: UndoDelete, ID: removed.Node.ID, Removed: removed})
}

func (e *Editor) pushMoveUndo(id, parentID string, index int) {
	e.addUndoState(UndoState{Type: UndoMove, ID: id, ParentID: parentID, Index: index})
}

func (e *Editor) addUndoState(state UndoState) {
	// Cap stack size
	if len(e.undoStack) >= maxUndoStack {
		e.undoStack = e.undoStack[1:]
	}
	e.undoStack = append(e.undoStack, state)
}

// UndoDepth returns the number of undoable actions.
func (e *Editor) UndoDepth() int {
	return len(e.undoStack)
}

// Undo reverts the last recorded action. It reports false when there was
// nothing to undo or the action no longer applies.
func (e *Editor) Undo() bool {
	if len(e.undoStack) == 0 {
		return false
	}
	state := e.undoStack[len(e.undoStack)-1]
	e.undoStack = e.undoStack[:len(e.undoStack)-1]

	switch state.Type {
	case UndoTransform:
		tr := state.Transform
		if err := e.doc.Update(state.ID, engine.Patch{Transform: &tr}); err != nil {
			e.setMsg("Nothing to undo: %v", err)
			return false
		}
		e.Select(state.ID)

	case UndoDelete:
		r := state.Removed
		parentID := r.ParentID
		if _, ok := e.doc.Find(parentID); parentID != "" && !ok {
			parentID = "" // parent is gone; restore at the root
		}
		if err := e.doc.Insert(parentID, r.Index, r.Node); err != nil {
			e.setMsg("Restore failed: %v", err)
			return false
		}
		e.Select(r.Node.ID)
		e.setMsg("Restored %s", r.Node.Name)

	case UndoMove:
		expanded := e.expandedIn(state.ID)
		removed, err := e.doc.Remove(state.ID)
		if err != nil {
			e.setMsg("Nothing to undo: %v", err)
			return false
		}
		parentID := state.ParentID
		if _, ok := e.doc.Find(parentID); parentID != "" && !ok {
			parentID = ""
		}
		if err := e.doc.Insert(parentID, state.Index, removed.Node); err != nil {
			// Put it back where it was so nothing is lost.
			_ = e.doc.Insert(removed.ParentID, removed.Index, removed.Node)
			e.restoreExpanded(expanded)
			e.setMsg("Undo move failed: %v", err)
			return false
		}
		e.restoreExpanded(expanded)
		e.Select(state.ID)
	}
	return true
}

// expandedIn returns the expanded ids in the subtree rooted at id. Moving a
// subtree goes through Remove, which forgets them.
func (e *Editor) expandedIn(id string) []string {
	g, ok := e.doc.Find(id)
	if !ok {
		return nil
	}
	var ids []string
	g.Walk(func(n *engine.GameObject) bool {
		if e.expanded[n.ID] {
			ids = append(ids, n.ID)
		}
		return true
	})
	return ids
}

func (e *Editor) restoreExpanded(ids []string) {
	for _, id := range ids {
		e.expanded[id] = true
	}
}
