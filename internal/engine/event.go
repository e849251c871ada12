package engine

// ChangeOp names the kind of structural edit a Document performed.
type ChangeOp int

const (
	ChangeCreate ChangeOp = iota
	ChangeUpdate
	ChangeRemove
	ChangeInsert
	ChangeMove
	ChangeDuplicate
)

func (op ChangeOp) String() string {
	switch op {
	case ChangeCreate:
		return "create"
	case ChangeUpdate:
		return "update"
	case ChangeRemove:
		return "remove"
	case ChangeInsert:
		return "insert"
	case ChangeMove:
		return "move"
	case ChangeDuplicate:
		return "duplicate"
	}
	return "unknown"
}

// Change describes one committed edit. IDs lists every affected object; for
// removals that is the whole removed subtree.
type Change struct {
	Op  ChangeOp
	IDs []string
}

// Event is a multi-cast notification. Listeners run synchronously, in the
// order they were added.
type Event struct {
	listeners []func(Change)
}

// AddListener adds a callback to be invoked when the event fires.
func (e *Event) AddListener(callback func(Change)) {
	if callback == nil {
		return
	}
	e.listeners = append(e.listeners, callback)
}

// RemoveAllListeners clears all listeners.
func (e *Event) RemoveAllListeners() {
	e.listeners = nil
}

// Invoke calls all registered listeners.
func (e *Event) Invoke(c Change) {
	for _, listener := range e.listeners {
		listener(c)
	}
}

// ListenerCount returns the number of registered listeners.
func (e *Event) ListenerCount() int {
	return len(e.listeners)
}
