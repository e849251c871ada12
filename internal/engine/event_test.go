package engine

import "testing"

func TestEventInvokesInOrder(t *testing.T) {
	var e Event
	var got []string
	e.AddListener(func(c Change) { got = append(got, "first:"+c.Op.String()) })
	e.AddListener(nil)
	e.AddListener(func(c Change) { got = append(got, "second:"+c.IDs[0]) })

	if e.ListenerCount() != 2 {
		t.Fatalf("Expected 2 listeners, got %d", e.ListenerCount())
	}

	e.Invoke(Change{Op: ChangeMove, IDs: []string{"obj-1"}})
	if len(got) != 2 || got[0] != "first:move" || got[1] != "second:obj-1" {
		t.Errorf("Unexpected invocation order: %v", got)
	}

	e.RemoveAllListeners()
	e.Invoke(Change{Op: ChangeRemove, IDs: []string{"obj-1"}})
	if len(got) != 2 {
		t.Error("listeners should be gone after RemoveAllListeners")
	}
}

func TestChangeOpString(t *testing.T) {
	if ChangeDuplicate.String() != "duplicate" {
		t.Errorf("Expected 'duplicate', got '%s'", ChangeDuplicate.String())
	}
	if ChangeOp(99).String() != "unknown" {
		t.Errorf("Expected 'unknown', got '%s'", ChangeOp(99).String())
	}
}
