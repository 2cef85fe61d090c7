package internal

import "slices"

type ListenerID uint64

// BatchListener is told when a batch starts (true) and ends (false).
type BatchListener func(batching bool)

type listenerEntry struct {
	id ListenerID
	fn BatchListener
}

type ListenerList struct {
	next    ListenerID
	entries []listenerEntry
}

func NewListenerList() *ListenerList {
	return &ListenerList{
		entries: make([]listenerEntry, 0),
	}
}

func (l *ListenerList) Add(fn BatchListener) ListenerID {
	l.next++
	l.entries = append(l.entries, listenerEntry{id: l.next, fn: fn})

	return l.next
}

func (l *ListenerList) Remove(id ListenerID) bool {
	i := slices.IndexFunc(l.entries, func(e listenerEntry) bool { return e.id == id })
	if i < 0 {
		return false
	}

	l.entries = slices.Delete(l.entries, i, i+1)
	return true
}

func (l *ListenerList) Len() int {
	return len(l.entries)
}

// Run calls fn for every listener registered when Run started.
func (l *ListenerList) Run(fn func(ListenerID, BatchListener)) {
	// cloning to avoid mutation during iteration
	entries := slices.Clone(l.entries)

	for _, e := range entries {
		fn(e.id, e.fn)
	}
}
