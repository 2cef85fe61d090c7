package internal

import "container/list"

const (
	DefaultThrottleCapacity  = 100
	DefaultThrottleThreshold = 3
)

// LogThrottle counts repeats of messages and tells the caller when to stop logging them.
// At most capacity messages are tracked; the least recently recorded one is
// forgotten first, so it starts over if it shows up again.
type LogThrottle struct {
	capacity  int
	threshold int

	counts map[string]*list.Element
	order  *list.List // front = most recent
}

type throttleEntry struct {
	message string
	count   int
}

func NewLogThrottle(capacity, threshold int) *LogThrottle {
	if capacity <= 0 {
		capacity = DefaultThrottleCapacity
	}
	if threshold <= 0 {
		threshold = DefaultThrottleThreshold
	}

	return &LogThrottle{
		capacity:  capacity,
		threshold: threshold,
		counts:    make(map[string]*list.Element, capacity),
		order:     list.New(),
	}
}

// Record counts one occurrence of message.
// log is true while the count is within the threshold; suppressedNow is true
// exactly once, when the count reaches the threshold.
func (t *LogThrottle) Record(message string) (log, suppressedNow bool) {
	elem, ok := t.counts[message]
	if ok {
		t.order.MoveToFront(elem)
	} else {
		if t.order.Len() >= t.capacity {
			t.evictOldest()
		}
		elem = t.order.PushFront(&throttleEntry{message: message})
		t.counts[message] = elem
	}

	entry := elem.Value.(*throttleEntry)
	if entry.count <= t.threshold {
		// stop counting once suppressed
		entry.count++
	}

	return entry.count <= t.threshold, entry.count == t.threshold
}

// Len returns the number of tracked messages.
func (t *LogThrottle) Len() int {
	return t.order.Len()
}

func (t *LogThrottle) evictOldest() {
	oldest := t.order.Back()
	if oldest == nil {
		return
	}

	t.order.Remove(oldest)
	delete(t.counts, oldest.Value.(*throttleEntry).message)
}
