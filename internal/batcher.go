package internal

type Batcher struct {
	// each nested change increases the depth by 1
	// the batch ends when the outermost change is complete
	depth int
}

func NewBatcher() *Batcher {
	return &Batcher{
		depth: 0,
	}
}

func (b *Batcher) IsBatching() bool {
	return b.depth > 0
}

// Begin reports whether this call opened the outermost batch.
func (b *Batcher) Begin() bool {
	b.depth++
	return b.depth == 1
}

// End reports whether this call closed the outermost batch.
// Unmatched calls are ignored.
func (b *Batcher) End() bool {
	if b.depth == 0 {
		return false
	}

	b.depth--
	return b.depth == 0
}

func (b *Batcher) Batch(fn, onStart, onComplete func()) {
	if b.Begin() && onStart != nil {
		onStart()
	}
	defer func() {
		if b.End() && onComplete != nil {
			onComplete()
		}
	}()

	fn()
}

// BeginChange opens a change for the given names.
// Only the outermost change notifies batch listeners.
func (a *Authority) BeginChange(names []string) {
	if a.batcher.Begin() {
		a.batchStarted(names)
	}
}

// EndChange closes a change opened with BeginChange.
func (a *Authority) EndChange(names []string) {
	if a.batcher.End() {
		a.batchEnded(names)
	}
}

func (a *Authority) batchStarted(names []string) {
	a.logger.Debug("batch started", "variables", names)
	a.emitBatch(true)
}

func (a *Authority) batchEnded(names []string) {
	a.logger.Debug("batch ended", "variables", names)
	a.metrics.BatchCompleted()
	a.emitBatch(false)
}
