package internal

// Metrics receives counts of what the authority does.
type Metrics interface {
	PredicateEvaluated()
	PredicateFailed()
	CallbackDelivered()
	CallbackFailed()
	LogSuppressed()
	BatchCompleted()
}

type nopMetrics struct{}

func (nopMetrics) PredicateEvaluated() {}
func (nopMetrics) PredicateFailed()    {}
func (nopMetrics) CallbackDelivered()  {}
func (nopMetrics) CallbackFailed()     {}
func (nopMetrics) LogSuppressed()      {}
func (nopMetrics) BatchCompleted()     {}
