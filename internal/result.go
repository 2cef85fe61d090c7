package internal

import "strconv"

// Result is an optional boolean.
// An unset result means "not evaluated yet" for a cache, and "first observation"
// or "removed" when passed to a callback.
type Result struct {
	value bool
	ok    bool
}

// None is the unset result.
var None = Result{}

func Some(v bool) Result {
	return Result{value: v, ok: true}
}

func (r Result) Get() (bool, bool) {
	return r.value, r.ok
}

func (r Result) IsSet() bool {
	return r.ok
}

// Bool returns the value, or false when unset.
func (r Result) Bool() bool {
	return r.ok && r.value
}

func (r Result) String() string {
	if !r.ok {
		return "none"
	}

	return strconv.FormatBool(r.value)
}
