package evaluation

import "github.com/AnatoleLucet/evaluation/internal"

// Default returns the calling goroutine's authority, created on first use
// with an empty MapContext and the default options.
// The authority is never released: it lives until the process exits, even after
// its goroutine returns. Goroutines that come and go should use NewAuthority.
func Default() *Authority {
	return &Authority{
		engine: internal.GetAuthority(func() *internal.Authority {
			return newEngine(defaultOptions())
		}),
	}
}
