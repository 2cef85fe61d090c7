//go:build !wasm

package internal

import (
	"sync"

	"github.com/petermattis/goid"
)

// authorities maps goroutine ids to their authority for the life of the process.
var authorities sync.Map

// GetAuthority returns the authority of the calling goroutine, creating it with create on first use.
func GetAuthority(create func() *Authority) *Authority {
	gid := getGID()

	if a, ok := authorities.Load(gid); ok {
		return a.(*Authority)
	}

	a, _ := authorities.LoadOrStore(gid, create())
	return a.(*Authority)
}

func getGID() int64 {
	return goid.Get()
}
