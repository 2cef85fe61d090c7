//go:build wasm

package internal

import "sync"

var once sync.Once
var globalAuthority *Authority

func GetAuthority(create func() *Authority) *Authority {
	once.Do(func() {
		globalAuthority = create()
	})

	return globalAuthority
}
