// Command evalwatch replays a YAML scenario of variable changes through an
// evaluation authority and prints every notification.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
