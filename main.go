// file: main.go
// version: 2.0.0
// guid: 15dea18c-cacb-4bf7-a6c3-1167efd43827

package main

import (
	"fmt"
	"os"

	"github.com/jdfalk/newsdeck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
