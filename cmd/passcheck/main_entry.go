//go:build !testcoverage

package main

import (
	"fmt"
	"os"
)

func main() {
	err := run(os.Args, DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "passcheck: %v\n", err)
	}
	os.Exit(exitCode(err))
}
