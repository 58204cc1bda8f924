// Command vcdtrace is a thin file-I/O driver around package vcdtrace: it
// owns every os.Open/Read call and hands the core byte chunks plus an
// absolute file offset, exactly as spec.md §6 requires ("the core never
// opens files itself").
package main

import (
	"fmt"
	"os"

	"github.com/readm/vcdtrace/cmd/vcdtrace/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
