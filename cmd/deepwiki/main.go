package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charles1614/deepwiki-sub003/internal/cli"
	"github.com/charles1614/deepwiki-sub003/pkg/deepwiki"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(deepwiki.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(deepwiki.ExitCodeForError(err))
	}
}
