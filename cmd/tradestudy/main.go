package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
)

// Exit codes
const (
	exitSuccess = 0
	exitError   = 1
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			if globalFlags.IsVerbose() {
				fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			} else {
				fmt.Fprintln(os.Stderr, "Run with --verbose for stack trace")
			}
			os.Exit(exitError)
		}
	}()

	if err := Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitError)
	}

	os.Exit(exitSuccess)
}
