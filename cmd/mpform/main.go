package main

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

func main() {
	isTerminal := func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	if err := newRootCmd(os.Stdout, os.Stderr, isTerminal).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
