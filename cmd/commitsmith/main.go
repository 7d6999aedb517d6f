// Package main is the entry point for the commitsmith CLI application.
// commitsmith generates conventional commit messages from staged changes
// with an LLM provider and commits them.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/commitsmith/commitsmith/internal/cmd"
)

// Version information - set via ldflags during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	// After the first interrupt, a second one kills the process.
	context.AfterFunc(ctx, stop)
	code := cmd.Execute(ctx, os.Args[1:], cmd.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}, cmd.Streams{
		In:  os.Stdin,
		Out: os.Stdout,
		Err: os.Stderr,
	})
	stop()
	os.Exit(code)
}
