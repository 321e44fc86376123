package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/steven3002/feedpager-go/feed"
	"github.com/steven3002/feedpager-go/internal/devcli"
	"github.com/steven3002/feedpager-go/internal/devcli/commands"
)

// Entry point for the feedpager CLI.
func main() {
	ctx, cancel := devcli.Ctx(context.Background())
	err := commands.NewRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	switch {
	case errors.Is(err, feed.ErrNotFound):
		os.Exit(3)
	case errors.Is(err, context.Canceled):
		os.Exit(130)
	}
	os.Exit(1)
}
