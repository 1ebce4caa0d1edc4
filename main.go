package main

import (
	"context"
	"errors"
	"os"

	"qualisync/cmd"
	domainsync "qualisync/internal/domain/sync"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		// A run that completed but had failing targets is distinguishable
		// from a fatal startup error so wrapping tooling can act on it.
		if errors.Is(err, domainsync.ErrTargetsFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
