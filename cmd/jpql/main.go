// Package main provides the jpql command-line tool.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/leapstack-labs/leapjpql/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
