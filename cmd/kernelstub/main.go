// Command kernelstub is a small kernel that answers PrimeQ, GCD,
// QuotientRemainder and a few list functions over JSON line frames on
// stdin/stdout. Point a link at it to try the client without a real kernel:
//
//	kernelcheck gcd --kernel "$(go env GOPATH)/bin/kernelstub"
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/wagiedev/mathlink-go/internal/config"
	"github.com/wagiedev/mathlink-go/internal/kernelstub"
)

func main() {
	level := slog.LevelWarn
	if v := os.Getenv("MATHLINK_LOG_LEVEL"); v != "" {
		parsed, err := config.ParseLevel(v)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}

		level = parsed
	}

	// Stdout carries frames, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := kernelstub.Serve(ctx, log, os.Stdin, os.Stdout); err != nil {
		log.Error("Stub kernel stopped", "error", err)
		os.Exit(1)
	}
}
