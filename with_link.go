package mathlink

import (
	"context"
	"fmt"
)

// WithLink manages link lifecycle with automatic cleanup.
//
// This helper creates a link with the provided options, executes the callback
// function, and ensures the link is closed when done. If the callback returns
// an error, it is returned to the caller.
//
// Example usage:
//
//	err := mathlink.WithLink(ctx, func(l mathlink.Link) error {
//	    result, err := l.Evaluate(ctx, "PrimeQ[17]")
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(result)
//	    return nil
//	},
//	    mathlink.WithLogger(log),
//	)
func WithLink(ctx context.Context, fn func(Link) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	l, err := NewLink(opts...)
	if err != nil {
		return fmt.Errorf("failed to open link: %w", err)
	}

	defer func() {
		if closeErr := l.Close(); closeErr != nil {
			log.Warn("failed to close link", "error", closeErr)
		}
	}()

	return fn(l)
}
