package check

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Evaluator sends a command to the kernel and returns its result.
type Evaluator interface {
	Evaluate(ctx context.Context, command string) (string, error)
}

// Config describes one run.
type Config struct {
	Kind   Kind
	Trials int
	Bits   int
	// Rand overrides the randomness source.
	Rand io.Reader
	// Progress, when set, receives each case after it has been checked.
	Progress func(c *Case, ok bool)
}

// Mismatch records the first query whose answer differed.
type Mismatch struct {
	Case  *Case
	Query Query
	Got   string
}

// Report summarizes a run.
type Report struct {
	Kind     Kind
	Trials   int
	Passed   int
	Mismatch *Mismatch
	Elapsed  time.Duration
}

// OK reports whether every requested trial ran and matched.
func (r *Report) OK(requested int) bool {
	return r.Mismatch == nil && r.Passed == requested
}

// Run generates cases and checks them against the kernel. It stops at the
// first mismatch, which is reported rather than returned as an error. Errors
// from the link or the random source end the run.
func Run(ctx context.Context, log *slog.Logger, ev Evaluator, cfg Config) (*Report, error) {
	log = log.With("component", "check", "kind", cfg.Kind)

	if cfg.Bits < MinBits {
		return nil, fmt.Errorf("%w: %d bits, want at least %d", ErrBitsTooSmall, cfg.Bits, MinBits)
	}

	start := time.Now()
	report := &Report{Kind: cfg.Kind}

	g, ctx := errgroup.WithContext(ctx)
	cases := make(chan *Case, 16)

	gen := NewGenerator(cfg.Rand, cfg.Bits)

	// stop ends generation once a mismatch has been found.
	stop := make(chan struct{})

	g.Go(func() error {
		defer close(cases)

		for i := range cfg.Trials {
			if err := ctx.Err(); err != nil {
				return err
			}

			c, err := gen.Next(cfg.Kind, i)
			if err != nil {
				return err
			}

			select {
			case cases <- c:
			case <-stop:
				return nil
			case <-ctx.Done():
				return nil
			}
		}

		return nil
	})

	g.Go(func() error {
		for c := range cases {
			report.Trials++

			m, err := checkCase(ctx, ev, c)
			if err != nil {
				return fmt.Errorf("case %d: %w", c.Index, err)
			}

			if cfg.Progress != nil {
				cfg.Progress(c, m == nil)
			}

			if m != nil {
				log.Warn("Kernel answer mismatch", "command", m.Query.Command, "want", m.Query.Want, "got", m.Got)
				report.Mismatch = m
				close(stop)

				return nil
			}

			report.Passed++
		}

		return nil
	})

	err := g.Wait()
	report.Elapsed = time.Since(start)

	log.Info("Check finished", "trials", report.Trials, "passed", report.Passed, "elapsed", report.Elapsed)

	return report, err
}

func checkCase(ctx context.Context, ev Evaluator, c *Case) (*Mismatch, error) {
	for _, q := range c.Queries {
		got, err := ev.Evaluate(ctx, q.Command)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s: %w", q.Command, err)
		}

		if strings.TrimSpace(got) != q.Want {
			return &Mismatch{Case: c, Query: q, Got: got}, nil
		}
	}

	return nil, nil
}

// Print writes the summary in the fixed two-column layout.
func (r *Report) Print(w io.Writer, requested int) {
	if r.Mismatch != nil {
		fmt.Fprintf(w, "command                   : %s\n", r.Mismatch.Query.Command)
		fmt.Fprintf(w, "expected                  : %s\n", r.Mismatch.Query.Want)
		fmt.Fprintf(w, "kernel                    : %s\n", r.Mismatch.Got)
	}

	fmt.Fprintf(w, "\nSummary                   : %d trials\n", r.Trials)
	fmt.Fprintf(w, "result_total_is_ok        : %t\n", r.OK(requested))
	fmt.Fprintf(w, "elapsed                   : %s\n", r.Elapsed.Round(time.Millisecond))
}
