package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	mathlink "github.com/wagiedev/mathlink-go"
	"github.com/wagiedev/mathlink-go/internal/check"
	"github.com/wagiedev/mathlink-go/internal/client"
	"github.com/wagiedev/mathlink-go/internal/config"
)

// errMismatch marks a run that completed with a failed trial.
var errMismatch = errors.New("kernel results did not match")

type flags struct {
	config  string
	kernel  string
	trials  int
	bits    int
	verbose bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:           "kernelcheck",
		Short:         "Cross-check kernel arithmetic against math/big",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&f.config, "config", "c", "", "config file (YAML)")
	root.PersistentFlags().StringVar(&f.kernel, "kernel", "", "kernel location passed as -linkname")
	root.PersistentFlags().IntVar(&f.trials, "trials", 0, "number of trials (default from config)")
	root.PersistentFlags().IntVar(&f.bits, "bits", 0, "operand width in bits (default from config)")
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "print every trial")

	for _, kind := range []check.Kind{check.KindPrime, check.KindGCD, check.KindDivMod} {
		root.AddCommand(newCheckCmd(f, kind))
	}

	return root
}

func newCheckCmd(f *flags, kind check.Kind) *cobra.Command {
	short := map[check.Kind]string{
		check.KindPrime:  "Ask PrimeQ of random primes",
		check.KindGCD:    "Compare GCD of random integer pairs",
		check.KindDivMod: "Compare QuotientRemainder of random signed pairs",
	}

	return &cobra.Command{
		Use:   string(kind),
		Short: short[kind],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return runCheck(ctx, cmd, f, kind)
		},
	}
}

func runCheck(ctx context.Context, cmd *cobra.Command, f *flags, kind check.Kind) error {
	cfg, err := config.Load(f.config)
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))

	trials := cfg.Check.Trials
	if f.trials > 0 {
		trials = f.trials
	}

	bits := cfg.Check.Bits
	if f.bits > 0 {
		bits = f.bits
	}

	kernel := cfg.KernelPath
	if f.kernel != "" {
		kernel = f.kernel
	}

	opts := []mathlink.Option{
		mathlink.WithLogger(log),
		mathlink.WithKernelPath(kernel),
		mathlink.WithEnv(cfg.Env),
		mathlink.WithMaxFrameSize(cfg.MaxFrameSize),
	}

	nat, err := client.NativeFor(cfg.Native, &config.Options{
		Logger:       log,
		Env:          cfg.Env,
		MaxFrameSize: cfg.MaxFrameSize,
	})
	if err != nil {
		return err
	}

	if nat != nil {
		opts = append(opts, mathlink.WithNative(nat))
	}

	out := cmd.OutOrStdout()

	return mathlink.WithLink(ctx, func(l mathlink.Link) error {
		report, err := check.Run(ctx, log, l, check.Config{
			Kind:   kind,
			Trials: trials,
			Bits:   bits,
			Progress: func(c *check.Case, ok bool) {
				if f.verbose {
					fmt.Fprintf(out, "run_index: %d, %s, ok: %t\n", c.Index, c.Queries[0].Command, ok)
				}
			},
		})
		if err != nil {
			return err
		}

		report.Print(out, trials)

		if !report.OK(trials) {
			return errMismatch
		}

		return nil
	}, opts...)
}
