// Command mathlink-mcp serves a kernel link as MCP tools over stdio.
//
// Tools:
//   - evaluate: evaluate an expression and return its result
//   - link_status: report whether the kernel link is open
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	mathlink "github.com/wagiedev/mathlink-go"
	"github.com/wagiedev/mathlink-go/internal/client"
	"github.com/wagiedev/mathlink-go/internal/config"
	"github.com/wagiedev/mathlink-go/internal/mcp"
)

const (
	serverName    = "mathlink"
	serverVersion = "0.1.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath, kernel string

	cmd := &cobra.Command{
		Use:           "mathlink-mcp",
		Short:         "Serve a kernel link as MCP tools over stdio",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return serve(ctx, configPath, kernel)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file (YAML)")
	cmd.Flags().StringVar(&kernel, "kernel", "", "kernel location passed as -linkname")

	return cmd
}

func serve(ctx context.Context, configPath, kernel string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Stdout carries the MCP stream.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))

	if kernel == "" {
		kernel = cfg.KernelPath
	}

	stderr := func(line string) { log.Debug("kernel stderr", "line", line) }

	opts := []mathlink.Option{
		mathlink.WithLogger(log),
		mathlink.WithKernelPath(kernel),
		mathlink.WithEnv(cfg.Env),
		mathlink.WithMaxFrameSize(cfg.MaxFrameSize),
		mathlink.WithStderr(stderr),
	}

	nat, err := client.NativeFor(cfg.Native, &config.Options{
		Logger:       log,
		Env:          cfg.Env,
		MaxFrameSize: cfg.MaxFrameSize,
		Stderr:       stderr,
	})
	if err != nil {
		return err
	}

	if nat != nil {
		opts = append(opts, mathlink.WithNative(nat))
	}

	return mathlink.WithLink(ctx, func(l mathlink.Link) error {
		server := mcp.NewServer(log, serverName, serverVersion)
		mcp.RegisterLinkTools(server, l)

		return server.Run(ctx, &mcpsdk.StdioTransport{})
	}, opts...)
}
