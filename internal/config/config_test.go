package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKernelPathFor(t *testing.T) {
	require.Equal(t,
		`"C:\Program Files\Wolfram Research\Mathematica\12.1\MathKernel.exe"`,
		kernelPathFor("windows"))
	require.Contains(t, kernelPathFor("darwin"), "WolframKernel")
	require.Contains(t, kernelPathFor("linux"), "WolframKernel")
	require.Equal(t, kernelPathFor("linux"), kernelPathFor("freebsd"))
}

func TestOptions_Resolved(t *testing.T) {
	var nilOpts *Options

	require.Equal(t, DefaultKernelPath(), nilOpts.ResolvedKernelPath())
	require.Equal(t, DefaultMaxFrameSize, nilOpts.ResolvedMaxFrameSize())
	require.Equal(t, DefaultCloseTimeout, nilOpts.ResolvedCloseTimeout())

	opts := &Options{
		KernelPath:   "/opt/math",
		MaxFrameSize: 4096,
		CloseTimeout: time.Second,
	}

	require.Equal(t, "/opt/math", opts.ResolvedKernelPath())
	require.Equal(t, 4096, opts.ResolvedMaxFrameSize())
	require.Equal(t, time.Second, opts.ResolvedCloseTimeout())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("MATHLINK_KERNEL_PATH", "")
	t.Setenv("MATHLINK_LOG_LEVEL", "")
	t.Setenv("MATHLINK_NATIVE", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	require.Equal(t, DefaultKernelPath(), cfg.KernelPath)
	require.Equal(t, NativeAuto, cfg.Native)
	require.Equal(t, slog.LevelWarn, cfg.Level())
	require.Equal(t, 1024, cfg.Check.Trials)
	require.Equal(t, 256, cfg.Check.Bits)
}

func TestLoad_File(t *testing.T) {
	t.Setenv("MATHLINK_KERNEL_PATH", "")
	t.Setenv("MATHLINK_LOG_LEVEL", "")
	t.Setenv("MATHLINK_NATIVE", "")

	path := filepath.Join(t.TempDir(), "mathlink.yaml")
	err := os.WriteFile(path, []byte(`
kernel_path: /opt/Wolfram/WolframKernel -wstp
native: subprocess
log_level: debug
env:
  WOLFRAM_USERBASE: /tmp/userbase
check:
  trials: 10
  bits: 512
`), 0o600)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "/opt/Wolfram/WolframKernel -wstp", cfg.KernelPath)
	require.Equal(t, NativeSubprocess, cfg.Native)
	require.Equal(t, slog.LevelDebug, cfg.Level())
	require.Equal(t, "/tmp/userbase", cfg.Env["WOLFRAM_USERBASE"])
	require.Equal(t, 10, cfg.Check.Trials)
	require.Equal(t, 512, cfg.Check.Bits)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MATHLINK_KERNEL_PATH", "/env/kernel")
	t.Setenv("MATHLINK_LOG_LEVEL", "error")
	t.Setenv("MATHLINK_NATIVE", "wstp")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "/env/kernel", cfg.KernelPath)
	require.Equal(t, NativeWSTP, cfg.Native)
	require.Equal(t, slog.LevelError, cfg.Level())
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("MATHLINK_KERNEL_PATH", "")
	t.Setenv("MATHLINK_LOG_LEVEL", "")
	t.Setenv("MATHLINK_NATIVE", "")

	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "kernel_path: [unterminated"},
		{"bad native", "native: carrier-pigeon"},
		{"bad level", "log_level: loud"},
		{"negative trials", "check:\n  trials: -1"},
		{"zero bits", "check:\n  bits: 0"},
		{"one bit", "check:\n  bits: 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("WARNING")
	require.NoError(t, err)
	require.Equal(t, slog.LevelWarn, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	require.Equal(t, slog.LevelInfo, level)

	_, err = ParseLevel("verbose")
	require.Error(t, err)
}
