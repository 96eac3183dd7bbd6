package config

import "runtime"

// Compiled-in kernel locations of a default Mathematica 12.1 installation.
const (
	windowsKernelPath = `"C:\Program Files\Wolfram Research\Mathematica\12.1\MathKernel.exe"`
	darwinKernelPath  = `"/Applications/Mathematica.app/Contents/MacOS/WolframKernel" -wstp`
	linuxKernelPath   = `/usr/local/Wolfram/Mathematica/12.1/Executables/WolframKernel -wstp`
)

// DefaultKernelPath returns the compiled-in kernel location for this platform.
// Windows paths are quoted because the link name is parsed as a command line.
func DefaultKernelPath() string {
	return kernelPathFor(runtime.GOOS)
}

func kernelPathFor(goos string) string {
	switch goos {
	case "windows":
		return windowsKernelPath
	case "darwin":
		return darwinKernelPath
	default:
		return linuxKernelPath
	}
}
