// Package cli turns a link argument vector into a kernel command line.
//
// The link library receives its connection parameters as a C-style argument
// vector:
//
//	-linkname <kernel location> -linkmode launch
//
// In launch mode the link name is itself a command line: the kernel program,
// optionally quoted, followed by the kernel's own arguments. This package
// provides:
//
//	spec, err := cli.ParseLinkArgs(argv)      // flags -> LaunchSpec
//	words, err := cli.SplitCommandLine(name)  // quoted command line -> words
//	env := cli.BuildEnvironment(extra)        // process environment
package cli
