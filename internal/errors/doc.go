// Package errors defines error types for the kernel link.
//
// This package provides structured error types that wrap the different failure
// scenarios of a link exchange: acquiring the environment and link, sending a
// request, skipping packets, and reading the result. All error types support
// error unwrapping and can be checked using errors.Is, errors.As, and errors.AsType.
package errors
