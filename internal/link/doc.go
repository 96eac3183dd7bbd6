// Package link manages the lifecycle of the environment and link handles.
//
// A Manager owns at most one environment and one link. Opening is idempotent,
// closing is idempotent, and any partial acquisition failure leaves the manager
// fully closed. Only one Manager per process may hold an open link at a time.
//
// Every operation on the open link goes through Manager.Do, which serializes
// callers so that a conversation with the kernel is never interleaved.
package link
