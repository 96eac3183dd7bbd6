// Package subprocess provides a link transport that launches the kernel as a
// child process.
//
// Requests are framed as JSON lines on the child's stdin and packets are read
// as JSON lines from its stdout (see internal/wire). The transport implements
// the native link surface, so the protocol layer drives it with the same call
// sequence it uses against the vendor library. Stderr is drained in the
// background, buffered for diagnostics, and streamed to an optional callback.
package subprocess
