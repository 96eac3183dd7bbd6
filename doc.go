// Package mathlink provides a synchronous client for a symbolic computation
// kernel running as a subprocess.
//
// A Link launches the kernel on creation, sends one expression per call, skips
// the intermediate packets the kernel emits (printed text, messages, menus)
// and returns the text of the single return packet that carries the result.
//
// # Basic Usage
//
//	link, err := mathlink.NewLink(
//	    mathlink.WithKernelPath(`"/usr/local/Wolfram/Mathematica/12.1/Executables/WolframKernel" -wstp`),
//	    mathlink.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer link.Close()
//
//	result, err := link.Evaluate(ctx, "PrimeQ[17]") // "True"
//
// WithLink wraps the same steps and always releases the link:
//
//	err := mathlink.WithLink(ctx, func(l mathlink.Link) error {
//	    _, err := l.Evaluate(ctx, "GCD[12, 18]")
//	    return err
//	})
//
// # Transports
//
// Builds with the wstp tag and cgo bind the vendor link library. Other builds
// launch the kernel program directly and exchange JSON line frames over its
// standard streams; cmd/kernelstub is a kernel that speaks this framing.
//
// # Limitations
//
// Each request must be answered by a single return packet; responses made of
// several top-level packets are not assembled. Calls are serialized and at
// most one link may be open per process. A context is checked between
// packets, so a kernel that never answers blocks the caller until the link
// fails.
package mathlink
