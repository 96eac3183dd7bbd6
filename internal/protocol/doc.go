// Package protocol implements the command channel to the kernel.
//
// A Channel executes exactly one request/response cycle per Send call:
//
//  1. The command is framed as EvaluatePacket[ToExpression["<command>"]] and
//     the packet is ended. A statement terminator is appended first when the
//     caller does not want the result echoed back.
//  2. Packets are read and discarded until the return packet arrives or the
//     stream ends (the packet-skip loop). An error indicator raised while
//     discarding a packet abandons the request.
//  3. The return packet's string payload is copied out and released back to
//     the link.
//
// Only single-packet results are supported: a result spread over several
// top-level packets resolves to whatever the first return packet carries.
//
// Example usage:
//
//	mgr := link.NewManager(log, nat, location)
//	if err := mgr.Open(""); err != nil {
//	    return err
//	}
//	defer mgr.Close()
//
//	ch := protocol.NewChannel(log, mgr)
//	answer, err := ch.Send(ctx, "PrimeQ[17]", true)
package protocol
