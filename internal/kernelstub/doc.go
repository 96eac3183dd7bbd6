// Package kernelstub implements a small stand-in kernel that speaks the wire
// framing over a pair of streams.
//
// It understands the expression subset used by the cross-check drivers:
// integers, symbols, lists, and the functions PrimeQ, GCD, Quotient, Mod,
// QuotientRemainder, First, Last and Print. Integer arithmetic uses floor
// division, so remainders take the sign of the divisor. Print emits a
// TextPacket before the return packet, and evaluation problems emit a
// MessagePacket and a TextPacket, so clients see the same interleaving of
// intermediate packets a real kernel produces.
package kernelstub
