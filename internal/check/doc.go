// Package check cross-checks kernel arithmetic against math/big.
//
// A run generates random wide integers, asks the kernel a question about
// each (PrimeQ, GCD, or the two halves of QuotientRemainder), and compares
// the answers with locally computed values. Generation and evaluation run in
// a small pipeline; the run stops at the first mismatch.
package check
