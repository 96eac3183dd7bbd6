// Command kernelcheck cross-checks kernel arithmetic against math/big.
//
//	kernelcheck prime  --trials 8192 --bits 512
//	kernelcheck gcd    --trials 1024
//	kernelcheck divmod --kernel '"/opt/Wolfram/WolframKernel" -wstp'
//
// Each run stops at the first mismatch and exits non-zero when any trial
// failed.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
