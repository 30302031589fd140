// Command kernelgrad lists the differentiable kernels and checks them against
// the reference autodiff engine.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := NewCLI().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
