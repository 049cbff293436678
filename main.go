// Package main provides the entry point for O3Sim.
// O3Sim is a cycle-accurate out-of-order superscalar CPU simulator.
//
// For the full CLI, use: go run ./cmd/o3sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("O3Sim - Out-of-Order Superscalar CPU Simulator")
	fmt.Println("")
	fmt.Println("Usage: o3sim [options] <program.txt>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -width     Machine width (fetch/decode/dispatch/issue/retire per cycle)")
	fmt.Println("  -config    Path to timing configuration JSON file")
	fmt.Println("  -o         Path to write the timing report")
	fmt.Println("  -v         Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/o3sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/o3sim' instead.")
	}
}
