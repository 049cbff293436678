// Command reportcheck compares a timing report against a golden copy
// and prints a unified diff when they differ.
//
// Usage:
//
//	go run ./cmd/reportcheck <golden.txt> <report.txt>
//
// The command exits 0 when the reports match and 1 otherwise, which
// makes it usable as a regression gate in CI scripts:
//
//	go run ./cmd/o3sim -o report.txt prog.txt && \
//	    go run ./cmd/reportcheck golden/prog.txt report.txt
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pmezard/go-difflib/difflib"
)

func main() {
	quiet := flag.Bool("q", false, "suppress the diff, only set the exit code")
	flag.Parse()

	if flag.NArg() != 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <golden.txt> <report.txt>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	goldenPath := flag.Arg(0)
	reportPath := flag.Arg(1)

	diff, err := compareReports(goldenPath, reportPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if diff == "" {
		fmt.Printf("Reports match (%s)\n", reportPath)
		return
	}

	if !*quiet {
		fmt.Printf("Report differs from %s:\n%s", goldenPath, diff)
	}
	os.Exit(1)
}

// compareReports returns an empty string when the two files are
// identical, and a unified diff otherwise.
func compareReports(goldenPath, reportPath string) (string, error) {
	golden, err := os.ReadFile(goldenPath)
	if err != nil {
		return "", fmt.Errorf("failed to read golden report: %w", err)
	}
	report, err := os.ReadFile(reportPath)
	if err != nil {
		return "", fmt.Errorf("failed to read report: %w", err)
	}

	if string(golden) == string(report) {
		return "", nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(golden)),
		B:        difflib.SplitLines(string(report)),
		FromFile: goldenPath,
		ToFile:   reportPath,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff reports: %w", err)
	}
	return diff, nil
}
