package o3

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// WriteReport writes the timing report: one line per program instruction, in
// program order, carrying the seven stage cycles separated by single spaces:
//
//	<fetch> <decode> <dispatch> <issue> <execute> <complete> <retire>
//
// A stage an instruction never reached reports -1.
func (c *CPU) WriteReport(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, inst := range c.program {
		t := inst.Timing
		_, err := fmt.Fprintf(bw, "%d %d %d %d %d %d %d\n",
			t.Fetch, t.Decode, t.Dispatch, t.Issue, t.Execute, t.Complete, t.Retire)
		if err != nil {
			return fmt.Errorf("failed to write timing report: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write timing report: %w", err)
	}
	return nil
}

// SaveReport writes the timing report to a file. A report that cannot be
// produced makes the whole run worthless, so callers treat the error as
// fatal.
func (c *CPU) SaveReport(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := c.WriteReport(f); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}
	return nil
}
