// Package results persists simulation results in an embedded key-value
// store, keyed by a fingerprint of the program and machine shape so that
// runs of the same workload can be compared across configurations.
package results

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"golang.org/x/crypto/blake2b"

	"github.com/sarchlab/o3sim/insts"
	"github.com/sarchlab/o3sim/timing/o3"
)

// Record describes one finished simulation run.
type Record struct {
	Fingerprint  string    `json:"fingerprint"`
	Program      string    `json:"program"`
	Config       o3.Config `json:"config"`
	Instructions int       `json:"instructions"`
	Cycles       int       `json:"cycles"`
	IPC          float64   `json:"ipc"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewRecord builds a record from a finished core.
func NewRecord(program string, ops []insts.Operation, cpu *o3.CPU) Record {
	stats := cpu.Stats()
	return Record{
		Fingerprint:  Fingerprint(ops, cpu.Config()),
		Program:      program,
		Config:       cpu.Config(),
		Instructions: stats.Retired,
		Cycles:       stats.Cycles,
		IPC:          stats.IPC(),
		Timestamp:    time.Now(),
	}
}

// Fingerprint hashes a program together with the machine shape that ran it.
// Identical workloads on identical machines produce identical fingerprints.
func Fingerprint(ops []insts.Operation, cfg o3.Config) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "%d %d %d %d %d %d\n",
		cfg.ArchRegs, cfg.PhysRegs, cfg.ROBEntries,
		cfg.Width, cfg.LSQEntries, cfg.IssuePolicy)
	for _, op := range ops {
		fmt.Fprintf(&b, "%d %d %d %d\n", op.Kind, op.Src1, op.Src2, op.Dst)
	}

	sum := blake2b.Sum256(b.Bytes())
	return hex.EncodeToString(sum[:])
}

// Store is a results archive backed by a Pebble database.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) a results store at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open results store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put archives a record. Records with the same fingerprint are kept side by
// side, ordered by timestamp.
func (s *Store) Put(rec Record) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	key := runKey(rec.Fingerprint, rec.Timestamp)
	if err := s.db.Set(key, data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// Runs returns every archived record for one fingerprint, oldest first.
func (s *Store) Runs(fingerprint string) ([]Record, error) {
	prefix := []byte("run/" + fingerprint + "/")
	return s.scan(prefix, keyUpperBound(prefix))
}

// List returns every archived record, grouped by fingerprint and ordered by
// timestamp within a group.
func (s *Store) List() ([]Record, error) {
	prefix := []byte("run/")
	return s.scan(prefix, keyUpperBound(prefix))
}

func (s *Store) scan(lower, upper []byte) ([]Record, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create results iterator: %w", err)
	}
	defer iter.Close()

	var records []Record
	for iter.First(); iter.Valid(); iter.Next() {
		val, err := iter.ValueAndErr()
		if err != nil {
			return nil, fmt.Errorf("failed to read result: %w", err)
		}

		var rec Record
		if err := json.Unmarshal(val, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode result %q: %w", iter.Key(), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// runKey builds "run/<fingerprint>/<nanos>" with the timestamp zero-padded
// so lexicographic key order is chronological.
func runKey(fingerprint string, ts time.Time) []byte {
	return []byte(fmt.Sprintf("run/%s/%020d", fingerprint, ts.UnixNano()))
}

// keyUpperBound returns the smallest key greater than every key with the
// given prefix.
func keyUpperBound(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
