package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/plotcheck/internal/canon"
	"github.com/roach88/plotcheck/internal/verify"
)

// GoldenDir is the default fixture directory for golden snapshots.
const GoldenDir = "testdata/golden"

// Snapshot returns the golden representation of res: the canonical JSON of
// its result map on the first line, followed by the uncolored text report.
func Snapshot(res *verify.Result) ([]byte, error) {
	data, err := canon.Marshal(res.Map())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Write(data)
	buf.WriteByte('\n')
	if err := WriteText(&buf, &Report{Result: res}, TextOptions{}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// AssertGolden compares the snapshot of result against
// testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *verify.Result) {
	t.Helper()

	snap, err := Snapshot(result)
	if err != nil {
		t.Fatalf("failed to snapshot %s: %v", name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snap)
}

// ErrGoldenMismatch is returned by CompareGolden when a snapshot differs from
// its golden file.
var ErrGoldenMismatch = errors.New("snapshot differs from golden file")

// CompareGolden checks snap against dir/{name}.golden outside of go test.
// With update set, the golden file is (re)written instead. A missing golden
// file is an error unless update is set.
func CompareGolden(dir, name string, snap []byte, update bool) error {
	path := filepath.Join(dir, name+".golden")
	if update {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create golden directory: %w", err)
		}
		if err := os.WriteFile(path, snap, 0o644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, snap) {
		return fmt.Errorf("%s: %w", path, ErrGoldenMismatch)
	}
	return nil
}
