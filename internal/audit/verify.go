package audit

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
)

// maxLine bounds a single journal line.
const maxLine = 1 << 20

type rawLine struct {
	num  int
	data []byte
}

func readLines(fs afero.Fs, path string) ([]rawLine, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []rawLine
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for n := 1; sc.Scan(); n++ {
		if len(bytes.TrimSpace(sc.Bytes())) == 0 {
			continue
		}
		lines = append(lines, rawLine{num: n, data: append([]byte(nil), sc.Bytes()...)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	return lines, nil
}

// readEntries decodes every well-formed line, skipping the rest.
func readEntries(fs afero.Fs, path string) ([]Entry, error) {
	lines, err := readLines(fs, path)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, l := range lines {
		var e Entry
		if json.Unmarshal(l.data, &e) == nil {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// Verify checks the journal's sequence numbers and hash chain. It returns
// nil for a valid (or empty) journal, or an error naming the first bad line.
func Verify(fs afero.Fs, path string) error {
	lines, err := readLines(fs, path)
	if err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}

	expectedPrev := genesisHash()
	var prevSeq uint64
	for _, l := range lines {
		var e Entry
		if err := json.Unmarshal(l.data, &e); err != nil {
			return fmt.Errorf("line %d: invalid JSON: %w", l.num, err)
		}
		if e.Seq != prevSeq+1 {
			return fmt.Errorf("line %d: sequence gap: expected %d, got %d", l.num, prevSeq+1, e.Seq)
		}
		if e.PrevHash != expectedPrev {
			return fmt.Errorf("line %d: prev_hash mismatch: expected %s, got %s", l.num, short(expectedPrev), short(e.PrevHash))
		}
		if computed := computeHash(e); e.Hash != computed {
			return fmt.Errorf("line %d: hash mismatch: expected %s, got %s", l.num, short(computed), short(e.Hash))
		}
		expectedPrev = e.Hash
		prevSeq = e.Seq
	}
	return nil
}

// Tail returns the last n entries of the journal.
func Tail(fs afero.Fs, path string, n int) ([]Entry, error) {
	entries, err := readEntries(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	if n < 0 {
		n = 0
	}
	if n > len(entries) {
		n = len(entries)
	}
	return entries[len(entries)-n:], nil
}

func short(h string) string {
	if len(h) > 16 {
		return h[:16] + "..."
	}
	return h
}
