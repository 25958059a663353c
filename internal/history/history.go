// Package history keeps a bounded window of recently entered command lines.
package history

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// DefaultSize is the number of lines kept when no size is configured.
const DefaultSize = 100

// Ring is a fixed-capacity history; adding to a full ring evicts the oldest
// line. It is not safe for concurrent use.
type Ring struct {
	buf   []string
	start int // index of the oldest entry
	n     int
}

// New returns an empty ring holding at most size lines.
func New(size int) *Ring {
	if size <= 0 {
		size = DefaultSize
	}
	return &Ring{buf: make([]string, size)}
}

// Cap returns the capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Len returns the number of stored lines.
func (r *Ring) Len() int { return r.n }

// Add records line. Blank lines are ignored; trailing line terminators are
// dropped.
func (r *Ring) Add(line string) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return
	}
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = line
		r.n++
		return
	}
	r.buf[r.start] = line
	r.start = (r.start + 1) % len(r.buf)
}

// Entries returns the stored lines, oldest first.
func (r *Ring) Entries() []string {
	out := make([]string, r.n)
	for i := range out {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}

// Last returns up to n of the newest lines, oldest first, together with the
// 1-based position of the first one returned.
func (r *Ring) Last(n int) ([]string, int) {
	all := r.Entries()
	if n < 0 || n > len(all) {
		n = len(all)
	}
	return all[len(all)-n:], len(all) - n + 1
}

// Clear forgets every line.
func (r *Ring) Clear() {
	for i := range r.buf {
		r.buf[i] = ""
	}
	r.start, r.n = 0, 0
}

// Load appends the lines stored at path. A missing file is not an error.
func (r *Ring) Load(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read history: %w", err)
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		r.Add(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	return nil
}

// Save overwrites path with the stored lines, one per line.
func (r *Ring) Save(fs afero.Fs, path string) error {
	var buf bytes.Buffer
	for _, line := range r.Entries() {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}
