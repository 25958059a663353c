package audit

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
)

const genesisInput = "minish-genesis"

// Logger appends hash-chained entries to a JSONL journal.
type Logger struct {
	mu       sync.Mutex
	fs       afero.Fs
	path     string
	seq      uint64
	prevHash string
	now      func() time.Time
}

// NewLogger opens or creates a journal at path on fs and resumes the hash
// chain from its last entry.
func NewLogger(fs afero.Fs, path string) (*Logger, error) {
	if err := fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}

	l := &Logger{
		fs:       fs,
		path:     path,
		prevHash: genesisHash(),
		now:      time.Now,
	}

	entries, err := readEntries(fs, path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if n := len(entries); n > 0 {
		l.seq = entries[n-1].Seq
		l.prevHash = entries[n-1].Hash
	}
	return l, nil
}

// Log appends r to the journal.
func (l *Logger) Log(r Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Seq:       l.seq + 1,
		Time:      l.now().UTC(),
		PrevHash:  l.prevHash,
		Line:      r.Line,
		Kind:      r.Kind,
		Programs:  r.Programs,
		ExitCodes: r.ExitCodes,
		Duration:  float64(r.Duration.Microseconds()) / 1000.0,
		Cwd:       r.Cwd,
	}
	if r.Err != nil {
		entry.Error = r.Err.Error()
	}
	entry.Hash = computeHash(entry)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	data = append(data, '\n')

	f, err := l.fs.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}

	// The chain only advances once the entry is durable.
	l.seq = entry.Seq
	l.prevHash = entry.Hash
	return nil
}

func genesisHash() string {
	h := sha256.Sum256([]byte(genesisInput))
	return fmt.Sprintf("%x", h)
}

func computeHash(e Entry) string {
	e.Hash = ""
	data, _ := json.Marshal(e)
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h)
}
