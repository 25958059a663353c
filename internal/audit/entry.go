package audit

import "time"

// Entry is one line of the journal.
type Entry struct {
	Seq       uint64    `json:"seq"`
	Time      time.Time `json:"ts"`
	PrevHash  string    `json:"prev_hash"`
	Line      string    `json:"line"`                 // the input line as typed
	Kind      string    `json:"kind"`                 // builtin, external or pipeline
	Programs  []string  `json:"programs"`             // argv[0] of each stage
	ExitCodes []int     `json:"exit_codes,omitempty"` // one per launched stage; -1 = signalled
	Error     string    `json:"error,omitempty"`
	Duration  float64   `json:"duration_ms"`
	Cwd       string    `json:"cwd"`
	Hash      string    `json:"hash"` // SHA-256 of this entry with Hash empty
}

// Record describes one executed line. The logger fills in the chain fields.
type Record struct {
	Line      string
	Kind      string
	Programs  []string
	ExitCodes []int
	Err       error
	Duration  time.Duration
	Cwd       string
}
