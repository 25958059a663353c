package commands

import (
	"bufio"
	"fmt"
	"io"

	"github.com/marcelocantos/minish/internal/builtin"
)

// Counts holds the statistics the count built-in reports. Chars counts
// bytes. A word is a run of bytes other than space, tab and newline.
type Counts struct {
	Lines int
	Words int
	Chars int
}

// CountReader reads r to the end and tallies it.
func CountReader(r io.Reader) (Counts, error) {
	var c Counts
	inWord := false
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return c, nil
		}
		if err != nil {
			return c, err
		}
		c.Chars++
		switch b {
		case '\n':
			c.Lines++
			inWord = false
		case ' ', '\t':
			inWord = false
		default:
			if !inWord {
				c.Words++
				inWord = true
			}
		}
	}
}

type Count struct{}

var _ builtin.Builtin = (*Count)(nil)

func (c *Count) Name() string        { return "count" }
func (c *Count) Description() string { return "count lines, words and characters in a file" }

func (c *Count) Run(env *builtin.Env, args []string) (builtin.Status, error) {
	if len(args) != 2 {
		return builtin.Continue, usageError("count", "exactly one file")
	}
	f, err := env.Fs.Open(args[1])
	if err != nil {
		return builtin.Continue, fmt.Errorf("count: %w", err)
	}
	defer f.Close()

	counts, err := CountReader(f)
	if err != nil {
		return builtin.Continue, fmt.Errorf("count: %w", err)
	}
	fmt.Fprintf(env.Stdout, "Lines: %d\n", counts.Lines)
	fmt.Fprintf(env.Stdout, "Words: %d\n", counts.Words)
	fmt.Fprintf(env.Stdout, "Chars: %d\n", counts.Chars)
	return builtin.Continue, nil
}
