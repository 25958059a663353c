package shell

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/abiosoft/readline"
	"github.com/mattn/go-isatty"
)

// LineReader supplies input lines to the interactive loop.
type LineReader interface {
	// ReadLine shows prompt and returns the next line without its
	// terminator. It returns io.EOF once input is exhausted.
	ReadLine(prompt string) (string, error)

	// AddHistory makes line available for recall by the editor, if any.
	AddHistory(line string)

	Close() error
}

// NewLineReader picks a line editor when in is a terminal and a plain
// reader otherwise. Plain mode prints no prompt.
func NewLineReader(in io.Reader, out, errOut io.Writer, history []string) (LineReader, error) {
	if f, ok := in.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return newEditor(f, out, errOut, history)
	}
	return NewPlainReader(in, nil), nil
}

// PlainReader reads lines one byte at a time so that input past the current
// line stays unread for programs that share the stream.
type PlainReader struct {
	r   io.Reader
	w   io.Writer
	eof bool
}

// NewPlainReader returns a reader over r that writes prompts to w. A nil w
// suppresses prompts.
func NewPlainReader(r io.Reader, w io.Writer) *PlainReader {
	return &PlainReader{r: r, w: w}
}

func (p *PlainReader) ReadLine(prompt string) (string, error) {
	if p.eof {
		return "", io.EOF
	}
	if p.w != nil && prompt != "" {
		fmt.Fprint(p.w, prompt)
	}

	var line []byte
	var b [1]byte
	for {
		n, err := p.r.Read(b[:])
		if n == 1 {
			if b[0] == '\n' {
				return string(line), nil
			}
			line = append(line, b[0])
			continue
		}
		if errors.Is(err, io.EOF) {
			p.eof = true
			if len(line) > 0 {
				return string(line), nil
			}
			return "", io.EOF
		}
		if err != nil {
			return "", err
		}
	}
}

func (p *PlainReader) AddHistory(string) {}

func (p *PlainReader) Close() error { return nil }

// editor is the interactive line editor backed by readline.
type editor struct {
	rl *readline.Instance
}

func newEditor(in *os.File, out, errOut io.Writer, history []string) (*editor, error) {
	rl, err := readline.NewEx(&readline.Config{
		Stdin:                  in,
		Stdout:                 out,
		Stderr:                 errOut,
		HistoryLimit:           len(history) + 1000,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return nil, fmt.Errorf("line editor: %w", err)
	}
	e := &editor{rl: rl}
	for _, line := range history {
		e.AddHistory(line)
	}
	return e, nil
}

func (e *editor) ReadLine(prompt string) (string, error) {
	e.rl.SetPrompt(prompt)
	line, err := e.rl.Readline()
	if err == readline.ErrInterrupt {
		// ^C at the prompt discards the line.
		return "", nil
	}
	return line, err
}

func (e *editor) AddHistory(line string) {
	_ = e.rl.SaveHistory(line)
}

func (e *editor) Close() error {
	return e.rl.Close()
}
