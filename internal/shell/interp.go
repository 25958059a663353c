// Package shell ties the tokenizer, classifier, launcher and built-ins
// together into a line interpreter.
package shell

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/afero"

	"github.com/marcelocantos/minish/internal/audit"
	"github.com/marcelocantos/minish/internal/builtin"
	"github.com/marcelocantos/minish/internal/history"
	"github.com/marcelocantos/minish/internal/pipeline"
	"github.com/marcelocantos/minish/internal/proc"
	"github.com/marcelocantos/minish/internal/streams"
)

// Exit statuses reported for lines that did not produce one themselves.
const (
	StatusFailure  = 1
	StatusNotFound = 127
)

// Journal records executed lines. *audit.Logger satisfies it.
type Journal interface {
	Log(r audit.Record) error
}

// Options configures an Interp. Zero fields take the process defaults.
type Options struct {
	Streams  streams.Set
	Registry *builtin.Registry
	Starter  proc.Starter
	Fs       afero.Fs
	History  *history.Ring
	Journal  Journal
	Version  string
	Color    bool

	// HistoryPath is where the history is loaded from and saved to. Empty
	// disables persistence.
	HistoryPath string
}

// Interp executes one line at a time. It is not safe for concurrent use.
type Interp struct {
	std     streams.Set
	reg     *builtin.Registry
	starter proc.Starter
	env     *builtin.Env
	journal Journal
	color   bool
	errc    *color.Color

	historyPath string

	lastStatus int
}

// New returns an interpreter configured by opts.
func New(opts Options) *Interp {
	if opts.Streams == (streams.Set{}) {
		opts.Streams = streams.Std()
	}
	if opts.Registry == nil {
		opts.Registry = builtin.NewRegistry()
	}
	if opts.Starter == nil {
		opts.Starter = proc.ExecStarter{}
	}
	if opts.History == nil {
		opts.History = history.New(history.DefaultSize)
	}

	env := builtin.NewEnv(opts.Registry, opts.History, opts.Version)
	if opts.Fs != nil {
		env.Fs = opts.Fs
	}

	errc := color.New(color.FgRed)
	if !opts.Color {
		errc.DisableColor()
	}

	return &Interp{
		std:     opts.Streams,
		reg:     opts.Registry,
		starter: opts.Starter,
		env:     env,
		journal: opts.Journal,
		color:   opts.Color,
		errc:    errc,

		historyPath: opts.HistoryPath,
	}
}

// Env returns the state built-ins operate on.
func (in *Interp) Env() *builtin.Env { return in.env }

// History returns the interpreter's command history.
func (in *Interp) History() *history.Ring { return in.env.History }

// LoadHistory reads the persisted history, if any.
func (in *Interp) LoadHistory() error {
	if in.historyPath == "" {
		return nil
	}
	return in.env.History.Load(in.env.Fs, in.historyPath)
}

// SaveHistory writes the history back to its file.
func (in *Interp) SaveHistory() error {
	if in.historyPath == "" {
		return nil
	}
	return in.env.History.Save(in.env.Fs, in.historyPath)
}

// LastStatus returns the exit status of the most recent non-empty line:
// the program's exit code (last stage for a pipeline), 128+N for a child
// killed by signal N, 127 when the program could not be found and 1 for
// any other failure.
func (in *Interp) LastStatus() int { return in.lastStatus }

// Execute runs one input line. Failures are reported on the error stream
// and never stop the interpreter; only a built-in such as exit returns
// builtin.Stop.
func (in *Interp) Execute(ctx context.Context, line string) builtin.Status {
	tokens := pipeline.Tokenize(line)
	kind := pipeline.Classify(tokens, in.reg.Has)
	if kind == pipeline.KindEmpty {
		return builtin.Continue
	}

	start := time.Now()
	rec := audit.Record{Line: line, Kind: kind.String()}
	status := builtin.Continue
	var err error

	switch kind {
	case pipeline.KindPipeline:
		rec.Programs, rec.ExitCodes, err = in.runPipeline(ctx, tokens)
	case pipeline.KindBuiltin:
		rec.Programs = tokens[:1]
		status, err = in.runBuiltin(tokens)
	case pipeline.KindExternal:
		var code int
		rec.Programs, code, err = in.runExternal(ctx, tokens)
		if code != noCode {
			rec.ExitCodes = []int{code}
		}
	}

	if err != nil {
		in.report(err)
	}

	rec.Err = err
	rec.Duration = time.Since(start)
	in.record(rec)
	return status
}

// noCode marks a command that never produced an exit status.
const noCode = -2

func (in *Interp) runBuiltin(tokens []string) (builtin.Status, error) {
	in.lastStatus = StatusFailure
	b, err := in.reg.Lookup(tokens[0])
	if err != nil {
		return builtin.Continue, err
	}
	in.env.Stdin, in.env.Stdout, in.env.Stderr = in.std.In, in.std.Out, in.std.Err
	status, err := b.Run(in.env, tokens)
	if err == nil {
		in.lastStatus = 0
	}
	return status, err
}

func (in *Interp) runExternal(ctx context.Context, tokens []string) (programs []string, code int, err error) {
	code = noCode
	in.lastStatus = StatusFailure

	cmd, err := pipeline.ParseRedirects(tokens)
	if err != nil {
		return nil, code, err
	}
	programs = []string{cmd.Name()}

	g := streams.Acquire(&in.std)
	defer func() {
		err = errors.Join(err, g.Release())
	}()

	r, err := cmd.Open()
	if err != nil {
		return programs, code, err
	}
	g.RebindIn(r.In)
	g.RebindOut(r.Out)

	st, err := proc.Run(ctx, in.starter, cmd.Args, proc.Attr{
		Stdin:  in.std.In,
		Stdout: in.std.Out,
		Stderr: in.std.Err,
	})
	if err != nil {
		if errors.Is(err, proc.ErrNotFound) {
			in.lastStatus = StatusNotFound
		}
		return programs, code, err
	}
	in.lastStatus = exitStatus(st)
	return programs, st.Code, nil
}

func (in *Interp) runPipeline(ctx context.Context, tokens []string) (programs []string, codes []int, err error) {
	in.lastStatus = StatusFailure

	p, err := pipeline.Parse(tokens)
	if err != nil {
		return nil, nil, err
	}
	for _, s := range p.Stages {
		programs = append(programs, s.Name())
	}

	results, err := pipeline.Execute(ctx, p, in.starter, in.std)
	for _, r := range results {
		codes = append(codes, r.State.Code)
	}
	if n := len(results); n > 0 {
		last := results[n-1]
		switch {
		case last.Started:
			in.lastStatus = exitStatus(last.State)
		case errors.Is(last.Err, proc.ErrNotFound):
			in.lastStatus = StatusNotFound
		}
	}
	return programs, codes, err
}

func exitStatus(st proc.State) int {
	if st.Signal != 0 {
		return 128 + int(st.Signal)
	}
	return st.Code
}

// report writes one "minish: " line per failure. Joined errors, such as
// the per-stage failures of a pipeline, are flattened first.
func (in *Interp) report(err error) {
	w := in.std.Err
	if w == nil {
		w = io.Discard
	}
	for _, e := range flatten(err) {
		for _, line := range strings.Split(e.Error(), "\n") {
			if line != "" {
				in.errc.Fprintf(w, "minish: %s\n", line)
			}
		}
	}
}

func flatten(err error) []error {
	j, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var errs []error
	for _, e := range j.Unwrap() {
		errs = append(errs, flatten(e)...)
	}
	return errs
}

func (in *Interp) record(rec audit.Record) {
	if in.journal == nil {
		return
	}
	if wd, err := in.env.Getwd(); err == nil {
		rec.Cwd = wd
	}
	if err := in.journal.Log(rec); err != nil {
		in.report(err)
	}
}
