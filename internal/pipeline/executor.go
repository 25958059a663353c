package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/marcelocantos/minish/internal/proc"
	"github.com/marcelocantos/minish/internal/streams"
)

// StageResult is the outcome of one pipeline stage.
type StageResult struct {
	Argv    []string
	Started bool
	State   proc.State
	Err     error // start or wait failure; a non-zero exit is not an error
}

// Execute runs every stage of p as its own process, connected by OS pipes,
// and waits for all of them. Stages run concurrently; backpressure comes
// from the pipes themselves.
//
// The interpreter keeps no pipe end open once the stages are launched, and
// every launched stage is reaped exactly once, whatever happened to its
// neighbours. If the pipes cannot be created nothing is launched.
func Execute(ctx context.Context, p *Pipeline, starter proc.Starter, std streams.Set) ([]StageResult, error) {
	n := len(p.Stages)
	if n == 0 {
		return nil, ErrEmptyStage
	}

	// Redirects apply to the outer ends only; Parse has enforced that.
	first, last := p.Stages[0], p.Stages[n-1]
	in, err := Command{RedirectIn: first.RedirectIn}.Open()
	if err != nil {
		return nil, err
	}
	out, err := Command{RedirectOut: last.RedirectOut}.Open()
	if err != nil {
		in.Close()
		return nil, err
	}
	defer in.Close()
	defer out.Close()

	stdin, stdout := std.In, std.Out
	if in.In != nil {
		stdin = in.In
	}
	if out.Out != nil {
		stdout = out.Out
	}

	// Create N-1 pipes between N stages.
	type pipeEnd struct {
		r *os.File
		w *os.File
	}
	pipes := make([]pipeEnd, n-1)
	closePipes := func() {
		for i := range pipes {
			if pipes[i].r != nil {
				pipes[i].r.Close()
				pipes[i].r = nil
			}
			if pipes[i].w != nil {
				pipes[i].w.Close()
				pipes[i].w = nil
			}
		}
	}
	for i := range pipes {
		r, w, err := os.Pipe()
		if err != nil {
			closePipes()
			return nil, fmt.Errorf("pipe: %w", err)
		}
		pipes[i] = pipeEnd{r: r, w: w}
	}

	stderr := std.Err
	if _, ok := stderr.(*os.File); !ok && stderr != nil {
		stderr = &lockedWriter{w: stderr}
	}

	results := make([]StageResult, n)
	procs := make([]proc.Process, n)
	for i, stage := range p.Stages {
		attr := proc.Attr{Stdin: stdin, Stdout: stdout, Stderr: stderr}
		if i > 0 {
			attr.Stdin = pipes[i-1].r
		}
		if i < n-1 {
			attr.Stdout = pipes[i].w
		}

		results[i].Argv = stage.Args
		pr, err := starter.Start(ctx, stage.Args, attr)
		if err != nil {
			// Keep going: the neighbours see EOF or EPIPE once the
			// interpreter drops its copies of this stage's pipe ends.
			results[i].Err = fmt.Errorf("stage %d: %w", i, err)
			results[i].State = proc.State{Code: -1}
			continue
		}
		results[i].Started = true
		procs[i] = pr
	}

	// The children hold their own copies now. Any end left open here would
	// keep a reader waiting for an EOF that never comes.
	closePipes()

	for i, pr := range procs {
		if pr == nil {
			continue
		}
		st, err := pr.Wait()
		results[i].State = st
		if err != nil {
			results[i].Err = fmt.Errorf("stage %d: %w", i, err)
		}
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return results, errors.Join(errs...)
}

// lockedWriter lets every stage share one non-file error stream; each
// stage's copier would otherwise write to it unsynchronised.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
