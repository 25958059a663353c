// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package proc

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
)

// SpawnStarter starts processes with os.StartProcess. Streams that are not
// *os.File are bridged through pipes serviced by copy goroutines.
type SpawnStarter struct{}

var _ Starter = SpawnStarter{}

func (SpawnStarter) Start(ctx context.Context, argv []string, attr Attr) (Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := lookPath(argv)
	if err != nil {
		return nil, err
	}

	b := &bridge{}
	files := make([]*os.File, 3)
	if files[0], err = b.reader(attr.Stdin); err != nil {
		b.abort()
		return nil, err
	}
	if files[1], err = b.writer(attr.Stdout); err != nil {
		b.abort()
		return nil, err
	}
	if sameWriter(attr.Stdout, attr.Stderr) {
		files[2] = files[1]
	} else if files[2], err = b.writer(attr.Stderr); err != nil {
		b.abort()
		return nil, err
	}

	p, err := os.StartProcess(path, argv, &os.ProcAttr{
		Dir:   attr.Dir,
		Env:   attr.Env,
		Files: files,
	})
	// The child owns its copies now (or never will); ours must go either way.
	b.closeChildEnds()
	if err != nil {
		b.abort()
		return nil, err
	}
	b.start()

	sp := &spawnProcess{proc: p, bridge: b, done: make(chan struct{})}
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				_ = p.Kill()
			case <-sp.done:
			}
		}()
	}
	return sp, nil
}

type spawnProcess struct {
	proc   *os.Process
	bridge *bridge
	done   chan struct{}

	once  sync.Once
	state State
	err   error
}

func (p *spawnProcess) Pid() int { return p.proc.Pid }

func (p *spawnProcess) Wait() (State, error) {
	p.once.Do(func() {
		defer close(p.done)
		ps, err := p.proc.Wait()
		if err != nil {
			p.state = State{Code: -1}
			p.err = err
			p.bridge.abort()
			return
		}
		p.state = stateOf(ps)
		p.err = p.bridge.wait()
	})
	return p.state, p.err
}

// bridge tracks the descriptors created to connect a child to non-file
// streams.
type bridge struct {
	child  []*os.File // handed to the child; closed once it has started
	parent []*os.File // serviced by copiers; closed by them or by abort

	copiers []func() error
	feeder  func()

	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

func (b *bridge) reader(r io.Reader) (*os.File, error) {
	switch r := r.(type) {
	case nil:
		f, err := os.Open(os.DevNull)
		if err != nil {
			return nil, err
		}
		b.child = append(b.child, f)
		return f, nil
	case *os.File:
		return r, nil
	}
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	b.child = append(b.child, pr)
	b.parent = append(b.parent, pw)
	b.feeder = func() {
		_, _ = io.Copy(pw, r)
		pw.Close()
	}
	return pr, nil
}

func (b *bridge) writer(w io.Writer) (*os.File, error) {
	switch w := w.(type) {
	case nil:
		f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			return nil, err
		}
		b.child = append(b.child, f)
		return f, nil
	case *os.File:
		return w, nil
	}
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	b.child = append(b.child, pw)
	b.parent = append(b.parent, pr)
	b.copiers = append(b.copiers, func() error {
		_, err := io.Copy(w, pr)
		pr.Close()
		return err
	})
	return pw, nil
}

func (b *bridge) closeChildEnds() {
	for _, f := range b.child {
		f.Close()
	}
	b.child = nil
}

// abort releases everything when the copiers will never run.
func (b *bridge) abort() {
	b.closeChildEnds()
	for _, f := range b.parent {
		f.Close()
	}
	b.parent = nil
	b.copiers = nil
	b.feeder = nil
}

func (b *bridge) start() {
	for _, c := range b.copiers {
		b.wg.Add(1)
		go func(c func() error) {
			defer b.wg.Done()
			if err := c(); err != nil {
				b.mu.Lock()
				b.errs = append(b.errs, err)
				b.mu.Unlock()
			}
		}(c)
	}
	// The stdin feeder is not joined: it may be parked in a Read on an
	// interactive source long after the child is gone.
	if b.feeder != nil {
		go b.feeder()
	}
}

// wait joins the output copiers. They finish when every holder of the
// child's write ends has exited.
func (b *bridge) wait() error {
	b.wg.Wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	return errors.Join(b.errs...)
}

// sameWriter reports whether stdout and stderr name the same non-file
// writer, in which case they share one pipe so the copier never writes to
// it from two goroutines.
func sameWriter(a, b io.Writer) (same bool) {
	if a == nil || b == nil {
		return false
	}
	if _, ok := a.(*os.File); ok {
		return false
	}
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
