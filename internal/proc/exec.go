// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

package proc

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"
	"syscall"
)

// ExecStarter starts processes through os/exec.
type ExecStarter struct{}

var _ Starter = ExecStarter{}

func (ExecStarter) Start(ctx context.Context, argv []string, attr Attr) (Process, error) {
	path, err := lookPath(argv)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Args = append([]string(nil), argv...)
	cmd.Dir = attr.Dir
	cmd.Env = attr.Env
	cmd.Stdin = attr.Stdin
	cmd.Stdout = attr.Stdout
	cmd.Stderr = attr.Stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd

	once  sync.Once
	state State
	err   error
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

func (p *execProcess) Wait() (State, error) {
	p.once.Do(func() {
		err := p.cmd.Wait()
		p.state = stateOf(p.cmd.ProcessState)

		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			// Copy failures on non-file streams; the process itself was
			// still reaped.
			p.err = err
		}
	})
	return p.state, p.err
}

func stateOf(ps *os.ProcessState) State {
	if ps == nil {
		return State{Code: -1}
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok {
		return stateFrom(ws)
	}
	return State{Code: ps.ExitCode()}
}
