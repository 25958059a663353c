// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package proc starts external programs and reaps them.
//
// Two backends implement Starter: "exec" is built on os/exec and "spawn"
// drives os.StartProcess with an explicit descriptor table. Callers never
// depend on which one is active.
package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sort"
	"syscall"
)

// ErrNotFound is returned (wrapped) when a program cannot be located on the
// search path.
var ErrNotFound = errors.New("command not found")

// Attr describes the environment a process starts in. Nil streams are
// connected to the null device.
type Attr struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Dir    string   // working directory; "" inherits the caller's
	Env    []string // nil inherits the caller's environment
}

// State is the termination status of a reaped process.
type State struct {
	Code   int            // exit code, -1 when killed by a signal
	Signal syscall.Signal // terminating signal, 0 for a normal exit
}

// Success reports whether the process exited normally with code 0.
func (s State) Success() bool {
	return s.Code == 0 && s.Signal == 0
}

func (s State) String() string {
	if s.Signal != 0 {
		return "signal: " + s.Signal.String()
	}
	return fmt.Sprintf("exit status %d", s.Code)
}

// Process is a started program. It is owned by whoever called Start until
// Wait has returned.
type Process interface {
	Pid() int

	// Wait blocks until the process terminates, reaps it and releases any
	// stream plumbing. The result is cached: only the first call reaps.
	Wait() (State, error)
}

// Starter launches a program with the given argv and stream bindings.
type Starter interface {
	Start(ctx context.Context, argv []string, attr Attr) (Process, error)
}

// Run starts argv and waits for it to finish.
func Run(ctx context.Context, s Starter, argv []string, attr Attr) (State, error) {
	p, err := s.Start(ctx, argv, attr)
	if err != nil {
		return State{Code: -1}, err
	}
	return p.Wait()
}

var backends = map[string]func() Starter{
	"exec":  func() Starter { return ExecStarter{} },
	"spawn": func() Starter { return SpawnStarter{} },
}

// Backends returns the names accepted by New.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns the Starter registered under name.
func New(name string) (Starter, error) {
	mk, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown process backend: %q", name)
	}
	return mk(), nil
}

// lookPath resolves argv[0] and normalises the not-found error so both
// backends report it identically.
func lookPath(argv []string) (string, error) {
	if len(argv) == 0 || argv[0] == "" {
		return "", errors.New("empty command")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%s: %w", argv[0], ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", argv[0], err)
	}
	return path, nil
}

// stateFrom converts an os-level wait status.
func stateFrom(ws syscall.WaitStatus) State {
	if ws.Signaled() {
		return State{Code: -1, Signal: ws.Signal()}
	}
	return State{Code: ws.ExitStatus()}
}
