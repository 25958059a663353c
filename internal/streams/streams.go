// Copyright 2026 Marcelo Cantos
// SPDX-License-Identifier: Apache-2.0

// Package streams holds the interpreter's own standard-stream bindings and
// the guard that temporarily rebinds them for a redirected command.
package streams

import (
	"errors"
	"io"
	"os"
)

// Set is one binding of the three standard streams.
type Set struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Std returns the process's real standard streams.
func Std() Set {
	return Set{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Guard saves a Set on Acquire and puts it back on Release. Files handed to
// RebindIn/RebindOut become owned by the guard and are closed on Release.
//
// Typical use:
//
//	g := streams.Acquire(&set)
//	defer g.Release()
type Guard struct {
	target   *Set
	saved    Set
	owned    []io.Closer
	released bool
}

// Acquire snapshots *s.
func Acquire(s *Set) *Guard {
	return &Guard{target: s, saved: *s}
}

// RebindIn points the input stream at f.
func (g *Guard) RebindIn(f *os.File) {
	if f == nil {
		return
	}
	g.owned = append(g.owned, f)
	g.target.In = f
}

// RebindOut points the output stream at f.
func (g *Guard) RebindOut(f *os.File) {
	if f == nil {
		return
	}
	g.owned = append(g.owned, f)
	g.target.Out = f
}

// Release restores the saved bindings and closes every owned file. Only the
// first call has any effect.
func (g *Guard) Release() error {
	if g.released {
		return nil
	}
	g.released = true
	*g.target = g.saved

	var errs []error
	for _, c := range g.owned {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	g.owned = nil
	return errors.Join(errs...)
}
