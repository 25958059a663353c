package pipeline

import (
	"errors"
	"fmt"
	"os"
)

// Redirects holds the files opened for a command's < and > operators.
// Either field may be nil.
type Redirects struct {
	In  *os.File
	Out *os.File
}

// Open opens the command's redirection targets. Input must already exist;
// output is created or truncated. On error nothing is left open.
func (c Command) Open() (*Redirects, error) {
	r := &Redirects{}
	if c.RedirectIn != "" {
		f, err := os.Open(c.RedirectIn)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.RedirectIn, unwrapPath(err))
		}
		r.In = f
	}
	if c.RedirectOut != "" {
		f, err := os.OpenFile(c.RedirectOut, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("%s: %w", c.RedirectOut, unwrapPath(err))
		}
		r.Out = f
	}
	return r, nil
}

// Close closes whatever was opened. Safe to call more than once.
func (r *Redirects) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.In != nil {
		errs = append(errs, r.In.Close())
		r.In = nil
	}
	if r.Out != nil {
		errs = append(errs, r.Out.Close())
		r.Out = nil
	}
	return errors.Join(errs...)
}

// unwrapPath drops the *PathError wrapper; callers already name the file.
func unwrapPath(err error) error {
	var pe *os.PathError
	if errors.As(err, &pe) {
		return pe.Err
	}
	return err
}
