package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/marcelocantos/minish/internal/builtin"
)

type Cp struct{}

var _ builtin.Builtin = (*Cp)(nil)

func (c *Cp) Name() string        { return "cp" }
func (c *Cp) Description() string { return "copy a file" }

func (c *Cp) Run(env *builtin.Env, args []string) (builtin.Status, error) {
	if len(args) != 3 {
		return builtin.Continue, usageError("cp", "source and destination")
	}
	if err := copyFile(env, args[1], args[2]); err != nil {
		return builtin.Continue, fmt.Errorf("cp: %w", err)
	}
	return builtin.Continue, nil
}

func copyFile(env *builtin.Env, src, dst string) (err error) {
	in, err := env.Fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s: is a directory", src)
	}

	out, err := env.Fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, out.Close())
	}()
	_, err = io.Copy(out, in)
	return err
}

type Mv struct{}

var _ builtin.Builtin = (*Mv)(nil)

func (c *Mv) Name() string        { return "mv" }
func (c *Mv) Description() string { return "move or rename a file" }

func (c *Mv) Run(env *builtin.Env, args []string) (builtin.Status, error) {
	if len(args) != 3 {
		return builtin.Continue, usageError("mv", "source and destination")
	}
	if err := env.Fs.Rename(args[1], args[2]); err != nil {
		return builtin.Continue, fmt.Errorf("mv: %w", err)
	}
	return builtin.Continue, nil
}

type Rm struct{}

var _ builtin.Builtin = (*Rm)(nil)

func (c *Rm) Name() string        { return "rm" }
func (c *Rm) Description() string { return "remove files" }

func (c *Rm) Run(env *builtin.Env, args []string) (builtin.Status, error) {
	if len(args) < 2 {
		return builtin.Continue, usageError("rm", "at least one file")
	}
	var errs []error
	for _, name := range args[1:] {
		if err := env.Fs.Remove(name); err != nil {
			errs = append(errs, fmt.Errorf("rm: %w", err))
		}
	}
	return builtin.Continue, errors.Join(errs...)
}
