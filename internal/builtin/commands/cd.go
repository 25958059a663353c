package commands

import (
	"errors"

	"github.com/marcelocantos/minish/internal/builtin"
)

type Cd struct{}

var _ builtin.Builtin = (*Cd)(nil)

func (c *Cd) Name() string        { return "cd" }
func (c *Cd) Description() string { return "change the working directory (default $HOME)" }

func (c *Cd) Run(env *builtin.Env, args []string) (builtin.Status, error) {
	if len(args) > 2 {
		return builtin.Continue, usageError("cd", "at most one directory")
	}
	var dir string
	if len(args) == 2 {
		dir = args[1]
	} else if env.Getenv != nil {
		dir = env.Getenv("HOME")
	}
	if dir == "" {
		return builtin.Continue, errors.New("cd: HOME not set")
	}
	if err := env.Chdir(dir); err != nil {
		return builtin.Continue, err
	}
	return builtin.Continue, nil
}
