package commands

import "github.com/marcelocantos/minish/internal/builtin"

type Exit struct{}

var _ builtin.Builtin = (*Exit)(nil)

func (c *Exit) Name() string        { return "exit" }
func (c *Exit) Description() string { return "leave the shell" }

func (c *Exit) Run(env *builtin.Env, args []string) (builtin.Status, error) {
	return builtin.Stop, nil
}
