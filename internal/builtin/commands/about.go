package commands

import (
	"fmt"

	"github.com/marcelocantos/minish/internal/builtin"
)

type About struct{}

var _ builtin.Builtin = (*About)(nil)

func (c *About) Name() string        { return "about" }
func (c *About) Description() string { return "show version information" }

func (c *About) Run(env *builtin.Env, args []string) (builtin.Status, error) {
	version := env.Version
	if version == "" {
		version = "dev"
	}
	fmt.Fprintf(env.Stdout, "minish %s\n", version)
	_, err := fmt.Fprintln(env.Stdout, "A line-oriented command interpreter with pipelines and redirection.")
	return builtin.Continue, err
}
