package commands

import (
	"fmt"

	"github.com/marcelocantos/minish/internal/builtin"
)

type Help struct{}

var _ builtin.Builtin = (*Help)(nil)

func (c *Help) Name() string        { return "help" }
func (c *Help) Description() string { return "list the built-in commands" }

func (c *Help) Run(env *builtin.Env, args []string) (builtin.Status, error) {
	w := env.Stdout
	fmt.Fprintln(w, "minish: a minimal command interpreter")
	fmt.Fprintln(w, "Type a program name and its arguments, then press enter.")
	fmt.Fprintln(w, "Use | to connect programs, < and > to redirect input and output.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Built-in commands:")
	for _, b := range env.Registry.All() {
		fmt.Fprintf(w, "  %-10s %s\n", b.Name(), b.Description())
	}
	fmt.Fprintln(w)
	_, err := fmt.Fprintln(w, "Use man for information on other programs.")
	return builtin.Continue, err
}
