// Package commands implements the interpreter's built-in commands.
package commands

import (
	"fmt"

	"github.com/marcelocantos/minish/internal/builtin"
)

// RegisterAll adds every built-in command to the registry.
func RegisterAll(r *builtin.Registry) {
	r.Register(&About{})
	r.Register(&Cd{})
	r.Register(&Clear{})
	r.Register(&Count{})
	r.Register(&Cp{})
	r.Register(&Exit{})
	r.Register(&Help{})
	r.Register(&History{})
	r.Register(&Mv{})
	r.Register(&Rm{})
}

// Default returns a registry holding every built-in command.
func Default() *builtin.Registry {
	r := builtin.NewRegistry()
	RegisterAll(r)
	return r
}

func usageError(name, want string) error {
	return fmt.Errorf("%s: expected %s", name, want)
}
