package commands

import (
	"io"

	"github.com/marcelocantos/minish/internal/builtin"
)

// clearScreen homes the cursor and erases the display.
const clearScreen = "\033[H\033[J"

type Clear struct{}

var _ builtin.Builtin = (*Clear)(nil)

func (c *Clear) Name() string        { return "clear" }
func (c *Clear) Description() string { return "clear the terminal screen" }

func (c *Clear) Run(env *builtin.Env, args []string) (builtin.Status, error) {
	_, err := io.WriteString(env.Stdout, clearScreen)
	return builtin.Continue, err
}
