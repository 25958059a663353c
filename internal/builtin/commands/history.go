package commands

import (
	"fmt"

	getopt "github.com/pborman/getopt/v2"

	"github.com/marcelocantos/minish/internal/builtin"
)

type History struct{}

var _ builtin.Builtin = (*History)(nil)

func (c *History) Name() string        { return "history" }
func (c *History) Description() string { return "show or clear the command history" }

func (c *History) Run(env *builtin.Env, args []string) (builtin.Status, error) {
	opts := getopt.New()
	clear := opts.Bool('c', "clear the history by deleting all entries")
	last := opts.Int('n', 0, "show only the last N entries", "N")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt || opts.NArgs() > 0 {
		w := env.Stderr
		fmt.Fprintln(w, "usage: history [-c] [-n N]")
		fmt.Fprintln(w, "Display the history list with line numbers.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		if err != nil {
			return builtin.Continue, fmt.Errorf("history: %w", err)
		}
		if opts.NArgs() > 0 {
			return builtin.Continue, fmt.Errorf("history: unexpected argument %q", opts.Arg(0))
		}
		return builtin.Continue, nil
	}
	if *last < 0 {
		return builtin.Continue, fmt.Errorf("history: -n must not be negative")
	}

	if env.History == nil {
		return builtin.Continue, nil
	}
	if *clear {
		env.History.Clear()
		return builtin.Continue, nil
	}

	n := *last
	if n == 0 {
		n = env.History.Len()
	}
	lines, first := env.History.Last(n)
	for i, line := range lines {
		fmt.Fprintf(env.Stdout, "%5d  %s\n", first+i, line)
	}
	return builtin.Continue, nil
}
