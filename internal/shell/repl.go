package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"os/user"
	"strings"

	"github.com/fatih/color"

	"github.com/marcelocantos/minish/internal/builtin"
)

// Run reads lines from lr and executes them until input ends or a built-in
// asks to stop. Non-blank lines are added to the history before they run;
// the history is saved when Run returns.
func (in *Interp) Run(ctx context.Context, lr LineReader) error {
	defer func() {
		if serr := in.SaveHistory(); serr != nil {
			in.report(serr)
		}
	}()

	hist := in.env.History
	for {
		line, err := lr.ReadLine(in.Prompt())
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) != "" {
			hist.Add(line)
			lr.AddHistory(line)
		}
		if in.Execute(ctx, line) == builtin.Stop {
			return nil
		}
	}
}

// Prompt renders "user@host:dir$ " with the home directory shown as ~.
func (in *Interp) Prompt() string {
	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}
	dir, err := in.env.Getwd()
	if err != nil {
		dir = "?"
	}
	dir = abbreviateHome(dir, in.env.Getenv("HOME"))

	userc := color.New(color.FgGreen, color.Bold)
	dirc := color.New(color.FgBlue, color.Bold)
	if !in.color {
		userc.DisableColor()
		dirc.DisableColor()
	}
	return userc.Sprintf("%s@%s", in.userName(), host) + ":" + dirc.Sprint(dir) + "$ "
}

func (in *Interp) userName() string {
	if name := in.env.Getenv("USER"); name != "" {
		return name
	}
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "?"
}

func abbreviateHome(dir, home string) string {
	home = strings.TrimSuffix(home, "/")
	if home == "" {
		return dir
	}
	if dir == home {
		return "~"
	}
	if strings.HasPrefix(dir, home+"/") {
		return "~" + dir[len(home):]
	}
	return dir
}
