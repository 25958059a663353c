// Package cli wires the minish command line: the interactive shell, the
// one-shot -c mode, and the audit and mcp subcommands.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/marcelocantos/minish/internal/audit"
	"github.com/marcelocantos/minish/internal/builtin/commands"
	"github.com/marcelocantos/minish/internal/config"
	"github.com/marcelocantos/minish/internal/history"
	"github.com/marcelocantos/minish/internal/proc"
	"github.com/marcelocantos/minish/internal/shell"
	"github.com/marcelocantos/minish/internal/streams"
)

// exitError carries a process exit status out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

type app struct {
	version    string
	configPath string
	command    string
	fs         afero.Fs
}

// Main runs the command line with args (excluding the program name) and
// returns the process exit status.
func Main(version string, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCommand(version)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	var ee *exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	default:
		fmt.Fprintf(stderr, "minish: %v\n", err)
		return 1
	}
}

// NewRootCommand builds the minish command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{version: version, fs: afero.NewOsFs()}

	root := &cobra.Command{
		Use:           "minish",
		Short:         "A minimal line-oriented command interpreter",
		Long:          "minish reads command lines and runs them, with | pipelines and < > redirection.",
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          a.runShell,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.config/minish/config.yaml)")
	root.Flags().StringVarP(&a.command, "command", "c", "", "execute `LINE` and exit with its status")

	root.AddCommand(a.auditCommand())
	root.AddCommand(a.mcpCommand())
	return root
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.LoadFs(a.fs, a.configPath)
	}
	return config.Load()
}

// newInterp builds an interpreter from the configuration, bound to the
// given streams.
func (a *app) newInterp(cfg *config.Config, std streams.Set, errOut io.Writer) (*shell.Interp, error) {
	starter, err := proc.New(cfg.Exec.Backend)
	if err != nil {
		return nil, err
	}

	var journal shell.Journal
	if cfg.Audit.Enabled {
		logger, err := audit.NewLogger(a.fs, cfg.Audit.Path)
		if err != nil {
			// Keep running without a journal.
			fmt.Fprintf(errOut, "minish: audit: %v\n", err)
		} else {
			journal = logger
		}
	}

	in := shell.New(shell.Options{
		Streams:     std,
		Registry:    commands.Default(),
		Starter:     starter,
		Fs:          a.fs,
		History:     history.New(cfg.History.Size),
		Journal:     journal,
		Version:     a.version,
		Color:       cfg.Prompt.Color,
		HistoryPath: cfg.History.Path,
	})
	return in, nil
}
