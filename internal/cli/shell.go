package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/marcelocantos/minish/internal/shell"
	"github.com/marcelocantos/minish/internal/streams"
)

func (a *app) runShell(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	input := cmd.InOrStdin()
	std := streams.Set{In: input, Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}
	interactive := !cmd.Flags().Changed("command")
	if _, isFile := input.(*os.File); interactive && !isFile {
		// A child handed a non-file reader would have it copied into its
		// stdin pipe and drain the lines still to be read.
		std.In = nil
	}
	in, err := a.newInterp(cfg, std, std.Err)
	if err != nil {
		return err
	}

	// ^C belongs to the foreground program. Children start with the
	// default disposition, so only the interpreter survives it.
	stop := ignoreInterrupts()
	defer stop()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if !interactive {
		in.Execute(ctx, a.command)
		if code := in.LastStatus(); code != 0 {
			return &exitError{code: code}
		}
		return nil
	}

	if err := in.LoadHistory(); err != nil {
		fmt.Fprintf(std.Err, "minish: %v\n", err)
	}
	lr, err := shell.NewLineReader(input, std.Out, std.Err, in.History().Entries())
	if err != nil {
		return err
	}
	defer lr.Close()
	return in.Run(ctx, lr)
}

// ignoreInterrupts swallows SIGINT until the returned cleanup runs.
func ignoreInterrupts() func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		for range ch {
		}
	}()
	return func() {
		signal.Stop(ch)
		close(ch)
	}
}
