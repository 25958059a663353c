package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/marcelocantos/minish/internal/config"
	"github.com/marcelocantos/minish/internal/streams"
)

func (a *app) mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve a run tool over the Model Context Protocol on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			s := a.newMCPServer(cfg)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return server.NewStdioServer(s).Listen(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *app) newMCPServer(cfg *config.Config) *server.MCPServer {
	s := server.NewMCPServer("minish", a.version, server.WithToolCapabilities(false))
	r := &toolRunner{app: a, cfg: cfg}
	s.AddTool(mcp.NewTool("run",
		mcp.WithDescription("Execute one minish command line. Supports | pipelines and < > redirection. Returns stdout, stderr and the exit status."),
		mcp.WithString("line",
			mcp.Required(),
			mcp.Description("the command line to execute"),
		),
	), r.handle)
	return s
}

// toolRunner executes tool calls one at a time; the interpreter and the
// process working directory are shared state.
type toolRunner struct {
	app *app
	cfg *config.Config
	mu  sync.Mutex
}

func (r *toolRunner) handle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	line, err := request.RequireString("line")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var out, errOut strings.Builder
	std := streams.Set{In: strings.NewReader(""), Out: &out, Err: &errOut}
	in, err := r.app.newInterp(r.cfg, std, &errOut)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in.Execute(ctx, line)

	return mcp.NewToolResultText(formatToolResult(out.String(), errOut.String(), in.LastStatus())), nil
}

func formatToolResult(stdout, stderr string, status int) string {
	var b strings.Builder
	if stdout != "" {
		b.WriteString(stdout)
		if !strings.HasSuffix(stdout, "\n") {
			b.WriteByte('\n')
		}
	}
	if stderr != "" {
		b.WriteString("[stderr]\n")
		b.WriteString(stderr)
		if !strings.HasSuffix(stderr, "\n") {
			b.WriteByte('\n')
		}
	}
	fmt.Fprintf(&b, "[exit status %d]", status)
	return b.String()
}
