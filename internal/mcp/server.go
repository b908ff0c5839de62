// Package mcp exposes the running daemon to MCP clients over stdio.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/ipc"
	"github.com/1broseidon/tilevim/internal/service"
)

const (
	ServerName    = "tilevim"
	ServerVersion = "0.1.0"
)

// Daemon is the part of the IPC client the tools call.
type Daemon interface {
	Execute(text string) ([]command.Message, error)
	Key(key string) ([]command.Message, error)
	Buffers() ([]service.Buffer, error)
	GetStatus() (*ipc.StatusData, error)
	Report() (string, error)
}

// Server is the MCP server forwarding tool calls to the daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    Daemon
	logger    zerolog.Logger
}

// NewServer creates a server calling d.
func NewServer(d Daemon, logger zerolog.Logger) *Server {
	s := &Server{
		daemon: d,
		logger: logger.With().Str("component", "mcp").Logger(),
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "execute",
		Description: "Run a tilevim command line, as typed in the prompt: buffers/ls, b <n|name>, bd, e <app>, !<shell>, layout T|M|none, gap inner|outer <px>, decorate [FLAG], centralize, maximize, minimize, only, reload, report. Returns the command's messages; failures are listed under errors.",
	}, s.handleExecute)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "key",
		Description: "Run the action bound to a key chord (e.g. Mod4-j focuses the next window in the stack), as if it was pressed.",
	}, s.handleKey)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "buffers",
		Description: "List managed windows with their buffer number, title, application, workspace and whether they are active or minimized.",
	}, s.handleBuffers)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "layout",
		Description: "Show the layout state of the active workspace: layout, master count and factor per monitor, and the gaps.",
	}, s.handleLayout)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "report",
		Description: "Return the diagnostic report: window geometry, decoration state, gaps and per-workspace monitors.",
	}, s.handleReport)
}
