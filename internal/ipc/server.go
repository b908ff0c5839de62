package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/runtimepath"
	"github.com/1broseidon/tilevim/internal/service"
)

// Handler runs requests against the daemon. Implementations serialize the
// calls onto the daemon's event queue; the server calls them from
// connection goroutines.
type Handler interface {
	Execute(text string) []command.Message
	Key(key string) []command.Message
	Submit(text string) []command.Message
	Hint(text string) service.HintState
	Cycle(text string, dir int) service.HintState
	ClearHint()
	History(dir int, text string) string
	Status() service.Snapshot
	Report() string
	Reload() error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	logger       zerolog.Logger
	startTime    time.Time
	shuttingDown bool
	shutdownMu   sync.Mutex
	wg           sync.WaitGroup
}

// NewServer creates a server on the default socket path.
func NewServer(handler Handler, logger zerolog.Logger) (*Server, error) {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
	}
	return NewServerAt(socketPath, handler, logger), nil
}

// NewServerAt creates a server listening on socketPath.
func NewServerAt(socketPath string, handler Handler, logger zerolog.Logger) *Server {
	// Remove existing socket if present
	os.Remove(socketPath)

	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger.With().Str("component", "ipc").Logger(),
		startTime:  time.Now(),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	// Set socket permissions
	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info().Str("socket", s.socketPath).Msg("IPC server listening")

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn().Err(err).Msg("IPC accept error")
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a single IPC connection
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Read the request (expect JSON on a single line)
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Warn().Err(err).Msg("IPC read error")
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	log := s.logger.With().Str("request_id", req.ID).Str("command", string(req.Command)).Logger()
	log.Debug().Msg("IPC request")

	resp := s.handleCommand(req)
	resp.ID = req.ID
	if resp.Status == "ERROR" {
		log.Warn().Str("error", resp.Error).Msg("IPC request failed")
	}

	respData, err := resp.Marshal()
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal response")
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		log.Warn().Err(err).Msg("failed to send response")
	}
}

// handleCommand processes an IPC command and returns a response
func (s *Server) handleCommand(req *Request) *Response {
	switch req.Command {
	case CommandExecute:
		var p TextPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return okResponse(MessagesData{Messages: s.handler.Execute(p.Text)})
	case CommandKey:
		var p KeyPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		if p.Key == "" {
			return NewErrorResponse("key is required")
		}
		return okResponse(MessagesData{Messages: s.handler.Key(p.Key)})
	case CommandSubmit:
		var p TextPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return okResponse(MessagesData{Messages: s.handler.Submit(p.Text)})
	case CommandHint:
		var p TextPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return okResponse(s.handler.Hint(p.Text))
	case CommandCycle:
		var p MovePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return okResponse(s.handler.Cycle(p.Text, step(p.Direction)))
	case CommandClearHint:
		s.handler.ClearHint()
		return okResponse(nil)
	case CommandHistory:
		var p MovePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		return okResponse(HistoryData{Input: s.handler.History(step(p.Direction), p.Text)})
	case CommandGetStatus:
		return okResponse(StatusData{
			Snapshot:      s.handler.Status(),
			UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
			DaemonRunning: true,
			PID:           os.Getpid(),
		})
	case CommandGetBuffers:
		return okResponse(BuffersData{Buffers: s.handler.Status().Buffers})
	case CommandReport:
		return okResponse(ReportData{Text: s.handler.Report()})
	case CommandReload:
		if err := s.handler.Reload(); err != nil {
			return NewErrorResponse(fmt.Sprintf("Failed to reload config: %v", err))
		}
		return okResponse(nil)
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func decodePayload(payload json.RawMessage, dst any) error {
	if len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func okResponse(data any) *Response {
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

// step maps a direction to -1 or +1; zero moves forward.
func step(n int) int {
	if n < 0 {
		return -1
	}
	return 1
}

// sendError sends an error response
func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
