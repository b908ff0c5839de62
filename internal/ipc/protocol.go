package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/service"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandExecute    CommandType = "EXECUTE"
	CommandKey        CommandType = "KEY"
	CommandSubmit     CommandType = "SUBMIT"
	CommandHint       CommandType = "HINT"
	CommandCycle      CommandType = "CYCLE"
	CommandClearHint  CommandType = "CLEAR_HINT"
	CommandHistory    CommandType = "HISTORY"
	CommandGetStatus  CommandType = "GET_STATUS"
	CommandGetBuffers CommandType = "GET_BUFFERS"
	CommandReport     CommandType = "REPORT"
	CommandReload     CommandType = "RELOAD"
)

// Request represents an IPC request from client to server. ID correlates
// the request with daemon log lines.
type Request struct {
	ID      string          `json:"id,omitempty"`
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	ID     string          `json:"id,omitempty"`
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// TextPayload carries a command line for EXECUTE, SUBMIT and HINT.
type TextPayload struct {
	Text string `json:"text"`
}

// KeyPayload names a bound key chord for KEY.
type KeyPayload struct {
	Key string `json:"key"`
}

// MovePayload carries a direction (+1/-1) for CYCLE and HISTORY.
type MovePayload struct {
	Text      string `json:"text"`
	Direction int    `json:"direction"`
}

// MessagesData is the reply to EXECUTE, KEY and SUBMIT.
type MessagesData struct {
	Messages []command.Message `json:"messages"`
}

// HistoryData is the reply to HISTORY.
type HistoryData struct {
	Input string `json:"input"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	service.Snapshot
	UptimeSeconds int64 `json:"uptime_seconds"`
	DaemonRunning bool  `json:"daemon_running"`
	PID           int   `json:"pid"`
}

// BuffersData is the reply to GET_BUFFERS.
type BuffersData struct {
	Buffers []service.Buffer `json:"buffers"`
}

// ReportData is the reply to REPORT.
type ReportData struct {
	Text string `json:"text"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
