package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/runtimepath"
	"github.com/1broseidon/tilevim/internal/service"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for the daemon listening on socketPath.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

// sendRequest sends a request and waits for a response
func (c *Client) sendRequest(cmd CommandType, payload any) (*Response, error) {
	req := &Request{ID: uuid.NewString(), Command: cmd}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd, err)
		}
		req.Payload = data
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}
	return &resp, nil
}

func (c *Client) call(cmd CommandType, payload any, out any) error {
	resp, err := c.sendRequest(cmd, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Execute runs a command line on the daemon.
func (c *Client) Execute(text string) ([]command.Message, error) {
	var data MessagesData
	if err := c.call(CommandExecute, TextPayload{Text: text}, &data); err != nil {
		return nil, err
	}
	return data.Messages, nil
}

// Key runs the command bound to key.
func (c *Client) Key(key string) ([]command.Message, error) {
	var data MessagesData
	if err := c.call(CommandKey, KeyPayload{Key: key}, &data); err != nil {
		return nil, err
	}
	return data.Messages, nil
}

// Submit runs a command line typed in the prompt, recording it in the
// daemon's history.
func (c *Client) Submit(text string) ([]command.Message, error) {
	var data MessagesData
	if err := c.call(CommandSubmit, TextPayload{Text: text}, &data); err != nil {
		return nil, err
	}
	return data.Messages, nil
}

// Hint starts completion of text.
func (c *Client) Hint(text string) (service.HintState, error) {
	var st service.HintState
	err := c.call(CommandHint, TextPayload{Text: text}, &st)
	return st, err
}

// Cycle moves the completion highlight by dir.
func (c *Client) Cycle(text string, dir int) (service.HintState, error) {
	var st service.HintState
	err := c.call(CommandCycle, MovePayload{Text: text, Direction: dir}, &st)
	return st, err
}

// ClearHint drops the daemon's completion state.
func (c *Client) ClearHint() error {
	return c.call(CommandClearHint, nil, nil)
}

// History navigates the daemon's command history.
func (c *Client) History(dir int, text string) (string, error) {
	var data HistoryData
	if err := c.call(CommandHistory, MovePayload{Text: text, Direction: dir}, &data); err != nil {
		return "", err
	}
	return data.Input, nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Buffers lists the daemon's buffers.
func (c *Client) Buffers() ([]service.Buffer, error) {
	var data BuffersData
	if err := c.call(CommandGetBuffers, nil, &data); err != nil {
		return nil, err
	}
	return data.Buffers, nil
}

// Report returns the daemon's diagnostic report.
func (c *Client) Report() (string, error) {
	var data ReportData
	if err := c.call(CommandReport, nil, &data); err != nil {
		return "", err
	}
	return data.Text, nil
}

// Reload sends a RELOAD command to the daemon
func (c *Client) Reload() error {
	return c.call(CommandReload, nil, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
