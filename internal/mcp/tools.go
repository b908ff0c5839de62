package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tilevim/internal/command"
	"github.com/1broseidon/tilevim/internal/service"
)

func (s *Server) handleExecute(_ context.Context, _ *mcpsdk.CallToolRequest, args ExecuteInput) (*mcpsdk.CallToolResult, ExecuteOutput, error) {
	text := strings.TrimSpace(args.Command)
	if text == "" {
		return nil, ExecuteOutput{}, fmt.Errorf("command is required")
	}
	msgs, err := s.daemon.Execute(text)
	if err != nil {
		return nil, ExecuteOutput{}, err
	}
	out := splitMessages(msgs)
	s.logger.Info().Str("command", text).Int("errors", len(out.Errors)).Msg("execute")
	return nil, out, nil
}

func (s *Server) handleKey(_ context.Context, _ *mcpsdk.CallToolRequest, args KeyInput) (*mcpsdk.CallToolResult, ExecuteOutput, error) {
	key := strings.TrimSpace(args.Key)
	if key == "" {
		return nil, ExecuteOutput{}, fmt.Errorf("key is required")
	}
	msgs, err := s.daemon.Key(key)
	if err != nil {
		return nil, ExecuteOutput{}, err
	}
	out := splitMessages(msgs)
	s.logger.Info().Str("key", key).Int("errors", len(out.Errors)).Msg("key")
	return nil, out, nil
}

func (s *Server) handleBuffers(_ context.Context, _ *mcpsdk.CallToolRequest, args BuffersInput) (*mcpsdk.CallToolResult, BuffersOutput, error) {
	buffers, err := s.daemon.Buffers()
	if err != nil {
		return nil, BuffersOutput{}, err
	}
	out := BuffersOutput{Buffers: buffers}
	if args.Workspace != nil {
		out.Buffers = out.Buffers[:0:0]
		for _, b := range buffers {
			if b.Workspace == *args.Workspace {
				out.Buffers = append(out.Buffers, b)
			}
		}
	}
	if out.Buffers == nil {
		out.Buffers = []service.Buffer{}
	}
	return nil, out, nil
}

func (s *Server) handleLayout(_ context.Context, _ *mcpsdk.CallToolRequest, _ LayoutInput) (*mcpsdk.CallToolResult, LayoutOutput, error) {
	status, err := s.daemon.GetStatus()
	if err != nil {
		return nil, LayoutOutput{}, err
	}
	return nil, LayoutOutput{
		Primary:   status.Primary,
		Secondary: status.Secondary,
		Monitors:  status.Monitors,
		InnerGap:  status.Gaps.Inner,
		OuterGap:  status.Gaps.Outer,
	}, nil
}

func (s *Server) handleReport(_ context.Context, _ *mcpsdk.CallToolRequest, _ ReportInput) (*mcpsdk.CallToolResult, ReportOutput, error) {
	text, err := s.daemon.Report()
	if err != nil {
		return nil, ReportOutput{}, err
	}
	return nil, ReportOutput{Report: text}, nil
}

func splitMessages(msgs []command.Message) ExecuteOutput {
	out := ExecuteOutput{Messages: []string{}}
	for _, m := range msgs {
		if m.Level == command.LevelError {
			out.Errors = append(out.Errors, m.Text)
			continue
		}
		out.Messages = append(out.Messages, m.Text)
	}
	return out
}
