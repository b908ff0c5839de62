package mcp

import "github.com/1broseidon/tilevim/internal/service"

// ExecuteInput is the input for the execute tool.
type ExecuteInput struct {
	Command string `json:"command" jsonschema:"required,Command line to run, e.g. 'layout M', 'b firefox', 'gap inner 8'"`
}

// ExecuteOutput is the output for the execute tool.
type ExecuteOutput struct {
	Messages []string `json:"messages"`
	Errors   []string `json:"errors,omitempty"`
}

// KeyInput is the input for the key tool.
type KeyInput struct {
	Key string `json:"key" jsonschema:"required,Bound key chord, e.g. Mod4-j"`
}

// BuffersInput is the input for the buffers tool.
type BuffersInput struct {
	Workspace *int `json:"workspace,omitempty" jsonschema:"Only list windows on this workspace (default: all)"`
}

// BuffersOutput is the output for the buffers tool.
type BuffersOutput struct {
	Buffers []service.Buffer `json:"buffers"`
}

// LayoutInput is the input for the layout tool.
type LayoutInput struct{}

// LayoutOutput is the output for the layout tool.
type LayoutOutput struct {
	Primary   service.MonitorState  `json:"primary"`
	Secondary *service.MonitorState `json:"secondary,omitempty"`
	Monitors  int                   `json:"monitors"`
	InnerGap  int                   `json:"inner_gap"`
	OuterGap  int                   `json:"outer_gap"`
}

// ReportInput is the input for the report tool.
type ReportInput struct{}

// ReportOutput is the output for the report tool.
type ReportOutput struct {
	Report string `json:"report"`
}
