package models

// TerminalRole is the electrical role of a symbol terminal.
type TerminalRole string

const (
	RoleLine TerminalRole = "line"
	RoleIn   TerminalRole = "in"
	RoleOut  TerminalRole = "out"
)

// TerminalTemplate is one connection point in a symbol definition: a local
// offset from the symbol origin plus its role. Required terminals produce a
// validator warning while unconnected.
type TerminalTemplate struct {
	ID       string       `json:"id"`
	Offset   Point        `json:"offset"`
	Role     TerminalRole `json:"role"`
	Required bool         `json:"required,omitempty"`
}

// SymbolDefinition describes one diagram symbol type. Definitions live in the
// process-lifetime catalog and are never mutated.
type SymbolDefinition struct {
	Type      string             `json:"type"`
	Label     string             `json:"label"`
	Width     float64            `json:"width"`
	Height    float64            `json:"height"`
	Terminals []TerminalTemplate `json:"terminals"`
}

// SldTerminal is a terminal instantiated on a placed node. It is copied from
// the symbol's template at node-creation time, so later catalog changes do
// not rewrite existing diagrams.
type SldTerminal struct {
	ID     string       `json:"id"`
	Offset Point        `json:"offset"`
	Role   TerminalRole `json:"role"`
}

// SldNode is one placed symbol in the single-line diagram.
type SldNode struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Label     string         `json:"label,omitempty"`
	Pos       Point          `json:"pos"`
	Rotation  float64        `json:"rotation,omitempty"`
	Terminals []SldTerminal  `json:"terminals"`
	Meta      map[string]any `json:"meta,omitempty"`
}

// Terminal returns the terminal with the given id, or nil.
func (n *SldNode) Terminal(id string) *SldTerminal {
	for i := range n.Terminals {
		if n.Terminals[i].ID == id {
			return &n.Terminals[i]
		}
	}
	return nil
}

// SldEdge is a wire between two node terminals. Endpoints may transiently
// reference deleted nodes or unknown terminals mid-edit; the validator
// reports that, routing degrades to an empty result.
type SldEdge struct {
	ID           string  `json:"id"`
	FromNode     string  `json:"from_node"`
	FromTerminal string  `json:"from_terminal"`
	ToNode       string  `json:"to_node"`
	ToTerminal   string  `json:"to_terminal"`
	Points       []Point `json:"points,omitempty"`
}

// DiagramState is the single-line-diagram half of an editor session.
type DiagramState struct {
	Nodes    []SldNode `json:"nodes"`
	Edges    []SldEdge `json:"edges"`
	ToolMode string    `json:"tool_mode,omitempty"`
	Viewport Viewport  `json:"viewport"`
}

// Node returns the node with the given id, or nil.
func (d *DiagramState) Node(id string) *SldNode {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}

// Edge returns the edge with the given id, or nil.
func (d *DiagramState) Edge(id string) *SldEdge {
	for i := range d.Edges {
		if d.Edges[i].ID == id {
			return &d.Edges[i]
		}
	}
	return nil
}

// Issue severities. Severity is informational only: the validator never
// blocks an edit.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Issue codes emitted by the connectivity validator.
const (
	IssueDanglingEdgeEndpoint      = "DANGLING_EDGE_ENDPOINT"
	IssueInvalidEdgeEndpoint       = "INVALID_EDGE_ENDPOINT"
	IssueMissingRequiredConnection = "MISSING_REQUIRED_TERMINAL_CONNECTION"
)

// Issue is a single validation finding. Findings are data, not errors.
type Issue struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	NodeID   string `json:"nodeId,omitempty"`
	EdgeID   string `json:"edgeId,omitempty"`
}
