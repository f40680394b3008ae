package sld

import (
	"github.com/cadream/backend/internal/models"
)

// DraftPhase is the wiring-tool mode. One tagged value instead of a pile of
// nullable fields, so illegal combinations are unrepresentable.
type DraftPhase string

const (
	PhaseIdle         DraftPhase = "idle"
	PhaseDrafting     DraftPhase = "drafting"
	PhaseReconnecting DraftPhase = "reconnecting"
)

// EdgeEnd names which endpoint of an edge a reconnect targets.
type EdgeEnd string

const (
	EndFrom EdgeEnd = "from"
	EndTo   EdgeEnd = "to"
)

// Draft is the in-progress wire state. Fields beyond Phase are only
// meaningful in the phase that sets them.
type Draft struct {
	Phase DraftPhase `json:"phase"`

	// Drafting: the anchor terminal and the committed corner points.
	FromNode     string         `json:"from_node,omitempty"`
	FromTerminal string         `json:"from_terminal,omitempty"`
	Points       []models.Point `json:"points,omitempty"`

	// Reconnecting: the edge being rewired and which end moves.
	EdgeID string  `json:"edge_id,omitempty"`
	End    EdgeEnd `json:"end,omitempty"`
}

// EditorState is the complete single-line-diagram editing state: the
// committed diagram plus the transient draft. Transitions are pure functions
// returning a new state; the caller owns serialization.
type EditorState struct {
	Diagram models.DiagramState `json:"diagram"`
	Draft   Draft               `json:"draft"`
}

// NewEditorState returns an empty diagram with an idle draft.
func NewEditorState() EditorState {
	return EditorState{
		Diagram: models.DiagramState{
			Nodes:    []models.SldNode{},
			Edges:    []models.SldEdge{},
			Viewport: models.Viewport{Scale: 1},
		},
		Draft: Draft{Phase: PhaseIdle},
	}
}

// PlaceNode adds a node of the given symbol type at pos, instantiating the
// symbol's terminal templates. Unknown symbol types leave the state
// unchanged.
func PlaceNode(s EditorState, reg *Registry, symbolType string, pos models.Point, label string) EditorState {
	def := reg.Get(symbolType)
	if def == nil {
		return s
	}
	if label == "" {
		label = def.Label
	}

	ids := make([]string, len(s.Diagram.Nodes))
	for i := range s.Diagram.Nodes {
		ids[i] = s.Diagram.Nodes[i].ID
	}

	node := models.SldNode{
		ID:    models.FormatID("node", models.NextCounter(ids, "node")),
		Type:  symbolType,
		Label: label,
		Pos:   pos,
	}
	for _, tmpl := range def.Terminals {
		node.Terminals = append(node.Terminals, models.SldTerminal{
			ID:     tmpl.ID,
			Offset: tmpl.Offset,
			Role:   tmpl.Role,
		})
	}

	nodes := make([]models.SldNode, 0, len(s.Diagram.Nodes)+1)
	nodes = append(nodes, s.Diagram.Nodes...)
	nodes = append(nodes, node)
	s.Diagram.Nodes = nodes
	return s
}

// DeleteNode removes a node and cascade-deletes every edge touching it.
// A draft anchored to the node is discarded.
func DeleteNode(s EditorState, nodeID string) EditorState {
	nodes := make([]models.SldNode, 0, len(s.Diagram.Nodes))
	for _, n := range s.Diagram.Nodes {
		if n.ID != nodeID {
			nodes = append(nodes, n)
		}
	}
	edges := make([]models.SldEdge, 0, len(s.Diagram.Edges))
	for _, e := range s.Diagram.Edges {
		if e.FromNode != nodeID && e.ToNode != nodeID {
			edges = append(edges, e)
		}
	}
	s.Diagram.Nodes = nodes
	s.Diagram.Edges = edges

	if s.Draft.Phase == PhaseDrafting && s.Draft.FromNode == nodeID {
		s.Draft = Draft{Phase: PhaseIdle}
	}
	return s
}

// MoveNode repositions a node and reroutes all edges.
func MoveNode(s EditorState, nodeID string, pos models.Point) EditorState {
	nodes := make([]models.SldNode, len(s.Diagram.Nodes))
	copy(nodes, s.Diagram.Nodes)
	s.Diagram.Nodes = nodes

	n := s.Diagram.Node(nodeID)
	if n == nil {
		return s
	}
	n.Pos = pos

	edges := make([]models.SldEdge, len(s.Diagram.Edges))
	copy(edges, s.Diagram.Edges)
	s.Diagram.Edges = edges
	RerouteAll(&s.Diagram)
	return s
}

// ClickTerminal is the terminal-click transition of the wiring tool.
//
//	Idle          -> Drafting   start a wire at the terminal
//	Drafting      -> Idle       commit a new edge (compatible target),
//	                            or silently discard (incompatible / same)
//	Reconnecting  -> Idle       reassign the chosen end if compatible
func ClickTerminal(s EditorState, nodeID, terminalID string) EditorState {
	switch s.Draft.Phase {
	case PhaseIdle:
		start, ok := TerminalPosition(s.Diagram.Node(nodeID), terminalID)
		if !ok {
			return s
		}
		s.Draft = Draft{
			Phase:        PhaseDrafting,
			FromNode:     nodeID,
			FromTerminal: terminalID,
			Points:       []models.Point{start},
		}
		return s

	case PhaseDrafting:
		return commitDraft(s, nodeID, terminalID)

	case PhaseReconnecting:
		return applyReconnect(s, nodeID, terminalID)
	}
	return s
}

// ClickCanvas appends a manual corner while drafting: an orthogonal leg from
// the last committed point to the click point.
func ClickCanvas(s EditorState, p models.Point) EditorState {
	if s.Draft.Phase != PhaseDrafting || len(s.Draft.Points) == 0 {
		return s
	}
	last := s.Draft.Points[len(s.Draft.Points)-1]
	pts := make([]models.Point, 0, len(s.Draft.Points)+2)
	pts = append(pts, s.Draft.Points...)
	pts = append(pts, Leg(last, p)...)
	s.Draft.Points = CollapseDuplicates(pts)
	return s
}

// Cancel unconditionally discards any in-progress draft. Nothing was
// committed, so nothing needs rolling back.
func Cancel(s EditorState) EditorState {
	s.Draft = Draft{Phase: PhaseIdle}
	return s
}

// BeginReconnect arms a reconnect of one end of an existing edge. The next
// terminal click reassigns that end.
func BeginReconnect(s EditorState, edgeID string, end EdgeEnd) EditorState {
	if s.Diagram.Edge(edgeID) == nil {
		return s
	}
	if end != EndFrom && end != EndTo {
		return s
	}
	s.Draft = Draft{Phase: PhaseReconnecting, EdgeID: edgeID, End: end}
	return s
}

// Preview returns the live route shown while drafting: committed points plus
// a leg to the pointer. Display only; committed state is never touched.
func Preview(s EditorState, cursor models.Point) []models.Point {
	if s.Draft.Phase != PhaseDrafting || len(s.Draft.Points) == 0 {
		return nil
	}
	last := s.Draft.Points[len(s.Draft.Points)-1]
	pts := make([]models.Point, 0, len(s.Draft.Points)+2)
	pts = append(pts, s.Draft.Points...)
	pts = append(pts, Leg(last, cursor)...)
	return CollapseDuplicates(pts)
}

// commitDraft finishes a drafting wire on a target terminal. Incompatible or
// same-terminal targets discard the draft with no edge and no error.
func commitDraft(s EditorState, nodeID, terminalID string) EditorState {
	draft := s.Draft
	s.Draft = Draft{Phase: PhaseIdle}

	if nodeID == draft.FromNode && terminalID == draft.FromTerminal {
		return s
	}

	fromNode := s.Diagram.Node(draft.FromNode)
	toNode := s.Diagram.Node(nodeID)
	if fromNode == nil || toNode == nil {
		return s
	}
	from := fromNode.Terminal(draft.FromTerminal)
	to := toNode.Terminal(terminalID)
	if from == nil || to == nil {
		return s
	}
	if !RolesCompatible(from.Role, to.Role) {
		return s
	}

	end, _ := TerminalPosition(toNode, terminalID)
	last := draft.Points[len(draft.Points)-1]
	pts := make([]models.Point, 0, len(draft.Points)+2)
	pts = append(pts, draft.Points...)
	pts = append(pts, Leg(last, end)...)

	ids := make([]string, len(s.Diagram.Edges))
	for i := range s.Diagram.Edges {
		ids[i] = s.Diagram.Edges[i].ID
	}

	edge := models.SldEdge{
		ID:           models.FormatID("edge", models.NextCounter(ids, "edge")),
		FromNode:     draft.FromNode,
		FromTerminal: draft.FromTerminal,
		ToNode:       nodeID,
		ToTerminal:   terminalID,
		Points:       CollapseDuplicates(pts),
	}

	edges := make([]models.SldEdge, 0, len(s.Diagram.Edges)+1)
	edges = append(edges, s.Diagram.Edges...)
	edges = append(edges, edge)
	s.Diagram.Edges = edges
	return s
}

// applyReconnect reassigns the armed edge end to the clicked terminal when
// the new pairing is role-compatible with the edge's other, unchanged
// endpoint. Incompatible targets leave the edge as it was.
func applyReconnect(s EditorState, nodeID, terminalID string) EditorState {
	draft := s.Draft
	s.Draft = Draft{Phase: PhaseIdle}

	edges := make([]models.SldEdge, len(s.Diagram.Edges))
	copy(edges, s.Diagram.Edges)
	s.Diagram.Edges = edges

	edge := s.Diagram.Edge(draft.EdgeID)
	if edge == nil {
		return s
	}

	newNode := s.Diagram.Node(nodeID)
	if newNode == nil {
		return s
	}
	newTerm := newNode.Terminal(terminalID)
	if newTerm == nil {
		return s
	}

	var otherNodeID, otherTerminalID string
	if draft.End == EndFrom {
		otherNodeID, otherTerminalID = edge.ToNode, edge.ToTerminal
	} else {
		otherNodeID, otherTerminalID = edge.FromNode, edge.FromTerminal
	}
	otherNode := s.Diagram.Node(otherNodeID)
	if otherNode == nil {
		return s
	}
	other := otherNode.Terminal(otherTerminalID)
	if other == nil {
		return s
	}
	if !RolesCompatible(newTerm.Role, other.Role) {
		return s
	}

	if draft.End == EndFrom {
		edge.FromNode, edge.FromTerminal = nodeID, terminalID
	} else {
		edge.ToNode, edge.ToTerminal = nodeID, terminalID
	}
	edge.Points = Route(edge, &s.Diagram)
	return s
}
