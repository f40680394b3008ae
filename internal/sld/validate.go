package sld

import (
	"fmt"

	"github.com/cadream/backend/internal/models"
)

// RolesCompatible reports whether two terminal roles may be wired together:
// `line` connects to anything, otherwise the pair must be (out,in) in either
// order. (in,in) and (out,out) are incompatible.
func RolesCompatible(a, b models.TerminalRole) bool {
	if a == models.RoleLine || b == models.RoleLine {
		return true
	}
	return (a == models.RoleOut && b == models.RoleIn) ||
		(a == models.RoleIn && b == models.RoleOut)
}

// Validate recomputes all connectivity findings for a diagram. It is a pure
// function over the current state, cheap enough to rerun on every change at
// diagram scale, and never blocks an edit; severity is informational only.
func Validate(d *models.DiagramState, reg *Registry) []models.Issue {
	issues := make([]models.Issue, 0)

	for i := range d.Edges {
		edge := &d.Edges[i]

		fromNode := d.Node(edge.FromNode)
		toNode := d.Node(edge.ToNode)
		var from, to *models.SldTerminal
		if fromNode != nil {
			from = fromNode.Terminal(edge.FromTerminal)
		}
		if toNode != nil {
			to = toNode.Terminal(edge.ToTerminal)
		}

		// An unresolved endpoint (deleted node, renamed terminal) makes
		// role checks meaningless, so the edge gets one finding and no
		// further checks.
		if from == nil || to == nil {
			issues = append(issues, models.Issue{
				Code:     models.IssueDanglingEdgeEndpoint,
				Severity: models.SeverityError,
				Message:  fmt.Sprintf("edge %s references a missing node or terminal", edge.ID),
				EdgeID:   edge.ID,
			})
			continue
		}

		if !RolesCompatible(from.Role, to.Role) {
			issues = append(issues, models.Issue{
				Code:     models.IssueInvalidEdgeEndpoint,
				Severity: models.SeverityError,
				Message:  fmt.Sprintf("edge %s connects incompatible roles %s and %s", edge.ID, from.Role, to.Role),
				EdgeID:   edge.ID,
			})
		}
	}

	for i := range d.Nodes {
		node := &d.Nodes[i]
		def := reg.Get(node.Type)
		if def == nil {
			// Unknown symbol type: skip the node, never an error.
			continue
		}
		for _, tmpl := range def.Terminals {
			if !tmpl.Required {
				continue
			}
			if !terminalConnected(d, node.ID, tmpl.ID) {
				issues = append(issues, models.Issue{
					Code:     models.IssueMissingRequiredConnection,
					Severity: models.SeverityWarning,
					Message:  fmt.Sprintf("terminal %s of %s has no connection", tmpl.ID, node.ID),
					NodeID:   node.ID,
				})
			}
		}
	}

	return issues
}

// terminalConnected reports whether any edge endpoint references the given
// (node, terminal) pair.
func terminalConnected(d *models.DiagramState, nodeID, terminalID string) bool {
	for i := range d.Edges {
		e := &d.Edges[i]
		if e.FromNode == nodeID && e.FromTerminal == terminalID {
			return true
		}
		if e.ToNode == nodeID && e.ToTerminal == terminalID {
			return true
		}
	}
	return false
}
