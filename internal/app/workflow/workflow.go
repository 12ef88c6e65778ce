// Package workflow holds the fixed application state graph and the
// role policy for each edge. The graph is small and stable, so it is
// kept as one explicit table that can be audited and tested
// exhaustively instead of a generic rules engine.
package workflow

import (
	"fmt"

	"github.com/admitflow/admitflow/internal/app/models"
)

// Edge is one directed transition of the state graph
type Edge struct {
	From models.ApplicationStatus
	To   models.ApplicationStatus
}

// transitionPolicy maps every allowed edge to the set of roles that may
// traverse it. An edge that is absent is an invalid transition for
// everyone. Agents may only traverse their edges on records they own;
// ownership is checked by the transition service, not here.
var transitionPolicy = map[Edge]map[models.RoleType]bool{
	{models.StatusDraft, models.StatusSubmitted}: {
		models.RoleAgent:      true,
		models.RoleAdmin:      true,
		models.RoleSuperAdmin: true,
	},
	{models.StatusSubmitted, models.StatusUnderReview}: {
		models.RoleSubAdmin:   true,
		models.RoleAdmin:      true,
		models.RoleSuperAdmin: true,
	},
	{models.StatusUnderReview, models.StatusApproved}: {
		models.RoleSubAdmin:   true,
		models.RoleAdmin:      true,
		models.RoleSuperAdmin: true,
	},
	{models.StatusUnderReview, models.StatusRejected}: {
		models.RoleSubAdmin:   true,
		models.RoleAdmin:      true,
		models.RoleSuperAdmin: true,
	},
	{models.StatusUnderReview, models.StatusIncomplete}: {
		models.RoleSubAdmin:   true,
		models.RoleAdmin:      true,
		models.RoleSuperAdmin: true,
	},
	// Resubmission after the applicant supplied missing material
	{models.StatusIncomplete, models.StatusSubmitted}: {
		models.RoleAgent:      true,
		models.RoleAdmin:      true,
		models.RoleSuperAdmin: true,
	},
}

// IsTerminal reports whether the status has no outgoing edges.
func IsTerminal(s models.ApplicationStatus) bool {
	return s == models.StatusApproved || s == models.StatusRejected
}

// CanTransition reports whether (from, to) is an edge of the graph.
func CanTransition(from, to models.ApplicationStatus) bool {
	_, ok := transitionPolicy[Edge{From: from, To: to}]
	return ok
}

// RoleAllowed reports whether the role may traverse the (from, to)
// edge. It returns false for edges that are not in the graph at all.
func RoleAllowed(from, to models.ApplicationStatus, role models.RoleType) bool {
	roles, ok := transitionPolicy[Edge{From: from, To: to}]
	if !ok {
		return false
	}
	return roles[role]
}

// RequiresOwnership reports whether the role may act only on records it
// owns. Agents submit and resubmit their own applications; reviewer and
// admin roles act on any record.
func RequiresOwnership(role models.RoleType) bool {
	return role == models.RoleAgent
}

// AllowedTargets returns the statuses reachable from the given status,
// regardless of role. Useful for surfacing next actions to the UI.
func AllowedTargets(from models.ApplicationStatus) []models.ApplicationStatus {
	var targets []models.ApplicationStatus
	for edge := range transitionPolicy {
		if edge.From == from {
			targets = append(targets, edge.To)
		}
	}
	return targets
}

// DescribeEdge returns a human-readable name for a transition, used in
// actionable error messages.
func DescribeEdge(from, to models.ApplicationStatus) string {
	return fmt.Sprintf("%s -> %s", from, to)
}
