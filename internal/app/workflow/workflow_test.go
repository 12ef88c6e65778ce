package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/admitflow/admitflow/internal/app/models"
)

var allStatuses = []models.ApplicationStatus{
	models.StatusDraft,
	models.StatusSubmitted,
	models.StatusUnderReview,
	models.StatusApproved,
	models.StatusRejected,
	models.StatusIncomplete,
}

var allRoles = []models.RoleType{
	models.RoleAgent,
	models.RoleSubAdmin,
	models.RoleAdmin,
	models.RoleSuperAdmin,
}

func TestCanTransition_AllowedEdges(t *testing.T) {
	allowed := []Edge{
		{models.StatusDraft, models.StatusSubmitted},
		{models.StatusSubmitted, models.StatusUnderReview},
		{models.StatusUnderReview, models.StatusApproved},
		{models.StatusUnderReview, models.StatusRejected},
		{models.StatusUnderReview, models.StatusIncomplete},
		{models.StatusIncomplete, models.StatusSubmitted},
	}

	allowedSet := make(map[Edge]bool, len(allowed))
	for _, e := range allowed {
		allowedSet[e] = true
		assert.True(t, CanTransition(e.From, e.To), "edge %s should be allowed", DescribeEdge(e.From, e.To))
	}

	// Every pair outside the allowed set must be rejected.
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if allowedSet[Edge{from, to}] {
				continue
			}
			assert.False(t, CanTransition(from, to), "edge %s should be rejected", DescribeEdge(from, to))
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusApproved))
	assert.True(t, IsTerminal(models.StatusRejected))

	for _, s := range []models.ApplicationStatus{models.StatusDraft, models.StatusSubmitted, models.StatusUnderReview, models.StatusIncomplete} {
		assert.False(t, IsTerminal(s), "%s should not be terminal", s)
	}
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	for _, from := range []models.ApplicationStatus{models.StatusApproved, models.StatusRejected} {
		assert.Empty(t, AllowedTargets(from), "%s must have no outgoing edges", from)
	}
}

func TestRoleAllowed_AgentEdges(t *testing.T) {
	// Agents may only submit and resubmit.
	assert.True(t, RoleAllowed(models.StatusDraft, models.StatusSubmitted, models.RoleAgent))
	assert.True(t, RoleAllowed(models.StatusIncomplete, models.StatusSubmitted, models.RoleAgent))

	assert.False(t, RoleAllowed(models.StatusSubmitted, models.StatusUnderReview, models.RoleAgent))
	assert.False(t, RoleAllowed(models.StatusUnderReview, models.StatusApproved, models.RoleAgent))
	assert.False(t, RoleAllowed(models.StatusUnderReview, models.StatusRejected, models.RoleAgent))
	assert.False(t, RoleAllowed(models.StatusUnderReview, models.StatusIncomplete, models.RoleAgent))
}

func TestRoleAllowed_SubAdminCannotSubmitOverride(t *testing.T) {
	// Submission overrides on behalf of a student require full admin.
	assert.False(t, RoleAllowed(models.StatusDraft, models.StatusSubmitted, models.RoleSubAdmin))
	assert.False(t, RoleAllowed(models.StatusIncomplete, models.StatusSubmitted, models.RoleSubAdmin))

	assert.True(t, RoleAllowed(models.StatusDraft, models.StatusSubmitted, models.RoleAdmin))
	assert.True(t, RoleAllowed(models.StatusIncomplete, models.StatusSubmitted, models.RoleSuperAdmin))
}

func TestRoleAllowed_ReviewEdges(t *testing.T) {
	reviewEdges := []Edge{
		{models.StatusSubmitted, models.StatusUnderReview},
		{models.StatusUnderReview, models.StatusApproved},
		{models.StatusUnderReview, models.StatusRejected},
		{models.StatusUnderReview, models.StatusIncomplete},
	}

	for _, e := range reviewEdges {
		for _, role := range []models.RoleType{models.RoleSubAdmin, models.RoleAdmin, models.RoleSuperAdmin} {
			assert.True(t, RoleAllowed(e.From, e.To, role), "%s should allow %s", DescribeEdge(e.From, e.To), role)
		}
	}
}

func TestRoleAllowed_InvalidEdgeRejectsEveryRole(t *testing.T) {
	for _, role := range allRoles {
		assert.False(t, RoleAllowed(models.StatusApproved, models.StatusSubmitted, role))
		assert.False(t, RoleAllowed(models.StatusDraft, models.StatusApproved, role))
	}
}

func TestRequiresOwnership(t *testing.T) {
	assert.True(t, RequiresOwnership(models.RoleAgent))
	assert.False(t, RequiresOwnership(models.RoleSubAdmin))
	assert.False(t, RequiresOwnership(models.RoleAdmin))
	assert.False(t, RequiresOwnership(models.RoleSuperAdmin))
}

func TestAllowedTargets_UnderReview(t *testing.T) {
	targets := AllowedTargets(models.StatusUnderReview)
	assert.ElementsMatch(t, []models.ApplicationStatus{
		models.StatusApproved,
		models.StatusRejected,
		models.StatusIncomplete,
	}, targets)
}
