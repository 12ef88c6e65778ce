package services

import (
	"context"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/app/models/dto"
	"github.com/admitflow/admitflow/internal/app/workflow"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
	"github.com/admitflow/admitflow/internal/pkg/logger"
)

// applicationStore is the record-store surface the workflow services
// depend on. The repositories package satisfies it.
type applicationStore interface {
	GetByID(ctx context.Context, id int64) (*models.Application, error)
	ApplyTransition(ctx context.Context, applicationID int64, tr *models.StatusTransition, expectedVersion int64) (*models.Application, error)
	ListTransitions(ctx context.Context, applicationID int64) ([]models.StatusTransition, error)
}

// TransitionService runs the status workflow: validating edges,
// enforcing role permissions and agent ownership, and appending to the
// audit trail.
type TransitionService interface {
	// RequestTransition moves an application along one workflow edge on
	// behalf of the actor. The request's expected version guards against
	// concurrent modification.
	RequestTransition(ctx context.Context, actor models.Actor, applicationID int64, req dto.TransitionRequest) (*models.Application, error)

	// GetHistory returns the application's full transition history
	// ordered by sequence, oldest first.
	GetHistory(ctx context.Context, actor models.Actor, applicationID int64) ([]models.StatusTransition, error)
}

type transitionService struct {
	store applicationStore
}

// NewTransitionService creates a new TransitionService
func NewTransitionService(store applicationStore) TransitionService {
	return &transitionService{store: store}
}

// visibleTo reports whether the actor may see the record at all. Agents
// see only their own records; reviewer roles share one global view.
func visibleTo(actor models.Actor, app *models.Application) bool {
	if actor.Role.IsReviewer() {
		return true
	}
	return app.AgentID != nil && *app.AgentID == actor.UserID
}

func (s *transitionService) RequestTransition(ctx context.Context, actor models.Actor, applicationID int64, req dto.TransitionRequest) (*models.Application, error) {
	if !req.ToStatus.Valid() {
		return nil, apperrors.NewBadRequestError("unknown target status: " + string(req.ToStatus))
	}

	app, err := s.store.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	// An invisible record is indistinguishable from a missing one
	if !visibleTo(actor, app) {
		return nil, apperrors.ErrApplicationNotFound
	}

	// A stale expected version means the caller validated against an
	// outdated snapshot. Report the conflict before edge validation so
	// the caller reloads and retries instead of treating a raced edge
	// as invalid.
	if app.Version != req.ExpectedVersion {
		logger.Warn().
			Int64("applicationID", applicationID).
			Int64("expectedVersion", req.ExpectedVersion).
			Int64("currentVersion", app.Version).
			Msg("Transition rejected, version conflict")
		return nil, apperrors.ErrConcurrentModification
	}

	if !workflow.CanTransition(app.Status, req.ToStatus) {
		logger.Warn().
			Int64("applicationID", applicationID).
			Str("from", string(app.Status)).
			Str("to", string(req.ToStatus)).
			Msg("Transition rejected, no such workflow edge")
		return nil, apperrors.NewInvalidTransitionError("no transition " + workflow.DescribeEdge(app.Status, req.ToStatus))
	}

	if !workflow.RoleAllowed(app.Status, req.ToStatus, actor.Role) {
		logger.Warn().
			Int64("applicationID", applicationID).
			Int64("actorID", actor.UserID).
			Str("role", string(actor.Role)).
			Str("edge", workflow.DescribeEdge(app.Status, req.ToStatus)).
			Msg("Transition rejected, role not permitted on edge")
		return nil, apperrors.NewForbiddenError("role " + string(actor.Role) + " may not perform transition " + workflow.DescribeEdge(app.Status, req.ToStatus))
	}

	tr := &models.StatusTransition{
		ApplicationID: applicationID,
		FromStatus:    app.Status,
		ToStatus:      req.ToStatus,
		ActorUserID:   actor.UserID,
		ActorRole:     actor.Role,
		Notes:         req.Notes,
	}

	return s.store.ApplyTransition(ctx, applicationID, tr, req.ExpectedVersion)
}

func (s *transitionService) GetHistory(ctx context.Context, actor models.Actor, applicationID int64) ([]models.StatusTransition, error) {
	app, err := s.store.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(actor, app) {
		return nil, apperrors.ErrApplicationNotFound
	}

	return s.store.ListTransitions(ctx, applicationID)
}
