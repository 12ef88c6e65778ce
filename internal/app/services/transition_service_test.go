package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/app/models/dto"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
)

// fakeRecordStore is an in-memory record store with the same
// compare-and-set semantics as the database layer.
type fakeRecordStore struct {
	mu          sync.Mutex
	apps        map[int64]*models.Application
	transitions map[int64][]models.StatusTransition
	nextSeq     int64
	archived    map[int64]bool
	deleted     map[int64]bool
}

func newFakeRecordStore(apps ...*models.Application) *fakeRecordStore {
	s := &fakeRecordStore{
		apps:        make(map[int64]*models.Application),
		transitions: make(map[int64][]models.StatusTransition),
		archived:    make(map[int64]bool),
		deleted:     make(map[int64]bool),
	}
	for _, app := range apps {
		copied := *app
		s.apps[app.ID] = &copied
	}
	return s
}

func (s *fakeRecordStore) GetByID(_ context.Context, id int64) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	copied := *app
	return &copied, nil
}

func (s *fakeRecordStore) ApplyTransition(_ context.Context, applicationID int64, tr *models.StatusTransition, expectedVersion int64) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[applicationID]
	if !ok {
		return nil, apperrors.ErrApplicationNotFound
	}
	if app.Version != expectedVersion {
		return nil, apperrors.ErrConcurrentModification
	}

	app.Status = tr.ToStatus
	app.Version++
	s.nextSeq++
	tr.Seq = s.nextSeq
	s.transitions[applicationID] = append(s.transitions[applicationID], *tr)

	copied := *app
	return &copied, nil
}

func (s *fakeRecordStore) ListTransitions(_ context.Context, applicationID int64) ([]models.StatusTransition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.StatusTransition(nil), s.transitions[applicationID]...), nil
}

func (s *fakeRecordStore) SetArchived(_ context.Context, id int64, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return apperrors.ErrApplicationNotFound
	}
	if app.Archived != archived {
		app.Archived = archived
		app.Version++
	}
	s.archived[id] = archived
	return nil
}

func (s *fakeRecordStore) DeleteCascade(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[id]; !ok {
		return apperrors.ErrApplicationNotFound
	}
	delete(s.apps, id)
	delete(s.transitions, id)
	s.deleted[id] = true
	return nil
}

func agentID(id int64) *int64 { return &id }

func draftApplication(id int64, agent *int64) *models.Application {
	return &models.Application{
		ID:      id,
		Status:  models.StatusDraft,
		AgentID: agent,
		Version: 0,
	}
}

var (
	actorAgent    = models.Actor{UserID: 10, Role: models.RoleAgent}
	actorSubAdmin = models.Actor{UserID: 20, Role: models.RoleSubAdmin}
	actorAdmin    = models.Actor{UserID: 30, Role: models.RoleAdmin}
)

func TestRequestTransition_FullReviewRound(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(10)))
	svc := NewTransitionService(store)
	ctx := context.Background()

	app, err := svc.RequestTransition(ctx, actorAgent, 1, dto.TransitionRequest{
		ToStatus: models.StatusSubmitted, ExpectedVersion: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, app.Status)
	assert.Equal(t, int64(1), app.Version)

	app, err = svc.RequestTransition(ctx, actorSubAdmin, 1, dto.TransitionRequest{
		ToStatus: models.StatusUnderReview, ExpectedVersion: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, app.Status)

	app, err = svc.RequestTransition(ctx, actorSubAdmin, 1, dto.TransitionRequest{
		ToStatus: models.StatusIncomplete, Notes: "missing transcript", ExpectedVersion: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusIncomplete, app.Status)

	app, err = svc.RequestTransition(ctx, actorAgent, 1, dto.TransitionRequest{
		ToStatus: models.StatusSubmitted, ExpectedVersion: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, app.Status)
	assert.Equal(t, int64(4), app.Version)

	history, err := svc.GetHistory(ctx, actorSubAdmin, 1)
	require.NoError(t, err)
	require.Len(t, history, 4)

	assert.Equal(t, "missing transcript", history[2].Notes)
	assert.Equal(t, actorSubAdmin.UserID, history[2].ActorUserID)
	for i := 1; i < len(history); i++ {
		assert.Greater(t, history[i].Seq, history[i-1].Seq)
		assert.Equal(t, history[i-1].ToStatus, history[i].FromStatus)
	}
}

func TestRequestTransition_TerminalStatusHasNoExit(t *testing.T) {
	app := draftApplication(1, agentID(10))
	app.Status = models.StatusApproved
	app.Version = 4
	store := newFakeRecordStore(app)
	svc := NewTransitionService(store)

	_, err := svc.RequestTransition(context.Background(), actorAdmin, 1, dto.TransitionRequest{
		ToStatus: models.StatusSubmitted, ExpectedVersion: 4,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	history, err := svc.GetHistory(context.Background(), actorAdmin, 1)
	require.NoError(t, err)
	assert.Empty(t, history, "failed transition must not append to history")
}

func TestRequestTransition_RoleNotPermittedOnEdge(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(10)))
	svc := NewTransitionService(store)

	// Sub-admins review, they do not submit on behalf of agents
	_, err := svc.RequestTransition(context.Background(), actorSubAdmin, 1, dto.TransitionRequest{
		ToStatus: models.StatusSubmitted, ExpectedVersion: 0,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestRequestTransition_AgentCannotSeeForeignRecord(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(99)))
	svc := NewTransitionService(store)

	otherAgent := models.Actor{UserID: 10, Role: models.RoleAgent}
	_, err := svc.RequestTransition(context.Background(), otherAgent, 1, dto.TransitionRequest{
		ToStatus: models.StatusSubmitted, ExpectedVersion: 0,
	})
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)

	_, err = svc.GetHistory(context.Background(), otherAgent, 1)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}

func TestRequestTransition_StaleVersionRejected(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(10)))
	svc := NewTransitionService(store)
	ctx := context.Background()

	_, err := svc.RequestTransition(ctx, actorAgent, 1, dto.TransitionRequest{
		ToStatus: models.StatusSubmitted, ExpectedVersion: 0,
	})
	require.NoError(t, err)

	// Re-presenting the old version must fail, not double-apply
	_, err = svc.RequestTransition(ctx, actorSubAdmin, 1, dto.TransitionRequest{
		ToStatus: models.StatusUnderReview, ExpectedVersion: 0,
	})
	assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)

	history, err := svc.GetHistory(ctx, actorSubAdmin, 1)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRequestTransition_StaleVersionBeatsEdgeValidation(t *testing.T) {
	app := draftApplication(1, agentID(10))
	app.Status = models.StatusUnderReview
	app.Version = 2
	store := newFakeRecordStore(app)
	svc := NewTransitionService(store)
	ctx := context.Background()

	_, err := svc.RequestTransition(ctx, actorAdmin, 1, dto.TransitionRequest{
		ToStatus: models.StatusRejected, ExpectedVersion: 2,
	})
	require.NoError(t, err)

	// The record is now terminal, so rejected -> approved is not a
	// workflow edge. A caller holding the pre-commit version must still
	// be told about the conflict, not the edge, so it reloads and
	// retries instead of giving up.
	_, err = svc.RequestTransition(ctx, actorAdmin, 1, dto.TransitionRequest{
		ToStatus: models.StatusApproved, ExpectedVersion: 2,
	})
	assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestRequestTransition_ConcurrentRaceHasOneWinner(t *testing.T) {
	app := draftApplication(1, agentID(10))
	app.Status = models.StatusUnderReview
	app.Version = 2
	store := newFakeRecordStore(app)
	svc := NewTransitionService(store)

	type outcome struct {
		to  models.ApplicationStatus
		app *models.Application
		err error
	}
	results := make(chan outcome, 2)
	var wg sync.WaitGroup
	for _, target := range []models.ApplicationStatus{models.StatusApproved, models.StatusRejected} {
		wg.Add(1)
		go func(to models.ApplicationStatus) {
			defer wg.Done()
			got, err := svc.RequestTransition(context.Background(), actorAdmin, 1, dto.TransitionRequest{
				ToStatus: to, ExpectedVersion: 2,
			})
			results <- outcome{to: to, app: got, err: err}
		}(target)
	}
	wg.Wait()
	close(results)

	var successes, conflicts int
	for res := range results {
		switch {
		case res.err == nil:
			successes++
			// The winner's snapshot reflects its own write
			assert.Equal(t, res.to, res.app.Status)
			assert.Equal(t, int64(3), res.app.Version)
		case errors.Is(res.err, apperrors.ErrConcurrentModification):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", res.err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one racer must win")
	assert.Equal(t, 1, conflicts, "the loser must see a version conflict")

	history, err := svc.GetHistory(context.Background(), actorAdmin, 1)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRequestTransition_UnknownTargetStatus(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(10)))
	svc := NewTransitionService(store)

	_, err := svc.RequestTransition(context.Background(), actorAgent, 1, dto.TransitionRequest{
		ToStatus: "pending", ExpectedVersion: 0,
	})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestRequestTransition_MissingApplication(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewTransitionService(store)

	_, err := svc.RequestTransition(context.Background(), actorAdmin, 404, dto.TransitionRequest{
		ToStatus: models.StatusSubmitted, ExpectedVersion: 0,
	})
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}
