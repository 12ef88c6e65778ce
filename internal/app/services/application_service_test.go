package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/app/models/dto"
	"github.com/admitflow/admitflow/internal/app/repositories"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
)

func (s *fakeRecordStore) Create(_ context.Context, app *models.Application) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var maxID int64
	for id := range s.apps {
		if id > maxID {
			maxID = id
		}
	}
	copied := *app
	copied.ID = maxID + 1
	copied.Status = models.StatusDraft
	s.apps[copied.ID] = &copied
	return copied.ID, nil
}

func (s *fakeRecordStore) List(_ context.Context, filter repositories.ListFilter, agentScope *int64) ([]models.Application, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Application
	for _, app := range s.apps {
		if agentScope != nil && (app.AgentID == nil || *app.AgentID != *agentScope) {
			continue
		}
		if filter.Status != nil && app.Status != *filter.Status {
			continue
		}
		if filter.Archived != nil && app.Archived != *filter.Archived {
			continue
		}
		out = append(out, *app)
	}
	return out, int64(len(out)), nil
}

func (s *fakeRecordStore) UpdateNotes(_ context.Context, id int64, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[id]
	if !ok {
		return apperrors.ErrApplicationNotFound
	}
	app.Notes = notes
	return nil
}

// fakeProgramCatalog serves a fixed program set
type fakeProgramCatalog struct {
	programs map[int64]*models.Program
}

func (s *fakeProgramCatalog) GetByID(_ context.Context, id int64) (*models.Program, error) {
	p, ok := s.programs[id]
	if !ok {
		return nil, apperrors.ErrProgramNotFound
	}
	return p, nil
}

func (s *fakeProgramCatalog) List(_ context.Context, _ *models.DegreeLevel) ([]models.Program, error) {
	var out []models.Program
	for _, p := range s.programs {
		out = append(out, *p)
	}
	return out, nil
}

func testCatalog() *fakeProgramCatalog {
	return &fakeProgramCatalog{programs: map[int64]*models.Program{
		7: {ID: 7, Name: "MSc Computer Science", DegreeLevel: models.DegreeMaster},
	}}
}

func validCreateRequest() dto.CreateApplicationRequest {
	return dto.CreateApplicationRequest{
		FirstName:            "Amara",
		LastName:             "Okafor",
		Email:                "amara@example.com",
		Phone:                "+2348012345678",
		DateOfBirth:          "2001-04-17",
		Nationality:          "Nigerian",
		Gender:               "female",
		HighestQualification: "bachelor",
		QualificationName:    "BSc Computer Science",
		InstitutionName:      "University of Lagos",
		GraduationYear:       2023,
		ProgramID:            7,
	}
}

func TestCreateApplication_AgentOwnsRecord(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewApplicationService(store, testCatalog(), newFakeDocRefStore())

	app, err := svc.Create(context.Background(), actorAgent, validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, app.Status)
	require.NotNil(t, app.AgentID)
	assert.Equal(t, actorAgent.UserID, *app.AgentID)
}

func TestCreateApplication_AdminRecordIsUnowned(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewApplicationService(store, testCatalog(), newFakeDocRefStore())

	app, err := svc.Create(context.Background(), actorAdmin, validCreateRequest())
	require.NoError(t, err)
	assert.Nil(t, app.AgentID)
}

func TestCreateApplication_UnknownProgram(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewApplicationService(store, testCatalog(), newFakeDocRefStore())

	req := validCreateRequest()
	req.ProgramID = 404
	_, err := svc.Create(context.Background(), actorAgent, req)
	assert.ErrorIs(t, err, apperrors.ErrProgramNotFound)
}

func TestCreateApplication_BadDateOfBirth(t *testing.T) {
	store := newFakeRecordStore()
	svc := NewApplicationService(store, testCatalog(), newFakeDocRefStore())

	req := validCreateRequest()
	req.DateOfBirth = "17/04/2001"
	_, err := svc.Create(context.Background(), actorAgent, req)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestListApplications_AgentSeesOnlyOwnRecords(t *testing.T) {
	store := newFakeRecordStore(
		draftApplication(1, agentID(10)),
		draftApplication(2, agentID(99)),
		draftApplication(3, nil),
	)
	svc := NewApplicationService(store, testCatalog(), newFakeDocRefStore())

	apps, pagination, err := svc.List(context.Background(), actorAgent, dto.ApplicationFilterRequest{})
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, int64(1), apps[0].ID)
	assert.Equal(t, int64(1), pagination.TotalItems)
}

func TestListApplications_ReviewerSeesAll(t *testing.T) {
	store := newFakeRecordStore(
		draftApplication(1, agentID(10)),
		draftApplication(2, agentID(99)),
		draftApplication(3, nil),
	)
	svc := NewApplicationService(store, testCatalog(), newFakeDocRefStore())

	apps, _, err := svc.List(context.Background(), actorSubAdmin, dto.ApplicationFilterRequest{})
	require.NoError(t, err)
	assert.Len(t, apps, 3)
}

func TestGetApplication_IncludesHistoryAndDocuments(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(10)))
	refs := newFakeDocRefStore(docRef(1, 1, "transcript.pdf", "applications/1/a"))
	svc := NewApplicationService(store, testCatalog(), refs)
	tsvc := NewTransitionService(store)

	_, err := tsvc.RequestTransition(context.Background(), actorAgent, 1, dto.TransitionRequest{
		ToStatus: models.StatusSubmitted, ExpectedVersion: 0,
	})
	require.NoError(t, err)

	app, err := svc.Get(context.Background(), actorAgent, 1)
	require.NoError(t, err)
	assert.Len(t, app.Transitions, 1)
	assert.Len(t, app.Documents, 1)
}

func TestGetApplication_AgentCannotSeeForeignRecord(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(99)))
	svc := NewApplicationService(store, testCatalog(), newFakeDocRefStore())

	_, err := svc.Get(context.Background(), actorAgent, 1)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}

func TestUpdateNotes_ReviewerOnly(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(10)))
	svc := NewApplicationService(store, testCatalog(), newFakeDocRefStore())
	ctx := context.Background()

	_, err := svc.UpdateNotes(ctx, actorAgent, 1, "agent may not write this")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	app, err := svc.UpdateNotes(ctx, actorSubAdmin, 1, "checked transcripts")
	require.NoError(t, err)
	assert.Equal(t, "checked transcripts", app.Notes)
}
