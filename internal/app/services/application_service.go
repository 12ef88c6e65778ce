package services

import (
	"context"
	"time"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/app/models/dto"
	"github.com/admitflow/admitflow/internal/app/repositories"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
	"github.com/admitflow/admitflow/internal/pkg/helpers"
	"github.com/admitflow/admitflow/internal/pkg/logger"
)

// recordStore is the surface ApplicationService needs from the record store
type recordStore interface {
	applicationStore
	Create(ctx context.Context, app *models.Application) (int64, error)
	List(ctx context.Context, filter repositories.ListFilter, agentScope *int64) ([]models.Application, int64, error)
	UpdateNotes(ctx context.Context, id int64, notes string) error
}

// programStore validates program linkage on creation
type programStore interface {
	GetByID(ctx context.Context, id int64) (*models.Program, error)
}

// documentLister loads document references for the detail view
type documentLister interface {
	ListByApplication(ctx context.Context, applicationID int64) ([]models.DocumentReference, error)
}

// ApplicationService manages reading and creating application records
type ApplicationService interface {
	// Create opens a new application in draft status. Agents own the
	// records they create; administrator-created records are unowned.
	Create(ctx context.Context, actor models.Actor, req dto.CreateApplicationRequest) (*models.Application, error)

	// Get returns one application with its history and document
	// references, subject to the actor's visibility.
	Get(ctx context.Context, actor models.Actor, applicationID int64) (*models.Application, error)

	// List returns the actor's visible applications with filtering and
	// pagination. Agents see only their own records.
	List(ctx context.Context, actor models.Actor, filter dto.ApplicationFilterRequest) ([]models.Application, dto.PaginationInfo, error)

	// UpdateNotes replaces the reviewer-authored notes field
	UpdateNotes(ctx context.Context, actor models.Actor, applicationID int64, notes string) (*models.Application, error)
}

type applicationService struct {
	store    recordStore
	programs programStore
	docRefs  documentLister
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(store recordStore, programs programStore, docRefs documentLister) ApplicationService {
	return &applicationService{store: store, programs: programs, docRefs: docRefs}
}

func (s *applicationService) Create(ctx context.Context, actor models.Actor, req dto.CreateApplicationRequest) (*models.Application, error) {
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, apperrors.NewBadRequestError("dateOfBirth must be in YYYY-MM-DD format")
	}

	if _, err := s.programs.GetByID(ctx, req.ProgramID); err != nil {
		return nil, err
	}

	app := &models.Application{
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Email:                req.Email,
		Phone:                req.Phone,
		DateOfBirth:          dob,
		Nationality:          req.Nationality,
		Gender:               req.Gender,
		HighestQualification: req.HighestQualification,
		QualificationName:    req.QualificationName,
		InstitutionName:      req.InstitutionName,
		GraduationYear:       req.GraduationYear,
		CGPA:                 req.CGPA,
		ProgramID:            req.ProgramID,
	}
	if actor.Role == models.RoleAgent {
		agentID := actor.UserID
		app.AgentID = &agentID
	}

	id, err := s.store.Create(ctx, app)
	if err != nil {
		return nil, err
	}

	return s.store.GetByID(ctx, id)
}

func (s *applicationService) Get(ctx context.Context, actor models.Actor, applicationID int64) (*models.Application, error) {
	app, err := s.store.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(actor, app) {
		return nil, apperrors.ErrApplicationNotFound
	}

	transitions, err := s.store.ListTransitions(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	app.Transitions = transitions

	docs, err := s.docRefs.ListByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	app.Documents = docs

	return app, nil
}

func (s *applicationService) List(ctx context.Context, actor models.Actor, filter dto.ApplicationFilterRequest) ([]models.Application, dto.PaginationInfo, error) {
	page, pageSize := helpers.NormalizePage(filter.Page, filter.PageSize)

	var agentScope *int64
	if actor.Role == models.RoleAgent {
		agentID := actor.UserID
		agentScope = &agentID
	}

	listFilter := repositories.ListFilter{
		Status:      filter.Status,
		DegreeLevel: filter.DegreeLevel,
		Archived:    filter.Archived,
		Search:      filter.Search,
		Page:        page,
		PageSize:    pageSize,
	}

	apps, totalItems, err := s.store.List(ctx, listFilter, agentScope)
	if err != nil {
		return nil, dto.PaginationInfo{}, err
	}

	return apps, helpers.NewPaginationInfo(totalItems, page, pageSize), nil
}

func (s *applicationService) UpdateNotes(ctx context.Context, actor models.Actor, applicationID int64, notes string) (*models.Application, error) {
	if !actor.Role.IsReviewer() {
		return nil, apperrors.NewForbiddenError("only review roles may edit application notes")
	}

	if err := s.store.UpdateNotes(ctx, applicationID, notes); err != nil {
		return nil, err
	}

	logger.Info().Int64("applicationID", applicationID).Int64("actorID", actor.UserID).Msg("Application notes updated")
	return s.store.GetByID(ctx, applicationID)
}
