package services

import (
	"context"

	"github.com/admitflow/admitflow/internal/app/models"
)

// programCatalog is the read-only catalog surface
type programCatalog interface {
	GetByID(ctx context.Context, id int64) (*models.Program, error)
	List(ctx context.Context, degreeLevel *models.DegreeLevel) ([]models.Program, error)
}

// ProgramService exposes the read-only program catalog
type ProgramService interface {
	Get(ctx context.Context, id int64) (*models.Program, error)
	List(ctx context.Context, degreeLevel *models.DegreeLevel) ([]models.Program, error)
}

type programService struct {
	catalog programCatalog
}

// NewProgramService creates a new ProgramService
func NewProgramService(catalog programCatalog) ProgramService {
	return &programService{catalog: catalog}
}

func (s *programService) Get(ctx context.Context, id int64) (*models.Program, error) {
	return s.catalog.GetByID(ctx, id)
}

func (s *programService) List(ctx context.Context, degreeLevel *models.DegreeLevel) ([]models.Program, error) {
	return s.catalog.List(ctx, degreeLevel)
}
