package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
	"github.com/admitflow/admitflow/internal/pkg/logger"
)

// ProgramRepository provides read access to the program catalog
type ProgramRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewProgramRepository creates a new ProgramRepository
func NewProgramRepository(pool *pgxpool.Pool) *ProgramRepository {
	return &ProgramRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var programColumns = []string{
	"id", "name", "university_name", "degree_level",
	"country", "tuition_fee", "currency", "created_at",
}

// GetByID retrieves a program by ID
func (r *ProgramRepository) GetByID(ctx context.Context, id int64) (*models.Program, error) {
	sqlStr, args, err := r.sb.Select(programColumns...).
		From("programs").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get program query: %w", err)
	}

	var p models.Program
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(
		&p.ID, &p.Name, &p.UniversityName, &p.DegreeLevel,
		&p.Country, &p.TuitionFee, &p.Currency, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProgramNotFound
		}
		logger.Error().Err(err).Int64("programID", id).Msg("Error scanning program row")
		return nil, fmt.Errorf("error querying program ID=%d: %w", id, err)
	}

	return &p, nil
}

// List returns the program catalog, optionally filtered by degree level
func (r *ProgramRepository) List(ctx context.Context, degreeLevel *models.DegreeLevel) ([]models.Program, error) {
	query := r.sb.Select(programColumns...).From("programs").OrderBy("name ASC")
	if degreeLevel != nil {
		query = query.Where(squirrel.Eq{"degree_level": *degreeLevel})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list programs query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list programs query")
		return nil, fmt.Errorf("failed to query programs: %w", err)
	}
	defer rows.Close()

	var programs []models.Program
	for rows.Next() {
		var p models.Program
		if err := rows.Scan(
			&p.ID, &p.Name, &p.UniversityName, &p.DegreeLevel,
			&p.Country, &p.TuitionFee, &p.Currency, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan program row: %w", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating program rows: %w", err)
	}

	return programs, nil
}
