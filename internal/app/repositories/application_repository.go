package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/db"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
	"github.com/admitflow/admitflow/internal/pkg/logger"
)

// ApplicationRepository handles application record database operations.
// It is the single writer of the applications table and its append-only
// transition log.
type ApplicationRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var applicationColumns = []string{
	"a.id", "a.first_name", "a.last_name", "a.email", "a.phone",
	"a.date_of_birth", "a.nationality", "a.gender",
	"a.highest_qualification", "a.qualification_name", "a.institution_name",
	"a.graduation_year", "a.cgpa", "a.program_id", "a.agent_id",
	"a.status", "a.archived", "a.notes", "a.version",
	"a.created_at", "a.updated_at",
	"p.name as program_name", "p.university_name", "p.degree_level",
	"p.country", "p.tuition_fee", "p.currency",
}

func (r *ApplicationRepository) baseSelect() squirrel.SelectBuilder {
	return r.sb.Select(applicationColumns...).
		From("applications a").
		Join("programs p ON a.program_id = p.id")
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var app models.Application
	var cgpa sql.NullFloat64
	var agentID sql.NullInt64
	var programName, universityName, degreeLevel, country, currency sql.NullString
	var tuitionFee sql.NullFloat64

	err := row.Scan(
		&app.ID, &app.FirstName, &app.LastName, &app.Email, &app.Phone,
		&app.DateOfBirth, &app.Nationality, &app.Gender,
		&app.HighestQualification, &app.QualificationName, &app.InstitutionName,
		&app.GraduationYear, &cgpa, &app.ProgramID, &agentID,
		&app.Status, &app.Archived, &app.Notes, &app.Version,
		&app.CreatedAt, &app.UpdatedAt,
		&programName, &universityName, &degreeLevel,
		&country, &tuitionFee, &currency,
	)
	if err != nil {
		return nil, err
	}

	if cgpa.Valid {
		app.CGPA = &cgpa.Float64
	}
	if agentID.Valid {
		app.AgentID = &agentID.Int64
	}
	if programName.Valid {
		app.Program = &models.Program{
			ID:             app.ProgramID,
			Name:           programName.String,
			UniversityName: universityName.String,
			DegreeLevel:    models.DegreeLevel(degreeLevel.String),
			Country:        country.String,
			TuitionFee:     tuitionFee.Float64,
			Currency:       currency.String,
		}
	}

	return &app, nil
}

// Create inserts a new application record in draft status
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) (int64, error) {
	var agentIDArg interface{}
	if app.AgentID != nil {
		agentIDArg = *app.AgentID
	}
	var cgpaArg interface{}
	if app.CGPA != nil {
		cgpaArg = *app.CGPA
	}

	sqlStr, args, err := r.sb.Insert("applications").
		Columns(
			"first_name", "last_name", "email", "phone", "date_of_birth",
			"nationality", "gender", "highest_qualification",
			"qualification_name", "institution_name", "graduation_year",
			"cgpa", "program_id", "agent_id", "status",
		).
		Values(
			app.FirstName, app.LastName, app.Email, app.Phone, app.DateOfBirth,
			app.Nationality, app.Gender, app.HighestQualification,
			app.QualificationName, app.InstitutionName, app.GraduationYear,
			cgpaArg, app.ProgramID, agentIDArg, models.StatusDraft,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create application SQL")
		return 0, fmt.Errorf("failed to build create application query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Msg("Error executing create application query")
		return 0, fmt.Errorf("error inserting application: %w", err)
	}

	logger.Info().Int64("applicationID", id).Msg("Application created")
	return id, nil
}

// GetByID retrieves an application with its program linkage
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*models.Application, error) {
	sqlStr, args, err := r.baseSelect().Where(squirrel.Eq{"a.id": id}).Limit(1).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get application by ID SQL")
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn().Int64("applicationID", id).Msg("Application not found by ID")
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error scanning application row by ID")
		return nil, fmt.Errorf("error querying application ID=%d: %w", id, err)
	}

	return app, nil
}

// List retrieves applications with filtering and pagination. When
// agentScope is non-nil only records owned by that agent are returned;
// reviewer roles pass nil for a globally shared view.
func (r *ApplicationRepository) List(ctx context.Context, filter ListFilter, agentScope *int64) ([]models.Application, int64, error) {
	baseSelect := r.baseSelect()
	countSelect := r.sb.Select("COUNT(*)").
		From("applications a").
		Join("programs p ON a.program_id = p.id")

	where := squirrel.And{}
	if agentScope != nil {
		where = append(where, squirrel.Eq{"a.agent_id": *agentScope})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"a.status": *filter.Status})
	}
	if filter.DegreeLevel != nil {
		where = append(where, squirrel.Eq{"p.degree_level": *filter.DegreeLevel})
	}
	if filter.Archived != nil {
		where = append(where, squirrel.Eq{"a.archived": *filter.Archived})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		where = append(where, squirrel.Or{
			squirrel.ILike{"a.first_name": pattern},
			squirrel.ILike{"a.last_name": pattern},
			squirrel.ILike{"a.email": pattern},
			squirrel.ILike{"p.name": pattern},
		})
	}

	if len(where) > 0 {
		baseSelect = baseSelect.Where(where)
		countSelect = countSelect.Where(where)
	}

	countSql, countArgs, err := countSelect.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count applications SQL")
		return nil, 0, fmt.Errorf("failed to build count applications query: %w", err)
	}

	var totalItems int64
	if err := r.db.QueryRow(ctx, countSql, countArgs...).Scan(&totalItems); err != nil {
		logger.Error().Err(err).Msg("Error executing count applications query")
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	if totalItems == 0 {
		return []models.Application{}, 0, nil
	}

	offset := uint64((filter.Page - 1) * filter.PageSize)
	baseSelect = baseSelect.OrderBy("a.created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(offset)

	querySql, queryArgs, err := baseSelect.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list applications SQL")
		return nil, 0, fmt.Errorf("failed to build list applications query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySql, queryArgs...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list applications query")
		return nil, 0, fmt.Errorf("failed to query applications: %w", err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning application row")
			return nil, 0, fmt.Errorf("failed to scan application row: %w", err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		logger.Error().Err(err).Msg("Error iterating application rows")
		return nil, 0, fmt.Errorf("error iterating application rows: %w", err)
	}

	return apps, totalItems, nil
}

// ApplyTransition performs the compare-and-set status update and the
// history append as a single transaction. The stale-version loser of a
// race gets ErrConcurrentModification, never a silent overwrite or a
// double append.
func (r *ApplicationRepository) ApplyTransition(ctx context.Context, applicationID int64, tr *models.StatusTransition, expectedVersion int64) (*models.Application, error) {
	var app *models.Application
	err := db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx,
			`UPDATE applications SET status = $1, version = version + 1, updated_at = NOW() WHERE id = $2 AND version = $3`,
			tr.ToStatus, applicationID, expectedVersion,
		)
		if err != nil {
			logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error executing transition status update")
			return fmt.Errorf("error updating application status: %w", err)
		}

		if cmdTag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, applicationID).Scan(&exists); err != nil {
				return fmt.Errorf("error checking application existence: %w", err)
			}
			if !exists {
				return apperrors.ErrApplicationNotFound
			}
			logger.Warn().Int64("applicationID", applicationID).Int64("expectedVersion", expectedVersion).Msg("Stale version on transition, rejecting")
			return apperrors.ErrConcurrentModification
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO application_transitions (application_id, from_status, to_status, actor_user_id, actor_role, notes)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING seq, created_at`,
			applicationID, tr.FromStatus, tr.ToStatus, tr.ActorUserID, tr.ActorRole, tr.Notes,
		).Scan(&tr.Seq, &tr.CreatedAt)
		if err != nil {
			logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error appending status transition")
			return fmt.Errorf("error appending status transition: %w", err)
		}

		// Snapshot inside the transaction so the result reflects this
		// write, not whatever a later writer left behind
		sqlStr, args, err := r.baseSelect().Where(squirrel.Eq{"a.id": applicationID}).Limit(1).ToSql()
		if err != nil {
			return fmt.Errorf("failed to build transition snapshot query: %w", err)
		}
		app, err = scanApplication(tx.QueryRow(ctx, sqlStr, args...))
		if err != nil {
			logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error reading application after transition")
			return fmt.Errorf("error reading application after transition: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().
		Int64("applicationID", applicationID).
		Str("from", string(tr.FromStatus)).
		Str("to", string(tr.ToStatus)).
		Int64("seq", tr.Seq).
		Msg("Status transition applied")

	return app, nil
}

// ListTransitions returns the full history of a record ordered by the
// server-assigned sequence, oldest first.
func (r *ApplicationRepository) ListTransitions(ctx context.Context, applicationID int64) ([]models.StatusTransition, error) {
	sqlStr, args, err := r.sb.Select(
		"seq", "application_id", "from_status", "to_status",
		"actor_user_id", "actor_role", "notes", "created_at",
	).
		From("application_transitions").
		Where(squirrel.Eq{"application_id": applicationID}).
		OrderBy("seq ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list transitions SQL")
		return nil, fmt.Errorf("failed to build list transitions query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error executing list transitions query")
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()

	var transitions []models.StatusTransition
	for rows.Next() {
		var tr models.StatusTransition
		var notes sql.NullString
		if err := rows.Scan(&tr.Seq, &tr.ApplicationID, &tr.FromStatus, &tr.ToStatus, &tr.ActorUserID, &tr.ActorRole, &notes, &tr.CreatedAt); err != nil {
			logger.Error().Err(err).Msg("Error scanning transition row")
			return nil, fmt.Errorf("failed to scan transition row: %w", err)
		}
		tr.Notes = notes.String
		transitions = append(transitions, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transition rows: %w", err)
	}

	return transitions, nil
}

// SetArchived flips the archived flag. Setting the flag to its current
// value is a no-op success so the operation stays idempotent.
func (r *ApplicationRepository) SetArchived(ctx context.Context, id int64, archived bool) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE applications SET archived = $1, version = version + 1, updated_at = NOW() WHERE id = $2 AND archived IS DISTINCT FROM $1`,
		archived, id,
	)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error updating archived flag")
		return fmt.Errorf("error updating archived flag for application ID=%d: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("error checking application existence: %w", err)
		}
		if !exists {
			logger.Warn().Int64("applicationID", id).Msg("Attempted to archive non-existent application")
			return apperrors.ErrApplicationNotFound
		}
		// Flag already at the requested value
		return nil
	}

	logger.Info().Int64("applicationID", id).Bool("archived", archived).Msg("Archived flag updated")
	return nil
}

// UpdateNotes replaces the administrator-authored notes field
func (r *ApplicationRepository) UpdateNotes(ctx context.Context, id int64, notes string) error {
	sqlStr, args, err := r.sb.Update("applications").
		SetMap(map[string]interface{}{
			"notes":      notes,
			"updated_at": time.Now(),
		}).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error building update notes SQL")
		return fmt.Errorf("failed to build update notes query: %w", err)
	}

	cmdTag, err := r.db.Exec(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", id).Msg("Error executing update notes query")
		return fmt.Errorf("error updating notes for application ID=%d: %w", id, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logger.Warn().Int64("applicationID", id).Msg("Attempted to update notes on non-existent application")
		return apperrors.ErrApplicationNotFound
	}

	return nil
}

// DeleteCascade removes the record, its history, and its document
// references in one transaction. The caller must have removed the
// document files first; this is the record-store half of the cascade.
func (r *ApplicationRepository) DeleteCascade(ctx context.Context, id int64) error {
	return db.WithTransaction(ctx, r.db, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM application_transitions WHERE application_id = $1`, id); err != nil {
			logger.Error().Err(err).Int64("applicationID", id).Msg("Error deleting transition history")
			return fmt.Errorf("error deleting transition history: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM application_documents WHERE application_id = $1`, id); err != nil {
			logger.Error().Err(err).Int64("applicationID", id).Msg("Error deleting document references")
			return fmt.Errorf("error deleting document references: %w", err)
		}

		cmdTag, err := tx.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
		if err != nil {
			logger.Error().Err(err).Int64("applicationID", id).Msg("Error deleting application record")
			return fmt.Errorf("error deleting application ID=%d: %w", id, err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrApplicationNotFound
		}

		logger.Info().Int64("applicationID", id).Msg("Application record hard-deleted")
		return nil
	})
}

// ListFilter captures the filter options for the applications listing
type ListFilter struct {
	Status      *models.ApplicationStatus
	DegreeLevel *models.DegreeLevel
	Archived    *bool
	Search      string
	Page        int
	PageSize    int
}
