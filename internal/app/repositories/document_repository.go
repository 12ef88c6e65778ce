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

// DocumentRepository handles document reference database operations
type DocumentRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewDocumentRepository creates a new DocumentRepository
func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{
		db: pool,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var documentColumns = []string{
	"id", "application_id", "file_name", "document_type",
	"mime_type", "storage_path", "file_size", "created_at",
}

// Create inserts a document reference and returns its ID
func (r *DocumentRepository) Create(ctx context.Context, doc *models.DocumentReference) (int64, error) {
	sqlStr, args, err := r.sb.Insert("application_documents").
		Columns("application_id", "file_name", "document_type", "mime_type", "storage_path", "file_size").
		Values(doc.ApplicationID, doc.FileName, doc.DocumentType, doc.MimeType, doc.StoragePath, doc.FileSize).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create document SQL")
		return 0, fmt.Errorf("failed to build create document query: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sqlStr, args...).Scan(&id); err != nil {
		logger.Error().Err(err).Int64("applicationID", doc.ApplicationID).Msg("Error inserting document reference")
		return 0, fmt.Errorf("error inserting document reference: %w", err)
	}

	return id, nil
}

// GetByID retrieves a single document reference
func (r *DocumentRepository) GetByID(ctx context.Context, id int64) (*models.DocumentReference, error) {
	sqlStr, args, err := r.sb.Select(documentColumns...).
		From("application_documents").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get document query: %w", err)
	}

	var doc models.DocumentReference
	err = r.db.QueryRow(ctx, sqlStr, args...).Scan(
		&doc.ID, &doc.ApplicationID, &doc.FileName, &doc.DocumentType,
		&doc.MimeType, &doc.StoragePath, &doc.FileSize, &doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrDocumentNotFound
		}
		logger.Error().Err(err).Int64("documentID", id).Msg("Error scanning document row")
		return nil, fmt.Errorf("error querying document ID=%d: %w", id, err)
	}

	return &doc, nil
}

// ListByApplication returns all document references attached to a record
func (r *DocumentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]models.DocumentReference, error) {
	sqlStr, args, err := r.sb.Select(documentColumns...).
		From("application_documents").
		Where(squirrel.Eq{"application_id": applicationID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list documents query: %w", err)
	}

	rows, err := r.db.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error executing list documents query")
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []models.DocumentReference
	for rows.Next() {
		var doc models.DocumentReference
		if err := rows.Scan(
			&doc.ID, &doc.ApplicationID, &doc.FileName, &doc.DocumentType,
			&doc.MimeType, &doc.StoragePath, &doc.FileSize, &doc.CreatedAt,
		); err != nil {
			logger.Error().Err(err).Msg("Error scanning document row")
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return docs, nil
}

// Delete removes a single document reference
func (r *DocumentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM application_documents WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("documentID", id).Msg("Error deleting document reference")
		return fmt.Errorf("error deleting document ID=%d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrDocumentNotFound
	}
	return nil
}
