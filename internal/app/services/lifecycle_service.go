package services

import (
	"context"
	"io"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
	"github.com/admitflow/admitflow/internal/pkg/docstore"
	"github.com/admitflow/admitflow/internal/pkg/logger"
)

// lifecycleStore adds the lifecycle mutations to the record-store surface
type lifecycleStore interface {
	applicationStore
	SetArchived(ctx context.Context, id int64, archived bool) error
	DeleteCascade(ctx context.Context, id int64) error
}

// documentReferenceStore is the metadata side of the document cascade
type documentReferenceStore interface {
	ListByApplication(ctx context.Context, applicationID int64) ([]models.DocumentReference, error)
}

// LifecycleService handles the operations outside the status workflow:
// archival, restoration, permanent deletion, and bulk document export.
type LifecycleService interface {
	// Archive soft-hides an application. Archiving an already archived
	// record is a no-op success.
	Archive(ctx context.Context, actor models.Actor, applicationID int64) error

	// Restore clears the archived flag. Restoring a non-archived record
	// is a no-op success.
	Restore(ctx context.Context, actor models.Actor, applicationID int64) error

	// HardDelete permanently removes the record, its history, and its
	// documents. Files go first; if any file removal fails the record
	// stays intact and the call reports a partial cascade failure so it
	// can be retried.
	HardDelete(ctx context.Context, actor models.Actor, applicationID int64) error

	// ExportDocuments streams a zip archive of every document attached
	// to the application. An application without documents is an error,
	// not an empty archive.
	ExportDocuments(ctx context.Context, actor models.Actor, applicationID int64, w io.Writer) error
}

type lifecycleService struct {
	store    lifecycleStore
	docRefs  documentReferenceStore
	docStore docstore.DocumentStore
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(store lifecycleStore, docRefs documentReferenceStore, docStore docstore.DocumentStore) LifecycleService {
	return &lifecycleService{store: store, docRefs: docRefs, docStore: docStore}
}

// checkArchiveAuthority lets admins act on any record and agents on
// their own. Sub-admins review, they do not manage record lifecycle.
func (s *lifecycleService) checkArchiveAuthority(ctx context.Context, actor models.Actor, applicationID int64) error {
	if actor.Role.IsPrivileged() {
		return nil
	}
	if actor.Role == models.RoleAgent {
		app, err := s.store.GetByID(ctx, applicationID)
		if err != nil {
			return err
		}
		if app.AgentID == nil || *app.AgentID != actor.UserID {
			return apperrors.ErrApplicationNotFound
		}
		return nil
	}
	return apperrors.NewForbiddenError("role " + string(actor.Role) + " may not archive or restore applications")
}

func (s *lifecycleService) Archive(ctx context.Context, actor models.Actor, applicationID int64) error {
	if err := s.checkArchiveAuthority(ctx, actor, applicationID); err != nil {
		return err
	}
	return s.store.SetArchived(ctx, applicationID, true)
}

func (s *lifecycleService) Restore(ctx context.Context, actor models.Actor, applicationID int64) error {
	if err := s.checkArchiveAuthority(ctx, actor, applicationID); err != nil {
		return err
	}
	return s.store.SetArchived(ctx, applicationID, false)
}

func (s *lifecycleService) HardDelete(ctx context.Context, actor models.Actor, applicationID int64) error {
	if !actor.Role.IsPrivileged() {
		return apperrors.NewForbiddenError("only administrators may delete applications")
	}

	if _, err := s.store.GetByID(ctx, applicationID); err != nil {
		return err
	}

	docs, err := s.docRefs.ListByApplication(ctx, applicationID)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(docs))
	for _, doc := range docs {
		paths = append(paths, doc.StoragePath)
	}

	if failed := s.docStore.DeleteAll(paths); len(failed) > 0 {
		logger.Error().
			Int64("applicationID", applicationID).
			Int("failedCount", len(failed)).
			Strs("failedPaths", failed).
			Msg("Document cascade incomplete, keeping record for retry")
		return apperrors.ErrPartialCascadeFailure
	}

	if err := s.store.DeleteCascade(ctx, applicationID); err != nil {
		return err
	}

	logger.Info().
		Int64("applicationID", applicationID).
		Int64("actorID", actor.UserID).
		Int("documents", len(docs)).
		Msg("Application permanently deleted")
	return nil
}

func (s *lifecycleService) ExportDocuments(ctx context.Context, actor models.Actor, applicationID int64, w io.Writer) error {
	app, err := s.store.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if !visibleTo(actor, app) {
		return apperrors.ErrApplicationNotFound
	}

	docs, err := s.docRefs.ListByApplication(ctx, applicationID)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return apperrors.ErrNoDocuments
	}

	return s.docStore.ExportZip(w, docs)
}
