package services

import (
	"context"
	"io"
	"mime/multipart"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/app/workflow"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
	"github.com/admitflow/admitflow/internal/pkg/docstore"
	"github.com/admitflow/admitflow/internal/pkg/logger"
)

// documentWriteStore is the metadata surface the document service needs
type documentWriteStore interface {
	Create(ctx context.Context, doc *models.DocumentReference) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.DocumentReference, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]models.DocumentReference, error)
	Delete(ctx context.Context, id int64) error
}

// DocumentService manages individual documents attached to applications
type DocumentService interface {
	// Upload stores a file and records its reference on the application
	Upload(ctx context.Context, actor models.Actor, applicationID int64, fileHeader *multipart.FileHeader, documentType string) (*models.DocumentReference, error)

	// Download opens one document for streaming to the caller
	Download(ctx context.Context, actor models.Actor, applicationID, documentID int64) (io.ReadCloser, *models.DocumentReference, error)

	// Delete removes a single document and its reference
	Delete(ctx context.Context, actor models.Actor, applicationID, documentID int64) error
}

type documentService struct {
	apps     applicationStore
	docRefs  documentWriteStore
	docStore docstore.DocumentStore
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(apps applicationStore, docRefs documentWriteStore, docStore docstore.DocumentStore) DocumentService {
	return &documentService{apps: apps, docRefs: docRefs, docStore: docStore}
}

func (s *documentService) loadVisible(ctx context.Context, actor models.Actor, applicationID int64) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(actor, app) {
		return nil, apperrors.ErrApplicationNotFound
	}
	return app, nil
}

func (s *documentService) Upload(ctx context.Context, actor models.Actor, applicationID int64, fileHeader *multipart.FileHeader, documentType string) (*models.DocumentReference, error) {
	app, err := s.loadVisible(ctx, actor, applicationID)
	if err != nil {
		return nil, err
	}

	// Uploads come from the owning agent or full admins, never a
	// sub-admin, and only while the record is still in flight.
	if actor.Role == models.RoleSubAdmin {
		return nil, apperrors.NewForbiddenError("sub-admins may not upload documents")
	}
	if workflow.IsTerminal(app.Status) {
		return nil, apperrors.NewBadRequestError("documents may not be added to a " + string(app.Status) + " application")
	}
	if app.Archived {
		return nil, apperrors.NewBadRequestError("documents may not be added to an archived application")
	}

	storagePath, err := s.docStore.Save(fileHeader, applicationID)
	if err != nil {
		logger.Error().Err(err).Int64("applicationID", applicationID).Msg("Error saving uploaded document")
		return nil, err
	}

	doc := &models.DocumentReference{
		ApplicationID: applicationID,
		FileName:      fileHeader.Filename,
		DocumentType:  documentType,
		MimeType:      fileHeader.Header.Get("Content-Type"),
		StoragePath:   storagePath,
		FileSize:      fileHeader.Size,
	}

	id, err := s.docRefs.Create(ctx, doc)
	if err != nil {
		// Metadata failed, do not leave an orphan file behind
		if delErr := s.docStore.Delete(storagePath); delErr != nil {
			logger.Error().Err(delErr).Str("path", storagePath).Msg("Error cleaning up orphan document file")
		}
		return nil, err
	}

	logger.Info().
		Int64("applicationID", applicationID).
		Int64("documentID", id).
		Str("fileName", doc.FileName).
		Msg("Document uploaded")

	return s.docRefs.GetByID(ctx, id)
}

func (s *documentService) Download(ctx context.Context, actor models.Actor, applicationID, documentID int64) (io.ReadCloser, *models.DocumentReference, error) {
	if _, err := s.loadVisible(ctx, actor, applicationID); err != nil {
		return nil, nil, err
	}

	doc, err := s.docRefs.GetByID(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	if doc.ApplicationID != applicationID {
		return nil, nil, apperrors.ErrDocumentNotFound
	}

	reader, err := s.docStore.Open(doc.StoragePath)
	if err != nil {
		logger.Error().Err(err).Int64("documentID", documentID).Msg("Error opening stored document")
		return nil, nil, apperrors.ErrDocumentNotFound
	}

	return reader, doc, nil
}

func (s *documentService) Delete(ctx context.Context, actor models.Actor, applicationID, documentID int64) error {
	if !actor.Role.IsReviewer() {
		return apperrors.NewForbiddenError("only review roles may delete documents")
	}
	if _, err := s.loadVisible(ctx, actor, applicationID); err != nil {
		return err
	}

	doc, err := s.docRefs.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if doc.ApplicationID != applicationID {
		return apperrors.ErrDocumentNotFound
	}

	if err := s.docStore.Delete(doc.StoragePath); err != nil {
		logger.Error().Err(err).Int64("documentID", documentID).Msg("Error deleting document file")
		return err
	}

	return s.docRefs.Delete(ctx, documentID)
}
