package docstore

import (
	"io"
	"mime/multipart"

	"github.com/admitflow/admitflow/internal/app/models"
)

// DocumentStore is the file-side collaborator of the workflow engine.
// It owns document bytes; metadata lives in the record store and is
// joined to files through the storage path. Only the lifecycle manager
// mutates documents, and always for a single application.
type DocumentStore interface {
	// Save stores an uploaded file under the application's directory and
	// returns the storage path to keep in the document reference.
	Save(fileHeader *multipart.FileHeader, applicationID int64) (string, error)

	// Open returns a reader for a stored document.
	Open(storagePath string) (io.ReadCloser, error)

	// Delete removes a single document. Deleting a missing file is a
	// no-op success so retries of a partial cascade converge.
	Delete(storagePath string) error

	// DeleteAll removes every given document and returns the storage
	// paths that could not be removed. An empty result means the cascade
	// completed.
	DeleteAll(storagePaths []string) (failed []string)

	// ExportZip writes a single zip archive containing all given
	// documents to w, using each reference's original filename.
	ExportZip(w io.Writer, docs []models.DocumentReference) error
}
