package docstore

import (
	"archive/zip"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/pkg/logger"
)

// LocalStore stores documents on the local filesystem, one
// subdirectory per application.
type LocalStore struct {
	basePath string
}

// NewLocalStore creates a LocalStore rooted at basePath.
func NewLocalStore(basePath string) (*LocalStore, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create document storage directory")
		return nil, fmt.Errorf("failed to create document storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Document storage directory ensured")

	return &LocalStore{basePath: basePath}, nil
}

// Save stores an uploaded file under applications/<id>/ with a
// collision-free name and returns the relative storage path.
func (s *LocalStore) Save(fileHeader *multipart.FileHeader, applicationID int64) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("no file provided")
	}

	src, err := fileHeader.Open()
	if err != nil {
		logger.Error().Err(err).Str("filename", fileHeader.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	subDir := filepath.Join("applications", strconv.FormatInt(applicationID, 10))
	fullDir := filepath.Join(s.basePath, subDir)
	if err := os.MkdirAll(fullDir, os.ModePerm); err != nil {
		logger.Error().Err(err).Str("path", fullDir).Msg("Failed to create application directory")
		return "", fmt.Errorf("failed to create application directory: %w", err)
	}

	ext := filepath.Ext(fileHeader.Filename)
	uniqueName := uuid.New().String() + ext
	storagePath := filepath.Join(subDir, uniqueName)
	dstPath := filepath.Join(s.basePath, storagePath)

	dst, err := os.Create(dstPath)
	if err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	logger.Info().Str("filename", fileHeader.Filename).Str("storagePath", storagePath).Int64("applicationID", applicationID).Msg("Document saved")
	return storagePath, nil
}

// Open returns a reader for the stored document.
func (s *LocalStore) Open(storagePath string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.basePath, storagePath))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("document file missing at %s", storagePath)
		}
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return f, nil
}

// Delete removes a single document file. A missing file is treated as
// already deleted.
func (s *LocalStore) Delete(storagePath string) error {
	if storagePath == "" {
		return nil
	}

	physicalPath := filepath.Join(s.basePath, storagePath)
	if _, err := os.Stat(physicalPath); os.IsNotExist(err) {
		logger.Warn().Str("path", physicalPath).Msg("Document to delete does not exist")
		return nil
	}

	if err := os.Remove(physicalPath); err != nil {
		logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete document")
		return fmt.Errorf("failed to delete document: %w", err)
	}

	logger.Info().Str("path", physicalPath).Msg("Document deleted")
	return nil
}

// DeleteAll removes every given document, collecting the paths that
// failed instead of stopping at the first error.
func (s *LocalStore) DeleteAll(storagePaths []string) []string {
	var failed []string
	for _, p := range storagePaths {
		if err := s.Delete(p); err != nil {
			failed = append(failed, p)
		}
	}
	return failed
}

// ExportZip streams all given documents into a single zip archive.
// Entries use each document's original filename; duplicates get a
// numeric prefix so no entry is silently lost.
func (s *LocalStore) ExportZip(w io.Writer, docs []models.DocumentReference) error {
	zw := zip.NewWriter(w)

	used := make(map[string]bool, len(docs))
	for _, doc := range docs {
		// Deduplicate against the names actually written so a prefixed
		// name cannot collide with a document that already carries it
		name := doc.FileName
		for n := 1; used[name]; n++ {
			name = fmt.Sprintf("%d_%s", n, doc.FileName)
		}
		used[name] = true

		src, err := s.Open(doc.StoragePath)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("failed to read document %d: %w", doc.ID, err)
		}

		entry, err := zw.Create(name)
		if err != nil {
			src.Close()
			_ = zw.Close()
			return fmt.Errorf("failed to create zip entry for %s: %w", name, err)
		}

		if _, err := io.Copy(entry, src); err != nil {
			src.Close()
			_ = zw.Close()
			return fmt.Errorf("failed to write zip entry for %s: %w", name, err)
		}
		src.Close()
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize zip archive: %w", err)
	}
	return nil
}
