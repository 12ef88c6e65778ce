package services

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
)

// fakeDocRefStore is an in-memory document reference store
type fakeDocRefStore struct {
	mu     sync.Mutex
	docs   map[int64]*models.DocumentReference
	nextID int64
}

func newFakeDocRefStore(docs ...*models.DocumentReference) *fakeDocRefStore {
	s := &fakeDocRefStore{docs: make(map[int64]*models.DocumentReference)}
	for _, doc := range docs {
		copied := *doc
		s.docs[doc.ID] = &copied
		if doc.ID > s.nextID {
			s.nextID = doc.ID
		}
	}
	return s
}

func (s *fakeDocRefStore) Create(_ context.Context, doc *models.DocumentReference) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	copied := *doc
	copied.ID = s.nextID
	s.docs[copied.ID] = &copied
	return copied.ID, nil
}

func (s *fakeDocRefStore) GetByID(_ context.Context, id int64) (*models.DocumentReference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, apperrors.ErrDocumentNotFound
	}
	copied := *doc
	return &copied, nil
}

func (s *fakeDocRefStore) ListByApplication(_ context.Context, applicationID int64) ([]models.DocumentReference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DocumentReference
	for _, doc := range s.docs {
		if doc.ApplicationID == applicationID {
			out = append(out, *doc)
		}
	}
	return out, nil
}

func (s *fakeDocRefStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return apperrors.ErrDocumentNotFound
	}
	delete(s.docs, id)
	return nil
}

// fakeFileStore keeps file bytes in memory and can be told to fail
// deletion for specific paths to exercise the partial cascade.
type fakeFileStore struct {
	mu          sync.Mutex
	files       map[string][]byte
	failDeletes map[string]bool
	nextPath    int
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{
		files:       make(map[string][]byte),
		failDeletes: make(map[string]bool),
	}
}

func (s *fakeFileStore) put(path string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = content
}

func (s *fakeFileStore) Save(_ *multipart.FileHeader, applicationID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPath++
	path := "applications/" + strconv.FormatInt(applicationID, 10) + "/file-" + strconv.Itoa(s.nextPath)
	s.files[path] = []byte("uploaded")
	return path, nil
}

func (s *fakeFileStore) Open(storagePath string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.files[storagePath]
	if !ok {
		return nil, apperrors.ErrDocumentNotFound
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (s *fakeFileStore) Delete(storagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDeletes[storagePath] {
		return assert.AnError
	}
	delete(s.files, storagePath)
	return nil
}

func (s *fakeFileStore) DeleteAll(storagePaths []string) (failed []string) {
	for _, path := range storagePaths {
		if err := s.Delete(path); err != nil {
			failed = append(failed, path)
		}
	}
	return failed
}

func (s *fakeFileStore) ExportZip(w io.Writer, docs []models.DocumentReference) error {
	zw := zip.NewWriter(w)
	for _, doc := range docs {
		reader, err := s.Open(doc.StoragePath)
		if err != nil {
			return err
		}
		entry, err := zw.Create(doc.FileName)
		if err != nil {
			reader.Close()
			return err
		}
		if _, err := io.Copy(entry, reader); err != nil {
			reader.Close()
			return err
		}
		reader.Close()
	}
	return zw.Close()
}

func docRef(id, appID int64, name, path string) *models.DocumentReference {
	return &models.DocumentReference{
		ID:            id,
		ApplicationID: appID,
		FileName:      name,
		DocumentType:  "transcript",
		MimeType:      "application/pdf",
		StoragePath:   path,
		FileSize:      8,
	}
}

func TestArchive_IsIdempotent(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(10)))
	svc := NewLifecycleService(store, newFakeDocRefStore(), newFakeFileStore())
	ctx := context.Background()

	require.NoError(t, svc.Archive(ctx, actorAdmin, 1))
	app, err := store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, app.Archived)
	versionAfterFirst := app.Version

	// Second archive is a no-op, not an error and not a version bump
	require.NoError(t, svc.Archive(ctx, actorAdmin, 1))
	app, err = store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, versionAfterFirst, app.Version)

	require.NoError(t, svc.Restore(ctx, actorAdmin, 1))
	app, err = store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, app.Archived)
}

func TestArchive_Authority(t *testing.T) {
	store := newFakeRecordStore(
		draftApplication(1, agentID(10)),
		draftApplication(2, agentID(99)),
	)
	svc := NewLifecycleService(store, newFakeDocRefStore(), newFakeFileStore())
	ctx := context.Background()

	// Owning agent may archive and restore their own record
	require.NoError(t, svc.Archive(ctx, actorAgent, 1))
	require.NoError(t, svc.Restore(ctx, actorAgent, 1))

	// A foreign record is invisible to the agent
	assert.ErrorIs(t, svc.Archive(ctx, actorAgent, 2), apperrors.ErrApplicationNotFound)

	// Sub-admins review, they do not manage record lifecycle
	assert.ErrorIs(t, svc.Archive(ctx, actorSubAdmin, 1), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, svc.Restore(ctx, actorSubAdmin, 1), apperrors.ErrPermissionDenied)

	// Hard delete stays admin-only even for owners
	assert.ErrorIs(t, svc.HardDelete(ctx, actorAgent, 1), apperrors.ErrPermissionDenied)
	assert.ErrorIs(t, svc.HardDelete(ctx, actorSubAdmin, 1), apperrors.ErrPermissionDenied)
}

func TestHardDelete_RemovesFilesAndRecord(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(10)))
	refs := newFakeDocRefStore(
		docRef(1, 1, "transcript.pdf", "applications/1/a"),
		docRef(2, 1, "passport.pdf", "applications/1/b"),
	)
	files := newFakeFileStore()
	files.put("applications/1/a", []byte("aaa"))
	files.put("applications/1/b", []byte("bbb"))

	svc := NewLifecycleService(store, refs, files)
	require.NoError(t, svc.HardDelete(context.Background(), actorAdmin, 1))

	assert.True(t, store.deleted[1])
	assert.Empty(t, files.files)
}

func TestHardDelete_PartialCascadeKeepsRecord(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(10)))
	refs := newFakeDocRefStore(
		docRef(1, 1, "transcript.pdf", "applications/1/a"),
		docRef(2, 1, "passport.pdf", "applications/1/b"),
	)
	files := newFakeFileStore()
	files.put("applications/1/a", []byte("aaa"))
	files.put("applications/1/b", []byte("bbb"))
	files.failDeletes["applications/1/b"] = true

	svc := NewLifecycleService(store, refs, files)
	ctx := context.Background()

	err := svc.HardDelete(ctx, actorAdmin, 1)
	assert.ErrorIs(t, err, apperrors.ErrPartialCascadeFailure)

	// Record must survive a partial cascade
	_, err = store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.False(t, store.deleted[1])

	// Once the blocker clears, a retry converges
	files.failDeletes["applications/1/b"] = false
	require.NoError(t, svc.HardDelete(ctx, actorAdmin, 1))
	assert.True(t, store.deleted[1])
}

func TestExportDocuments_StreamsZip(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(10)))
	refs := newFakeDocRefStore(
		docRef(1, 1, "transcript.pdf", "applications/1/a"),
		docRef(2, 1, "passport.pdf", "applications/1/b"),
	)
	files := newFakeFileStore()
	files.put("applications/1/a", []byte("transcript bytes"))
	files.put("applications/1/b", []byte("passport bytes"))

	svc := NewLifecycleService(store, refs, files)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportDocuments(context.Background(), actorAgent, 1, &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	names := []string{zr.File[0].Name, zr.File[1].Name}
	assert.Contains(t, names, "transcript.pdf")
	assert.Contains(t, names, "passport.pdf")
}

func TestExportDocuments_EmptyIsAnError(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(10)))
	svc := NewLifecycleService(store, newFakeDocRefStore(), newFakeFileStore())

	var buf bytes.Buffer
	err := svc.ExportDocuments(context.Background(), actorAdmin, 1, &buf)
	assert.ErrorIs(t, err, apperrors.ErrNoDocuments)
	assert.Zero(t, buf.Len(), "nothing may be written on error")
}

func TestExportDocuments_AgentVisibility(t *testing.T) {
	store := newFakeRecordStore(draftApplication(1, agentID(99)))
	refs := newFakeDocRefStore(docRef(1, 1, "transcript.pdf", "applications/1/a"))
	svc := NewLifecycleService(store, refs, newFakeFileStore())

	var buf bytes.Buffer
	err := svc.ExportDocuments(context.Background(), actorAgent, 1, &buf)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}

func TestHardDelete_MissingApplication(t *testing.T) {
	svc := NewLifecycleService(newFakeRecordStore(), newFakeDocRefStore(), newFakeFileStore())
	err := svc.HardDelete(context.Background(), actorAdmin, 404)
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}
