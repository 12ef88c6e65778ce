package services

import (
	"context"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/pkg/apperrors"
)

func uploadHeader(name string) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: name,
		Size:     1024,
		Header:   textproto.MIMEHeader{"Content-Type": {"application/pdf"}},
	}
}

func TestUpload_OwningAgentOnDraft(t *testing.T) {
	records := newFakeRecordStore(draftApplication(1, agentID(10)))
	refs := newFakeDocRefStore()
	files := newFakeFileStore()
	svc := NewDocumentService(records, refs, files)

	doc, err := svc.Upload(context.Background(), actorAgent, 1, uploadHeader("transcript.pdf"), "transcript")
	require.NoError(t, err)
	assert.Equal(t, "transcript.pdf", doc.FileName)
	assert.Equal(t, int64(1), doc.ApplicationID)

	docs, err := refs.ListByApplication(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestUpload_SubAdminForbidden(t *testing.T) {
	records := newFakeRecordStore(draftApplication(1, agentID(10)))
	refs := newFakeDocRefStore()
	svc := NewDocumentService(records, refs, newFakeFileStore())

	_, err := svc.Upload(context.Background(), actorSubAdmin, 1, uploadHeader("x.pdf"), "transcript")
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	docs, err := refs.ListByApplication(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestUpload_TerminalRecordRejected(t *testing.T) {
	app := draftApplication(1, agentID(10))
	app.Status = models.StatusApproved
	svc := NewDocumentService(newFakeRecordStore(app), newFakeDocRefStore(), newFakeFileStore())

	_, err := svc.Upload(context.Background(), actorAdmin, 1, uploadHeader("x.pdf"), "transcript")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestUpload_ArchivedRecordRejected(t *testing.T) {
	app := draftApplication(1, agentID(10))
	app.Archived = true
	svc := NewDocumentService(newFakeRecordStore(app), newFakeDocRefStore(), newFakeFileStore())

	_, err := svc.Upload(context.Background(), actorAdmin, 1, uploadHeader("x.pdf"), "transcript")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestUpload_ForeignAgentSeesNotFound(t *testing.T) {
	records := newFakeRecordStore(draftApplication(1, agentID(10)))
	svc := NewDocumentService(records, newFakeDocRefStore(), newFakeFileStore())

	other := models.Actor{UserID: 99, Role: models.RoleAgent}
	_, err := svc.Upload(context.Background(), other, 1, uploadHeader("x.pdf"), "transcript")
	assert.ErrorIs(t, err, apperrors.ErrApplicationNotFound)
}
