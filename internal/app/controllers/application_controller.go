// Package controllers handles HTTP request handling
package controllers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/admitflow/admitflow/internal/app/models"
	"github.com/admitflow/admitflow/internal/app/models/dto"
	"github.com/admitflow/admitflow/internal/app/services"
	"github.com/admitflow/admitflow/internal/middleware"
	"github.com/admitflow/admitflow/internal/pkg/logger"
)

// ApplicationController handles application record endpoints
type ApplicationController struct {
	applications services.ApplicationService
	transitions  services.TransitionService
	lifecycle    services.LifecycleService
	documents    services.DocumentService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(
	applications services.ApplicationService,
	transitions services.TransitionService,
	lifecycle services.LifecycleService,
	documents services.DocumentService,
) *ApplicationController {
	return &ApplicationController{
		applications: applications,
		transitions:  transitions,
		lifecycle:    lifecycle,
		documents:    documents,
	}
}

func pathID(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter").WithField(name)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return 0, false
	}
	return id, true
}

// List handles listing applications visible to the caller
// @Summary List applications
// @Description Returns applications visible to the caller with filtering and pagination. Agents see only their own records.
// @Tags applications
// @Produce json
// @Param status query string false "Filter by workflow status"
// @Param degreeLevel query string false "Filter by program degree level"
// @Param search query string false "Search in applicant name, email, and program name"
// @Param archived query bool false "Filter by archived flag"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10)
// @Success 200 {object} dto.APIResponse{data=[]dto.ApplicationResponse}
// @Failure 401 {object} dto.ErrorResponse "Authentication required"
// @Security Bearer
// @Router /applications [get]
func (c *ApplicationController) List(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	filter := dto.ApplicationFilterRequest{Search: ctx.Query("search")}
	if status := ctx.Query("status"); status != "" {
		s := models.ApplicationStatus(status)
		if !s.Valid() {
			detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Unknown status filter").WithField("status")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
			return
		}
		filter.Status = &s
	}
	if level := ctx.Query("degreeLevel"); level != "" {
		dl := models.DegreeLevel(level)
		filter.DegreeLevel = &dl
	}
	if archived := ctx.Query("archived"); archived != "" {
		value, err := strconv.ParseBool(archived)
		if err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "archived must be true or false").WithField("archived")
			ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
			return
		}
		filter.Archived = &value
	}
	filter.Page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(ctx.DefaultQuery("pageSize", "10"))

	apps, pagination, err := c.applications.List(ctx, actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		responses = append(responses, *dto.ToApplicationResponse(&apps[i]))
	}

	ctx.JSON(http.StatusOK, dto.NewPaginatedResponse(responses, pagination))
}

// Get handles retrieving one application
// @Summary Get application details
// @Description Returns one application with its transition history and document references
// @Tags applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Security Bearer
// @Router /applications/{id} [get]
func (c *ApplicationController) Get(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	app, err := c.applications.Get(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToApplicationResponse(app)))
}

// Create handles opening a new application in draft
// @Summary Create application
// @Description Creates a new application record in draft status. Agent-created records are owned by the agent.
// @Tags applications
// @Accept json
// @Produce json
// @Param request body dto.CreateApplicationRequest true "Application data"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 404 {object} dto.ErrorResponse "Program not found"
// @Security Bearer
// @Router /applications [post]
func (c *ApplicationController) Create(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.CreateApplicationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.Warn().Err(err).Msg("Invalid create application payload")
		middleware.HandleValidationError(ctx, err)
		return
	}

	app, err := c.applications.Create(ctx, actor, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.ToApplicationResponse(app)))
}

// UpdateStatus handles a workflow status transition
// @Summary Transition application status
// @Description Moves the application along one workflow edge. The expected version guards against concurrent modification.
// @Tags applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param request body dto.TransitionRequest true "Transition request"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 403 {object} dto.ErrorResponse "Role not permitted on this edge"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Version conflict"
// @Failure 422 {object} dto.ErrorResponse "No such workflow transition"
// @Security Bearer
// @Router /applications/{id}/status [patch]
func (c *ApplicationController) UpdateStatus(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		logger.Warn().Err(err).Int64("applicationID", id).Msg("Invalid transition payload")
		middleware.HandleValidationError(ctx, err)
		return
	}

	app, err := c.transitions.RequestTransition(ctx, actor, id, req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToApplicationResponse(app)))
}

// GetHistory handles listing the transition history
// @Summary Get transition history
// @Description Returns the application's full status transition history ordered by sequence
// @Tags applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.StatusTransitionResponse}
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Security Bearer
// @Router /applications/{id}/history [get]
func (c *ApplicationController) GetHistory(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	history, err := c.transitions.GetHistory(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	responses := make([]dto.StatusTransitionResponse, 0, len(history))
	for _, tr := range history {
		responses = append(responses, dto.ToStatusTransitionResponse(tr))
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(responses))
}

// UpdateNotes handles replacing the reviewer notes
// @Summary Update application notes
// @Description Replaces the reviewer-authored notes on the application
// @Tags applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param request body dto.UpdateNotesRequest true "Notes"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse}
// @Failure 403 {object} dto.ErrorResponse "Only review roles may edit notes"
// @Security Bearer
// @Router /applications/{id}/notes [patch]
func (c *ApplicationController) UpdateNotes(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateNotesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(ctx, err)
		return
	}

	app, err := c.applications.UpdateNotes(ctx, actor, id, req.Notes)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ToApplicationResponse(app)))
}

// Archive handles soft-hiding an application
// @Summary Archive application
// @Description Sets the archived flag. Allowed for administrators and the owning agent. Archiving an already archived record is a no-op.
// @Tags applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 204 "Archived"
// @Failure 403 {object} dto.ErrorResponse "Role may not archive"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Security Bearer
// @Router /applications/{id}/archive [patch]
func (c *ApplicationController) Archive(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.lifecycle.Archive(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Restore handles clearing the archived flag
// @Summary Restore application
// @Description Clears the archived flag. Allowed for administrators and the owning agent. Restoring a non-archived record is a no-op.
// @Tags applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 204 "Restored"
// @Failure 403 {object} dto.ErrorResponse "Role may not restore"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Security Bearer
// @Router /applications/{id}/restore [patch]
func (c *ApplicationController) Restore(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.lifecycle.Restore(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Delete handles permanent removal of an application
// @Summary Permanently delete application
// @Description Removes the record, its history, and its documents. If some files cannot be removed the record stays intact and the call can be retried.
// @Tags applications
// @Produce json
// @Param id path int true "Application ID"
// @Success 204 "Deleted"
// @Failure 403 {object} dto.ErrorResponse "Only administrators may delete"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 500 {object} dto.ErrorResponse "Document cascade incomplete"
// @Security Bearer
// @Router /applications/{id} [delete]
func (c *ApplicationController) Delete(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.lifecycle.HardDelete(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// UploadDocument handles attaching a file to an application
// @Summary Upload document
// @Description Stores an uploaded file and records its reference on the application
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Application ID"
// @Param file formData file true "Document file"
// @Param documentType formData string true "Document type" Enums(transcript, passport, certificate, statement, other)
// @Success 201 {object} dto.APIResponse{data=dto.DocumentResponse}
// @Failure 400 {object} dto.ErrorResponse "Missing file or document type"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Security Bearer
// @Router /applications/{id}/documents [post]
func (c *ApplicationController) UploadDocument(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "A file is required").WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}
	documentType := ctx.PostForm("documentType")
	if documentType == "" {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "documentType is required").WithField("documentType")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	doc, err := c.documents.Upload(ctx, actor, id, fileHeader, documentType)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.DocumentResponse{
		ID:           doc.ID,
		FileName:     doc.FileName,
		DocumentType: doc.DocumentType,
		MimeType:     doc.MimeType,
		FileSize:     doc.FileSize,
		CreatedAt:    doc.CreatedAt,
	}))
}

// DownloadDocument handles streaming one document to the caller
// @Summary Download document
// @Description Streams one stored document
// @Tags documents
// @Produce octet-stream
// @Param id path int true "Application ID"
// @Param documentId path int true "Document ID"
// @Success 200 {file} binary "Document content"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Security Bearer
// @Router /applications/{id}/documents/{documentId} [get]
func (c *ApplicationController) DownloadDocument(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	documentID, ok := pathID(ctx, "documentId")
	if !ok {
		return
	}

	reader, doc, err := c.documents.Download(ctx, actor, id, documentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer reader.Close()

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	ctx.Header("Content-Type", doc.MimeType)
	if _, err := io.Copy(ctx.Writer, reader); err != nil {
		logger.Error().Err(err).Int64("documentID", documentID).Msg("Error streaming document")
	}
}

// DeleteDocument handles removing one document
// @Summary Delete document
// @Description Removes one document file and its reference
// @Tags documents
// @Produce json
// @Param id path int true "Application ID"
// @Param documentId path int true "Document ID"
// @Success 204 "Deleted"
// @Failure 403 {object} dto.ErrorResponse "Only review roles may delete documents"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Security Bearer
// @Router /applications/{id}/documents/{documentId} [delete]
func (c *ApplicationController) DeleteDocument(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	documentID, ok := pathID(ctx, "documentId")
	if !ok {
		return
	}

	if err := c.documents.Delete(ctx, actor, id, documentID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ExportDocuments handles the bulk zip export
// @Summary Export documents as zip
// @Description Streams a zip archive containing every document attached to the application
// @Tags documents
// @Produce application/zip
// @Param id path int true "Application ID"
// @Success 200 {file} binary "Zip archive"
// @Failure 404 {object} dto.ErrorResponse "Application not found or has no documents"
// @Security Bearer
// @Router /applications/{id}/documents/bulk [get]
func (c *ApplicationController) ExportDocuments(ctx *gin.Context) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}

	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("application-%d-documents.zip", id)))
	ctx.Header("Content-Type", "application/zip")

	if err := c.lifecycle.ExportDocuments(ctx, actor, id, ctx.Writer); err != nil {
		// Nothing has been streamed yet on these errors
		ctx.Header("Content-Disposition", "")
		ctx.Header("Content-Type", "application/json")
		middleware.HandleAPIError(ctx, err)
	}
}
