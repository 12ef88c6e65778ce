package dto

import (
	"time"

	"github.com/admitflow/admitflow/internal/app/models"
)

// CreateApplicationRequest creates a new application record in draft
type CreateApplicationRequest struct {
	FirstName            string   `json:"firstName" binding:"required,min=2,max=100"`
	LastName             string   `json:"lastName" binding:"required,min=2,max=100"`
	Email                string   `json:"email" binding:"required,email"`
	Phone                string   `json:"phone" binding:"required,min=6,max=32"`
	DateOfBirth          string   `json:"dateOfBirth" binding:"required" example:"2001-04-17"`
	Nationality          string   `json:"nationality" binding:"required"`
	Gender               string   `json:"gender" binding:"required,oneof=male female other"`
	HighestQualification string   `json:"highestQualification" binding:"required"`
	QualificationName    string   `json:"qualificationName" binding:"required"`
	InstitutionName      string   `json:"institutionName" binding:"required"`
	GraduationYear       int      `json:"graduationYear" binding:"required,gte=1950,lte=2100"`
	CGPA                 *float64 `json:"cgpa,omitempty" binding:"omitempty,gte=0,lte=10"`
	ProgramID            int64    `json:"programId" binding:"required,gt=0"`
}

// TransitionRequest asks for a status transition on a record
type TransitionRequest struct {
	ToStatus        models.ApplicationStatus `json:"toStatus" binding:"required" example:"under-review"`
	Notes           string                   `json:"notes,omitempty" example:"missing transcript"`
	ExpectedVersion int64                    `json:"expectedVersion" binding:"gte=0" example:"3"`
}

// UpdateNotesRequest replaces the administrator-authored notes field
type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"max=4000"`
}

// ApplicationFilterRequest filters the role-scoped listing
type ApplicationFilterRequest struct {
	Status      *models.ApplicationStatus
	DegreeLevel *models.DegreeLevel
	Search      string
	Archived    *bool
	Page        int
	PageSize    int
}

// StatusTransitionResponse is one audit trail entry
type StatusTransitionResponse struct {
	Seq         int64                    `json:"seq"`
	FromStatus  models.ApplicationStatus `json:"fromStatus"`
	ToStatus    models.ApplicationStatus `json:"toStatus"`
	ActorUserID int64                    `json:"actorUserId"`
	ActorRole   models.RoleType          `json:"actorRole"`
	Notes       string                   `json:"notes,omitempty"`
	Timestamp   time.Time                `json:"timestamp"`
}

// DocumentResponse is one document reference
type DocumentResponse struct {
	ID           int64     `json:"id"`
	FileName     string    `json:"fileName"`
	DocumentType string    `json:"documentType"`
	MimeType     string    `json:"mimeType"`
	FileSize     int64     `json:"fileSize"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ApplicationResponse is the full record view
type ApplicationResponse struct {
	ID                   int64                      `json:"id"`
	FirstName            string                     `json:"firstName"`
	LastName             string                     `json:"lastName"`
	Email                string                     `json:"email"`
	Phone                string                     `json:"phone"`
	DateOfBirth          string                     `json:"dateOfBirth"`
	Nationality          string                     `json:"nationality"`
	Gender               string                     `json:"gender"`
	HighestQualification string                     `json:"highestQualification"`
	QualificationName    string                     `json:"qualificationName"`
	InstitutionName      string                     `json:"institutionName"`
	GraduationYear       int                        `json:"graduationYear"`
	CGPA                 *float64                   `json:"cgpa,omitempty"`
	ProgramID            int64                      `json:"programId"`
	Program              *ProgramResponse           `json:"program,omitempty"`
	AgentID              *int64                     `json:"agentId,omitempty"`
	Status               models.ApplicationStatus   `json:"status"`
	Archived             bool                       `json:"archived"`
	Notes                string                     `json:"notes,omitempty"`
	Version              int64                      `json:"version"`
	CreatedAt            time.Time                  `json:"createdAt"`
	UpdatedAt            time.Time                  `json:"updatedAt"`
	History              []StatusTransitionResponse `json:"history,omitempty"`
	Documents            []DocumentResponse         `json:"documents,omitempty"`
}

// ProgramResponse is the read-only catalog view used for linkage
type ProgramResponse struct {
	ID             int64              `json:"id"`
	Name           string             `json:"name"`
	UniversityName string             `json:"universityName"`
	DegreeLevel    models.DegreeLevel `json:"degreeLevel"`
	Country        string             `json:"country"`
	TuitionFee     float64            `json:"tuitionFee"`
	Currency       string             `json:"currency"`
}

// ToApplicationResponse converts an application model into the full
// response DTO including history and document references.
func ToApplicationResponse(app *models.Application) *ApplicationResponse {
	if app == nil {
		return nil
	}

	resp := &ApplicationResponse{
		ID:                   app.ID,
		FirstName:            app.FirstName,
		LastName:             app.LastName,
		Email:                app.Email,
		Phone:                app.Phone,
		DateOfBirth:          app.DateOfBirth.Format("2006-01-02"),
		Nationality:          app.Nationality,
		Gender:               app.Gender,
		HighestQualification: app.HighestQualification,
		QualificationName:    app.QualificationName,
		InstitutionName:      app.InstitutionName,
		GraduationYear:       app.GraduationYear,
		CGPA:                 app.CGPA,
		ProgramID:            app.ProgramID,
		AgentID:              app.AgentID,
		Status:               app.Status,
		Archived:             app.Archived,
		Notes:                app.Notes,
		Version:              app.Version,
		CreatedAt:            app.CreatedAt,
		UpdatedAt:            app.UpdatedAt,
	}

	if app.Program != nil {
		resp.Program = &ProgramResponse{
			ID:             app.Program.ID,
			Name:           app.Program.Name,
			UniversityName: app.Program.UniversityName,
			DegreeLevel:    app.Program.DegreeLevel,
			Country:        app.Program.Country,
			TuitionFee:     app.Program.TuitionFee,
			Currency:       app.Program.Currency,
		}
	}

	for _, tr := range app.Transitions {
		resp.History = append(resp.History, ToStatusTransitionResponse(tr))
	}
	for _, doc := range app.Documents {
		resp.Documents = append(resp.Documents, DocumentResponse{
			ID:           doc.ID,
			FileName:     doc.FileName,
			DocumentType: doc.DocumentType,
			MimeType:     doc.MimeType,
			FileSize:     doc.FileSize,
			CreatedAt:    doc.CreatedAt,
		})
	}

	return resp
}

// ToStatusTransitionResponse converts one transition entry.
func ToStatusTransitionResponse(tr models.StatusTransition) StatusTransitionResponse {
	return StatusTransitionResponse{
		Seq:         tr.Seq,
		FromStatus:  tr.FromStatus,
		ToStatus:    tr.ToStatus,
		ActorUserID: tr.ActorUserID,
		ActorRole:   tr.ActorRole,
		Notes:       tr.Notes,
		Timestamp:   tr.CreatedAt,
	}
}
