package models

import "time"

// ApplicationStatus represents the workflow status of an application
type ApplicationStatus string

// Workflow statuses. Archived is a lifecycle flag on the record, not a
// status, so an archived application keeps its last substantive status.
const (
	StatusDraft       ApplicationStatus = "draft"
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under-review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
	StatusIncomplete  ApplicationStatus = "incomplete"
)

// Valid reports whether the value is a known workflow status.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected, StatusIncomplete:
		return true
	}
	return false
}

// Application represents one student's application to one program
type Application struct {
	ID int64 `json:"id"`

	// Student profile, an immutable snapshot taken at submission time
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Nationality string    `json:"nationality"`
	Gender      string    `json:"gender"`

	// Academic profile
	HighestQualification string   `json:"highestQualification"`
	QualificationName    string   `json:"qualificationName"`
	InstitutionName      string   `json:"institutionName"`
	GraduationYear       int      `json:"graduationYear"`
	CGPA                 *float64 `json:"cgpa,omitempty"`

	// Linkage
	ProgramID int64  `json:"programId"`
	AgentID   *int64 `json:"agentId,omitempty"`

	// Workflow fields
	Status   ApplicationStatus `json:"status"`
	Archived bool              `json:"archived"`
	Notes    string            `json:"notes"`
	Version  int64             `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Relations
	Program     *Program            `json:"program,omitempty"`
	Transitions []StatusTransition  `json:"transitions,omitempty"`
	Documents   []DocumentReference `json:"documents,omitempty"`
}

// StatusTransition is one append-only audit entry. Entries are immutable
// once written and ordered by the server-assigned sequence number.
type StatusTransition struct {
	ApplicationID int64             `json:"applicationId"`
	Seq           int64             `json:"seq"`
	FromStatus    ApplicationStatus `json:"fromStatus"`
	ToStatus      ApplicationStatus `json:"toStatus"`
	ActorUserID   int64             `json:"actorUserId"`
	ActorRole     RoleType          `json:"actorRole"`
	Notes         string            `json:"notes,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
}
