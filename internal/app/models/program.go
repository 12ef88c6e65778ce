package models

import "time"

// DegreeLevel represents the level of a catalog program
type DegreeLevel string

const (
	DegreeBachelor DegreeLevel = "BACHELOR"
	DegreeMaster   DegreeLevel = "MASTER"
	DegreePhD      DegreeLevel = "PHD"
	DegreeDiploma  DegreeLevel = "DIPLOMA"
)

// Program is a catalog entry owned by the catalog subsystem. The
// workflow engine reads it for linkage and filtering only.
type Program struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	UniversityName string      `json:"universityName"`
	DegreeLevel    DegreeLevel `json:"degreeLevel"`
	Country        string      `json:"country"`
	TuitionFee     float64     `json:"tuitionFee"`
	Currency       string      `json:"currency"`
	CreatedAt      time.Time   `json:"createdAt"`
}
