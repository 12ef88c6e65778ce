package models

import "time"

// DocumentReference points at a file owned by the document store. The
// application record only keeps the reference, never the bytes.
type DocumentReference struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"applicationId"`
	FileName      string    `json:"fileName"`
	DocumentType  string    `json:"documentType"`
	MimeType      string    `json:"mimeType"`
	StoragePath   string    `json:"-"`
	FileSize      int64     `json:"fileSize"`
	CreatedAt     time.Time `json:"createdAt"`
}
