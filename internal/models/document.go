package models

import "time"

// DocType classifies a document row. The closed set mirrors the upload
// flow; "url" rows carry no stored file and are never ingested.
type DocType string

const (
	DocTypePDF  DocType = "pdf"
	DocTypeWord DocType = "docx"
	DocTypeText DocType = "txt"
	DocTypeURL  DocType = "url"
)

// Document is a row of the documents table. Summary is nil until the
// ingestion pipeline or the webhook handler sets it; both always flip
// Processed in the same statement.
type Document struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	ProjectID string    `json:"project_id"`
	DocType   DocType   `json:"doc_type"`
	Summary   *string   `json:"summary"`
	Processed bool      `json:"processed"`
	CreatedAt time.Time `json:"created_at"`
}

// Eligible reports whether the document should be picked up by the batch
// ingestion sweep: never processed, not a URL, and no summary yet.
func (d *Document) Eligible() bool {
	return !d.Processed && d.DocType != DocTypeURL && d.Summary == nil
}

// StorageKey is the object-storage path of the uploaded file. Documents
// without a project id have no resolvable location.
func (d *Document) StorageKey() string {
	if d.ProjectID == "" {
		return ""
	}
	return d.ProjectID + "/" + d.Filename
}

// Project is referenced by documents via ProjectID. Read-only here; the
// project CRUD lives in the upload flow.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
