package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/chronoboard/backend/internal/models"
)

var (
	// ErrNotFound is returned when no row matches the given id.
	ErrNotFound = errors.New("document not found")
	// ErrUnavailable wraps transport or auth failures against the hosted
	// datastore.
	ErrUnavailable = errors.New("datastore unavailable")
)

// DocumentStore is the gateway over the documents and projects tables.
type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// FetchEligibleDocuments returns every document that has never been
// summarized: processed=false, doc_type<>'url', summary IS NULL. The
// result is a snapshot, not a lock; callers must tolerate a row having
// been processed by the time they get to it.
func (s *DocumentStore) FetchEligibleDocuments(ctx context.Context) ([]models.Document, error) {
	query := `SELECT id, filename, COALESCE(project_id, ''), doc_type, summary, processed, created_at
		FROM documents
		WHERE processed = false AND doc_type <> 'url' AND summary IS NULL`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var docs []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return docs, nil
}

// MarkSummarized sets the summary and flips processed in a single UPDATE,
// so no observer ever sees one without the other.
func (s *DocumentStore) MarkSummarized(ctx context.Context, id, summary string) error {
	query := `UPDATE documents SET summary = $1, processed = true WHERE id = $2`

	res, err := s.db.ExecContext(ctx, query, summary, id)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return nil
}

// GetDocument fetches one document by id. Used by the webhook path to
// complete sparse notification records.
func (s *DocumentStore) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT id, filename, COALESCE(project_id, ''), doc_type, summary, processed, created_at
		FROM documents WHERE id = $1`

	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &doc, nil
}

// GetProject is read-only; projects are owned by the upload flow.
func (s *DocumentStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT id, name, COALESCE(description, ''), created_at FROM projects WHERE id = $1`

	var p models.Project
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Description, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: project %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return &p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (models.Document, error) {
	var doc models.Document
	var summary sql.NullString
	if err := row.Scan(&doc.ID, &doc.Filename, &doc.ProjectID, &doc.DocType, &summary, &doc.Processed, &doc.CreatedAt); err != nil {
		return models.Document{}, err
	}
	if summary.Valid {
		doc.Summary = &summary.String
	}
	return doc, nil
}
