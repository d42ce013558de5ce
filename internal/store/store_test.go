package store_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronoboard/backend/internal/store"
)

const eligibleQuery = `SELECT id, filename, COALESCE(project_id, ''), doc_type, summary, processed, created_at
		FROM documents
		WHERE processed = false AND doc_type <> 'url' AND summary IS NULL`

func TestFetchEligibleDocuments(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := store.NewDocumentStore(db)
	now := time.Now()

	t.Run("ReturnsEligibleRows", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "filename", "project_id", "doc_type", "summary", "processed", "created_at"}).
			AddRow("d1", "plan.pdf", "p1", "pdf", nil, false, now).
			AddRow("d2", "notes.txt", "p2", "txt", nil, false, now)

		mock.ExpectQuery(regexp.QuoteMeta(eligibleQuery)).WillReturnRows(rows)

		docs, err := s.FetchEligibleDocuments(context.Background())
		assert.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "d1", docs[0].ID)
		assert.Equal(t, "plan.pdf", docs[0].Filename)
		assert.Nil(t, docs[0].Summary)
		assert.True(t, docs[0].Eligible())
	})

	t.Run("EmptyBatch", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(eligibleQuery)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "project_id", "doc_type", "summary", "processed", "created_at"}))

		docs, err := s.FetchEligibleDocuments(context.Background())
		assert.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("TransportFailure", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(eligibleQuery)).
			WillReturnError(errors.New("connection refused"))

		_, err := s.FetchEligibleDocuments(context.Background())
		assert.ErrorIs(t, err, store.ErrUnavailable)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSummarized(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := store.NewDocumentStore(db)
	update := `UPDATE documents SET summary = $1, processed = true WHERE id = $2`

	t.Run("SetsBothColumnsInOneStatement", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(update)).
			WithArgs("a short summary", "d1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := s.MarkSummarized(context.Background(), "d1", "a short summary")
		assert.NoError(t, err)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(update)).
			WithArgs("s", "missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := s.MarkSummarized(context.Background(), "missing", "s")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("TransportFailure", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(update)).
			WithArgs("s", "d1").
			WillReturnError(errors.New("broken pipe"))

		err := s.MarkSummarized(context.Background(), "d1", "s")
		assert.ErrorIs(t, err, store.ErrUnavailable)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := store.NewDocumentStore(db)
	query := `SELECT id, filename, COALESCE(project_id, ''), doc_type, summary, processed, created_at
		FROM documents WHERE id = $1`

	t.Run("Found", func(t *testing.T) {
		summary := "done"
		rows := sqlmock.NewRows([]string{"id", "filename", "project_id", "doc_type", "summary", "processed", "created_at"}).
			AddRow("d1", "plan.pdf", "p1", "pdf", summary, true, time.Now())

		mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("d1").WillReturnRows(rows)

		doc, err := s.GetDocument(context.Background(), "d1")
		assert.NoError(t, err)
		require.NotNil(t, doc.Summary)
		assert.Equal(t, "done", *doc.Summary)
		assert.True(t, doc.Processed)
		assert.False(t, doc.Eligible())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("nope").
			WillReturnRows(sqlmock.NewRows([]string{"id", "filename", "project_id", "doc_type", "summary", "processed", "created_at"}))

		_, err := s.GetDocument(context.Background(), "nope")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := store.NewDocumentStore(db)
	query := `SELECT id, name, COALESCE(description, ''), created_at FROM projects WHERE id = $1`

	mock.ExpectQuery(regexp.QuoteMeta(query)).WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "created_at"}).
			AddRow("p1", "Apollo", "launch planning", time.Now()))

	p, err := s.GetProject(context.Background(), "p1")
	assert.NoError(t, err)
	assert.Equal(t, "Apollo", p.Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}
