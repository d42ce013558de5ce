package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chronoboard/backend/internal/models"
	"github.com/chronoboard/backend/pkg/logger"
)

// Stage names the step a document failed at, for the sweep report.
type Stage string

const (
	StageResolve   Stage = "resolve"
	StageFetch     Stage = "fetch"
	StageExtract   Stage = "extract"
	StageSummarize Stage = "summarize"
	StagePersist   Stage = "persist"
)

// Store is the slice of the document gateway the pipeline drives.
type Store interface {
	FetchEligibleDocuments(ctx context.Context) ([]models.Document, error)
	MarkSummarized(ctx context.Context, id, summary string) error
}

// Storage fetches raw file bytes by storage key.
type Storage interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Extractor turns file bytes into plain text.
type Extractor interface {
	Extract(filename string, contents []byte) (string, error)
}

// Summarizer produces a short summary for extracted text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// DocumentError records why one document was skipped.
type DocumentError struct {
	DocumentID string `json:"document_id"`
	Stage      Stage  `json:"stage"`
	Reason     string `json:"reason"`
}

// Report is the outcome of one batch sweep.
type Report struct {
	Processed int             `json:"processed"`
	Skipped   int             `json:"skipped"`
	Errors    []DocumentError `json:"errors,omitempty"`
}

// Runner drives the extract -> summarize -> persist sequence over every
// eligible document. Failures are isolated per document; nothing short of
// the eligibility query failing aborts a sweep.
type Runner struct {
	store       Store
	storage     Storage
	extractor   Extractor
	summarizer  Summarizer
	logger      logger.Logger
	concurrency int
}

func NewRunner(store Store, storage Storage, extractor Extractor, summarizer Summarizer, log logger.Logger, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{
		store:       store,
		storage:     storage,
		extractor:   extractor,
		summarizer:  summarizer,
		logger:      log,
		concurrency: concurrency,
	}
}

// Run processes all currently eligible documents once and reports the
// outcome. The eligibility snapshot is advisory: a document processed by
// someone else mid-sweep just fails its persist step and is skipped.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	docs, err := r.store.FetchEligibleDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch eligible documents: %w", err)
	}

	report := &Report{}
	if len(docs) == 0 {
		r.logger.Info("no documents to process")
		return report, nil
	}

	r.logger.Info("starting ingestion sweep",
		logger.Int("eligible", len(docs)),
		logger.Int("concurrency", r.concurrency),
	)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, doc := range docs {
		doc := doc
		g.Go(func() error {
			err := r.ProcessDocument(gctx, &doc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				docErr := toDocumentError(doc.ID, err)
				report.Skipped++
				report.Errors = append(report.Errors, docErr)
				r.logger.Warn("document skipped",
					logger.String("document_id", doc.ID),
					logger.String("filename", doc.Filename),
					logger.String("stage", string(docErr.Stage)),
					logger.Error(err),
				)
				return nil // skip-and-continue, never batch-fatal
			}
			report.Processed++
			r.logger.Info("document summarized",
				logger.String("document_id", doc.ID),
				logger.String("filename", doc.Filename),
			)
			return nil
		})
	}

	// Workers only ever return nil; Wait is for completion, not errors.
	_ = g.Wait()

	r.logger.Info("ingestion sweep finished",
		logger.Int("processed", report.Processed),
		logger.Int("skipped", report.Skipped),
	)
	return report, nil
}

// ProcessDocument runs the full ingestion sequence for one document. The
// webhook path calls this directly.
func (r *Runner) ProcessDocument(ctx context.Context, doc *models.Document) error {
	key := doc.StorageKey()
	if key == "" {
		return &stageError{stage: StageResolve, err: fmt.Errorf("document %s has no project id", doc.ID)}
	}

	contents, err := r.storage.Fetch(ctx, key)
	if err != nil {
		return &stageError{stage: StageFetch, err: err}
	}

	text, err := r.extractor.Extract(doc.Filename, contents)
	if err != nil {
		return &stageError{stage: StageExtract, err: err}
	}
	if strings.TrimSpace(text) == "" {
		return &stageError{stage: StageExtract, err: fmt.Errorf("no text extracted from %s", doc.Filename)}
	}

	summary, err := r.summarizer.Summarize(ctx, text)
	if err != nil {
		return &stageError{stage: StageSummarize, err: err}
	}

	if err := r.store.MarkSummarized(ctx, doc.ID, summary); err != nil {
		return &stageError{stage: StagePersist, err: err}
	}
	return nil
}

type stageError struct {
	stage Stage
	err   error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s: %v", e.stage, e.err)
}

func (e *stageError) Unwrap() error {
	return e.err
}

func toDocumentError(docID string, err error) DocumentError {
	if se, ok := err.(*stageError); ok {
		return DocumentError{DocumentID: docID, Stage: se.stage, Reason: se.err.Error()}
	}
	return DocumentError{DocumentID: docID, Stage: StageResolve, Reason: err.Error()}
}
