package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chronoboard/backend/api/handlers"
	"github.com/chronoboard/backend/internal/models"
	"github.com/chronoboard/backend/internal/pipeline"
	"github.com/chronoboard/backend/internal/store"
	"github.com/chronoboard/backend/pkg/logger"
	"github.com/chronoboard/backend/pkg/queue"
)

func summarizeRouter(h *handlers.SummarizeHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/summarize", h.SummarizeDocument)
	r.POST("/api/summarize/run", h.RunSweep)
	r.GET("/api/summarize/report", h.SweepReport)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSummarizeDocument_MissingDocID(t *testing.T) {
	tasks := new(MockTaskQueue)
	h := handlers.NewSummarizeHandler(new(MockStore), tasks, logger.NewTestLogger())
	r := summarizeRouter(h)

	w := doJSON(r, http.MethodPost, "/api/summarize", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "doc_id is required")
	tasks.AssertNotCalled(t, "EnqueueDocument", mock.Anything, mock.Anything)
}

func TestSummarizeDocument_NotFound(t *testing.T) {
	docs := new(MockStore)
	docs.On("GetDocument", mock.Anything, "missing").Return(nil, store.ErrNotFound)

	h := handlers.NewSummarizeHandler(docs, new(MockTaskQueue), logger.NewTestLogger())
	r := summarizeRouter(h)

	w := doJSON(r, http.MethodPost, "/api/summarize", map[string]interface{}{"doc_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "document not found")
}

func TestSummarizeDocument_AlreadyProcessed(t *testing.T) {
	docs := new(MockStore)
	docs.On("GetDocument", mock.Anything, "d1").Return(&models.Document{
		ID: "d1", Filename: "plan.pdf", ProjectID: "p1", Processed: true,
	}, nil)

	tasks := new(MockTaskQueue)
	h := handlers.NewSummarizeHandler(docs, tasks, logger.NewTestLogger())
	r := summarizeRouter(h)

	w := doJSON(r, http.MethodPost, "/api/summarize", map[string]interface{}{"doc_id": "d1"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Skipping")
	tasks.AssertNotCalled(t, "EnqueueDocument", mock.Anything, mock.Anything)
}

func TestSummarizeDocument_Queued(t *testing.T) {
	docs := new(MockStore)
	docs.On("GetDocument", mock.Anything, "d1").Return(&models.Document{
		ID: "d1", Filename: "plan.pdf", ProjectID: "p1", DocType: models.DocTypePDF,
	}, nil)

	tasks := new(MockTaskQueue)
	tasks.On("EnqueueDocument", mock.Anything, "d1").Return(nil)

	h := handlers.NewSummarizeHandler(docs, tasks, logger.NewTestLogger())
	r := summarizeRouter(h)

	w := doJSON(r, http.MethodPost, "/api/summarize", map[string]interface{}{"doc_id": "d1"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	tasks.AssertExpectations(t)
}

func TestSummarizeDocument_QueueFailure(t *testing.T) {
	docs := new(MockStore)
	docs.On("GetDocument", mock.Anything, "d1").Return(&models.Document{
		ID: "d1", Filename: "plan.pdf", ProjectID: "p1",
	}, nil)

	tasks := new(MockTaskQueue)
	tasks.On("EnqueueDocument", mock.Anything, "d1").Return(assert.AnError)

	h := handlers.NewSummarizeHandler(docs, tasks, logger.NewTestLogger())
	r := summarizeRouter(h)

	w := doJSON(r, http.MethodPost, "/api/summarize", map[string]interface{}{"doc_id": "d1"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to queue document")
}

func TestRunSweep_Queued(t *testing.T) {
	tasks := new(MockTaskQueue)
	tasks.On("EnqueueSweep", mock.Anything).Return(nil)

	h := handlers.NewSummarizeHandler(new(MockStore), tasks, logger.NewTestLogger())
	r := summarizeRouter(h)

	w := doJSON(r, http.MethodPost, "/api/summarize/run", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)
	tasks.AssertExpectations(t)
}

func TestSweepReport_NoneYet(t *testing.T) {
	tasks := new(MockTaskQueue)
	tasks.On("LastReport", mock.Anything).Return(nil, queue.ErrNoReport)

	h := handlers.NewSummarizeHandler(new(MockStore), tasks, logger.NewTestLogger())
	r := summarizeRouter(h)

	w := doJSON(r, http.MethodGet, "/api/summarize/report", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "no sweep report available")
}

func TestSweepReport_ReturnsLastReport(t *testing.T) {
	tasks := new(MockTaskQueue)
	tasks.On("LastReport", mock.Anything).Return(&pipeline.Report{
		Processed: 3,
		Skipped:   1,
		Errors: []pipeline.DocumentError{
			{DocumentID: "d2", Stage: pipeline.StageExtract, Reason: "corrupt file"},
		},
	}, nil)

	h := handlers.NewSummarizeHandler(new(MockStore), tasks, logger.NewTestLogger())
	r := summarizeRouter(h)

	w := doJSON(r, http.MethodGet, "/api/summarize/report", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var report pipeline.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "d2", report.Errors[0].DocumentID)
}
