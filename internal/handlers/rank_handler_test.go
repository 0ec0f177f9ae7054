package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"alfredoptarigan/cv-ranker/internal/models"
	"alfredoptarigan/cv-ranker/internal/services"
)

type stubRanker struct {
	results  []models.EvaluationResult
	err      error
	lastDocs []models.UploadedDocument
	lastReq  string
	lastOpt  string
}

func (s *stubRanker) Rank(_ context.Context, docs []models.UploadedDocument, requiredRaw, optionalRaw string) ([]models.EvaluationResult, error) {
	s.lastDocs = docs
	s.lastReq = requiredRaw
	s.lastOpt = optionalRaw
	if s.err != nil {
		return nil, s.err
	}
	if s.results != nil {
		return s.results, nil
	}
	// Default: echo one zero result per doc, so validation still runs
	results := make([]models.EvaluationResult, len(docs))
	for i, doc := range docs {
		results[i] = models.EvaluationResult{FileName: doc.Name}
	}
	if len(docs) == 0 {
		return nil, models.NewValidationError("files and required keywords are required")
	}
	if len(services.ParseKeywords(requiredRaw)) == 0 {
		return nil, models.NewValidationError("files and required keywords are required")
	}
	return results, nil
}

func newTestApp(ranker services.RankerService) *fiber.App {
	app := fiber.New()
	handler := NewRankHandler(ranker, services.NewExtractorService(), zap.NewNop(), 1024*1024)
	app.Post("/api/v1/rank", handler.HandleRank)
	return app
}

type filePart struct {
	name    string
	content string
}

func multipartRequest(t *testing.T, files []filePart, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	for _, f := range files {
		part, err := writer.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.content))
		require.NoError(t, err)
	}
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rank", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeJSON[T any](t *testing.T, body io.Reader) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestHandleRankSuccessSortsByScore(t *testing.T) {
	ranker := &stubRanker{
		results: []models.EvaluationResult{
			{FileName: "low.txt", Score: 0.2},
			{FileName: "high.txt", Score: 0.9},
		},
	}
	app := newTestApp(ranker)

	req := multipartRequest(t,
		[]filePart{
			{name: "low.txt", content: "junior dev"},
			{name: "high.txt", content: "senior go dev"},
		},
		map[string]string{
			"requiredKeywords": "Go, PostgreSQL",
			"optionalKeywords": "Docker",
		},
	)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeJSON[models.RankResponse](t, resp.Body)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "high.txt", out.Results[0].FileName)
	assert.Equal(t, "low.txt", out.Results[1].FileName)

	// Form fields reach the orchestrator untouched
	assert.Equal(t, "Go, PostgreSQL", ranker.lastReq)
	assert.Equal(t, "Docker", ranker.lastOpt)
	require.Len(t, ranker.lastDocs, 2)
	assert.Equal(t, []byte("junior dev"), ranker.lastDocs[0].Content)
}

func TestHandleRankNoFiles(t *testing.T) {
	app := newTestApp(&stubRanker{})

	req := multipartRequest(t, nil, map[string]string{"requiredKeywords": "Go"})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := decodeJSON[models.ErrorResponse](t, resp.Body)
	assert.NotEmpty(t, out.Error)
}

func TestHandleRankMissingRequiredKeywords(t *testing.T) {
	app := newTestApp(&stubRanker{err: models.NewValidationError("files and required keywords are required")})

	req := multipartRequest(t,
		[]filePart{{name: "cv.txt", content: "text"}},
		map[string]string{},
	)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := decodeJSON[models.ErrorResponse](t, resp.Body)
	assert.Equal(t, "files and required keywords are required", out.Error)
}

func TestHandleRankUnsupportedFileType(t *testing.T) {
	app := newTestApp(&stubRanker{})

	req := multipartRequest(t,
		[]filePart{{name: "malware.exe", content: "MZ"}},
		map[string]string{"requiredKeywords": "Go"},
	)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := decodeJSON[models.ErrorResponse](t, resp.Body)
	assert.Contains(t, out.Error, "unsupported file type")
}

func TestHandleRankFileTooLarge(t *testing.T) {
	app := fiber.New()
	handler := NewRankHandler(&stubRanker{}, services.NewExtractorService(), zap.NewNop(), 8)
	app.Post("/api/v1/rank", handler.HandleRank)

	req := multipartRequest(t,
		[]filePart{{name: "cv.txt", content: "way more than eight bytes"}},
		map[string]string{"requiredKeywords": "Go"},
	)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := decodeJSON[models.ErrorResponse](t, resp.Body)
	assert.Contains(t, out.Error, "too large")
}

func TestHandleRankUnexpectedErrorIs500(t *testing.T) {
	app := newTestApp(&stubRanker{err: assert.AnError})

	req := multipartRequest(t,
		[]filePart{{name: "cv.txt", content: "text"}},
		map[string]string{"requiredKeywords": "Go"},
	)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandleRankNotMultipart(t *testing.T) {
	app := newTestApp(&stubRanker{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/rank", bytes.NewBufferString(`{"files": []}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
