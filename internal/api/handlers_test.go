package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/RishiKendai/aegis-text/internal/config"
	"github.com/RishiKendai/aegis-text/internal/models"
	"github.com/RishiKendai/aegis-text/internal/plagiarism"
	"github.com/RishiKendai/aegis-text/internal/preprocess"
	"github.com/RishiKendai/aegis-text/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret"
	testIssuer = "aegis-text"
)

type fakeQueue struct {
	mu     sync.Mutex
	queued []*models.AnalysisRequest
	err    error
}

func (q *fakeQueue) Enqueue(_ context.Context, req *models.AnalysisRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.queued = append(q.queued, req)
	return nil
}

type fakeStatus struct {
	mu    sync.Mutex
	steps map[string]models.Step
}

func (s *fakeStatus) UpdateStatus(_ context.Context, id string, step models.Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps[id] = step
	return nil
}

func (s *fakeStatus) GetStatus(_ context.Context, id string) (models.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step, ok := s.steps[id]; ok {
		return step, nil
	}
	return models.StepIdle, nil
}

type fakeReports struct {
	byID      map[string]*models.Report
	lastLimit int64
}

func (r *fakeReports) GetReport(_ context.Context, id string) (*models.Report, error) {
	rep, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrReportNotFound
	}
	return rep, nil
}

func (r *fakeReports) ListRecentReports(_ context.Context, limit int64) ([]*models.Report, error) {
	r.lastLimit = limit
	out := make([]*models.Report, 0, len(r.byID))
	for _, rep := range r.byID {
		out = append(out, rep)
	}
	return out, nil
}

type testServer struct {
	router  *gin.Engine
	queue   *fakeQueue
	status  *fakeStatus
	reports *fakeReports
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		JWTSecret:            testSecret,
		JWTIssuer:            testIssuer,
		RateLimitRPS:         1000,
		MaxConcurrentCompute: 2,
		ComputationTimeout:   time.Minute,
		MaxDocuments:         10,
		MaxDocumentBytes:     1 << 16,
		MaxCompareBytes:      1 << 10,
	}

	pool := plagiarism.NewWorkerPool(context.Background(), 2)
	t.Cleanup(pool.Close)

	ts := &testServer{
		queue:   &fakeQueue{},
		status:  &fakeStatus{steps: map[string]models.Step{}},
		reports: &fakeReports{byID: map[string]*models.Report{}},
	}
	handler := NewHandler(
		cfg,
		plagiarism.NewEngine(plagiarism.DefaultThresholds()),
		pool,
		preprocess.NewService(cfg.MaxDocuments, cfg.MaxDocumentBytes),
		ts.queue,
		ts.status,
		ts.reports,
	)
	ts.router = SetupRoutes(cfg, handler)
	return ts
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func validToken(t *testing.T) string {
	return signToken(t, jwt.MapClaims{
		"api_key": "client-1",
		"iss":     testIssuer,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func twoDocuments(a, b string) models.AnalysisRequest {
	return models.AnalysisRequest{Documents: []models.SubmittedDocument{
		{ID: "a", Name: "a.txt", Content: a},
		{ID: "b", Name: "b.txt", Content: b},
	}}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name  string
		token string
	}{
		{"missing", ""},
		{"garbage", "not-a-jwt"},
		{"wrong issuer", signToken(t, jwt.MapClaims{"iss": "someone-else"})},
		{"expired", signToken(t, jwt.MapClaims{"iss": testIssuer, "exp": time.Now().Add(-time.Hour).Unix()})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/compare", models.CompareRequest{A: "x", B: "y"}, tt.token)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "UNAUTHORIZED", decode[models.ErrorResponse](t, w).Code)
		})
	}
}

func TestCompare(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/compare", models.CompareRequest{A: "kitten", B: "sitting"}, validToken(t))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.CompareResponse](t, w)
	assert.Equal(t, 3, resp.Levenshtein)
	assert.InDelta(t, 0.2*4.0/7.0, resp.MatchSimilarity, 1e-9)
	assert.InDelta(t, 0.3*4.0/7.0, resp.LineSimilarity, 1e-9)
}

func TestCompareIdentical(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/compare", models.CompareRequest{A: "same text", B: "same text"}, validToken(t))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.CompareResponse](t, w)
	assert.Equal(t, 1.0, resp.MatchSimilarity)
	assert.Equal(t, 1.0, resp.LineSimilarity)
	assert.Equal(t, 0, resp.Levenshtein)
}

func TestCompareRejectsLongInput(t *testing.T) {
	ts := newTestServer(t)
	long := strings.Repeat("a", 1<<10+1)

	for name, body := range map[string]models.CompareRequest{
		"a": {A: long, B: "short"},
		"b": {A: "short", B: long},
	} {
		t.Run(name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/compare", body, validToken(t))
			assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
			assert.Equal(t, "DOCUMENT_TOO_LARGE", decode[models.ErrorResponse](t, w).Code)
		})
	}
}

func TestCompareAcceptsInputAtLimit(t *testing.T) {
	ts := newTestServer(t)
	atLimit := strings.Repeat("a", 1<<10)

	w := ts.do(t, http.MethodPost, "/api/v1/compare", models.CompareRequest{A: atLimit, B: atLimit}, validToken(t))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decode[models.CompareResponse](t, w).Levenshtein)
}

// oversizedAnalysis exceeds the body cap for ten documents of 64KiB
func oversizedAnalysis() models.AnalysisRequest {
	big := strings.Repeat("x", 800<<10)
	return twoDocuments(big, big)
}

func TestAnalyzeRejectsOversizedBody(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/analyze", oversizedAnalysis(), validToken(t))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "REQUEST_TOO_LARGE", decode[models.ErrorResponse](t, w).Code)
}

func TestAnalyzeRejectsOversizedDocument(t *testing.T) {
	ts := newTestServer(t)
	big := strings.Repeat("x", 1<<16+1)

	w := ts.do(t, http.MethodPost, "/api/v1/analyze", twoDocuments(big, "small"), validToken(t))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "DOCUMENT_TOO_LARGE", decode[models.ErrorResponse](t, w).Code)
}

func TestAnalyzeIdenticalDocuments(t *testing.T) {
	ts := newTestServer(t)
	text := "The quick brown fox jumps over the lazy dog."

	w := ts.do(t, http.MethodPost, "/api/v1/analyze", twoDocuments(text, text), validToken(t))
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[models.AnalyzeResponse](t, w)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "a-b", resp.Results[0].ID)
	assert.Equal(t, 100.0, resp.Results[0].Similarity)
	assert.Equal(t, 95.0, resp.Results[0].Confidence)
	assert.Equal(t, models.AnalysisTypeText, resp.Results[0].AnalysisType)

	require.NotNil(t, resp.Report)
	assert.Equal(t, 1, resp.Report.TotalComparisons)
	assert.Equal(t, 1, resp.Report.FlaggedPairs)
}

func TestAnalyzeRejectsBadInput(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
		code   string
	}{
		{
			name:   "one document",
			body:   models.AnalysisRequest{Documents: []models.SubmittedDocument{{ID: "a", Content: "x"}}},
			status: http.StatusBadRequest,
			code:   "TOO_FEW_DOCUMENTS",
		},
		{
			name:   "duplicate ids",
			body:   models.AnalysisRequest{Documents: []models.SubmittedDocument{{ID: "a"}, {ID: "a"}}},
			status: http.StatusBadRequest,
			code:   "DUPLICATE_DOCUMENT_ID",
		},
		{
			name:   "missing id",
			body:   models.AnalysisRequest{Documents: []models.SubmittedDocument{{ID: "a"}, {Content: "x"}}},
			status: http.StatusBadRequest,
			code:   "VALIDATION_FAILED",
		},
		{
			name:   "not json",
			body:   "plain string",
			status: http.StatusBadRequest,
			code:   "INVALID_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/v1/analyze", tt.body, validToken(t))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode[models.ErrorResponse](t, w).Code)
		})
	}
}

func TestAnalyzeValidationReportsFields(t *testing.T) {
	ts := newTestServer(t)
	body := models.AnalysisRequest{Documents: []models.SubmittedDocument{{ID: "a"}, {Content: "x"}}}

	w := ts.do(t, http.MethodPost, "/api/v1/analyze", body, validToken(t))

	resp := decode[models.ErrorResponse](t, w)
	assert.NotEmpty(t, resp.Fields)
}

func TestSubmitAnalysis(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/analyses", twoDocuments("first text", "second text"), validToken(t))
	require.Equal(t, http.StatusAccepted, w.Code)

	accepted := decode[models.AnalysisAccepted](t, w)
	assert.Equal(t, models.StepInitiated, accepted.Step)
	require.NotEmpty(t, accepted.AnalysisID)

	require.Len(t, ts.queue.queued, 1)
	assert.Equal(t, accepted.AnalysisID, ts.queue.queued[0].AnalysisID)
	assert.Equal(t, models.StepInitiated, ts.status.steps[accepted.AnalysisID])
}

func TestSubmitAnalysisKeepsClientID(t *testing.T) {
	ts := newTestServer(t)
	body := twoDocuments("first text", "second text")
	body.AnalysisID = "client-run-7"

	w := ts.do(t, http.MethodPost, "/api/v1/analyses", body, validToken(t))
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "client-run-7", decode[models.AnalysisAccepted](t, w).AnalysisID)
}

func TestSubmitAnalysisQueueDown(t *testing.T) {
	ts := newTestServer(t)
	ts.queue.err = errors.New("redis unavailable")
	body := twoDocuments("first text", "second text")
	body.AnalysisID = "run-down"

	w := ts.do(t, http.MethodPost, "/api/v1/analyses", body, validToken(t))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "QUEUE_UNAVAILABLE", decode[models.ErrorResponse](t, w).Code)
	assert.Equal(t, models.StepFailed, ts.status.steps["run-down"])
}

func TestSubmitAnalysisRejectsInvalid(t *testing.T) {
	ts := newTestServer(t)
	body := models.AnalysisRequest{Documents: []models.SubmittedDocument{{ID: "a", Content: "x"}}}

	w := ts.do(t, http.MethodPost, "/api/v1/analyses", body, validToken(t))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, ts.queue.queued)
}

func TestSubmitAnalysisRejectsOversizedBody(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/analyses", oversizedAnalysis(), validToken(t))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "REQUEST_TOO_LARGE", decode[models.ErrorResponse](t, w).Code)
	assert.Empty(t, ts.queue.queued)
	assert.Empty(t, ts.status.steps)
}

func TestGetStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.status.steps["run-1"] = models.StepAnalyzing

	w := ts.do(t, http.MethodGet, "/api/v1/analyses/run-1/status", nil, validToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StepAnalyzing, decode[models.AnalysisAccepted](t, w).Step)

	w = ts.do(t, http.MethodGet, "/api/v1/analyses/unknown/status", nil, validToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StepIdle, decode[models.AnalysisAccepted](t, w).Step)
}

func TestGetReport(t *testing.T) {
	ts := newTestServer(t)
	ts.reports.byID["run-1"] = &models.Report{AnalysisID: "run-1", TotalComparisons: 3, Status: "completed"}

	w := ts.do(t, http.MethodGet, "/api/v1/analyses/run-1/report", nil, validToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	rep := decode[models.Report](t, w)
	assert.Equal(t, 3, rep.TotalComparisons)

	w = ts.do(t, http.MethodGet, "/api/v1/analyses/missing/report", nil, validToken(t))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "REPORT_NOT_FOUND", decode[models.ErrorResponse](t, w).Code)
}

func TestListReports(t *testing.T) {
	ts := newTestServer(t)
	ts.reports.byID["run-1"] = &models.Report{AnalysisID: "run-1"}

	w := ts.do(t, http.MethodGet, "/api/v1/analyses", nil, validToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, defaultListLimit, ts.reports.lastLimit)

	w = ts.do(t, http.MethodGet, "/api/v1/analyses?limit=5", nil, validToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 5, ts.reports.lastLimit)

	for _, bad := range []string{"0", "101", "ten"} {
		w = ts.do(t, http.MethodGet, "/api/v1/analyses?limit="+bad, nil, validToken(t))
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}
}
