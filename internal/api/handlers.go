package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/RishiKendai/aegis-text/internal/config"
	"github.com/RishiKendai/aegis-text/internal/metrics"
	"github.com/RishiKendai/aegis-text/internal/models"
	"github.com/RishiKendai/aegis-text/internal/plagiarism"
	"github.com/RishiKendai/aegis-text/internal/preprocess"
	"github.com/RishiKendai/aegis-text/internal/report"
	"github.com/RishiKendai/aegis-text/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100

	defaultCompareBytes = 16 << 10

	// request bodies may be this many times the decoded text limits, plus bodySlack
	jsonEscapeFactor = 2
	bodySlack        = 64 << 10
)

// AnalysisQueue accepts analyses for background processing
type AnalysisQueue interface {
	Enqueue(ctx context.Context, req *models.AnalysisRequest) error
}

type StatusStore interface {
	UpdateStatus(ctx context.Context, analysisID string, step models.Step) error
	GetStatus(ctx context.Context, analysisID string) (models.Step, error)
}

type ReportReader interface {
	GetReport(ctx context.Context, analysisID string) (*models.Report, error)
	ListRecentReports(ctx context.Context, limit int64) ([]*models.Report, error)
}

// Handler holds dependencies for handlers
type Handler struct {
	engine         *plagiarism.Engine
	workerPool     *plagiarism.WorkerPool
	intake         *preprocess.Service
	queue          AnalysisQueue
	status         StatusStore
	reports        ReportReader
	computeSem     chan struct{} // bounds concurrent synchronous analyses
	computeTimeout time.Duration

	maxCompareBytes int
	maxCompareBody  int64
	maxAnalysisBody int64 // 0 disables the cap
}

func NewHandler(
	cfg *config.Config,
	engine *plagiarism.Engine,
	workerPool *plagiarism.WorkerPool,
	intake *preprocess.Service,
	queue AnalysisQueue,
	status StatusStore,
	reports ReportReader,
) *Handler {
	maxCompare := cfg.MaxCompareBytes
	if maxCompare <= 0 {
		maxCompare = defaultCompareBytes
	}

	var maxAnalysisBody int64
	if cfg.MaxDocuments > 0 && cfg.MaxDocumentBytes > 0 {
		maxAnalysisBody = int64(cfg.MaxDocuments)*int64(cfg.MaxDocumentBytes)*jsonEscapeFactor + bodySlack
	}

	return &Handler{
		engine:         engine,
		workerPool:     workerPool,
		intake:         intake,
		queue:          queue,
		status:         status,
		reports:        reports,
		computeSem:     make(chan struct{}, max(1, cfg.MaxConcurrentCompute)),
		computeTimeout: cfg.ComputationTimeout,

		maxCompareBytes: maxCompare,
		maxCompareBody:  int64(2*maxCompare)*jsonEscapeFactor + bodySlack,
		maxAnalysisBody: maxAnalysisBody,
	}
}

// bindJSON decodes the body into obj, reading at most limit bytes when limit is positive.
// It writes the error response itself and reports whether decoding succeeded.
func bindJSON(c *gin.Context, limit int64, obj interface{}) bool {
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Error: fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit),
			Code:  "REQUEST_TOO_LARGE",
		})
		return false
	}

	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: "Invalid request body",
		Code:  "INVALID_REQUEST",
	})
	return false
}

// internalError records err for ErrorHandlerMiddleware and answers with a generic 500
func internalError(c *gin.Context, err error, msg string) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error: msg,
		Code:  "INTERNAL_ERROR",
	})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// Compare scores two strings with both string-similarity blends
func (h *Handler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if !bindJSON(c, h.maxCompareBody, &req) {
		return
	}

	// edit distance is quadratic in the input lengths
	for _, in := range []string{req.A, req.B} {
		if len(in) > h.maxCompareBytes {
			writeIntakeError(c, fmt.Errorf("%w: input is %d bytes, limit is %d",
				preprocess.ErrDocumentTooLarge, len(in), h.maxCompareBytes))
			return
		}
	}

	c.JSON(http.StatusOK, models.CompareResponse{
		MatchSimilarity: plagiarism.MatchStringSimilarity(req.A, req.B),
		LineSimilarity:  plagiarism.LineStringSimilarity(req.A, req.B),
		Levenshtein:     plagiarism.Levenshtein(req.A, req.B),
	})
}

// Analyze runs a full analysis inside the request and returns results with the export report
func (h *Handler) Analyze(c *gin.Context) {
	var req models.AnalysisRequest
	if !bindJSON(c, h.maxAnalysisBody, &req) {
		return
	}

	documents, err := h.intake.BuildDocuments(&req)
	if err != nil {
		writeIntakeError(c, err)
		return
	}

	ctx := c.Request.Context()
	select {
	case h.computeSem <- struct{}{}:
		defer func() { <-h.computeSem }()
	case <-ctx.Done():
		c.JSON(http.StatusRequestTimeout, models.ErrorResponse{
			Error: "Request cancelled",
			Code:  "REQUEST_TIMEOUT",
		})
		return
	}

	if h.computeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.computeTimeout)
		defer cancel()
	}

	start := time.Now()
	results, err := h.engine.AnalyzeParallel(ctx, h.workerPool, documents)
	if err != nil {
		metrics.AnalysisCount.WithLabelValues("failed").Inc()
		err = fmt.Errorf("synchronous analysis of %d documents: %w", len(documents), err)

		if errors.Is(err, context.DeadlineExceeded) {
			_ = c.Error(err)
			c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{
				Error: "Analysis did not complete",
				Code:  "COMPUTATION_TIMEOUT",
			})
			return
		}
		internalError(c, err, "Analysis did not complete")
		return
	}

	metrics.AnalysisCount.WithLabelValues("completed").Inc()
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	c.JSON(http.StatusOK, models.AnalyzeResponse{
		Results: results,
		Report:  report.Build(results, time.Now()),
	})
}

// SubmitAnalysis validates the request and queues it, returning 202 with the analysis id
func (h *Handler) SubmitAnalysis(c *gin.Context) {
	var req models.AnalysisRequest
	if !bindJSON(c, h.maxAnalysisBody, &req) {
		return
	}

	// the consumer would discard an invalid request, so reject it here
	if _, err := h.intake.BuildDocuments(&req); err != nil {
		writeIntakeError(c, err)
		return
	}

	if req.AnalysisID == "" {
		req.AnalysisID = uuid.NewString()
	}

	ctx := c.Request.Context()
	if err := h.status.UpdateStatus(ctx, req.AnalysisID, models.StepInitiated); err != nil {
		log.Warn().Err(err).Str("analysisId", req.AnalysisID).Msg("Failed to update initiated status")
	}

	if err := h.queue.Enqueue(ctx, &req); err != nil {
		_ = c.Error(fmt.Errorf("failed to queue analysis %s: %w", req.AnalysisID, err))
		if err := h.status.UpdateStatus(ctx, req.AnalysisID, models.StepFailed); err != nil {
			log.Warn().Err(err).Str("analysisId", req.AnalysisID).Msg("Failed to update failed status")
		}
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error: "Analysis queue unavailable",
			Code:  "QUEUE_UNAVAILABLE",
		})
		return
	}

	log.Info().Str("analysisId", req.AnalysisID).Int("documents", len(req.Documents)).Msg("Analysis queued")

	c.JSON(http.StatusAccepted, models.AnalysisAccepted{
		Step:       models.StepInitiated,
		AnalysisID: req.AnalysisID,
	})
}

func (h *Handler) GetStatus(c *gin.Context) {
	analysisID := c.Param("id")

	step, err := h.status.GetStatus(c.Request.Context(), analysisID)
	if err != nil {
		internalError(c, fmt.Errorf("status of %s: %w", analysisID, err), "Failed to read analysis status")
		return
	}

	c.JSON(http.StatusOK, models.AnalysisAccepted{
		Step:       step,
		AnalysisID: analysisID,
	})
}

func (h *Handler) GetReport(c *gin.Context) {
	analysisID := c.Param("id")

	rep, err := h.reports.GetReport(c.Request.Context(), analysisID)
	if errors.Is(err, repository.ErrReportNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: "No report for analysis",
			Code:  "REPORT_NOT_FOUND",
		})
		return
	}
	if err != nil {
		internalError(c, fmt.Errorf("report of %s: %w", analysisID, err), "Failed to read report")
		return
	}

	c.JSON(http.StatusOK, rep)
}

// ListReports returns the most recent reports, newest first
func (h *Handler) ListReports(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error: "limit must be between 1 and 100",
				Code:  "INVALID_LIMIT",
			})
			return
		}
		limit = n
	}

	reports, err := h.reports.ListRecentReports(c.Request.Context(), int64(limit))
	if err != nil {
		internalError(c, err, "Failed to list reports")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func writeIntakeError(c *gin.Context, err error) {
	var verr *preprocess.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:  "Request validation failed",
			Code:   "VALIDATION_FAILED",
			Fields: verr.Fields,
		})
		return
	}

	status, code := http.StatusBadRequest, "INVALID_REQUEST"
	switch {
	case errors.Is(err, preprocess.ErrTooFewDocuments):
		code = "TOO_FEW_DOCUMENTS"
	case errors.Is(err, preprocess.ErrTooManyDocuments):
		code = "TOO_MANY_DOCUMENTS"
	case errors.Is(err, preprocess.ErrDocumentTooLarge):
		status, code = http.StatusRequestEntityTooLarge, "DOCUMENT_TOO_LARGE"
	case errors.Is(err, preprocess.ErrDuplicateID):
		code = "DUPLICATE_DOCUMENT_ID"
	case errors.Is(err, preprocess.ErrInvalidEncoding):
		code = "INVALID_ENCODING"
	}

	c.JSON(status, models.ErrorResponse{
		Error: err.Error(),
		Code:  code,
	})
}
