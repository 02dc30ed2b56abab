package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/RishiKendai/aegis-text/internal/metrics"
	"github.com/RishiKendai/aegis-text/internal/models"
	"github.com/RishiKendai/aegis-text/internal/plagiarism"
	"github.com/RishiKendai/aegis-text/internal/preprocess"
	"github.com/RishiKendai/aegis-text/internal/report"
	"github.com/rs/zerolog/log"
)

type ReportStore interface {
	SaveReport(ctx context.Context, report *models.Report) error
}

type StatusUpdater interface {
	UpdateStatus(ctx context.Context, analysisID string, step models.Step) error
}

// Processor runs queued analyses end to end
type Processor struct {
	intake  *preprocess.Service
	engine  *plagiarism.Engine
	pool    *plagiarism.WorkerPool
	reports ReportStore
	status  StatusUpdater
	timeout time.Duration
}

func NewProcessor(
	intake *preprocess.Service,
	engine *plagiarism.Engine,
	pool *plagiarism.WorkerPool,
	reports ReportStore,
	status StatusUpdater,
	timeout time.Duration,
) *Processor {
	return &Processor{
		intake:  intake,
		engine:  engine,
		pool:    pool,
		reports: reports,
		status:  status,
		timeout: timeout,
	}
}

// bookkeepingTimeout bounds the report and status writes made after an analysis ends
const bookkeepingTimeout = 5 * time.Second

// Process analyzes one request and stores its report. Analysis failures are recorded
// as a failed report and returned; only storage failures leave no trace.
func (p *Processor) Process(ctx context.Context, req *models.AnalysisRequest) error {
	runCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.updateStatus(runCtx, req.AnalysisID, models.StepStarted)
	start := time.Now()

	rep, err := p.run(runCtx, req)

	// the run context may be expired or cancelled by now
	saveCtx, cancelSave := context.WithTimeout(context.WithoutCancel(ctx), bookkeepingTimeout)
	defer cancelSave()

	if err != nil {
		metrics.AnalysisCount.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("analysisId", req.AnalysisID).Msg("Analysis failed")

		if saveErr := p.reports.SaveReport(saveCtx, report.Failed(req.AnalysisID, err, time.Now())); saveErr != nil {
			log.Error().Err(saveErr).Str("analysisId", req.AnalysisID).Msg("Failed to store failed report")
		}
		p.updateStatus(saveCtx, req.AnalysisID, models.StepFailed)
		return err
	}

	if err := p.reports.SaveReport(saveCtx, rep); err != nil {
		metrics.AnalysisCount.WithLabelValues("failed").Inc()
		p.updateStatus(saveCtx, req.AnalysisID, models.StepFailed)
		return fmt.Errorf("failed to store report: %w", err)
	}

	metrics.AnalysisCount.WithLabelValues("completed").Inc()
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	p.updateStatus(saveCtx, req.AnalysisID, models.StepCompleted)

	log.Info().
		Str("analysisId", req.AnalysisID).
		Int("comparisons", rep.TotalComparisons).
		Int("flagged", rep.FlaggedPairs).
		Dur("took", time.Since(start)).
		Msg("Analysis completed successfully")

	return nil
}

func (p *Processor) run(ctx context.Context, req *models.AnalysisRequest) (*models.Report, error) {
	documents, err := p.intake.BuildDocuments(req)
	if err != nil {
		return nil, fmt.Errorf("invalid analysis request: %w", err)
	}

	p.updateStatus(ctx, req.AnalysisID, models.StepAnalyzing)

	results, err := p.engine.AnalyzeParallel(ctx, p.pool, documents)
	if err != nil {
		return nil, fmt.Errorf("analysis interrupted: %w", err)
	}

	rep := report.Build(results, time.Now())
	rep.AnalysisID = req.AnalysisID
	return rep, nil
}

func (p *Processor) updateStatus(ctx context.Context, analysisID string, step models.Step) {
	if err := p.status.UpdateStatus(ctx, analysisID, step); err != nil {
		log.Warn().Err(err).Str("analysisId", analysisID).Str("step", string(step)).Msg("Failed to update status")
	}
}
