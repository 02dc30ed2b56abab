package plagiarism

import (
	"context"
	"fmt"
	"time"

	"github.com/RishiKendai/aegis-text/internal/metrics"
	"github.com/RishiKendai/aegis-text/internal/models"
	"github.com/rs/zerolog/log"
)

// Pair is one unordered document pair, Index being its position in enumeration order
type Pair struct {
	Index     int
	DocumentA *models.Document
	DocumentB *models.Document
}

// Pairs enumerates (i, j) with i < j, grouped by i then j ascending
func Pairs(documents []models.Document) []Pair {
	if len(documents) < 2 {
		return []Pair{}
	}

	pairs := make([]Pair, 0, len(documents)*(len(documents)-1)/2)
	for i := 0; i < len(documents); i++ {
		for j := i + 1; j < len(documents); j++ {
			pairs = append(pairs, Pair{
				Index:     len(pairs),
				DocumentA: &documents[i],
				DocumentB: &documents[j],
			})
		}
	}
	return pairs
}

// Engine compares documents with a fixed set of thresholds. It holds no mutable state.
type Engine struct {
	thresholds Thresholds
}

func NewEngine(th Thresholds) *Engine {
	return &Engine{thresholds: th}
}

func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Compare scores a single pair
func (e *Engine) Compare(a, b *models.Document) models.ComparisonResult {
	start := time.Now()
	result := ComparePair(a, b, e.thresholds)
	metrics.PairDuration.Observe(time.Since(start).Seconds())

	log.Trace().
		Str("pair", result.ID).
		Float64("similarity", result.Similarity).
		Int("matches", len(result.Matches)).
		Msg("Pair compared")

	return result
}

// Analyze compares every document pair in order. Fewer than two documents yield no results.
// Cancellation is checked between pairs.
func (e *Engine) Analyze(ctx context.Context, documents []models.Document) ([]models.ComparisonResult, error) {
	pairs := Pairs(documents)
	results := make([]models.ComparisonResult, 0, len(pairs))

	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, e.Compare(pair.DocumentA, pair.DocumentB))
	}

	return results, nil
}

// ComparisonJob scores one pair on the worker pool. Ctx is the context of the
// analysis that submitted it; once it is done the job is skipped.
type ComparisonJob struct {
	Ctx        context.Context
	Pair       Pair
	Engine     *Engine
	ResultChan chan<- indexedResult
}

type indexedResult struct {
	index  int
	result models.ComparisonResult
}

// Execute runs the comparison unless the pool or the submitting analysis is done
func (j *ComparisonJob) Execute(poolCtx context.Context) error {
	jobCtx := j.Ctx
	if jobCtx == nil {
		jobCtx = context.Background()
	}
	if err := jobCtx.Err(); err != nil {
		return err
	}
	if err := poolCtx.Err(); err != nil {
		return err
	}

	result := j.Engine.Compare(j.Pair.DocumentA, j.Pair.DocumentB)

	select {
	case <-jobCtx.Done():
		return jobCtx.Err()
	case <-poolCtx.Done():
		return poolCtx.Err()
	case j.ResultChan <- indexedResult{index: j.Pair.Index, result: result}:
		return nil
	}
}

// AnalyzeParallel is Analyze with pairs fanned out over the worker pool.
// Results keep pair enumeration order.
func (e *Engine) AnalyzeParallel(ctx context.Context, pool *WorkerPool, documents []models.Document) ([]models.ComparisonResult, error) {
	pairs := Pairs(documents)
	if len(pairs) == 0 {
		return []models.ComparisonResult{}, nil
	}

	// Buffered so workers never block on delivery
	resultChan := make(chan indexedResult, len(pairs))

	for _, pair := range pairs {
		job := &ComparisonJob{
			Ctx:        ctx,
			Pair:       pair,
			Engine:     e,
			ResultChan: resultChan,
		}
		if err := pool.Submit(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to submit pair %d: %w", pair.Index, err)
		}
	}

	results := make([]models.ComparisonResult, len(pairs))
	for received := 0; received < len(pairs); received++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-pool.ctx.Done():
			return nil, ErrPoolClosed
		case r := <-resultChan:
			results[r.index] = r.result
		}
	}

	log.Debug().
		Int("documents", len(documents)).
		Int("pairs", len(pairs)).
		Int("workers", pool.Size()).
		Msg("Parallel analysis completed")

	return results, nil
}
