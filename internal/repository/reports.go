package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/aegis-text/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const reportsCollection = "similarity_reports"

var ErrReportNotFound = errors.New("report not found")

// ReportsRepository stores exported analysis reports. Document content is never persisted.
type ReportsRepository struct {
	mongoRepo *MongoRepository
}

func NewReportsRepository(mongoRepo *MongoRepository) *ReportsRepository {
	return &ReportsRepository{
		mongoRepo: mongoRepo,
	}
}

func reportFilter(analysisID string) bson.M {
	return bson.M{"analysisId": analysisID}
}

// SaveReport upserts the report of an analysis
func (r *ReportsRepository) SaveReport(ctx context.Context, report *models.Report) error {
	if report.AnalysisID == "" {
		return fmt.Errorf("failed to save report: missing analysis id")
	}
	report.CreatedAt = time.Now()

	if err := r.mongoRepo.Upsert(ctx, reportsCollection, reportFilter(report.AnalysisID), report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

func (r *ReportsRepository) GetReport(ctx context.Context, analysisID string) (*models.Report, error) {
	var report models.Report
	err := r.mongoRepo.FindOne(ctx, reportsCollection, reportFilter(analysisID), &report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report: %w", err)
	}
	return &report, nil
}

// ListRecentReports returns the latest reports, newest first
func (r *ReportsRepository) ListRecentReports(ctx context.Context, limit int64) ([]*models.Report, error) {
	reports := make([]*models.Report, 0)
	if err := r.mongoRepo.FindLatest(ctx, reportsCollection, bson.M{}, "createdAt", limit, &reports); err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// EnsureIndexes creates the unique analysis id index and the recency index used by ListRecentReports
func (r *ReportsRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.mongoRepo.Collection(reportsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "analysisId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create report indexes: %w", err)
	}
	return nil
}
