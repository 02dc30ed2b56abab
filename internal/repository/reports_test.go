package repository

import (
	"context"
	"testing"

	"github.com/RishiKendai/aegis-text/internal/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

func TestReportFilter(t *testing.T) {
	assert.Equal(t, bson.M{"analysisId": "run-1"}, reportFilter("run-1"))
}

func TestSaveReportRequiresAnalysisID(t *testing.T) {
	repo := NewReportsRepository(&MongoRepository{})

	err := repo.SaveReport(context.Background(), &models.Report{})

	assert.EqualError(t, err, "failed to save report: missing analysis id")
}

func TestReportBSONFieldNames(t *testing.T) {
	data, err := bson.Marshal(&models.Report{AnalysisID: "run-1", TotalComparisons: 3})
	assert.NoError(t, err)

	var doc bson.M
	assert.NoError(t, bson.Unmarshal(data, &doc))
	assert.Equal(t, "run-1", doc["analysisId"])
	assert.EqualValues(t, 3, doc["totalComparisons"])
	assert.NotContains(t, doc, "error", "empty error is omitted")
}
