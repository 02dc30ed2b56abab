package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishiKendai/aegis-text/internal/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	compareJSON, compareWorkers, compareMatches = false, 0, false
	similarityJSON = false
	logLevel = "warn"

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestVersionCmd_Executes(t *testing.T) {
	original := version
	version = "test-1.2.3"
	defer func() { version = original }()

	out, err := execute(t, "version")

	assert.NoError(t, err)
	assert.Contains(t, out, "aegis-text version test-1.2.3")
}

func TestCompareCmd_RequiresTwoFiles(t *testing.T) {
	_, err := execute(t, "compare", "only.txt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestCompareCmd_MissingFile(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "some text")

	_, err := execute(t, "compare", a, filepath.Join(dir, "missing.txt"))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestCompareCmd_RanksPairs(t *testing.T) {
	dir := t.TempDir()
	text := "The quick brown fox jumps over the lazy dog."
	a := writeFile(t, dir, "a.txt", text)
	b := writeFile(t, dir, "b.txt", "Distributed systems need careful failure handling.")
	c := writeFile(t, dir, "c.txt", text)

	out, err := execute(t, "compare", "--workers", "2", a, b, c)
	require.NoError(t, err)

	assert.Contains(t, out, "3 comparisons")
	assert.Contains(t, out, "[1] a.txt <> c.txt  100.00%")
}

func TestCompareCmd_JSONReport(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "identical body of text")
	b := writeFile(t, dir, "b.txt", "identical body of text")

	out, err := execute(t, "compare", "--json", a, b)
	require.NoError(t, err)

	var rep models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 1, rep.TotalComparisons)
	assert.Equal(t, 1, rep.FlaggedPairs)
	require.Len(t, rep.Results, 1)
	assert.Equal(t, "a.txt", rep.Results[0].File1)
	assert.Equal(t, "near copy", rep.Results[0].Risk)
}

func TestCompareCmd_ListsMatches(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "shared line of text")
	b := writeFile(t, dir, "b.txt", "shared line of text")

	out, err := execute(t, "compare", "-m", a, b)
	require.NoError(t, err)

	assert.Contains(t, out, string(models.MatchExact))
}

func TestRankResultsKeepsTieOrder(t *testing.T) {
	results := []models.ComparisonResult{
		{ID: "a-b", Similarity: 10},
		{ID: "a-c", Similarity: 50},
		{ID: "b-c", Similarity: 10},
	}

	ranked := rankResults(results)

	ids := []string{ranked[0].ID, ranked[1].ID, ranked[2].ID}
	assert.Equal(t, []string{"a-c", "a-b", "b-c"}, ids)
	assert.Equal(t, "a-b", results[0].ID, "input is not reordered")
}

func TestSimilarityCmd(t *testing.T) {
	out, err := execute(t, "similarity", "kitten", "sitting")
	require.NoError(t, err)

	assert.Contains(t, out, "levenshtein:      3")
}

func TestSimilarityCmd_JSON(t *testing.T) {
	out, err := execute(t, "similarity", "--json", "same words", "same words")
	require.NoError(t, err)

	var scores models.CompareResponse
	require.NoError(t, json.Unmarshal([]byte(out), &scores))
	assert.Equal(t, 1.0, scores.MatchSimilarity)
	assert.Equal(t, 1.0, scores.LineSimilarity)
	assert.Equal(t, 0, scores.Levenshtein)
}
