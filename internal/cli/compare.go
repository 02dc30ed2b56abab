package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/RishiKendai/aegis-text/internal/models"
	"github.com/RishiKendai/aegis-text/internal/plagiarism"
	"github.com/RishiKendai/aegis-text/internal/preprocess"
	"github.com/RishiKendai/aegis-text/internal/report"
)

var (
	compareJSON    bool
	compareWorkers int
	compareMatches bool
)

var compareCmd = &cobra.Command{
	Use:   "compare <file> <file>...",
	Short: "Compare plain-text files pairwise",
	Long: `Reads two or more UTF-8 text files, compares every pair and prints the
pairs ranked by similarity. With --json the export report is printed instead.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCompare,
}

func init() {
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "output the report as JSON")
	compareCmd.Flags().IntVarP(&compareWorkers, "workers", "w", 0, "number of comparison workers (0 sizes by CPU)")
	compareCmd.Flags().BoolVarP(&compareMatches, "matches", "m", false, "list matching passages under each pair")
	rootCmd.AddCommand(compareCmd)
}

func readDocuments(paths []string, maxBytes int) ([]models.Document, error) {
	req := &models.AnalysisRequest{Documents: make([]models.SubmittedDocument, 0, len(paths))}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		req.Documents = append(req.Documents, models.SubmittedDocument{
			ID:      path,
			Name:    filepath.Base(path),
			Content: string(data),
		})
	}

	return preprocess.NewService(0, maxBytes).BuildDocuments(req)
}

func runCompare(cmd *cobra.Command, args []string) error {
	documents, err := readDocuments(args, cfg.MaxDocumentBytes)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	pool := plagiarism.NewWorkerPool(ctx, compareWorkers)
	defer pool.Close()

	engine := plagiarism.NewEngine(cfg.Thresholds)
	results, err := engine.AnalyzeParallel(ctx, pool, documents)
	if err != nil {
		return fmt.Errorf("comparison failed: %w", err)
	}

	rep := report.Build(results, time.Now())
	if compareJSON {
		data, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	printRanking(cmd, results)
	return nil
}

// rankResults orders results by similarity, highest first, keeping pair order for ties
func rankResults(results []models.ComparisonResult) []models.ComparisonResult {
	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b models.ComparisonResult) int {
		switch {
		case a.Similarity > b.Similarity:
			return -1
		case a.Similarity < b.Similarity:
			return 1
		}
		return 0
	})
	return ranked
}

func printRanking(cmd *cobra.Command, results []models.ComparisonResult) {
	cmd.Printf("%d comparisons\n\n", len(results))

	for i, result := range rankResults(results) {
		cmd.Printf("  [%d] %s <> %s  %.2f%% (confidence %.2f%%, %s)\n",
			i+1,
			result.File1.Name,
			result.File2.Name,
			result.Similarity,
			result.Confidence,
			plagiarism.GetRiskLevel(result.Similarity),
		)

		if !compareMatches {
			continue
		}
		for _, m := range result.Matches {
			cmd.Printf("      %-10s %6.2f%%  %d-%d / %d-%d  %s\n",
				m.Type, m.Similarity,
				m.File1Range[0], m.File1Range[1],
				m.File2Range[0], m.File2Range[1],
				m.Content,
			)
		}
	}
}
