package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RishiKendai/aegis-text/internal/models"
	"github.com/RishiKendai/aegis-text/internal/plagiarism"
)

var similarityJSON bool

var similarityCmd = &cobra.Command{
	Use:   "similarity <a> <b>",
	Short: "Score two strings with the string-similarity blends",
	Args:  cobra.ExactArgs(2),
	RunE:  runSimilarity,
}

func init() {
	similarityCmd.Flags().BoolVar(&similarityJSON, "json", false, "output scores as JSON")
	rootCmd.AddCommand(similarityCmd)
}

func runSimilarity(cmd *cobra.Command, args []string) error {
	a, b := args[0], args[1]
	scores := models.CompareResponse{
		MatchSimilarity: plagiarism.MatchStringSimilarity(a, b),
		LineSimilarity:  plagiarism.LineStringSimilarity(a, b),
		Levenshtein:     plagiarism.Levenshtein(a, b),
	}

	if similarityJSON {
		data, err := json.Marshal(scores)
		if err != nil {
			return fmt.Errorf("failed to marshal scores: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("match similarity: %.4f\n", scores.MatchSimilarity)
	cmd.Printf("line similarity:  %.4f\n", scores.LineSimilarity)
	cmd.Printf("levenshtein:      %d\n", scores.Levenshtein)
	return nil
}
