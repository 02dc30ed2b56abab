package plagiarism

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/RishiKendai/aegis-text/internal/models"
)

var sentenceDelimRe = regexp.MustCompile(`[.!?\n]+`)

// SplitLines splits text on newlines and drops blank lines. Lines are trimmed.
func SplitLines(text string) []string {
	lines := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// SplitSentences splits text on runs of '.', '!', '?' and newlines, keeping
// trimmed fragments longer than minLen runes.
func SplitSentences(text string, minLen int) []string {
	sentences := make([]string, 0)
	for _, fragment := range sentenceDelimRe.Split(text, -1) {
		fragment = strings.TrimSpace(fragment)
		if utf8.RuneCountInString(fragment) > minLen {
			sentences = append(sentences, fragment)
		}
	}
	return sentences
}

// preview truncates content to limit runes, appending an ellipsis when cut
func preview(content string, limit int) string {
	if utf8.RuneCountInString(content) <= limit {
		return content
	}
	return string([]rune(content)[:limit]) + "..."
}

func prefix(content string, n int) string {
	if utf8.RuneCountInString(content) <= n {
		return content
	}
	return string([]rune(content)[:n])
}

// FindMatches scans both documents line by line and sentence by sentence and
// returns the strongest overlapping passages, best first.
func FindMatches(textA, textB string, th Thresholds) []models.MatchSegment {
	matches := make([]models.MatchSegment, 0)

	linesA := SplitLines(textA)
	linesB := SplitLines(textB)
	for i, lineA := range linesA {
		for j, lineB := range linesB {
			similarity := MatchStringSimilarity(lineA, lineB)
			if similarity > th.MatchAcceptance {
				matches = append(matches, newSegment(i, j, lineA, similarity, th))
			}
		}
	}

	sentencesA := SplitSentences(textA, th.MinSentenceLen)
	sentencesB := SplitSentences(textB, th.MinSentenceLen)
	for i, sentenceA := range sentencesA {
		for j, sentenceB := range sentencesB {
			similarity := MatchStringSimilarity(sentenceA, sentenceB)
			if similarity <= th.MatchAcceptance {
				continue
			}
			if isDuplicate(matches, sentenceA, similarity*100, th) {
				continue
			}
			matches = append(matches, newSegment(i, j, sentenceA, similarity, th))
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > th.MaxMatches {
		matches = matches[:th.MaxMatches]
	}
	return matches
}

func newSegment(i, j int, content string, similarity float64, th Thresholds) models.MatchSegment {
	return models.MatchSegment{
		File1Range: [2]int{i, i},
		File2Range: [2]int{j, j},
		Content:    preview(content, th.PreviewLen),
		Similarity: similarity * 100,
		Type:       th.classify(similarity),
	}
}

// isDuplicate reports whether a sentence candidate repeats a match already found by the line pass
func isDuplicate(matches []models.MatchSegment, content string, score float64, th Thresholds) bool {
	head := prefix(content, th.DuplicatePrefix)
	for _, match := range matches {
		delta := match.Similarity - score
		if delta < 0 {
			delta = -delta
		}
		if delta < th.DuplicateDelta && prefix(match.Content, th.DuplicatePrefix) == head {
			return true
		}
	}
	return false
}

// LineSimilarity is the share of lines whose best counterpart in the other
// document scores above th.LineMatch.
func LineSimilarity(textA, textB string, th Thresholds) float64 {
	linesA := SplitLines(textA)
	linesB := SplitLines(textB)

	if len(linesA) == 0 && len(linesB) == 0 {
		return 1.0
	}
	if len(linesA) == 0 || len(linesB) == 0 {
		return 0.0
	}

	scores := make([][]float64, len(linesA))
	for i, lineA := range linesA {
		scores[i] = make([]float64, len(linesB))
		for j, lineB := range linesB {
			scores[i][j] = LineStringSimilarity(lineA, lineB)
		}
	}

	matching := 0
	matchedB := make([]bool, len(linesB))
	for i := range linesA {
		best := 0.0
		for j := range linesB {
			best = max(best, scores[i][j])
			if scores[i][j] > th.LineMatch {
				matchedB[j] = true
			}
		}
		if best > th.LineMatch {
			matching++
		}
	}

	// B lines only count when no A line already matched them
	for j := range linesB {
		best := 0.0
		for i := range linesA {
			best = max(best, scores[i][j])
		}
		if best > th.LineMatch && !matchedB[j] {
			matching++
		}
	}

	return math.Min(1.0, float64(matching)/float64(max(len(linesA), len(linesB))))
}

// SentenceSimilarity is the mean match similarity over every sentence pair
func SentenceSimilarity(textA, textB string, th Thresholds) float64 {
	sentencesA := SplitSentences(textA, th.MinSentenceLen)
	sentencesB := SplitSentences(textB, th.MinSentenceLen)
	if len(sentencesA) == 0 || len(sentencesB) == 0 {
		return 0.0
	}

	total := 0.0
	comparisons := 0
	for _, sentenceA := range sentencesA {
		for _, sentenceB := range sentencesB {
			total += MatchStringSimilarity(sentenceA, sentenceB)
			comparisons++
		}
	}
	return total / float64(comparisons)
}
