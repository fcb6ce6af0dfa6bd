package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"visibility-wizard/models"
)

// ScoringService converts raw per-model signals into 0-100 visibility
// scores. Every method is total: empty or malformed input degrades to a
// zero score, never an error.
type ScoringService struct{}

// NewScoringService creates a new scoring service
func NewScoringService() *ScoringService {
	return &ScoringService{}
}

// WeightedScore scores one model response.
// Not mentioned -> 0. Otherwise base 50 plus a positional bonus
// (40 for #1, 25 for #2-3, 15 for #4-5, 5 otherwise) and a sentiment
// adjustment (+10 positive, -20 negative), clamped to [0,100].
// Positions of 0 or below are not validated and take the default bonus.
func (s *ScoringService) WeightedScore(result models.ModelResult) int {
	if !result.BrandMentioned {
		return 0
	}

	score := 50
	switch {
	case result.Position != nil && *result.Position == 1:
		score += 40
	case result.Position != nil && *result.Position >= 2 && *result.Position <= 3:
		score += 25
	case result.Position != nil && *result.Position >= 4 && *result.Position <= 5:
		score += 15
	default:
		score += 5
	}

	switch result.Sentiment {
	case models.SentimentPositive:
		score += 10
	case models.SentimentNegative:
		score -= 20
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// CategoryScore is the rounded mean of the weighted scores of all results
// for all prompts in a category. Empty input scores 0.
func (s *ScoringService) CategoryScore(results []models.ModelResult) int {
	if len(results) == 0 {
		return 0
	}

	scores := make([]decimal.Decimal, len(results))
	for i, r := range results {
		scores[i] = decimal.NewFromInt(int64(s.WeightedScore(r)))
	}
	return int(decimal.Avg(scores[0], scores[1:]...).Round(0).IntPart())
}

// OverallScore is the rounded mean of the category scores. 0 if no categories.
func (s *ScoringService) OverallScore(categoryResults []models.CategoryResult) int {
	if len(categoryResults) == 0 {
		return 0
	}

	scores := make([]decimal.Decimal, len(categoryResults))
	for i, cr := range categoryResults {
		scores[i] = decimal.NewFromInt(int64(cr.Score))
	}
	return int(decimal.Avg(scores[0], scores[1:]...).Round(0).IntPart())
}

// CompetitorCategoryScore scores one competitor against one category.
// For each prompt it takes the fraction of model responses whose text
// mentions the competitor, then averages the fractions across prompts.
func (s *ScoringService) CompetitorCategoryScore(competitorName string, promptResults [][]models.ModelResult) int {
	if len(promptResults) == 0 {
		return 0
	}

	name := strings.ToLower(competitorName)
	fractions := make([]decimal.Decimal, 0, len(promptResults))
	for _, results := range promptResults {
		if len(results) == 0 {
			fractions = append(fractions, decimal.Zero)
			continue
		}
		mentioned := 0
		for _, r := range results {
			if strings.Contains(strings.ToLower(r.FullResponse), name) {
				mentioned++
			}
		}
		fractions = append(fractions,
			decimal.NewFromInt(int64(mentioned)).Div(decimal.NewFromInt(int64(len(results)))))
	}

	avg := decimal.Avg(fractions[0], fractions[1:]...)
	return int(avg.Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// CompetitorScores aggregates per-category and overall scores for each
// competitor from the same raw data the brand was scored on.
// promptResults maps category ID to the per-prompt model results.
func (s *ScoringService) CompetitorScores(competitors []models.CompetitorInfo, categories []models.CategoryDefinition, promptResults map[string][][]models.ModelResult) []models.CompetitorScore {
	scores := make([]models.CompetitorScore, 0, len(competitors))
	for _, comp := range competitors {
		categoryScores := map[string]int{}
		catValues := []models.CategoryResult{}
		for _, cat := range categories {
			cs := s.CompetitorCategoryScore(comp.Name, promptResults[cat.ID])
			categoryScores[cat.ID] = cs
			catValues = append(catValues, models.CategoryResult{Score: cs})
		}
		overall := s.OverallScore(catValues)
		scores = append(scores, models.CompetitorScore{
			Name:           comp.Name,
			OverallScore:   overall,
			CategoryScores: categoryScores,
			Grade:          s.LetterGrade(overall),
		})
	}
	return scores
}

// Rank merges the brand and its competitors and sorts descending by score.
// Ties keep input order: brand first, then competitors as supplied.
func (s *ScoringService) Rank(brandName string, brandScore int, competitorScores []models.CompetitorScore) []models.RankedEntry {
	entries := []models.RankedEntry{
		{Name: brandName, Score: brandScore, IsBrand: true},
	}
	for _, c := range competitorScores {
		entries = append(entries, models.RankedEntry{Name: c.Name, Score: c.OverallScore})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// LetterGrade maps a 0-100 score to a letter grade
func (s *ScoringService) LetterGrade(score int) string {
	switch {
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

// StatusForScore maps a category score to its display status
func (s *ScoringService) StatusForScore(score int) string {
	switch {
	case score >= 70:
		return models.StatusStrong
	case score >= 40:
		return models.StatusModerate
	default:
		return models.StatusWeak
	}
}

// CategoryInsight writes the one-line takeaway shown under a category result
func (s *ScoringService) CategoryInsight(label string, score int, results []models.ModelResult) string {
	mentioned := 0
	for _, r := range results {
		if r.BrandMentioned {
			mentioned++
		}
	}

	switch s.StatusForScore(score) {
	case models.StatusStrong:
		return fmt.Sprintf("Strong: %d of %d AI responses surface your brand for %s queries.", mentioned, len(results), label)
	case models.StatusModerate:
		return fmt.Sprintf("Moderate: your brand appears in %d of %d AI responses for %s queries, but rarely first.", mentioned, len(results), label)
	default:
		return fmt.Sprintf("Weak: your brand is missing from %d of %d AI responses for %s queries.", len(results)-mentioned, len(results), label)
	}
}

// Positive and negative indicator words for keyword sentiment
var positiveWords = []string{
	"best", "excellent", "great", "top", "leading", "recommended",
	"outstanding", "innovative", "quality", "trusted", "reliable",
	"popular", "favorite", "preferred", "award", "premium",
}

var negativeWords = []string{
	"bad", "poor", "avoid", "problem", "issue", "complaint",
	"expensive", "overpriced", "disappointing", "lacks", "limited",
	"controversy", "criticism", "negative",
}

// AnalyzeResponse derives the structured mention signals from a raw model
// response when the backend returns only text. The position is the brand's
// 1-based rank among all tracked names ordered by first occurrence.
func (s *ScoringService) AnalyzeResponse(response, brand string, competitors []string) models.ModelResult {
	responseLower := strings.ToLower(response)
	brandLower := strings.ToLower(brand)

	mentioned := strings.Contains(responseLower, brandLower)

	var position *int
	if mentioned {
		type mention struct {
			name string
			idx  int
		}
		mentions := []mention{}
		for _, name := range append([]string{brand}, competitors...) {
			if idx := strings.Index(responseLower, strings.ToLower(name)); idx != -1 {
				mentions = append(mentions, mention{name: name, idx: idx})
			}
		}
		sort.SliceStable(mentions, func(i, j int) bool { return mentions[i].idx < mentions[j].idx })
		for i, m := range mentions {
			if strings.EqualFold(m.name, brand) {
				p := i + 1
				position = &p
				break
			}
		}
	}

	competitorsMentioned := []string{}
	for _, c := range competitors {
		if strings.Contains(responseLower, strings.ToLower(c)) {
			competitorsMentioned = append(competitorsMentioned, c)
		}
	}

	return models.ModelResult{
		BrandMentioned:       mentioned,
		Position:             position,
		Sentiment:            s.analyzeSentiment(response, brand),
		CompetitorsMentioned: competitorsMentioned,
		FullResponse:         response,
	}
}

// analyzeSentiment counts positive and negative indicator words in the
// sentences that mention the brand
func (s *ScoringService) analyzeSentiment(response, brand string) string {
	brandLower := strings.ToLower(brand)

	brandSentences := []string{}
	for _, sentence := range strings.Split(response, ".") {
		if strings.Contains(strings.ToLower(sentence), brandLower) {
			brandSentences = append(brandSentences, sentence)
		}
	}
	if len(brandSentences) == 0 {
		return models.SentimentNeutral
	}

	text := strings.ToLower(strings.Join(brandSentences, " "))
	positive, negative := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(text, w) {
			positive++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(text, w) {
			negative++
		}
	}

	if positive > negative {
		return models.SentimentPositive
	}
	if negative > positive {
		return models.SentimentNegative
	}
	return models.SentimentNeutral
}
