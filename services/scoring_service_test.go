package services

import (
	"reflect"
	"testing"

	"visibility-wizard/models"
)

func intPtr(i int) *int { return &i }

func TestScoringService_WeightedScore(t *testing.T) {
	scoring := NewScoringService()

	tests := []struct {
		name   string
		result models.ModelResult
		want   int
	}{
		{
			name: "not mentioned is zero regardless of other fields",
			result: models.ModelResult{
				BrandMentioned: false,
				Position:       intPtr(1),
				Sentiment:      models.SentimentPositive,
			},
			want: 0,
		},
		{
			name: "first position positive clamps at 100",
			result: models.ModelResult{
				BrandMentioned: true,
				Position:       intPtr(1),
				Sentiment:      models.SentimentPositive,
			},
			want: 100,
		},
		{
			name: "position six negative",
			result: models.ModelResult{
				BrandMentioned: true,
				Position:       intPtr(6),
				Sentiment:      models.SentimentNegative,
			},
			want: 35,
		},
		{
			name: "position two neutral",
			result: models.ModelResult{
				BrandMentioned: true,
				Position:       intPtr(2),
				Sentiment:      models.SentimentNeutral,
			},
			want: 75,
		},
		{
			name: "position three neutral",
			result: models.ModelResult{
				BrandMentioned: true,
				Position:       intPtr(3),
			},
			want: 75,
		},
		{
			name: "position four neutral",
			result: models.ModelResult{
				BrandMentioned: true,
				Position:       intPtr(4),
			},
			want: 65,
		},
		{
			name: "position five neutral",
			result: models.ModelResult{
				BrandMentioned: true,
				Position:       intPtr(5),
			},
			want: 65,
		},
		{
			name: "mentioned without position",
			result: models.ModelResult{
				BrandMentioned: true,
			},
			want: 55,
		},
		{
			name: "malformed zero position takes default bonus",
			result: models.ModelResult{
				BrandMentioned: true,
				Position:       intPtr(0),
			},
			want: 55,
		},
		{
			name: "malformed negative position takes default bonus",
			result: models.ModelResult{
				BrandMentioned: true,
				Position:       intPtr(-2),
				Sentiment:      models.SentimentNegative,
			},
			want: 35,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoring.WeightedScore(tt.result); got != tt.want {
				t.Errorf("WeightedScore() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoringService_CategoryScore(t *testing.T) {
	scoring := NewScoringService()

	if got := scoring.CategoryScore(nil); got != 0 {
		t.Errorf("CategoryScore(nil) = %d, want 0", got)
	}

	// Mean of N uniform results is exact
	uniform := []models.ModelResult{
		{BrandMentioned: true, Position: intPtr(1), Sentiment: models.SentimentPositive},
		{BrandMentioned: true, Position: intPtr(1), Sentiment: models.SentimentPositive},
		{BrandMentioned: true, Position: intPtr(1), Sentiment: models.SentimentPositive},
	}
	if got := scoring.CategoryScore(uniform); got != 100 {
		t.Errorf("CategoryScore(uniform 100) = %d, want 100", got)
	}

	mixed := []models.ModelResult{
		{BrandMentioned: true, Position: intPtr(1), Sentiment: models.SentimentPositive}, // 100
		{BrandMentioned: false}, // 0
	}
	if got := scoring.CategoryScore(mixed); got != 50 {
		t.Errorf("CategoryScore(100,0) = %d, want 50", got)
	}
}

func TestScoringService_OverallScore(t *testing.T) {
	scoring := NewScoringService()

	if got := scoring.OverallScore(nil); got != 0 {
		t.Errorf("OverallScore(nil) = %d, want 0", got)
	}

	categoryResults := []models.CategoryResult{
		{Score: 100},
		{Score: 50},
		{Score: 0},
	}
	got := scoring.OverallScore(categoryResults)
	if got != 50 {
		t.Errorf("OverallScore(100,50,0) = %d, want 50", got)
	}
	if grade := scoring.LetterGrade(got); grade != "F" {
		t.Errorf("LetterGrade(50) = %q, want F", grade)
	}
}

func TestScoringService_LetterGrade(t *testing.T) {
	scoring := NewScoringService()

	tests := []struct {
		score int
		want  string
	}{
		{90, "A"},
		{89, "B"},
		{80, "B"},
		{79, "C"},
		{70, "C"},
		{69, "D"},
		{60, "D"},
		{59, "F"},
		{0, "F"},
		{100, "A"},
	}

	for _, tt := range tests {
		if got := scoring.LetterGrade(tt.score); got != tt.want {
			t.Errorf("LetterGrade(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoringService_StatusForScore(t *testing.T) {
	scoring := NewScoringService()

	tests := []struct {
		score int
		want  string
	}{
		{70, models.StatusStrong},
		{100, models.StatusStrong},
		{69, models.StatusModerate},
		{40, models.StatusModerate},
		{39, models.StatusWeak},
		{0, models.StatusWeak},
	}

	for _, tt := range tests {
		if got := scoring.StatusForScore(tt.score); got != tt.want {
			t.Errorf("StatusForScore(%d) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestScoringService_CompetitorCategoryScore(t *testing.T) {
	scoring := NewScoringService()

	if got := scoring.CompetitorCategoryScore("Rivale", nil); got != 0 {
		t.Errorf("CompetitorCategoryScore(no prompts) = %d, want 0", got)
	}

	// Prompt 1: 2 of 2 responses mention the competitor. Prompt 2: 0 of 2.
	// Average fraction = 0.5 -> 50.
	promptResults := [][]models.ModelResult{
		{
			{FullResponse: "Rivale is a top pick"},
			{FullResponse: "I would choose RIVALE here"},
		},
		{
			{FullResponse: "Acme leads the market"},
			{FullResponse: "No clear winner"},
		},
	}
	if got := scoring.CompetitorCategoryScore("Rivale", promptResults); got != 50 {
		t.Errorf("CompetitorCategoryScore() = %d, want 50", got)
	}
}

func TestScoringService_Rank(t *testing.T) {
	scoring := NewScoringService()

	competitors := []models.CompetitorScore{
		{Name: "Strong Co", OverallScore: 80},
		{Name: "Weak Co", OverallScore: 40},
	}

	ranking := scoring.Rank("Acme", 60, competitors)

	want := []models.RankedEntry{
		{Name: "Strong Co", Score: 80},
		{Name: "Acme", Score: 60, IsBrand: true},
		{Name: "Weak Co", Score: 40},
	}
	if !reflect.DeepEqual(ranking, want) {
		t.Errorf("Rank() = %v, want %v", ranking, want)
	}
}

func TestScoringService_Rank_TiesKeepInputOrder(t *testing.T) {
	scoring := NewScoringService()

	competitors := []models.CompetitorScore{
		{Name: "First Tie", OverallScore: 60},
		{Name: "Second Tie", OverallScore: 60},
	}

	ranking := scoring.Rank("Acme", 60, competitors)

	wantNames := []string{"Acme", "First Tie", "Second Tie"}
	for i, name := range wantNames {
		if ranking[i].Name != name {
			t.Errorf("ranking[%d] = %q, want %q", i, ranking[i].Name, name)
		}
	}
}

func TestScoringService_AnalyzeResponse(t *testing.T) {
	scoring := NewScoringService()

	tests := []struct {
		name          string
		response      string
		brand         string
		competitors   []string
		wantMentioned bool
		wantPosition  *int
		wantSentiment string
		wantComps     []string
	}{
		{
			name:          "not mentioned",
			response:      "Rivale and Other Co are both solid choices.",
			brand:         "Acme",
			competitors:   []string{"Rivale"},
			wantMentioned: false,
			wantSentiment: models.SentimentNeutral,
			wantComps:     []string{"Rivale"},
		},
		{
			name:          "first among tracked names",
			response:      "Acme is the best choice, ahead of Rivale.",
			brand:         "Acme",
			competitors:   []string{"Rivale"},
			wantMentioned: true,
			wantPosition:  intPtr(1),
			wantSentiment: models.SentimentPositive,
			wantComps:     []string{"Rivale"},
		},
		{
			name:          "second among tracked names",
			response:      "Rivale leads here. Acme is a reasonable alternative.",
			brand:         "Acme",
			competitors:   []string{"Rivale"},
			wantMentioned: true,
			wantPosition:  intPtr(2),
			wantSentiment: models.SentimentNeutral,
			wantComps:     []string{"Rivale"},
		},
		{
			name:          "negative sentiment",
			response:      "Acme has a problem with poor support.",
			brand:         "Acme",
			wantMentioned: true,
			wantPosition:  intPtr(1),
			wantSentiment: models.SentimentNegative,
			wantComps:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoring.AnalyzeResponse(tt.response, tt.brand, tt.competitors)

			if got.BrandMentioned != tt.wantMentioned {
				t.Errorf("BrandMentioned = %v, want %v", got.BrandMentioned, tt.wantMentioned)
			}
			if (got.Position == nil) != (tt.wantPosition == nil) {
				t.Fatalf("Position = %v, want %v", got.Position, tt.wantPosition)
			}
			if got.Position != nil && *got.Position != *tt.wantPosition {
				t.Errorf("Position = %d, want %d", *got.Position, *tt.wantPosition)
			}
			if got.Sentiment != tt.wantSentiment {
				t.Errorf("Sentiment = %q, want %q", got.Sentiment, tt.wantSentiment)
			}
			if !reflect.DeepEqual(got.CompetitorsMentioned, tt.wantComps) {
				t.Errorf("CompetitorsMentioned = %v, want %v", got.CompetitorsMentioned, tt.wantComps)
			}
		})
	}
}

func TestScoringService_CompetitorScores(t *testing.T) {
	scoring := NewScoringService()

	competitors := []models.CompetitorInfo{{Name: "Rivale"}}
	promptResults := map[string][][]models.ModelResult{
		"urgent_need": {
			{{FullResponse: "Rivale wins"}, {FullResponse: "Rivale again"}},
		},
		"trust_reliability": {
			{{FullResponse: "nobody stands out"}, {FullResponse: "still nothing"}},
		},
		"comparison": {
			{{FullResponse: "Rivale edges it"}, {FullResponse: "hard to say"}},
		},
	}

	scores := scoring.CompetitorScores(competitors, genericCategories, promptResults)

	if len(scores) != 1 {
		t.Fatalf("CompetitorScores() returned %d entries, want 1", len(scores))
	}
	got := scores[0]
	if got.CategoryScores["urgent_need"] != 100 {
		t.Errorf("urgent_need score = %d, want 100", got.CategoryScores["urgent_need"])
	}
	if got.CategoryScores["trust_reliability"] != 0 {
		t.Errorf("trust_reliability score = %d, want 0", got.CategoryScores["trust_reliability"])
	}
	if got.CategoryScores["comparison"] != 50 {
		t.Errorf("comparison score = %d, want 50", got.CategoryScores["comparison"])
	}
	// (100 + 0 + 50) / 3 = 50
	if got.OverallScore != 50 {
		t.Errorf("OverallScore = %d, want 50", got.OverallScore)
	}
	if got.Grade != "F" {
		t.Errorf("Grade = %q, want F", got.Grade)
	}
}
