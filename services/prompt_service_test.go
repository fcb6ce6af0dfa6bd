package services

import (
	"reflect"
	"testing"

	"visibility-wizard/models"
)

func TestPromptService_SelectCategories(t *testing.T) {
	promptService := NewPromptService(3)

	tests := []struct {
		name         string
		businessType string
		industry     string
		expectFirst  string
	}{
		{
			name:         "italian restaurant",
			businessType: "Italian Restaurant",
			expectFirst:  "vibe_occasion",
		},
		{
			name:         "cafe via industry",
			industry:     "Specialty Cafe",
			expectFirst:  "vibe_occasion",
		},
		{
			name:         "boutique",
			businessType: "Boutique",
			expectFirst:  "local_availability",
		},
		{
			name:         "retail store",
			industry:     "retail",
			expectFirst:  "local_availability",
		},
		{
			name:         "law firm",
			businessType: "Law Firm",
			expectFirst:  "urgent_need",
		},
		{
			name:        "empty profile",
			expectFirst: "urgent_need",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.BrandProfile{
				BusinessType: tt.businessType,
				Industry:     tt.industry,
			}
			categories := promptService.SelectCategories(profile)

			if len(categories) != 3 {
				t.Fatalf("SelectCategories() returned %d categories, want 3", len(categories))
			}
			if categories[0].ID != tt.expectFirst {
				t.Errorf("SelectCategories() first = %q, want %q", categories[0].ID, tt.expectFirst)
			}
		})
	}
}

func TestPromptService_GeneratePrompts_LocationFallback(t *testing.T) {
	promptService := NewPromptService(3)

	profile := &models.BrandProfile{
		BrandName: "Acme",
		Industry:  "shoes",
		Location:  &models.Location{City: ""},
	}

	prompts := promptService.GeneratePrompts(profile)

	got := prompts["urgent_need"][0]
	want := "I need a shoes nearby immediately. Who do you recommend?"
	if got != want {
		t.Errorf("urgent need prompt = %q, want %q", got, want)
	}
}

func TestPromptService_GeneratePrompts_WithCity(t *testing.T) {
	promptService := NewPromptService(3)

	profile := &models.BrandProfile{
		BrandName:        "Acme",
		Industry:         "plumbing",
		ProductsServices: []string{"drain repair"},
		Location:         &models.Location{City: "Austin"},
	}

	prompts := promptService.GeneratePrompts(profile)

	got := prompts["urgent_need"][0]
	want := "I need a drain repair in Austin immediately. Who do you recommend?"
	if got != want {
		t.Errorf("urgent need prompt = %q, want %q", got, want)
	}
}

func TestPromptService_GeneratePrompts_CompetitorPhrase(t *testing.T) {
	promptService := NewPromptService(3)

	tests := []struct {
		name        string
		competitors []models.CompetitorInfo
		want        string
	}{
		{
			name: "no competitors",
			want: "competitors - which is better for consulting?",
		},
		{
			name: "three of four competitors joined",
			competitors: []models.CompetitorInfo{
				{Name: "Alpha"}, {Name: "Beta"}, {Name: "Gamma"}, {Name: "Delta"},
			},
			want: "Alpha vs Beta vs Gamma - which is better for consulting?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := &models.BrandProfile{
				BrandName:   "Acme",
				Industry:    "consulting",
				Competitors: tt.competitors,
			}
			prompts := promptService.GeneratePrompts(profile)
			if got := prompts["comparison"][0]; got != tt.want {
				t.Errorf("comparison prompt = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPromptService_GeneratePrompts_ThreePerCategory(t *testing.T) {
	promptService := NewPromptService(3)

	profile := &models.BrandProfile{
		BrandName:    "Trattoria Roma",
		BusinessType: "Italian Restaurant",
		Location:     &models.Location{City: "Boston"},
	}

	prompts := promptService.GeneratePrompts(profile)
	if len(prompts) != 3 {
		t.Fatalf("GeneratePrompts() returned %d categories, want 3", len(prompts))
	}
	for id, questions := range prompts {
		if len(questions) != 3 {
			t.Errorf("category %q has %d prompts, want 3", id, len(questions))
		}
	}
}

func TestPromptService_GeneratePrompts_Idempotent(t *testing.T) {
	promptService := NewPromptService(3)

	profile := &models.BrandProfile{
		BrandName:        "Acme",
		BusinessType:     "Boutique",
		ProductsServices: []string{"dresses"},
		Location:         &models.Location{City: "Paris"},
		Competitors:      []models.CompetitorInfo{{Name: "Rivale"}},
	}

	first := promptService.GeneratePrompts(profile)
	second := promptService.GeneratePrompts(profile)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("GeneratePrompts() is not idempotent: %v vs %v", first, second)
	}
}

func TestPromptService_RedistributePrompts(t *testing.T) {
	promptService := NewPromptService(3)

	templates := models.PromptSet{
		"urgent_need":       {"t1"},
		"trust_reliability": {"t2"},
		"comparison":        {"t3"},
	}

	tests := []struct {
		name      string
		generated []models.PromptWithCategory
		want      models.PromptSet
	}{
		{
			name: "fewer than 3 keeps templates",
			generated: []models.PromptWithCategory{
				{Prompt: "g1"}, {Prompt: "g2"},
			},
			want: templates,
		},
		{
			name: "round robin across categories",
			generated: []models.PromptWithCategory{
				{Prompt: "g1"}, {Prompt: "g2"}, {Prompt: "g3"}, {Prompt: "g4"}, {Prompt: "g5"},
			},
			want: models.PromptSet{
				"urgent_need":       {"g1", "g4"},
				"trust_reliability": {"g2", "g5"},
				"comparison":        {"g3"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := promptService.RedistributePrompts(templates, genericCategories, tt.generated)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RedistributePrompts() = %v, want %v", got, tt.want)
			}

			// Every category keeps at least one prompt
			for _, cat := range genericCategories {
				if len(got[cat.ID]) == 0 {
					t.Errorf("category %q has no prompts", cat.ID)
				}
			}
		})
	}
}
