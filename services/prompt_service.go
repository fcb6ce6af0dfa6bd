package services

import (
	"fmt"
	"strings"

	"visibility-wizard/models"
)

// Category taxonomies. Three fixed sets, selected by business type.
var restaurantCategories = []models.CategoryDefinition{
	{ID: "vibe_occasion", Label: "Vibe & Occasion", Description: "Whether AI suggests the venue for dates, dinners and special occasions"},
	{ID: "signature_dish", Label: "Signature Dish", Description: "Whether AI associates the venue with its standout food"},
	{ID: "reputation", Label: "Reputation", Description: "Whether AI surfaces the venue as a popular, recommended spot"},
}

var retailCategories = []models.CategoryDefinition{
	{ID: "local_availability", Label: "Local Availability", Description: "Whether AI points shoppers to the store for products they need now"},
	{ID: "quality", Label: "Quality", Description: "Whether AI names the store when asked for the best products"},
	{ID: "price_value", Label: "Price & Value", Description: "Whether AI mentions the store in price and value comparisons"},
}

var genericCategories = []models.CategoryDefinition{
	{ID: "urgent_need", Label: "Urgent Need", Description: "Whether AI recommends the business to buyers who need help immediately"},
	{ID: "trust_reliability", Label: "Trust & Reliability", Description: "Whether AI presents the business as a trusted, reliable choice"},
	{ID: "comparison", Label: "Head-to-Head", Description: "How the business fares when AI compares it against competitors"},
}

var restaurantKeywords = []string{"restaurant", "cafe", "food", "bar"}
var retailKeywords = []string{"retail", "shop", "store", "boutique"}

// PromptService derives test categories and natural-language prompts
// from a brand profile. All methods are pure functions of their input.
type PromptService struct {
	promptsPerCategory int
}

// NewPromptService creates a new prompt service
func NewPromptService(promptsPerCategory int) *PromptService {
	if promptsPerCategory <= 0 {
		promptsPerCategory = 3
	}
	return &PromptService{promptsPerCategory: promptsPerCategory}
}

// SelectCategories picks the taxonomy set matching the profile's business.
// Total function: every profile maps to exactly one set.
func (s *PromptService) SelectCategories(profile *models.BrandProfile) []models.CategoryDefinition {
	text := strings.ToLower(profile.BusinessType + " " + profile.Industry)

	for _, kw := range restaurantKeywords {
		if strings.Contains(text, kw) {
			return restaurantCategories
		}
	}
	for _, kw := range retailKeywords {
		if strings.Contains(text, kw) {
			return retailCategories
		}
	}
	return genericCategories
}

// GeneratePrompts produces the template prompt set for the profile's
// selected categories. Calling it twice with the same profile yields
// identical output.
func (s *PromptService) GeneratePrompts(profile *models.BrandProfile) models.PromptSet {
	categories := s.SelectCategories(profile)

	brand := profile.BrandName
	term := s.primaryTerm(profile)
	loc := s.locationPhrase(profile)
	comps := s.competitorPhrase(profile)

	prompts := models.PromptSet{}
	for _, cat := range categories {
		templates := s.templatesFor(cat.ID, brand, term, loc, comps)
		if len(templates) > s.promptsPerCategory {
			templates = templates[:s.promptsPerCategory]
		}
		prompts[cat.ID] = templates
	}
	return prompts
}

// RedistributePrompts deals backend-generated prompts round-robin across the
// selected category IDs, replacing the template set. When fewer than 3
// prompts were returned the template set is kept unchanged.
func (s *PromptService) RedistributePrompts(templateSet models.PromptSet, categories []models.CategoryDefinition, generated []models.PromptWithCategory) models.PromptSet {
	if len(generated) < 3 || len(categories) == 0 {
		return templateSet
	}

	redistributed := models.PromptSet{}
	for i, p := range generated {
		id := categories[i%len(categories)].ID
		redistributed[id] = append(redistributed[id], p.Prompt)
	}
	return redistributed
}

// primaryTerm is the main product/service term used in templates
func (s *PromptService) primaryTerm(profile *models.BrandProfile) string {
	if len(profile.ProductsServices) > 0 && profile.ProductsServices[0] != "" {
		return profile.ProductsServices[0]
	}
	return profile.Industry
}

// locationPhrase is "in {city}" when a city is known, "nearby" otherwise
func (s *PromptService) locationPhrase(profile *models.BrandProfile) string {
	if profile.Location != nil && strings.TrimSpace(profile.Location.City) != "" {
		return "in " + profile.Location.City
	}
	return "nearby"
}

// competitorPhrase joins up to 3 competitor names with " vs ",
// or the literal word "competitors" when none exist
func (s *PromptService) competitorPhrase(profile *models.BrandProfile) string {
	names := []string{}
	for _, c := range profile.Competitors {
		if c.Name == "" {
			continue
		}
		names = append(names, c.Name)
		if len(names) == 3 {
			break
		}
	}
	if len(names) == 0 {
		return "competitors"
	}
	return strings.Join(names, " vs ")
}

func (s *PromptService) templatesFor(categoryID, brand, term, loc, comps string) []string {
	switch categoryID {
	case "vibe_occasion":
		return []string{
			fmt.Sprintf("Where should I go for a nice dinner %s?", loc),
			fmt.Sprintf("Which restaurant %s has the best atmosphere for a date night?", loc),
			fmt.Sprintf("Recommend a place %s for a special occasion.", loc),
		}
	case "signature_dish":
		return []string{
			fmt.Sprintf("Which restaurant %s is known for its signature dishes?", loc),
			fmt.Sprintf("Where can I find the best %s %s?", term, loc),
			fmt.Sprintf("What's a must-try spot %s for %s?", loc, term),
		}
	case "reputation":
		return []string{
			fmt.Sprintf("What's the most popular restaurant %s right now?", loc),
			fmt.Sprintf("Which restaurants %s do locals actually recommend?", loc),
			fmt.Sprintf("Is %s a good restaurant compared to %s?", brand, comps),
		}
	case "local_availability":
		return []string{
			fmt.Sprintf("Where can I buy %s %s?", term, loc),
			fmt.Sprintf("Which stores %s carry %s right now?", loc, term),
			fmt.Sprintf("I need %s today. Which shop %s should I try?", term, loc),
		}
	case "quality":
		return []string{
			fmt.Sprintf("Which store %s sells the highest quality %s?", loc, term),
			fmt.Sprintf("What's the best place to buy %s %s?", term, loc),
			fmt.Sprintf("Is %s known for good quality %s?", brand, term),
		}
	case "price_value":
		return []string{
			fmt.Sprintf("Where can I get affordable %s %s?", term, loc),
			fmt.Sprintf("%s - who has the best prices for %s?", comps, term),
			fmt.Sprintf("Which shop %s offers the best value on %s?", loc, term),
		}
	case "urgent_need":
		return []string{
			fmt.Sprintf("I need a %s %s immediately. Who do you recommend?", term, loc),
			fmt.Sprintf("What's the fastest way to get help with %s %s?", term, loc),
			fmt.Sprintf("Who offers same-day %s services %s?", term, loc),
		}
	case "trust_reliability":
		return []string{
			fmt.Sprintf("What's the most trusted %s provider %s?", term, loc),
			fmt.Sprintf("Which %s company has the best reputation %s?", term, loc),
			fmt.Sprintf("Who would you rely on for %s %s?", term, loc),
		}
	case "comparison":
		return []string{
			fmt.Sprintf("%s - which is better for %s?", comps, term),
			fmt.Sprintf("How does %s compare to other %s providers %s?", brand, term, loc),
			fmt.Sprintf("Is %s better than its competitors for %s?", brand, term),
		}
	}
	return nil
}
