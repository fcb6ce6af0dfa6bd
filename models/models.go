package models

// Location is the physical location of a local business
type Location struct {
	City    string `json:"city"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
}

// CompetitorInfo describes one detected or manually added competitor
type CompetitorInfo struct {
	Name         string `json:"name"`
	Reason       string `json:"reason,omitempty"`
	AutoDetected bool   `json:"auto_detected"`
}

// BrandProfile is the structured description of a business derived from its
// website, used to drive test-prompt generation
type BrandProfile struct {
	BrandName        string           `json:"brand_name"`
	WebsiteURL       string           `json:"website_url"`
	Industry         string           `json:"industry"`
	SubIndustry      string           `json:"sub_industry,omitempty"`
	BusinessType     string           `json:"business_type,omitempty"`
	IsLocalBusiness  bool             `json:"is_local_business"`
	Location         *Location        `json:"location,omitempty"`
	ProductsServices []string         `json:"products_services"`
	ValueProposition string           `json:"value_proposition,omitempty"`
	TargetAudience   string           `json:"target_audience,omitempty"`
	Competitors      []CompetitorInfo `json:"competitors"`
}

// CategoryDefinition is one dimension of visibility testing, chosen from an
// industry-specific taxonomy at compile time
type CategoryDefinition struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// PromptSet maps a category ID to the test questions for that category
type PromptSet map[string][]string

// PromptWithCategory is one backend-generated prompt with its category tag
type PromptWithCategory struct {
	Prompt   string `json:"prompt"`
	Category string `json:"category"`
}

// ModelResult is one AI model's response to one prompt.
// Position is meaningful only when BrandMentioned is true.
type ModelResult struct {
	ModelID              string   `json:"model_id"`
	ModelName            string   `json:"model_name"`
	Provider             string   `json:"provider"`
	BrandMentioned       bool     `json:"brand_mentioned"`
	Position             *int     `json:"position,omitempty"`
	Sentiment            string   `json:"sentiment"`
	CompetitorsMentioned []string `json:"competitors_mentioned"`
	FullResponse         string   `json:"full_response"`
}

// Sentiment values carried on ModelResult
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Category status values derived from the category score
const (
	StatusStrong   = "strong"
	StatusModerate = "moderate"
	StatusWeak     = "weak"
)

// CategoryResult aggregates all model results for all prompts in one category
type CategoryResult struct {
	Category      string        `json:"category"`
	CategoryLabel string        `json:"category_label"`
	Prompt        string        `json:"prompt"`
	Score         int           `json:"score"`
	Results       []ModelResult `json:"results"`
	Insight       string        `json:"insight"`
	Status        string        `json:"status"`
}

// CompetitorScore is one competitor's aggregated visibility
type CompetitorScore struct {
	Name           string         `json:"name"`
	OverallScore   int            `json:"overall_score"`
	CategoryScores map[string]int `json:"category_scores"`
	Grade          string         `json:"grade"`
}

// RankedEntry is one row of the brand-vs-competitors ranking
type RankedEntry struct {
	Name    string `json:"name"`
	Score   int    `json:"score"`
	IsBrand bool   `json:"is_brand"`
}

// --- Backend API shapes (external visibility service) ---

// BrandAnalysisRequest is the body for POST /api/visibility/analyze-brand
type BrandAnalysisRequest struct {
	BrandName        string   `json:"brand_name"`
	WebsiteURL       string   `json:"website_url"`
	KnownCompetitors []string `json:"known_competitors"`
	IndustryHint     string   `json:"industry_hint,omitempty"`
}

// BrandAnalysisResponse is the envelope returned by analyze-brand
type BrandAnalysisResponse struct {
	Success bool          `json:"success"`
	Profile *BrandProfile `json:"profile,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// GeneratePromptsResponse is returned by generate-prompts
type GeneratePromptsResponse struct {
	Prompts []PromptWithCategory `json:"prompts"`
}

// MultiModelTestRequest is the body for POST /api/visibility/test-multi-model
type MultiModelTestRequest struct {
	Prompt      string   `json:"prompt"`
	Brand       string   `json:"brand"`
	Competitors []string `json:"competitors"`
}

// MultiModelTestResponse is the envelope returned by test-multi-model
type MultiModelTestResponse struct {
	Results []ModelResult `json:"results"`
}

// SiteAnalysisRequest is the body for POST /api/visibility/analyze-site
type SiteAnalysisRequest struct {
	BrandName         string `json:"brand_name"`
	WebsiteURL        string `json:"website_url"`
	AdditionalContext string `json:"additional_context,omitempty"`
}

// SiteAnalysisResponse is the envelope returned by analyze-site
type SiteAnalysisResponse struct {
	Success             bool     `json:"success"`
	SuggestedQuestions  []string `json:"suggested_questions"`
	DetectedCategory    string   `json:"detected_category"`
	DetectedCompetitors []string `json:"detected_competitors"`
	Error               string   `json:"error,omitempty"`
}

// ScoreRequest is the body for POST /api/visibility/score (simple flow)
type ScoreRequest struct {
	Brand           string   `json:"brand"`
	Category        string   `json:"category"`
	WebsiteURL      string   `json:"website_url,omitempty"`
	CustomQuestions []string `json:"custom_questions,omitempty"`
}

// ModelBreakdown is one model's row in the simple-flow score response
type ModelBreakdown struct {
	Model     string `json:"model"`
	Mentioned bool   `json:"mentioned"`
	Position  *int   `json:"position,omitempty"`
	Sentiment string `json:"sentiment,omitempty"`
}

// ScoreResponse is the full result of the simple one-shot scoring flow
type ScoreResponse struct {
	Success         bool             `json:"success"`
	Score           int              `json:"score"`
	Grade           string           `json:"grade"`
	Verdict         string           `json:"verdict"`
	Breakdown       []ModelBreakdown `json:"breakdown"`
	Competitors     []string         `json:"competitors"`
	ExampleResponse string           `json:"example_response,omitempty"`
	ShareText       string           `json:"share_text,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// --- Wizard API shapes ---

// StartWizardRequest starts a new wizard session
type StartWizardRequest struct {
	BrandName  string `json:"brand_name"`
	WebsiteURL string `json:"website_url,omitempty"`
	Category   string `json:"category,omitempty"`
	Email      string `json:"email,omitempty"`
}

// EditProfileRequest applies user edits during the profile step
type EditProfileRequest struct {
	AddCompetitor    string `json:"add_competitor,omitempty"`
	RemoveCompetitor string `json:"remove_competitor,omitempty"`
	Industry         string `json:"industry,omitempty"`
	SubIndustry      string `json:"sub_industry,omitempty"`
}

// EditPromptRequest replaces one question's text during the prompts step
type EditPromptRequest struct {
	Category string `json:"category"`
	Index    int    `json:"index"`
	Prompt   string `json:"prompt"`
}

// ScanRequest starts the simple one-shot scoring flow
type ScanRequest struct {
	Brand      string   `json:"brand"`
	Category   string   `json:"category"`
	WebsiteURL string   `json:"website_url,omitempty"`
	Email      string   `json:"email,omitempty"`
	Questions  []string `json:"questions,omitempty"`
}

// WizardSnapshot is the immutable view of a wizard session exposed to clients
type WizardSnapshot struct {
	SessionID        string               `json:"session_id"`
	State            string               `json:"state"`
	Profile          *BrandProfile        `json:"profile,omitempty"`
	Categories       []CategoryDefinition `json:"categories,omitempty"`
	Prompts          PromptSet            `json:"prompts,omitempty"`
	DegradedReason   string               `json:"degraded_reason,omitempty"`
	CategoryResults  []CategoryResult     `json:"category_results,omitempty"`
	CompetitorScores []CompetitorScore    `json:"competitor_scores,omitempty"`
	Ranking          []RankedEntry        `json:"ranking,omitempty"`
	OverallScore     int                  `json:"overall_score"`
	Grade            string               `json:"grade,omitempty"`
	Error            string               `json:"error,omitempty"`
}

// ProgressMessage is broadcast over WebSocket while tests run
type ProgressMessage struct {
	Type           string          `json:"type"`
	SessionID      string          `json:"session_id"`
	State          string          `json:"state,omitempty"`
	CategoryResult *CategoryResult `json:"category_result,omitempty"`
	Completed      int             `json:"completed"`
	Total          int             `json:"total"`
}

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Status           string `json:"status"`
	Service          string `json:"service"`
	ConnectedClients int    `json:"connected_clients,omitempty"`
}
