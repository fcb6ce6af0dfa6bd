package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/apex/log"

	"visibility-wizard/config"
	"visibility-wizard/models"
)

// VisibilityClient handles communication with the external visibility
// scoring backend
type VisibilityClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewVisibilityClient creates a new visibility backend client
func NewVisibilityClient(cfg *config.Config) *VisibilityClient {
	return &VisibilityClient{
		baseURL: cfg.VisibilityAPIURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
	}
}

// Enrichment is the outcome of a best-effort enrichment call. A failed call
// degrades to the template fallback instead of surfacing an error, but the
// reason stays observable so the caller can show a non-blocking notice.
type Enrichment struct {
	Profile  *models.BrandProfile
	Degraded bool
	Reason   string
}

// AnalyzeBrand asks the backend to analyze a brand's website into a profile.
// Never returns an error: any network, status or parse failure comes back
// as a degraded enrichment.
func (c *VisibilityClient) AnalyzeBrand(ctx context.Context, req models.BrandAnalysisRequest) Enrichment {
	var resp models.BrandAnalysisResponse
	if err := c.post(ctx, "/api/visibility/analyze-brand", req, &resp); err != nil {
		log.Warnf("Brand analysis degraded for %q: %v", req.BrandName, err)
		return Enrichment{Degraded: true, Reason: err.Error()}
	}
	if !resp.Success || resp.Profile == nil {
		reason := resp.Error
		if reason == "" {
			reason = "analysis returned no profile"
		}
		log.Warnf("Brand analysis degraded for %q: %s", req.BrandName, reason)
		return Enrichment{Degraded: true, Reason: reason}
	}
	return Enrichment{Profile: resp.Profile}
}

// GeneratePrompts asks the backend for AI-generated prompts with richer
// brand context
func (c *VisibilityClient) GeneratePrompts(ctx context.Context, brand, industry string, competitors []string) ([]models.PromptWithCategory, error) {
	path := fmt.Sprintf("/api/visibility/generate-prompts?brand=%s&industry=%s",
		url.QueryEscape(brand), url.QueryEscape(industry))

	var resp models.GeneratePromptsResponse
	if err := c.post(ctx, path, competitors, &resp); err != nil {
		return nil, err
	}
	return resp.Prompts, nil
}

// TestMultiModel runs one prompt across the backend's AI model fleet
func (c *VisibilityClient) TestMultiModel(ctx context.Context, prompt, brand string, competitors []string) ([]models.ModelResult, error) {
	req := models.MultiModelTestRequest{
		Prompt:      prompt,
		Brand:       brand,
		Competitors: competitors,
	}

	var resp models.MultiModelTestResponse
	if err := c.post(ctx, "/api/visibility/test-multi-model", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// AnalyzeSite asks the backend for suggested questions and detected
// category/competitors for a website
func (c *VisibilityClient) AnalyzeSite(ctx context.Context, req models.SiteAnalysisRequest) (*models.SiteAnalysisResponse, error) {
	var resp models.SiteAnalysisResponse
	if err := c.post(ctx, "/api/visibility/analyze-site", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Score runs the simple one-shot scoring flow
func (c *VisibilityClient) Score(ctx context.Context, req models.ScoreRequest) (*models.ScoreResponse, error) {
	var resp models.ScoreResponse
	if err := c.post(ctx, "/api/visibility/score", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success && resp.Error != "" {
		return nil, fmt.Errorf("score failed: %s", resp.Error)
	}
	return &resp, nil
}

// post sends a JSON POST to the backend and decodes the JSON response
func (c *VisibilityClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("visibility API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
