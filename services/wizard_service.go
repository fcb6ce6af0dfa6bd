package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"sync"
	"time"

	"github.com/apex/log"

	"visibility-wizard/config"
	"visibility-wizard/models"
)

// Wizard states
const (
	StateInput     = "input"
	StateAnalyzing = "analyzing"
	StateQuestions = "questions"
	StateProfile   = "profile"
	StatePrompts   = "prompts"
	StateTesting   = "testing"
	StateResults   = "results"
	StateError     = "error"
)

// Errors surfaced to the HTTP layer
var (
	ErrSessionNotFound = errors.New("wizard session not found")
	ErrScanConsumed    = errors.New("free scan already used")
)

// ValidationError blocks a transition before any backend call is made
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ProgressBroadcaster pushes incremental results to listeners
type ProgressBroadcaster interface {
	BroadcastProgress(models.ProgressMessage)
}

// wizardSession holds the state of one wizard run. All fields are guarded
// by mu and only ever exposed through snapshots.
type wizardSession struct {
	mu sync.Mutex

	id        string
	clientKey string
	state     string

	// generation guards against stale updates from an abandoned run:
	// Reset bumps it and cancels the run context, so in-flight results
	// from the old generation are dropped on arrival.
	generation int
	cancel     context.CancelFunc

	profile        *models.BrandProfile
	categories     []models.CategoryDefinition
	prompts        models.PromptSet
	degradedReason string

	competitorsEdited bool
	subIndustryAdded  bool

	categoryResults  []models.CategoryResult
	competitorScores []models.CompetitorScore
	ranking          []models.RankedEntry
	overallScore     int
	grade            string
	errMsg           string
}

// WizardService owns all wizard sessions and drives the
// input -> analyzing -> profile -> prompts -> testing -> results flow
type WizardService struct {
	cfg     *config.Config
	client  *VisibilityClient
	prompts *PromptService
	scoring *ScoringService
	gate    ScanGate
	hub     ProgressBroadcaster

	mu       sync.RWMutex
	sessions map[string]*wizardSession

	rnd *rand.Rand
}

// NewWizardService creates a new wizard service. hub may be nil.
func NewWizardService(cfg *config.Config, client *VisibilityClient, prompts *PromptService, scoring *ScoringService, gate ScanGate, hub ProgressBroadcaster) *WizardService {
	return &WizardService{
		cfg:      cfg,
		client:   client,
		prompts:  prompts,
		scoring:  scoring,
		gate:     gate,
		hub:      hub,
		sessions: make(map[string]*wizardSession),
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const sessionIDChars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
const sessionIDLen = 16

func (s *WizardService) newSessionID() string {
	b := make([]byte, sessionIDLen)
	s.mu.Lock()
	for i := range b {
		b[i] = sessionIDChars[s.rnd.Intn(len(sessionIDChars))]
	}
	s.mu.Unlock()
	return string(b)
}

// Start validates the input, checks the free-scan gate and runs the
// best-effort brand analysis. On enrichment failure the wizard still
// reaches the profile step with template-derived defaults.
func (s *WizardService) Start(ctx context.Context, req models.StartWizardRequest, clientKey string) (*models.WizardSnapshot, error) {
	if err := s.validateStart(req); err != nil {
		return nil, err
	}
	if s.scanConsumed(clientKey) {
		return nil, ErrScanConsumed
	}

	sess := &wizardSession{
		id:        s.newSessionID(),
		clientKey: clientKey,
		state:     StateAnalyzing,
	}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	profile := s.fallbackProfile(req)
	degraded := ""
	if req.WebsiteURL != "" {
		enrichment := s.client.AnalyzeBrand(ctx, models.BrandAnalysisRequest{
			BrandName:  req.BrandName,
			WebsiteURL: req.WebsiteURL,
		})
		if enrichment.Degraded {
			degraded = enrichment.Reason
		} else {
			profile = enrichment.Profile
			if profile.BrandName == "" {
				profile.BrandName = req.BrandName
			}
			if profile.WebsiteURL == "" {
				profile.WebsiteURL = req.WebsiteURL
			}
		}
	}

	categories := s.prompts.SelectCategories(profile)
	promptSet := s.prompts.GeneratePrompts(profile)

	sess.mu.Lock()
	sess.profile = profile
	sess.categories = categories
	sess.prompts = promptSet
	sess.degradedReason = degraded
	sess.state = StateProfile
	sess.mu.Unlock()

	log.WithFields(log.Fields{
		"session": sess.id,
		"brand":   profile.BrandName,
	}).Info("wizard.start")

	return s.snapshot(sess), nil
}

func (s *WizardService) validateStart(req models.StartWizardRequest) error {
	if req.BrandName == "" {
		return &ValidationError{Message: "brand name is required"}
	}
	if req.WebsiteURL == "" && req.Category == "" {
		return &ValidationError{Message: "website URL or category is required"}
	}
	if s.cfg.RequireEmail && !emailRe.MatchString(req.Email) {
		return &ValidationError{Message: "a valid email is required"}
	}
	return nil
}

// scanConsumed checks the gate. Gate store failures log and allow: the
// gate is best effort, not a security boundary.
func (s *WizardService) scanConsumed(clientKey string) bool {
	consumed, err := s.gate.Consumed(clientKey)
	if err != nil {
		log.Warnf("Scan gate check failed for %s: %v", clientKey, err)
		return false
	}
	return consumed
}

func (s *WizardService) fallbackProfile(req models.StartWizardRequest) *models.BrandProfile {
	return &models.BrandProfile{
		BrandName:  req.BrandName,
		WebsiteURL: req.WebsiteURL,
		Industry:   req.Category,
	}
}

// Get returns a snapshot of an existing session
func (s *WizardService) Get(sessionID string) (*models.WizardSnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.snapshot(sess), nil
}

// EditProfile applies user edits during the profile step
func (s *WizardService) EditProfile(sessionID string, req models.EditProfileRequest) (*models.WizardSnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.state != StateProfile {
		sess.mu.Unlock()
		return nil, &ValidationError{Message: fmt.Sprintf("cannot edit profile in state %q", sess.state)}
	}

	if req.AddCompetitor != "" {
		sess.profile.Competitors = append(sess.profile.Competitors, models.CompetitorInfo{
			Name:         req.AddCompetitor,
			Reason:       "added manually",
			AutoDetected: false,
		})
		sess.competitorsEdited = true
	}
	if req.RemoveCompetitor != "" {
		kept := sess.profile.Competitors[:0]
		for _, c := range sess.profile.Competitors {
			if c.Name != req.RemoveCompetitor {
				kept = append(kept, c)
			}
		}
		sess.profile.Competitors = kept
		sess.competitorsEdited = true
	}
	if req.Industry != "" {
		sess.profile.Industry = req.Industry
	}
	if req.SubIndustry != "" {
		sess.profile.SubIndustry = req.SubIndustry
		sess.subIndustryAdded = true
	}
	sess.mu.Unlock()

	return s.snapshot(sess), nil
}

// ConfirmProfile moves profile -> prompts. When competitors were edited
// manually or a sub-industry was added, prompts are regenerated with the
// richer context first; that call's failure falls back to the template set.
func (s *WizardService) ConfirmProfile(ctx context.Context, sessionID string) (*models.WizardSnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.state != StateProfile {
		sess.mu.Unlock()
		return nil, &ValidationError{Message: fmt.Sprintf("cannot confirm profile in state %q", sess.state)}
	}
	regenerate := sess.competitorsEdited || sess.subIndustryAdded
	profile := sess.profile
	categories := sess.categories
	templateSet := sess.prompts
	sess.mu.Unlock()

	promptSet := templateSet
	if regenerate {
		industry := profile.Industry
		if profile.SubIndustry != "" {
			industry = industry + " / " + profile.SubIndustry
		}
		names := make([]string, 0, len(profile.Competitors))
		for _, c := range profile.Competitors {
			names = append(names, c.Name)
		}

		generated, err := s.client.GeneratePrompts(ctx, profile.BrandName, industry, names)
		if err != nil {
			log.Warnf("Prompt regeneration failed for session %s, keeping templates: %v", sessionID, err)
		} else {
			promptSet = s.prompts.RedistributePrompts(templateSet, categories, generated)
		}
	}

	sess.mu.Lock()
	sess.prompts = promptSet
	sess.state = StatePrompts
	sess.mu.Unlock()

	return s.snapshot(sess), nil
}

// EditPrompt replaces one question's text during the prompts step
func (s *WizardService) EditPrompt(sessionID string, req models.EditPromptRequest) (*models.WizardSnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.state != StatePrompts {
		sess.mu.Unlock()
		return nil, &ValidationError{Message: fmt.Sprintf("cannot edit prompts in state %q", sess.state)}
	}
	questions, ok := sess.prompts[req.Category]
	if !ok || req.Index < 0 || req.Index >= len(questions) {
		sess.mu.Unlock()
		return nil, &ValidationError{Message: "unknown prompt"}
	}
	questions[req.Index] = req.Prompt
	sess.mu.Unlock()

	return s.snapshot(sess), nil
}

// RunTests moves prompts -> testing and runs the category tests in the
// background. Categories run sequentially so results render incrementally;
// the prompts within a category fan out concurrently.
func (s *WizardService) RunTests(sessionID string) (*models.WizardSnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.state != StatePrompts {
		sess.mu.Unlock()
		return nil, &ValidationError{Message: fmt.Sprintf("cannot run tests in state %q", sess.state)}
	}
	sess.state = StateTesting
	sess.generation++
	gen := sess.generation
	ctx, cancel := context.WithCancel(context.Background())
	sess.cancel = cancel
	sess.mu.Unlock()

	go s.runTests(ctx, sess, gen)

	return s.snapshot(sess), nil
}

func (s *WizardService) runTests(ctx context.Context, sess *wizardSession, gen int) {
	sess.mu.Lock()
	brand := sess.profile.BrandName
	categories := sess.categories
	promptSet := sess.prompts

	// Cap fan-out: at most 5 competitors are tracked per test run
	competitors := sess.profile.Competitors
	if len(competitors) > s.cfg.MaxCompetitors {
		competitors = competitors[:s.cfg.MaxCompetitors]
	}
	competitorNames := make([]string, 0, len(competitors))
	for _, c := range competitors {
		competitorNames = append(competitorNames, c.Name)
	}
	sess.mu.Unlock()

	promptResults := make(map[string][][]models.ModelResult)

	for i, cat := range categories {
		if ctx.Err() != nil {
			return
		}

		questions := promptSet[cat.ID]
		perPrompt := make([][]models.ModelResult, len(questions))
		errs := make([]error, len(questions))

		var wg sync.WaitGroup
		for j, question := range questions {
			wg.Add(1)
			go func(j int, question string) {
				defer wg.Done()
				results, err := s.client.TestMultiModel(ctx, question, brand, competitorNames)
				perPrompt[j], errs[j] = results, err
			}(j, question)
		}
		wg.Wait()

		flat := []models.ModelResult{}
		succeeded := [][]models.ModelResult{}
		for j := range perPrompt {
			if errs[j] != nil {
				log.Warnf("Prompt test failed in category %s: %v", cat.ID, errs[j])
				continue
			}
			flat = append(flat, perPrompt[j]...)
			succeeded = append(succeeded, perPrompt[j])
		}
		if len(succeeded) == 0 {
			// Category omitted from results, wizard continues
			log.Errorf("All prompt tests failed for category %s, omitting it", cat.ID)
			continue
		}
		promptResults[cat.ID] = succeeded

		score := s.scoring.CategoryScore(flat)
		result := models.CategoryResult{
			Category:      cat.ID,
			CategoryLabel: cat.Label,
			Prompt:        questions[0],
			Score:         score,
			Results:       flat,
			Insight:       s.scoring.CategoryInsight(cat.Label, score, flat),
			Status:        s.scoring.StatusForScore(score),
		}

		sess.mu.Lock()
		if sess.generation != gen {
			sess.mu.Unlock()
			return
		}
		sess.categoryResults = append(sess.categoryResults, result)
		sess.mu.Unlock()

		s.broadcast(models.ProgressMessage{
			Type:           "category_result",
			SessionID:      sess.id,
			State:          StateTesting,
			CategoryResult: &result,
			Completed:      i + 1,
			Total:          len(categories),
		})
	}

	sess.mu.Lock()
	if sess.generation != gen {
		sess.mu.Unlock()
		return
	}
	overall := s.scoring.OverallScore(sess.categoryResults)
	sess.competitorScores = s.scoring.CompetitorScores(competitors, categories, promptResults)
	sess.overallScore = overall
	sess.grade = s.scoring.LetterGrade(overall)
	sess.ranking = s.scoring.Rank(brand, overall, sess.competitorScores)
	clientKey := sess.clientKey
	sess.mu.Unlock()

	// The gate is marked before the results state is published, so a client
	// that sees results can never slip a second free scan past the check
	if err := s.gate.MarkConsumed(clientKey); err != nil {
		log.Warnf("Failed to mark free scan consumed for %s: %v", clientKey, err)
	}

	sess.mu.Lock()
	if sess.generation != gen {
		sess.mu.Unlock()
		return
	}
	sess.state = StateResults
	sess.mu.Unlock()

	log.WithFields(log.Fields{
		"session": sess.id,
		"brand":   brand,
		"score":   overall,
	}).Info("wizard.results")

	s.broadcast(models.ProgressMessage{
		Type:      "results",
		SessionID: sess.id,
		State:     StateResults,
		Completed: len(categories),
		Total:     len(categories),
	})
}

// Reset clears the session back to the input state. An in-flight test run
// is cancelled and its late results are discarded.
func (s *WizardService) Reset(sessionID string) (*models.WizardSnapshot, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.cancel != nil {
		sess.cancel()
		sess.cancel = nil
	}
	sess.generation++
	sess.state = StateInput
	sess.profile = nil
	sess.categories = nil
	sess.prompts = nil
	sess.degradedReason = ""
	sess.competitorsEdited = false
	sess.subIndustryAdded = false
	sess.categoryResults = nil
	sess.competitorScores = nil
	sess.ranking = nil
	sess.overallScore = 0
	sess.grade = ""
	sess.errMsg = ""
	sess.mu.Unlock()

	return s.snapshot(sess), nil
}

// QuickScore runs the simple one-shot scoring flow. When a website URL is
// supplied the site is analyzed first for richer questions (best effort);
// the score call itself failing is a hard failure with no fallback.
func (s *WizardService) QuickScore(ctx context.Context, req models.ScanRequest, clientKey string) (*models.ScoreResponse, error) {
	if req.Brand == "" {
		return nil, &ValidationError{Message: "brand is required"}
	}
	if req.Category == "" && req.WebsiteURL == "" {
		return nil, &ValidationError{Message: "category or website URL is required"}
	}
	if s.cfg.RequireEmail && !emailRe.MatchString(req.Email) {
		return nil, &ValidationError{Message: "a valid email is required"}
	}
	if s.scanConsumed(clientKey) {
		return nil, ErrScanConsumed
	}

	category := req.Category
	questions := req.Questions
	if req.WebsiteURL != "" && len(questions) == 0 {
		site, err := s.client.AnalyzeSite(ctx, models.SiteAnalysisRequest{
			BrandName:  req.Brand,
			WebsiteURL: req.WebsiteURL,
		})
		if err != nil || !site.Success {
			log.Warnf("Site analysis degraded for %q, proceeding without custom questions: %v", req.Brand, err)
		} else {
			questions = site.SuggestedQuestions
			if category == "" {
				category = site.DetectedCategory
			}
		}
	}

	resp, err := s.client.Score(ctx, models.ScoreRequest{
		Brand:           req.Brand,
		Category:        category,
		WebsiteURL:      req.WebsiteURL,
		CustomQuestions: questions,
	})
	if err != nil {
		return nil, fmt.Errorf("scoring failed: %w", err)
	}

	if err := s.gate.MarkConsumed(clientKey); err != nil {
		log.Warnf("Failed to mark free scan consumed for %s: %v", clientKey, err)
	}
	return resp, nil
}

func (s *WizardService) session(sessionID string) (*wizardSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *WizardService) broadcast(msg models.ProgressMessage) {
	if s.hub != nil {
		s.hub.BroadcastProgress(msg)
	}
}

// snapshot copies the session into an immutable view
func (s *WizardService) snapshot(sess *wizardSession) *models.WizardSnapshot {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	snap := &models.WizardSnapshot{
		SessionID:      sess.id,
		State:          sess.state,
		DegradedReason: sess.degradedReason,
		OverallScore:   sess.overallScore,
		Grade:          sess.grade,
		Error:          sess.errMsg,
	}
	if sess.profile != nil {
		profile := *sess.profile
		profile.Competitors = append([]models.CompetitorInfo(nil), sess.profile.Competitors...)
		snap.Profile = &profile
	}
	snap.Categories = append([]models.CategoryDefinition(nil), sess.categories...)
	if sess.prompts != nil {
		snap.Prompts = models.PromptSet{}
		for id, questions := range sess.prompts {
			snap.Prompts[id] = append([]string(nil), questions...)
		}
	}
	snap.CategoryResults = append([]models.CategoryResult(nil), sess.categoryResults...)
	snap.CompetitorScores = append([]models.CompetitorScore(nil), sess.competitorScores...)
	snap.Ranking = append([]models.RankedEntry(nil), sess.ranking...)
	return snap
}
