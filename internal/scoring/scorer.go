// Package scoring stamps trust assessments onto listings. A remote
// content-analysis backend is attempted first when configured; any failure
// resolves through the deterministic heuristic so callers always receive a
// well-formed assessment and never an error.
package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"trustflow-service/config"
	"trustflow-service/internal/models"
	"trustflow-service/internal/util"

	"go.uber.org/zap"
)

// Input carries everything the scorer needs about a listing. Price is in
// cents; SellerReputation is on the 0-100 scale.
type Input struct {
	Title            string
	Description      string
	Price            int64
	SellerReputation float64
}

// Scorer produces a trust assessment for a listing.
type Scorer interface {
	Score(ctx context.Context, in Input) models.TrustAssessment
}

// New builds the scorer selected by configuration. Unknown providers get
// the heuristic-only scorer.
func New(cfg config.ScoringConfig, logger *zap.Logger) Scorer {
	client := &http.Client{Timeout: cfg.Timeout}

	switch cfg.Provider {
	case "gemini":
		return NewGeminiScorer(cfg, client, logger)
	case "openai":
		return NewOpenAIScorer(cfg, client, logger)
	default:
		return HeuristicScorer{}
	}
}

// riskLevelFor maps a clamped trust score to its risk level and escrow
// recommendation. Thresholds: 80, 50, 30.
func riskLevelFor(score int) (string, bool) {
	switch {
	case score >= 80:
		return models.RiskLevelLow, false
	case score >= 50:
		return models.RiskLevelMedium, true
	case score >= 30:
		return models.RiskLevelHigh, true
	default:
		return models.RiskLevelCritical, true
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// buildPrompt renders the analysis request sent to either remote backend.
func buildPrompt(in Input) string {
	return fmt.Sprintf(`Act as a fraud detection expert for an online marketplace. Analyze this listing:

Product: %s
Description: %s
Price: $%.2f
Seller Reputation: %.0f/100

Output ONLY a JSON object with this structure (no markdown):
{"trust_score": (integer 0-100), "risk_level": ("Low", "Medium", "High", "Critical"), "red_flags": [list of strings], "reasoning": "brief explanation", "recommended_escrow": (boolean)}`,
		in.Title, in.Description, float64(in.Price)/100, in.SellerReputation)
}

// parseAssessment decodes a backend reply into an assessment, tolerating
// markdown code fences around the JSON body.
func parseAssessment(text string) (models.TrustAssessment, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var a models.TrustAssessment
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return models.TrustAssessment{}, fmt.Errorf("decode assessment: %w", err)
	}
	if a.TrustScore < 0 || a.TrustScore > 100 {
		return models.TrustAssessment{}, fmt.Errorf("trust score %d out of range", a.TrustScore)
	}
	if !models.ValidRiskLevel(a.RiskLevel) {
		return models.TrustAssessment{}, fmt.Errorf("unknown risk level %q", a.RiskLevel)
	}
	if a.RedFlags == nil {
		a.RedFlags = []string{}
	}
	return a, nil
}

// observe records scoring metrics shared by all strategies.
func observe(provider string, start time.Time) {
	util.TrustScoringRequestsTotal.WithLabelValues(provider).Inc()
	util.TrustScoringLatency.Observe(time.Since(start).Seconds())
}
