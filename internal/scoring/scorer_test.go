package scoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trustflow-service/config"
	"trustflow-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFallbackShortDescriptionOnly(t *testing.T) {
	got := Fallback(Input{
		Title:            "Laptop",
		Description:      "Cheap",
		Price:            1_000_00,
		SellerReputation: 70,
	})

	assert.Equal(t, 55, got.TrustScore)
	assert.Equal(t, []string{"short description"}, got.RedFlags)
	assert.Equal(t, models.RiskLevelMedium, got.RiskLevel)
	assert.True(t, got.RecommendedEscrow)
}

func TestFallbackSuspiciousTermsDistinct(t *testing.T) {
	got := Fallback(Input{
		Title:            "Gift card bundle",
		Description:      "Pay by wire transfer only, gift card accepted, gift card deals all week long",
		Price:            1_000_00,
		SellerReputation: 90,
	})

	// Two distinct terms, each counted once: 90 - 20*2 = 50.
	assert.Equal(t, 50, got.TrustScore)
	assert.Contains(t, got.RedFlags, "suspicious term: gift card")
	assert.Contains(t, got.RedFlags, "suspicious term: wire transfer")
	assert.Len(t, got.RedFlags, 2)
}

func TestFallbackUnrealisticallyLowPrice(t *testing.T) {
	got := Fallback(Input{
		Title:            "Genuine Rolex Submariner, brand new in box",
		Description:      "Authentic watch with full papers and original packaging.",
		Price:            30_00,
		SellerReputation: 85,
	})

	assert.Equal(t, 45, got.TrustScore)
	assert.Equal(t, []string{"unrealistically low price"}, got.RedFlags)
	assert.Equal(t, models.RiskLevelHigh, got.RiskLevel)
	assert.True(t, got.RecommendedEscrow)
}

func TestFallbackClampsToZero(t *testing.T) {
	got := Fallback(Input{
		Title:            "Rolex",
		Description:      "wire transfer",
		Price:            10_00,
		SellerReputation: 10,
	})

	// 10 - 15 - 20 - 40 clamps to 0.
	assert.Equal(t, 0, got.TrustScore)
	assert.Equal(t, models.RiskLevelCritical, got.RiskLevel)
	assert.True(t, got.RecommendedEscrow)
}

func TestFallbackCleanListingHighReputation(t *testing.T) {
	got := Fallback(Input{
		Title:            "Mountain bike, medium frame",
		Description:      "Well maintained bike, serviced this spring, new brake pads.",
		Price:            450_00,
		SellerReputation: 92,
	})

	assert.Equal(t, 92, got.TrustScore)
	assert.Empty(t, got.RedFlags)
	assert.Equal(t, models.RiskLevelLow, got.RiskLevel)
	assert.False(t, got.RecommendedEscrow)
}

func TestRiskLevelThresholds(t *testing.T) {
	tests := []struct {
		score  int
		level  string
		escrow bool
	}{
		{100, models.RiskLevelLow, false},
		{80, models.RiskLevelLow, false},
		{79, models.RiskLevelMedium, true},
		{50, models.RiskLevelMedium, true},
		{49, models.RiskLevelHigh, true},
		{30, models.RiskLevelHigh, true},
		{29, models.RiskLevelCritical, true},
		{0, models.RiskLevelCritical, true},
	}

	for _, tt := range tests {
		level, escrow := riskLevelFor(tt.score)
		assert.Equal(t, tt.level, level, "score %d", tt.score)
		assert.Equal(t, tt.escrow, escrow, "score %d", tt.score)
	}
}

func TestParseAssessmentStripsFences(t *testing.T) {
	text := "```json\n{\"trust_score\": 72, \"risk_level\": \"Medium\", \"red_flags\": [\"urgency\"], \"reasoning\": \"ok\", \"recommended_escrow\": true}\n```"

	got, err := parseAssessment(text)
	require.NoError(t, err)
	assert.Equal(t, 72, got.TrustScore)
	assert.Equal(t, models.RiskLevelMedium, got.RiskLevel)
}

func TestParseAssessmentRejectsBadPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":          "the listing looks fine to me",
		"score out of range": `{"trust_score": 140, "risk_level": "Low", "red_flags": [], "reasoning": "", "recommended_escrow": false}`,
		"unknown risk level": `{"trust_score": 50, "risk_level": "Severe", "red_flags": [], "reasoning": "", "recommended_escrow": true}`,
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseAssessment(text)
			assert.Error(t, err)
		})
	}
}

func geminiConfig(endpoint string) config.ScoringConfig {
	return config.ScoringConfig{
		Provider:       "gemini",
		APIKey:         "test-key",
		GeminiEndpoint: endpoint,
		Timeout:        2 * time.Second,
	}
}

func TestGeminiScorerHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"trust_score\": 88, \"risk_level\": \"Low\", \"red_flags\": [], \"reasoning\": \"clean listing\", \"recommended_escrow\": false}"}]}}]}`))
	}))
	defer srv.Close()

	s := NewGeminiScorer(geminiConfig(srv.URL), srv.Client(), zap.NewNop())
	got := s.Score(context.Background(), Input{Title: "Bike", Description: "A perfectly ordinary bike.", Price: 100_00, SellerReputation: 60})

	assert.Equal(t, 88, got.TrustScore)
	assert.Equal(t, models.RiskLevelLow, got.RiskLevel)
	assert.False(t, got.RecommendedEscrow)
}

func TestGeminiScorerMalformedReplyFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`this is not json`))
	}))
	defer srv.Close()

	s := NewGeminiScorer(geminiConfig(srv.URL), srv.Client(), zap.NewNop())
	got := s.Score(context.Background(), Input{Title: "Bike", Description: "A perfectly ordinary bike.", Price: 100_00, SellerReputation: 60})

	// Heuristic result for a clean listing with reputation 60.
	assert.Equal(t, 60, got.TrustScore)
	assert.Equal(t, models.RiskLevelMedium, got.RiskLevel)
}

func TestGeminiScorerUnreachableFallsBack(t *testing.T) {
	cfg := geminiConfig("http://127.0.0.1:1")
	s := NewGeminiScorer(cfg, &http.Client{Timeout: 500 * time.Millisecond}, zap.NewNop())

	got := s.Score(context.Background(), Input{Title: "Bike", Description: "A perfectly ordinary bike.", Price: 100_00, SellerReputation: 35})

	assert.Equal(t, 35, got.TrustScore)
	assert.Equal(t, models.RiskLevelHigh, got.RiskLevel)
	assert.True(t, got.RecommendedEscrow)
}

func TestGeminiScorerMissingKeyFallsBack(t *testing.T) {
	cfg := geminiConfig("http://example.invalid")
	cfg.APIKey = ""
	s := NewGeminiScorer(cfg, http.DefaultClient, zap.NewNop())

	got := s.Score(context.Background(), Input{Title: "Bike", Description: "A perfectly ordinary bike.", Price: 100_00, SellerReputation: 82})
	assert.Equal(t, 82, got.TrustScore)
}

func TestOpenAIScorerHappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"trust_score\": 25, \"risk_level\": \"Critical\", \"red_flags\": [\"urgency\"], \"reasoning\": \"scam pattern\", \"recommended_escrow\": true}"}}]}`))
	}))
	defer srv.Close()

	cfg := config.ScoringConfig{Provider: "openai", APIKey: "test-key", OpenAIEndpoint: srv.URL, Timeout: 2 * time.Second}
	s := NewOpenAIScorer(cfg, srv.Client(), zap.NewNop())

	got := s.Score(context.Background(), Input{Title: "Watch", Description: "Too good to be true.", Price: 20_00, SellerReputation: 50})
	assert.Equal(t, 25, got.TrustScore)
	assert.Equal(t, models.RiskLevelCritical, got.RiskLevel)
	assert.True(t, got.RecommendedEscrow)
}

func TestNewSelectsProvider(t *testing.T) {
	logger := zap.NewNop()

	assert.IsType(t, HeuristicScorer{}, New(config.ScoringConfig{Provider: "none"}, logger))
	assert.IsType(t, HeuristicScorer{}, New(config.ScoringConfig{Provider: "something-else"}, logger))
	assert.IsType(t, &GeminiScorer{}, New(config.ScoringConfig{Provider: "gemini"}, logger))
	assert.IsType(t, &OpenAIScorer{}, New(config.ScoringConfig{Provider: "openai"}, logger))
}
