package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"trustflow-service/config"
	"trustflow-service/internal/models"
	"trustflow-service/internal/util"

	"go.uber.org/zap"
)

const defaultGeminiModel = "gemini-pro"

// GeminiScorer calls the Generative Language API. Every failure mode
// resolves through the heuristic fallback.
type GeminiScorer struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	logger   *zap.Logger
}

// NewGeminiScorer builds a Gemini-backed scorer.
func NewGeminiScorer(cfg config.ScoringConfig, client *http.Client, logger *zap.Logger) *GeminiScorer {
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiScorer{
		endpoint: cfg.GeminiEndpoint,
		apiKey:   cfg.APIKey,
		model:    model,
		client:   client,
		logger:   logger,
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (s *GeminiScorer) Score(ctx context.Context, in Input) models.TrustAssessment {
	start := time.Now()
	defer observe("gemini", start)

	if s.apiKey == "" {
		return s.fallback(in, "missing_config", nil)
	}

	assessment, err := s.invoke(ctx, buildPrompt(in))
	if err != nil {
		return s.fallback(in, "backend_error", err)
	}
	return assessment
}

func (s *GeminiScorer) invoke(ctx context.Context, prompt string) (models.TrustAssessment, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return models.TrustAssessment{}, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.endpoint, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return models.TrustAssessment{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return models.TrustAssessment{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.TrustAssessment{}, fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.TrustAssessment{}, err
	}

	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return models.TrustAssessment{}, fmt.Errorf("decode gemini reply: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return models.TrustAssessment{}, fmt.Errorf("empty gemini reply")
	}

	return parseAssessment(decoded.Candidates[0].Content.Parts[0].Text)
}

func (s *GeminiScorer) fallback(in Input, reason string, err error) models.TrustAssessment {
	util.TrustScoringFallbackTotal.WithLabelValues(reason).Inc()
	if err != nil {
		s.logger.Warn("Gemini scoring failed, using heuristic fallback",
			zap.String("reason", reason),
			zap.Error(err))
	}
	return Fallback(in)
}
