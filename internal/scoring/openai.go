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

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIScorer calls a chat-completions style backend with the same JSON
// contract as the Gemini strategy.
type OpenAIScorer struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
	logger   *zap.Logger
}

// NewOpenAIScorer builds an OpenAI-backed scorer.
func NewOpenAIScorer(cfg config.ScoringConfig, client *http.Client, logger *zap.Logger) *OpenAIScorer {
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIScorer{
		endpoint: cfg.OpenAIEndpoint,
		apiKey:   cfg.APIKey,
		model:    model,
		client:   client,
		logger:   logger,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *chatFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *OpenAIScorer) Score(ctx context.Context, in Input) models.TrustAssessment {
	start := time.Now()
	defer observe("openai", start)

	if s.apiKey == "" {
		return s.fallback(in, "missing_config", nil)
	}

	assessment, err := s.invoke(ctx, buildPrompt(in))
	if err != nil {
		return s.fallback(in, "backend_error", err)
	}
	return assessment
}

func (s *OpenAIScorer) invoke(ctx context.Context, prompt string) (models.TrustAssessment, error) {
	body, err := json.Marshal(chatRequest{
		Model:          s.model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		ResponseFormat: &chatFormat{Type: "json_object"},
	})
	if err != nil {
		return models.TrustAssessment{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return models.TrustAssessment{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return models.TrustAssessment{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.TrustAssessment{}, fmt.Errorf("openai status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return models.TrustAssessment{}, err
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return models.TrustAssessment{}, fmt.Errorf("decode openai reply: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return models.TrustAssessment{}, fmt.Errorf("empty openai reply")
	}

	return parseAssessment(decoded.Choices[0].Message.Content)
}

func (s *OpenAIScorer) fallback(in Input, reason string, err error) models.TrustAssessment {
	util.TrustScoringFallbackTotal.WithLabelValues(reason).Inc()
	if err != nil {
		s.logger.Warn("OpenAI scoring failed, using heuristic fallback",
			zap.String("reason", reason),
			zap.Error(err))
	}
	return Fallback(in)
}
