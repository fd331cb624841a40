// internal/explain/genai.go
package explain

import (
	"context"
	"fmt"
	"strings"
	"time"

	commonhttp "yojanamitra/internal/common/http"
	"yojanamitra/internal/common/logger"
)

const generatePath = "/api/ai/generate"

type GenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// GenAIService talks to the platform's text generation gateway.
type GenAIService struct {
	config GenAIConfig
	client *commonhttp.Client
	logger logger.Logger
}

func NewGenAIService(config GenAIConfig, log logger.Logger) *GenAIService {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 500
	}
	return &GenAIService{
		config: config,
		client: commonhttp.NewClient(0),
		logger: log.WithFields(map[string]interface{}{"explainer": "genai"}),
	}
}

type generateRequest struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system,omitempty"`
	Model       string  `json:"model,omitempty"`
	Format      string  `json:"format,omitempty"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Text string `json:"text"`
}

func (s *GenAIService) Assess(ctx context.Context, req *AssessRequest) (*Assessment, error) {
	text, err := s.generate(ctx, generateRequest{
		Prompt:      BuildAssessPrompt(req),
		System:      assessSystemPrompt,
		Format:      "json",
		MaxTokens:   s.config.MaxTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, err
	}
	return ParseAssessment(text)
}

func (s *GenAIService) Explain(ctx context.Context, req *ExplainRequest) (string, error) {
	maxTokens := s.config.MaxTokens
	if maxTokens > 300 {
		maxTokens = 300
	}
	return s.generate(ctx, generateRequest{
		Prompt:      BuildExplainPrompt(req),
		System:      explainSystemPrompt,
		MaxTokens:   maxTokens,
		Temperature: s.config.Temperature,
	})
}

func (s *GenAIService) generate(ctx context.Context, body generateRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	body.Model = s.config.Model

	headers := map[string]string{}
	if s.config.APIKey != "" {
		headers["Authorization"] = "Bearer " + s.config.APIKey
	}

	// Single attempt; callers fall back to deterministic text on error.
	var resp generateResponse
	if err := s.client.PostJSON(ctx, strings.TrimRight(s.config.BaseURL, "/")+generatePath, headers, body, &resp); err != nil {
		if ctx.Err() != nil {
			return "", ErrExplanationTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrExplanationFailed, err)
	}

	text := strings.TrimSpace(resp.Text)
	s.logger.Debug("generation completed", map[string]interface{}{"length": len(text)})
	return text, nil
}
