// internal/explain/anthropic.go
package explain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"yojanamitra/internal/common/logger"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

type AnthropicConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// AnthropicService explains results through the Anthropic Messages API.
type AnthropicService struct {
	config AnthropicConfig
	client anthropic.Client
	logger logger.Logger
}

func NewAnthropicService(config AnthropicConfig, log logger.Logger) *AnthropicService {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 500
	}
	if config.Model == "" {
		config.Model = defaultAnthropicModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &AnthropicService{
		config: config,
		client: anthropic.NewClient(opts...),
		logger: log.WithFields(map[string]interface{}{"explainer": "anthropic"}),
	}
}

func (s *AnthropicService) Assess(ctx context.Context, req *AssessRequest) (*Assessment, error) {
	text, err := s.complete(ctx, assessSystemPrompt, BuildAssessPrompt(req), s.config.MaxTokens, 0.3)
	if err != nil {
		return nil, err
	}
	return ParseAssessment(text)
}

func (s *AnthropicService) Explain(ctx context.Context, req *ExplainRequest) (string, error) {
	maxTokens := s.config.MaxTokens
	if maxTokens > 300 {
		maxTokens = 300
	}
	return s.complete(ctx, explainSystemPrompt, BuildExplainPrompt(req), maxTokens, s.config.Temperature)
}

func (s *AnthropicService) complete(ctx context.Context, system, prompt string, maxTokens int, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	message, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(s.config.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return "", ErrExplanationTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrExplanationFailed, err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			s.logger.Debug("message completed", map[string]interface{}{
				"tokensIn":  message.Usage.InputTokens,
				"tokensOut": message.Usage.OutputTokens,
			})
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("%w: no text content in response", ErrExplanationFailed)
}
