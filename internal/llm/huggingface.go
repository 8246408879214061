package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// HuggingFaceProvider talks to the Hugging Face inference router through
// its OpenAI-compatible chat completions endpoint.
type HuggingFaceProvider struct {
	client openai.Client
	model  string
}

// NewHuggingFaceProvider creates a provider for hosted instruct models.
func NewHuggingFaceProvider(cfg HuggingFaceConfig, opts ...option.RequestOption) (*HuggingFaceProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("huggingface API token is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultHuggingFaceBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultHuggingFaceModel
	}

	all := append([]option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		// Retries are handled by WithRetry.
		option.WithMaxRetries(0),
	}, opts...)

	return &HuggingFaceProvider{
		client: openai.NewClient(all...),
		model:  model,
	}, nil
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: buildHuggingFaceMessages(req),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}
	if req.Temperature > 0 {
		params.Temperature = openai.Float(req.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapHuggingFaceError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("no choices in inference response")}
	}

	choice := resp.Choices[0]
	if choice.Message.Content == "" {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty completion from inference router")}
	}

	model := resp.Model
	if model == "" {
		model = p.model
	}

	return &Response{
		Text: choice.Message.Content,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:  int(resp.Usage.PromptTokens + resp.Usage.CompletionTokens),
		},
		Model:      model,
		StopReason: mapHuggingFaceStopReason(choice.FinishReason),
	}, nil
}

func (p *HuggingFaceProvider) ModelID() string {
	return p.model
}

func buildHuggingFaceMessages(req Request) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		out = append(out, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		if m.Role == RoleAssistant {
			out = append(out, openai.AssistantMessage(m.Content))
			continue
		}
		out = append(out, openai.UserMessage(m.Content))
	}
	return out
}

func mapHuggingFaceStopReason(reason string) string {
	if reason == "length" {
		return "max_tokens"
	}
	return "end"
}

func mapHuggingFaceError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.StatusCode >= 500:
			return &ErrProviderUnavailable{Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
