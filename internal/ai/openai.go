package ai

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/example/lingobot/pkg/models"
)

const (
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultOpenAITimeout = 30 * time.Second
)

// openAIProvider generates text through the OpenAI chat completions API.
type openAIProvider struct {
	model   string
	baseURL string
	timeout time.Duration
}

// newOpenAIProvider creates the provider with default model and timeout.
func newOpenAIProvider() *openAIProvider {
	return &openAIProvider{
		model:   defaultOpenAIModel,
		timeout: defaultOpenAITimeout,
	}
}

func (p *openAIProvider) Type() models.ProviderType {
	return models.ProviderOpenAI
}

// client builds a per-request client: the key belongs to the credential,
// not to the provider.
func (p *openAIProvider) client(apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func (p *openAIProvider) buildRequest(req Request) openai.ChatCompletionRequest {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	out := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	return out
}

func (p *openAIProvider) Complete(ctx context.Context, apiKey string, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client(apiKey).CreateChatCompletion(ctx, p.buildRequest(req))
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &malformedResponseError{provider: "openai", reason: "no choices in response"}
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *openAIProvider) CompleteStream(ctx context.Context, apiKey string, req Request, onChunk func(string) error) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	chatReq := p.buildRequest(req)
	chatReq.Stream = true

	stream, err := p.client(apiKey).CreateChatCompletionStream(ctx, chatReq)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if delta := resp.Choices[0].Delta.Content; delta != "" {
			if err := onChunk(delta); err != nil {
				return err
			}
		}
	}
}
