package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/lingobot/pkg/models"
)

const (
	defaultGeminiModel   = "gemini-2.0-flash"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiTimeout = 30 * time.Second
)

// geminiProvider generates text through the Google Gemini REST API.
type geminiProvider struct {
	model   string
	baseURL string
	client  *http.Client
}

// newGeminiProvider creates the provider with default model and timeout.
func newGeminiProvider() *geminiProvider {
	return &geminiProvider{
		model:   defaultGeminiModel,
		baseURL: defaultGeminiBaseURL,
		client:  &http.Client{Timeout: defaultGeminiTimeout},
	}
}

func (p *geminiProvider) Type() models.ProviderType {
	return models.ProviderGemini
}

// geminiPart is a single text fragment in a Gemini message
type geminiPart struct {
	Text string `json:"text"`
}

// geminiContent is one message in a Gemini conversation
type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

// geminiRequest is the generateContent request body
type geminiRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiGenConfig struct {
	Temperature      float32 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

// geminiResponse is the generateContent response body
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *geminiProvider) buildBody(req Request) ([]byte, error) {
	body := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: req.Prompt}}},
		},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	cfg := &geminiGenConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxTokens,
	}
	if req.JSONMode {
		cfg.ResponseMimeType = "application/json"
	}
	body.GenerationConfig = cfg
	return json.Marshal(body)
}

func (p *geminiProvider) newRequest(ctx context.Context, apiKey, endpoint string, body []byte) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", apiKey)
	return httpReq, nil
}

func (p *geminiProvider) Complete(ctx context.Context, apiKey string, req Request) (string, error) {
	body, err := p.buildBody(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %v", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, p.model)
	httpReq, err := p.newRequest(ctx, apiKey, endpoint, body)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &statusError{provider: "gemini", code: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}

	var response geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", &malformedResponseError{provider: "gemini", reason: fmt.Sprintf("failed to decode response: %v", err)}
	}
	if response.Error != nil {
		return "", &statusError{provider: "gemini", code: response.Error.Code, body: response.Error.Message}
	}

	text := candidateText(&response)
	if text == "" {
		return "", &malformedResponseError{provider: "gemini", reason: "no candidates in response"}
	}
	return text, nil
}

func (p *geminiProvider) CompleteStream(ctx context.Context, apiKey string, req Request, onChunk func(string) error) error {
	body, err := p.buildBody(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %v", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:streamGenerateContent?alt=sse", p.baseURL, p.model)
	httpReq, err := p.newRequest(ctx, apiKey, endpoint, body)
	if err != nil {
		return err
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{provider: "gemini", code: resp.StatusCode, body: strings.TrimSpace(string(data))}
	}

	// The SSE body is a sequence of "data: {json}" lines
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return &malformedResponseError{provider: "gemini", reason: fmt.Sprintf("failed to decode stream chunk: %v", err)}
		}
		if text := candidateText(&chunk); text != "" {
			if err := onChunk(text); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %v", err)
	}
	return nil
}

// candidateText joins the text parts of the first candidate.
func candidateText(resp *geminiResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String()
}
