package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/config"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/httputil"
)

const systemPrompt = "You are a financial analyst. Always respond with valid JSON only. No markdown, no explanation."

// LLMClient is the local-model inference call. Latency and malformed
// output are expected failure modes for any implementation.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// OllamaClient talks to a local Ollama server over its chat API.
type OllamaClient struct {
	http        *httputil.Client
	host        string
	model       string
	temperature float64
	maxTokens   int
}

func NewOllamaClient(http *httputil.Client, cfg config.OllamaConfig) *OllamaClient {
	return &OllamaClient{
		http:        http,
		host:        cfg.Host,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  struct {
		Temperature float64 `json:"temperature"`
		NumPredict  int     `json:"num_predict"`
	} `json:"options"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// Complete runs one chat turn and returns the raw model output. The
// caller owns the timeout via ctx.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	req.Options.Temperature = c.temperature
	req.Options.NumPredict = c.maxTokens

	resp, err := c.http.PostJSON(ctx, c.host+"/api/chat", req)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w: %v", contracts.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ollama response read: %w: %v", contracts.ErrUnavailable, err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("ollama response decode: %w: %v", contracts.ErrUnavailable, err)
	}
	return parsed.Message.Content, nil
}
