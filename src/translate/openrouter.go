package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouter API structures
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"` // Can be string or number
}

// OpenRouter translates with a chat-completion model.
type OpenRouter struct {
	URL    string
	APIKey string
	Model  string
	Client *http.Client
}

func NewOpenRouter(url, apiKey, model string) *OpenRouter {
	if url == "" {
		url = openRouterURL
	}
	return &OpenRouter{URL: url, APIKey: apiKey, Model: model, Client: newHTTPClient()}
}

func (o *OpenRouter) Name() string { return "openrouter" }

func (o *OpenRouter) Translate(ctx context.Context, text, targetLang string) (string, error) {
	if o.APIKey == "" {
		return "", fmt.Errorf("API key is required")
	}
	if o.Model == "" {
		return "", fmt.Errorf("model is required")
	}

	request := chatRequest{
		Model: o.Model,
		Messages: []chatMessage{
			{
				Role: "system",
				Content: "You translate text captured from a screen. Detect the source language " +
					"and translate into the language with code '" + targetLang + "'. Return ONLY the translation:\n" +
					"- No quotes\n" +
					"- No explanations\n" +
					"- Preserve line breaks",
			},
			{Role: "user", Content: text},
		},
		Temperature: 0.1,
		MaxTokens:   2000,
	}

	jsonData, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.URL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)
	req.Header.Set("X-Title", "Screen Translate")

	resp, err := o.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("API error: %s (type: %s, code: %v)", response.Error.Message, response.Error.Type, response.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in API response")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
