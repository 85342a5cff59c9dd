package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of the prompt sent to the model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	url    string
	model  string
	apiKey string
	http   *http.Client
}

func NewClient(url, model, apiKey string) *Client {
	return &Client{
		url:    url,
		model:  model,
		apiKey: apiKey,
		http: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// Complete performs exactly one non-streaming completion call and
// returns the model's raw reply text. Any transport or API failure is
// returned as-is; the dialog engine treats it as fatal for the turn.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	payload := map[string]interface{}{
		"model":    c.model,
		"messages": messages,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode > 299 {
		b, _ := io.ReadAll(res.Body)
		return "", fmt.Errorf("LLM returned status %d: %s", res.StatusCode, string(b))
	}

	var respStruct struct {
		Choices []struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&respStruct); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(respStruct.Choices) == 0 {
		return "", errors.New("no choices returned")
	}
	return respStruct.Choices[0].Message.Content, nil
}
