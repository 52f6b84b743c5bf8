package openai

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

// DefaultBaseURL is the OpenAI API root. Overridable for tests and
// API-compatible providers.
const DefaultBaseURL = "https://api.openai.com/v1"

const defaultRequestTimeout = 60 * time.Second

// ErrEmptyCompletion is returned when the provider answers 200 but the
// completion carries no message content.
var ErrEmptyCompletion = errors.New("provider returned an empty completion")

// Client is a minimal chat-completions client. Requests are authenticated
// per call, since each user brings their own API key.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a chat-completions client. A nil httpClient falls back
// to a client with a sane timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat requests a machine-parseable response shape.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatCompletionRequest is the wire request for /chat/completions.
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// CreateChatCompletion posts the request and returns the content of the
// first choice. An HTTP-level error, an API error body or an empty choice
// list all fail the call; nothing is retried.
func (c *Client) CreateChatCompletion(ctx context.Context, apiKey string, req ChatCompletionRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal chat completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call chat completion API: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat completion response: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBytes, &completion); err != nil {
		return "", fmt.Errorf("unmarshal chat completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if completion.Error != nil && completion.Error.Message != "" {
			return "", fmt.Errorf("chat completion API error (%d): %s", resp.StatusCode, completion.Error.Message)
		}
		return "", fmt.Errorf("chat completion API returned status %d", resp.StatusCode)
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return completion.Choices[0].Message.Content, nil
}
