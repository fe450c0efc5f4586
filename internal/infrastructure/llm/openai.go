// Package llm talks to an OpenAI-compatible chat completions endpoint
// (OpenAI, Groq, Ollama) to describe uploaded content.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"

	summaryPrompt = `Analyze this document text. Extract the Title, Main Headings, and a 2-sentence summary. ` +
		`Return ONLY the summary string in this format: "Title: ... | Headings: ... | Summary: ...":` + "\n\n"
	imagePrompt = "Describe this image in 1 detailed sentence for search purposes. "
)

type Config struct {
	BaseURL     string
	APIKey      string
	TextModel   string
	VisionModel string
	Timeout     time.Duration
}

type Client struct {
	baseURL     string
	apiKey      string
	textModel   string
	visionModel string
	httpClient  *http.Client
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.TextModel) == "" {
		return nil, errors.New("text model is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = cfg.TextModel
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		textModel:   cfg.TextModel,
		visionModel: cfg.VisionModel,
		httpClient:  &http.Client{Timeout: timeout},
	}, nil
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// SummarizeText returns "Title: ... | Headings: ... | Summary: ..." for text.
func (c *Client) SummarizeText(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, c.textModel, chatMessage{Role: "user", Content: summaryPrompt + text})
}

// DescribeImage returns one descriptive sentence for the image at url.
func (c *Client) DescribeImage(ctx context.Context, url string) (string, error) {
	return c.complete(ctx, c.visionModel, chatMessage{
		Role: "user",
		Content: []contentPart{
			{Type: "text", Text: imagePrompt},
			{Type: "image_url", ImageURL: &imageURL{URL: url}},
		},
	})
}

func (c *Client) complete(ctx context.Context, model string, msg chatMessage) (string, error) {
	payload, err := json.Marshal(chatRequest{Model: model, Messages: []chatMessage{msg}})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("llm request timeout: %w", err)
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err = json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("llm response parse (%s): %w", resp.Status, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("llm error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("llm request failed: %s", resp.Status)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("llm response missing choices")
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("llm response empty content")
	}

	return content, nil
}
