// Package siliconflow implements image recognition over the
// SiliconFlow vision chat-completions API.
package siliconflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"fishdex/application/ports"
	apperrors "fishdex/pkg/errors"
)

const systemPrompt = `You are a fish identification assistant. Given a photo, identify the fish species.
Respond with a single JSON object and nothing else, using exactly these keys:
{"status":"ok","name_cn":"...","name_lat":"...","family":"...","description":"...","confidence":0.0}
If the image does not clearly show an identifiable fish, respond with:
{"status":"unrecognized","reason":"..."}`

// Config holds the SiliconFlow client settings
type Config struct {
	Endpoint string
	APIKey   string
	Model    string
}

// Client calls the vision model and decodes its answer into a
// structured recognition result.
type Client struct {
	config     Config
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a SiliconFlow recognition client
func NewClient(config Config, logger *zap.Logger) *Client {
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "siliconflow-vision",
			Timeout: 60 * time.Second,
		}),
		logger: logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Recognize identifies the species on an image supplied as base64 data
func (c *Client) Recognize(ctx context.Context, imageBase64, mimeType string) (ports.Recognition, error) {
	if c.config.APIKey == "" {
		return ports.Recognition{}, apperrors.NewUnavailableError("recognizer")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.complete(ctx, imageBase64, mimeType)
	})
	if err != nil {
		return ports.Recognition{}, err
	}

	content := result.(string)
	recognition, err := decodeRecognition(content)
	if err != nil {
		c.logger.Warn("recognizer returned undecodable content",
			zap.String("content", truncate(content, 200)),
			zap.Error(err))
		return ports.Recognition{}, apperrors.NewExternalError("recognizer", err)
	}
	return recognition, nil
}

func (c *Client) complete(ctx context.Context, imageBase64, mimeType string) (string, error) {
	payload := chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: []contentPart{{Type: "text", Text: systemPrompt}},
			},
			{
				Role: "user",
				Content: []contentPart{
					{Type: "image_url", ImageURL: &imageURL{
						URL: fmt.Sprintf("data:%s;base64,%s", mimeType, imageBase64),
					}},
					{Type: "text", Text: "Identify this fish."},
				},
			},
		},
		MaxTokens:   512,
		Temperature: 0.2,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", apperrors.NewInternalError("failed to encode recognition request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", apperrors.NewInternalError("failed to build recognition request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewNetworkError("recognition request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewExternalError("recognizer", fmt.Errorf("status %d", resp.StatusCode))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", apperrors.NewExternalError("recognizer", err)
	}
	if len(decoded.Choices) == 0 {
		return "", apperrors.NewExternalError("recognizer", fmt.Errorf("empty choices"))
	}
	return decoded.Choices[0].Message.Content, nil
}

// decodeRecognition extracts the JSON object from a model answer.
// Models wrap their JSON in markdown code fences or surround it with
// prose often enough that a plain Unmarshal is not good enough.
func decodeRecognition(content string) (ports.Recognition, error) {
	cleaned := sanitizeJSON(content)
	if cleaned == "" {
		return ports.Recognition{}, fmt.Errorf("no JSON object in answer")
	}

	var recognition ports.Recognition
	if err := json.Unmarshal([]byte(cleaned), &recognition); err != nil {
		return ports.Recognition{}, err
	}
	if recognition.Status != ports.RecognitionStatusOK && recognition.Status != ports.RecognitionStatusUnrecognized {
		return ports.Recognition{}, fmt.Errorf("unexpected status %q", recognition.Status)
	}
	if recognition.Status == ports.RecognitionStatusOK && recognition.Name == "" {
		return ports.Recognition{}, fmt.Errorf("ok answer without a species name")
	}
	return recognition, nil
}

// sanitizeJSON strips markdown fences and surrounding prose, returning
// the outermost brace-delimited object
func sanitizeJSON(content string) string {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return ""
	}
	return trimmed[start : end+1]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
