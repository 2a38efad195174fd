// Package vision reads invoice images through an OpenAI-compatible
// chat-completions endpoint with a vision-capable model.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/server/models"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("vision api key not configured")

const prompt = "Extract invoice details: amount (in cents), date (ISO), description, " +
	"category (Food, Transport, Housing, Utilities, Entertainment, Health, Other), " +
	"type (income or expense) and currency (ISO 4217 code). Return ONLY JSON."

type Extractor interface {
	Extract(ctx context.Context, contentType string, image []byte) (*models.InvoiceData, error)
}

type Client struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
}

func NewClient(baseURL, apiKey, model string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    httpClient,
	}
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type message struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type completionRequest struct {
	Model          string            `json:"model"`
	Messages       []message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Extract(ctx context.Context, contentType string, image []byte) (*models.InvoiceData, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}
	if contentType == "" {
		contentType = http.DetectContentType(image)
	}

	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)
	body, err := json.Marshal(completionRequest{
		Model: c.model,
		Messages: []message{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision api: status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("vision api: decode: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("vision api: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("vision api: empty response")
	}

	return parseInvoiceJSON(out.Choices[0].Message.Content)
}

// parseInvoiceJSON tolerates models that wrap the object in a ```json fence.
func parseInvoiceJSON(s string) (*models.InvoiceData, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	var data models.InvoiceData
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &data); err != nil {
		return nil, fmt.Errorf("vision api: invalid invoice json: %w", err)
	}
	return &data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
