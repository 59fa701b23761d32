package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/TheSylus/Hmmm/internal/lookup"
)

const defaultAPIURL = "https://api.anthropic.com/v1/messages"

// anthropicVersion is the Anthropic Messages API version header value.
const anthropicVersion = "2023-06-01"

// request types mirror the Anthropic Messages API structure.
type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string  `json:"role"`
	Content []block `json:"content"`
}

type block struct {
	Type   string  `json:"type"`
	Text   string  `json:"text,omitempty"`
	Source *source `json:"source,omitempty"`
}

type source struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Client implements lookup.ImageAnalyzer and lookup.Translator against the
// Anthropic Messages API.
type Client struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

func New(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{},
		baseURL: defaultAPIURL,
	}
}

func (c *Client) AnalyzeImage(ctx context.Context, r io.Reader, mimeType string) (*lookup.ImageAnalysis, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	messages := []message{{
		Role: "user",
		Content: []block{
			{
				Type: "image",
				Source: &source{
					Type:      "base64",
					MediaType: normaliseMIME(mimeType),
					Data:      base64.StdEncoding.EncodeToString(imageData),
				},
			},
			{Type: "text", Text: lookup.AnalysisPrompt},
		},
	}}

	// 1024 tokens is generous for a single JSON object describing one
	// product, with headroom for verbose models.
	responseText, err := c.complete(ctx, messages, 1024)
	if err != nil {
		return nil, err
	}

	return lookup.ParseAnalysis(responseText)
}

// Translate sends the texts as one JSON array and expects the same array
// translated. Length validation is the caller's concern; this only fails on
// transport or parse errors.
func (c *Client) Translate(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(texts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal texts: %w", err)
	}

	prompt := fmt.Sprintf(`Translate every string in this JSON array to %s.
Respond with only the translated JSON array, same length, same order.
Keep proper nouns and brand names unchanged.
%s`, targetLang, payload)

	messages := []message{{
		Role:    "user",
		Content: []block{{Type: "text", Text: prompt}},
	}}

	// Translations roughly mirror input length; tags and ingredient lists
	// stay short, so 2048 tokens covers a full draft batch.
	responseText, err := c.complete(ctx, messages, 2048)
	if err != nil {
		return nil, err
	}

	return lookup.ParseTexts(responseText)
}

func (c *Client) complete(ctx context.Context, messages []message, maxTokens int) (string, error) {
	body := request{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  messages,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call claude: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close claude response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("claude returned status %d: %s", resp.StatusCode, errBody)
	}

	var respBody response
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	var sb strings.Builder
	for _, blk := range respBody.Content {
		if blk.Type == "text" {
			sb.WriteString(blk.Text)
		}
	}
	return sb.String(), nil
}

// normaliseMIME maps browser MIME types to the values the Anthropic API
// accepts: jpeg, png, gif, and webp. Unknown types are coerced to jpeg as
// the most universally supported lossy fallback; callers should validate
// MIME types before reaching this layer.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
