package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"minter/internal/domain"
	"minter/internal/infra"
)

// DefaultModelURL is the hosted Stable Diffusion endpoint used when none is configured.
const DefaultModelURL = "https://api-inference.huggingface.co/models/stabilityai/stable-diffusion-2"

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("inference: api key is required")

// Options configures the inference client.
type Options struct {
	APIKey         string
	ModelURL       string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client requests images from a hosted text-to-image model.
type Client struct {
	apiKey     string
	modelURL   string
	httpClient *http.Client
	logger     *infra.Logger
}

type generationRequest struct {
	Inputs  string            `json:"inputs"`
	Options generationOptions `json:"options"`
}

type generationOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type errorResponse struct {
	Error         any     `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// NewClient constructs a client with defaults for anything left empty.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 2 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	modelURL := strings.TrimSpace(opts.ModelURL)
	if modelURL == "" {
		modelURL = DefaultModelURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		modelURL:   modelURL,
		httpClient: httpClient,
		logger:     logger,
	}
}

// ModelURL returns the endpoint the client posts to.
func (c *Client) ModelURL() string {
	return c.modelURL
}

// GenerateImage sends the prompt to the model and returns the raw image bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (domain.ImagePayload, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.ImagePayload{}, domain.ErrEmptyPrompt
	}
	if c.apiKey == "" {
		return domain.ImagePayload{}, ErrMissingAPIKey
	}

	body, err := json.Marshal(generationRequest{
		Inputs:  prompt,
		Options: generationOptions{WaitForModel: true},
	})
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("inference: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL, bytes.NewReader(body))
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("inference: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/png")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("inference: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ImagePayload{}, fmt.Errorf("inference: read response: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")

	if resp.StatusCode >= 300 {
		return domain.ImagePayload{}, fmt.Errorf("%w: inference: status %d: %s", domain.ErrProviderFailure, resp.StatusCode, errorMessage(raw))
	}
	if isJSON(contentType) {
		return domain.ImagePayload{}, fmt.Errorf("%w: inference: unexpected json response: %s", domain.ErrProviderFailure, errorMessage(raw))
	}
	if len(raw) == 0 {
		return domain.ImagePayload{}, domain.ErrEmptyPayload
	}
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/png"
	}

	c.logger.Debug().
		Str("model_url", c.modelURL).
		Int("bytes", len(raw)).
		Str("content_type", contentType).
		Dur("took", time.Since(start)).
		Msg("inference: generated image")
	return domain.ImagePayload{Data: raw, ContentType: contentType}, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

func errorMessage(raw []byte) string {
	var detail errorResponse
	if err := json.Unmarshal(raw, &detail); err == nil && detail.Error != nil {
		switch v := detail.Error.(type) {
		case string:
			return v
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			return strings.Join(parts, "; ")
		default:
			return fmt.Sprint(v)
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 256 {
		msg = msg[:256]
	}
	return msg
}

var _ domain.ImageGenerator = (*Client)(nil)
