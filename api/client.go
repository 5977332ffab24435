// Package api talks to the assistant backend: /chat, /new_chat, /voice and /health.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type Mode string

const (
	ModeText  Mode = "text"
	ModeVoice Mode = "voice"
)

type ChatRequest struct {
	Message string `json:"message"`
	Mode    Mode   `json:"mode"`
}

type NewChatResponse struct {
	Message       string `json:"message"`
	Timestamp     string `json:"timestamp"`
	MemoryCleared bool   `json:"memory_cleared"`
}

type VoiceRequest struct {
	Text  string `json:"text"`
	Voice string `json:"voice,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// ChunkCallback receives each decoded fragment of a streamed reply, in arrival order.
type ChunkCallback func(chunk string)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(baseURL string, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", baseURL)
	}

	// No client timeout: a stalled stream is bounded only by ctx
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendChat posts a message and returns the full reply. Streamed replies
// (text/event-stream or text/plain) are delivered to onChunk as they arrive.
func (c *Client) SendChat(ctx context.Context, req ChatRequest, onChunk ChunkCallback) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/chat", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if isStreamingContentType(resp.Header.Get("Content-Type")) {
		c.logger.Debug("reading streamed chat reply", zap.String("content_type", resp.Header.Get("Content-Type")))
		return readStream(resp.Body, onChunk)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read /chat response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return "", &FormatError{Endpoint: "/chat", Field: "response", Err: fmt.Errorf("body is not valid JSON")}
	}
	field := gjson.GetBytes(body, "response")
	if field.Type != gjson.String || field.String() == "" {
		return "", &FormatError{Endpoint: "/chat", Field: "response"}
	}
	return field.String(), nil
}

// NewChat asks the backend to drop its conversation memory.
func (c *Client) NewChat(ctx context.Context) (*NewChatResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/new_chat", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out NewChatResponse
	if err := decodeJSON(resp.Body, "/new_chat", &out); err != nil {
		return nil, err
	}
	if out.Message == "" {
		return nil, &FormatError{Endpoint: "/new_chat", Field: "message"}
	}
	return &out, nil
}

// SynthesizeVoice returns the audio payload for text.
func (c *Client) SynthesizeVoice(ctx context.Context, req VoiceRequest) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodPost, "/voice", req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read /voice response: %w", err)
	}
	return audio, nil
}

func (c *Client) CheckHealth(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out HealthResponse
	if err := decodeJSON(resp.Body, "/health", &out); err != nil {
		return nil, err
	}
	if out.Status == "" {
		return nil, &FormatError{Endpoint: "/health", Field: "status"}
	}
	return &out, nil
}

// Ping reports whether /health answers within a short deadline.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.CheckHealth(ctx)
	return err
}

// do issues one request. Non-2xx responses are closed and returned as *RequestError.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s request: %w", endpoint, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("endpoint", endpoint), zap.Error(err))
		return nil, fmt.Errorf("failed to reach %s: %w", endpoint, err)
	}

	c.logger.Debug("response received",
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &RequestError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
		}
	}
	return resp, nil
}

func decodeJSON(r io.Reader, endpoint string, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return &FormatError{Endpoint: endpoint, Err: err}
	}
	return nil
}

func isStreamingContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.Contains(mediaType, "text/event-stream") ||
		strings.Contains(mediaType, "text/plain")
}
