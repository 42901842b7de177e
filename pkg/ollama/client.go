package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nmorales-dev/localchat-backend/pkg/config"
)

// Message is a single turn in the conversation sent to the runtime.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelInfo describes an installed model as reported by the runtime.
type ModelInfo struct {
	Name       string `json:"name"`
	Model      string `json:"model"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
}

type tagsResponse struct {
	Models []ModelInfo `json:"models"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatChunk struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// Client talks to a local Ollama-compatible runtime over HTTP.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	warmupTimeout time.Duration
}

// New builds a client from configuration. The request timeout bounds a whole
// streamed chat exchange, so it is deliberately generous.
func New(cfg config.OllamaConfig) *Client {
	return &Client{
		baseURL:       strings.TrimRight(cfg.URL, "/"),
		httpClient:    &http.Client{Timeout: cfg.RequestTimeout},
		warmupTimeout: cfg.WarmupTimeout,
	}
}

// ListModels returns the models installed on the runtime.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("building tags request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing models: runtime returned %s", resp.Status)
	}

	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decoding tags response: %w", err)
	}
	return tags.Models, nil
}

// Warmup asks the runtime to load the model into memory with a trivial
// non-streamed generation. Slow on first call for large models.
func (c *Client) Warmup(ctx context.Context, model string) error {
	if strings.TrimSpace(model) == "" {
		return fmt.Errorf("model is required")
	}

	if c.warmupTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.warmupTimeout)
		defer cancel()
	}

	body, err := json.Marshal(generateRequest{Model: model, Prompt: ".", Stream: false})
	if err != nil {
		return fmt.Errorf("encoding warmup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building warmup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("warming up %s: %w", model, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("warming up %s: runtime returned %s", model, resp.Status)
	}
	return nil
}

// StreamChat runs a streamed chat exchange and returns the fully assembled
// assistant reply. Every fragment is consumed before returning; a partial
// stream that ends in an error surfaces that error instead of a truncated
// reply.
func (c *Client) StreamChat(ctx context.Context, model string, history []Message) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", fmt.Errorf("model is required")
	}
	if len(history) == 0 {
		return "", fmt.Errorf("history is required")
	}

	body, err := json.Marshal(chatRequest{Model: model, Messages: history, Stream: true})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("chat request: runtime returned %s", resp.Status)
	}

	var reply strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk chatChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return "", fmt.Errorf("decoding chat chunk: %w", err)
		}
		if chunk.Error != "" {
			return "", fmt.Errorf("runtime error: %s", chunk.Error)
		}
		reply.WriteString(chunk.Message.Content)
		if chunk.Done {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading chat stream: %w", err)
	}

	return reply.String(), nil
}

// Ping reports whether the runtime is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}
