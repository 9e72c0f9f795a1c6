package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/codekshitij/toshi/internal/config"
)

// BatchSize is the maximum number of texts sent in a single request to
// the embeddings server, matching the original wrapper's CPU batch size
// (it used 64 on GPU, 32 on CPU; we have no GPU signal here so we take
// the conservative value).
const BatchSize = 32

// ClientEmbedder calls a local OpenAI-compatible embeddings endpoint.
type ClientEmbedder struct {
	cfg     config.EmbeddingConfig
	http    *http.Client
	limiter *rate.Limiter
}

// NewClientEmbedder builds an embedder against cfg. The limiter caps
// outbound request rate; a local inference server is still a shared
// resource when multiple ingestion jobs run concurrently.
func NewClientEmbedder(cfg config.EmbeddingConfig) *ClientEmbedder {
	return &ClientEmbedder{
		cfg:     cfg,
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSec) * time.Second},
		limiter: rate.NewLimiter(rate.Limit(8), 8),
	}
}

func (e *ClientEmbedder) Dimensions() int { return e.cfg.Dimensions }

// EmbedText embeds a single string. An empty string yields an all-zero
// vector without contacting the server, matching the original model
// wrapper's short-circuit.
func (e *ClientEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return make([]float32, e.cfg.Dimensions), nil
	}
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in BatchSize-sized requests, preserving order.
// Empty entries are zero-vectored locally rather than sent upstream.
func (e *ClientEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var toSend []string
	var sendIdx []int
	for i, t := range texts {
		if t == "" {
			out[i] = make([]float32, e.cfg.Dimensions)
			continue
		}
		toSend = append(toSend, t)
		sendIdx = append(sendIdx, i)
	}

	pos := 0
	for _, batch := range batches(toSend, BatchSize) {
		vecs, err := e.embedRequest(ctx, batch)
		if err != nil {
			return nil, err
		}
		for _, v := range vecs {
			out[sendIdx[pos]] = normalize(v)
			pos++
		}
	}
	return out, nil
}

type embedRequestBody struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponseBody struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (e *ClientEmbedder) embedRequest(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(embedRequestBody{Model: e.cfg.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embed: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.BaseURL+e.cfg.Path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("embed: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.APIKey != "" {
		if e.cfg.APIHeader == "Authorization" {
			req.Header.Set("Authorization", "Bearer "+e.cfg.APIKey)
		} else {
			req.Header.Set(e.cfg.APIHeader, e.cfg.APIKey)
		}
	}

	resp, err := e.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed: server returned status %d", resp.StatusCode)
	}

	var body embedResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("embed: decode response: %w", err)
	}
	if len(body.Data) != len(texts) {
		return nil, fmt.Errorf("embed: expected %d embeddings, got %d", len(texts), len(body.Data))
	}

	vecs := make([][]float32, len(body.Data))
	for i, d := range body.Data {
		vecs[i] = d.Embedding
	}
	return vecs, nil
}
