package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Voyage Embedding API structures
type VoyageEmbeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type VoyageEmbeddingResponse struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// GetVoyageEmbeddings generates embeddings using the Voyage AI API with rate
// limiting and retry on 429.
func GetVoyageEmbeddings(ctx context.Context, texts []string, apiKey string, model string) ([][]float64, error) {
	if model == "" {
		model = "voyage-2"
	}

	if apiKey == "TEST_MODE" {
		return GetMockEmbeddings(texts), nil
	}

	if err := voyageRateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	reqBody := VoyageEmbeddingRequest{
		Input: texts,
		Model: model,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}

	maxRetries := 3
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		req, err := http.NewRequestWithContext(ctx, "POST", "https://api.voyageai.com/v1/embeddings", bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+apiKey)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to call Voyage API: %w", err)
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode == 429 {
			slog.Warn("Voyage API rate limit hit, waiting before retry",
				"attempt", i+1,
				"maxRetries", maxRetries,
			)
			select {
			case <-time.After(time.Duration(20*(i+1)) * time.Second):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("Voyage API error (status %d): %s", resp.StatusCode, string(body))
		}

		var embResp VoyageEmbeddingResponse
		if err := json.Unmarshal(body, &embResp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}

		embeddings := make([][]float64, len(texts))
		for _, data := range embResp.Data {
			if data.Index < len(embeddings) {
				embeddings[data.Index] = data.Embedding
			}
		}

		slog.Info("Generated Voyage embeddings",
			"count", len(embeddings),
			"model", model,
			"totalTokens", embResp.Usage.TotalTokens,
		)

		return embeddings, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("failed to get embeddings after %d retries", maxRetries)
}

// GetMockEmbeddings generates deterministic embeddings for testing
func GetMockEmbeddings(texts []string) [][]float64 {
	embeddings := make([][]float64, len(texts))
	for i, text := range texts {
		embedding := make([]float64, 768)
		for j := range embedding {
			seed := float64(len(text)) * 0.001
			embedding[j] = (float64(i) + float64(j)/768.0 + seed) / float64(len(texts)+1)
		}
		embeddings[i] = embedding
	}
	return embeddings
}
