package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"aqar-chatbot/config"
)

var openAIAPIURL = "https://api.openai.com/v1/chat/completions"

var llmConfig *config.Config

// InitLLM stores the configuration used by every completion call.
func InitLLM(cfg *config.Config) {
	llmConfig = cfg
	if strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")) != "" {
		openAIAPIURL = strings.TrimRight(os.Getenv("OPENAI_BASE_URL"), "/") + "/chat/completions"
	}
}

// OpenAIRequest represents the request to the chat completions API
type OpenAIRequest struct {
	Model       string          `json:"model"`
	Messages    []OpenAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

// OpenAIMessage represents a message in the conversation
type OpenAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// OpenAIResponse represents the response from the chat completions API
type OpenAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int           `json:"index"`
		Message OpenAIMessage `json:"message"`
		Finish  string        `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// GetLLMResponse sends a single-turn prompt and returns the text answer.
func GetLLMResponse(ctx context.Context, prompt string) (string, error) {
	return GetLLMResponseWithHistory(ctx, prompt, nil)
}

// GetLLMResponseWithHistory sends a prompt with conversation history.
func GetLLMResponseWithHistory(ctx context.Context, prompt string, history []OpenAIMessage) (string, error) {
	if llmConfig == nil {
		return "", fmt.Errorf("LLM service not initialized")
	}

	// Test mode: if API key is "TEST_MODE", return a mock response
	if llmConfig.OpenAIAPIKey == "TEST_MODE" {
		slog.Info("Running in TEST_MODE - returning mock response")
		historyInfo := ""
		if len(history) > 0 {
			historyInfo = fmt.Sprintf(" (with %d history messages)", len(history))
		}
		return fmt.Sprintf("TEST RESPONSE: I received your message%s. This is a test response.", historyInfo), nil
	}

	if llmConfig.OpenAIAPIKey == "" {
		return "", fmt.Errorf("OpenAI API key not configured")
	}

	messages := make([]OpenAIMessage, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, OpenAIMessage{Role: "user", Content: prompt})

	requestBody := OpenAIRequest{
		Model:       llmConfig.LLMModel,
		Messages:    messages,
		Temperature: llmConfig.LLMTemperature,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", openAIAPIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+llmConfig.OpenAIAPIKey)

	client := &http.Client{
		Timeout: 45 * time.Second, // 45 second timeout for HTTP client
	}
	resp, err := client.Do(req)
	if err != nil {
		if os.IsTimeout(err) || strings.Contains(err.Error(), "deadline exceeded") {
			slog.Error("LLM API timeout",
				"error", err,
				"promptLength", len(prompt),
				"historyCount", len(history),
			)
			return "", fmt.Errorf("LLM API timeout - request took too long. Try with a shorter message")
		}
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("LLM API error", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("LLM API error: %s", resp.Status)
	}

	var llmResp OpenAIResponse
	if err := json.Unmarshal(body, &llmResp); err != nil {
		return "", err
	}

	if len(llmResp.Choices) > 0 {
		response := llmResp.Choices[0].Message.Content
		slog.Info("LLM response generated",
			"promptTokens", llmResp.Usage.PromptTokens,
			"completionTokens", llmResp.Usage.CompletionTokens,
		)
		return response, nil
	}

	return "", fmt.Errorf("no response content from LLM")
}

// GetLLMJSONResponse asks for a strict-JSON answer and decodes it into out.
// Markdown fences and surrounding prose are tolerated.
func GetLLMJSONResponse(ctx context.Context, prompt string, out interface{}) error {
	raw, err := GetLLMResponse(ctx, prompt)
	if err != nil {
		return err
	}
	cleaned := ExtractJSON(raw)
	if cleaned == "" {
		return fmt.Errorf("no JSON object in LLM response: %q", truncate(raw, 200))
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("failed to parse LLM JSON: %w", err)
	}
	return nil
}

// ExtractJSON pulls the first JSON object out of a model reply, stripping
// ```json fences and any prose around it.
func ExtractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if idx := strings.Index(s, "```"); idx != -1 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}

// StripCodeFences removes markdown code fences around SQL or plain text.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		for _, lang := range []string{"sql", "json", "text"} {
			s = strings.TrimPrefix(s, lang)
		}
		if end := strings.Index(s, "```"); end != -1 {
			s = s[:end]
		}
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
