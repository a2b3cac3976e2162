package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sprachquiz/millionaire-backend/internal/apperror"
	"github.com/sprachquiz/millionaire-backend/internal/config"
	"github.com/sprachquiz/millionaire-backend/internal/entity"
)

const chatCompletionsPath = "/v1/chat/completions"

// jsonFence matches a ```json ... ``` block; models wrap their output in one
// despite being told not to.
var jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

type deepSeekProvider struct {
	logger *slog.Logger

	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// NewDeepSeekProvider returns a QuestionProvider backed by the DeepSeek
// chat-completions API.
func NewDeepSeekProvider(logger *slog.Logger, conf config.DeepSeek) QuestionProvider {
	return &deepSeekProvider{
		logger: logger,

		httpClient: &http.Client{Timeout: 120 * time.Second},
		apiKey:     conf.APIKey,
		baseURL:    strings.TrimRight(conf.BaseURL, "/"),
		model:      conf.Model,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// generatedItem is the schema the prompt asks the model to emit.
type generatedItem struct {
	TargetLanguageSentence      string   `json:"targetLanguageSentence"`
	CorrectGermanTranslation    string   `json:"correctGermanTranslation"`
	IncorrectGermanTranslations []string `json:"incorrectGermanTranslations"`
}

func (that *deepSeekProvider) Generate(ctx context.Context, count int, avoid []string, targetLanguage, difficulty string) ([]*entity.Question, error) {
	log := that.logger.With("method", "Generate")

	content, err := that.complete(ctx, buildPrompt(count, avoid, targetLanguage, difficulty))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrGeneration, err)
	}

	items, err := parseGeneratedItems(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrGeneration, err)
	}

	questions := make([]*entity.Question, 0, len(items))
	for i, item := range items {
		question, err := entity.NewQuestion(item.TargetLanguageSentence, item.CorrectGermanTranslation, item.IncorrectGermanTranslations)
		if err != nil {
			log.Warn("dropping invalid generated question", "index", i, "error", err)
			continue
		}
		questions = append(questions, question)
	}

	if len(questions) < len(items) {
		log.Warn("provider returned partially valid batch", "requested", count, "returned", len(items), "valid", len(questions))
	}

	return questions, nil
}

// complete sends one user prompt and returns the assistant's text.
func (that *deepSeekProvider) complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       that.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   4000,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.baseURL+chatCompletionsPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+that.apiKey)

	resp, err := that.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var completion chatResponse
	if err = json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("response contains no choices")
	}

	return completion.Choices[0].Message.Content, nil
}

func buildPrompt(count int, avoid []string, targetLanguage, difficulty string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Please generate %d unique quiz questions for learners of German at the %s level. ", count, difficulty)
	fmt.Fprintf(&b, "For each question, provide a sentence in %s, its correct German translation, and three specific types of incorrect German translations:\n", targetLanguage)
	b.WriteString("1. Two incorrect translations that are very similar to the correct answer (e.g., with minor grammatical errors, different word order, or slightly wrong vocabulary).\n")
	b.WriteString("2. One incorrect translation that is more distinctly different in meaning but still a plausible distractor.\n")
	if len(avoid) > 0 {
		fmt.Fprintf(&b, "Do not repeat any of the following %s sentences: %s.\n", targetLanguage, strings.Join(avoid, ", "))
	}
	b.WriteString("Your response must be a JSON array of objects. Each object should have the following structure:\n")
	b.WriteString(`{
  "targetLanguageSentence": "...",
  "correctGermanTranslation": "...",
  "incorrectGermanTranslations": ["...", "...", "..."]
}
`)
	b.WriteString("The 'incorrectGermanTranslations' array must contain exactly three strings.\n")
	b.WriteString("Do not include any explanatory text or markdown formatting outside of the JSON array itself.")

	return b.String()
}

// parseGeneratedItems extracts the JSON array from the model output, which
// may be fenced or surrounded by prose.
func parseGeneratedItems(content string) ([]generatedItem, error) {
	jsonString := content

	if match := jsonFence.FindStringSubmatch(content); match != nil {
		jsonString = match[1]
	} else {
		first := strings.Index(jsonString, "[")
		last := strings.LastIndex(jsonString, "]")
		if first != -1 && last > first {
			jsonString = jsonString[first : last+1]
		}
	}

	var items []generatedItem
	if err := json.Unmarshal([]byte(strings.TrimSpace(jsonString)), &items); err != nil {
		return nil, fmt.Errorf("failed to parse generated questions: %w", err)
	}

	return items, nil
}
