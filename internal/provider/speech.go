package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sprachquiz/millionaire-backend/internal/apperror"
)

const googleTTSEndpoint = "https://texttospeech.googleapis.com/v1/text:synthesize"

// googleSpeechProvider calls the Google Cloud TTS REST API and returns MP3
// audio. Answers and prompts are read with a German voice.
type googleSpeechProvider struct {
	logger *slog.Logger

	httpClient *http.Client
	apiKey     string
	endpoint   string
}

func NewGoogleSpeechProvider(logger *slog.Logger, apiKey string) SpeechProvider {
	return &googleSpeechProvider{
		logger: logger,

		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		endpoint:   googleTTSEndpoint,
	}
}

func (that *googleSpeechProvider) Synthesize(ctx context.Context, text string) ([]byte, string, error) {
	payload, err := json.Marshal(map[string]any{
		"input": map[string]string{"text": text},
		"voice": map[string]string{
			"languageCode": "de-DE",
			"ssmlGender":   "FEMALE",
		},
		"audioConfig": map[string]string{"audioEncoding": "MP3"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to marshal request: %w", apperror.ErrSpeech, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, that.endpoint+"?key="+that.apiKey, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to build request: %w", apperror.ErrSpeech, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := that.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: request failed: %w", apperror.ErrSpeech, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to read response: %w", apperror.ErrSpeech, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: unexpected status %d: %s", apperror.ErrSpeech, resp.StatusCode, body)
	}

	var result struct {
		AudioContent string `json:"audioContent"`
	}
	if err = json.Unmarshal(body, &result); err != nil {
		return nil, "", fmt.Errorf("%w: failed to unmarshal response: %w", apperror.ErrSpeech, err)
	}

	audio, err := base64.StdEncoding.DecodeString(result.AudioContent)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to decode audio: %w", apperror.ErrSpeech, err)
	}

	return audio, "audio/mpeg", nil
}

// disabledSpeechProvider is wired when no TTS key is configured; every speech
// affordance degrades to a no-op.
type disabledSpeechProvider struct{}

func NewDisabledSpeechProvider() SpeechProvider {
	return &disabledSpeechProvider{}
}

func (that *disabledSpeechProvider) Synthesize(_ context.Context, _ string) ([]byte, string, error) {
	return nil, "", apperror.ErrSpeechUnavailable
}
