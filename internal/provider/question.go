// Package provider isolates the external generative services behind small
// interfaces so upstream response-format churn never reaches the session core.
package provider

import (
	"context"

	"github.com/sprachquiz/millionaire-backend/internal/entity"
)

// QuestionProvider generates quiz questions for German learners. Partial
// success is permitted: up to count structurally valid questions are
// returned, invalid items are dropped.
type QuestionProvider interface {
	Generate(ctx context.Context, count int, avoid []string, targetLanguage, difficulty string) ([]*entity.Question, error)
}

// SpeechProvider synthesizes spoken audio for a piece of text. It may be
// entirely unavailable; callers must treat failures as feature degradation,
// never as session errors.
type SpeechProvider interface {
	Synthesize(ctx context.Context, text string) (audio []byte, mimeType string, err error)
}
