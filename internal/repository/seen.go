package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// seenSentencesKey is the fixed well-known key holding the JSON array of
// previously shown prompt sentences.
const seenSentencesKey = "millionaire:seen-sentences"

// MaxSeenSentences caps the record; the oldest entries are evicted first.
const MaxSeenSentences = 100

// SeenSentenceRepository records prompt sentences already shown to the
// player so generation can be biased away from repeats. It outlives game
// sessions and survives resets.
type SeenSentenceRepository interface {
	Load(ctx context.Context) ([]string, error)
	Record(ctx context.Context, sentence string) error
}

type dbSeen struct {
	client *redis.Client
}

func NewSeenSentenceRepository(client *redis.Client) SeenSentenceRepository {
	return &dbSeen{
		client: client,
	}
}

func (that *dbSeen) Load(ctx context.Context) ([]string, error) {
	response, err := that.client.Get(ctx, seenSentencesKey).Result()

	if errors.Is(err, redis.Nil) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get seen sentences: %w", err)
	}

	var sentences []string
	if err = json.Unmarshal([]byte(response), &sentences); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seen sentences: %w", err)
	}

	return sentences, nil
}

func (that *dbSeen) Record(ctx context.Context, sentence string) error {
	sentences, err := that.Load(ctx)
	if err != nil {
		// a corrupt history is discarded rather than wedging the store
		sentences = nil
	}

	sentences, changed := appendSentence(sentences, sentence)
	if !changed {
		return nil
	}

	payload, err := json.Marshal(sentences)
	if err != nil {
		return fmt.Errorf("failed to marshal seen sentences: %w", err)
	}

	if err = that.client.Set(ctx, seenSentencesKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("failed to set seen sentences: %w", err)
	}

	return nil
}

// appendSentence adds a sentence unless already present and evicts the oldest
// entries beyond the cap. Reports whether the record changed.
func appendSentence(sentences []string, sentence string) ([]string, bool) {
	for _, existing := range sentences {
		if existing == sentence {
			return sentences, false
		}
	}

	sentences = append(sentences, sentence)
	if len(sentences) > MaxSeenSentences {
		sentences = sentences[len(sentences)-MaxSeenSentences:]
	}

	return sentences, true
}
