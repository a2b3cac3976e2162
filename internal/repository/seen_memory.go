package repository

import (
	"context"
	"sync"
)

// MemorySeenSentenceRepository keeps the record in process memory. Used by
// tests and as a fallback when no durable backend is wired.
type MemorySeenSentenceRepository struct {
	mu        sync.RWMutex
	sentences []string
}

func NewMemorySeenSentenceRepository() *MemorySeenSentenceRepository {
	return &MemorySeenSentenceRepository{}
}

func (that *MemorySeenSentenceRepository) Load(_ context.Context) ([]string, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	sentences := make([]string, len(that.sentences))
	copy(sentences, that.sentences)

	return sentences, nil
}

func (that *MemorySeenSentenceRepository) Record(_ context.Context, sentence string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sentences, _ = appendSentence(that.sentences, sentence)

	return nil
}
