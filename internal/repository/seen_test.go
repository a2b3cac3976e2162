package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprachquiz/millionaire-backend/testing/suite"
)

func TestSeenSentenceRepository_Load(t *testing.T) {
	t.Run("Returns empty when nothing was recorded", func(t *testing.T) {
		ctx, st := suite.New(t)

		seenRepo := NewSeenSentenceRepository(st.Storage)

		// When: loading a fresh record
		sentences, err := seenRepo.Load(ctx)

		// Then: an empty record comes back without error
		require.NoError(t, err)
		assert.Empty(t, sentences)
	})
}

func TestSeenSentenceRepository_Record(t *testing.T) {
	t.Run("Recorded sentences survive a reload", func(t *testing.T) {
		ctx, st := suite.New(t)

		seenRepo := NewSeenSentenceRepository(st.Storage)

		// Given: two recorded sentences
		require.NoError(t, seenRepo.Record(ctx, "I am hungry"))
		require.NoError(t, seenRepo.Record(ctx, "The cat sleeps"))

		// When: loading through a fresh repository over the same storage
		reloaded := NewSeenSentenceRepository(st.Storage)
		sentences, err := reloaded.Load(ctx)

		// Then: both sentences are there, oldest first
		require.NoError(t, err)
		assert.Equal(t, []string{"I am hungry", "The cat sleeps"}, sentences)
	})

	t.Run("Recording a duplicate does not grow the record", func(t *testing.T) {
		ctx, st := suite.New(t)

		seenRepo := NewSeenSentenceRepository(st.Storage)

		// Given: a recorded sentence
		require.NoError(t, seenRepo.Record(ctx, "I am hungry"))

		// When: recording it again
		require.NoError(t, seenRepo.Record(ctx, "I am hungry"))

		// Then: the record still holds it once
		sentences, err := seenRepo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"I am hungry"}, sentences)
	})

	t.Run("A corrupt record is discarded rather than wedging writes", func(t *testing.T) {
		ctx, st := suite.New(t)

		// Given: garbage under the well-known key
		require.NoError(t, st.Storage.Set(ctx, seenSentencesKey, "not json", 0).Err())

		seenRepo := NewSeenSentenceRepository(st.Storage)

		// When: recording a sentence
		require.NoError(t, seenRepo.Record(ctx, "I am hungry"))

		// Then: the record holds only the new sentence
		sentences, err := seenRepo.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"I am hungry"}, sentences)
	})
}
