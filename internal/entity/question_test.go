package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuestion(t *testing.T) {
	t.Run("Builds a valid question with four options", func(t *testing.T) {
		// Given: a prompt, a correct translation and three distractors
		distractors := []string{"Ich habe Hunger", "Ich bin hungrig gewesen", "Mir ist hungrig"}

		// When: building the question
		question, err := NewQuestion("I am hungry", "Ich bin hungrig", distractors)

		// Then: it has four options including the correct answer
		require.NoError(t, err)
		assert.NotEmpty(t, question.ID)
		assert.Len(t, question.Options, OptionCount)
		assert.True(t, question.HasOption("Ich bin hungrig"))
		assert.Equal(t, "Ich bin hungrig", question.CorrectAnswer)
	})

	t.Run("Rejects a wrong distractor count", func(t *testing.T) {
		// Given: only two distractors
		distractors := []string{"Ich habe Hunger", "Mir ist hungrig"}

		// When: building the question
		_, err := NewQuestion("I am hungry", "Ich bin hungrig", distractors)

		// Then: it should fail validation
		require.ErrorIs(t, err, ErrInvalidQuestion)
	})

	t.Run("Rejects a distractor equal to the correct answer", func(t *testing.T) {
		// Given: a distractor duplicating the correct translation
		distractors := []string{"Ich bin hungrig", "Ich habe Hunger", "Mir ist hungrig"}

		// When: building the question
		_, err := NewQuestion("I am hungry", "Ich bin hungrig", distractors)

		// Then: it should fail validation
		require.ErrorIs(t, err, ErrInvalidQuestion)
	})

	t.Run("Rejects an empty prompt", func(t *testing.T) {
		// Given: an empty prompt sentence
		distractors := []string{"Ich habe Hunger", "Ich bin hungrig gewesen", "Mir ist hungrig"}

		// When: building the question
		_, err := NewQuestion("", "Ich bin hungrig", distractors)

		// Then: it should fail validation
		require.ErrorIs(t, err, ErrInvalidQuestion)
	})
}

func TestQuestion_IncorrectOptions(t *testing.T) {
	// Given: a built question
	question, err := NewQuestion("I am hungry", "Ich bin hungrig", []string{"Ich habe Hunger", "Ich bin hungrig gewesen", "Mir ist hungrig"})
	require.NoError(t, err)

	// When: asking for the distractors
	incorrect := question.IncorrectOptions()

	// Then: exactly the three distractors come back
	assert.Len(t, incorrect, DistractorCount)
	assert.NotContains(t, incorrect, question.CorrectAnswer)
}

func TestValidateDifficulty(t *testing.T) {
	t.Run("Accepts a known level", func(t *testing.T) {
		level, err := ValidateDifficulty(DifficultyA2)

		require.NoError(t, err)
		assert.Equal(t, DifficultyA2, level)
	})

	t.Run("Defaults empty to B1", func(t *testing.T) {
		level, err := ValidateDifficulty("")

		require.NoError(t, err)
		assert.Equal(t, DifficultyB1, level)
	})

	t.Run("Rejects an unknown level", func(t *testing.T) {
		_, err := ValidateDifficulty("C2")

		require.ErrorIs(t, err, ErrInvalidDifficulty)
	})
}

func TestResolveLanguage(t *testing.T) {
	t.Run("Resolves a supported code", func(t *testing.T) {
		code, name, err := ResolveLanguage("tr")

		require.NoError(t, err)
		assert.Equal(t, "tr", code)
		assert.Equal(t, "Turkish", name)
	})

	t.Run("Defaults empty to English", func(t *testing.T) {
		code, name, err := ResolveLanguage("")

		require.NoError(t, err)
		assert.Equal(t, "en", code)
		assert.Equal(t, "English", name)
	})

	t.Run("Rejects an unknown code", func(t *testing.T) {
		_, _, err := ResolveLanguage("xx")

		require.ErrorIs(t, err, ErrUnknownLanguage)
	})
}
