package entity

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

const (
	OptionCount     = 4
	DistractorCount = 3
)

const (
	DifficultyA1 = "A1"
	DifficultyA2 = "A2"
	DifficultyB1 = "B1"
	DifficultyB2 = "B2"
)

var (
	ErrInvalidDifficulty = errors.New("invalid difficulty level")
	ErrUnknownLanguage   = errors.New("unknown target language")
	ErrInvalidQuestion   = errors.New("invalid question structure")
)

// TargetLanguages maps the supported locale codes to the language name used
// in generation prompts. Answers are always German; the prompt sentence is in
// the learner's own language.
var TargetLanguages = map[string]string{
	"en": "English",
	"ar": "Arabic",
	"ru": "Russian",
	"tr": "Turkish",
	"fr": "French",
	"es": "Spanish",
}

// Question is a single quiz item: a sentence in the learner's language and
// four German translations, exactly one of which is correct. Immutable once
// produced.
type Question struct {
	ID             string   `json:"id"`
	PromptSentence string   `json:"prompt_sentence"`
	Options        []string `json:"options"`
	CorrectAnswer  string   `json:"correct_answer"`
}

// NewQuestion builds a question from a generated item, shuffling the correct
// translation in among the distractors.
func NewQuestion(prompt, correct string, distractors []string) (*Question, error) {
	if prompt == "" || correct == "" || len(distractors) != DistractorCount {
		return nil, fmt.Errorf("%w: prompt %q", ErrInvalidQuestion, prompt)
	}

	options := make([]string, 0, OptionCount)
	options = append(options, distractors...)
	options = append(options, correct)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	question := &Question{
		ID:             uuid.NewString(),
		PromptSentence: prompt,
		Options:        options,
		CorrectAnswer:  correct,
	}

	if err := question.Validate(); err != nil {
		return nil, err
	}

	return question, nil
}

// Validate - checks the structural invariants: four unique options, one of
// which is the correct answer.
func (that *Question) Validate() error {
	if that.PromptSentence == "" {
		return fmt.Errorf("%w: empty prompt", ErrInvalidQuestion)
	}

	if len(that.Options) != OptionCount {
		return fmt.Errorf("%w: %d options", ErrInvalidQuestion, len(that.Options))
	}

	seen := make(map[string]struct{}, OptionCount)
	for _, option := range that.Options {
		if option == "" {
			return fmt.Errorf("%w: empty option", ErrInvalidQuestion)
		}
		if _, ok := seen[option]; ok {
			return fmt.Errorf("%w: duplicate option %q", ErrInvalidQuestion, option)
		}
		seen[option] = struct{}{}
	}

	if _, ok := seen[that.CorrectAnswer]; !ok {
		return fmt.Errorf("%w: correct answer is not an option", ErrInvalidQuestion)
	}

	return nil
}

// HasOption reports whether answer is one of the four options.
func (that *Question) HasOption(answer string) bool {
	for _, option := range that.Options {
		if option == answer {
			return true
		}
	}
	return false
}

// IncorrectOptions returns the three distractors.
func (that *Question) IncorrectOptions() []string {
	incorrect := make([]string, 0, DistractorCount)
	for _, option := range that.Options {
		if option != that.CorrectAnswer {
			incorrect = append(incorrect, option)
		}
	}
	return incorrect
}

// ValidateDifficulty - checks a difficulty code, defaulting empty to B1.
func ValidateDifficulty(level string) (string, error) {
	switch level {
	case "":
		return DifficultyB1, nil
	case DifficultyA1, DifficultyA2, DifficultyB1, DifficultyB2:
		return level, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidDifficulty, level)
	}
}

// ResolveLanguage - normalizes a locale code (empty means English) and
// resolves the prompt language name.
func ResolveLanguage(code string) (string, string, error) {
	if code == "" {
		code = "en"
	}

	name, ok := TargetLanguages[code]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownLanguage, code)
	}

	return code, name, nil
}
