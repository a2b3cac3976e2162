package apperror

import "errors"

var (
	ErrGameAlreadyStarted = errors.New("game is already started")
	ErrGameIsNotStarted   = errors.New("game is not started")
	ErrGameFinished       = errors.New("game is already finished")

	ErrSessionBusy      = errors.New("answer is being evaluated")
	ErrQuestionNotReady = errors.New("question is not loaded yet")
	ErrAnswerNotOption  = errors.New("answer is not one of the options")
	ErrAnswerHidden     = errors.New("answer is hidden by fifty-fifty")

	ErrLifelineConsumed   = errors.New("lifeline is already used")
	ErrLifelineUnknown    = errors.New("unknown lifeline")
	ErrSwitchNotAvailable = errors.New("switch-question is not available yet")

	ErrGenerationShortfall = errors.New("could not generate enough unique questions")
	ErrGeneration          = errors.New("question generation failed")
	ErrSpeech              = errors.New("speech synthesis failed")
	ErrSpeechUnavailable   = errors.New("text-to-speech is not available")
)
