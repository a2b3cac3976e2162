package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/sprachquiz/millionaire-backend/internal/apperror"
	"github.com/sprachquiz/millionaire-backend/internal/config"
	"github.com/sprachquiz/millionaire-backend/internal/entity"
	"github.com/sprachquiz/millionaire-backend/internal/millionaire"
	"github.com/sprachquiz/millionaire-backend/internal/provider"
	"github.com/sprachquiz/millionaire-backend/internal/repository"
)

// GamePlayService drives the session state machine: starting games, answer
// evaluation with its reveal pacing, lifelines and resets. All mutations of a
// session, including timer completions, run under that session's lock.
type GamePlayService interface {
	StartGame(ctx context.Context, sessionID, languageCode, difficulty string) error
	Answer(ctx context.Context, sessionID, answer string) error
	UseLifeline(ctx context.Context, sessionID, lifeline string) error
	DismissPoll(sessionID string)
	DismissFriend(sessionID string)
	Reset(sessionID string)
	Snapshot(sessionID string) GameSnapshot
}

// QuestionView is a question as the player may see it, without the answer key.
type QuestionView struct {
	ID             string   `json:"id"`
	PromptSentence string   `json:"prompt_sentence"`
	Options        []string `json:"options"`
}

// GameSnapshot is a consistent read of one session for the presentation layer.
// CorrectAnswer is only populated once the reveal has happened or the game is
// lost.
type GameSnapshot struct {
	Status          string             `json:"status"`
	LanguageCode    string             `json:"language_code,omitempty"`
	Difficulty      string             `json:"difficulty,omitempty"`
	CurrentIndex    int                `json:"current_index"`
	TotalQuestions  int                `json:"total_questions"`
	QuestionsLoaded int                `json:"questions_loaded"`
	Waiting         bool               `json:"waiting"`
	Lifelines       entity.Lifelines   `json:"lifelines"`
	PrizeLevels     []string           `json:"prize_levels"`
	Question        *QuestionView      `json:"question,omitempty"`
	HiddenAnswers   []string           `json:"hidden_answers,omitempty"`
	SelectedAnswer  string             `json:"selected_answer,omitempty"`
	AnswerState     string             `json:"answer_state"`
	CorrectAnswer   string             `json:"correct_answer,omitempty"`
	Poll            entity.PollState   `json:"poll"`
	Friend          entity.FriendState `json:"friend"`
}

type gamePlayService struct {
	logger *slog.Logger
	timing config.Game

	questions provider.QuestionProvider
	seenRepo  repository.SeenSentenceRepository
	sessions  *repository.SessionStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewGamePlayService(logger *slog.Logger, timing config.Game, questions provider.QuestionProvider, seenRepo repository.SeenSentenceRepository, sessions *repository.SessionStore) GamePlayService {
	return &gamePlayService{
		logger: logger,
		timing: timing,

		questions: questions,
		seenRepo:  seenRepo,
		sessions:  sessions,

		locks: make(map[string]*sync.Mutex),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())), //nolint: gosec // game randomness, not crypto
	}
}

// sessionLock returns the mutex serializing all work on one session.
func (that *gamePlayService) sessionLock(id string) *sync.Mutex {
	that.mu.Lock()
	defer that.mu.Unlock()

	lock, ok := that.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		that.locks[id] = lock
	}

	return lock
}

// StartGame - START -> LOADING -> PLAYING. Fetches the initial batch
// synchronously; fewer than three valid questions aborts back to START. The
// remaining questions arrive from a background fetch that is discarded if the
// session epoch has moved on.
func (that *gamePlayService) StartGame(ctx context.Context, sessionID, languageCode, difficulty string) error {
	log := that.logger.With("method", "StartGame", "sessionID", sessionID)

	difficulty, err := entity.ValidateDifficulty(difficulty)
	if err != nil {
		return err
	}

	languageCode, languageName, err := entity.ResolveLanguage(languageCode)
	if err != nil {
		return err
	}

	lock := that.sessionLock(sessionID)

	lock.Lock()
	session := that.sessions.GetOrCreate(sessionID)
	if err = session.BeginLoading(languageCode, languageName, difficulty); err != nil {
		lock.Unlock()
		return err
	}
	epoch := session.Epoch
	lock.Unlock()

	seen, err := that.seenRepo.Load(ctx)
	if err != nil {
		log.Error("failed to load seen sentences", "error", err)
		seen = nil
	}

	initial, err := that.questions.Generate(ctx, entity.InitialBatch, seen, languageName, difficulty)
	if err != nil || len(initial) < entity.InitialBatch {
		lock.Lock()
		session.AbortLoading(epoch)
		lock.Unlock()

		if err != nil {
			return fmt.Errorf("%w: %w", apperror.ErrGenerationShortfall, err)
		}
		return fmt.Errorf("%w: got %d of %d", apperror.ErrGenerationShortfall, len(initial), entity.InitialBatch)
	}

	lock.Lock()
	if err = session.BeginPlaying(epoch, initial); err != nil {
		lock.Unlock()
		return err
	}
	first := session.CurrentQuestion()
	lock.Unlock()

	that.recordSeen(ctx, first.PromptSentence)

	avoid := make([]string, 0, len(seen)+len(initial))
	avoid = append(avoid, seen...)
	for _, question := range initial {
		avoid = append(avoid, question.PromptSentence)
	}

	go that.fetchRemaining(sessionID, epoch, avoid, languageName, difficulty)

	return nil
}

// fetchRemaining loads the rest of the game (plus one spare for the
// switch-question lifeline) in the background. Failures are logged and
// swallowed; the session keeps whatever is already loaded.
func (that *gamePlayService) fetchRemaining(sessionID string, epoch int, avoid []string, languageName, difficulty string) {
	log := that.logger.With("method", "fetchRemaining", "sessionID", sessionID)

	// outlives the originating request on purpose
	ctx := context.Background()

	count := entity.TotalQuestions - entity.InitialBatch + 1
	more, err := that.questions.Generate(ctx, count, avoid, languageName, difficulty)
	if err != nil {
		log.Error("background question fetch failed", "error", err)
		return
	}

	lock := that.sessionLock(sessionID)

	lock.Lock()
	session, ok := that.sessions.Get(sessionID)
	if !ok {
		lock.Unlock()
		return
	}

	appended := session.AppendQuestions(epoch, more)

	var current *entity.Question
	if session.Epoch == epoch && session.IsPlaying() {
		current = session.CurrentQuestion()
	}
	lock.Unlock()

	// the cursor may have been waiting on this batch; recording is idempotent
	if current != nil {
		that.recordSeen(ctx, current.PromptSentence)
	}

	log.Debug("background questions merged", "appended", appended)
}

// Answer starts evaluation of a selection and schedules the reveal. The
// session stays busy until the reveal chain completes.
func (that *gamePlayService) Answer(_ context.Context, sessionID, answer string) error {
	lock := that.sessionLock(sessionID)

	lock.Lock()
	session, ok := that.sessions.Get(sessionID)
	if !ok {
		lock.Unlock()
		return apperror.ErrGameIsNotStarted
	}
	if session.IsFinished() {
		lock.Unlock()
		return apperror.ErrGameFinished
	}

	if err := session.SelectAnswer(answer); err != nil {
		lock.Unlock()
		return err
	}

	epoch, index := session.Epoch, session.CurrentIndex
	lock.Unlock()

	time.AfterFunc(that.timing.RevealDelay, func() {
		that.revealAnswer(sessionID, epoch, index)
	})

	return nil
}

func (that *gamePlayService) revealAnswer(sessionID string, epoch, index int) {
	lock := that.sessionLock(sessionID)

	lock.Lock()
	session, ok := that.sessions.Get(sessionID)
	if !ok {
		lock.Unlock()
		return
	}

	correct, revealed := session.RevealAnswer(epoch, index)
	lock.Unlock()

	if !revealed {
		return
	}

	if correct {
		time.AfterFunc(that.timing.AdvanceDelay, func() {
			that.completeCorrect(sessionID, epoch, index)
		})
		return
	}

	time.AfterFunc(that.timing.LoseDelay, func() {
		that.completeIncorrect(sessionID, epoch, index)
	})
}

func (that *gamePlayService) completeCorrect(sessionID string, epoch, index int) {
	lock := that.sessionLock(sessionID)

	lock.Lock()
	session, ok := that.sessions.Get(sessionID)
	if !ok {
		lock.Unlock()
		return
	}

	session.CompleteCorrect(epoch, index)

	var next *entity.Question
	if session.Epoch == epoch && session.IsPlaying() && session.CurrentIndex == index+1 {
		next = session.CurrentQuestion()
	}
	lock.Unlock()

	if next != nil {
		that.recordSeen(context.Background(), next.PromptSentence)
	}
}

func (that *gamePlayService) completeIncorrect(sessionID string, epoch, index int) {
	lock := that.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, ok := that.sessions.Get(sessionID)
	if !ok {
		return
	}

	session.CompleteIncorrect(epoch, index)
}

// UseLifeline dispatches one of the four single-use aids.
func (that *gamePlayService) UseLifeline(ctx context.Context, sessionID, lifeline string) error {
	lock := that.sessionLock(sessionID)

	lock.Lock()
	session, ok := that.sessions.Get(sessionID)
	if !ok {
		lock.Unlock()
		return apperror.ErrGameIsNotStarted
	}

	var err error
	var recordSentence string

	switch lifeline {
	case entity.LifelineFiftyFifty:
		err = that.applyFiftyFifty(session)
	case entity.LifelineAskAudience:
		err = that.openAudiencePoll(sessionID, session)
	case entity.LifelinePhoneFriend:
		err = that.openPhoneFriend(sessionID, session)
	case entity.LifelineSwitchQuestion:
		if err = session.SwitchQuestion(); err == nil {
			// a different question now occupies the current index
			recordSentence = session.CurrentQuestion().PromptSentence
		}
	default:
		err = fmt.Errorf("%w: %s", apperror.ErrLifelineUnknown, lifeline)
	}
	lock.Unlock()

	if recordSentence != "" {
		that.recordSeen(ctx, recordSentence)
	}

	return err
}

func (that *gamePlayService) applyFiftyFifty(session *entity.Session) error {
	question := session.CurrentQuestion()

	var hidden []string
	if question != nil {
		that.rngMu.Lock()
		hidden = millionaire.FiftyFifty(question.Options, question.CorrectAnswer, that.rng)
		that.rngMu.Unlock()
	}

	return session.ApplyFiftyFifty(hidden)
}

func (that *gamePlayService) openAudiencePoll(sessionID string, session *entity.Session) error {
	if err := session.OpenAudiencePoll(); err != nil {
		return err
	}

	visible := session.VisibleOptions()
	correct := session.CurrentQuestion().CorrectAnswer
	epoch, index := session.Epoch, session.CurrentIndex

	time.AfterFunc(that.timing.LifelineDelay, func() {
		that.rngMu.Lock()
		votes := millionaire.SimulateAudienceVote(visible, correct, that.rng)
		that.rngMu.Unlock()

		lock := that.sessionLock(sessionID)
		lock.Lock()
		defer lock.Unlock()

		if current, ok := that.sessions.Get(sessionID); ok {
			current.ResolveAudiencePoll(epoch, index, votes)
		}
	})

	return nil
}

func (that *gamePlayService) openPhoneFriend(sessionID string, session *entity.Session) error {
	if err := session.OpenPhoneFriend(); err != nil {
		return err
	}

	visible := session.VisibleOptions()
	correct := session.CurrentQuestion().CorrectAnswer
	epoch, index := session.Epoch, session.CurrentIndex

	time.AfterFunc(that.timing.LifelineDelay, func() {
		that.rngMu.Lock()
		answer := millionaire.SimulatePhoneFriend(visible, correct, that.rng)
		that.rngMu.Unlock()

		lock := that.sessionLock(sessionID)
		lock.Lock()
		defer lock.Unlock()

		if current, ok := that.sessions.Get(sessionID); ok {
			current.ResolvePhoneFriend(epoch, index, answer)
		}
	})

	return nil
}

func (that *gamePlayService) DismissPoll(sessionID string) {
	lock := that.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if session, ok := that.sessions.Get(sessionID); ok {
		session.DismissPoll()
	}
}

func (that *gamePlayService) DismissFriend(sessionID string) {
	lock := that.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if session, ok := that.sessions.Get(sessionID); ok {
		session.DismissFriend()
	}
}

// Reset - any state -> START. The seen-sentence record is untouched.
func (that *gamePlayService) Reset(sessionID string) {
	lock := that.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	that.sessions.GetOrCreate(sessionID).Reset()
}

// Snapshot returns a consistent view of the session for rendering.
func (that *gamePlayService) Snapshot(sessionID string) GameSnapshot {
	lock := that.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session := that.sessions.GetOrCreate(sessionID)

	snapshot := GameSnapshot{
		Status:          session.Status,
		LanguageCode:    session.LanguageCode,
		Difficulty:      session.Difficulty,
		CurrentIndex:    session.CurrentIndex,
		TotalQuestions:  entity.TotalQuestions,
		QuestionsLoaded: len(session.Questions),
		Waiting:         session.IsWaiting(),
		Lifelines:       session.Lifelines,
		PrizeLevels:     entity.PrizeLevels,
		SelectedAnswer:  session.SelectedAnswer,
		AnswerState:     session.AnswerState,
		Poll:            session.Poll,
		Friend:          session.Friend,
	}

	if len(session.HiddenAnswers) > 0 {
		snapshot.HiddenAnswers = append([]string{}, session.HiddenAnswers...)
	}

	if question := session.CurrentQuestion(); question != nil {
		snapshot.Question = &QuestionView{
			ID:             question.ID,
			PromptSentence: question.PromptSentence,
			Options:        append([]string{}, question.Options...),
		}

		revealed := session.AnswerState == entity.AnswerCorrect ||
			session.AnswerState == entity.AnswerIncorrect ||
			session.Status == entity.StatusLost
		if revealed {
			snapshot.CorrectAnswer = question.CorrectAnswer
		}
	}

	return snapshot
}

func (that *gamePlayService) recordSeen(ctx context.Context, sentence string) {
	if err := that.seenRepo.Record(ctx, sentence); err != nil {
		that.logger.Error("failed to record seen sentence", "error", err)
	}
}
