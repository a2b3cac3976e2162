package entity

import (
	"fmt"

	"github.com/sprachquiz/millionaire-backend/internal/apperror"
)

const (
	TotalQuestions = 15
	InitialBatch   = 3

	// SwitchMinIndex is the first question index (the 8th question) at which
	// the switch-question lifeline becomes actionable.
	SwitchMinIndex = 7
)

const (
	StatusStart   = "start"
	StatusLoading = "loading"
	StatusPlaying = "playing"
	StatusWon     = "game_over_win"
	StatusLost    = "game_over_lose"
)

const (
	AnswerDefault   = "default"
	AnswerSelected  = "selected"
	AnswerCorrect   = "correct"
	AnswerIncorrect = "incorrect"
)

const (
	LifelineFiftyFifty     = "fifty-fifty"
	LifelineAskAudience    = "ask-audience"
	LifelinePhoneFriend    = "phone-friend"
	LifelineSwitchQuestion = "switch-question"
)

// PrizeLevels lists the prize for each of the fifteen questions, lowest first.
// Levels 5, 10 and 15 are the safe havens.
var PrizeLevels = []string{
	"100", "200", "300", "500", "1,000",
	"2,000", "4,000", "8,000", "16,000", "32,000",
	"64,000", "125,000", "250,000", "500,000", "1,000,000",
}

// Lifelines tracks which single-use aids are still available this session.
type Lifelines struct {
	FiftyFifty     bool `json:"fifty_fifty"`
	AskAudience    bool `json:"ask_audience"`
	PhoneFriend    bool `json:"phone_friend"`
	SwitchQuestion bool `json:"switch_question"`
}

func NewLifelines() Lifelines {
	return Lifelines{FiftyFifty: true, AskAudience: true, PhoneFriend: true, SwitchQuestion: true}
}

// PollState is the transient ask-the-audience overlay state.
type PollState struct {
	Open    bool           `json:"open"`
	Pending bool           `json:"pending"`
	Votes   map[string]int `json:"votes,omitempty"`
}

// FriendState is the transient phone-a-friend overlay state.
type FriendState struct {
	Open    bool   `json:"open"`
	Pending bool   `json:"pending"`
	Answer  string `json:"answer,omitempty"`
}

// Session owns one play-through: the growing question sequence, the cursor
// into it, lifeline availability and the per-question transient state. It is
// plain data plus transitions; serialization of access is the caller's job.
type Session struct {
	ID    string
	Epoch int

	Status         string
	LanguageCode   string
	TargetLanguage string
	Difficulty     string

	Questions    []*Question
	CurrentIndex int

	Lifelines      Lifelines
	HiddenAnswers  []string
	SelectedAnswer string
	AnswerState    string
	Processing     bool

	Poll   PollState
	Friend FriendState
}

func NewSession(id string) *Session {
	return &Session{
		ID:          id,
		Status:      StatusStart,
		AnswerState: AnswerDefault,
		Lifelines:   NewLifelines(),
	}
}

func (that *Session) IsStart() bool   { return that.Status == StatusStart }
func (that *Session) IsLoading() bool { return that.Status == StatusLoading }
func (that *Session) IsPlaying() bool { return that.Status == StatusPlaying }

func (that *Session) IsFinished() bool {
	return that.Status == StatusWon || that.Status == StatusLost
}

// CurrentQuestion returns nil while the background fetch has not yet delivered
// the question at the cursor.
func (that *Session) CurrentQuestion() *Question {
	if that.CurrentIndex >= len(that.Questions) {
		return nil
	}
	return that.Questions[that.CurrentIndex]
}

// IsWaiting reports that play has outrun the loaded questions.
func (that *Session) IsWaiting() bool {
	return that.IsPlaying() && that.CurrentQuestion() == nil
}

// VisibleOptions returns the current question's options minus any hidden by
// fifty-fifty.
func (that *Session) VisibleOptions() []string {
	question := that.CurrentQuestion()
	if question == nil {
		return nil
	}

	visible := make([]string, 0, len(question.Options))
	for _, option := range question.Options {
		if !that.isHidden(option) {
			visible = append(visible, option)
		}
	}
	return visible
}

func (that *Session) isHidden(option string) bool {
	for _, hidden := range that.HiddenAnswers {
		if hidden == option {
			return true
		}
	}
	return false
}

// BeginLoading - START -> LOADING. Bumps the epoch so completions belonging to
// any earlier attempt are discarded.
func (that *Session) BeginLoading(languageCode, targetLanguage, difficulty string) error {
	if !that.IsStart() {
		return fmt.Errorf("%w: status %s", apperror.ErrGameAlreadyStarted, that.Status)
	}

	that.Epoch++
	that.Status = StatusLoading
	that.LanguageCode = languageCode
	that.TargetLanguage = targetLanguage
	that.Difficulty = difficulty

	return nil
}

// AbortLoading reverts a failed initial fetch back to START.
func (that *Session) AbortLoading(epoch int) {
	if that.Epoch != epoch || !that.IsLoading() {
		return
	}
	that.Status = StatusStart
}

// BeginPlaying - LOADING -> PLAYING with the initial question batch.
func (that *Session) BeginPlaying(epoch int, questions []*Question) error {
	if that.Epoch != epoch || !that.IsLoading() {
		return fmt.Errorf("%w: status %s", apperror.ErrGameIsNotStarted, that.Status)
	}

	that.Questions = questions
	that.CurrentIndex = 0
	that.Status = StatusPlaying

	return nil
}

// AppendQuestions merges a background batch, dropping any question whose
// prompt sentence is already present. Already-visible questions are never
// reordered. Returns how many were appended.
func (that *Session) AppendQuestions(epoch int, more []*Question) int {
	if that.Epoch != epoch {
		return 0
	}

	existing := make(map[string]struct{}, len(that.Questions))
	for _, question := range that.Questions {
		existing[question.PromptSentence] = struct{}{}
	}

	appended := 0
	for _, question := range more {
		if _, ok := existing[question.PromptSentence]; ok {
			continue
		}
		existing[question.PromptSentence] = struct{}{}
		that.Questions = append(that.Questions, question)
		appended++
	}

	return appended
}

// SelectAnswer starts answer evaluation. Further selections and lifelines are
// rejected until the reveal completes.
func (that *Session) SelectAnswer(answer string) error {
	if !that.IsPlaying() {
		return fmt.Errorf("%w: status %s", apperror.ErrGameIsNotStarted, that.Status)
	}
	if that.Processing {
		return apperror.ErrSessionBusy
	}

	question := that.CurrentQuestion()
	if question == nil {
		return apperror.ErrQuestionNotReady
	}
	if !question.HasOption(answer) {
		return fmt.Errorf("%w: %q", apperror.ErrAnswerNotOption, answer)
	}
	if that.isHidden(answer) {
		return fmt.Errorf("%w: %q", apperror.ErrAnswerHidden, answer)
	}

	that.Processing = true
	that.SelectedAnswer = answer
	that.AnswerState = AnswerSelected

	return nil
}

// RevealAnswer flips the selected answer to correct/incorrect after the
// reveal delay. Reports whether the selection was correct.
func (that *Session) RevealAnswer(epoch, index int) (bool, bool) {
	if that.Epoch != epoch || that.CurrentIndex != index || !that.IsPlaying() {
		return false, false
	}
	if that.AnswerState != AnswerSelected {
		return false, false
	}

	question := that.CurrentQuestion()
	correct := that.SelectedAnswer == question.CorrectAnswer
	if correct {
		that.AnswerState = AnswerCorrect
	} else {
		that.AnswerState = AnswerIncorrect
	}

	return correct, true
}

// CompleteCorrect advances past a correctly answered question, or wins the
// game on the last one. Transient per-question state is cleared on advance.
func (that *Session) CompleteCorrect(epoch, index int) {
	if that.Epoch != epoch || that.CurrentIndex != index || !that.IsPlaying() {
		return
	}
	if that.AnswerState != AnswerCorrect {
		return
	}

	if that.CurrentIndex >= TotalQuestions-1 {
		that.Status = StatusWon
		that.Processing = false
		return
	}

	that.CurrentIndex++
	that.clearTransient()
}

// CompleteIncorrect - PLAYING -> GAME_OVER_LOSE after the lose reveal delay.
func (that *Session) CompleteIncorrect(epoch, index int) {
	if that.Epoch != epoch || that.CurrentIndex != index || !that.IsPlaying() {
		return
	}
	if that.AnswerState != AnswerIncorrect {
		return
	}

	that.Status = StatusLost
	that.Processing = false
}

func (that *Session) clearTransient() {
	that.HiddenAnswers = nil
	that.SelectedAnswer = ""
	that.AnswerState = AnswerDefault
	that.Processing = false
	that.Poll = PollState{}
	that.Friend = FriendState{}
}

// guardLifeline - common rejection rules: must be mid-play, not evaluating an
// answer, question loaded, flag still available.
func (that *Session) guardLifeline(available bool) error {
	switch {
	case !that.IsPlaying():
		return fmt.Errorf("%w: status %s", apperror.ErrGameIsNotStarted, that.Status)
	case that.Processing:
		return apperror.ErrSessionBusy
	case !available:
		return apperror.ErrLifelineConsumed
	case that.CurrentQuestion() == nil:
		return apperror.ErrQuestionNotReady
	default:
		return nil
	}
}

// ApplyFiftyFifty consumes the flag and hides the two given options. The
// caller computes them from the current question's distractors.
func (that *Session) ApplyFiftyFifty(hidden []string) error {
	if err := that.guardLifeline(that.Lifelines.FiftyFifty); err != nil {
		return err
	}

	that.Lifelines.FiftyFifty = false
	that.HiddenAnswers = hidden

	return nil
}

// OpenAudiencePoll consumes the flag and shows the overlay in pending state.
func (that *Session) OpenAudiencePoll() error {
	if err := that.guardLifeline(that.Lifelines.AskAudience); err != nil {
		return err
	}

	that.Lifelines.AskAudience = false
	that.Poll = PollState{Open: true, Pending: true}

	return nil
}

// ResolveAudiencePoll delivers the simulated vote unless the player already
// left the question or dismissed the overlay.
func (that *Session) ResolveAudiencePoll(epoch, index int, votes map[string]int) {
	if that.Epoch != epoch || that.CurrentIndex != index || !that.IsPlaying() {
		return
	}
	if !that.Poll.Open || !that.Poll.Pending {
		return
	}

	that.Poll.Pending = false
	that.Poll.Votes = votes
}

func (that *Session) DismissPoll() {
	that.Poll = PollState{}
}

// OpenPhoneFriend consumes the flag and shows the overlay in thinking state.
func (that *Session) OpenPhoneFriend() error {
	if err := that.guardLifeline(that.Lifelines.PhoneFriend); err != nil {
		return err
	}

	that.Lifelines.PhoneFriend = false
	that.Friend = FriendState{Open: true, Pending: true}

	return nil
}

// ResolvePhoneFriend delivers the friend's answer unless stale or dismissed.
func (that *Session) ResolvePhoneFriend(epoch, index int, answer string) {
	if that.Epoch != epoch || that.CurrentIndex != index || !that.IsPlaying() {
		return
	}
	if !that.Friend.Open || !that.Friend.Pending {
		return
	}

	that.Friend.Pending = false
	that.Friend.Answer = answer
}

func (that *Session) DismissFriend() {
	that.Friend = FriendState{}
}

// SwitchQuestion moves the current question to the end of the sequence and
// surfaces the next one at the same index. Only actionable from the 8th
// question onward and only when spare questions exist beyond the fixed game
// length; the flag is NOT consumed on a rejected invocation.
func (that *Session) SwitchQuestion() error {
	if err := that.guardLifeline(that.Lifelines.SwitchQuestion); err != nil {
		return err
	}

	if that.CurrentIndex < SwitchMinIndex || len(that.Questions) <= TotalQuestions {
		return apperror.ErrSwitchNotAvailable
	}

	that.Lifelines.SwitchQuestion = false

	switched := that.Questions[that.CurrentIndex]
	that.Questions = append(that.Questions[:that.CurrentIndex], that.Questions[that.CurrentIndex+1:]...)
	that.Questions = append(that.Questions, switched)

	// everything computed against the switched-away question is void: hidden
	// options, and any poll or friend result still in flight for it
	that.HiddenAnswers = nil
	that.Poll = PollState{}
	that.Friend = FriendState{}

	return nil
}

// Reset - any state -> START. Clears everything session-local; the
// seen-sentence record is deliberately untouched.
func (that *Session) Reset() {
	that.Epoch++
	that.Status = StatusStart
	that.LanguageCode = ""
	that.TargetLanguage = ""
	that.Difficulty = ""
	that.Questions = nil
	that.CurrentIndex = 0
	that.Lifelines = NewLifelines()
	that.clearTransient()
}
