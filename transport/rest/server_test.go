package rest

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sprachquiz/millionaire-backend/internal/apperror"
	"github.com/sprachquiz/millionaire-backend/internal/entity"
	"github.com/sprachquiz/millionaire-backend/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type stubGamePlay struct {
	startErr    error
	answerErr   error
	lifelineErr error

	lastSessionID  string
	lastLanguage   string
	lastDifficulty string
	lastAnswer     string
	lastLifeline   string
	resets         int
}

func (that *stubGamePlay) StartGame(_ context.Context, sessionID, languageCode, difficulty string) error {
	that.lastSessionID = sessionID
	that.lastLanguage = languageCode
	that.lastDifficulty = difficulty
	return that.startErr
}

func (that *stubGamePlay) Answer(_ context.Context, sessionID, answer string) error {
	that.lastSessionID = sessionID
	that.lastAnswer = answer
	return that.answerErr
}

func (that *stubGamePlay) UseLifeline(_ context.Context, sessionID, lifeline string) error {
	that.lastSessionID = sessionID
	that.lastLifeline = lifeline
	return that.lifelineErr
}

func (that *stubGamePlay) DismissPoll(sessionID string)   { that.lastSessionID = sessionID }
func (that *stubGamePlay) DismissFriend(sessionID string) { that.lastSessionID = sessionID }

func (that *stubGamePlay) Reset(sessionID string) {
	that.lastSessionID = sessionID
	that.resets++
}

func (that *stubGamePlay) Snapshot(sessionID string) service.GameSnapshot {
	that.lastSessionID = sessionID
	return service.GameSnapshot{Status: entity.StatusStart, AnswerState: entity.AnswerDefault}
}

type stubSpeech struct {
	audio []byte
	err   error
}

func (that *stubSpeech) Synthesize(_ context.Context, _ string) ([]byte, string, error) {
	if that.err != nil {
		return nil, "", that.err
	}
	return that.audio, "audio/mpeg", nil
}

func newTestServer(gamePlay *stubGamePlay, speech *stubSpeech) http.Handler {
	return New(testLogger(), gamePlay, speech).Router()
}

func TestServer_Ping(t *testing.T) {
	router := newTestServer(&stubGamePlay{}, &stubSpeech{})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "pong", recorder.Body.String())
}

func TestServer_SessionCookie(t *testing.T) {
	t.Run("Assigns a session cookie on first contact", func(t *testing.T) {
		gamePlay := &stubGamePlay{}
		router := newTestServer(gamePlay, &stubSpeech{})

		// When: hitting the API without a cookie
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/game/state", nil))

		// Then: a cookie is set and its value is the session ID used
		require.Equal(t, http.StatusOK, recorder.Code)

		cookies := recorder.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, sessionCookieName, cookies[0].Name)
		assert.Equal(t, cookies[0].Value, gamePlay.lastSessionID)
		assert.NotEmpty(t, gamePlay.lastSessionID)
	})

	t.Run("Reuses an existing session cookie", func(t *testing.T) {
		gamePlay := &stubGamePlay{}
		router := newTestServer(gamePlay, &stubSpeech{})

		// When: hitting the API with a cookie already set
		req := httptest.NewRequest(http.MethodGet, "/api/game/state", nil)
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: "existing-session"})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		// Then: the same session is addressed and no new cookie is issued
		assert.Equal(t, "existing-session", gamePlay.lastSessionID)
		assert.Empty(t, recorder.Result().Cookies())
	})
}

func TestServer_Start(t *testing.T) {
	t.Run("Passes language and difficulty through", func(t *testing.T) {
		gamePlay := &stubGamePlay{}
		router := newTestServer(gamePlay, &stubSpeech{})

		body := strings.NewReader(`{"target_language": "tr", "difficulty": "A2"}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/game/start", body))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "tr", gamePlay.lastLanguage)
		assert.Equal(t, "A2", gamePlay.lastDifficulty)
		assert.Contains(t, recorder.Body.String(), entity.StatusStart)
	})

	t.Run("An empty body starts with defaults", func(t *testing.T) {
		gamePlay := &stubGamePlay{}
		router := newTestServer(gamePlay, &stubSpeech{})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/game/start", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Empty(t, gamePlay.lastLanguage)
		assert.Empty(t, gamePlay.lastDifficulty)
	})

	t.Run("Maps the error taxonomy onto statuses", func(t *testing.T) {
		cases := []struct {
			name   string
			err    error
			status int
		}{
			{"validation errors are 400", entity.ErrUnknownLanguage, http.StatusBadRequest},
			{"rejected actions are 409", apperror.ErrGameAlreadyStarted, http.StatusConflict},
			{"generation shortfalls are 502", apperror.ErrGenerationShortfall, http.StatusBadGateway},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				router := newTestServer(&stubGamePlay{startErr: tc.err}, &stubSpeech{})

				recorder := httptest.NewRecorder()
				router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/game/start", nil))

				assert.Equal(t, tc.status, recorder.Code)
				assert.Contains(t, recorder.Body.String(), "error")
			})
		}
	})
}

func TestServer_Answer(t *testing.T) {
	gamePlay := &stubGamePlay{}
	router := newTestServer(gamePlay, &stubSpeech{})

	body := strings.NewReader(`{"answer": "Ich bin hungrig"}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/game/answer", body))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "Ich bin hungrig", gamePlay.lastAnswer)
}

func TestServer_Lifeline(t *testing.T) {
	t.Run("Routes the lifeline type from the path", func(t *testing.T) {
		gamePlay := &stubGamePlay{}
		router := newTestServer(gamePlay, &stubSpeech{})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/game/lifeline/fifty-fifty", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, entity.LifelineFiftyFifty, gamePlay.lastLifeline)
	})

	t.Run("An unknown lifeline is a 400", func(t *testing.T) {
		router := newTestServer(&stubGamePlay{lifelineErr: apperror.ErrLifelineUnknown}, &stubSpeech{})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/game/lifeline/double-dip", nil))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestServer_Reset(t *testing.T) {
	gamePlay := &stubGamePlay{}
	router := newTestServer(gamePlay, &stubSpeech{})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/game/reset", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, 1, gamePlay.resets)
}

func TestServer_Speech(t *testing.T) {
	t.Run("Streams the synthesized audio", func(t *testing.T) {
		router := newTestServer(&stubGamePlay{}, &stubSpeech{audio: []byte("mp3 bytes")})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/speech?text=Die+Katze", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "audio/mpeg", recorder.Header().Get("Content-Type"))
		assert.Equal(t, "mp3 bytes", recorder.Body.String())
	})

	t.Run("Missing text is a 400", func(t *testing.T) {
		router := newTestServer(&stubGamePlay{}, &stubSpeech{})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/speech", nil))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Disabled synthesis is a 503", func(t *testing.T) {
		router := newTestServer(&stubGamePlay{}, &stubSpeech{err: apperror.ErrSpeechUnavailable})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/speech?text=Die+Katze", nil))

		assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	})

	t.Run("A synthesis failure is a 502", func(t *testing.T) {
		router := newTestServer(&stubGamePlay{}, &stubSpeech{err: apperror.ErrSpeech})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/speech?text=Die+Katze", nil))

		assert.Equal(t, http.StatusBadGateway, recorder.Code)
	})
}
