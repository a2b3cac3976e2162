package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/sprachquiz/millionaire-backend/internal/provider"
	"github.com/sprachquiz/millionaire-backend/internal/service"
)

type contextKey string

const sessionIDKey contextKey = "sessionID"

const sessionCookieName = "session_id"

type gamePlayService interface {
	StartGame(ctx context.Context, sessionID, languageCode, difficulty string) error
	Answer(ctx context.Context, sessionID, answer string) error
	UseLifeline(ctx context.Context, sessionID, lifeline string) error
	DismissPoll(sessionID string)
	DismissFriend(sessionID string)
	Reset(sessionID string)
	Snapshot(sessionID string) service.GameSnapshot
}

// Server exposes the game session and speech synthesis to the browser UI as a
// JSON API, one session per cookie.
type Server struct {
	logger   *slog.Logger
	gamePlay gamePlayService
	speech   provider.SpeechProvider
}

func New(logger *slog.Logger, gamePlay gamePlayService, speech provider.SpeechProvider) *Server {
	return &Server{
		logger:   logger,
		gamePlay: gamePlay,
		speech:   speech,
	}
}

// Start - starts the HTTP server and shuts it down when ctx is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shut down HTTP server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Router builds the route tree. Exposed separately so tests can drive it with
// httptest.
func (that *Server) Router() http.Handler {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(_ *http.Request, _ string) bool { return true },
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	router.Get("/ping", that.handlePing)

	router.Route("/api", func(api chi.Router) {
		api.Use(that.withSession)

		api.Route("/game", func(game chi.Router) {
			game.Get("/state", that.handleState)
			game.Post("/start", that.handleStart)
			game.Post("/answer", that.handleAnswer)
			game.Post("/lifeline/{type}", that.handleLifeline)
			game.Post("/poll/dismiss", that.handleDismissPoll)
			game.Post("/friend/dismiss", that.handleDismissFriend)
			game.Post("/reset", that.handleReset)
		})

		api.Get("/speech", that.handleSpeech)
	})

	return router
}

// withSession assigns a session cookie on first contact and threads the ID
// through the request context.
func (that *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
		cookie, err := req.Cookie(sessionCookieName)
		if err != nil || cookie.Value == "" {
			cookie = &http.Cookie{
				Name:     sessionCookieName,
				Value:    uuid.NewString(),
				Expires:  time.Now().Add(24 * time.Hour),
				Path:     "/",
				HttpOnly: true,
			}
			http.SetCookie(writer, cookie)
		}

		ctx := context.WithValue(req.Context(), sessionIDKey, cookie.Value)
		next.ServeHTTP(writer, req.WithContext(ctx))
	})
}

func sessionID(req *http.Request) string {
	id, _ := req.Context().Value(sessionIDKey).(string)
	return id
}
