package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sprachquiz/millionaire-backend/internal/config"
	"github.com/sprachquiz/millionaire-backend/internal/provider"
	"github.com/sprachquiz/millionaire-backend/internal/repository"
	"github.com/sprachquiz/millionaire-backend/internal/repository/storage"
	"github.com/sprachquiz/millionaire-backend/internal/service"
	"github.com/sprachquiz/millionaire-backend/transport/rest"
)

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	// the seen-sentence record is the only durable state; without redis it
	// degrades to process memory
	var seenRepo repository.SeenSentenceRepository
	if conf.Redis.Host == "" {
		log.Warn("redis is not configured, seen sentences will not survive restarts")
		seenRepo = repository.NewMemorySeenSentenceRepository()
	} else {
		redisStorage, err := storage.New(ctx, conf.Redis.GetRedisAddr())
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		seenRepo = repository.NewSeenSentenceRepository(redisStorage)
	}

	questionProvider := provider.NewDeepSeekProvider(logger, conf.DeepSeek)

	var speechProvider provider.SpeechProvider
	if conf.GoogleTTS.APIKey == "" {
		log.Info("text-to-speech is disabled, no API key configured")
		speechProvider = provider.NewDisabledSpeechProvider()
	} else {
		speechProvider = provider.NewGoogleSpeechProvider(logger, conf.GoogleTTS.APIKey)
	}

	sessions := repository.NewSessionStore()
	gamePlay := service.NewGamePlayService(logger, conf.Game, questionProvider, seenRepo, sessions)

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		restServer := rest.New(logger, gamePlay, speechProvider)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	select {
	case err := <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
