package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sprachquiz/millionaire-backend/internal/apperror"
	"github.com/sprachquiz/millionaire-backend/internal/entity"
)

func (that *Server) handlePing(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
	if _, err := writer.Write([]byte("pong")); err != nil {
		http.Error(writer, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

func (that *Server) handleState(writer http.ResponseWriter, req *http.Request) {
	that.writeJSON(writer, http.StatusOK, that.gamePlay.Snapshot(sessionID(req)))
}

func (that *Server) handleStart(writer http.ResponseWriter, req *http.Request) {
	var payload startRequest
	if err := decodeBody(req, &payload); err != nil {
		that.writeError(writer, http.StatusBadRequest, err)
		return
	}

	if err := that.gamePlay.StartGame(req.Context(), sessionID(req), payload.TargetLanguage, payload.Difficulty); err != nil {
		that.writeError(writer, statusForError(err), err)
		return
	}

	that.writeJSON(writer, http.StatusOK, that.gamePlay.Snapshot(sessionID(req)))
}

func (that *Server) handleAnswer(writer http.ResponseWriter, req *http.Request) {
	var payload answerRequest
	if err := decodeBody(req, &payload); err != nil {
		that.writeError(writer, http.StatusBadRequest, err)
		return
	}

	if err := that.gamePlay.Answer(req.Context(), sessionID(req), payload.Answer); err != nil {
		that.writeError(writer, statusForError(err), err)
		return
	}

	that.writeJSON(writer, http.StatusOK, that.gamePlay.Snapshot(sessionID(req)))
}

func (that *Server) handleLifeline(writer http.ResponseWriter, req *http.Request) {
	lifeline := chi.URLParam(req, "type")

	if err := that.gamePlay.UseLifeline(req.Context(), sessionID(req), lifeline); err != nil {
		that.writeError(writer, statusForError(err), err)
		return
	}

	that.writeJSON(writer, http.StatusOK, that.gamePlay.Snapshot(sessionID(req)))
}

func (that *Server) handleDismissPoll(writer http.ResponseWriter, req *http.Request) {
	that.gamePlay.DismissPoll(sessionID(req))
	that.writeJSON(writer, http.StatusOK, that.gamePlay.Snapshot(sessionID(req)))
}

func (that *Server) handleDismissFriend(writer http.ResponseWriter, req *http.Request) {
	that.gamePlay.DismissFriend(sessionID(req))
	that.writeJSON(writer, http.StatusOK, that.gamePlay.Snapshot(sessionID(req)))
}

func (that *Server) handleReset(writer http.ResponseWriter, req *http.Request) {
	that.gamePlay.Reset(sessionID(req))
	that.writeJSON(writer, http.StatusOK, that.gamePlay.Snapshot(sessionID(req)))
}

func (that *Server) handleSpeech(writer http.ResponseWriter, req *http.Request) {
	text := req.URL.Query().Get("text")
	if text == "" {
		that.writeError(writer, http.StatusBadRequest, errors.New("text parameter required"))
		return
	}

	audio, mimeType, err := that.speech.Synthesize(req.Context(), text)
	if err != nil {
		if errors.Is(err, apperror.ErrSpeechUnavailable) {
			that.writeError(writer, http.StatusServiceUnavailable, err)
			return
		}

		that.logger.Error("speech synthesis failed", "error", err)
		that.writeError(writer, http.StatusBadGateway, apperror.ErrSpeech)
		return
	}

	writer.Header().Set("Content-Type", mimeType)
	writer.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err = writer.Write(audio); err != nil {
		that.logger.Error("failed to write audio response", "error", err)
	}
}

// decodeBody parses an optional JSON body; an empty body leaves the defaults.
func decodeBody(req *http.Request, v any) error {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, v)
}

// statusForError maps the error taxonomy onto HTTP statuses: validation
// mistakes are 400, rejected game actions 409, a failed initial generation
// 502.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperror.ErrGenerationShortfall):
		return http.StatusBadGateway
	case errors.Is(err, entity.ErrInvalidDifficulty),
		errors.Is(err, entity.ErrUnknownLanguage),
		errors.Is(err, apperror.ErrAnswerNotOption),
		errors.Is(err, apperror.ErrLifelineUnknown):
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

func (that *Server) writeJSON(writer http.ResponseWriter, status int, v any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)

	if err := json.NewEncoder(writer).Encode(v); err != nil {
		that.logger.Error("failed to encode response", "error", err)
	}
}

func (that *Server) writeError(writer http.ResponseWriter, status int, err error) {
	that.writeJSON(writer, status, errorResponse{Error: err.Error()})
}
