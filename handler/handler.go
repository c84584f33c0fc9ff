package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"brandvoice-chat/internal/integrations/anthropic"
	"brandvoice-chat/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"
	maxBodyBytes      = 8 << 20

	msgMethodNotAllowed = "Method not allowed"
)

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (io.ReadCloser, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the chat endpoint: validation, one upstream call, and a
// verbatim relay of the upstream event stream.
type Handler struct {
	chat ChatUseCase
}

func NewHandler(chat ChatUseCase) (*Handler, error) {
	if chat == nil {
		return nil, errors.New("handler: chat use case must not be nil")
	}
	return &Handler{chat: chat}, nil
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	corrID := correlationID(r.Header)
	log := slog.With("correlation_id", corrID)
	w := newResponseWriter(rw)
	w.Header().Set(correlationHeader, corrID)

	defer func() {
		if v := recover(); v != nil {
			log.Error("chat handler panic", "panic", v)
			w.fail()
		}
	}()

	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed})
		return
	}

	stream, err := h.chat.Chat(r.Context(), usecase.ChatInput{Body: http.MaxBytesReader(w, r.Body, maxBodyBytes)})
	if err != nil {
		writeUseCaseError(w, log, err)
		return
	}
	defer func() { _ = stream.Close() }()

	if err := relay(w, stream); err != nil {
		log.Error("chat stream aborted", "err", err)
		w.fail()
	}
}

func writeUseCaseError(w *responseWriter, log *slog.Logger, err error) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		log.Error("chat handler error", "err", err)
		w.fail()
		return
	}

	status := http.StatusInternalServerError
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		status = http.StatusBadRequest
	case usecase.ErrorUpstream:
		status = http.StatusBadGateway
		var statusErr *anthropic.HTTPStatusError
		if errors.As(err, &statusErr) {
			log.Error("anthropic API error", "status", statusErr.StatusCode, "body", statusErr.Body)
		}
	case usecase.ErrorNotConfigured:
		log.Error("anthropic API key unavailable", "reason", ucErr.Reason, "err", ucErr.Err)
	default:
		log.Error("chat handler error", "reason", ucErr.Reason, "err", err)
		w.fail()
		return
	}
	writeJSON(w, status, errorResponse{Error: ucErr.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func correlationID(h http.Header) string {
	if id := strings.TrimSpace(h.Get(correlationHeader)); id != "" {
		return id
	}
	return uuid.NewString()
}
