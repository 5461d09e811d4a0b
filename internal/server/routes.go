package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lazypower/habits/internal/commands"
	apperr "github.com/lazypower/habits/internal/errors"
)

// maxArgsBytes bounds the request body of an invoke call.
const maxArgsBytes = 64 << 10

func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"commands": s.commands.Commands()})
}

// handleInvoke runs one command with the request body as its JSON
// arguments object and writes the result as JSON.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "command")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxArgsBytes))
	if err != nil {
		s.writeError(w, name, apperr.BadRequestf("read body: %v", err))
		return
	}

	result, err := s.commands.Invoke(r.Context(), name, body)
	if err != nil {
		s.writeError(w, name, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeError(w http.ResponseWriter, command string, err error) {
	code, kind := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.log.Error("command failed", zap.String("command", command), zap.String("kind", kind), zap.Error(err))
	}
	if apperr.IsFatal(err) && s.onFatal != nil {
		s.onFatal(err)
	}
	writeJSON(w, code, map[string]string{
		"error": err.Error(),
		"kind":  kind,
	})
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) (int, string) {
	if errors.Is(err, commands.ErrUnknownCommand) {
		return http.StatusNotFound, "UnknownCommand"
	}
	kind := apperr.Kind(err)
	switch kind {
	case "BadRequest":
		return http.StatusBadRequest, kind
	case "UserMissing", "ConstraintViolated":
		return http.StatusConflict, kind
	case "StoreBusy":
		return http.StatusServiceUnavailable, kind
	default:
		return http.StatusInternalServerError, kind
	}
}
