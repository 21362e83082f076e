package web

// errors.go provides unified error and outcome rendering. Engine errors are
// mapped to user-facing messages with codes; technical detail goes to the
// structured log, keyed by request id.

import (
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/tastemap/console/internal/engine"
)

// ErrorResponse is the JSON shape of API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs the technical error and renders its user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := engine.MapError(err)

	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", chimw.GetReqID(r.Context()),
	)

	respondJSON(w, statusCode, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// statusForError picks an HTTP status for a session-layer error.
func statusForError(err error) int {
	switch {
	case err == engine.ErrRowBusy:
		return http.StatusConflict
	case err == engine.ErrUnknownRow:
		return http.StatusNotFound
	case err == engine.ErrEditInProgress, err == engine.ErrEmptySelection,
		err == engine.ErrNotEditing, err == engine.ErrAlreadyDecided:
		return http.StatusConflict
	default:
		if _, ok := err.(*engine.FieldError); ok {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	}
}

// statusForOutcome picks an HTTP status for a coordinator outcome.
// Busy outcomes are 409s the UI silently ignores: they represent a race the
// user caused by double-clicking, not an error worth showing.
func statusForOutcome(out engine.Outcome) int {
	switch out.Status {
	case engine.OutcomeOK, engine.OutcomeNoChange:
		return http.StatusOK
	case engine.OutcomeInvalid:
		return http.StatusUnprocessableEntity
	case engine.OutcomeBusy, engine.OutcomeConflict, engine.OutcomeAlreadyDecided:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}
