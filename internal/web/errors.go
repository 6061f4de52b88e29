package web

// errors.go turns handler errors into responses.
//
// The technical error is logged with the request ID; the client gets the
// mapped user message, as an HTMX fragment, JSON, or plain text depending on
// who asked.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/trendboard/internal/errmsg"
	"github.com/JonMunkholm/trendboard/internal/logging"
	"github.com/JonMunkholm/trendboard/internal/view"
	"github.com/JonMunkholm/trendboard/internal/web/templates"
)

var errRateLimited = errors.New("rate limit exceeded")

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a view error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, view.ErrViewNotFound):
		return http.StatusNotFound
	case errors.Is(err, view.ErrUnknownRow):
		return http.StatusNotFound
	case errors.Is(err, view.ErrNotReady):
		return http.StatusConflict
	case errors.Is(err, view.ErrUnmounted):
		return http.StatusGone
	case errors.Is(err, view.ErrTooManyViews):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing message for it.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := errmsg.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
	)

	respondUserError(w, r, msg, statusCode)
}

func respondUserError(w http.ResponseWriter, r *http.Request, msg errmsg.UserMessage, statusCode int) {
	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusCode)
		templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
	case wantsJSON(r):
		writeJSON(w, statusCode, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
	default:
		http.Error(w, msg.Message+" ("+msg.Code+")", statusCode)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client prefers JSON. API routes always do.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
