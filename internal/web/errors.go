package web

// errors.go provides unified error response handling for the web layer.
//
// Errors are logged server-side with full technical detail and the request
// id, then mapped via core.MapError to a user-friendly message with a
// support code. API routes answer JSON; pages answer an HTML error page.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/impact-tracker/internal/core"
	"github.com/JonMunkholm/impact-tracker/internal/logging"
	"github.com/JonMunkholm/impact-tracker/internal/web/templates"
)

var (
	errMissingSubProject = errors.New("subProject query parameter is required")
	errInvalidLimit      = errors.New("invalid limit")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// DataResponse wraps successful API payloads. Data is always present and
// may be null.
type DataResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// statusFor picks the HTTP status of a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownSource):
		return http.StatusNotFound
	case errors.Is(err, core.ErrSyncInProgress):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error and returns the mapped user message.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= 500 {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request rejected", attrs...)
	}

	if wantsJSON(r) {
		writeJSON(w, r, statusCode, ErrorResponse{
			Success: false,
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	templates.ErrorPage(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w)
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
