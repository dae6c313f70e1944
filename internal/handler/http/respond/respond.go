// Package respond writes JSON responses and keeps internal error detail out of them.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// JSON writes v with the given status. A nil v sends headers only.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode JSON response",
			slog.Int("status_code", code),
			slog.Any("error", err))
	}
}

// AppError pairs a message that is safe to show with the underlying cause.
type AppError struct {
	Code    int
	UserMsg string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.UserMsg
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError builds an AppError.
func NewAppError(code int, userMsg string, err error) *AppError {
	return &AppError{Code: code, UserMsg: userMsg, Err: err}
}

// clientFacing are message fragments that describe a caller mistake and can
// be echoed back on 4xx responses.
var clientFacing = []string{
	"required",
	"invalid",
	"not found",
	"must be",
	"too long",
	"too large",
}

// SafeError writes {"error": msg}. An AppError shows its UserMsg with its own
// code. Other errors are shown only for 4xx codes whose message looks like a
// validation problem; everything else is logged sanitized and reported as
// "internal server error".
func SafeError(w http.ResponseWriter, code int, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Err != nil {
			slog.Default().Error("request failed",
				slog.Int("code", appErr.Code),
				slog.String("user_message", appErr.UserMsg),
				slog.String("error", SanitizeError(appErr.Err)))
		}
		JSON(w, appErr.Code, map[string]string{"error": appErr.UserMsg})
		return
	}

	if code < 500 && isClientFacing(err.Error()) {
		JSON(w, code, map[string]string{"error": err.Error()})
		return
	}

	slog.Default().Error("internal server error",
		slog.Int("code", code),
		slog.String("error", SanitizeError(err)))
	JSON(w, code, map[string]string{"error": "internal server error"})
}

func isClientFacing(msg string) bool {
	lower := strings.ToLower(msg)
	for _, frag := range clientFacing {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}
