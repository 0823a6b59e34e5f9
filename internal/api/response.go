package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/zapponejosh/fiscal-api/internal/database"
	"github.com/zapponejosh/fiscal-api/internal/fiscal"
)

// validationCodes maps fiscal rule violations to their error codes.
var validationCodes = []struct {
	err  error
	code string
}{
	{fiscal.ErrInvalidStart, "INVALID_FISCAL_START"},
	{fiscal.ErrInvalidWindow, "INVALID_WINDOW"},
	{fiscal.ErrInvalidGranularity, "INVALID_GRANULARITY"},
	{database.ErrInvalidSelection, "INVALID_SELECTION"},
}

// Response represents a standard API response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, status int, message string, code ...string) error {
	errInfo := ErrorInfo{
		Message: message,
	}
	if len(code) > 0 {
		errInfo.Code = code[0]
	}

	return WriteJSON(w, status, Response{
		Success: false,
		Error:   &errInfo,
	})
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusNotFound, message, "NOT_FOUND")
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusBadRequest, message, "BAD_REQUEST")
}

// ValidationCode returns the error code for a fiscal rule violation, or ""
// if err is not one.
func ValidationCode(err error) string {
	for _, v := range validationCodes {
		if errors.Is(err, v.err) {
			return v.code
		}
	}
	return ""
}

// IsValidationError reports whether err is a fiscal rule violation.
func IsValidationError(err error) bool {
	return ValidationCode(err) != ""
}

// WriteValidationError writes a 400 response for input that parsed but
// broke a fiscal rule.
func WriteValidationError(w http.ResponseWriter, err error) error {
	code := ValidationCode(err)
	if code == "" {
		code = "VALIDATION_FAILED"
	}
	return WriteError(w, http.StatusBadRequest, err.Error(), code)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusInternalServerError, message, "INTERNAL_ERROR")
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusUnauthorized, message, "UNAUTHORIZED")
}
