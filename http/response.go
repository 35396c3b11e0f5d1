package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sagarc03/bucketgate"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// UploadResponse is returned after a successful upload
type UploadResponse struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// BucketsResponse lists the buckets visible to the caller
type BucketsResponse struct {
	Success bool                      `json:"success"`
	Buckets []bucketgate.PublicBucket `json:"buckets"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Success: false,
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type
func HandleError(w http.ResponseWriter, err error) {
	var (
		conflictErr *bucketgate.ConflictError
		backendErr  *bucketgate.BackendError
		maxBytesErr *http.MaxBytesError
	)

	switch {
	case errors.As(err, &maxBytesErr):
		slog.Warn("request error", "error", err)
		WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "File exceeds the maximum upload size")

	case errors.Is(err, ErrBucketRequired), errors.Is(err, ErrFileRequired), errors.Is(err, ErrPathRequired):
		slog.Warn("request error", "error", err)
		WriteError(w, http.StatusBadRequest, "invalid_input", capitalize(err.Error()))

	case errors.Is(err, bucketgate.ErrInvalidInput):
		slog.Warn("request error", "error", err)
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid input")

	case errors.Is(err, bucketgate.ErrPathNotAllowed):
		slog.Warn("request error", "error", err)
		WriteError(w, http.StatusForbidden, "path_not_allowed", "Upload path is not allowed for this bucket")

	case errors.As(err, &conflictErr):
		slog.Info("request error", "error", err)
		WriteError(w, http.StatusConflict, "conflict", capitalize(conflictErr.Error()))

	case errors.Is(err, bucketgate.ErrConfig), errors.Is(err, bucketgate.ErrBucketNotFound):
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "config_error", "Bucket configuration error")

	case errors.As(err, &backendErr):
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "upload_failed", backendErr.Error())

	default:
		slog.Error("request error", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
