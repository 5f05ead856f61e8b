package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"BlogCMS/internal/logger"
	"BlogCMS/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("write_response_failed", map[string]any{
			"error": err.Error(),
		})
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeError maps service errors onto the HTTP status contract: validation
// failures become 422 with a per-field errors object, missing records 404,
// everything else 500.
func writeError(w http.ResponseWriter, endpoint string, err error) {
	if verrs, ok := service.AsValidation(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verrs})
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Not found")
		return
	}
	logger.Error("handler_error", map[string]any{
		"endpoint": endpoint,
		"error":    err.Error(),
	})
	writeMessage(w, http.StatusInternalServerError, "Internal server error")
}

// decodeBody reads and unmarshals a JSON request body. A false return means
// the 400 response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("invalid_json", map[string]any{
			"endpoint": r.URL.Path,
			"error":    err.Error(),
		})
		writeMessage(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// pathID extracts the {id} path segment as an int64.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}
