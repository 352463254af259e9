package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/errors"
	"github.com/80-20-Human-In-The-Loop/Django-Mercury-Performance-Testing-sub000/models"
)

// writeJSONResponse writes a JSON response with the given status code
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON response: %v", err)
	}
}

// writeErrorResponse writes an error response with the given status code
func writeErrorResponse(w http.ResponseWriter, statusCode int, message, details string) {
	writeJSONResponse(w, statusCode, models.ErrorResponse{
		Error:   message,
		Code:    http.StatusText(statusCode),
		Details: details,
	})
}

// writeAppErrorResponse writes an AppError as HTTP response
func writeAppErrorResponse(w http.ResponseWriter, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		writeJSONResponse(w, appErr.GetHTTPStatusCode(), models.ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	writeErrorResponse(w, http.StatusInternalServerError, "internal server error", err.Error())
}
