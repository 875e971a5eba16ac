package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/upb/ai-docs-prompt/services"
	"github.com/upb/ai-docs-prompt/utils"
)

// HandleServiceError maps domain errors to HTTP responses
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	details := services.GetErrorDetails(err)

	switch {
	case services.IsNotFoundError(err):
		if err := utils.WriteNotFound(w, err.Error()); err != nil {
			logger.Error("failed to write not found response", zap.Error(err))
		}

	case services.IsValidationError(err):
		if err := utils.WriteBadRequest(w, err.Error(), details); err != nil {
			logger.Error("failed to write bad request response", zap.Error(err))
		}

	case services.IsRateLimitError(err):
		if err := utils.WriteTooManyRequests(w, err.Error(), details); err != nil {
			logger.Error("failed to write rate limit response", zap.Error(err))
		}

	case services.IsExternalError(err), services.IsRetrievalError(err), services.IsExhaustedError(err):
		// an answer cannot be trusted without successful context retrieval,
		// and an upstream failure or retry exhaustion means the backend
		// never produced one
		logger.Error("question answering failed", zap.Error(err))
		if err := utils.WriteInternalServerError(w, err.Error()); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}

	default:
		logger.Error("unhandled service error", zap.Error(err))
		if err := utils.WriteInternalServerError(w, "An unexpected error occurred"); err != nil {
			logger.Error("failed to write internal error response", zap.Error(err))
		}
	}
}

// HandleValidationError maps request validation failures to 400 responses,
// surfacing per-field messages when available
func HandleValidationError(w http.ResponseWriter, err error, logger *zap.Logger) {
	fields := utils.GetValidationFields(err)
	var details map[string]interface{}
	if fields != nil {
		details = make(map[string]interface{}, len(fields))
		for k, v := range fields {
			details[k] = v
		}
	}
	if writeErr := utils.WriteBadRequest(w, err.Error(), details); writeErr != nil {
		logger.Error("failed to write validation error response", zap.Error(writeErr))
	}
}
