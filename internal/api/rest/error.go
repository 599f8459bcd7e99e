package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/gpp-indexer/internal/domain"
	"github.com/feral-file/gpp-indexer/internal/logger"
	"github.com/feral-file/gpp-indexer/internal/store"
)

// ErrorCode is the machine readable part of an error response
type ErrorCode string

const (
	errCodeBadRequest         ErrorCode = "bad_request"
	errCodeNotFound           ErrorCode = "not_found"
	errCodeConflict           ErrorCode = "conflict"
	errCodeInternalError      ErrorCode = "internal_error"
	errCodeStorageError       ErrorCode = "storage_error"
	errCodeServiceUnavailable ErrorCode = "service_unavailable"
)

type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// apiError is an error classified for the HTTP surface
type apiError struct {
	status  int
	code    ErrorCode
	message string
	details string
}

// classifyStoreError maps a store read failure to a response.
// Only unclassified errors are logged; their text is not exposed to clients.
func classifyStoreError(err error, message string) (apiError, bool) {
	switch {
	case errors.Is(err, store.ErrCorruptState):
		return apiError{status: http.StatusConflict, code: errCodeConflict, message: "Run state is corrupt", details: err.Error()}, false
	case errors.Is(err, domain.ErrRegionNotFound):
		return apiError{status: http.StatusNotFound, code: errCodeNotFound, message: domain.ErrRegionNotFound.Error()}, false
	default:
		return apiError{status: http.StatusInternalServerError, code: errCodeStorageError, message: message}, true
	}
}

func (e apiError) write(c *gin.Context) {
	c.JSON(e.status, errorResponse{Error: errorDetail{Code: e.code, Message: e.message, Details: e.details}})
}

func respondWithError(c *gin.Context, status int, code ErrorCode, message string, details ...string) {
	e := apiError{status: status, code: code, message: message}
	if len(details) > 0 {
		e.details = details[0]
	}
	e.write(c)
}

func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, details...)
}

func respondNotFound(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusNotFound, errCodeNotFound, message, details...)
}

// respondStoreError answers a failed store read
func respondStoreError(c *gin.Context, err error, message string, fields ...zap.Field) {
	e, internal := classifyStoreError(err, message)
	if internal {
		logger.ErrorCtx(c.Request.Context(), err, append(fields, zap.String("path", c.FullPath()))...)
	}
	e.write(c)
}

func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.ErrorCtx(c.Request.Context(), err, fields...)
	respondWithError(c, http.StatusInternalServerError, errCodeInternalError, message)
}
