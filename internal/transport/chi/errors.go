package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/cascade/internal/domain"
	indexuc "github.com/kailas-cloud/cascade/internal/usecase/index"
)

// ErrorCode is the machine-readable error code of an API error response.
type ErrorCode string

// API error codes.
const (
	CodeBadRequest           ErrorCode = "bad_request"
	CodeUnauthorized         ErrorCode = "unauthorized"
	CodeForbidden            ErrorCode = "forbidden"
	CodeNotFound             ErrorCode = "not_found"
	CodeInvalidIndex         ErrorCode = "invalid_index"
	CodeIndexActive          ErrorCode = "index_active"
	CodeBackendUnavailable   ErrorCode = "backend_unavailable"
	CodeHierarchyUnavailable ErrorCode = "hierarchy_unavailable"
	CodeTimeout              ErrorCode = "timeout"
	CodeInternal             ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

var errorHandlers = []errorHandler{
	sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
	sentinelHandler(domain.ErrInvalidIndex, http.StatusBadRequest, CodeInvalidIndex),
	sentinelHandler(indexuc.ErrActiveIndex, http.StatusConflict, CodeIndexActive),
	sentinelHandler(domain.ErrHierarchyUnavailable, http.StatusServiceUnavailable, CodeHierarchyUnavailable),
	sentinelHandler(domain.ErrBackendUnavailable, http.StatusServiceUnavailable, CodeBackendUnavailable),
	sentinelHandler(context.DeadlineExceeded, http.StatusGatewayTimeout, CodeTimeout),
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// The response message is the sentinel's own text, never the wrapped chain.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := s.requestLogger(r)
	for _, h := range errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
