package elastic

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kailas-cloud/cascade/internal/db"
)

// ResponseError is a structured Elasticsearch error response.
type ResponseError struct {
	Status int
	Type   string
	Reason string
}

func (e *ResponseError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("elasticsearch: status %d", e.Status)
	}
	return fmt.Sprintf("elasticsearch: status %d: %s: %s", e.Status, e.Type, e.Reason)
}

// Is maps well-known error types onto db sentinels.
func (e *ResponseError) Is(target error) bool {
	switch target {
	case db.ErrIndexNotFound:
		return e.Type == "index_not_found_exception"
	case db.ErrDocNotFound:
		return e.Status == http.StatusNotFound && e.Type == ""
	}
	return false
}

type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

type errorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// decodeError reads an error body of the form {"error":{"type":..,"reason":..}}.
// Some endpoints return a plain string error or no body at all.
func decodeError(status int, body io.Reader) *ResponseError {
	re := &ResponseError{Status: status}

	var env errorEnvelope
	if err := json.NewDecoder(body).Decode(&env); err != nil || len(env.Error) == 0 {
		return re
	}

	var cause errorCause
	if err := json.Unmarshal(env.Error, &cause); err == nil {
		re.Type = cause.Type
		re.Reason = cause.Reason
		return re
	}

	var reason string
	if err := json.Unmarshal(env.Error, &reason); err == nil {
		re.Reason = reason
	}
	return re
}
