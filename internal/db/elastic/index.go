package elastic

import (
	"context"
	"net/http"

	"github.com/kailas-cloud/cascade/internal/db"
)

// IndexExists reports whether an index (or alias) exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := s.client.Indices.Exists([]string{name}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, &db.Error{Op: db.OpIndexExists, Err: err}
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &db.Error{Op: db.OpIndexExists, Err: decodeError(res.StatusCode, res.Body)}
	}
}

// DeleteIndex drops an index. Failures carry a *ResponseError with the cluster's
// error type and reason.
func (s *Store) DeleteIndex(ctx context.Context, name string) error {
	res, err := s.client.Indices.Delete([]string{name}, s.client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpDeleteIndex, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return &db.Error{Op: db.OpDeleteIndex, Err: decodeError(res.StatusCode, res.Body)}
	}
	return nil
}
