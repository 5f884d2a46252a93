package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/cascade/internal/db"
)

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Score  *float64        `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs a search request against q.Index.
func (s *Store) Search(ctx context.Context, q *db.DocQuery) (*db.DocResult, error) {
	body, err := json.Marshal(q.Body)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("encode body: %w", err)}
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(q.Index),
		s.client.Search.WithBody(bytes.NewReader(body)),
		s.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, &db.Error{Op: db.OpSearch, Err: decodeError(res.StatusCode, res.Body)}
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: fmt.Errorf("decode response: %w", err)}
	}

	out := &db.DocResult{
		Total: parsed.Hits.Total.Value,
		Hits:  make([]db.DocHit, 0, len(parsed.Hits.Hits)),
	}
	for _, h := range parsed.Hits.Hits {
		hit := db.DocHit{ID: h.ID, Source: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// DeleteDoc removes one document. A missing document yields db.ErrDocNotFound.
func (s *Store) DeleteDoc(ctx context.Context, index, id string) error {
	res, err := s.client.Delete(index, id, s.client.Delete.WithContext(ctx))
	if err != nil {
		return &db.Error{Op: db.OpDeleteDoc, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		re := decodeError(res.StatusCode, res.Body)
		if re.Type == "" {
			return db.ErrDocNotFound
		}
		return &db.Error{Op: db.OpDeleteDoc, Err: re}
	}
	if res.IsError() {
		return &db.Error{Op: db.OpDeleteDoc, Err: decodeError(res.StatusCode, res.Body)}
	}
	return nil
}
