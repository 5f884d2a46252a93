package elastic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailas-cloud/cascade/internal/db"
)

func newTestStore(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	s, err := NewStore(Config{Addrs: []string{srv.URL}})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestPing_Success(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{}`)
	})
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearch_ParsesHits(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{
			"hits": {
				"total": {"value": 42, "relation": "eq"},
				"hits": [
					{"_id": "7", "_score": 3.25, "_source": {"type": "events"}},
					{"_id": "9", "_score": null, "_source": {"type": "places"}}
				]
			}
		}`)
	})

	res, err := s.Search(context.Background(), &db.DocQuery{
		Index: "prod_ying",
		Body:  map[string]any{"from": 12, "size": 12, "query": map[string]any{"match_all": map[string]any{}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/prod_ying/_search" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotBody["from"] != float64(12) {
		t.Errorf("body not forwarded: %v", gotBody)
	}
	if res.Total != 42 || len(res.Hits) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Hits[0].ID != "7" || res.Hits[0].Score != 3.25 {
		t.Errorf("unexpected first hit %+v", res.Hits[0])
	}
	if res.Hits[1].Score != 0 {
		t.Errorf("null score should decode as 0, got %v", res.Hits[1].Score)
	}
	if !strings.Contains(string(res.Hits[1].Source), "places") {
		t.Errorf("source not kept: %s", res.Hits[1].Source)
	}
}

func TestSearch_StructuredError(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"index_not_found_exception","reason":"no such index [prod_yang]"},"status":404}`)
	})

	_, err := s.Search(context.Background(), &db.DocQuery{Index: "prod_yang", Body: map[string]any{}})
	if err == nil {
		t.Fatal("expected error")
	}
	var re *ResponseError
	if !errors.As(err, &re) {
		t.Fatalf("expected ResponseError, got %T: %v", err, err)
	}
	if re.Status != 404 || re.Type != "index_not_found_exception" || !strings.Contains(re.Reason, "prod_yang") {
		t.Errorf("unexpected response error %+v", re)
	}
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Error("expected ErrIndexNotFound")
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) || dbErr.Op != db.OpSearch {
		t.Errorf("expected db.Error with search op, got %v", err)
	}
}

func TestDeleteDoc(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"deleted", http.StatusOK, `{"result":"deleted"}`, nil},
		{"missing doc", http.StatusNotFound, `{"result":"not_found"}`, db.ErrDocNotFound},
		{"missing index", http.StatusNotFound, `{"error":{"type":"index_not_found_exception","reason":"no such index"}}`, db.ErrIndexNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var method, path string
			s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
				method, path = r.Method, r.URL.Path
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			err := s.DeleteDoc(context.Background(), "prod_ying", "42")
			if method != http.MethodDelete || path != "/prod_ying/_doc/42" {
				t.Errorf("unexpected request %s %s", method, path)
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestIndexExists(t *testing.T) {
	for status, want := range map[int]bool{http.StatusOK: true, http.StatusNotFound: false} {
		s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})
		got, err := s.IndexExists(context.Background(), "prod_ying")
		if err != nil {
			t.Fatalf("status %d: unexpected error: %v", status, err)
		}
		if got != want {
			t.Errorf("status %d: got %v, want %v", status, got, want)
		}
	}
}

func TestDeleteIndex_Error(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"illegal_argument_exception","reason":"cannot delete alias"}}`)
	})

	err := s.DeleteIndex(context.Background(), "prod")
	var re *ResponseError
	if !errors.As(err, &re) || re.Type != "illegal_argument_exception" || re.Reason != "cannot delete alias" {
		t.Fatalf("expected structured error, got %v", err)
	}
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		body, typ, reason string
	}{
		{`{"error":{"type":"search_phase_execution_exception","reason":"all shards failed"}}`, "search_phase_execution_exception", "all shards failed"},
		{`{"error":"Incorrect HTTP method"}`, "", "Incorrect HTTP method"},
		{``, "", ""},
		{`not json`, "", ""},
	}
	for _, tt := range tests {
		re := decodeError(500, strings.NewReader(tt.body))
		if re.Status != 500 || re.Type != tt.typ || re.Reason != tt.reason {
			t.Errorf("decodeError(%q) = %+v", tt.body, re)
		}
	}
}
