package chi

import (
	"context"
	"net/http"
	"time"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/cascade/internal/usecase/health"
)

// SessionHeader carries the caller's session id; the session cookie is the fallback.
const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "session"
)

// Server serves the search HTTP API.
type Server struct {
	search        Searcher
	categories    CategoryReader
	indices       IndexManager
	health        HealthChecker
	searchTimeout time.Duration
	logger        *zap.Logger
}

// NewServer creates an HTTP API server. A zero searchTimeout leaves searches bounded
// only by the request context.
func NewServer(
	search Searcher,
	categories CategoryReader,
	indices IndexManager,
	health HealthChecker,
	searchTimeout time.Duration,
	logger *zap.Logger,
) *Server {
	return &Server{
		search:        search,
		categories:    categories,
		indices:       indices,
		health:        health,
		searchTimeout: searchTimeout,
		logger:        logger,
	}
}

// Routes mounts the API on r.
func (s *Server) Routes(r gochi.Router) {
	r.Get("/search", s.Search)
	r.Get("/categories/{id}", s.GetCategory)
	r.Get("/indices", s.ListIndices)
	r.Post("/indices/toggle", s.ToggleIndex)
	r.Delete("/indices/{name}", s.DropIndex)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type searchItem struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

// searchResponse keeps the pagination envelope consumers of the listing pages expect.
type searchResponse struct {
	Total       int          `json:"total"`
	PerPage     int          `json:"per_page"`
	CurrentPage int          `json:"current_page"`
	LastPage    int          `json:"last_page"`
	From        *int         `json:"from"`
	To          *int         `json:"to"`
	Data        []searchItem `json:"data"`
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	params := criteria.Params(r.URL.Query())
	if !params.Has("session") {
		if session := sessionID(r); session != "" {
			params["session"] = []string{session}
		}
	}

	ctx := r.Context()
	if s.searchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.searchTimeout)
		defer cancel()
	}

	page, err := s.search.Search(ctx, params)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFromPage(&page))
}

func searchResponseFromPage(p *result.Page) searchResponse {
	resp := searchResponse{
		Total:       p.Total,
		PerPage:     p.PerPage,
		CurrentPage: p.Page,
		LastPage:    p.LastPage,
		Data:        make([]searchItem, 0, len(p.Items)),
	}
	if len(p.Items) > 0 {
		from, to := p.From, p.To
		resp.From, resp.To = &from, &to
	}
	for i := range p.Items {
		h := &p.Items[i]
		resp.Data = append(resp.Data, searchItem{ID: h.ID(), Type: h.Type(), Score: h.Score()})
	}
	return resp
}

func sessionID(r *http.Request) string {
	if v := r.Header.Get(SessionHeader); v != "" {
		return v
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

type categoryRef struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
}

type categoryResponse struct {
	ID       string        `json:"id"`
	Slug     string        `json:"slug"`
	ParentID *string       `json:"parent_id"`
	Children []categoryRef `json:"children"`
}

// GetCategory handles GET /categories/{id}. The id may also be a slug.
func (s *Server) GetCategory(w http.ResponseWriter, r *http.Request) {
	term := gochi.URLParam(r, "id")

	node, children, err := s.categories.Category(r.Context(), term)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, categoryToResponse(&node, children))
}

func categoryToResponse(node *entity.Node, children []entity.Node) categoryResponse {
	resp := categoryResponse{
		ID:       node.ID(),
		Slug:     node.Slug(),
		Children: make([]categoryRef, 0, len(children)),
	}
	if node.HasParent() {
		p := node.ParentID()
		resp.ParentID = &p
	}
	for i := range children {
		resp.Children = append(resp.Children, categoryRef{ID: children[i].ID(), Slug: children[i].Slug()})
	}
	return resp
}

// ListIndices handles GET /indices.
func (s *Server) ListIndices(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.indices.Status(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": statuses})
}

// ToggleIndex handles POST /indices/toggle.
func (s *Server) ToggleIndex(w http.ResponseWriter, r *http.Request) {
	name, err := s.indices.Toggle(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.requestLogger(r).Info("Active index toggled", zap.String("index", name))
	writeJSON(w, http.StatusOK, map[string]string{"active": name})
}

// DropIndex handles DELETE /indices/{name}.
func (s *Server) DropIndex(w http.ResponseWriter, r *http.Request) {
	name := gochi.URLParam(r, "name")
	if err := s.indices.Drop(r.Context(), name); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.requestLogger(r).Info("Index dropped", zap.String("index", name))
	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	if id := chiMiddleware.GetReqID(r.Context()); id != "" {
		return s.logger.With(zap.String("request_id", id))
	}
	return s.logger
}
