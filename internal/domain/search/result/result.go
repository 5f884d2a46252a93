package result

// Hit is a single backend match, a reference to a content item.
type Hit struct {
	id    string
	typ   string
	score float64
}

// New creates a search hit.
func New(id, typ string, score float64) Hit {
	return Hit{id: id, typ: typ, score: score}
}

// ID returns the content item identifier.
func (h *Hit) ID() string { return h.id }

// Type returns the content type the item belongs to.
func (h *Hit) Type() string { return h.typ }

// Score returns the backend relevance score.
func (h *Hit) Score() float64 { return h.score }

// Key identifies the hit across content types.
func (h *Hit) Key() string { return h.typ + ":" + h.id }

// Window selects a page of backend results.
type Window struct {
	From int
	Size int
}

// Set is the raw outcome of one backend query.
type Set struct {
	// Total is the backend's count of all matches, not just this window.
	Total int
	Hits  []Hit
}

// IsEmpty reports whether the query matched nothing.
func (s Set) IsEmpty() bool {
	return s.Total == 0 && len(s.Hits) == 0
}

// Page is a paginated list of live item references.
type Page struct {
	Total    int
	Items    []Hit
	Page     int
	PerPage  int
	LastPage int
	From     int
	To       int
}

// NewPage derives the page bounds. From and To are 1-based positions of the first and
// last item on the page; both are zero for an empty page.
func NewPage(total int, items []Hit, page, perPage int) Page {
	p := Page{Total: total, Items: items, Page: page, PerPage: perPage, LastPage: 1}
	if perPage > 0 && total > 0 {
		p.LastPage = (total + perPage - 1) / perPage
	}
	if len(items) > 0 {
		offset := (page - 1) * perPage
		p.From = offset + 1
		p.To = offset + len(items)
	}
	return p
}

// Empty returns a page with no items.
func Empty(page, perPage int) Page {
	return NewPage(0, nil, page, perPage)
}
