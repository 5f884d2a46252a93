package cascade

import (
	"github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/search/result"
)

// Params is a raw search request. Keys may repeat and values may be comma
// separated, exactly as in a query string.
type Params map[string][]string

// Item references one content item of a result page.
type Item struct {
	ID    string
	Type  string
	Score float64
}

// Page is one page of search results.
type Page struct {
	Total    int
	Page     int
	PerPage  int
	LastPage int
	From     int
	To       int
	Items    []Item
}

// Category is a category with its direct children.
type Category struct {
	ID       string
	Slug     string
	ParentID string
	Children []CategoryRef
}

// CategoryRef identifies a child category.
type CategoryRef struct {
	ID   string
	Slug string
}

// IndexStatus describes one index of the blue/green pair.
type IndexStatus struct {
	Name   string
	Active bool
	Exists bool
}

func pageFromDomain(p *result.Page) Page {
	items := make([]Item, 0, len(p.Items))
	for i := range p.Items {
		h := &p.Items[i]
		items = append(items, Item{ID: h.ID(), Type: h.Type(), Score: h.Score()})
	}
	return Page{
		Total:    p.Total,
		Page:     p.Page,
		PerPage:  p.PerPage,
		LastPage: p.LastPage,
		From:     p.From,
		To:       p.To,
		Items:    items,
	}
}

func categoryFromDomain(node *entity.Node, children []entity.Node) Category {
	c := Category{
		ID:       node.ID(),
		Slug:     node.Slug(),
		ParentID: node.ParentID(),
		Children: make([]CategoryRef, 0, len(children)),
	}
	for i := range children {
		c.Children = append(c.Children, CategoryRef{ID: children[i].ID(), Slug: children[i].Slug()})
	}
	return c
}
