// Package entity models the category, region and tag hierarchies that search criteria refer to.
package entity

import "github.com/kailas-cloud/cascade/internal/domain/geo"

// Kind identifies an entity hierarchy.
type Kind string

// Entity kinds.
const (
	Category Kind = "category"
	// Region covers both top-level regions and their cities.
	Region Kind = "region"
	Tag    Kind = "tag"
)

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == Category || k == Region || k == Tag
}

// Node is a read-only view of one entity as stored by the entity store.
type Node struct {
	kind     Kind
	id       string
	slug     string
	parentID string
	children []string
	centroid *geo.Point
}

// New creates a Node. parentID is empty for roots; centroid may be nil.
func New(kind Kind, id, slug, parentID string, children []string, centroid *geo.Point) Node {
	return Node{
		kind:     kind,
		id:       id,
		slug:     slug,
		parentID: parentID,
		children: children,
		centroid: centroid,
	}
}

// Kind returns the entity hierarchy.
func (n *Node) Kind() Kind { return n.kind }

// ID returns the entity identifier.
func (n *Node) ID() string { return n.id }

// Slug returns the URL slug.
func (n *Node) Slug() string { return n.slug }

// ParentID returns the parent identifier (empty for roots).
func (n *Node) ParentID() string { return n.parentID }

// HasParent reports whether the node is a child.
func (n *Node) HasParent() bool { return n.parentID != "" }

// Children returns the ordered direct child identifiers.
func (n *Node) Children() []string { return n.children }

// Centroid returns the geographic centre, if known.
func (n *Node) Centroid() (geo.Point, bool) {
	if n.centroid == nil {
		return geo.Point{}, false
	}
	return *n.centroid, true
}

// Matches reports whether a lookup term names this node by id or slug.
func (n *Node) Matches(term string) bool {
	return term == n.id || term == n.slug
}
