package entity

import (
	domentity "github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/geo"
)

type nodeRow struct {
	ID       string
	Slug     string
	ParentID *string
	Children []string
	Lat      *float64
	Lng      *float64
}

func (r *nodeRow) toNode(kind domentity.Kind) domentity.Node {
	var parent string
	if r.ParentID != nil {
		parent = *r.ParentID
	}

	var centroid *geo.Point
	if r.Lat != nil && r.Lng != nil {
		p := geo.Point{Lat: *r.Lat, Lng: *r.Lng}
		if p.Valid() && !p.IsZero() {
			centroid = &p
		}
	}
	return domentity.New(kind, r.ID, r.Slug, parent, r.Children, centroid)
}
