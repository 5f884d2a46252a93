// Package hierarchy expands category, region and tag terms into the concrete id sets
// used by the query compiler.
package hierarchy

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/cascade/internal/domain"
	"github.com/kailas-cloud/cascade/internal/domain/entity"
	"github.com/kailas-cloud/cascade/internal/domain/geo"
	"github.com/kailas-cloud/cascade/internal/domain/search/criteria"
)

// Expansion is the resolved form of one facet.
type Expansion struct {
	IDs         []string
	ParentIDs   []string
	ParentSlugs []string
	Centroids   map[string]geo.Point
}

// Resolver expands hierarchy terms.
type Resolver struct {
	store EntityStore
}

// New creates a Resolver.
func New(store EntityStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve expands every facet of the criteria. Facets are looked up concurrently.
func (r *Resolver) Resolve(ctx context.Context, cr *criteria.Criteria) (entity.Resolution, error) {
	var cats, regs Expansion
	var tags []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = r.ResolveCategories(gctx, cr.CategoryTerms(), cr.HasMode(criteria.ModeCategories))
		return err
	})
	g.Go(func() error {
		var err error
		regs, err = r.ResolveRegions(gctx, cr.RegionTerms())
		return err
	})
	g.Go(func() error {
		var err error
		tags, err = r.ResolveTags(gctx, cr.TagTerms())
		return err
	})
	if err := g.Wait(); err != nil {
		return entity.Resolution{}, err
	}

	return entity.Resolution{
		Categories:          cats.IDs,
		ParentCategories:    cats.ParentIDs,
		ParentCategorySlugs: cats.ParentSlugs,
		Regions:             regs.IDs,
		ParentRegions:       regs.ParentIDs,
		Tags:                tags,
		Centroids:           regs.Centroids,
	}, nil
}

// ResolveCategories expands categories to the child level: matched children plus the
// children of matched roots. Only when no matched node has a parent or children do the
// matched roots stand for themselves. In explicit mode, matched nodes dropped by the
// expansion are appended.
func (r *Resolver) ResolveCategories(ctx context.Context, terms []string, explicit bool) (Expansion, error) {
	matched, err := r.lookup(ctx, entity.Category, terms)
	if err != nil || len(matched) == 0 {
		return Expansion{}, err
	}

	ids := childLevel(matched)
	if explicit {
		for i := range matched {
			ids.add(matched[i].ID())
		}
	}

	return r.withParents(ctx, entity.Category, matched, ids.items)
}

// ResolveRegions expands regions towards their cities. When any matched region is a
// city, only the matched cities are kept. Otherwise each matched region is followed
// by its cities.
func (r *Resolver) ResolveRegions(ctx context.Context, terms []string) (Expansion, error) {
	matched, err := r.lookup(ctx, entity.Region, terms)
	if err != nil || len(matched) == 0 {
		return Expansion{}, err
	}

	var ids orderedSet
	cities := false
	for i := range matched {
		if matched[i].HasParent() {
			cities = true
			ids.add(matched[i].ID())
		}
	}
	if !cities {
		for i := range matched {
			ids.add(matched[i].ID())
			ids.add(matched[i].Children()...)
		}
	}

	return r.withParents(ctx, entity.Region, matched, ids.items)
}

// childLevel collects matched children and the children of matched roots, falling
// back to the matched nodes when the match holds no hierarchy at all.
func childLevel(matched []entity.Node) orderedSet {
	var ids orderedSet
	for i := range matched {
		n := &matched[i]
		if n.HasParent() {
			ids.add(n.ID())
		} else {
			ids.add(n.Children()...)
		}
	}
	if len(ids.items) == 0 {
		for i := range matched {
			ids.add(matched[i].ID())
		}
	}
	return ids
}

// ResolveTags returns the ids of matched tags.
func (r *Resolver) ResolveTags(ctx context.Context, terms []string) ([]string, error) {
	matched, err := r.lookup(ctx, entity.Tag, terms)
	if err != nil {
		return nil, err
	}
	var ids orderedSet
	for i := range matched {
		ids.add(matched[i].ID())
	}
	return ids.items, nil
}

// Category returns one category together with its direct children.
func (r *Resolver) Category(ctx context.Context, term string) (entity.Node, []entity.Node, error) {
	found, err := r.lookup(ctx, entity.Category, []string{term})
	if err != nil {
		return entity.Node{}, nil, err
	}
	if len(found) == 0 {
		return entity.Node{}, nil, fmt.Errorf("category %q: %w", term, domain.ErrNotFound)
	}
	node := found[0]
	if len(node.Children()) == 0 {
		return node, nil, nil
	}
	children, err := r.lookup(ctx, entity.Category, node.Children())
	if err != nil {
		return entity.Node{}, nil, err
	}
	return node, children, nil
}

// lookup fetches matches and orders them by the first term each one matched.
func (r *Resolver) lookup(ctx context.Context, kind entity.Kind, terms []string) ([]entity.Node, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	nodes, err := r.store.Lookup(ctx, kind, terms)
	if err != nil {
		return nil, fmt.Errorf("%w: lookup %s: %w", domain.ErrHierarchyUnavailable, kind, err)
	}

	seen := make(map[string]struct{}, len(nodes))
	out := make([]entity.Node, 0, len(nodes))
	for _, term := range terms {
		for i := range nodes {
			n := &nodes[i]
			if _, dup := seen[n.ID()]; dup || !n.Matches(term) {
				continue
			}
			seen[n.ID()] = struct{}{}
			out = append(out, *n)
		}
	}
	return out, nil
}

// withParents derives the parent-level ids of matched nodes and fetches any parent
// not already matched to learn its slug and centroid.
func (r *Resolver) withParents(ctx context.Context, kind entity.Kind, matched []entity.Node, ids []string) (Expansion, error) {
	known := make(map[string]entity.Node, len(matched))
	var parents orderedSet
	for i := range matched {
		n := matched[i]
		known[n.ID()] = n
		if n.HasParent() {
			parents.add(n.ParentID())
		} else {
			parents.add(n.ID())
		}
	}

	var missing []string
	for _, id := range parents.items {
		if _, ok := known[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		fetched, err := r.store.Lookup(ctx, kind, missing)
		if err != nil {
			return Expansion{}, fmt.Errorf("%w: lookup %s parents: %w", domain.ErrHierarchyUnavailable, kind, err)
		}
		for _, n := range fetched {
			known[n.ID()] = n
		}
	}

	exp := Expansion{IDs: ids, ParentIDs: parents.items}
	for _, id := range parents.items {
		if n, ok := known[id]; ok && n.Slug() != "" {
			exp.ParentSlugs = append(exp.ParentSlugs, n.Slug())
		}
	}
	for id, n := range known {
		if c, ok := n.Centroid(); ok {
			if exp.Centroids == nil {
				exp.Centroids = make(map[string]geo.Point)
			}
			exp.Centroids[id] = c
		}
	}
	return exp, nil
}

type orderedSet struct {
	items []string
	seen  map[string]struct{}
}

func (s *orderedSet) add(ids ...string) {
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	for _, id := range ids {
		if _, ok := s.seen[id]; ok {
			continue
		}
		s.seen[id] = struct{}{}
		s.items = append(s.items, id)
	}
}
