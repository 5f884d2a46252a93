// Package cascade embeds the cascade travel-content search engine in a Go program.
//
// The client connects to the same stores as the cascade service: Elasticsearch
// for the content index, Postgres for the category/region/tag hierarchy and
// canonical records, and Redis for the active index pointer and the entity cache.
//
//	client, err := cascade.New(ctx,
//	    cascade.WithElastic("http://localhost:9200"),
//	    cascade.WithPostgres("postgres://localhost/travel"),
//	    cascade.WithRedis("localhost:6379", ""),
//	)
//	defer client.Close()
//
//	page, err := client.Search(ctx, cascade.Params{
//	    "category": {"restaurants"},
//	    "region":   {"denver"},
//	    "needle":   {"green chile"},
//	})
//
// Params mirrors the HTTP query string, so url.Values converts directly:
//
//	page, err := client.Search(ctx, cascade.Params(r.URL.Query()))
//
// Searches walk a fallback plan that progressively relaxes the query until one
// attempt returns results. Index management for the blue/green index pair is
// available through Indices.
package cascade
