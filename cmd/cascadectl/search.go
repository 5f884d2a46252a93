package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cascade "github.com/kailas-cloud/cascade/pkg/sdk"
)

func newSearchCmd(connect connectFunc) *cobra.Command {
	var (
		params  []string
		session string
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a fallback search and print the result page as JSON",
		Long: `Run a search with the same parameters the HTTP API accepts.

Examples:
  cascadectl search --param needle="green chile" --param region=denver
  cascadectl search -p category=breweries,wineries -p sort=random --session abc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := parseParams(params)
			if err != nil {
				return err
			}
			if session != "" {
				p["session"] = []string{session}
			}

			ctx, b, done, err := connect(cmd)
			if err != nil {
				return err
			}
			defer done()

			page, err := b.Search(ctx, p)
			if err != nil {
				return err
			}
			return printJSON(cmd, pageOutputFrom(&page))
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "search parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&session, "session", "", "session id for a stable random order")
	return cmd
}

// parseParams turns repeated key=value flags into request params.
func parseParams(raw []string) (cascade.Params, error) {
	p := make(cascade.Params, len(raw))
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid param %q: want key=value", kv)
		}
		p[k] = append(p[k], v)
	}
	return p, nil
}

type itemOutput struct {
	ID    string  `json:"id"`
	Type  string  `json:"type"`
	Score float64 `json:"score"`
}

type pageOutput struct {
	Total       int          `json:"total"`
	PerPage     int          `json:"per_page"`
	CurrentPage int          `json:"current_page"`
	LastPage    int          `json:"last_page"`
	From        int          `json:"from"`
	To          int          `json:"to"`
	Data        []itemOutput `json:"data"`
}

func pageOutputFrom(p *cascade.Page) pageOutput {
	out := pageOutput{
		Total:       p.Total,
		PerPage:     p.PerPage,
		CurrentPage: p.Page,
		LastPage:    p.LastPage,
		From:        p.From,
		To:          p.To,
		Data:        make([]itemOutput, 0, len(p.Items)),
	}
	for _, it := range p.Items {
		out.Data = append(out.Data, itemOutput{ID: it.ID, Type: it.Type, Score: it.Score})
	}
	return out
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
