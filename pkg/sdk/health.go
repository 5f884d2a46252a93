package cascade

import (
	"context"
	"time"

	healthuc "github.com/kailas-cloud/cascade/internal/usecase/health"
)

// ComponentHealth is the ping outcome of one backing store.
type ComponentHealth struct {
	Name    string // "elasticsearch", "postgres" or "redis"
	Healthy bool
	Latency time.Duration
	Error   string
}

// HealthStatus is the aggregated health of the stores a Client depends on.
type HealthStatus struct {
	Status     string // "ok", "degraded" or "error"
	Components []ComponentHealth
}

// OK reports whether every component answered.
func (h HealthStatus) OK() bool { return h.Status == string(healthuc.Healthy) }

// Failing returns the names of components that did not answer.
func (h HealthStatus) Failing() []string {
	var out []string
	for _, c := range h.Components {
		if !c.Healthy {
			out = append(out, c.Name)
		}
	}
	return out
}

// Health pings Elasticsearch, Postgres and Redis concurrently. Components are
// reported in that order.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	hs := HealthStatus{
		Status:     string(report.Status),
		Components: make([]ComponentHealth, 0, len(report.Components)),
	}
	for _, r := range report.Components {
		ch := ComponentHealth{Name: r.Name, Healthy: r.Result == healthuc.CheckOK, Latency: r.Latency}
		if r.Err != nil {
			ch.Error = r.Err.Error()
		}
		hs.Components = append(hs.Components, ch)
	}
	return hs
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
