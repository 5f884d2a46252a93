package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const defaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status     Status
	Checks     map[string]CheckResult
	Components []ComponentReport // in registration order
}

// ComponentReport is the outcome of pinging one component.
type ComponentReport struct {
	Name    string
	Result  CheckResult
	Latency time.Duration
	Err     error
}

// Component is a named store to ping.
type Component struct {
	Name   string
	Pinger Pinger
}

// Service coordinates health checks.
type Service struct {
	components []Component
	timeout    time.Duration
}

// New creates a Service. Components with a nil pinger are skipped.
func New(components ...Component) *Service {
	out := make([]Component, 0, len(components))
	for _, c := range components {
		if c.Pinger != nil {
			out = append(out, c)
		}
	}
	return &Service{components: out, timeout: defaultCheckTimeout}
}

// Check pings every component concurrently.
func (s *Service) Check(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	reports := make([]ComponentReport, len(s.components))
	var wg sync.WaitGroup
	for i, c := range s.components {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			err := c.Pinger.Ping(ctx)
			res := CheckOK
			if err != nil {
				res = CheckError
			}
			reports[i] = ComponentReport{Name: c.Name, Result: res, Latency: time.Since(start), Err: err}
		}()
	}
	wg.Wait()

	checks := make(map[string]CheckResult, len(reports))
	for _, r := range reports {
		checks[r.Name] = r.Result
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}
	return Report{Status: status, Checks: checks, Components: reports}
}
