package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck(t *testing.T) {
	down := errors.New("conn refused")
	tests := []struct {
		name       string
		components []Component
		wantStatus Status
		wantChecks map[string]CheckResult
	}{
		{
			name: "all healthy",
			components: []Component{
				{"elastic", &mockPinger{}}, {"postgres", &mockPinger{}}, {"redis", &mockPinger{}},
			},
			wantStatus: Healthy,
			wantChecks: map[string]CheckResult{"elastic": CheckOK, "postgres": CheckOK, "redis": CheckOK},
		},
		{
			name: "cache down",
			components: []Component{
				{"elastic", &mockPinger{}}, {"postgres", &mockPinger{}}, {"redis", &mockPinger{err: down}},
			},
			wantStatus: Degraded,
			wantChecks: map[string]CheckResult{"elastic": CheckOK, "postgres": CheckOK, "redis": CheckError},
		},
		{
			name: "everything down",
			components: []Component{
				{"elastic", &mockPinger{err: down}}, {"postgres", &mockPinger{err: down}},
			},
			wantStatus: Unhealthy,
			wantChecks: map[string]CheckResult{"elastic": CheckError, "postgres": CheckError},
		},
		{
			name:       "nil pinger skipped",
			components: []Component{{"elastic", &mockPinger{}}, {"redis", nil}},
			wantStatus: Healthy,
			wantChecks: map[string]CheckResult{"elastic": CheckOK},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.components...).Check(context.Background())
			if r.Status != tt.wantStatus {
				t.Errorf("expected %q, got %q", tt.wantStatus, r.Status)
			}
			if len(r.Checks) != len(tt.wantChecks) {
				t.Fatalf("expected %d checks, got %v", len(tt.wantChecks), r.Checks)
			}
			for name, want := range tt.wantChecks {
				if r.Checks[name] != want {
					t.Errorf("%s: expected %q, got %q", name, want, r.Checks[name])
				}
			}
		})
	}
}

func TestCheck_NoComponents(t *testing.T) {
	r := New().Check(context.Background())
	if r.Status != Healthy || len(r.Checks) != 0 {
		t.Errorf("unexpected report: %+v", r)
	}
}

func TestCheck_ComponentsInOrder(t *testing.T) {
	down := errors.New("conn refused")
	r := New(
		Component{"elasticsearch", &mockPinger{}},
		Component{"postgres", &mockPinger{err: down}},
		Component{"redis", &mockPinger{}},
	).Check(context.Background())

	if len(r.Components) != 3 {
		t.Fatalf("expected 3 component reports, got %d", len(r.Components))
	}
	for i, name := range []string{"elasticsearch", "postgres", "redis"} {
		if r.Components[i].Name != name {
			t.Errorf("component %d: expected %s, got %s", i, name, r.Components[i].Name)
		}
	}
	if pg := r.Components[1]; pg.Result != CheckError || !errors.Is(pg.Err, down) {
		t.Errorf("postgres: expected error result wrapping cause, got %+v", pg)
	}
	if es := r.Components[0]; es.Result != CheckOK || es.Err != nil {
		t.Errorf("elasticsearch: expected ok, got %+v", es)
	}
}
