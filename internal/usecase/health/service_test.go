package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockChecker struct {
	err error
}

func (m *mockChecker) HealthCheck(_ context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{}, &mockChecker{})

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("expected status %q, got %q", Healthy, report.Status)
	}
	for _, name := range []string{"database", "llm", "embedding"} {
		if report.Checks[name] != CheckOK {
			t.Errorf("expected %s check ok, got %q", name, report.Checks[name])
		}
	}
}

func TestCheck_DatabaseDownIsUnhealthy(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("connection refused")}, &mockChecker{}, &mockChecker{})

	report := svc.Check(context.Background())
	if report.Status != Unhealthy {
		t.Errorf("expected status %q, got %q", Unhealthy, report.Status)
	}
	if report.Checks["database"] != CheckError {
		t.Errorf("expected database check error, got %q", report.Checks["database"])
	}
}

func TestCheck_LLMDownDegrades(t *testing.T) {
	svc := New(&mockPinger{}, &mockChecker{err: errors.New("timeout")}, &mockChecker{})

	report := svc.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("expected status %q, got %q", Degraded, report.Status)
	}
	if report.Checks["llm"] != CheckError {
		t.Errorf("expected llm check error, got %q", report.Checks["llm"])
	}
	if report.Checks["database"] != CheckOK {
		t.Errorf("expected database check ok, got %q", report.Checks["database"])
	}
}

func TestCheck_DatabaseDownDominatesDegraded(t *testing.T) {
	svc := New(
		&mockPinger{err: errors.New("down")},
		&mockChecker{err: errors.New("also down")},
		&mockChecker{},
	)

	report := svc.Check(context.Background())
	if report.Status != Unhealthy {
		t.Errorf("database failure must win over degraded, got %q", report.Status)
	}
}

func TestCheck_NilCheckersSkipped(t *testing.T) {
	svc := New(&mockPinger{}, nil, nil)

	report := svc.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("expected status %q, got %q", Healthy, report.Status)
	}
	if _, ok := report.Checks["llm"]; ok {
		t.Error("nil llm checker must not produce a check entry")
	}
	if _, ok := report.Checks["embedding"]; ok {
		t.Error("nil embedding checker must not produce a check entry")
	}
}
