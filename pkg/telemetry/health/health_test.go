package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mercator-hq/portico/pkg/routes"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name            string
		timeout         time.Duration
		expectedTimeout time.Duration
	}{
		{"default timeout", 0, 5 * time.Second},
		{"custom timeout", 10 * time.Second, 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(tt.timeout)
			if checker.checkTimeout != tt.expectedTimeout {
				t.Errorf("expected timeout %v, got %v", tt.expectedTimeout, checker.checkTimeout)
			}
			if len(checker.Checks()) != 0 {
				t.Errorf("expected 0 checks, got %d", len(checker.Checks()))
			}
		})
	}
}

func TestRegisterAndUnregisterCheck(t *testing.T) {
	checker := New(time.Second)
	checker.RegisterCheck("sessions", func(context.Context) error { return nil })
	checker.RegisterCheck("lifecycle", func(context.Context) error { return nil })

	got := checker.Checks()
	if len(got) != 2 || got[0] != "lifecycle" || got[1] != "sessions" {
		t.Errorf("Checks() = %v, want sorted [lifecycle sessions]", got)
	}

	checker.UnregisterCheck("sessions")
	if got := checker.Checks(); len(got) != 1 {
		t.Errorf("Checks() after unregister = %v", got)
	}
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
		},
		{
			name: "one unhealthy",
			checks: map[string]CheckFunc{
				"a": func(context.Context) error { return nil },
				"b": func(context.Context) error { return errors.New("component unhealthy") },
			},
			wantStatus: StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := New(time.Second)
			for name, check := range tt.checks {
				checker.RegisterCheck(name, check)
			}

			report := checker.Readiness(context.Background())
			if report.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", report.Status, tt.wantStatus)
			}
			if len(report.Checks) != len(tt.checks) {
				t.Errorf("got %d results, want %d", len(report.Checks), len(tt.checks))
			}
		})
	}
}

func TestReadiness_Timeout(t *testing.T) {
	checker := New(50 * time.Millisecond)
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	report := checker.Readiness(context.Background())

	slow := report.Checks["slow"]
	if slow.Status != StatusUnhealthy || slow.Message != "health check timeout" {
		t.Errorf("slow check = %+v, want unhealthy timeout", slow)
	}
}

func TestStateCheck(t *testing.T) {
	state := "RoutesInstalled"
	check := StateCheck(func() string { return state }, "Listening")

	if err := check(context.Background()); err == nil {
		t.Error("expected error before Listening")
	}
	state = "Listening"
	if err := check(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestHandlers(t *testing.T) {
	ready := New(time.Second)
	degraded := New(time.Second)
	degraded.RegisterCheck("lifecycle", func(context.Context) error { return errors.New("server is Failed, not Listening") })

	tests := []struct {
		name       string
		handler    http.HandlerFunc
		method     string
		wantStatus int
		wantBody   bool
	}{
		{"liveness", ready.LivenessHandler(), http.MethodGet, http.StatusOK, true},
		{"liveness head", ready.LivenessHandler(), http.MethodHead, http.StatusOK, false},
		{"ready", ready.ReadinessHandler(), http.MethodGet, http.StatusOK, true},
		{"degraded", degraded.ReadinessHandler(), http.MethodGet, http.StatusServiceUnavailable, true},
		{"version", VersionHandler(VersionInfo{Version: "1.2.3"}), http.MethodGet, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.handler(rec, httptest.NewRequest(tt.method, "/", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			if got := rec.Body.Len() > 0; got != tt.wantBody {
				t.Errorf("body present = %v, want %v", got, tt.wantBody)
			}
		})
	}
}

func TestVersionHandler_FillsGoVersion(t *testing.T) {
	rec := httptest.NewRecorder()
	VersionHandler(VersionInfo{Version: "1.2.3", Commit: "abc123"})(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Version != "1.2.3" || info.Commit != "abc123" || info.GoVersion == "" {
		t.Errorf("unexpected version info: %+v", info)
	}
}

func TestMount(t *testing.T) {
	table := routes.NewTable("")
	checker := New(time.Second)

	if err := Mount(table, checker, VersionInfo{Version: "dev"}); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	for _, path := range []string{"/health", "/ready", "/version"} {
		rec := httptest.NewRecorder()
		table.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}

	if err := Mount(table, checker, VersionInfo{}); err == nil {
		t.Error("second Mount() should report route conflicts")
	}
}
