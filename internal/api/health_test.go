package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func stubProbe(name string, critical bool, err error) probe {
	return probe{
		name:     name,
		critical: critical,
		ping:     func(context.Context) error { return err },
	}
}

func TestReadiness(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name       string
		probes     []probe
		wantCode   int
		wantStatus string
	}{
		{
			name: "all up",
			probes: []probe{
				stubProbe("postgres", true, nil),
				stubProbe("redis", false, nil),
			},
			wantCode:   http.StatusOK,
			wantStatus: "ok",
		},
		{
			name: "redis down degrades",
			probes: []probe{
				stubProbe("postgres", true, nil),
				stubProbe("redis", false, down),
			},
			wantCode:   http.StatusOK,
			wantStatus: "degraded",
		},
		{
			name: "postgres down is fatal",
			probes: []probe{
				stubProbe("postgres", true, down),
				stubProbe("redis", false, nil),
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "error",
		},
		{
			name: "everything down",
			probes: []probe{
				stubProbe("postgres", true, down),
				stubProbe("redis", false, down),
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HealthHandler{env: "test", version: "test", probes: tt.probes}

			rec := httptest.NewRecorder()
			h.Readiness(rec, httptest.NewRequest("GET", "/health/ready", nil))

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", rec.Code, tt.wantCode)
			}

			var resp ReadinessResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Status != tt.wantStatus {
				t.Fatalf("status = %q, want %q", resp.Status, tt.wantStatus)
			}
		})
	}
}
