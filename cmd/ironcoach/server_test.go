package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestProbeAuthHealth(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		want    string
		wantKey bool
	}{
		{"healthy", 200, "reachable at", true},
		{"not found", 404, "error (HTTP 404)", true},
		{"server error", 500, "error (HTTP 500)", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotPath, gotKey string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotKey = r.Header.Get("apikey")
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			got := probeAuthHealth(ctx, srv.Client(), srv.URL, "anon-key")
			if !strings.Contains(got, tc.want) {
				t.Errorf("status = %q, want it to contain %q", got, tc.want)
			}
			if gotPath != "/auth/v1/health" {
				t.Errorf("path = %q, want /auth/v1/health", gotPath)
			}
			if tc.wantKey && gotKey != "anon-key" {
				t.Errorf("apikey header = %q, want anon-key", gotKey)
			}
		})
	}
}

func TestProbeAuthHealthUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	got := probeAuthHealth(ctx, &http.Client{}, srv.URL, "anon-key")
	if got != "unreachable" {
		t.Errorf("status = %q, want unreachable", got)
	}
}
