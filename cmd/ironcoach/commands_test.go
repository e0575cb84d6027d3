package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

type testServer struct {
	server   *httptest.Server
	requests []recordedRequest
}

func newTestServer(t *testing.T, responses map[string]string) *testServer {
	t.Helper()
	ts := &testServer{}

	ts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		body.ReadFrom(r.Body)

		ts.requests = append(ts.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Body:   body.String(),
			Auth:   r.Header.Get("Authorization"),
		})

		key := r.Method + " " + r.URL.Path
		if resp, ok := responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(resp))
			return
		}

		w.WriteHeader(404)
		w.Write([]byte(`{"error":"not found"}`))
	}))

	t.Cleanup(ts.server.Close)
	return ts
}

func (ts *testServer) client() *apiClient {
	return &apiClient{
		baseURL:    ts.server.URL,
		token:      "test-token",
		httpClient: ts.server.Client(),
	}
}

var ctx = context.Background()

func TestChatRequest(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"POST /v1/chat": `{"text":"Stop whining and do the work."}`,
	})

	client := ts.client()

	resp, err := client.post(ctx, "/v1/chat", map[string]string{"message": "I want to quit"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(resp, &result); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if result.Text != "Stop whining and do the work." {
		t.Errorf("text = %q", result.Text)
	}

	if len(ts.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(ts.requests))
	}
	r := ts.requests[0]
	if r.Method != "POST" || r.Path != "/v1/chat" {
		t.Errorf("request = %s %s", r.Method, r.Path)
	}
	if r.Auth != "Bearer test-token" {
		t.Errorf("auth = %q, want Bearer test-token", r.Auth)
	}

	var body map[string]string
	if err := json.Unmarshal([]byte(r.Body), &body); err != nil {
		t.Fatalf("body parse error: %v", err)
	}
	if body["message"] != "I want to quit" {
		t.Errorf("body.message = %q", body["message"])
	}
}

func TestProfilePutRequest(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"PUT /v1/profile": `{"tone":"stoic","intensity":85,"goal":"ship the app"}`,
	})

	client := ts.client()

	resp, err := client.put(ctx, "/v1/profile", map[string]any{
		"tone":      "stoic",
		"intensity": 85,
		"goal":      "ship the app",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var profile struct {
		Tone      string `json:"tone"`
		Intensity int    `json:"intensity"`
		Goal      string `json:"goal"`
	}
	if err := decodeJSON(resp, &profile); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if profile.Tone != "stoic" || profile.Intensity != 85 {
		t.Errorf("profile = %+v", profile)
	}
}

func TestDecodeJSONErrorBody(t *testing.T) {
	ts := newTestServer(t, nil)

	client := ts.client()
	resp, err := client.get(ctx, "/v1/profile")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var v any
	err = decodeJSON(resp, &v)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if !bytes.Contains([]byte(err.Error()), []byte("404")) {
		t.Errorf("error should mention status code: %v", err)
	}
}
