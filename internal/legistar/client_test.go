package legistar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient() *Client {
	return NewClient(http.DefaultClient, "legistar-comb-test/1.0", 5*time.Second)
}

func TestClientGetSendsUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	data, err := newTestClient().Get(context.Background(), server.URL)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "ok" {
		t.Errorf("Expected body 'ok', got %q", string(data))
	}
	if gotAgent != "legistar-comb-test/1.0" {
		t.Errorf("Expected User-Agent 'legistar-comb-test/1.0', got %q", gotAgent)
	}
}

func TestClientGetHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient().Get(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 502 response")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("Expected error to mention status 502, got %v", err)
	}
}

func TestClientGetJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Expected Accept application/json, got %q", r.Header.Get("Accept"))
		}
		w.Write([]byte(`[{"EventId": 7}]`))
	}))
	defer server.Close()

	var out []map[string]any
	if err := newTestClient().GetJSON(context.Background(), server.URL, &out); err != nil {
		t.Fatal(err)
	}

	if len(out) != 1 || out[0]["EventId"] != float64(7) {
		t.Errorf("Expected one record with EventId 7, got %v", out)
	}
}

func TestClientGetJSONMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	var out []map[string]any
	if err := newTestClient().GetJSON(context.Background(), server.URL, &out); err == nil {
		t.Error("Expected decode error")
	}
}

func TestClientExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD request, got %s", r.Method)
		}
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Path == "/moved" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}))
	defer server.Close()

	client := newTestClient()
	ctx := context.Background()

	if !client.Exists(ctx, server.URL+"/present") {
		t.Error("Expected /present to exist")
	}
	if client.Exists(ctx, server.URL+"/missing") {
		t.Error("Expected /missing to be absent")
	}
	if client.Exists(ctx, server.URL+"/moved") {
		t.Error("Expected non-200 answer to count as absent")
	}
	if client.Exists(ctx, "http://127.0.0.1:1/unreachable") {
		t.Error("Expected transport error to count as absent")
	}
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := newTestClient().WithTimeout(50 * time.Millisecond)
	if _, err := client.Get(context.Background(), server.URL); err == nil {
		t.Error("Expected timeout error")
	}
}
