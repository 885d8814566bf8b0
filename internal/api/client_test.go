// internal/api/client_test.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mapmedia/mapview/internal/interaction"
	"github.com/mapmedia/mapview/internal/model/core"
)

func TestNew(t *testing.T) {
	c := New("http://localhost:8001")

	if c == nil {
		t.Fatal("New returned nil")
	}
	if c.baseURL != "http://localhost:8001" {
		t.Errorf("expected baseURL=http://localhost:8001, got %s", c.baseURL)
	}
	if c.httpClient == nil {
		t.Error("httpClient is nil")
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:8001/")
	if c.baseURL != "http://localhost:8001" {
		t.Errorf("expected trailing slash trimmed, got %s", c.baseURL)
	}
}

func TestHealthcheck_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthcheck" {
			t.Errorf("expected path /healthcheck, got %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL)
	if err := c.Healthcheck(context.Background()); err != nil {
		t.Errorf("Healthcheck failed: %v", err)
	}
}

func TestHealthcheck_ServerDown(t *testing.T) {
	c := New("http://localhost:59999") // unlikely to be listening
	if err := c.Healthcheck(context.Background()); err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestHealthcheck_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := New(server.URL)
	if err := c.Healthcheck(context.Background()); err == nil {
		t.Error("expected error for 503 status")
	}
}

func TestView(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/view" {
			t.Errorf("expected path /api/view, got %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(core.View{BuildID: "b-1", Records: []core.MarkerRecord{{ID: "r1"}}})
	}))
	defer server.Close()

	view, err := New(server.URL).View(context.Background())
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if view.BuildID != "b-1" {
		t.Errorf("expected buildId b-1, got %s", view.BuildID)
	}
	if _, ok := view.Record("r1"); !ok {
		t.Error("expected record r1 to be indexed")
	}
}

func TestVisibility_SendsState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %s", ct)
		}
		var state interaction.State
		if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
			t.Errorf("decode: %v", err)
		}
		if state.SearchQuery != "park" {
			t.Errorf("expected searchQuery=park, got %s", state.SearchQuery)
		}
		_ = json.NewEncoder(w).Encode(interaction.Result{Visible: []string{"r1"}, VisibleCount: 1, Total: 3})
	}))
	defer server.Close()

	state := interaction.DefaultState()
	state.SearchQuery = "park"
	res, err := New(server.URL).Visibility(context.Background(), state)
	if err != nil {
		t.Fatalf("Visibility failed: %v", err)
	}
	if res.VisibleCount != 1 || res.Total != 3 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestVisibility_ErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid time range"}`))
	}))
	defer server.Close()

	_, err := New(server.URL).Visibility(context.Background(), interaction.DefaultState())
	if err == nil {
		t.Fatal("expected error for 400 status")
	}
	if !strings.Contains(err.Error(), "invalid time range") {
		t.Errorf("expected server message in error, got %v", err)
	}
}
