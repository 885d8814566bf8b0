package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapmedia/mapview/internal/cluster"
	"github.com/mapmedia/mapview/internal/interaction"
	"github.com/mapmedia/mapview/internal/model/core"
	"github.com/mapmedia/mapview/internal/timeline"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func testView() *core.View {
	recs := []core.MarkerRecord{
		{ID: "img-1", Seq: 0, Kind: core.KindImage, Title: "Park photo", MediaRef: "2024/park.jpg", Timestamp: at("2024-05-01T09:00:00Z")},
		{ID: "vid-1", Seq: 1, Kind: core.KindVideo, Title: "Clip", MediaRef: "clip.mp4"},
		{ID: "ev-a", Seq: 2, Kind: core.KindEventA, Title: "ATT Location", Timestamp: at("2024-05-02T10:00:00Z")},
	}
	return &core.View{
		BuildID:      "b-1",
		Records:      recs,
		Groups:       cluster.Assign(recs),
		Timeline:     timeline.Index(recs),
		Cluster:      cluster.Options(50, 18, 2),
		MediaBaseURL: "Media",
		Stats:        core.Stats{Total: len(recs)},
	}
}

func newTestServer(t *testing.T, root string, log io.Writer) *Server {
	t.Helper()
	if log == nil {
		log = io.Discard
	}
	s := New(Config{MediaPrefix: "/media", MediaRoot: root}, nil, zerolog.New(log))
	require.NoError(t, s.SetView(testView(), interaction.Policy{UndatedInRange: true}))
	return s
}

func do(s *Server, method, target string, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func mediaRoot(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "Media")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2024"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "2024", "park.jpg"), []byte("jpeg"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secret.txt"), []byte("secret"), 0o644))
	return root
}

func TestDocument(t *testing.T) {
	s := newTestServer(t, "", nil)
	w := do(s, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `"mediaBaseUrl":"/media"`)
}

func TestDocument_NoView(t *testing.T) {
	s := New(Config{}, nil, zerolog.Nop())
	assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodGet, "/", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(s, http.MethodPost, "/api/visibility", "").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/healthcheck", "").Code)
}

func TestSetView_DoesNotMutateInput(t *testing.T) {
	view := testView()
	s := New(Config{MediaPrefix: "/files"}, nil, zerolog.Nop())
	require.NoError(t, s.SetView(view, interaction.Policy{}))
	assert.Equal(t, "Media", view.MediaBaseURL)
	assert.Error(t, s.SetView(nil, interaction.Policy{}))
}

func TestMedia(t *testing.T) {
	s := newTestServer(t, mediaRoot(t), nil)

	tests := []struct {
		name   string
		method string
		target string
		status int
	}{
		{"file", http.MethodGet, "/media/2024/park.jpg", http.StatusOK},
		{"missing", http.MethodGet, "/media/2024/none.jpg", http.StatusNotFound},
		{"directory", http.MethodGet, "/media/2024", http.StatusNotFound},
		{"traversal", http.MethodGet, "/media/../secret.txt", http.StatusNotFound},
		{"nested traversal", http.MethodGet, "/media/2024/../../secret.txt", http.StatusNotFound},
		{"post not allowed", http.MethodPost, "/media/2024/park.jpg", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, tt.method, tt.target, "")
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestMedia_Headers(t *testing.T) {
	s := newTestServer(t, mediaRoot(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/media/2024/park.jpg", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jpeg", w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "no-store, no-cache, must-revalidate", w.Header().Get("Cache-Control"))
}

func TestResolveMedia(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		name      string
		requested string
		ok        bool
	}{
		{"plain", "/a/b.jpg", true},
		{"backslashes", "/a\\b.jpg", true},
		{"dot dot", "/../x", false},
		{"backslash dot dot", "/a\\..\\..\\x", false},
		{"root only", "/", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			full, ok := resolveMedia(root, tt.requested)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, strings.HasPrefix(full, root))
			}
		})
	}
}

func TestGetView(t *testing.T) {
	s := newTestServer(t, "", nil)
	w := do(s, http.MethodGet, "/api/view", "")
	require.Equal(t, http.StatusOK, w.Code)

	var view core.View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "b-1", view.BuildID)
	assert.Len(t, view.Records, 3)
}

func TestPostVisibility(t *testing.T) {
	s := newTestServer(t, "", nil)

	tests := []struct {
		name    string
		body    string
		status  int
		visible []string
	}{
		{"empty body is default", "", http.StatusOK, []string{"img-1", "vid-1", "ev-a"}},
		{"kind filter", `{"activeKinds":["video"]}`, http.StatusOK, []string{"vid-1"}},
		{"search keeps default kinds", `{"searchQuery":"PARK"}`, http.StatusOK, []string{"img-1"}},
		{"range with undated", `{"timeRange":{"start":"2024-05-02T00:00:00Z"}}`, http.StatusOK, []string{"vid-1", "ev-a"}},
		{"inverted range", `{"timeRange":{"start":"2024-05-03T00:00:00Z","end":"2024-05-01T00:00:00Z"}}`, http.StatusBadRequest, nil},
		{"bad json", `{"activeKinds":`, http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(s, http.MethodPost, "/api/visibility", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.visible == nil {
				return
			}
			var res interaction.Result
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
			assert.Equal(t, tt.visible, res.Visible)
			assert.Equal(t, len(tt.visible), res.VisibleCount)
			assert.Equal(t, 3, res.Total)
		})
	}
}

func TestPostActions(t *testing.T) {
	s := newTestServer(t, "", nil)

	body, err := json.Marshal(map[string]any{
		"actions": []interaction.Action{
			interaction.SetSearch("cl"),
			interaction.SetSearch(""),
			interaction.ToggleKind(core.KindImage),
			interaction.SelectEntry("entry-99"),
		},
	})
	require.NoError(t, err)

	w := do(s, http.MethodPost, "/api/actions", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res actionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, []string{"vid-1", "ev-a"}, res.Result.Visible)
	assert.Empty(t, res.Navigations)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "entry-99")
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	s := newTestServer(t, "", &buf)
	do(s, http.MethodGet, "/healthcheck", "")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "GET", line["method"])
	assert.Equal(t, "/healthcheck", line["path"])
	assert.Equal(t, float64(200), line["status"])
}

func TestNoRoute(t *testing.T) {
	s := newTestServer(t, "", nil)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/nope", "").Code)
}
