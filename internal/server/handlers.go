package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mapmedia/mapview/internal/interaction"
)

func (s *Server) getDocument(c *gin.Context) {
	_, _, page := s.current()
	if page == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no view loaded"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) getHealth(c *gin.Context) {
	view, _, _ := s.current()
	out := gin.H{"status": "ok"}
	if view != nil {
		out["buildId"] = view.BuildID
		out["records"] = len(view.Records)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) getView(c *gin.Context) {
	view, _, _ := s.current()
	if view == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no view loaded"})
		return
	}
	c.JSON(http.StatusOK, view)
}

// bindState decodes a State over the default state. An empty body is the
// default state.
func bindState(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (s *Server) postVisibility(c *gin.Context) {
	_, ctrl, _ := s.current()
	if ctrl == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no view loaded"})
		return
	}

	state := interaction.DefaultState()
	if err := bindState(c, &state); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !state.TimeRange.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": interaction.ErrInvalidTimeRange.Error()})
		return
	}
	c.JSON(http.StatusOK, ctrl.Evaluate(state.Normalize()))
}

type actionsRequest struct {
	State   interaction.State    `json:"state"`
	Actions []interaction.Action `json:"actions"`
}

type actionsResponse struct {
	Result      interaction.Result       `json:"result"`
	Navigations []interaction.Navigation `json:"navigations"`
	Errors      []string                 `json:"errors"`
}

// postActions replays a batch of actions as one coalesced flush.
func (s *Server) postActions(c *gin.Context) {
	_, ctrl, _ := s.current()
	if ctrl == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no view loaded"})
		return
	}

	req := actionsRequest{State: interaction.DefaultState()}
	if err := bindState(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.State.TimeRange.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": interaction.ErrInvalidTimeRange.Error()})
		return
	}

	session := ctrl.NewSession(req.State.Normalize())
	session.Enqueue(req.Actions...)
	state, navs, errs := session.Flush()

	out := actionsResponse{
		Result:      ctrl.Evaluate(state),
		Navigations: navs,
		Errors:      make([]string, 0, len(errs)),
	}
	if out.Navigations == nil {
		out.Navigations = []interaction.Navigation{}
	}
	for _, err := range errs {
		out.Errors = append(out.Errors, err.Error())
	}
	c.JSON(http.StatusOK, out)
}

// getMedia serves a file below the media root. Paths that climb out of the
// root are reported as missing.
func (s *Server) getMedia(c *gin.Context) {
	if s.cfg.MediaRoot == "" {
		c.Status(http.StatusNotFound)
		return
	}
	full, ok := resolveMedia(s.cfg.MediaRoot, c.Param("filepath"))
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(full)
}

// resolveMedia maps a request path onto a file path under root.
func resolveMedia(root, requested string) (string, bool) {
	requested = strings.ReplaceAll(requested, "\\", "/")
	for _, seg := range strings.Split(requested, "/") {
		if seg == ".." {
			return "", false
		}
	}
	rel := strings.TrimPrefix(path.Clean("/"+requested), "/")
	if rel == "" {
		return "", false
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	full := filepath.Join(absRoot, filepath.FromSlash(rel))
	back, err := filepath.Rel(absRoot, full)
	if err != nil || back == ".." || strings.HasPrefix(back, ".."+string(filepath.Separator)) {
		return "", false
	}
	return full, true
}
