package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pin-go/internal/files"
)

const defaultHistoryLimit = 50

// renameRequest is the body of POST /api/rename.
type renameRequest struct {
	OldPath string `json:"old_path" binding:"required"`
	NewName string `json:"new_name"`
}

func (s *Server) index(c *gin.Context) {
	page, err := webFiles.ReadFile("web/index.html")
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) list(c *gin.Context) {
	listing, err := s.files.List(c.Query("path"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (s *Server) serveImage(c *gin.Context) {
	// The wildcard keeps the separator that precedes it.
	p := strings.TrimPrefix(c.Param("path"), "/")

	f, err := s.files.Open(p)
	if err != nil {
		s.fail(c, err)
		return
	}
	defer f.Close()

	c.Header("Content-Type", f.ContentType)
	c.Header("Cache-Control", "no-cache")
	http.ServeContent(c.Writer, c.Request, filepath.Base(f.Path), f.ModTime, f)
}

func (s *Server) delete(c *gin.Context) {
	out, err := s.files.Delete(c.Request.Context(), c.Query("path"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out.Operation)
}

func (s *Server) rename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := s.files.Rename(c.Request.Context(), req.OldPath, req.NewName)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out.Operation)
}

func (s *Server) history(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	ops, err := s.files.History(limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operations": ops})
}

// fail writes the status matching err with a JSON error body.
func (s *Server) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// StatusFor maps file service errors to HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, files.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, files.ErrNotDirectory), errors.Is(err, files.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, files.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, files.ErrOutsideRoot):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
