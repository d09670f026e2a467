package handlers

import (
	"errors"
	"io/fs"
	"net/http"

	"blogbuild/pkg/config"
	"blogbuild/pkg/logger"
	"blogbuild/pkg/models"
	"blogbuild/pkg/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SiteBuilder is the builder used by the build endpoint. Set by main.
var SiteBuilder *services.Builder

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidPath), errors.Is(err, services.ErrUnknownFormat):
		return http.StatusBadRequest
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDraftExists), errors.Is(err, services.ErrDuplicateSlug):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoDrafts):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// gitToken prefers the OAuth token of the logged in user over GITHUB_TOKEN.
func gitToken(c *gin.Context) string {
	if token, ok := sessions.Default(c).Get(sessionTokenKey).(string); ok && token != "" {
		return token
	}
	return config.GitToken
}

func HandleBuild(c *gin.Context) {
	var req struct {
		Clean bool `json:"clean"`
	}
	// An empty body means a plain build.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
			return
		}
	}

	report, err := SiteBuilder.Build(c.Request.Context(), services.BuildOptions{Clean: req.Clean})
	services.InvalidateCache()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"status": "error", "error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "report": report})
}

func HandleSync(c *gin.Context) {
	log, err := services.SyncSite(c.Request.Context(), gitToken(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "log": log})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "log": log})
}

func HandlePublish(c *gin.Context) {
	log, err := services.PublishSite(c.Request.Context(), gitToken(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "log": log})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "log": log})
}

func ListDrafts(c *gin.Context) {
	drafts, err := services.GetDraftsCache()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch drafts"})
		return
	}
	if drafts == nil {
		drafts = []models.Draft{}
	}
	c.JSON(http.StatusOK, drafts)
}

func GetDraft(c *gin.Context) {
	draft, err := services.ReadDraft(c.Query("path"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, draft)
}

func SaveDraft(c *gin.Context) {
	var req struct {
		Path   string       `json:"path" binding:"required"`
		Meta   *models.Meta `json:"meta" binding:"required"`
		Body   string       `json:"body"`
		Format string       `json:"format"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON: " + err.Error()})
		return
	}

	err := services.SaveDraft(models.Draft{Path: req.Path, Meta: req.Meta, Body: req.Body, Format: req.Format})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// DiffDraft shows what saving the editor state would change, or the
// committed changes of the draft when there are no unsaved edits.
func DiffDraft(c *gin.Context) {
	var req struct {
		Path   string       `json:"path" binding:"required"`
		Meta   *models.Meta `json:"meta"`
		Body   string       `json:"body"`
		Format string       `json:"format"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON: " + err.Error()})
		return
	}

	diff, kind, err := services.DiffDraft(c.Request.Context(),
		models.Draft{Path: req.Path, Meta: req.Meta, Body: req.Body, Format: req.Format})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"diff": diff, "type": kind})
}

func CreateDraft(c *gin.Context) {
	var req struct {
		models.Meta
		Format string `json:"format" binding:"omitempty,oneof=yaml toml"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON: " + err.Error()})
		return
	}

	draft, err := services.CreateDraft(req.Meta, req.Format)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "created", "draft": draft})
}

func LintDrafts(c *gin.Context) {
	issues, err := services.Lint(config.DraftsDir)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if issues == nil {
		issues = []models.LintIssue{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": !services.HasErrors(issues), "issues": issues})
}

func GetConfig(c *gin.Context) {
	site, err := services.LoadSite()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"site":        site,
		"auth":        config.AuthEnabled(),
		"drafts_dir":  config.DraftsDir,
		"posts_dir":   config.PostsDir,
		"media_dir":   config.MediaDir,
		"git_branch":  config.GitBranch,
		"git_remote":  config.GitRemote,
		"concurrency": config.BuildConcurrency,
	})
}
