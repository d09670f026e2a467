package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"blogbuild/pkg/config"
	"blogbuild/pkg/logger"
	"blogbuild/pkg/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NewRouter wires the preview site and the editor API.
func NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger)

	// Session Setup
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		// Sessions then only live as long as the process.
		secret = uuid.NewString()
		if config.AuthEnabled() {
			logger.Log.Warn("SESSION_SECRET not set, logins will not survive a restart")
		}
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode, MaxAge: 7 * 24 * 3600})
	r.Use(sessions.Sessions("blogbuild", store))

	// --- Auth Routes ---
	r.GET("/login", LoginPage)
	r.GET("/login/github", GithubLogin)
	r.GET("/auth/callback", AuthCallback)
	r.GET("/logout", Logout)

	authorized := r.Group("/")
	authorized.Use(AuthRequired)
	{
		authorized.StaticFile("/", config.IndexFile)
		authorized.Static("/posts", config.PostsDir)

		api := authorized.Group("/api")
		{
			api.POST("/build", HandleBuild)
			api.GET("/drafts", ListDrafts)
			api.GET("/draft", GetDraft)
			api.POST("/draft", SaveDraft)
			api.POST("/diff", DiffDraft)
			api.POST("/create", CreateDraft)
			api.GET("/lint", LintDrafts)
			api.GET("/config", GetConfig)
			api.GET("/media", ListMedia)
			api.POST("/media", UploadMedia)
			api.DELETE("/media", DeleteMedia)
			api.POST("/sync", HandleSync)
			api.POST("/publish", HandlePublish)
		}
	}

	// Everything else (assets, about.html, ...) comes straight from the site root.
	r.NoRoute(AuthRequired, ServeSiteFile)

	return r
}

// ServeSiteFile serves a file from the site root. Drafts and dotfiles are
// not exposed.
func ServeSiteFile(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.Status(http.StatusNotFound)
		return
	}
	rel := strings.TrimPrefix(c.Request.URL.Path, "/")
	fullPath := services.SafeJoin(config.SiteDir, "", rel)
	if fullPath == "" || hiddenFromSite(fullPath) {
		c.Status(http.StatusNotFound)
		return
	}
	info, err := os.Stat(fullPath)
	if err != nil || info.IsDir() {
		c.Status(http.StatusNotFound)
		return
	}
	c.File(fullPath)
}

// hiddenFromSite reports whether fullPath lies in the drafts directory or
// under any dot-prefixed path component (.git, .env, ...).
func hiddenFromSite(fullPath string) bool {
	siteRel, err := filepath.Rel(config.SiteDir, fullPath)
	if err != nil {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(siteRel), "/") {
		if part != "." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	absDrafts, err1 := filepath.Abs(config.DraftsDir)
	absPath, err2 := filepath.Abs(fullPath)
	if err1 != nil || err2 != nil {
		return true
	}
	rel, err := filepath.Rel(absDrafts, absPath)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
