package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

var (
	SiteDir     = "."
	DraftsDir   = "./drafts"
	PostsDir    = "./posts"
	IndexFile   = "./index.html"
	TemplateDir = "./templates"
	SiteConfig  = "./site.yml"

	// Media settings, relative to SiteDir
	MediaDir = "assets/images"

	// Build settings
	BuildConcurrency = 8

	// Server settings
	ServerAddr = ":8080"
	AppURL     = "http://localhost:8080"

	// Git settings
	GitUserEmail = "bot@blogbuild.local"
	GitUserName  = "Blog Build Bot"
	GitBranch    = "main"
	GitRemote    = "origin"
	GitToken     = ""

	LogLevel = "info"
)

var OauthConf *oauth2.Config

// Init loads .env (if present) and the environment into the package settings.
func Init() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found or error loading it.")
	}
	Load()
}

// Load reads settings from the environment only.
func Load() {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	SiteDir = getEnv("SITE_DIR", ".")
	DraftsDir = getEnv("DRAFTS_DIR", filepath.Join(SiteDir, "drafts"))
	PostsDir = getEnv("POSTS_DIR", filepath.Join(SiteDir, "posts"))
	IndexFile = getEnv("INDEX_FILE", filepath.Join(SiteDir, "index.html"))
	TemplateDir = getEnv("TEMPLATE_DIR", filepath.Join(SiteDir, "templates"))
	SiteConfig = getEnv("SITE_CONFIG", filepath.Join(SiteDir, "site.yml"))
	MediaDir = getEnv("MEDIA_DIR", "assets/images")

	ServerAddr = getEnv("SERVER_ADDR", ":8080")
	AppURL = getEnv("APP_URL", "http://localhost:8080")

	GitUserEmail = getEnv("GIT_USER_EMAIL", "bot@blogbuild.local")
	GitUserName = getEnv("GIT_USER_NAME", "Blog Build Bot")
	GitBranch = getEnv("GIT_BRANCH", "main")
	GitRemote = getEnv("GIT_REMOTE", "origin")
	GitToken = os.Getenv("GITHUB_TOKEN")

	LogLevel = getEnv("LOG_LEVEL", "info")

	BuildConcurrency = 8
	if bc := os.Getenv("BUILD_CONCURRENCY"); bc != "" {
		if val, err := strconv.Atoi(bc); err == nil && val > 0 {
			BuildConcurrency = val
		}
	}

	OauthConf = nil
	if id := os.Getenv("GITHUB_CLIENT_ID"); id != "" {
		OauthConf = &oauth2.Config{
			ClientID:     id,
			ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
			Scopes:       []string{"repo"},
			Endpoint:     github.Endpoint,
			RedirectURL:  getEnv("GITHUB_REDIRECT_URL", AppURL+"/auth/callback"),
		}
	}
}

// AuthEnabled reports whether GitHub login guards the server.
func AuthEnabled() bool {
	return OauthConf != nil
}
