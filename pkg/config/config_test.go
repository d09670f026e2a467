package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"SITE_DIR", "DRAFTS_DIR", "POSTS_DIR", "INDEX_FILE", "BUILD_CONCURRENCY", "GITHUB_CLIENT_ID", "GIT_BRANCH"} {
		t.Setenv(key, "")
	}
	Load()

	assert.Equal(t, ".", SiteDir)
	assert.Equal(t, "drafts", DraftsDir)
	assert.Equal(t, "posts", PostsDir)
	assert.Equal(t, "index.html", IndexFile)
	assert.Equal(t, 8, BuildConcurrency)
	assert.Equal(t, "main", GitBranch)
	assert.False(t, AuthEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SITE_DIR", "/srv/site")
	t.Setenv("POSTS_DIR", "/srv/out")
	t.Setenv("BUILD_CONCURRENCY", "3")
	t.Setenv("GITHUB_CLIENT_ID", "abc")
	t.Setenv("APP_URL", "https://blog.example.com")
	t.Setenv("GITHUB_REDIRECT_URL", "")
	Load()

	assert.Equal(t, filepath.Join("/srv/site", "drafts"), DraftsDir)
	assert.Equal(t, "/srv/out", PostsDir)
	assert.Equal(t, filepath.Join("/srv/site", "site.yml"), SiteConfig)
	assert.Equal(t, 3, BuildConcurrency)
	assert.True(t, AuthEnabled())
	assert.Equal(t, "https://blog.example.com/auth/callback", OauthConf.RedirectURL)
}

func TestLoad_BadConcurrencyKeepsDefault(t *testing.T) {
	for _, v := range []string{"zero", "0", "-2"} {
		t.Setenv("BUILD_CONCURRENCY", v)
		Load()
		assert.Equal(t, 8, BuildConcurrency, v)
	}
}
