package services

import (
	"os"
	"path/filepath"
	"testing"

	"blogbuild/pkg/config"

	"github.com/stretchr/testify/require"
)

// setupSite points the config at a fresh site directory for one test.
func setupSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	old := struct{ site, drafts, posts, index, tmpl, siteCfg, media string }{
		config.SiteDir, config.DraftsDir, config.PostsDir, config.IndexFile,
		config.TemplateDir, config.SiteConfig, config.MediaDir,
	}
	config.SiteDir = dir
	config.DraftsDir = filepath.Join(dir, "drafts")
	config.PostsDir = filepath.Join(dir, "posts")
	config.IndexFile = filepath.Join(dir, "index.html")
	config.TemplateDir = filepath.Join(dir, "templates")
	config.SiteConfig = filepath.Join(dir, "site.yml")
	config.MediaDir = "assets/images"
	InvalidateCache()

	t.Cleanup(func() {
		config.SiteDir, config.DraftsDir, config.PostsDir, config.IndexFile = old.site, old.drafts, old.posts, old.index
		config.TemplateDir, config.SiteConfig, config.MediaDir = old.tmpl, old.siteCfg, old.media
		InvalidateCache()
	})
	return dir
}

func writeDraft(t *testing.T, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(config.DraftsDir, 0o755))
	path := filepath.Join(config.DraftsDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}
