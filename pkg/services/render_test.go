package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"blogbuild/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPost(t *testing.T) {
	r, err := NewRenderer(models.DefaultSite(), "")
	require.NoError(t, err)

	page, err := r.RenderPost(models.Post{
		Meta: models.Meta{
			Title:    "Trust & <Control>",
			Subtitle: "A subtitle",
			Date:     "February 25, 2026",
			Tags:     "Strategy, Governance",
			Excerpt:  "Short",
		},
		Slug:     "trust-control",
		BodyHTML: "<p>Body <em>html</em></p>",
	})
	require.NoError(t, err)
	html := string(page)

	assert.Contains(t, html, "<title>Trust &amp; &lt;Control&gt; — Prof Cruz</title>")
	assert.Contains(t, html, `<div class="post-meta">February 25, 2026 · Strategy, Governance</div>`)
	assert.Contains(t, html, `<p class="post-subtitle">A subtitle</p>`)
	assert.Contains(t, html, "<p>Body <em>html</em></p>")
	assert.Contains(t, html, `href="../assets/style.css"`)
	assert.Contains(t, html, `<meta name="description" content="Short">`)
	assert.Contains(t, html, "&copy; 2026 Richard Cruz. All rights reserved.")
	assert.Contains(t, html, `href="mailto:richard@profcruz.com"`)
	assert.NotContains(t, html, `class="active"`)
}

func TestRenderPost_NoSubtitle(t *testing.T) {
	r, err := NewRenderer(models.DefaultSite(), "")
	require.NoError(t, err)

	page, err := r.RenderPost(models.Post{Meta: models.Meta{Title: "T", Date: "D"}, Slug: "t"})
	require.NoError(t, err)
	assert.NotContains(t, string(page), "post-subtitle")
	assert.Contains(t, string(page), `<div class="post-meta">D</div>`)
}

func TestRenderIndex(t *testing.T) {
	r, err := NewRenderer(models.DefaultSite(), "")
	require.NoError(t, err)

	page, err := r.RenderIndex([]models.Post{
		{Meta: models.Meta{Title: "Newer", Date: "March 1, 2026", Tags: "A, B", Excerpt: "x < y"}, Slug: "newer"},
		{Meta: models.Meta{Title: "Older", Date: "January 1, 2026"}, Slug: "older"},
	})
	require.NoError(t, err)
	html := string(page)

	assert.Contains(t, html, "<title>Prof Cruz — Thinking in Systems</title>")
	assert.Contains(t, html, `<a href="posts/newer.html">Newer</a>`)
	assert.Contains(t, html, `<a href="posts/older.html">Older</a>`)
	assert.Contains(t, html, `<span class="post-tag">A</span>`)
	assert.Contains(t, html, `<span class="post-tag">B</span>`)
	assert.Contains(t, html, `<p class="post-excerpt">x &lt; y</p>`)
	assert.Contains(t, html, `class="active"`)
	assert.Contains(t, html, `href="assets/style.css"`)
	assert.Less(t, strings.Index(html, "posts/newer.html"), strings.Index(html, "posts/older.html"))
	assert.Equal(t, 1, strings.Count(html, `class="post-tags"`), "posts without tags get no tag block")
}

func TestRenderer_Override(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "post.html"),
		[]byte(`<h1>{{.Post.Meta.Title}}</h1>{{.Body}}`), 0o644))

	site := models.DefaultSite()
	r, err := NewRenderer(site, dir)
	require.NoError(t, err)

	page, err := r.RenderPost(models.Post{Meta: models.Meta{Title: "Custom"}, BodyHTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Custom</h1><p>x</p>", string(page))

	// index.html is not overridden
	index, err := r.RenderIndex(nil)
	require.NoError(t, err)
	assert.Contains(t, string(index), "index-hero")
}

func TestRenderer_BadOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte(`{{.Broken`), 0o644))
	_, err := NewRenderer(models.DefaultSite(), dir)
	assert.Error(t, err)
}

func TestMetaLine(t *testing.T) {
	assert.Equal(t, "May 1, 2026", MetaLine(models.Meta{Date: "May 1, 2026"}))
	assert.Equal(t, "May 1, 2026 · X", MetaLine(models.Meta{Date: "May 1, 2026", Tags: "X"}))
}
