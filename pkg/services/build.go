package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"blogbuild/pkg/logger"
	"blogbuild/pkg/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Builder turns the drafts directory into post pages plus an index page.
type Builder struct {
	DraftsDir   string
	PostsDir    string
	IndexFile   string
	Concurrency int
	Renderer    *Renderer

	// LoadRenderer, when set, replaces Renderer at the start of every build
	// so site.yml and template edits apply without a restart.
	LoadRenderer func() (*Renderer, error)

	// Out receives the human readable progress lines.
	Out io.Writer

	mu sync.Mutex // serializes builds from the server and the watcher
}

type BuildOptions struct {
	// Clean removes every posts/*.html before rendering.
	Clean bool
}

// draftFiles lists the *.md files in dir, sorted by name.
func draftFiles(dir string) ([]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadDrafts reads and parses every *.md file in dir, sorted by file name.
// Drafts without a title get one derived from the file name.
func LoadDrafts(dir string) ([]models.Draft, error) {
	paths, err := draftFiles(dir)
	if err != nil {
		return nil, err
	}

	drafts := make([]models.Draft, 0, len(paths))
	for _, path := range paths {
		d, err := ReadDraftFile(path)
		if err != nil {
			return nil, err
		}
		d.Path = filepath.Base(path)
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// ReadDraftFile parses one draft. Path is left as given.
func ReadDraftFile(path string) (models.Draft, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.Draft{}, err
	}
	d, err := parseDraft(path, content)
	if err != nil {
		return models.Draft{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return d, nil
}

func parseDraft(path string, content []byte) (models.Draft, error) {
	meta, body, format, err := ParseFrontMatter(content)
	if err != nil {
		return models.Draft{}, err
	}
	untitled := meta.Title == ""
	if untitled {
		meta.Title = TitleFromFilename(path)
	}
	return models.Draft{
		Path:     path,
		Title:    meta.Title,
		Slug:     Slugify(meta.Title),
		Date:     meta.Date,
		Meta:     &meta,
		Body:     body,
		Format:   format,
		Untitled: untitled,
	}, nil
}

// checkSlugs fails when two drafts would write the same post file.
func checkSlugs(drafts []models.Draft) error {
	seen := make(map[string]string, len(drafts))
	for _, d := range drafts {
		if d.Slug == "" {
			return fmt.Errorf("%s: title %q yields an empty slug", d.Path, d.Title)
		}
		if prev, ok := seen[d.Slug]; ok {
			return fmt.Errorf("%w: %s and %s both map to posts/%s.html", ErrDuplicateSlug, prev, d.Path, d.Slug)
		}
		seen[d.Slug] = d.Path
	}
	return nil
}

// Build renders all drafts. With no drafts it prints a hint, leaves the
// index alone and returns ErrNoDrafts.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (*models.BuildReport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.Out
	if out == nil {
		out = io.Discard
	}
	report := &models.BuildReport{}

	if b.LoadRenderer != nil {
		r, err := b.LoadRenderer()
		if err != nil {
			return report, fmt.Errorf("load templates: %w", err)
		}
		b.Renderer = r
	}

	if opts.Clean {
		removed, err := b.clean(out)
		if err != nil {
			return report, err
		}
		report.Removed = removed
	}

	for _, dir := range []string{b.DraftsDir, b.PostsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return report, err
		}
	}

	drafts, err := LoadDrafts(b.DraftsDir)
	if err != nil {
		return report, err
	}
	if len(drafts) == 0 {
		fmt.Fprintln(out, "No .md files found in /drafts. Add Markdown files there and re-run.")
		fmt.Fprintf(out, "  Drafts directory: %s\n", b.DraftsDir)
		return report, ErrNoDrafts
	}
	if err := checkSlugs(drafts); err != nil {
		return report, err
	}

	posts := make([]models.Post, len(drafts))
	changed := make([]bool, len(drafts))

	limit := b.Concurrency
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, d := range drafts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			post, wrote, err := b.buildPost(d)
			if err != nil {
				return fmt.Errorf("%s: %w", d.Path, err)
			}
			posts[i] = post
			changed[i] = wrote
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	for i, post := range posts {
		rel := filepath.ToSlash(filepath.Join(filepath.Base(b.PostsDir), post.Slug+".html"))
		fmt.Fprintf(out, "  ✓ %s → %s\n", post.SourceName, rel)
		if changed[i] {
			report.Written = append(report.Written, post.Slug)
		} else {
			report.Unchanged = append(report.Unchanged, post.Slug)
		}
	}

	SortPosts(posts)
	index, err := b.Renderer.RenderIndex(posts)
	if err != nil {
		return report, err
	}
	if _, err := writeIfChanged(b.IndexFile, index); err != nil {
		return report, err
	}
	report.Index = b.IndexFile
	report.Posts = len(posts)

	fmt.Fprintf(out, "\n  ✓ %s updated with %d post(s)\n", filepath.Base(b.IndexFile), len(posts))
	fmt.Fprintln(out, "\nDone. Your site is ready to deploy.")

	logger.Log.Info("build finished",
		zap.Int("posts", len(posts)),
		zap.Int("written", len(report.Written)),
		zap.Int("unchanged", len(report.Unchanged)),
		zap.Int("removed", len(report.Removed)),
	)
	return report, nil
}

func (b *Builder) buildPost(d models.Draft) (models.Post, bool, error) {
	post := models.Post{
		Meta:       *d.Meta,
		Slug:       d.Slug,
		SourceName: d.Path,
		BodyHTML:   RenderMarkdown(d.Body),
		Published:  ParseDate(d.Meta.Date),
	}
	page, err := b.Renderer.RenderPost(post)
	if err != nil {
		return post, false, err
	}
	wrote, err := writeIfChanged(filepath.Join(b.PostsDir, post.Slug+".html"), page)
	if err != nil {
		return post, false, err
	}
	logger.Log.Debug("post rendered", zap.String("draft", d.Path), zap.String("slug", post.Slug), zap.Bool("written", wrote))
	return post, wrote, nil
}

func (b *Builder) clean(out io.Writer) ([]string, error) {
	pages, err := filepath.Glob(filepath.Join(b.PostsDir, "*.html"))
	if err != nil {
		return nil, err
	}
	sort.Strings(pages)
	var removed []string
	for _, page := range pages {
		if err := os.Remove(page); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, err
		}
		fmt.Fprintf(out, "  Removed %s\n", page)
		removed = append(removed, filepath.Base(page))
	}
	if len(pages) > 0 {
		fmt.Fprintln(out)
	}
	return removed, nil
}

// writeIfChanged skips the write when path already holds data, keeping
// modification times stable for unchanged posts.
func writeIfChanged(path string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err := writeFileAtomic(path, data); err != nil {
		return false, err
	}
	return true, nil
}
