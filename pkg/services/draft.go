package services

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"blogbuild/pkg/config"
	"blogbuild/pkg/models"

	"github.com/pelletier/go-toml/v2"
)

// CreateDraft scaffolds drafts/<slug>.md with every front matter key. An
// empty date means today.
func CreateDraft(meta models.Meta, format string) (models.Draft, error) {
	meta.Title = strings.TrimSpace(meta.Title)
	slug := Slugify(meta.Title)
	if slug == "" {
		return models.Draft{}, fmt.Errorf("%w: title %q has no usable characters", ErrInvalidPath, meta.Title)
	}
	if meta.Date == "" {
		meta.Date = time.Now().Format(DateLayouts[0])
	}
	if format == "" {
		format = FormatYAML
	}

	if err := os.MkdirAll(config.DraftsDir, 0o755); err != nil {
		return models.Draft{}, err
	}
	name := slug + ".md"
	fullPath := filepath.Join(config.DraftsDir, name)
	if _, err := os.Stat(fullPath); err == nil {
		return models.Draft{}, fmt.Errorf("%w: %s", ErrDraftExists, name)
	}

	content, err := scaffold(meta, format)
	if err != nil {
		return models.Draft{}, err
	}
	// O_EXCL so a concurrent create cannot be overwritten.
	f, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return models.Draft{}, fmt.Errorf("%w: %s", ErrDraftExists, name)
	}
	if err != nil {
		return models.Draft{}, err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return models.Draft{}, err
	}
	if err := f.Close(); err != nil {
		return models.Draft{}, err
	}

	InvalidateCache()
	return models.Draft{Path: name, Title: meta.Title, Slug: slug, Date: meta.Date, Meta: &meta, Format: format}, nil
}

// tomlScaffold fixes the key order of a new TOML draft.
type tomlScaffold struct {
	Title    string   `toml:"title"`
	Subtitle string   `toml:"subtitle"`
	Date     string   `toml:"date"`
	Tags     []string `toml:"tags"`
	Excerpt  string   `toml:"excerpt"`
}

// scaffold writes all five keys, empty ones included, for the author to fill in.
func scaffold(meta models.Meta, format string) ([]byte, error) {
	switch format {
	case FormatYAML:
	case FormatTOML:
		tags := meta.TagList()
		if tags == nil {
			tags = []string{}
		}
		var buf bytes.Buffer
		buf.WriteString("+++\n")
		if err := toml.NewEncoder(&buf).Encode(tomlScaffold{
			Title:    meta.Title,
			Subtitle: meta.Subtitle,
			Date:     meta.Date,
			Tags:     tags,
			Excerpt:  meta.Excerpt,
		}); err != nil {
			return nil, err
		}
		buf.WriteString("+++\n\n")
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	var b strings.Builder
	b.WriteString("---\n")
	for _, f := range [][2]string{
		{"title", meta.Title},
		{"subtitle", meta.Subtitle},
		{"date", meta.Date},
		{"tags", meta.Tags},
		{"excerpt", meta.Excerpt},
	} {
		b.WriteString(strings.TrimRight(f[0]+": "+f[1], " ") + "\n")
	}
	b.WriteString("---\n\n")
	return []byte(b.String()), nil
}

func draftPath(rel string) (string, error) {
	fullPath := SafeJoin(config.DraftsDir, "", rel)
	if fullPath == "" || filepath.Ext(fullPath) != ".md" {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, rel)
	}
	return fullPath, nil
}

// ReadDraft loads a draft by its path relative to the drafts directory.
func ReadDraft(rel string) (models.Draft, error) {
	fullPath, err := draftPath(rel)
	if err != nil {
		return models.Draft{}, err
	}
	d, err := ReadDraftFile(fullPath)
	if err != nil {
		return models.Draft{}, err
	}
	d.Path = rel
	return d, nil
}

// SaveDraft writes a draft back in its own front matter format.
func SaveDraft(d models.Draft) error {
	fullPath, err := draftPath(d.Path)
	if err != nil {
		return err
	}
	var meta models.Meta
	if d.Meta != nil {
		meta = *d.Meta
	}
	content, err := ConstructFileContent(meta, d.Body, d.Format)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(fullPath, content); err != nil {
		return err
	}
	InvalidateCache()
	return nil
}
