package models

import (
	"strings"
	"time"
)

// Meta is the front matter of a draft. Keys are lower-cased when parsed.
type Meta struct {
	Title    string            `json:"title" binding:"required"`
	Subtitle string            `json:"subtitle,omitempty"`
	Date     string            `json:"date,omitempty"`
	Tags     string            `json:"tags,omitempty"` // comma separated
	Excerpt  string            `json:"excerpt,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// TagList splits the raw tags field on commas.
func (m Meta) TagList() []string {
	if strings.TrimSpace(m.Tags) == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(m.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Draft represents a Markdown source file in the drafts directory.
type Draft struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Date    string `json:"date,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
	Body    string `json:"body,omitempty"`
	Format  string `json:"format,omitempty"` // yaml, toml, none
	IsDirty bool   `json:"is_dirty"`

	// Untitled is set when the title was derived from the file name.
	Untitled bool `json:"untitled,omitempty"`
}

// Post is a rendered draft ready to be written under posts/.
type Post struct {
	Meta       Meta
	Slug       string
	SourceName string
	BodyHTML   string
	Published  time.Time
}

// Href is the index-relative link to the post page.
func (p Post) Href() string {
	return "posts/" + p.Slug + ".html"
}

// BuildReport summarizes one build run.
type BuildReport struct {
	Written   []string `json:"written"`
	Unchanged []string `json:"unchanged"`
	Removed   []string `json:"removed,omitempty"`
	Index     string   `json:"index,omitempty"`
	Posts     int      `json:"posts"`
}

type LintSeverity string

const (
	LintError   LintSeverity = "error"
	LintWarning LintSeverity = "warning"
)

// LintIssue is a front matter problem found in one draft.
type LintIssue struct {
	File     string       `json:"file"`
	Severity LintSeverity `json:"severity"`
	Message  string       `json:"message"`
}

type MediaFile struct {
	Name string `json:"name"`
	Path string `json:"path"` // Relative path for usage in markdown
	Size int64  `json:"size"`
	URL  string `json:"url"` // URL for preview
}
