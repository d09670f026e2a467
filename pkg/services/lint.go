package services

import (
	"fmt"
	"os"
	"path/filepath"

	"blogbuild/pkg/models"
)

// Lint checks the front matter of every draft in dir. Unreadable front
// matter, missing title or date, empty and duplicate slugs are errors; other
// missing keys are warnings. Only I/O failures are returned as an error.
func Lint(dir string) ([]models.LintIssue, error) {
	paths, err := draftFiles(dir)
	if err != nil {
		return nil, err
	}

	var issues []models.LintIssue
	add := func(file string, sev models.LintSeverity, format string, args ...interface{}) {
		issues = append(issues, models.LintIssue{File: file, Severity: sev, Message: fmt.Sprintf(format, args...)})
	}

	slugs := make(map[string]string)
	for _, path := range paths {
		name := filepath.Base(path)
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		d, err := parseDraft(path, content)
		if err != nil {
			add(name, models.LintError, "unreadable front matter: %v", err)
			continue
		}

		if d.Format == FormatNone {
			add(name, models.LintError, "no front matter block")
		} else {
			m := d.Meta
			if d.Untitled {
				add(name, models.LintError, "missing title (falls back to %q)", d.Title)
			}
			switch {
			case m.Date == "":
				add(name, models.LintError, "missing date")
			case ParseDate(m.Date).IsZero():
				add(name, models.LintError, "unrecognized date %q", m.Date)
			}
			for _, f := range [][2]string{{"subtitle", m.Subtitle}, {"tags", m.Tags}, {"excerpt", m.Excerpt}} {
				if f[1] == "" {
					add(name, models.LintWarning, "missing %s", f[0])
				}
			}
		}

		switch prev, ok := slugs[d.Slug]; {
		case d.Slug == "":
			add(name, models.LintError, "title %q yields an empty slug", d.Title)
		case ok:
			add(name, models.LintError, "slug %q already used by %s", d.Slug, prev)
		default:
			slugs[d.Slug] = name
		}
	}
	return issues, nil
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []models.LintIssue) bool {
	for _, i := range issues {
		if i.Severity == models.LintError {
			return true
		}
	}
	return false
}
