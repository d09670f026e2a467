package services

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"blogbuild/pkg/config"
	"blogbuild/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDraft(t *testing.T) {
	setupSite(t)

	d, err := CreateDraft(models.Meta{Title: "  The Rigidity Trap ", Tags: "Strategy"}, "")
	require.NoError(t, err)
	assert.Equal(t, "the-rigidity-trap.md", d.Path)
	assert.Equal(t, time.Now().Format("January 2, 2006"), d.Date)

	content := readFile(t, filepath.Join(config.DraftsDir, "the-rigidity-trap.md"))
	assert.Equal(t, "---\ntitle: The Rigidity Trap\nsubtitle:\ndate: "+d.Date+"\ntags: Strategy\nexcerpt:\n---\n\n", content)

	_, err = CreateDraft(models.Meta{Title: "The Rigidity Trap"}, "")
	assert.ErrorIs(t, err, ErrDraftExists)
}

func TestCreateDraft_TOML(t *testing.T) {
	setupSite(t)

	d, err := CreateDraft(models.Meta{Title: "Loops", Date: "2026-03-01"}, FormatTOML)
	require.NoError(t, err)

	read, err := ReadDraft(d.Path)
	require.NoError(t, err)
	assert.Equal(t, FormatTOML, read.Format)
	assert.Equal(t, "Loops", read.Meta.Title)
	assert.Equal(t, "2026-03-01", read.Meta.Date)
	assert.Empty(t, read.Meta.Tags)

	content := readFile(t, filepath.Join(config.DraftsDir, d.Path))
	assert.True(t, strings.HasPrefix(content, "+++\n"), content)
	for _, key := range []string{"title", "subtitle", "date", "tags", "excerpt"} {
		assert.Regexp(t, `(?m)^`+key+` = `, content)
	}
	assert.Less(t, strings.Index(content, "title = "), strings.Index(content, "excerpt = "))
}

func TestCreateDraft_EmptySlug(t *testing.T) {
	setupSite(t)
	_, err := CreateDraft(models.Meta{Title: "???"}, "")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestReadAndSaveDraft(t *testing.T) {
	setupSite(t)
	writeDraft(t, "note.md", "---\ntitle: Note\ndate: 2026-01-01\n---\n\nfirst\n")

	d, err := ReadDraft("note.md")
	require.NoError(t, err)
	assert.Equal(t, "note.md", d.Path)
	assert.Equal(t, "first", d.Body)
	assert.Equal(t, FormatYAML, d.Format)

	d.Meta.Excerpt = "An excerpt"
	d.Body = "second"
	require.NoError(t, SaveDraft(d))

	assert.Equal(t, "---\ntitle: Note\ndate: 2026-01-01\nexcerpt: An excerpt\n---\n\nsecond\n",
		readFile(t, filepath.Join(config.DraftsDir, "note.md")))
}

func TestDraftPathConfinement(t *testing.T) {
	setupSite(t)
	for _, bad := range []string{"", "../secret.md", "/etc/passwd.md", "sub/../../x.md", "note.txt", `..\x.md`} {
		_, err := ReadDraft(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, "ReadDraft(%q)", bad)
		assert.ErrorIs(t, SaveDraft(models.Draft{Path: bad}), ErrInvalidPath, "SaveDraft(%q)", bad)
	}
}

func TestSafeJoin(t *testing.T) {
	assert.Equal(t, filepath.Join("root", "sub", "a", "b.md"), SafeJoin("root", "sub", "a/./b.md"))
	assert.Equal(t, filepath.Join("root", "b.md"), SafeJoin("root", "", "a/../b.md"))
	assert.Equal(t, "", SafeJoin("root", "", "../b.md"))
	assert.Equal(t, "", SafeJoin("root", "", ".."))
	assert.Equal(t, "", SafeJoin("root", "", "/abs"))
	assert.Equal(t, "", SafeJoin("root", "", ""))
	assert.Equal(t, filepath.Join("root", "..name.md"), SafeJoin("root", "", "..name.md"))
}

func TestLint(t *testing.T) {
	setupSite(t)
	writeDraft(t, "good.md", "---\ntitle: Good\nsubtitle: s\ndate: March 1, 2026\ntags: A\nexcerpt: e\n---\nbody\n")
	writeDraft(t, "bare.md", "no block\n")
	writeDraft(t, "partial.md", "---\ntitle: Partial\ndate: sometime\n---\n")
	writeDraft(t, "untitled.md", "---\ndate: 2026-01-01\nsubtitle: s\ntags: t\nexcerpt: e\n---\n")
	writeDraft(t, "zz-dup.md", "---\ntitle: good\ndate: 2026-01-01\nsubtitle: s\ntags: t\nexcerpt: e\n---\n")

	issues, err := Lint(config.DraftsDir)
	require.NoError(t, err)
	assert.True(t, HasErrors(issues))

	byFile := map[string][]models.LintIssue{}
	for _, i := range issues {
		byFile[i.File] = append(byFile[i.File], i)
	}

	assert.Empty(t, byFile["good.md"])
	require.Len(t, byFile["bare.md"], 1)
	assert.Equal(t, "no front matter block", byFile["bare.md"][0].Message)

	var partial []string
	for _, i := range byFile["partial.md"] {
		partial = append(partial, string(i.Severity)+": "+i.Message)
	}
	assert.ElementsMatch(t, []string{
		`error: unrecognized date "sometime"`,
		"warning: missing subtitle",
		"warning: missing tags",
		"warning: missing excerpt",
	}, partial)

	require.Len(t, byFile["untitled.md"], 1)
	assert.Contains(t, byFile["untitled.md"][0].Message, "missing title")

	require.Len(t, byFile["zz-dup.md"], 1)
	assert.Equal(t, `slug "good" already used by good.md`, byFile["zz-dup.md"][0].Message)
}

func TestLint_OnlyWarnings(t *testing.T) {
	setupSite(t)
	writeDraft(t, "a.md", "---\ntitle: A\ndate: 2026-01-01\n---\n")

	issues, err := Lint(config.DraftsDir)
	require.NoError(t, err)
	assert.Len(t, issues, 3)
	assert.False(t, HasErrors(issues))
}

func TestLint_ReportsPerFileProblems(t *testing.T) {
	setupSite(t)
	writeDraft(t, "bad.md", "+++\ntitle = \n+++\nbody\n")
	writeDraft(t, "essai.md", "---\ntitle: 日本語\nsubtitle: s\ndate: 2026-01-01\ntags: t\nexcerpt: e\n---\n")
	writeDraft(t, "fine.md", "---\ntitle: Fine\nsubtitle: s\ndate: 2026-2-5\ntags: t\nexcerpt: e\n---\n")

	issues, err := Lint(config.DraftsDir)
	require.NoError(t, err)
	assert.True(t, HasErrors(issues))

	byFile := map[string][]models.LintIssue{}
	for _, i := range issues {
		byFile[i.File] = append(byFile[i.File], i)
	}
	require.Len(t, byFile["bad.md"], 1)
	assert.Equal(t, models.LintError, byFile["bad.md"][0].Severity)
	assert.Contains(t, byFile["bad.md"][0].Message, "unreadable front matter")

	require.Len(t, byFile["essai.md"], 1)
	assert.Equal(t, `title "日本語" yields an empty slug`, byFile["essai.md"][0].Message)

	assert.Empty(t, byFile["fine.md"])
}
