package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"blogbuild/pkg/config"
	"blogbuild/pkg/logger"
	"blogbuild/pkg/models"

	"go.uber.org/zap"
)

// ExecuteGitWithToken runs git in dir with the configured remote name in
// args replaced by its URL carrying token. The token never appears in the
// returned output.
func ExecuteGitWithToken(ctx context.Context, dir, token string, args ...string) (string, error) {
	if token == "" {
		return runGit(ctx, dir, args...)
	}

	cmdGetURL := exec.CommandContext(ctx, "git", "remote", "get-url", config.GitRemote)
	cmdGetURL.Dir = dir
	outURL, err := cmdGetURL.Output()
	if err != nil {
		return "Failed to get remote url", err
	}
	remoteURL := strings.TrimSpace(string(outURL))
	authenticatedURL, err := withToken(remoteURL, token)
	if err != nil {
		return "Invalid remote url", err
	}

	newArgs := make([]string, len(args))
	copy(newArgs, args)
	for i, v := range newArgs {
		if v == config.GitRemote {
			newArgs[i] = authenticatedURL
		}
	}
	cmd := exec.CommandContext(ctx, "git", newArgs...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	return redact(string(output), token, authenticatedURL, remoteURL), err
}

func withToken(remoteURL, token string) (string, error) {
	u, err := url.Parse(remoteURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("remote %q is not an http(s) url", remoteURL)
	}
	u.User = url.UserPassword("oauth2", token)
	return u.String(), nil
}

func redact(log, token, authenticatedURL, remoteURL string) string {
	log = strings.ReplaceAll(log, authenticatedURL, remoteURL)
	return strings.ReplaceAll(log, token, "***")
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// SyncSite pulls the configured branch into the site directory.
func SyncSite(ctx context.Context, token string) (string, error) {
	log, err := ExecuteGitWithToken(ctx, config.SiteDir, token, "pull", config.GitRemote, config.GitBranch)
	if err == nil {
		InvalidateCache()
	}
	return log, err
}

// PublishSite commits everything under the site directory and pushes it.
// A clean tree still pushes, so earlier local commits go out.
func PublishSite(ctx context.Context, token string) (string, error) {
	if out, err := runGit(ctx, config.SiteDir, "add", "."); err != nil {
		return out, err
	}

	msg := fmt.Sprintf("Update site: %s", time.Now().Format("2006-01-02 15:04:05"))
	commitOut, err := runGit(ctx, config.SiteDir,
		"-c", "user.name="+config.GitUserName,
		"-c", "user.email="+config.GitUserEmail,
		"commit", "-m", msg,
	)
	if err != nil {
		logger.Log.Info("nothing to commit", zap.String("git", strings.TrimSpace(commitOut)))
	}

	pushOut, err := ExecuteGitWithToken(ctx, config.SiteDir, token, "push", config.GitRemote, config.GitBranch)
	InvalidateCache()
	return commitOut + pushOut, err
}

// Diff kinds returned by DiffDraft.
const (
	DiffUnsaved = "unsaved"
	DiffGit     = "git"
	DiffNone    = "none"
)

// DiffDraft compares the editor's version of a draft with the file on disk.
// Both sides are normalized through ConstructFileContent so formatting alone
// never shows up. Without unsaved edits it falls back to the committed
// changes (git diff HEAD) of the draft.
func DiffDraft(ctx context.Context, d models.Draft) (string, string, error) {
	fullPath, err := draftPath(d.Path)
	if err != nil {
		return "", "", err
	}

	saved, err := os.ReadFile(fullPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", "", err
	}
	if len(saved) > 0 {
		if meta, body, format, err := ParseFrontMatter(saved); err == nil {
			if normalized, err := ConstructFileContent(meta, body, format); err == nil {
				saved = normalized
			}
		}
	}

	var meta models.Meta
	if d.Meta != nil {
		meta = *d.Meta
	}
	edited, err := ConstructFileContent(meta, d.Body, d.Format)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUnknownFormat, err)
	}

	tmp, err := os.MkdirTemp("", "blogbuild-diff-")
	if err != nil {
		return "", "", err
	}
	defer os.RemoveAll(tmp)
	if err := os.WriteFile(filepath.Join(tmp, "saved.md"), saved, 0o600); err != nil {
		return "", "", err
	}
	if err := os.WriteFile(filepath.Join(tmp, "editor.md"), edited, 0o600); err != nil {
		return "", "", err
	}

	// --no-index exits 1 when the files differ.
	out, err := runGit(ctx, tmp, "diff", "--no-index", "--", "saved.md", "editor.md")
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return out, DiffUnsaved, nil
	}
	if err != nil {
		return "", "", fmt.Errorf("git diff: %w: %s", err, strings.TrimSpace(out))
	}

	rel, err := filepath.Rel(config.SiteDir, fullPath)
	if err != nil {
		return "", DiffNone, nil
	}
	// Fails outside a repository or before the first commit; neither is an error here.
	out, err = runGit(ctx, config.SiteDir, "diff", "HEAD", "--", filepath.ToSlash(rel))
	if err == nil && strings.TrimSpace(out) != "" {
		return out, DiffGit, nil
	}
	return "", DiffNone, nil
}
