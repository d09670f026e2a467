package services

import (
	"os/exec"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"blogbuild/pkg/config"
	"blogbuild/pkg/logger"
	"blogbuild/pkg/models"

	"go.uber.org/zap"
)

var (
	draftCache  []models.Draft
	cacheMutex  sync.Mutex
	cacheLoaded bool
)

// GetDraftsCache lists drafts with their titles, slugs and git dirty flags.
// Bodies are not kept.
func GetDraftsCache() ([]models.Draft, error) {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	if cacheLoaded {
		return draftCache, nil
	}

	drafts, err := LoadDrafts(config.DraftsDir)
	if err != nil {
		return nil, err
	}

	dirtyFiles, err := DirtyFiles(config.SiteDir)
	if err != nil {
		logger.Log.Debug("git status unavailable", zap.Error(err))
	}

	draftsRel := ""
	if rel, err := filepath.Rel(config.SiteDir, config.DraftsDir); err == nil {
		draftsRel = filepath.ToSlash(rel)
	}

	for i := range drafts {
		drafts[i].Body = ""
		drafts[i].Meta = nil
		drafts[i].IsDirty = dirtyFiles[path.Join(draftsRel, drafts[i].Path)]
	}

	draftCache = drafts
	cacheLoaded = true
	return draftCache, nil
}

// DirtyFiles returns the repo-relative paths git reports as modified or
// untracked under dir.
func DirtyFiles(dir string) (map[string]bool, error) {
	cmd := exec.Command("git", "status", "--porcelain", "--untracked-files=all")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	return parsePorcelain(string(out)), nil
}

func parsePorcelain(out string) map[string]bool {
	dirty := make(map[string]bool)
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}
		p := strings.TrimSpace(line[3:])
		// Renames are reported as "old -> new".
		if _, after, ok := strings.Cut(p, " -> "); ok {
			p = after
		}
		dirty[strings.Trim(p, "\"")] = true
	}
	return dirty
}

func InvalidateCache() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	cacheLoaded = false
	draftCache = nil
}
