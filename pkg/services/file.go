package services

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"blogbuild/pkg/config"
	"blogbuild/pkg/models"

	"github.com/google/renameio/v2"
	"gopkg.in/yaml.v3"
)

// SafeJoin joins target under root/sub, returning "" when target would
// escape it.
func SafeJoin(root, sub, target string) string {
	if target == "" || strings.Contains(target, "\\") || filepath.IsAbs(target) {
		return ""
	}
	cleanTarget := filepath.Clean(target)
	if cleanTarget == ".." || strings.HasPrefix(cleanTarget, ".."+string(filepath.Separator)) {
		return ""
	}
	return filepath.Join(root, sub, cleanTarget)
}

// LoadSite reads site metadata from config.SiteConfig, falling back to the
// defaults for a missing file or missing keys.
func LoadSite() (models.Site, error) {
	site := models.DefaultSite()
	content, err := os.ReadFile(config.SiteConfig)
	if errors.Is(err, fs.ErrNotExist) {
		return site, nil
	}
	if err != nil {
		return site, err
	}

	// Decoding over the defaults keeps keys the file leaves out.
	if err := yaml.Unmarshal(content, &site); err != nil {
		return models.DefaultSite(), fmt.Errorf("parse %s: %w", config.SiteConfig, err)
	}
	return site, nil
}

// writeFileAtomic replaces path with data in a single rename.
func writeFileAtomic(path string, data []byte) error {
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
