package services

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"blogbuild/pkg/config"
	"blogbuild/pkg/models"
)

func mediaRoot() string {
	return filepath.Join(config.SiteDir, config.MediaDir)
}

// mediaURL is the site-absolute path used to reference a media file from a draft.
func mediaURL(name string) string {
	return "/" + path.Join(filepath.ToSlash(config.MediaDir), name)
}

func ListMediaFiles() ([]models.MediaFile, error) {
	entries, err := os.ReadDir(mediaRoot())
	if errors.Is(err, fs.ErrNotExist) {
		return []models.MediaFile{}, nil
	}
	if err != nil {
		return nil, err
	}

	files := []models.MediaFile{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		usagePath := mediaURL(entry.Name())
		files = append(files, models.MediaFile{
			Name: entry.Name(),
			Path: usagePath,
			Size: info.Size(),
			URL:  usagePath,
		})
	}
	return files, nil
}

// sanitizeMediaName keeps the extension and stamps the upload time so
// repeated uploads of "photo.jpg" do not collide.
func sanitizeMediaName(original string, now time.Time) string {
	filename := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	filename = strings.ReplaceAll(filename, " ", "_")
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	if name == "" || name == "." {
		name = "upload"
	}
	return fmt.Sprintf("%s_%d%s", name, now.Unix(), strings.ToLower(ext))
}

func SaveMediaFile(header *multipart.FileHeader) (*models.MediaFile, error) {
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	filename := sanitizeMediaName(header.Filename, time.Now())
	fullMediaPath := SafeJoin(mediaRoot(), "", filename)
	if fullMediaPath == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, header.Filename)
	}
	if err := os.MkdirAll(mediaRoot(), 0o755); err != nil {
		return nil, err
	}

	dst, err := os.Create(fullMediaPath)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return nil, err
	}

	usagePath := mediaURL(filename)
	return &models.MediaFile{
		Name: filename,
		Path: usagePath,
		Size: header.Size,
		URL:  usagePath,
	}, nil
}

func DeleteMediaFile(filename string) error {
	if filename != filepath.Base(filename) {
		return fmt.Errorf("%w: %q", ErrInvalidPath, filename)
	}
	fullMediaPath := SafeJoin(mediaRoot(), "", filename)
	if fullMediaPath == "" {
		return fmt.Errorf("%w: %q", ErrInvalidPath, filename)
	}
	return os.Remove(fullMediaPath)
}
