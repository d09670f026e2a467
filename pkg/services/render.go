package services

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"

	"blogbuild/pkg/config"
	"blogbuild/pkg/models"
	"blogbuild/web"
)

var templateNames = []string{"post.html", "index.html", "partials.html"}

type pageData struct {
	Site     models.Site
	IsIndex  bool
	Post     models.Post
	MetaLine string
	Body     template.HTML
	Posts    []models.Post
}

// Renderer renders post and index pages from the embedded templates, with
// same-named files in an override directory taking precedence.
type Renderer struct {
	site models.Site
	tmpl *template.Template
}

func NewRenderer(site models.Site, overrideDir string) (*Renderer, error) {
	tmpl, err := template.New("site").Funcs(template.FuncMap{
		"iconURL": iconURL,
	}).ParseFS(web.TemplateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse embedded templates: %w", err)
	}

	if overrideDir != "" {
		for _, name := range templateNames {
			path := filepath.Join(overrideDir, name)
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				continue
			} else if err != nil {
				return nil, err
			}
			if tmpl, err = tmpl.ParseFiles(path); err != nil {
				return nil, fmt.Errorf("parse template override %s: %w", path, err)
			}
		}
	}

	return &Renderer{site: site, tmpl: tmpl}, nil
}

func (r *Renderer) Site() models.Site {
	return r.site
}

// RenderPost renders a single post page. The body is trusted HTML.
func (r *Renderer) RenderPost(post models.Post) ([]byte, error) {
	return r.execute("post.html", pageData{
		Site:     r.site,
		Post:     post,
		MetaLine: MetaLine(post.Meta),
		Body:     template.HTML(post.BodyHTML),
	})
}

// RenderIndex renders the listing page; posts must already be sorted.
func (r *Renderer) RenderIndex(posts []models.Post) ([]byte, error) {
	return r.execute("index.html", pageData{
		Site:    r.site,
		IsIndex: true,
		Posts:   posts,
	})
}

func (r *Renderer) execute(name string, data pageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// MetaLine is the "date · tags" line above a post title.
func MetaLine(meta models.Meta) string {
	line := meta.Date
	if meta.Tags != "" {
		line += " · " + meta.Tags
	}
	return line
}

func iconURL(glyph string) template.URL {
	if glyph == "" {
		glyph = "◈"
	}
	svg := "<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>" +
		template.HTMLEscapeString(glyph) + "</text></svg>"
	return template.URL("data:image/svg+xml," + svg)
}

// LoadRenderer reads site.yml and the template overrides from the configured
// locations.
func LoadRenderer() (*Renderer, error) {
	site, err := LoadSite()
	if err != nil {
		return nil, err
	}
	return NewRenderer(site, config.TemplateDir)
}
