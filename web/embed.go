// Package web carries the browser page served by `sudoku-coach serve`.
package web

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"svw.info/sudokucoach/internal/domain"
)

//go:embed templates/*.tmpl static/*
var Assets embed.FS

// StaticFS returns a file system for serving /static assets.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(Assets, "static")
	if err != nil {
		return http.FS(embed.FS{})
	}
	return http.FS(sub)
}

// Templates parses the embedded templates.
func Templates() (*template.Template, error) {
	return template.ParseFS(Assets, "templates/*.tmpl")
}

// Index is the data the index page renders with.
type Index struct {
	Variants     []string
	Difficulties []string
	Selected     string
}

// NewIndex lists every variant and difficulty, preselecting v.
func NewIndex(v domain.Variant) Index {
	idx := Index{Selected: v.Key()}
	for _, x := range domain.Variants {
		idx.Variants = append(idx.Variants, x.Key())
	}
	for _, d := range []domain.Difficulty{domain.Easy, domain.Medium, domain.Hard, domain.Expert} {
		idx.Difficulties = append(idx.Difficulties, d.String())
	}
	return idx
}

// RenderIndex writes the index page.
func RenderIndex(t *template.Template, w io.Writer, idx Index) error {
	return t.ExecuteTemplate(w, "index.tmpl", idx)
}
