// Package render resolves layout names to templates and executes them.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Slugify lowercases s and joins its words with dashes, producing the path
// segment used for tag pages. Templates reach it as the "slug" function so
// links and written paths cannot drift apart.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "-")
	return strings.ReplaceAll(s, "/", "-")
}

// TemplateNotFoundError reports a layout name with no registered template.
type TemplateNotFoundError struct {
	Layout string
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("no template registered for layout %q", e.Layout)
}

// Registry holds every parsed layout, keyed by template file name.
type Registry struct {
	tpl *template.Template
}

// LoadLayouts parses every .html file under dir into a Registry.
//
// Parse order matters with html/template: base.html and the partials are
// parsed first so page layouts may redefine their blocks, and home.html is
// parsed last since it redefines the most.
func LoadLayouts(dir string) (*Registry, error) {
	var layoutFiles []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			layoutFiles = append(layoutFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan layouts dir %q: %w", dir, err)
	}

	var basePath, homePath string
	var partials, pages []string
	for _, f := range layoutFiles {
		switch {
		case filepath.Base(f) == "base.html" && filepath.Dir(f) == dir:
			basePath = f
		case filepath.Base(f) == "home.html" && filepath.Dir(f) == dir:
			homePath = f
		case strings.HasPrefix(filepath.Dir(f), filepath.Join(dir, "partials")):
			partials = append(partials, f)
		default:
			pages = append(pages, f)
		}
	}
	if basePath == "" {
		return nil, fmt.Errorf("base.html not found in layouts directory %q", dir)
	}

	root := template.New("base.html").Funcs(template.FuncMap{
		"slug": Slugify,
	})
	tpl, err := root.ParseFiles(append([]string{basePath}, partials...)...)
	if err != nil {
		return nil, fmt.Errorf("parse base layout and partials: %w", err)
	}
	if len(pages) > 0 {
		if tpl, err = tpl.ParseFiles(pages...); err != nil {
			return nil, fmt.Errorf("parse page layouts: %w", err)
		}
	}
	if homePath != "" {
		if tpl, err = tpl.ParseFiles(homePath); err != nil {
			return nil, fmt.Errorf("parse home layout: %w", err)
		}
	}
	return &Registry{tpl: tpl}, nil
}

// Resolve maps a layout name from front-matter to a registered template
// name, accepting both "project-detail" and "project-detail.html".
func (r *Registry) Resolve(layout string) (string, error) {
	if r.tpl.Lookup(layout) != nil {
		return layout, nil
	}
	if withExt := layout + ".html"; r.tpl.Lookup(withExt) != nil {
		return withExt, nil
	}
	return "", &TemplateNotFoundError{Layout: layout}
}

// Has reports whether a template is registered under the given layout name.
func (r *Registry) Has(layout string) bool {
	_, err := r.Resolve(layout)
	return err == nil
}

// Layouts returns the names of every registered template.
func (r *Registry) Layouts() []string {
	defined := r.tpl.Templates()
	names := make([]string, 0, len(defined))
	for _, t := range defined {
		if t.Name() != "" {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Render executes the named layout with data and returns the markup. It is
// a pure function of its inputs; nothing is written anywhere.
func (r *Registry) Render(layout string, data interface{}) ([]byte, error) {
	name, err := r.Resolve(layout)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("execute layout %q: %w", name, err)
	}
	return buf.Bytes(), nil
}
