// Package site assembles the whole output tree: it loads layouts and
// content, plans every page with its output path, and renders and writes
// them. One build is a single linear pass; re-running it over unchanged
// input reproduces the same tree byte for byte.
package site

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/robocy-lab/robo-lab/internal/config"
	"github.com/robocy-lab/robo-lab/internal/content"
	"github.com/robocy-lab/robo-lab/internal/index"
	"github.com/robocy-lab/robo-lab/internal/model"
	"github.com/robocy-lab/robo-lab/internal/render"
)

// BuildError reports two pages resolving to the same output path. This is
// always fatal: finishing the build would silently drop one of them.
type BuildError struct {
	Path   string
	First  string
	Second string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("output path %q produced by both %s and %s", e.Path, e.First, e.Second)
}

// page is one planned output file: where it goes, which layout renders it,
// and the data the layout sees.
type page struct {
	outPath string
	layout  string
	data    model.PageData
	source  string
}

// Build runs the full pipeline: load layouts, load content, plan pages,
// then render and write. Planning happens entirely before the first write,
// so path collisions and unknown layouts abort with nothing on disk.
func Build(cfg config.Config, logger *log.Logger) error {
	start := time.Now()

	reg, err := render.LoadLayouts(cfg.LayoutsDir)
	if err != nil {
		return err
	}
	items, err := content.LoadDir(cfg.ContentDir)
	if err != nil {
		return err
	}
	logger.Info("content loaded", "items", len(items))

	for _, item := range items {
		if _, err := reg.Resolve(item.Layout); err != nil {
			return fmt.Errorf("%s: %w", item.SourcePath, err)
		}
	}

	site := assemble(cfg, items)
	pages := planPages(cfg, reg, site, logger)

	seen := make(map[string]string, len(pages))
	for _, p := range pages {
		if first, ok := seen[p.outPath]; ok {
			return &BuildError{Path: p.outPath, First: first, Second: p.source}
		}
		seen[p.outPath] = p.source
	}

	if err := os.RemoveAll(cfg.OutputDir); err != nil {
		return fmt.Errorf("clean output directory %q: %w", cfg.OutputDir, err)
	}
	if err := os.MkdirAll(cfg.OutputDir, os.ModePerm); err != nil {
		return fmt.Errorf("create output directory %q: %w", cfg.OutputDir, err)
	}

	if cfg.StaticDir != "" {
		if _, err := os.Stat(cfg.StaticDir); err == nil {
			if err := copyDirContents(cfg.StaticDir, cfg.OutputDir, logger); err != nil {
				return fmt.Errorf("copy static assets: %w", err)
			}
		} else {
			logger.Debug("no static assets directory, skipping copy", "dir", cfg.StaticDir)
		}
	}

	// Page renders are pure and paths are unique at this point, so they can
	// fan out. Every listing already holds its fully assembled collection.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, p := range pages {
		g.Go(func() error {
			out, err := reg.Render(p.layout, p.data)
			if err != nil {
				return fmt.Errorf("%s: %w", p.source, err)
			}
			if err := os.MkdirAll(filepath.Dir(p.outPath), os.ModePerm); err != nil {
				return err
			}
			if err := os.WriteFile(p.outPath, out, 0o644); err != nil {
				return err
			}
			logger.Debug("page written", "path", p.outPath, "layout", p.layout)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("build complete", "pages", len(pages), "elapsed", time.Since(start))
	return nil
}

// assemble groups the parsed items into collections and the tag index.
func assemble(cfg config.Config, items []*model.ContentItem) *model.SiteData {
	site := &model.SiteData{
		Title:       cfg.SiteTitle,
		BaseURL:     cfg.BaseURL,
		Items:       items,
		Collections: make(map[string][]*model.ContentItem),
	}
	for _, item := range items {
		site.Collections[item.Collection] = append(site.Collections[item.Collection], item)
	}
	if cfg.SortListings {
		for name, coll := range site.Collections {
			site.Collections[name] = index.SortByDate(coll)
		}
	}
	site.Tags = index.ByTag(items)
	return site
}

// planPages lists every output file before anything is rendered: one page
// per item, one listing per list-* layout, one page per tag, and the home
// page when a home layout exists.
func planPages(cfg config.Config, reg *render.Registry, site *model.SiteData, logger *log.Logger) []page {
	var pages []page

	for _, item := range site.Items {
		pages = append(pages, page{
			outPath: outputPath(cfg.OutputDir, item.Permalink),
			layout:  item.Layout,
			data:    model.PageData{Site: site, Item: item, Title: item.Title},
			source:  item.SourcePath,
		})
	}

	// A list-<collection>.html layout gets its listing even when no item
	// belongs to the collection yet; an empty listing is not an error.
	for _, name := range reg.Layouts() {
		coll, ok := strings.CutPrefix(name, "list-")
		if !ok {
			continue
		}
		coll = strings.TrimSuffix(coll, ".html")
		pages = append(pages, page{
			outPath: outputPath(cfg.OutputDir, "/"+coll+"/"),
			layout:  name,
			data:    model.PageData{Site: site, Items: site.Collections[coll], Title: coll},
			source:  "listing:" + coll,
		})
	}

	if reg.Has("tag") {
		for _, group := range site.Tags {
			pages = append(pages, page{
				outPath: outputPath(cfg.OutputDir, "/tags/"+render.Slugify(group.Tag)+"/"),
				layout:  "tag",
				data:    model.PageData{Site: site, Items: group.Items, Tag: group.Tag, Title: group.Tag},
				source:  "tag:" + group.Tag,
			})
		}
	} else if len(site.Tags) > 0 {
		logger.Debug("no tag layout registered, skipping tag index pages")
	}

	if reg.Has("home") {
		pages = append(pages, page{
			outPath: filepath.Join(cfg.OutputDir, "index.html"),
			layout:  "home",
			data:    model.PageData{Site: site, Title: cfg.SiteTitle},
			source:  "home",
		})
	}
	return pages
}

// outputPath places a permalink under the output dir as a directory-style
// URL, so "/projects/swarm-slam/" lands at .../projects/swarm-slam/index.html.
func outputPath(outputDir, permalink string) string {
	return filepath.Join(outputDir, filepath.FromSlash(permalink), "index.html")
}
