// Package content parses authored markdown files into model.ContentItems.
//
// A content file is a front-matter block (YAML between "---" markers or
// TOML between "+++" markers) followed by a markdown body. The body is
// converted to HTML here; everything downstream works on the parsed item.
package content

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"

	"github.com/robocy-lab/robo-lab/internal/index"
	"github.com/robocy-lab/robo-lab/internal/model"
)

// ParseError reports a malformed content file. Field names the offending
// front-matter key when the problem is a single field.
type ParseError struct {
	Path  string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("parse %s: field %q: %v", e.Path, e.Field, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errMissing = fmt.Errorf("required field missing")

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithHardWraps(),
	),
)

var formats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
}

var titleCaser = cases.Title(language.English)

// dateFormats are tried in order when parsing a front-matter date string.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// detailMeta covers the typed fields of the project-detail and blog-detail
// layouts. Unknown keys stay available through ContentItem.Frontmatter.
type detailMeta struct {
	Name        string   `yaml:"name"`
	Title       string   `yaml:"title"`
	Image       string   `yaml:"image"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	TGPostLink  string   `yaml:"tg_post_link"`
	Permalink   string   `yaml:"permalink"`
	Date        string   `yaml:"date"`
}

type researchMeta struct {
	Title            string                       `yaml:"title"`
	Name             string                       `yaml:"name"`
	Permalink        string                       `yaml:"permalink"`
	FieldsOfInterest []string                     `yaml:"fields_of_interest"`
	Publications     map[string][]publicationMeta `yaml:"publications"`
}

type publicationMeta struct {
	Authors string `yaml:"authors"`
	Name    string `yaml:"name"`
	DOI     string `yaml:"doi"`
}

// Parse reads one content file from r. It fails with a *ParseError when the
// front-matter is malformed or the required layout field is missing.
func Parse(path string, r io.Reader) (*model.ContentItem, error) {
	var fm map[string]interface{}
	body, err := frontmatter.Parse(r, &fm, formats...)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if fm == nil {
		fm = map[string]interface{}{}
	}

	layout, _ := fm["layout"].(string)
	if layout == "" {
		return nil, &ParseError{Path: path, Field: "layout", Err: errMissing}
	}

	var buf bytes.Buffer
	if err := markdown.Convert(body, &buf); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	item := &model.ContentItem{
		Layout:      layout,
		SourcePath:  path,
		ContentHTML: template.HTML(buf.String()),
		Frontmatter: fm,
	}
	if err := decodeMeta(item, fm); err != nil {
		return nil, err
	}
	if item.Title == "" {
		item.Title = derivedTitle(path)
	}
	return item, nil
}

// decodeMeta maps the generic front-matter onto the item's typed fields via
// a YAML round-trip, so each layout declares its schema once as a struct.
func decodeMeta(item *model.ContentItem, fm map[string]interface{}) error {
	raw, err := yaml.Marshal(stringKeys(fm))
	if err != nil {
		return &ParseError{Path: item.SourcePath, Err: err}
	}

	switch item.Layout {
	case "research":
		var meta researchMeta
		if err := yaml.Unmarshal(raw, &meta); err != nil {
			return &ParseError{Path: item.SourcePath, Err: err}
		}
		item.Title = firstNonEmpty(meta.Title, meta.Name)
		item.Permalink = meta.Permalink
		item.FieldsOfInterest = meta.FieldsOfInterest
		pubs, err := publicationYears(item.SourcePath, meta.Publications)
		if err != nil {
			return err
		}
		item.Publications = pubs
	default:
		var meta detailMeta
		if err := yaml.Unmarshal(raw, &meta); err != nil {
			return &ParseError{Path: item.SourcePath, Err: err}
		}
		item.Title = firstNonEmpty(meta.Name, meta.Title)
		item.Image = meta.Image
		item.Description = meta.Description
		item.Tags = meta.Tags
		item.TGPostLink = meta.TGPostLink
		item.Permalink = meta.Permalink
		if meta.Date != "" {
			date, err := parseDate(meta.Date)
			if err != nil {
				return &ParseError{Path: item.SourcePath, Field: "date", Err: err}
			}
			item.Date = date
		}
	}
	return nil
}

// publicationYears converts the authored year→entries mapping into year
// groups ordered by the index builder. Entry order within a year is the
// authored order and is preserved.
func publicationYears(path string, raw map[string][]publicationMeta) ([]model.PublicationYear, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	groups := make([]model.PublicationYear, 0, len(raw))
	for key, entries := range raw {
		year, err := strconv.Atoi(key)
		if err != nil {
			return nil, &ParseError{Path: path, Field: "publications", Err: fmt.Errorf("year %q is not numeric", key)}
		}
		group := model.PublicationYear{Year: year, Entries: make([]model.Publication, 0, len(entries))}
		for _, e := range entries {
			group.Entries = append(group.Entries, model.Publication{Authors: e.Authors, Name: e.Name, DOI: e.DOI})
		}
		groups = append(groups, group)
	}
	return index.PublicationYears(groups), nil
}

// LoadDir walks root and parses every markdown file, assigning each item
// its collection (first path element under root) and a derived permalink
// when the front-matter declares none. The first failure aborts the load.
func LoadDir(root string) ([]*model.ContentItem, error) {
	var items []*model.ContentItem
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		item, err := Parse(path, f)
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		item.Collection = collectionOf(relPath)
		if item.Permalink == "" {
			item.Permalink = derivedPermalink(relPath)
		}
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// collectionOf derives the collection name from the first path element;
// files at the content root belong to the "page" collection.
func collectionOf(relPath string) string {
	parts := strings.Split(filepath.Dir(relPath), string(filepath.Separator))
	if len(parts) > 0 && parts[0] != "." && parts[0] != "" {
		return parts[0]
	}
	return "page"
}

func derivedPermalink(relPath string) string {
	p := "/" + strings.TrimSuffix(relPath, filepath.Ext(relPath))
	p = filepath.ToSlash(filepath.Clean(p))
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return p
}

// derivedTitle turns a file name like "swarm-slam.md" into "Swarm Slam".
func derivedTitle(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.ReplaceAll(strings.ReplaceAll(base, "-", " "), "_", " ")
	return titleCaser.String(base)
}

func parseDate(s string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q, use YYYY-MM-DD or RFC3339", s)
}

// stringKeys rewrites nested map keys to strings so yaml.v2 output decodes
// into string-keyed structs regardless of the front-matter format used.
func stringKeys(v interface{}) interface{} {
	switch val := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = stringKeys(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = stringKeys(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = stringKeys(item)
		}
		return out
	default:
		return v
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
