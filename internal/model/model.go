package model

import (
	"html/template"
	"time"
)

// ContentItem represents a single parsed content file: the front-matter
// fields plus the markdown body already converted to HTML.
type ContentItem struct {
	Layout      string
	Title       string
	Image       string
	Description string
	Tags        []string
	Date        time.Time

	// blog-detail only
	TGPostLink string

	// research only
	FieldsOfInterest []string
	Publications     []PublicationYear

	Permalink   string
	Collection  string
	SourcePath  string
	ContentHTML template.HTML
	Frontmatter map[string]interface{}
}

// Publication is one research entry under a year heading.
type Publication struct {
	Authors string
	Name    string
	DOI     string
}

// PublicationYear groups the publications of a single year. A slice of
// these is ordered newest year first; entries keep their authored order.
type PublicationYear struct {
	Year    int
	Entries []Publication
}

// TagGroup collects the items carrying one tag.
type TagGroup struct {
	Tag   string
	Items []*ContentItem
}

// SiteData holds all site-wide data reachable from any layout.
type SiteData struct {
	Title       string
	BaseURL     string
	Items       []*ContentItem
	Collections map[string][]*ContentItem
	Tags        []TagGroup
}
