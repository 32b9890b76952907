package model

// PageData is the execution context handed to a layout. Item is set for
// detail pages; Items and Tag are set for listing and tag index pages.
type PageData struct {
	Site  *SiteData
	Item  *ContentItem
	Items []*ContentItem
	Tag   string
	Title string
}
