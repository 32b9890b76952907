// Package index builds the aggregate views of a collection: year-grouped
// publications, tag membership, and date-ordered listings. Everything here
// is pure; an empty collection yields an empty result, never an error.
package index

import (
	"sort"
	"strings"

	"github.com/robocy-lab/robo-lab/internal/model"
)

// PublicationYears orders year groups newest first. Entries within a group
// are left exactly as authored.
func PublicationYears(groups []model.PublicationYear) []model.PublicationYear {
	out := make([]model.PublicationYear, len(groups))
	copy(out, groups)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Year > out[j].Year
	})
	return out
}

// ByTag builds the tag index: one group per distinct tag, groups ordered by
// case-insensitive tag name, items within a group keeping the order they
// were given in. An item carrying n tags appears in n groups.
func ByTag(items []*model.ContentItem) []model.TagGroup {
	byTag := make(map[string][]*model.ContentItem)
	for _, item := range items {
		for _, tag := range item.Tags {
			byTag[tag] = append(byTag[tag], item)
		}
	}

	groups := make([]model.TagGroup, 0, len(byTag))
	for tag, tagged := range byTag {
		groups = append(groups, model.TagGroup{Tag: tag, Items: tagged})
	}
	sort.Slice(groups, func(i, j int) bool {
		a, b := strings.ToLower(groups[i].Tag), strings.ToLower(groups[j].Tag)
		if a == b {
			return groups[i].Tag < groups[j].Tag
		}
		return a < b
	})
	return groups
}

// SortByDate returns the items newest first when every item carries a date.
// When any item is undated the source order is preserved, so a collection
// never half-sorts.
func SortByDate(items []*model.ContentItem) []*model.ContentItem {
	for _, item := range items {
		if item.Date.IsZero() {
			return items
		}
	}
	out := make([]*model.ContentItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}
