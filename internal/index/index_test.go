package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robocy-lab/robo-lab/internal/model"
)

func TestPublicationYearsNewestFirst(t *testing.T) {
	groups := []model.PublicationYear{
		{Year: 2022, Entries: []model.Publication{{Name: "old"}}},
		{Year: 2024, Entries: []model.Publication{{Name: "first"}, {Name: "second"}}},
		{Year: 2023, Entries: []model.Publication{{Name: "mid"}}},
	}
	sorted := PublicationYears(groups)

	require.Len(t, sorted, 3)
	assert.Equal(t, []int{2024, 2023, 2022}, []int{sorted[0].Year, sorted[1].Year, sorted[2].Year})
	// authored order within a year survives the sort
	assert.Equal(t, "first", sorted[0].Entries[0].Name)
	assert.Equal(t, "second", sorted[0].Entries[1].Name)
	// input left untouched
	assert.Equal(t, 2022, groups[0].Year)
}

func TestByTagMembership(t *testing.T) {
	rover := &model.ContentItem{Title: "Rover", Tags: []string{"Robotics", "Software"}}
	arm := &model.ContentItem{Title: "Arm", Tags: []string{"Robotics"}}
	essay := &model.ContentItem{Title: "Essay", Tags: []string{"c++"}}

	groups := ByTag([]*model.ContentItem{rover, arm, essay})
	require.Len(t, groups, 3)

	// case-insensitive ascending tag order
	assert.Equal(t, "c++", groups[0].Tag)
	assert.Equal(t, "Robotics", groups[1].Tag)
	assert.Equal(t, "Software", groups[2].Tag)

	// an item with two tags appears under both
	require.Len(t, groups[1].Items, 2)
	assert.Equal(t, "Rover", groups[1].Items[0].Title)
	assert.Equal(t, "Arm", groups[1].Items[1].Title)
	require.Len(t, groups[2].Items, 1)
	assert.Equal(t, "Rover", groups[2].Items[0].Title)
}

func TestByTagEmpty(t *testing.T) {
	assert.Empty(t, ByTag(nil))
	assert.Empty(t, ByTag([]*model.ContentItem{{Title: "untagged"}}))
}

func TestSortByDateNewestFirst(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	items := []*model.ContentItem{
		{Title: "a", Date: day(1)},
		{Title: "c", Date: day(9)},
		{Title: "b", Date: day(4)},
	}
	sorted := SortByDate(items)

	assert.Equal(t, "c", sorted[0].Title)
	assert.Equal(t, "b", sorted[1].Title)
	assert.Equal(t, "a", sorted[2].Title)
	// input order untouched
	assert.Equal(t, "a", items[0].Title)
}

func TestSortByDateKeepsSourceOrderWhenUndated(t *testing.T) {
	items := []*model.ContentItem{
		{Title: "second", Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{Title: "undated"},
		{Title: "first", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	sorted := SortByDate(items)
	assert.Equal(t, "second", sorted[0].Title)
	assert.Equal(t, "undated", sorted[1].Title)
	assert.Equal(t, "first", sorted[2].Title)
}
