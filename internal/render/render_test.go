package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robocy-lab/robo-lab/internal/model"
)

func writeLayouts(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func minimalLayouts(t *testing.T) string {
	return writeLayouts(t, map[string]string{
		"base.html":            "<html><body>{{ template \"header.html\" . }}<h1>{{ .Title }}</h1></body></html>",
		"partials/header.html": "<nav>{{ .Site.Title }}</nav>",
		"project-detail.html":  "<article>{{ .Item.Title }} tags:{{ range .Item.Tags }}<a href=\"/tags/{{ slug . }}/\">{{ . }}</a>{{ end }}</article>",
	})
}

func TestLoadLayoutsRequiresBase(t *testing.T) {
	dir := writeLayouts(t, map[string]string{
		"single.html": "<html></html>",
	})
	_, err := LoadLayouts(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base.html")
}

func TestResolveAcceptsBareAndSuffixedNames(t *testing.T) {
	reg, err := LoadLayouts(minimalLayouts(t))
	require.NoError(t, err)

	name, err := reg.Resolve("project-detail")
	require.NoError(t, err)
	assert.Equal(t, "project-detail.html", name)

	name, err = reg.Resolve("project-detail.html")
	require.NoError(t, err)
	assert.Equal(t, "project-detail.html", name)
}

func TestResolveUnknownLayout(t *testing.T) {
	reg, err := LoadLayouts(minimalLayouts(t))
	require.NoError(t, err)

	_, err = reg.Resolve("no-such-layout")
	var nferr *TemplateNotFoundError
	require.ErrorAs(t, err, &nferr)
	assert.Equal(t, "no-such-layout", nferr.Layout)
}

func TestRenderIsDeterministic(t *testing.T) {
	reg, err := LoadLayouts(minimalLayouts(t))
	require.NoError(t, err)

	data := model.PageData{
		Site: &model.SiteData{Title: "Lab"},
		Item: &model.ContentItem{Title: "Rover", Tags: []string{"Robotics", "Software"}},
	}
	first, err := reg.Render("project-detail", data)
	require.NoError(t, err)
	second, err := reg.Render("project-detail", data)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Contains(t, string(first), `href="/tags/robotics/"`)
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Robotics", "robotics"},
		{"Mobile Robots", "mobile-robots"},
		{"  padded  words ", "padded-words"},
		{"C++", "c++"},
		{"a/b", "a-b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "Slugify(%q)", tt.in)
	}
}
