package adapter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestProfile_Validate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{"valid builtin chamber", Chamber, false},
		{"valid builtin review", Review, false},
		{"valid builtin fallback", Fallback, false},
		{"missing name", Profile{ContainerSelectors: []string{"div"}, NextSelectors: []string{"a"}}, true},
		{"empty container cascade", Profile{Name: "x", NextSelectors: []string{"a"}}, true},
		{"empty pagination cascade", Profile{Name: "x", ContainerSelectors: []string{"div"}}, true},
		{"negative min containers", Profile{Name: "x", ContainerSelectors: []string{"div"}, NextSelectors: []string{"a"}, MinContainers: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.profile.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProfile_MinRequired(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 2, Profile{}.MinRequired())
	assert.Equal(t, 5, Profile{MinContainers: 5}.MinRequired())
}

func TestSelect_ByHost(t *testing.T) {
	t.Parallel()
	p := Select("https://www.yelp.com/search?find_desc=plumbers", nil, Builtin())
	assert.Equal(t, "review", p.Name)

	p = Select("https://foursquare.com/explore?near=Ashburn", nil, Builtin())
	assert.Equal(t, "review", p.Name)
}

func TestSelect_BySignal(t *testing.T) {
	t.Parallel()
	doc := docFrom(t, `<html><body>
		<div class="mn-listing"><h3>Acme</h3></div>
		<div class="mn-listing"><h3>Bravo</h3></div>
	</body></html>`)

	p := Select("https://business.loudounchamber.org/list/searchalpha/a", doc, Builtin())
	assert.Equal(t, "chamber", p.Name)
}

func TestSelect_FallbackForUnknownSite(t *testing.T) {
	t.Parallel()
	doc := docFrom(t, `<html><body><p>nothing recognizable</p></body></html>`)

	p := Select("https://example.com/directory", doc, Builtin())
	assert.Equal(t, "fallback", p.Name)
}

func TestSelect_NeverFails(t *testing.T) {
	t.Parallel()
	// Even with a garbage URL and no document, a usable profile comes back.
	p := Select("://not-a-url", nil, Builtin())
	assert.NotEmpty(t, p.Name)
	assert.NotEmpty(t, p.ContainerSelectors)

	p = Select("https://example.com", nil, nil)
	assert.Equal(t, "fallback", p.Name)
}

func TestLoad_BuiltinsOnly(t *testing.T) {
	t.Parallel()
	profiles, err := Load("")
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "fallback", profiles[len(profiles)-1].Name)
}

func TestLoad_CustomProfilesWinSelection(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: acme-directory
  hosts: ["directory.acme.com"]
  container_selectors: ["div.card"]
  next_selectors: ["a.more"]
`), 0o644))

	profiles, err := Load(path)
	require.NoError(t, err)
	require.Len(t, profiles, 4)
	assert.Equal(t, "acme-directory", profiles[0].Name)

	p := Select("https://directory.acme.com/a", nil, profiles)
	assert.Equal(t, "acme-directory", p.Name)
}

func TestLoad_InvalidProfileIsFatal(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: broken
  next_selectors: ["a.more"]
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
