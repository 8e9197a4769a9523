package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{
		"Page.rjt.tsx",
		"pages/About.rjt.jsx",
		"pages/nested/Deep.rjt.tsx",
		"components/Card.tsx",
		"components/util.js",
		"README.md",
		"node_modules/pkg/Vendored.rjt.tsx",
		"dist/Built.rjt.tsx",
	} {
		writeFile(t, dir, name, "<></>\n")
	}
	return dir
}

func TestDiscoverFiles_Templates(t *testing.T) {
	dir := setupProject(t)

	files, err := DiscoverFiles(dir, DefaultScanConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "Page.rjt.tsx"),
		filepath.Join(dir, "pages/About.rjt.jsx"),
		filepath.Join(dir, "pages/nested/Deep.rjt.tsx"),
	}, files)
}

func TestDiscoverFiles_Sources(t *testing.T) {
	dir := setupProject(t)

	files, err := DiscoverFiles(dir, SourceScanConfig())
	require.NoError(t, err)

	names := fileNames(files)
	assert.Contains(t, names, "Card.tsx")
	assert.Contains(t, names, "util.js")
	assert.Contains(t, names, "Page.rjt.tsx")
	assert.NotContains(t, names, "README.md")
	assert.NotContains(t, names, "Vendored.rjt.tsx")
	assert.NotContains(t, names, "Built.rjt.tsx")
}

func TestDiscoverFiles_CustomExclude(t *testing.T) {
	dir := setupProject(t)

	cfg := DefaultScanConfig()
	cfg.Exclude = append(cfg.Exclude, "pages/nested/**")
	files, err := DiscoverFiles(dir, cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Page.rjt.tsx", "About.rjt.jsx"}, fileNames(files))
}

func TestDiscoverFiles_InvalidPattern(t *testing.T) {
	_, err := DiscoverFiles(t.TempDir(), ScanConfig{Include: []string{"[abc"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid include pattern")

	_, err = DiscoverFiles(t.TempDir(), ScanConfig{Exclude: []string{"[abc"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid exclude pattern")
}

func TestDiscoverTemplates_FiltersSuffix(t *testing.T) {
	dir := setupProject(t)

	templates, err := DiscoverTemplates(dir, SourceScanConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"Page.rjt.tsx", "About.rjt.jsx", "Deep.rjt.tsx"}, fileNames(templates))
}

func TestScanConfig_Matching(t *testing.T) {
	cfg := DefaultScanConfig()

	assert.True(t, cfg.Included("Page.rjt.tsx"))
	assert.True(t, cfg.Included("a/b/Page.rjt.jsx"))
	assert.False(t, cfg.Included("a/Card.tsx"))
	assert.True(t, cfg.Excluded("node_modules/x/Page.rjt.tsx"))
	assert.True(t, cfg.Excluded("packages/app/node_modules/x.tsx"))
	assert.False(t, cfg.Excluded("src/Page.rjt.tsx"))

	assert.True(t, ScanConfig{}.Included("anything.txt"))
	assert.False(t, ScanConfig{}.Excluded("anything.txt"))
}

func fileNames(paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return names
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
