package util

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestFiles creates a small component project.
func setupTestFiles(t *testing.T) (dir string, files map[string]string) {
	t.Helper()

	dir = t.TempDir()
	files = map[string]string{
		"card.tsx": `import { Serializable } from "@react-json-templates/core";
export default Serializable("card", Card);
`,
		"Page.rjt.tsx": "import Card from \"./card\";\n<Card title=\"你好 👋\" />\n",
		"empty.ts":     "",
		"large.ts":     strings.Repeat("// comment line\n", 2000),
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir, files
}

func TestFileCache_ReadFile(t *testing.T) {
	dir, files := setupTestFiles(t)
	fc := NewFileCache(UnboundedFileCacheConfig())
	defer fc.Close()

	for name, content := range files {
		data, err := fc.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, content, string(data), name)
	}
	assert.Equal(t, len(files), fc.Size())

	// Second read is a hit.
	_, err := fc.ReadFile(filepath.Join(dir, "card.tsx"))
	require.NoError(t, err)
	stats := fc.Stats()
	assert.Equal(t, int64(len(files)), stats.FilesLoaded)
	assert.Equal(t, int64(1), stats.CacheHits)
}

func TestFileCache_ReadFileReturnsCopy(t *testing.T) {
	dir, _ := setupTestFiles(t)
	path := filepath.Join(dir, "card.tsx")
	fc := NewFileCache(UnboundedFileCacheConfig())
	defer fc.Close()

	data, err := fc.ReadFile(path)
	require.NoError(t, err)
	fc.Invalidate(path)

	// The copy outlives the mapping.
	assert.True(t, strings.HasPrefix(string(data), "import { Serializable }"))
	assert.Equal(t, 0, fc.Size())
}

func TestFileCache_RemapsChangedFiles(t *testing.T) {
	dir, _ := setupTestFiles(t)
	path := filepath.Join(dir, "card.tsx")
	fc := NewFileCache(UnboundedFileCacheConfig())
	defer fc.Close()

	_, err := fc.ReadFile(path)
	require.NoError(t, err)

	updated := "export const x = 1;\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0644))
	later := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	data, err := fc.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, updated, string(data))
	assert.Equal(t, int64(1), fc.Stats().Remaps)
	assert.Equal(t, 1, fc.Size())
}

func TestFileCache_Invalidate(t *testing.T) {
	dir, _ := setupTestFiles(t)
	path := filepath.Join(dir, "card.tsx")
	fc := NewFileCache(UnboundedFileCacheConfig())
	defer fc.Close()

	_, err := fc.Get(path)
	require.NoError(t, err)
	fc.Invalidate(path)
	fc.Invalidate(filepath.Join(dir, "never-loaded.ts"))
	assert.Equal(t, 0, fc.Size())

	_, err = fc.Get(path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), fc.Stats().FilesLoaded)
}

func TestFileCache_Limits_MaxFiles(t *testing.T) {
	dir, _ := setupTestFiles(t)
	fc := NewFileCache(&FileCacheConfig{MaxFiles: 2, EnableMetrics: true})
	defer fc.Close()

	_, err := fc.Get(filepath.Join(dir, "card.tsx"))
	require.NoError(t, err)
	_, err = fc.Get(filepath.Join(dir, "Page.rjt.tsx"))
	require.NoError(t, err)

	_, err = fc.Get(filepath.Join(dir, "large.ts"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FileCache limit reached")

	// Cached files are still served.
	_, err = fc.Get(filepath.Join(dir, "card.tsx"))
	assert.NoError(t, err)
}

func TestFileCache_Limits_MaxMemoryMB(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big.ts")
	require.NoError(t, os.WriteFile(big, make([]byte, 2*1024*1024), 0644))

	fc := NewFileCache(&FileCacheConfig{MaxMemoryMB: 1})
	defer fc.Close()

	_, err := fc.Get(big)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory limit reached")
}

func TestFileCache_EmptyFiles(t *testing.T) {
	dir, _ := setupTestFiles(t)
	fc := NewFileCache(UnboundedFileCacheConfig())
	defer fc.Close()

	mf, err := fc.Get(filepath.Join(dir, "empty.ts"))
	require.NoError(t, err)
	assert.Nil(t, mf.Data)
	assert.Equal(t, int64(0), mf.Size)

	data, err := fc.ReadFile(filepath.Join(dir, "empty.ts"))
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFileCache_ConcurrentAccess(t *testing.T) {
	dir, files := setupTestFiles(t)
	fc := NewFileCache(UnboundedFileCacheConfig())
	defer fc.Close()

	path := filepath.Join(dir, "card.tsx")
	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			data, err := fc.ReadFile(path)
			if err != nil {
				errs <- err
				return
			}
			if string(data) != files["card.tsx"] {
				errs <- fmt.Errorf("unexpected content %q", data)
			}
		}()
		go func() {
			defer wg.Done()
			fc.Invalidate(path)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestFileCache_FileNotFound(t *testing.T) {
	fc := NewFileCache(nil)
	defer fc.Close()

	_, err := fc.ReadFile(filepath.Join(t.TempDir(), "missing.tsx"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, int64(1), fc.Stats().CacheMisses)
}

func TestFileCache_Close(t *testing.T) {
	dir, files := setupTestFiles(t)
	fc := NewFileCache(UnboundedFileCacheConfig())

	for name := range files {
		_, err := fc.Get(filepath.Join(dir, name))
		require.NoError(t, err)
	}
	require.NoError(t, fc.Close())
	assert.Equal(t, 0, fc.Size())
	assert.Equal(t, float64(0), fc.Stats().TotalMappedMB)
}
