// FileCache serves source files from memory-mapped regions.
//
// The watcher and the MCP server read the same handful of modules over and
// over (every template re-reads the component modules it imports). Mapping
// each file once and copying bytes out of the mapping avoids a read syscall
// per import, and only pages that are touched are loaded into RAM.
//
// Entries are revalidated against the file's size and modification time on
// every read, so an edited file is remapped transparently. Invalidate drops an
// entry eagerly, which the watcher does for every change event it sees.
//
// Limits:
//   - MaxFiles bounds the number of mapped files (file descriptors).
//   - MaxMemoryMB bounds the mapped virtual memory.
//
// When mmap fails the file is read with os.ReadFile and kept in memory.
package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// FileCache provides cached access to source files.
//
// Thread-safe: reads of cached files run in parallel, loads are exclusive.
type FileCache interface {
	// Get returns the mapped file, loading or remapping it when needed.
	Get(filePath string) (*MappedFile, error)

	// ReadFile returns a copy of the file content. It has the signature of
	// os.ReadFile so the cache can stand in for it.
	ReadFile(filePath string) ([]byte, error)

	// Invalidate unmaps a file so the next read loads it again.
	Invalidate(filePath string)

	// Size returns the number of cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files and releases resources.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles is the maximum number of cached files. 0 means unlimited.
	MaxFiles int

	// MaxMemoryMB is the maximum mapped virtual memory in MB. 0 means
	// unlimited. Only touched pages count against physical RAM.
	MaxMemoryMB int

	// EnableMetrics turns on hit/miss accounting.
	EnableMetrics bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns limits that fit front-end projects of a few
// thousand modules.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:      4096,
		MaxMemoryMB:   512,
		EnableMetrics: true,
	}
}

// UnboundedFileCacheConfig returns a config with no limits, for tests and
// one-shot commands.
func UnboundedFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{EnableMetrics: true}
}

// MappedFile is one cached file.
type MappedFile struct {
	Path string

	// Data is the mapped region. Nil for empty files. Data is only valid
	// until the entry is invalidated; use ReadFile to keep the content.
	Data mmap.MMap

	// File is kept open while the region is mapped. Nil for fallback entries.
	File *os.File

	Size    int64
	ModTime time.Time

	MappedAt time.Time
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	// FilesLoaded is the number of loads, remaps included.
	FilesLoaded int64
	// FilesCached is the current number of cached files.
	FilesCached int
	CacheHits   int64
	CacheMisses int64
	// Remaps counts entries reloaded because the file changed on disk.
	Remaps int64
	// MmapFailures counts files served from the os.ReadFile fallback.
	MmapFailures int64
	// TotalMappedMB is the currently mapped virtual memory.
	TotalMappedMB float64
}

// NewFileCache creates a FileCache. A nil config uses DefaultFileCacheConfig.
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &fileCacheImpl{
		config: config,
		cache:  make(map[string]*MappedFile),
		logger: config.Logger,
	}
}

type fileCacheImpl struct {
	config *FileCacheConfig
	logger *slog.Logger

	// mu guards cache
	cache map[string]*MappedFile
	mu    sync.RWMutex

	// statsMu guards stats
	stats   FileCacheStats
	statsMu sync.Mutex
}

// Get returns the cached file when it is still fresh, and (re)loads it
// otherwise.
func (fc *fileCacheImpl) Get(filePath string) (*MappedFile, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		fc.recordMiss()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	fc.mu.RLock()
	mf, ok := fc.cache[filePath]
	fc.mu.RUnlock()
	if ok && fresh(mf, stat) {
		fc.recordHit()
		return mf, nil
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Another goroutine may have loaded it while we waited for the lock.
	mf, ok = fc.cache[filePath]
	if ok && fresh(mf, stat) {
		fc.recordHit()
		return mf, nil
	}
	if ok {
		fc.release(mf)
		delete(fc.cache, filePath)
		fc.recordRemap()
	}

	if err := fc.checkLimitsWithNewFile(stat.Size()); err != nil {
		fc.recordMiss()
		return nil, err
	}

	mf, err = fc.loadFile(filePath)
	if err != nil {
		fc.recordMiss()
		return nil, err
	}

	fc.cache[filePath] = mf
	fc.recordLoad()
	return mf, nil
}

func fresh(mf *MappedFile, stat os.FileInfo) bool {
	return mf.Size == stat.Size() && mf.ModTime.Equal(stat.ModTime())
}

// ReadFile returns a copy of the file content. The copy is taken under the
// read lock and only while the entry is still the cached one, since an
// invalidated region is unmapped.
func (fc *fileCacheImpl) ReadFile(filePath string) ([]byte, error) {
	for attempt := 0; attempt < 3; attempt++ {
		mf, err := fc.Get(filePath)
		if err != nil {
			return nil, err
		}

		fc.mu.RLock()
		if fc.cache[filePath] == mf {
			data := make([]byte, len(mf.Data))
			copy(data, mf.Data)
			fc.mu.RUnlock()
			return data, nil
		}
		fc.mu.RUnlock()
	}
	return os.ReadFile(filePath)
}

// Invalidate drops a file from the cache.
func (fc *fileCacheImpl) Invalidate(filePath string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	if mf, ok := fc.cache[filePath]; ok {
		fc.release(mf)
		delete(fc.cache, filePath)
		fc.logger.Debug("file cache entry invalidated", "file", filePath)
	}
}

// checkLimitsWithNewFile verifies that adding a file of newFileSize bytes
// stays within the limits. Must be called while holding mu.Lock.
func (fc *fileCacheImpl) checkLimitsWithNewFile(newFileSize int64) error {
	if fc.config.MaxFiles > 0 && len(fc.cache) >= fc.config.MaxFiles {
		return fmt.Errorf("FileCache limit reached: %d files (limit: %d files)",
			len(fc.cache), fc.config.MaxFiles)
	}

	if fc.config.MaxMemoryMB > 0 && newFileSize > 0 {
		currentMB := fc.calculateTotalMappedMBLocked()
		newFileMB := float64(newFileSize) / (1024 * 1024)
		if currentMB+newFileMB >= float64(fc.config.MaxMemoryMB) {
			return fmt.Errorf("FileCache memory limit reached: %.2f MB + %.2f MB (limit: %d MB)",
				currentMB, newFileMB, fc.config.MaxMemoryMB)
		}
	}
	return nil
}

// loadFile maps a file, falling back to os.ReadFile if mmap fails.
// Must be called while holding mu.Lock.
func (fc *fileCacheImpl) loadFile(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", filePath, err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}

	mf := &MappedFile{
		Path:     filePath,
		File:     file,
		Size:     stat.Size(),
		ModTime:  stat.ModTime(),
		MappedAt: time.Now(),
	}

	// Zero bytes cannot be mapped.
	if stat.Size() == 0 {
		return mf, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err == nil {
		mf.Data = data
		return mf, nil
	}

	fc.logger.Warn("mmap failed, using fallback",
		"file", filePath,
		"size", stat.Size(),
		"error", err)

	content, readErr := os.ReadFile(filePath)
	file.Close()
	if readErr != nil {
		return nil, fmt.Errorf("mmap failed and fallback failed for %q: mmap error: %v, read error: %w",
			filePath, err, readErr)
	}
	fc.recordMmapFailure()

	mf.Data = mmap.MMap(content)
	mf.File = nil
	return mf, nil
}

// release unmaps a file. Fallback entries own plain memory and are left to
// the garbage collector. Must be called while holding mu.Lock.
func (fc *fileCacheImpl) release(mf *MappedFile) error {
	if mf.File == nil {
		return nil
	}

	var firstErr error
	if mf.Data != nil {
		if err := mf.Data.Unmap(); err != nil {
			fc.logger.Warn("failed to unmap file", "path", mf.Path, "error", err)
			firstErr = fmt.Errorf("unmap %q: %w", mf.Path, err)
		}
	}
	if err := mf.File.Close(); err != nil {
		fc.logger.Warn("failed to close file", "path", mf.Path, "error", err)
		if firstErr == nil {
			firstErr = fmt.Errorf("close %q: %w", mf.Path, err)
		}
	}
	return firstErr
}

// Size returns number of currently cached files.
func (fc *fileCacheImpl) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.cache)
}

// Stats returns current cache metrics.
func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.mu.RLock()
	cachedFiles := len(fc.cache)
	totalMappedMB := fc.calculateTotalMappedMBLocked()
	fc.mu.RUnlock()

	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()

	stats := fc.stats
	stats.FilesCached = cachedFiles
	stats.TotalMappedMB = totalMappedMB
	return stats
}

// calculateTotalMappedMBLocked must be called while holding mu.
func (fc *fileCacheImpl) calculateTotalMappedMBLocked() float64 {
	total := int64(0)
	for _, mf := range fc.cache {
		total += mf.Size
	}
	return float64(total) / (1024 * 1024)
}

// Close unmaps all files and releases resources.
func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for _, mf := range fc.cache {
		if err := fc.release(mf); err != nil {
			errs = append(errs, err)
		}
	}
	fc.cache = make(map[string]*MappedFile)

	fc.logger.Debug("FileCache closed",
		"files_loaded", fc.stats.FilesLoaded,
		"cache_hits", fc.stats.CacheHits,
		"cache_misses", fc.stats.CacheMisses,
		"remaps", fc.stats.Remaps)

	if len(errs) > 0 {
		return fmt.Errorf("errors during close: %v", errs)
	}
	return nil
}

func (fc *fileCacheImpl) record(update func(*FileCacheStats)) {
	if !fc.config.EnableMetrics {
		return
	}
	fc.statsMu.Lock()
	update(&fc.stats)
	fc.statsMu.Unlock()
}

func (fc *fileCacheImpl) recordHit()  { fc.record(func(s *FileCacheStats) { s.CacheHits++ }) }
func (fc *fileCacheImpl) recordMiss() { fc.record(func(s *FileCacheStats) { s.CacheMisses++ }) }
func (fc *fileCacheImpl) recordLoad() { fc.record(func(s *FileCacheStats) { s.FilesLoaded++ }) }
func (fc *fileCacheImpl) recordRemap() {
	fc.record(func(s *FileCacheStats) { s.Remaps++ })
}
func (fc *fileCacheImpl) recordMmapFailure() {
	fc.record(func(s *FileCacheStats) { s.MmapFailures++ })
}
