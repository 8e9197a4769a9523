// Package scanner finds the source files of an rjt project and processes them
// in parallel.
package scanner

// ScanConfig configures file discovery. Patterns are doublestar globs matched
// against slash-separated paths relative to the scan root.
type ScanConfig struct {
	// Include glob patterns for file matching. Empty includes everything.
	Include []string
	// Exclude glob patterns, applied to directories and files.
	Exclude []string
}

// DefaultExclude lists the directories no project source lives in.
var DefaultExclude = []string{
	"node_modules/**",
	"**/node_modules/**",
	".git/**",
	"dist/**",
	"build/**",
	".next/**",
	"coverage/**",
	"out/**",
}

// DefaultScanConfig matches every template under the root.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Include: []string{"**/*.rjt.tsx", "**/*.rjt.jsx"},
		Exclude: append([]string(nil), DefaultExclude...),
	}
}

// SourceScanConfig matches every module a template may import.
func SourceScanConfig() ScanConfig {
	return ScanConfig{
		Include: []string{"**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx"},
		Exclude: append([]string(nil), DefaultExclude...),
	}
}
