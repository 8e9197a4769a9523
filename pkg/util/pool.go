package util

import "runtime"

// Bounds for the number of parsers per grammar and of worker goroutines.
const (
	MinPoolSize = 4
	MaxPoolSize = 32
)

// GetOptimalPoolSize returns twice the CPU count, clamped to
// [MinPoolSize, MaxPoolSize].
//
// Parsing runs in cgo, so two workers per core keep every core busy while
// one of them is blocked in a C call. The cap bounds parser memory on large
// machines. The parser pools and the analyze worker pool share this size so
// that a worker never waits for a parser.
func GetOptimalPoolSize() int {
	return min(max(runtime.NumCPU()*2, MinPoolSize), MaxPoolSize)
}

// GetOptimalPoolSizeWithOverride returns override when it is positive
// (the --jobs flag, tests) and GetOptimalPoolSize otherwise.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
