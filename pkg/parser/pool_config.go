package parser

import (
	"github.com/gnana997/rjt/pkg/util"
)

// getPoolSize returns the number of parsers kept per grammar.
//
// A positive override wins (tests, the MCP server which only ever parses one
// file at a time); otherwise the size follows util.GetOptimalPoolSize so that
// CLI runs compiling many templates never wait on a parser.
func getPoolSize(override int) int {
	return util.GetOptimalPoolSizeWithOverride(override)
}
