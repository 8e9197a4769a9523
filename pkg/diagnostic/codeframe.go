package diagnostic

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gnana997/rjt/pkg/ast"
)

const (
	linesAbove = 2
	linesBelow = 3
)

// CodeFrame renders the source lines around [start, end) with a `>` gutter on
// the highlighted lines and a `^` marker under the highlighted columns:
//
//	  1 | type X = number;
//	> 2 | const x = 1;
//	    | ^^^^^^^^^^^^
//	  3 | <S1 />
//
// Positions are 1-based and count characters. An invalid end highlights a
// single column.
func CodeFrame(source []byte, start, end ast.Loc) string {
	lines := strings.Split(strings.ReplaceAll(string(source), "\r\n", "\n"), "\n")
	if !start.IsValid() || start.Line > len(lines) {
		return ""
	}
	if !end.IsValid() || end.Line < start.Line || (end.Line == start.Line && end.Column <= start.Column) {
		end = ast.Loc{Line: start.Line, Column: start.Column + 1}
	}
	if end.Line > len(lines) {
		end = ast.Loc{Line: len(lines), Column: utf8.RuneCountInString(lines[len(lines)-1]) + 1}
	}

	first := max(start.Line-linesAbove, 1)
	last := min(end.Line+linesBelow, len(lines))
	width := len(strconv.Itoa(last))

	var b strings.Builder
	for n := first; n <= last; n++ {
		line := lines[n-1]
		marked := n >= start.Line && n <= end.Line

		number := strconv.Itoa(n)
		gutter := strings.Repeat(" ", width-len(number)) + number
		if marked {
			b.WriteString("> ")
		} else {
			b.WriteString("  ")
		}
		b.WriteString(gutter)
		b.WriteString(" |")
		if line != "" {
			b.WriteString(" ")
			b.WriteString(line)
		}
		b.WriteString("\n")

		if !marked {
			continue
		}

		from, to := 1, utf8.RuneCountInString(line)+1
		if n == start.Line {
			from = start.Column
		}
		if n == end.Line {
			to = end.Column
		}
		if to <= from {
			if n != end.Line || len(line) == 0 {
				continue
			}
			to = from + 1
		}

		b.WriteString("  ")
		b.WriteString(strings.Repeat(" ", width))
		b.WriteString(" | ")
		b.WriteString(markerPadding(line, from-1))
		b.WriteString(strings.Repeat("^", to-from))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// markerPadding keeps tabs so the marker lines up with tab-indented source.
func markerPadding(line string, n int) string {
	var b strings.Builder
	for _, r := range line {
		if n == 0 {
			break
		}
		n--
		if r == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString(strings.Repeat(" ", n))
	return b.String()
}
