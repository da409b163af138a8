// Package regex wraps pattern handling for search, change and filter:
// delimiter cutting, shorthand expansion and anchor-aware matching on
// single text lines.
package regex

import (
	"fmt"
	"regexp"

	"github.com/tved/tved/internal/config"
)

// Pattern is a compiled search expression.
type Pattern struct {
	// The expression after shorthand expansion
	exprStr string
	// The Golang regexp object
	re *regexp.Regexp
	// Anchored patterns start with ^ or $ and need special stepping.
	anchored    bool
	initialized bool
}

func (p Pattern) String() string {
	return fmt.Sprintf("Pattern(exprStr:%s,anchored:%t,initialized:%t)",
		p.exprStr, p.anchored, p.initialized)
}

// CutDelimiters strips a surrounding pair of pattern delimiters
// (in order: / '' "" !) from the expression. Without a leading
// delimiter the expression is returned unchanged.
func CutDelimiters(expr string) string {
	if expr == "" {
		return expr
	}
	beg := expr[0]
	if beg != '/' && beg != '\'' && beg != '"' && beg != '!' {
		return expr
	}
	expr = expr[1:]
	if n := len(expr); n > 0 && expr[n-1] == beg {
		expr = expr[:n-1]
	}
	return expr
}

// Shorthands translates the extension shorthands \d \D and \t.
// The \s \S \w \W classes are handled by the regexp engine itself.
// An escape before any other character is preserved.
func Shorthands(pattern string) string {
	out := make([]byte, 0, len(pattern)+8)
	escaped := false

	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		if escaped {
			switch ch {
			case 'd':
				out = append(out, "[0-9]"...)
			case 'D':
				out = append(out, "[^0-9]"...)
			case 't':
				out = append(out, '\t')
			default:
				out = append(out, '\\', ch)
			}
			escaped = false
			continue
		}
		if ch == '\\' {
			escaped = true
			continue
		}
		out = append(out, ch)
	}
	return string(out)
}

// Compile cuts delimiters, expands shorthands and compiles the
// expression. Case sensitivity follows the global setting.
func Compile(expr string) (Pattern, error) {
	return CompileExpanded(Shorthands(CutDelimiters(expr)))
}

// CompileExpanded compiles an already delimiter-free, shorthand-expanded
// expression.
func CompileExpanded(exprStr string) (Pattern, error) {
	p := Pattern{exprStr: exprStr}
	if exprStr == "" {
		return p, nil
	}

	if exprStr[0] == '^' || exprStr[0] == '$' {
		p.anchored = true
	}

	compileStr := exprStr
	if config.Common != nil && !config.Common.CaseSensitive {
		compileStr = "(?i)" + compileStr
	}

	re, err := regexp.Compile(compileStr)
	if err != nil {
		return p, err
	}

	p.re = re
	p.initialized = true
	return p, nil
}

// Empty tells whether the pattern compiled down to nothing.
func (p Pattern) Empty() bool {
	return !p.initialized
}

// Anchored tells whether the pattern starts with a BoL or EoL anchor.
func (p Pattern) Anchored() bool {
	return p.anchored
}

// Expr returns the expanded expression string.
func (p Pattern) Expr() string {
	return p.exprStr
}

// lineBody cuts the trailing newline off a line buffer.
func lineBody(buff []byte) []byte {
	if n := len(buff); n > 0 && buff[n-1] == '\n' {
		return buff[:n-1]
	}
	return buff
}

// FindLine runs one match on a line buffer from the given byte column.
// The trailing newline is excluded from the search space. The returned
// submatch index pairs are relative to the from column; nil means no
// match. A ^-anchored pattern never matches at a non-zero column (the
// stepping equivalent of REG_NOTBOL).
func (p Pattern) FindLine(buff []byte, from int) []int {
	if !p.initialized {
		return nil
	}
	body := lineBody(buff)
	if from > len(body) {
		return nil
	}
	if p.anchored && p.exprStr[0] == '^' && from > 0 {
		return nil
	}
	return p.re.FindSubmatchIndex(body[from:])
}

// MatchLine tells whether a line matches. Following the filter
// acceptance rule, an empty match counts only at column zero.
func (p Pattern) MatchLine(buff []byte) bool {
	if !p.initialized {
		// An empty pattern matches nothing.
		return false
	}
	loc := p.re.FindIndex(lineBody(buff))
	if loc == nil {
		return false
	}
	return loc[1] == 0 || loc[0] < loc[1]
}
