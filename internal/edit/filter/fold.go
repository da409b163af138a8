package filter

import (
	"bytes"
	"regexp"

	"github.com/tved/tved/internal/edit/buffer"
	"github.com/tved/tved/internal/edit/line"
)

// Fold recogniser states. Lines classified HEADER, BEGIN or END stay
// visible; everything else is the block body.
type foldState int

const (
	ilNone foldState = 1 << iota
	ilHeader
	ilBegin
	ilIntern
	ilEnd
)

// Block header patterns per file type.
const (
	cHeaderPattern     = `^[A-Za-z_][A-Za-z0-9_ \t\*]*\(`
	cStructurePattern  = `^(typedef[ \t]+)?(struct|union|enum)[ \t]`
	headerPatternEnd   = `\)[ \t]*$`
	headerPatternEnd2  = `\{[ \t]*$`
	perlHeaderPattern  = `^sub[ \t]+[A-Za-z_]`
	tclHeaderPattern   = `^proc[ \t]+`
	shellHeaderPattern = `^(function[ \t]+)?[A-Za-z_][A-Za-z0-9_]*[ \t]*\(\)`
	pyHeaderPattern    = `^[ \t]*(def|class)[ \t]+`
	textHeaderPattern  = `^[^ \t\n]`
)

// foldFunc views or hides function block headers at the current level.
// The recogniser strategy depends on the file type.
func foldFunc(b *buffer.Buffer, act action, fmask line.Flag) error {
	switch b.Ftype {
	case buffer.CType:
		return foldBottomUp(b, act, fmask)
	case buffer.PerlType, buffer.TclType, buffer.ShellType,
		buffer.PythonType, buffer.TextType:
		return foldTopDown(b, act, fmask)
	}
	return nil
}

func lineBody(l *line.Line) []byte {
	if n := l.Len(); n > 0 && l.Buff[n-1] == '\n' {
		return l.Buff[:n-1]
	}
	return l.Buff
}

// notIndented reproduces the original header precondition: the line is
// long enough and does not start with blank space.
func notIndented(l *line.Line) bool {
	return l != nil && l.Len() > 3 && l.Buff[0] != ' ' && l.Buff[0] != '\t'
}

// foldBottomUp classifies C/C++ lines walking from the bottom. In the
// END state a line containing '{' counts as the block begin, so
// one-line blocks keep their opening line visible.
func foldBottomUp(b *buffer.Buffer, act action, fmask line.Flag) error {
	reHeader, err := regexp.Compile(cHeaderPattern)
	if err != nil {
		return err
	}
	reStruct, err := regexp.Compile(cStructurePattern)
	if err != nil {
		return err
	}
	reEnd, err := regexp.Compile(headerPatternEnd)
	if err != nil {
		return err
	}

	headerLine := func(l *line.Line) bool {
		return notIndented(l) && reHeader.Match(lineBody(l))
	}

	level := ilNone
	for lx := b.Bottom.Prev(); lx.IsText(); lx = lx.Prev() {
		switch {
		case lx.Len() < 1:
			// error, leave state alone
		case lx.Buff[0] == '}':
			level = ilEnd
		case lx.Buff[0] == '{':
			level = ilBegin
		case level == ilEnd:
			// simple extra check, if block is empty
			if lx.Len() > 3 && bytes.IndexByte(lx.Buff, '{') >= 0 {
				// safe guess
				level = ilBegin
			} else {
				level = ilIntern
			}
		case level == ilHeader:
			level = ilNone
		case level == ilIntern:
			if reStruct.Match(lineBody(lx)) {
				level = ilHeader
			} else if reEnd.Match(lineBody(lx)) {
				prev := lx.Prev()
				if headerLine(lx) {
					level = ilHeader
				} else if prev.IsText() && headerLine(prev) {
					// prev is a valid header, lx is a good begin
					level = ilBegin
				}
			}
		case level == ilBegin:
			prev := lx.Prev()
			if reStruct.Match(lineBody(lx)) {
				level = ilHeader
			} else if headerLine(lx) {
				level = ilHeader
			} else if prev.IsText() && headerLine(prev) {
				// prev is a valid header, lx is still a good begin
				level = ilBegin
			} else {
				// match failed
				level = ilNone
			}
		}

		apply(lx, act, fmask, level&(ilHeader|ilBegin|ilEnd) != 0)
	}
	return nil
}

// foldTopDown classifies block headers walking from the top: the
// single-line header regex, then '{', the body, and '}' to close. For
// Python and Text the header itself is the only visible line.
func foldTopDown(b *buffer.Buffer, act action, fmask line.Flag) error {
	var headerExpr string
	switch b.Ftype {
	case buffer.PerlType:
		headerExpr = perlHeaderPattern
	case buffer.TclType:
		headerExpr = tclHeaderPattern
	case buffer.ShellType:
		headerExpr = shellHeaderPattern
	case buffer.PythonType:
		headerExpr = pyHeaderPattern
	case buffer.TextType:
		headerExpr = textHeaderPattern
	default:
		return nil
	}

	reHeader, err := regexp.Compile(headerExpr)
	if err != nil {
		return err
	}
	reBrace, err := regexp.Compile(headerPatternEnd2)
	if err != nil {
		return err
	}

	headerOnly := b.Ftype == buffer.PythonType || b.Ftype == buffer.TextType

	level := ilNone
	for lx := b.Top.Next(); lx.IsText(); lx = lx.Next() {
		switch {
		case lx.Len() < 1:
			// error, leave state alone
		case headerOnly:
			// simple check, header or not
			if reHeader.Match(lineBody(lx)) {
				level = ilHeader
			} else {
				level = ilNone
			}
		case level == ilNone:
			// header check -> HEADER or BEGIN
			if reHeader.Match(lineBody(lx)) {
				if reBrace.Match(lineBody(lx)) {
					// double match, jump over the header state
					level = ilBegin
				} else {
					// next line should be the block begin
					level = ilHeader
				}
			}
		case level == ilHeader:
			if lx.Buff[0] == '{' {
				level = ilBegin
			} else {
				// this is somehow an error
				level = ilNone
			}
		case level == ilBegin:
			if lx.Buff[0] == '}' {
				// empty block
				level = ilEnd
			} else {
				level = ilIntern
			}
		case level == ilIntern:
			if lx.Buff[0] == '}' {
				level = ilEnd
			}
		case level == ilEnd:
			level = ilNone
		}

		apply(lx, act, fmask, level&(ilHeader|ilBegin|ilEnd) != 0)
	}
	return nil
}
