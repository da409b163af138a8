package buffer

import (
	"path/filepath"
	"strings"
)

// Ftype is the detected language of a buffer, driving the function
// fold recogniser.
type Ftype int

const (
	UnknownType Ftype = iota
	CType
	PerlType
	TclType
	ShellType
	PythonType
	TextType
)

func (t Ftype) String() string {
	switch t {
	case CType:
		return "C"
	case PerlType:
		return "Perl"
	case TclType:
		return "Tcl"
	case ShellType:
		return "Shell"
	case PythonType:
		return "Python"
	case TextType:
		return "Text"
	default:
		return "Unknown"
	}
}

// DetectFtype maps a file name to its type by extension.
func DetectFtype(fname string) Ftype {
	ext := strings.ToLower(filepath.Ext(fname))
	switch ext {
	case ".c", ".h", ".cc", ".cpp", ".cxx", ".hh", ".hpp", ".hxx":
		return CType
	case ".pl", ".pm":
		return PerlType
	case ".tcl", ".tk":
		return TclType
	case ".sh", ".bash", ".ksh":
		return ShellType
	case ".py":
		return PythonType
	case ".txt", ".text", ".md":
		return TextType
	}

	base := filepath.Base(fname)
	switch base {
	case "Makefile", "makefile":
		return TextType
	}
	return UnknownType
}
