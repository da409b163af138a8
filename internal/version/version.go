// Package version provides version information and display utilities.
package version

import (
	"fmt"
	"os"

	"github.com/tved/tved/internal/color"
)

const (
	// Name of the editor.
	Name string = "TVEd"
	// Version of the editor.
	Version string = "1.2.0"
	// Additional information.
	Additional string = "Have a lot of fun!"
)

// String returns a plain text representation of the version.
func String() string {
	return fmt.Sprintf("%s %v %s", Name, Version, Additional)
}

// PaintedString returns a color-formatted version string.
func PaintedString() string {
	if !color.Colored {
		return String()
	}
	name := color.PaintStrWithAttr(fmt.Sprintf(" %s ", Name),
		color.FgYellow, color.BgBlue, color.AttrBold)
	version := color.PaintStrWithAttr(fmt.Sprintf(" %s ", Version),
		color.FgBlue, color.BgYellow, color.AttrBold)
	return fmt.Sprintf("%s%v %s", name, version, Additional)
}

// Print the version.
func Print() {
	fmt.Println(PaintedString())
}

// PrintAndExit prints the program version and exits.
func PrintAndExit() {
	Print()
	os.Exit(0)
}
