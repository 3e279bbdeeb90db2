// Package ansi provides ANSI escape code constants and helpers for terminal
// output. All colored/styled output references these constants to avoid
// duplication.
package ansi

// ANSI SGR (Select Graphic Rendition) codes.
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Red    = "\033[31m"
	Cyan   = "\033[36m"
)

// Paint wraps s in the given style code and a reset.
func Paint(style, s string) string {
	return style + s + Reset
}
