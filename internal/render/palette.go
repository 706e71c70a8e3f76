package render

const (
	halfBlockPalette   = "halfblock"
	defaultPaletteName = halfBlockPalette
)

// Glyph ramps ordered dark to bright.
var (
	asciiPalette = []rune(" .,:-;+=*%#@")
	boxPalette   = []rune(" ░▒▓█")
	linesPalette = []rune(" `.-=+*/\\|╱╲╳╬")
	sparkPalette = []rune("  ´`^\"~:;*+×•¤°oO@#█")
)

// Palette returns characters used for brightness mapping. The halfblock
// palette only applies with color output; without it the ascii ramp is used.
func Palette(name string) []rune {
	switch name {
	case "box":
		return boxPalette
	case "lines":
		return linesPalette
	case "spark":
		return sparkPalette
	default:
		return asciiPalette
	}
}

// PaletteNames returns all palette identifiers.
func PaletteNames() []string {
	return []string{halfBlockPalette, "ascii", "box", "lines", "spark"}
}
