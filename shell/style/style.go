// Package style holds the colors and widget styles shared by the
// shell's surfaces.
package style

import (
	"image/color"
	"strings"

	"deedles.dev/waysmoke/ui"
	"golang.org/x/image/colornames"
)

var (
	Dark        = color.NRGBA{R: 20, G: 20, B: 20, A: 217}
	RunningDark = color.NRGBA{R: 52, G: 52, B: 52, A: 217}
	Bright      = nrgba(colornames.White)
	Sel         = color.NRGBA{R: 69, G: 69, B: 69, A: 217}

	// Bar is the background of the always-visible strip at the bottom
	// of the dock.
	Bar = color.NRGBA{A: 242}
)

// Dock is the style of the dock's background and of the docklets in
// it.
func Dock(background color.NRGBA) ui.Style {
	return ui.Style{Background: background, Radius: 3}
}

var (
	Toplevel = ui.Style{Background: Dark, Radius: 3}

	ToplevelHovered = ui.Style{Background: Sel, Radius: 3}

	ToplevelPressed = ui.Style{
		Background:  Sel,
		Radius:      3,
		BorderWidth: 1,
		BorderColor: Bright,
	}
)

// Color looks up a color by its SVG 1.1 name. Lookups are case
// insensitive.
func Color(name string) (color.NRGBA, bool) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return color.NRGBA{}, false
	}
	return nrgba(c), true
}

func nrgba(c color.RGBA) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
