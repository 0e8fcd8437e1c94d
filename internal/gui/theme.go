package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// darkTheme pins the default theme to its dark variant.
type darkTheme struct {
	fyne.Theme
}

func DarkTheme() fyne.Theme {
	return darkTheme{Theme: theme.DefaultTheme()}
}

func (d darkTheme) Color(name fyne.ThemeColorName, _ fyne.ThemeVariant) color.Color {
	return d.Theme.Color(name, theme.VariantDark)
}
