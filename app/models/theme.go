package models

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// NormalizeTheme maps anything but "dark" to light.
func NormalizeTheme(t string) string {
	if t == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// FlipTheme returns the other theme.
func FlipTheme(t string) string {
	if NormalizeTheme(t) == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}
