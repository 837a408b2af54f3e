package palavra

import (
	"context"
	"fmt"
	"strings"
)

// Theme is the stored appearance preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme accepts light, dark or system in any case.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
}

// Presentation is the theme actually rendered.
type Presentation string

const (
	PresentationLight Presentation = "light"
	PresentationDark  Presentation = "dark"
)

// AmbientScheme reports whether the host currently prefers a dark color scheme.
type AmbientScheme func(ctx context.Context) (dark bool)

// LightAmbient never reports a dark preference.
func LightAmbient(context.Context) bool { return false }

// ResolveTheme turns a preference into a presentation. Only system looks
// at the ambient signal.
func ResolveTheme(t Theme, ambientDark bool) Presentation {
	if t == ThemeDark || (t == ThemeSystem && ambientDark) {
		return PresentationDark
	}
	return PresentationLight
}

// Page is a navigable screen of the client. It is never persisted.
type Page string

const (
	PageHome       Page = "home"
	PageDevotional Page = "devotional"
	PageSaved      Page = "saved"
	PageSettings   Page = "settings"
)

// DefaultPage is where a new session starts.
const DefaultPage = PageHome

func Pages() []Page {
	return []Page{PageHome, PageDevotional, PageSaved, PageSettings}
}
