package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme represents a color theme for the TUI
type Theme struct {
	Name string

	// Primary colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	// Semantic colors
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// UI colors
	Border   lipgloss.AdaptiveColor
	Muted    lipgloss.AdaptiveColor
	Selected lipgloss.AdaptiveColor
	Progress lipgloss.AdaptiveColor
}

// buildTheme creates a theme from light/dark pairs
func buildTheme(name string, primary, secondary, accent, success, warning, errorColor, info, border, muted, selected, progress [2]string) Theme {
	return Theme{
		Name:      name,
		Primary:   lipgloss.AdaptiveColor{Light: primary[0], Dark: primary[1]},
		Secondary: lipgloss.AdaptiveColor{Light: secondary[0], Dark: secondary[1]},
		Accent:    lipgloss.AdaptiveColor{Light: accent[0], Dark: accent[1]},
		Success:   lipgloss.AdaptiveColor{Light: success[0], Dark: success[1]},
		Warning:   lipgloss.AdaptiveColor{Light: warning[0], Dark: warning[1]},
		Error:     lipgloss.AdaptiveColor{Light: errorColor[0], Dark: errorColor[1]},
		Info:      lipgloss.AdaptiveColor{Light: info[0], Dark: info[1]},
		Border:    lipgloss.AdaptiveColor{Light: border[0], Dark: border[1]},
		Muted:     lipgloss.AdaptiveColor{Light: muted[0], Dark: muted[1]},
		Selected:  lipgloss.AdaptiveColor{Light: selected[0], Dark: selected[1]},
		Progress:  lipgloss.AdaptiveColor{Light: progress[0], Dark: progress[1]},
	}
}

// Available themes
var (
	DefaultTheme = buildTheme("default",
		[2]string{"#1E40AF", "#3B82F6"}, [2]string{"#6B7280", "#9CA3AF"}, [2]string{"#7C3AED", "#A855F7"},
		[2]string{"#059669", "#10B981"}, [2]string{"#D97706", "#F59E0B"}, [2]string{"#DC2626", "#EF4444"},
		[2]string{"#0891B2", "#06B6D4"}, [2]string{"#D1D5DB", "#374151"}, [2]string{"#6B7280", "#9CA3AF"},
		[2]string{"#DBEAFE", "#1E3A8A"}, [2]string{"#059669", "#10B981"})

	HighContrastTheme = buildTheme("high-contrast",
		[2]string{"#000000", "#FFFFFF"}, [2]string{"#666666", "#BBBBBB"}, [2]string{"#000080", "#8080FF"},
		[2]string{"#006600", "#00FF00"}, [2]string{"#CC6600", "#FFAA00"}, [2]string{"#CC0000", "#FF4444"},
		[2]string{"#0066CC", "#4499FF"}, [2]string{"#000000", "#FFFFFF"}, [2]string{"#666666", "#BBBBBB"},
		[2]string{"#CCCCCC", "#333333"}, [2]string{"#006600", "#00FF00"})

	MinimalTheme = buildTheme("minimal",
		[2]string{"#2D3748", "#E2E8F0"}, [2]string{"#718096", "#A0AEC0"}, [2]string{"#4A5568", "#CBD5E0"},
		[2]string{"#2F855A", "#68D391"}, [2]string{"#C05621", "#F6AD55"}, [2]string{"#C53030", "#FC8181"},
		[2]string{"#2B6CB0", "#63B3ED"}, [2]string{"#E2E8F0", "#2D3748"}, [2]string{"#A0AEC0", "#718096"},
		[2]string{"#EDF2F7", "#2D3748"}, [2]string{"#2F855A", "#68D391"})
)

// Current active theme
var currentTheme = DefaultTheme

// GetTheme returns the current active theme
func GetTheme() Theme {
	return currentTheme
}

// SetTheme sets the active theme
func SetTheme(theme *Theme) {
	currentTheme = *theme
}

// SetThemeByName sets the theme by name
func SetThemeByName(name string) bool {
	switch name {
	case "", "default":
		SetTheme(&DefaultTheme)
		return true
	case "high-contrast":
		SetTheme(&HighContrastTheme)
		return true
	case "minimal":
		SetTheme(&MinimalTheme)
		return true
	default:
		return false
	}
}

// IsColorDisabled checks if colors should be disabled
func IsColorDisabled() bool {
	return os.Getenv("NO_COLOR") != ""
}

// DisableColor renders every style without color escapes
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// GetAvailableThemes returns list of available theme names
func GetAvailableThemes() []string {
	return []string{"default", "high-contrast", "minimal"}
}

// GetStyles builds the shell styles from the current theme
func GetStyles() *Styles {
	theme := GetTheme()

	return &Styles{
		Theme: theme,

		Title: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Subtitle: lipgloss.NewStyle().
			Foreground(theme.Secondary),

		SectionTitle: lipgloss.NewStyle().
			Foreground(theme.Primary).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(theme.Info),

		NavItem: lipgloss.NewStyle().
			Foreground(theme.Secondary).
			Padding(0, 1),

		NavActive: lipgloss.NewStyle().
			Background(theme.Selected).
			Foreground(theme.Primary).
			Padding(0, 1).
			Bold(true),

		Section: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		SectionActive: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1),

		ToastSuccess: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Success).
			Foreground(theme.Success).
			Padding(0, 1),

		ToastError: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Error).
			Foreground(theme.Error).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Foreground(theme.Muted),
	}
}

// Styles contains all the styled components
type Styles struct {
	Theme Theme

	Title        lipgloss.Style
	Subtitle     lipgloss.Style
	SectionTitle lipgloss.Style
	Muted        lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	NavItem   lipgloss.Style
	NavActive lipgloss.Style

	Section       lipgloss.Style
	SectionActive lipgloss.Style

	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style

	Footer lipgloss.Style
}
