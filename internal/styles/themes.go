package styles

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// themeMu protects access to themeRegistry and currentTheme for thread safety
var themeMu sync.RWMutex

// hexColorRegex validates hex color codes (#RRGGBB or #RRGGBBAA with alpha)
var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}([0-9A-Fa-f]{2})?$`)

// ColorPalette holds all theme colors
type ColorPalette struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`

	Success string `json:"success"`
	Warning string `json:"warning"`
	Error   string `json:"error"`
	Info    string `json:"info"`

	TextPrimary   string `json:"textPrimary"`
	TextSecondary string `json:"textSecondary"`
	TextMuted     string `json:"textMuted"`
	TextSubtle    string `json:"textSubtle"`

	BgPrimary   string `json:"bgPrimary"`
	BgSecondary string `json:"bgSecondary"`
	BgTertiary  string `json:"bgTertiary"`

	BorderNormal string `json:"borderNormal"`
	BorderActive string `json:"borderActive"`

	SyntaxTheme   string `json:"syntaxTheme"`   // Chroma style name
	MarkdownTheme string `json:"markdownTheme"` // Glamour style name
}

// Theme represents a complete theme configuration
type Theme struct {
	Name        string       `json:"name"`
	DisplayName string       `json:"displayName"`
	Colors      ColorPalette `json:"colors"`
}

// Built-in themes
var (
	DefaultTheme = Theme{
		Name:        "default",
		DisplayName: "Dark",
		Colors: ColorPalette{
			Primary:       "#7C3AED",
			Secondary:     "#3B82F6",
			Accent:        "#22D3EE",
			Success:       "#10B981",
			Warning:       "#F59E0B",
			Error:         "#EF4444",
			Info:          "#3B82F6",
			TextPrimary:   "#F9FAFB",
			TextSecondary: "#9CA3AF",
			TextMuted:     "#6B7280",
			TextSubtle:    "#4B5563",
			BgPrimary:     "#111827",
			BgSecondary:   "#1F2937",
			BgTertiary:    "#374151",
			BorderNormal:  "#374151",
			BorderActive:  "#7C3AED",
			SyntaxTheme:   "monokai",
			MarkdownTheme: "dark",
		},
	}

	LightTheme = Theme{
		Name:        "light",
		DisplayName: "Light",
		Colors: ColorPalette{
			Primary:       "#2563EB",
			Secondary:     "#4F46E5",
			Accent:        "#0891B2",
			Success:       "#059669",
			Warning:       "#D97706",
			Error:         "#DC2626",
			Info:          "#2563EB",
			TextPrimary:   "#111111",
			TextSecondary: "#374151",
			TextMuted:     "#6B7280",
			TextSubtle:    "#9CA3AF",
			BgPrimary:     "#FFFFFF",
			BgSecondary:   "#F3F4F6",
			BgTertiary:    "#E5E7EB",
			BorderNormal:  "#D1D5DB",
			BorderActive:  "#2563EB",
			SyntaxTheme:   "github",
			MarkdownTheme: "light",
		},
	}

	BlueTheme = Theme{
		Name:        "blue",
		DisplayName: "Blue",
		Colors: ColorPalette{
			Primary:       "#60A5FA",
			Secondary:     "#93C5FD",
			Accent:        "#38BDF8",
			Success:       "#34D399",
			Warning:       "#FBBF24",
			Error:         "#F87171",
			Info:          "#60A5FA",
			TextPrimary:   "#DBEAFE",
			TextSecondary: "#BFDBFE",
			TextMuted:     "#7DA2D6",
			TextSubtle:    "#4B6A9B",
			BgPrimary:     "#0B1020",
			BgSecondary:   "#0F172A",
			BgTertiary:    "#1E3A5F",
			BorderNormal:  "#1E3A5F",
			BorderActive:  "#60A5FA",
			SyntaxTheme:   "dracula",
			MarkdownTheme: "dark",
		},
	}
)

var themeRegistry = map[string]Theme{
	DefaultTheme.Name: DefaultTheme,
	LightTheme.Name:   LightTheme,
	BlueTheme.Name:    BlueTheme,
}

// themeOrder is the cycle order used by NextTheme.
var themeOrder = []string{DefaultTheme.Name, LightTheme.Name, BlueTheme.Name}

var currentTheme = "default"

// IsValidHexColor checks if a string is a valid hex color code
func IsValidHexColor(hex string) bool {
	return hexColorRegex.MatchString(hex)
}

// IsValidTheme checks if a theme name exists in the registry
func IsValidTheme(name string) bool {
	themeMu.RLock()
	defer themeMu.RUnlock()
	_, ok := themeRegistry[name]
	return ok
}

// GetTheme returns a theme by name, or the default theme if not found
func GetTheme(name string) Theme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	if t, ok := themeRegistry[name]; ok {
		return t
	}
	return DefaultTheme
}

// GetCurrentThemeName returns the name of the currently applied theme
func GetCurrentThemeName() string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTheme
}

// ListThemes returns the names of all registered themes, sorted.
func ListThemes() []string {
	themeMu.RLock()
	defer themeMu.RUnlock()
	names := make([]string, 0, len(themeRegistry))
	for name := range themeRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NextTheme returns the theme after name in the cycle order.
func NextTheme(name string) string {
	for i, n := range themeOrder {
		if n == name {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ApplyTheme applies a theme by name
func ApplyTheme(name string) {
	ApplyThemeWithOverrides(name, nil)
}

// ApplyThemeWithOverrides applies a theme with custom color overrides.
// Unknown keys and invalid colors are returned as an error after the valid
// overrides have been applied.
func ApplyThemeWithOverrides(name string, overrides map[string]string) error {
	theme := GetTheme(name)
	err := applyOverrides(&theme.Colors, overrides)

	themeMu.Lock()
	currentTheme = theme.Name
	themeMu.Unlock()

	ApplyThemeColors(theme)
	return err
}

// applyOverrides applies color overrides to a palette
func applyOverrides(palette *ColorPalette, overrides map[string]string) error {
	var bad []string
	for key, value := range overrides {
		if !applySingleOverride(palette, key, value) {
			bad = append(bad, key)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("ignored theme overrides: %s", strings.Join(bad, ", "))
	}
	return nil
}

func applySingleOverride(palette *ColorPalette, key, value string) bool {
	switch key {
	case "syntaxTheme":
		palette.SyntaxTheme = value
		return true
	case "markdownTheme":
		palette.MarkdownTheme = value
		return true
	}
	if !IsValidHexColor(value) {
		return false
	}
	fields := map[string]*string{
		"primary":       &palette.Primary,
		"secondary":     &palette.Secondary,
		"accent":        &palette.Accent,
		"success":       &palette.Success,
		"warning":       &palette.Warning,
		"error":         &palette.Error,
		"info":          &palette.Info,
		"textPrimary":   &palette.TextPrimary,
		"textSecondary": &palette.TextSecondary,
		"textMuted":     &palette.TextMuted,
		"textSubtle":    &palette.TextSubtle,
		"bgPrimary":     &palette.BgPrimary,
		"bgSecondary":   &palette.BgSecondary,
		"bgTertiary":    &palette.BgTertiary,
		"borderNormal":  &palette.BorderNormal,
		"borderActive":  &palette.BorderActive,
	}
	dst, ok := fields[key]
	if !ok {
		return false
	}
	*dst = value
	return true
}

// ApplyThemeColors sets all color variables from a theme and rebuilds styles.
func ApplyThemeColors(theme Theme) {
	c := theme.Colors

	Primary = lipgloss.Color(c.Primary)
	Secondary = lipgloss.Color(c.Secondary)
	Accent = lipgloss.Color(c.Accent)

	Success = lipgloss.Color(c.Success)
	Warning = lipgloss.Color(c.Warning)
	Error = lipgloss.Color(c.Error)
	Info = lipgloss.Color(c.Info)

	TextPrimary = lipgloss.Color(c.TextPrimary)
	TextSecondary = lipgloss.Color(c.TextSecondary)
	TextMuted = lipgloss.Color(c.TextMuted)
	TextSubtle = lipgloss.Color(c.TextSubtle)

	BgPrimary = lipgloss.Color(c.BgPrimary)
	BgSecondary = lipgloss.Color(c.BgSecondary)
	BgTertiary = lipgloss.Color(c.BgTertiary)

	BorderNormal = lipgloss.Color(c.BorderNormal)
	BorderActive = lipgloss.Color(c.BorderActive)

	ToastSuccessTextColor = lipgloss.Color(ReadableOn(c.Success))
	ToastErrorTextColor = lipgloss.Color(ReadableOn(c.Error))

	CurrentSyntaxTheme = c.SyntaxTheme
	CurrentMarkdownTheme = c.MarkdownTheme

	rebuildStyles()
}

// rebuildStyles recreates all lipgloss styles with current colors
func rebuildStyles() {
	PanelActive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderActive).
		Padding(0, 1)

	PanelInactive = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderNormal).
		Padding(0, 1)

	PanelHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	Body = lipgloss.NewStyle().
		Foreground(TextPrimary)

	Muted = lipgloss.NewStyle().
		Foreground(TextMuted)

	Subtle = lipgloss.NewStyle().
		Foreground(TextSubtle)

	Code = lipgloss.NewStyle().
		Foreground(Accent)

	KeyHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)

	Logo = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	StatusIdle = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	StatusBusy = lipgloss.NewStyle().
		Foreground(Warning).
		Bold(true)

	StatusError = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)

	ToastSuccess = lipgloss.NewStyle().
		Background(Success).
		Foreground(ToastSuccessTextColor).
		Bold(true).
		Padding(0, 1)

	ToastError = lipgloss.NewStyle().
		Background(Error).
		Foreground(ToastErrorTextColor).
		Bold(true).
		Padding(0, 1)

	ListItemNormal = lipgloss.NewStyle().
		Foreground(TextPrimary)

	ListItemSelected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(BgTertiary)

	ListCursor = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgSecondary)

	Header = lipgloss.NewStyle().
		Background(BgSecondary)

	BarChip = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(BgTertiary).
		Padding(0, 1)

	BarChipActive = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Primary).
		Padding(0, 1).
		Bold(true)

	ModalBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Primary).
		Background(BgSecondary).
		Padding(1, 2)

	ModalTitle = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true).
		MarginBottom(1)

	Button = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(BgTertiary).
		Padding(0, 2)

	ButtonFocused = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Background(Primary).
		Padding(0, 2).
		Bold(true)

	ButtonDisabled = lipgloss.NewStyle().
		Foreground(TextSubtle).
		Background(BgSecondary).
		Padding(0, 2)
}

// GetSyntaxTheme returns the current Chroma style name.
func GetSyntaxTheme() string {
	return CurrentSyntaxTheme
}

// GetMarkdownTheme returns the current Glamour style name.
func GetMarkdownTheme() string {
	return CurrentMarkdownTheme
}
