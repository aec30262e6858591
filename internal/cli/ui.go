package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/edgebundle/pkg/pipeline"
)

// =============================================================================
// Styles
// =============================================================================

var (
	colorCyan  = lipgloss.Color("36")
	colorGreen = lipgloss.Color("35")
	colorRed   = lipgloss.Color("167")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	// StyleHighlight marks values the user acts on, such as addresses.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleDim is used for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleValue       = lipgloss.NewStyle().Foreground(colorWhite)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCached      = lipgloss.NewStyle().Foreground(colorGreen)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status lines
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under a status line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + styleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + styleValue.Render(value))
}

// =============================================================================
// Bundle statistics
// =============================================================================

// printStats prints one line summarising a bundle run, e.g.
//
//	120 edges · 3412 pairs · 2 degenerate · 84ms · fresh
func printStats(stats pipeline.Stats, cached bool) {
	fmt.Println("  " + statsLine(stats, cached))
}

func statsLine(stats pipeline.Stats, cached bool) string {
	var parts []string
	if stats.Edges > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d edges", stats.Edges)))
	}
	if b := stats.Bundle; b.Pairs > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d pairs", b.Pairs)))
	}
	if d := stats.Bundle.Degenerate; d > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d degenerate", d)))
	}
	if f := stats.Bundle.CompatibilityFailures; f > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d scoring failures", f)))
	}
	if cached {
		parts = append(parts, styleCached.Render("cached"))
	} else {
		if stats.BundleTime > 0 {
			parts = append(parts, StyleDim.Render(stats.BundleTime.Round(time.Millisecond).String()))
		}
		parts = append(parts, StyleDim.Render("fresh"))
	}
	return strings.Join(parts, StyleDim.Render(" · "))
}
