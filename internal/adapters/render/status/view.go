package status

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/ff1c/internal/domain"
)

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
	// Source names where the status came from, e.g. the status file path.
	Source string
}

func renderView(status domain.BridgeStatus, opts RenderOptions, s styles) string {
	lines := []string{s.title.Render("NES Bridge")}
	if opts.Source != "" {
		lines = append(lines, s.header.Render("source: "+opts.Source))
	}

	lines = append(lines, s.section.Render(renderStatus(status, opts, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderStatus(status domain.BridgeStatus, opts RenderOptions, s styles) string {
	badge := stateStyle(status.State, s).Render(stateLabel(status.State))
	line := lipgloss.JoinHorizontal(lipgloss.Top, badge, " ", s.detail.Render(status.Text))

	parts := []string{line}
	if updated := updatedLine(status.UpdatedAt, opts); updated != "" {
		parts = append(parts, updated)
	}

	if !opts.Now.IsZero() && status.IsStale(opts.Now, opts.StaleAfter) {
		parts = append(parts, s.warning.Render("[stale] the client may not be running"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func stateStyle(state domain.ConnectionState, s styles) lipgloss.Style {
	switch {
	case state == domain.ConnectionConnected:
		return s.connected
	case state == domain.ConnectionTentativelyConnected:
		return s.pending
	case state.IsError():
		return s.failed
	default:
		return s.idle
	}
}

func stateLabel(state domain.ConnectionState) string {
	switch state {
	case domain.ConnectionConnected:
		return "[connected]"
	case domain.ConnectionTentativelyConnected:
		return "[connecting]"
	case domain.ConnectionErrorTimingOut:
		return "[timeout]"
	case domain.ConnectionErrorRefused:
		return "[refused]"
	case domain.ConnectionErrorReset:
		return "[reset]"
	default:
		return "[disconnected]"
	}
}

func updatedLine(updatedAt time.Time, opts RenderOptions) string {
	if updatedAt.IsZero() {
		return ""
	}
	if opts.Now.IsZero() {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("245")).
			Render("updated " + updatedAt.Format(time.RFC3339))
	}

	age := opts.Now.Sub(updatedAt)
	color := ageColor(age, opts.StaleAfter)
	return lipgloss.NewStyle().Foreground(color).Render("updated " + formatAge(age))
}

func formatAge(age time.Duration) string {
	switch {
	case age < time.Second:
		return "just now"
	case age < time.Minute:
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	default:
		hours := int(math.Floor(age.Hours()))
		suffix := "hours"
		if hours == 1 {
			suffix = "hour"
		}
		return fmt.Sprintf("%d %s ago", hours, suffix)
	}
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp from 240 (faded) to 255 (bright).
	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}

// ageColor fades from bright for fresh updates to grey as they approach staleness.
func ageColor(age, staleAfter time.Duration) lipgloss.Color {
	if staleAfter <= 0 || age < 0 {
		return lipgloss.Color("255")
	}

	return interpolateColor(staleAfter.Seconds()-age.Seconds(), 0, staleAfter.Seconds())
}
