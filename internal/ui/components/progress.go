package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// ProgressBar renders upload progress as a percentage
type ProgressBar struct {
	Width         int
	Percent       int
	Indeterminate bool
	StartTime     time.Time
	Label         string

	// Fill and Track default to the green/grey pair when left zero
	Fill  lipgloss.TerminalColor
	Track lipgloss.TerminalColor
}

// NewProgressBar creates a new progress bar
func NewProgressBar(width int) *ProgressBar {
	return &ProgressBar{
		Width:     width,
		StartTime: time.Now(),
	}
}

// SetPercent updates the progress, clamped to 0..100
func (p *ProgressBar) SetPercent(percent int) {
	p.Percent = max(0, min(100, percent))
	p.Indeterminate = false
}

// SetIndeterminate switches to the moving animation used before the
// first percentage arrives
func (p *ProgressBar) SetIndeterminate() {
	if !p.Indeterminate {
		p.StartTime = time.Now()
	}
	p.Indeterminate = true
}

// SetLabel sets the progress label
func (p *ProgressBar) SetLabel(label string) {
	p.Label = label
}

func (p *ProgressBar) styles() (lipgloss.Style, lipgloss.Style) {
	fill := p.Fill
	if fill == nil {
		fill = lipgloss.Color("#10B981")
	}
	track := p.Track
	if track == nil {
		track = lipgloss.Color("#9CA3AF")
	}
	return lipgloss.NewStyle().Foreground(fill).Bold(true), lipgloss.NewStyle().Foreground(track)
}

// Render renders the progress bar
func (p *ProgressBar) Render() string {
	if p.Width <= 0 {
		p.Width = 30
	}
	if p.Indeterminate {
		return p.renderIndeterminate()
	}

	fillStyle, trackStyle := p.styles()

	filledWidth := p.Width * p.Percent / 100
	bar := fillStyle.Render(strings.Repeat("█", filledWidth)) +
		trackStyle.Render(strings.Repeat("░", p.Width-filledWidth))

	result := fmt.Sprintf("[%s] %3d%%", bar, p.Percent)
	if p.Label != "" {
		result = p.Label + "\n" + result
	}
	return result
}

// renderIndeterminate renders a three-cell block sweeping across the track
func (p *ProgressBar) renderIndeterminate() string {
	fillStyle, trackStyle := p.styles()

	elapsed := time.Since(p.StartTime)
	frame := int(elapsed.Milliseconds()/100) % p.Width

	var bar strings.Builder
	for i := 0; i < p.Width; i++ {
		if i >= frame && i < frame+3 {
			bar.WriteString(fillStyle.Render("█"))
		} else {
			bar.WriteString(trackStyle.Render("░"))
		}
	}

	result := fmt.Sprintf("[%s] Uploading...", bar.String())
	if p.Label != "" {
		result = p.Label + "\n" + result
	}
	return result
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner represents a spinning progress indicator
type Spinner struct {
	Frame int
	Label string
	Color lipgloss.TerminalColor
}

// NewSpinner creates a new spinner
func NewSpinner() *Spinner {
	return &Spinner{}
}

// SetLabel sets the spinner label
func (s *Spinner) SetLabel(label string) {
	s.Label = label
}

// Tick advances the spinner animation
func (s *Spinner) Tick() {
	s.Frame = (s.Frame + 1) % len(spinnerFrames)
}

// Render renders the spinner
func (s *Spinner) Render() string {
	color := s.Color
	if color == nil {
		color = lipgloss.Color("#10B981")
	}
	spinner := lipgloss.NewStyle().Foreground(color).Bold(true).Render(spinnerFrames[s.Frame])

	if s.Label != "" {
		return fmt.Sprintf("%s %s", spinner, s.Label)
	}
	return spinner
}
