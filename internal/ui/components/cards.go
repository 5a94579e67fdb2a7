package components

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Card is a bordered panel with an icon, title and body text
type Card struct {
	Title  string
	Body   string
	Icon   string
	Step   int
	Width  int
	Accent lipgloss.TerminalColor
	Border lipgloss.TerminalColor
}

// NewCard creates a card
func NewCard(title, body string) *Card {
	return &Card{
		Title:  title,
		Body:   body,
		Width:  28,
		Accent: lipgloss.Color("#3B82F6"),
		Border: lipgloss.Color("#374151"),
	}
}

// SetIcon sets the card icon
func (c *Card) SetIcon(icon string) *Card {
	c.Icon = icon
	return c
}

// SetStep numbers the card
func (c *Card) SetStep(step int) *Card {
	c.Step = step
	return c
}

// Render renders the card
func (c *Card) Render() string {
	title := c.Title
	if c.Icon != "" {
		title = c.Icon + " " + title
	}
	if c.Step > 0 {
		title = lipgloss.NewStyle().Faint(true).Render(strconv.Itoa(c.Step)+". ") + title
	}

	titleStyle := lipgloss.NewStyle().Foreground(c.Accent).Bold(true)
	body := lipgloss.NewStyle().Width(max(c.Width-4, 10)).Render(c.Body)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(c.Border).
		Padding(0, 1).
		Width(c.Width).
		Render(titleStyle.Render(title) + "\n" + body)
}

// CardRow lays cards out in columns, wrapping onto new rows
type CardRow struct {
	Cards   []*Card
	Columns int
}

// NewCardRow creates a row with the given column count
func NewCardRow(columns int) *CardRow {
	return &CardRow{Columns: max(columns, 1)}
}

// AddCard appends a card
func (r *CardRow) AddCard(card *Card) {
	r.Cards = append(r.Cards, card)
}

// SetCardWidth applies one width to every card
func (r *CardRow) SetCardWidth(width int) {
	for _, card := range r.Cards {
		card.Width = width
	}
}

// Render renders the cards
func (r *CardRow) Render() string {
	if len(r.Cards) == 0 {
		return ""
	}

	var rows []string
	for i := 0; i < len(r.Cards); i += r.Columns {
		end := min(i+r.Columns, len(r.Cards))
		rendered := make([]string, 0, end-i)
		for _, card := range r.Cards[i:end] {
			rendered = append(rendered, card.Render())
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
