// ABOUTME: Interactive fuzzy picker over module names using bubbletea
// ABOUTME: Type to filter (sahilm/fuzzy), arrows to move, enter selects

package picker

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

// ErrAborted is returned when the user dismisses the picker.
var ErrAborted = errors.New("selection aborted")

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	matchStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

// entry is one filtered row: the item plus its matched rune indexes.
type entry struct {
	text    string
	indexes []int
}

type model struct {
	title    string
	items    []string
	query    string
	filtered []entry
	cursor   int
	choice   string
	aborted  bool
}

// filter narrows items by the query. An empty query keeps the original
// order; otherwise rows follow fuzzy match rank.
func filter(query string, items []string) []entry {
	if query == "" {
		out := make([]entry, len(items))
		for i, item := range items {
			out[i] = entry{text: item}
		}
		return out
	}

	matches := fuzzy.Find(query, items)
	out := make([]entry, len(matches))
	for i, m := range matches {
		out[i] = entry{text: m.Str, indexes: m.MatchedIndexes}
	}
	return out
}

func newModel(title string, items []string) model {
	return model{
		title:    title,
		items:    items,
		filtered: filter("", items),
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.aborted = true
		return m, tea.Quit
	case tea.KeyEnter:
		if m.cursor < len(m.filtered) {
			m.choice = m.filtered[m.cursor].text
			return m, tea.Quit
		}
		return m, nil
	case tea.KeyUp, tea.KeyCtrlP:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case tea.KeyDown, tea.KeyCtrlN:
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return m, nil
	case tea.KeyBackspace:
		if m.query != "" {
			m.query = m.query[:len(m.query)-1]
			m.refilter()
		}
		return m, nil
	case tea.KeySpace:
		m.query += " "
		m.refilter()
		return m, nil
	case tea.KeyRunes:
		m.query += string(key.Runes)
		m.refilter()
		return m, nil
	}
	return m, nil
}

func (m *model) refilter() {
	m.filtered = filter(m.query, m.items)
	if m.cursor >= len(m.filtered) {
		m.cursor = 0
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("> "))
	b.WriteString(m.query)
	b.WriteString("\n\n")

	if len(m.filtered) == 0 {
		b.WriteString(dimStyle.Render("  no matches"))
		b.WriteString("\n")
		return b.String()
	}

	width := 0
	for _, e := range m.filtered {
		if w := runewidth.StringWidth(e.text); w > width {
			width = w
		}
	}

	for i, e := range m.filtered {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("❯ "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(highlight(e))
		b.WriteString(strings.Repeat(" ", width-runewidth.StringWidth(e.text)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d/%d · enter selects · esc quits", len(m.filtered), len(m.items))))
	b.WriteString("\n")
	return b.String()
}

// highlight renders an entry with its fuzzy-matched runes emphasized.
func highlight(e entry) string {
	if len(e.indexes) == 0 {
		return e.text
	}

	matched := make(map[int]bool, len(e.indexes))
	for _, idx := range e.indexes {
		matched[idx] = true
	}

	var b strings.Builder
	for i, r := range []rune(e.text) {
		if matched[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Pick shows an interactive picker over items and returns the selection.
func Pick(title string, items []string) (string, error) {
	if len(items) == 0 {
		return "", errors.New("nothing to pick from")
	}

	prog := tea.NewProgram(newModel(title, items))
	final, err := prog.Run()
	if err != nil {
		return "", fmt.Errorf("running picker: %w", err)
	}

	m := final.(model)
	if m.aborted {
		return "", ErrAborted
	}
	return m.choice, nil
}
