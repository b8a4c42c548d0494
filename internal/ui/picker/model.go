package picker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/avivsinai/rustlator/internal/libre"
)

const pageSize = 12

// ErrCancelled is returned when the user leaves the picker without choosing.
var ErrCancelled = errors.New("no language selected")

// Run shows an interactive list of langs and returns the chosen entry.
// current marks the language that is stored as the target today.
func Run(ctx context.Context, langs []libre.Language, current string, out io.Writer) (libre.Language, error) {
	if len(langs) == 0 {
		return libre.Language{}, errors.New("service returned no languages")
	}
	if out == nil {
		out = os.Stderr
	}

	p := tea.NewProgram(newModel(langs, current), tea.WithContext(ctx), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return libre.Language{}, err
	}

	m, ok := final.(model)
	if !ok || m.chosen == nil {
		return libre.Language{}, ErrCancelled
	}
	return *m.chosen, nil
}

type model struct {
	all     []libre.Language
	visible []libre.Language
	current string
	filter  string
	cursor  int
	chosen  *libre.Language
}

func newModel(langs []libre.Language, current string) model {
	m := model{all: langs, current: current}
	m.applyFilter()
	for i, l := range m.visible {
		if l.Code == current {
			m.cursor = i
			break
		}
	}
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		if len(m.visible) == 0 {
			return m, nil
		}
		chosen := m.visible[m.cursor]
		m.chosen = &chosen
		return m, tea.Quit
	case tea.KeyUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case tea.KeyDown:
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case tea.KeyBackspace:
		if m.filter != "" {
			runes := []rune(m.filter)
			m.filter = string(runes[:len(runes)-1])
			m.applyFilter()
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filter += string(key.Runes)
		m.applyFilter()
	}
	return m, nil
}

func (m model) View() string {
	if m.chosen != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(" pick a target language (type to filter, enter to choose, esc to cancel)\n")
	b.WriteString(fmt.Sprintf(" filter: %s\n\n", m.filter))

	if len(m.visible) == 0 {
		b.WriteString(" no matches\n")
		return b.String()
	}

	start := 0
	if m.cursor >= pageSize {
		start = m.cursor - pageSize + 1
	}
	end := start + pageSize
	if end > len(m.visible) {
		end = len(m.visible)
	}

	for i := start; i < end; i++ {
		l := m.visible[i]
		pointer := " "
		if i == m.cursor {
			pointer = ">"
		}
		mark := " "
		if l.Code == m.current {
			mark = "*"
		}
		b.WriteString(fmt.Sprintf(" %s%s %-10s %s\n", pointer, mark, l.Code, l.Name))
	}
	return b.String()
}

func (m *model) applyFilter() {
	needle := strings.ToLower(strings.TrimSpace(m.filter))
	visible := make([]libre.Language, 0, len(m.all))
	for _, l := range m.all {
		if needle == "" || strings.Contains(strings.ToLower(l.Code), needle) || strings.Contains(strings.ToLower(l.Name), needle) {
			visible = append(visible, l)
		}
	}
	m.visible = visible
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
