package picker

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/avivsinai/rustlator/internal/libre"
)

var sample = []libre.Language{
	{Code: "en", Name: "English"},
	{Code: "fi", Name: "Finnish"},
	{Code: "fr", Name: "French"},
	{Code: "sv", Name: "Swedish"},
}

func press(m model, msgs ...tea.KeyMsg) (model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCursorStartsOnCurrentTarget(t *testing.T) {
	m := newModel(sample, "fr")
	require.Equal(t, 2, m.cursor)
	require.Contains(t, m.View(), ">* fr")
}

func TestFilterNarrowsByCodeOrName(t *testing.T) {
	m, _ := press(newModel(sample, "fi"), runes("sw"))
	require.Equal(t, []libre.Language{{Code: "sv", Name: "Swedish"}}, m.visible)
	require.Equal(t, 0, m.cursor)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace})
	require.Len(t, m.visible, len(sample))
}

func TestEnterChoosesAndQuits(t *testing.T) {
	m, cmd := press(newModel(sample, "en"), tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.chosen)
	require.Equal(t, "fr", m.chosen.Code)
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCursorStaysInBounds(t *testing.T) {
	m, _ := press(newModel(sample, "en"), tea.KeyMsg{Type: tea.KeyUp})
	require.Equal(t, 0, m.cursor)

	keys := make([]tea.KeyMsg, 10)
	for i := range keys {
		keys[i] = tea.KeyMsg{Type: tea.KeyDown}
	}
	m, _ = press(m, keys...)
	require.Equal(t, len(sample)-1, m.cursor)
}

func TestEscCancels(t *testing.T) {
	m, cmd := press(newModel(sample, "en"), tea.KeyMsg{Type: tea.KeyEsc})
	require.Nil(t, m.chosen)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestEnterWithNoMatchesDoesNothing(t *testing.T) {
	m, cmd := press(newModel(sample, "en"), runes("zz"))
	require.Contains(t, m.View(), "no matches")
	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, m.chosen)
	require.Nil(t, cmd)
}

func TestRunRejectsEmptyListing(t *testing.T) {
	_, err := Run(context.Background(), nil, "fi", nil)
	require.Error(t, err)
}
