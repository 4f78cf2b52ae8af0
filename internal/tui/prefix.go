package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcard/internal/card"
)

// prefixModel prompts for the prefix every generated number starts with.
type prefixModel struct {
	input  textinput.Model
	errMsg string
}

// generateMsg asks the root model to generate a batch for prefix.
type generateMsg struct {
	prefix string
}

func newPrefixModel(last string) prefixModel {
	ti := textinput.New()
	ti.Placeholder = "557571"
	ti.CharLimit = 32
	ti.Width = 32
	ti.SetValue(last)
	ti.Focus()

	return prefixModel{input: ti}
}

func (m prefixModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m prefixModel) Update(msg tea.Msg) (prefixModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		// q is text here; only ctrl+c quits
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if msg.Type == tea.KeyEsc {
			return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			return m.submit()
		}

		m.errMsg = ""
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m prefixModel) submit() (prefixModel, tea.Cmd) {
	prefix := card.Digits(m.input.Value())
	if !card.ValidPrefix(prefix) {
		m.errMsg = card.ErrInvalidPrefix.Error()
		return m, nil
	}

	m.errMsg = ""
	return m, func() tea.Msg { return generateMsg{prefix: prefix} }
}

func (m prefixModel) View() string {
	s := fmt.Sprintf("\n  %s\n  %s\n", "prefix (6-16 digits):", m.input.View())

	s += "\n"
	if m.errMsg != "" {
		s += "  " + zstyle.StatusErr.Render(m.errMsg) + "\n"
	} else {
		s += "  " + zstyle.MutedText.Render("spaces and dashes are ignored") + "\n"
	}

	return s
}
