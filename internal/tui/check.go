package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcard/internal/card"
	"github.com/zarlcorp/zcard/internal/luhn"
)

// checkModel validates a typed number against the mod-10 check.
type checkModel struct {
	input   textinput.Model
	result  string
	valid   bool
	checked bool
}

func newCheckModel() checkModel {
	ti := textinput.New()
	ti.Placeholder = "4111 1111 1111 1111"
	ti.CharLimit = 40
	ti.Width = 40
	ti.Focus()

	return checkModel{input: ti}
}

func (m checkModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m checkModel) Update(msg tea.Msg) (checkModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if msg.Type == tea.KeyEsc {
			return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			m.result, m.valid = checkNumber(m.input.Value())
			m.checked = m.result != ""
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// checkNumber returns a verdict line for s and whether it passed.
// Empty input yields an empty verdict.
func checkNumber(s string) (string, bool) {
	n := card.Digits(s)
	if n == "" {
		return "", false
	}

	if luhn.Valid(n) {
		return n + " valid", true
	}

	if len(n) > 1 {
		if d, err := luhn.CheckDigit(n[:len(n)-1]); err == nil {
			return fmt.Sprintf("%s invalid, check digit should be %c", n, d), false
		}
	}
	return n + " invalid", false
}

func (m checkModel) View() string {
	s := fmt.Sprintf("\n  %s\n  %s\n\n", "number:", m.input.View())

	// reserve the verdict line
	switch {
	case !m.checked:
		s += "\n"
	case m.valid:
		s += "  " + zstyle.StatusOK.Render(m.result) + "\n"
	default:
		s += "  " + zstyle.StatusErr.Render(m.result) + "\n"
	}

	return s
}
