package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcard/internal/card"
)

// generateModel displays a freshly generated batch with actions.
type generateModel struct {
	batch  card.Batch
	lines  []string
	cursor int
	flash  string
	saved  bool
}

// saveBatchMsg requests saving the current batch.
type saveBatchMsg struct {
	batch card.Batch
}

// batchSavedMsg confirms the batch was saved.
type batchSavedMsg struct{}

// flashMsg clears the flash after a timeout.
type flashMsg struct{}

func newGenerateModel(b card.Batch) generateModel {
	return generateModel{
		batch: b,
		lines: b.Lines(),
	}
}

func (m generateModel) Init() tea.Cmd {
	return nil
}

func (m generateModel) Update(msg tea.Msg) (generateModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case batchSavedMsg:
		m.saved = true
		m.flash = "saved"
		return m, clearFlashAfter()

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m generateModel) handleKey(msg tea.KeyMsg) (generateModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.lines)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		if len(m.lines) == 0 {
			return m, nil
		}
		m.flash = copyFlash(m.lines[m.cursor], "copied!")
		return m, clearFlashAfter()
	}

	switch msg.String() {
	case "s":
		if m.saved {
			m.flash = "already saved"
			return m, clearFlashAfter()
		}
		b := m.batch
		return m, func() tea.Msg { return saveBatchMsg{batch: b} }

	case "c":
		m.flash = copyFlash(m.batch.Text(), "copied all!")
		return m, clearFlashAfter()

	case "n":
		prefix := m.batch.Prefix
		return m, func() tea.Msg { return generateMsg{prefix: prefix} }
	}

	return m, nil
}

func clearFlashAfter() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return flashMsg{}
	})
}

// copyFlash copies text and returns the flash to show.
func copyFlash(text, ok string) string {
	if err := copyToClipboard(text); err != nil {
		return "copy: " + err.Error()
	}
	return ok
}

func (m generateModel) View() string {
	sub := fmt.Sprintf("prefix %s  %d cards", m.batch.Prefix, len(m.batch.Cards))
	s := "\n  " + zstyle.Subtitle.Render(sub) + "\n\n"

	s += renderCards(m.lines, m.cursor)

	s += "\n  " + zstyle.MutedText.Render(fmt.Sprintf("generated in %.2fs", m.batch.Elapsed.Seconds())) + "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

// renderCards draws one card per line with a cursor on the selected one.
func renderCards(lines []string, cursor int) string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	var s string
	for i, line := range lines {
		if i == cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}
	return s
}
