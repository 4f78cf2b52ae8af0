package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcard/internal/card"
)

// listModel displays saved batches in a scrollable list.
type listModel struct {
	batches []card.Batch
	cursor  int
	flash   string
}

// deleteBatchMsg requests deletion of a batch.
type deleteBatchMsg struct {
	id string
}

// viewBatchMsg requests viewing a specific batch.
type viewBatchMsg struct {
	batch card.Batch
}

func newListModel(bs []card.Batch) listModel {
	return listModel{batches: bs}
}

func (m listModel) Init() tea.Cmd {
	return nil
}

func (m listModel) Update(msg tea.Msg) (listModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m listModel) handleKey(msg tea.KeyMsg) (listModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
	}

	if len(m.batches) == 0 {
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyUp) {
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyDown) {
		if m.cursor < len(m.batches)-1 {
			m.cursor++
		}
		return m, nil
	}

	if key.Matches(msg, zstyle.KeyEnter) {
		b := m.batches[m.cursor]
		return m, func() tea.Msg { return viewBatchMsg{batch: b} }
	}

	if msg.String() == "d" {
		id := m.batches[m.cursor].ID
		return m, func() tea.Msg { return deleteBatchMsg{id: id} }
	}

	return m, nil
}

func (m listModel) View() string {
	accentStyle := lipgloss.NewStyle().Foreground(accent).Bold(true)

	s := "\n"

	if len(m.batches) == 0 {
		s += "  " + zstyle.MutedText.Render("no saved batches") + "\n"
		s += "\n"
		if m.flash != "" {
			s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
		} else {
			s += "\n"
		}
		return s
	}

	for i, b := range m.batches {
		line := fmt.Sprintf("%-10s %-18s %4d  %s",
			b.ID,
			truncate(b.Prefix, 18),
			len(b.Cards),
			zstyle.MutedText.Render(b.CreatedAt.Format("2006-01-02")),
		)

		if i == m.cursor {
			s += "  " + accentStyle.Render("▸") + " " + line + "\n"
		} else {
			s += "    " + line + "\n"
		}
	}

	s += "\n"

	// always reserve a line for flash to prevent layout shift
	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
