package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcard/internal/card"
)

// detailModel displays a saved batch.
type detailModel struct {
	batch  card.Batch
	lines  []string
	cursor int
	flash  string
}

func newDetailModel(b card.Batch) detailModel {
	return detailModel{
		batch: b,
		lines: b.Lines(),
	}
}

func (m detailModel) Init() tea.Cmd {
	return nil
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case flashMsg:
		m.flash = ""
		return m, nil
	}

	return m, nil
}

func (m detailModel) handleKey(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if key.Matches(msg, zstyle.KeyQuit) {
		return m, tea.Quit
	}

	if key.Matches(msg, zstyle.KeyBack) {
		return m, func() tea.Msg { return navigateMsg{view: viewList} }
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
	case "c":
		m.flash = copyFlash(m.batch.Text(), "copied all!")
		return m, clearFlashAfter()

	case "d":
		id := m.batch.ID
		return m, func() tea.Msg { return deleteBatchMsg{id: id} }
	}

	return m, nil
}

func (m detailModel) View() string {
	sub := fmt.Sprintf("%s  prefix %s", m.batch.ID, m.batch.Prefix)
	s := "\n  " + zstyle.Subtitle.Render(sub) + "\n"
	s += "  " + zstyle.MutedText.Render(m.batch.CreatedAt.Format("2006-01-02 15:04")) + "\n\n"

	s += renderCards(m.lines, m.cursor)

	s += "\n"

	if m.flash != "" {
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	} else {
		s += "\n"
	}

	return s
}
