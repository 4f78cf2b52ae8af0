package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcard/internal/card"
)

type settingsField int

const (
	setCount settingsField = iota
	setMaxAttempts
	setFieldCount
)

var settingsLabels = [setFieldCount]string{
	"cards per batch",
	"max attempts",
}

// saveSettingsMsg requests persisting the generator config.
type saveSettingsMsg struct {
	cfg card.Config
}

// settingsModel is the form for the generator config. Focus indexes past
// the text inputs select the year format row.
type settingsModel struct {
	inputs     []textinput.Model
	focus      int
	yearFormat card.YearFormat
	flash      string
	flashErr   bool
}

func newSettingsModel(cfg card.Config) settingsModel {
	inputs := make([]textinput.Model, setFieldCount)

	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 6
		ti.Width = 10
		inputs[i] = ti
	}

	inputs[setCount].Placeholder = "10"
	inputs[setCount].SetValue(strconv.Itoa(cfg.Count))

	inputs[setMaxAttempts].Placeholder = "100"
	inputs[setMaxAttempts].SetValue(strconv.Itoa(cfg.MaxAttempts))

	inputs[0].Focus()

	yf := cfg.YearFormat
	if yf != card.YearShort {
		yf = card.YearLong
	}

	return settingsModel{
		inputs:     inputs,
		yearFormat: yf,
	}
}

func (m settingsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m settingsModel) Update(msg tea.Msg) (settingsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

		if msg.Type == tea.KeyEsc {
			return m, func() tea.Msg { return navigateMsg{view: viewMenu} }
		}

		if key.Matches(msg, zstyle.KeyTab) || msg.Type == tea.KeyDown {
			return m.nextField(), nil
		}

		if msg.Type == tea.KeyUp || msg.Type == tea.KeyShiftTab {
			return m.prevField(), nil
		}

		if key.Matches(msg, zstyle.KeyEnter) {
			if m.focus >= int(setFieldCount) {
				m.yearFormat = toggleYearFormat(m.yearFormat)
				return m, nil
			}
			return m.nextField(), nil
		}

		if msg.String() == "ctrl+s" {
			return m.save()
		}

	case flashMsg:
		m.flash = ""
		m.flashErr = false
		return m, nil
	}

	if m.focus < int(setFieldCount) {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m settingsModel) save() (settingsModel, tea.Cmd) {
	cfg, err := m.config()
	if err != nil {
		m.flash = err.Error()
		m.flashErr = true
		return m, clearFlashAfter()
	}
	return m, func() tea.Msg { return saveSettingsMsg{cfg: cfg} }
}

// config reads the form into a card.Config. Range checks are left to
// card.Config.Validate at save time.
func (m settingsModel) config() (card.Config, error) {
	count, err := strconv.Atoi(strings.TrimSpace(m.inputs[setCount].Value()))
	if err != nil {
		return card.Config{}, fmt.Errorf("%s: not a number", settingsLabels[setCount])
	}

	attempts, err := strconv.Atoi(strings.TrimSpace(m.inputs[setMaxAttempts].Value()))
	if err != nil {
		return card.Config{}, fmt.Errorf("%s: not a number", settingsLabels[setMaxAttempts])
	}

	return card.Config{
		Count:       count,
		YearFormat:  m.yearFormat,
		MaxAttempts: attempts,
	}, nil
}

func toggleYearFormat(f card.YearFormat) card.YearFormat {
	if f == card.YearShort {
		return card.YearLong
	}
	return card.YearShort
}

func (m settingsModel) totalFields() int {
	return int(setFieldCount) + 1
}

func (m settingsModel) nextField() settingsModel {
	if m.focus < int(setFieldCount) {
		m.inputs[m.focus].Blur()
	}
	m.focus = (m.focus + 1) % m.totalFields()
	if m.focus < int(setFieldCount) {
		m.inputs[m.focus].Focus()
	}
	return m
}

func (m settingsModel) prevField() settingsModel {
	if m.focus < int(setFieldCount) {
		m.inputs[m.focus].Blur()
	}
	m.focus--
	if m.focus < 0 {
		m.focus = m.totalFields() - 1
	}
	if m.focus < int(setFieldCount) {
		m.inputs[m.focus].Focus()
	}
	return m
}

func (m settingsModel) View() string {
	title := zstyle.Title.Render("generator settings")
	s := fmt.Sprintf("\n  %s\n\n", title)

	for i, input := range m.inputs {
		label := zstyle.MutedText.Render(fmt.Sprintf("  %-16s", settingsLabels[i]))
		if i == m.focus {
			s += zstyle.Highlight.Render("> ") + label + input.View() + "\n"
		} else {
			s += "  " + label + input.View() + "\n"
		}
	}

	year := "2027 (yyyy)"
	if m.yearFormat == card.YearShort {
		year = "27 (yy)"
	}
	label := zstyle.MutedText.Render(fmt.Sprintf("  %-16s", "expiry year"))
	if m.focus == int(setFieldCount) {
		s += zstyle.Highlight.Render("> ") + label + year + "\n"
	} else {
		s += "  " + label + year + "\n"
	}

	s += "\n"

	switch {
	case m.flash == "":
		s += "\n"
	case m.flashErr:
		s += "  " + zstyle.StatusErr.Render(m.flash) + "\n"
	default:
		s += "  " + zstyle.StatusOK.Render(m.flash) + "\n"
	}

	return s
}
