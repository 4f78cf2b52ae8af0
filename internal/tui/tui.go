// Package tui implements the root Bubble Tea model for zcard.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zstyle"
	"github.com/zarlcorp/zcard/internal/card"
	"github.com/zarlcorp/zcard/internal/store"
)

type viewID int

const (
	viewPassword viewID = iota
	viewMenu
	viewPrefix
	viewGenerate
	viewCheck
	viewList
	viewDetail
	viewSettings
)

// accent is the zarlcorp palette color used for headers and cursors.
var accent = zstyle.ZburnAccent

// Model is the root TUI model.
type Model struct {
	version  string
	dataDir  string
	firstRun bool
	store    *store.Store
	cfg      card.Config
	gen      *card.Generator

	// last prefix typed, offered again on the next generate
	lastPrefix string

	active   viewID
	password passwordModel
	menu     menuModel
	prefix   prefixModel
	generate generateModel
	check    checkModel
	list     listModel
	detail   detailModel
	settings settingsModel

	// terminal dimensions
	width  int
	height int
}

// New creates the root TUI model. The store is opened once the master
// password is entered.
func New(version, dataDir string, firstRun bool) Model {
	cfg := card.DefaultConfig()
	return Model{
		version:  version,
		dataDir:  dataDir,
		firstRun: firstRun,
		cfg:      cfg,
		gen:      card.New(cfg),
		active:   viewPassword,
		password: newPasswordModel(firstRun),
		menu:     newMenuModel(version),
	}
}

func (m Model) Init() tea.Cmd {
	return m.password.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case passwordSubmitMsg:
		return m.openStore(msg.password)

	case navigateMsg:
		return m.navigate(msg.view)

	case generateMsg:
		return m.handleGenerate(msg.prefix)

	case saveBatchMsg:
		return m.handleSave(msg.batch)

	case viewBatchMsg:
		m.detail = newDetailModel(msg.batch)
		m.active = viewDetail
		return m, nil

	case deleteBatchMsg:
		return m.handleDelete(msg.id)

	case saveSettingsMsg:
		return m.handleSaveSettings(msg.cfg)
	}

	return m.updateActive(msg)
}

func (m Model) View() string {
	// password and menu render their own title
	switch m.active {
	case viewPassword:
		return m.password.View()
	case viewMenu:
		return m.menu.View()
	}

	var content string
	switch m.active {
	case viewPrefix:
		content = m.prefix.View()
	case viewGenerate:
		content = m.generate.View()
	case viewCheck:
		content = m.check.View()
	case viewList:
		content = m.list.View()
	case viewDetail:
		content = m.detail.View()
	case viewSettings:
		content = m.settings.View()
	}

	header := zstyle.RenderHeader("zcard", viewTitle(m.active), accent)
	sep := zstyle.RenderSeparator(m.width)
	footer := zstyle.RenderFooter(helpFor(m.active))

	return "\n" + header + "\n" + sep + "\n" + content + "\n" + footer + "\n"
}

// viewTitle returns the display title for each view.
func viewTitle(id viewID) string {
	switch id {
	case viewPrefix:
		return "Generate Batch"
	case viewGenerate:
		return "Generated Batch"
	case viewCheck:
		return "Check Number"
	case viewList:
		return "Saved Batches"
	case viewDetail:
		return "Batch Details"
	case viewSettings:
		return "Settings"
	}
	return ""
}

// helpFor returns keybinding pairs for each view's footer.
func helpFor(id viewID) []zstyle.HelpPair {
	switch id {
	case viewPrefix:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "generate"},
			{Key: "esc", Desc: "back"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	case viewGenerate:
		return []zstyle.HelpPair{
			{Key: "s", Desc: "save"},
			{Key: "c", Desc: "copy all"},
			{Key: "enter", Desc: "copy card"},
			{Key: "n", Desc: "new"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewCheck:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "check"},
			{Key: "esc", Desc: "back"},
			{Key: "ctrl+c", Desc: "quit"},
		}
	case viewList:
		return []zstyle.HelpPair{
			{Key: "j/k", Desc: "navigate"},
			{Key: "enter", Desc: "view"},
			{Key: "d", Desc: "delete"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewDetail:
		return []zstyle.HelpPair{
			{Key: "enter", Desc: "copy card"},
			{Key: "c", Desc: "copy all"},
			{Key: "d", Desc: "delete"},
			{Key: "esc", Desc: "back"},
			{Key: "q", Desc: "quit"},
		}
	case viewSettings:
		return []zstyle.HelpPair{
			{Key: "tab", Desc: "next"},
			{Key: "enter", Desc: "toggle"},
			{Key: "ctrl+s", Desc: "save"},
			{Key: "esc", Desc: "back"},
		}
	}
	return nil
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.active {
	case viewPassword:
		m.password, cmd = m.password.Update(msg)
	case viewMenu:
		m.menu, cmd = m.menu.Update(msg)
	case viewPrefix:
		m.prefix, cmd = m.prefix.Update(msg)
	case viewGenerate:
		m.generate, cmd = m.generate.Update(msg)
	case viewCheck:
		m.check, cmd = m.check.Update(msg)
	case viewList:
		m.list, cmd = m.list.Update(msg)
	case viewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case viewSettings:
		m.settings, cmd = m.settings.Update(msg)
	}

	return m, cmd
}

func (m Model) openStore(password string) (tea.Model, tea.Cmd) {
	s, err := store.Open(m.dataDir, []byte(password))
	if err != nil {
		m.password, _ = m.password.Update(passwordErrMsg{err: err})
		return m, nil
	}

	m.store = s
	m.cfg = s.LoadConfig()
	m.gen = card.New(m.cfg)
	return m.navigate(viewMenu)
}

func (m Model) navigate(view viewID) (tea.Model, tea.Cmd) {
	switch view {
	case viewMenu:
		mm := newMenuModel(m.version)
		if m.store != nil {
			if bs, err := m.store.ListBatches(); err == nil {
				mm.batchCount = len(bs)
			}
		}
		m.menu = mm
		m.active = viewMenu
		return m, tea.ClearScreen

	case viewPrefix:
		m.prefix = newPrefixModel(m.lastPrefix)
		m.active = viewPrefix
		return m, tea.Batch(m.prefix.Init(), tea.ClearScreen)

	case viewCheck:
		m.check = newCheckModel()
		m.active = viewCheck
		return m, tea.Batch(m.check.Init(), tea.ClearScreen)

	case viewList:
		m, cmd := m.loadList()
		return m, tea.Batch(cmd, tea.ClearScreen)

	case viewSettings:
		m.settings = newSettingsModel(m.cfg)
		m.active = viewSettings
		return m, tea.Batch(m.settings.Init(), tea.ClearScreen)
	}

	return m, nil
}

func (m Model) handleGenerate(prefix string) (tea.Model, tea.Cmd) {
	b, err := m.gen.NewBatch(prefix)
	if err != nil {
		// stay on (or return to) the prefix prompt with the error shown
		m.prefix = newPrefixModel(prefix)
		m.prefix.errMsg = "generate: " + err.Error()
		m.active = viewPrefix
		return m, m.prefix.Init()
	}

	m.lastPrefix = prefix
	m.generate = newGenerateModel(b)
	m.active = viewGenerate
	return m, tea.ClearScreen
}

func (m Model) handleSave(b card.Batch) (tea.Model, tea.Cmd) {
	if m.store == nil {
		return m, nil
	}

	if err := m.store.SaveBatch(b); err != nil {
		m.generate.flash = "save: " + err.Error()
		return m, clearFlashAfter()
	}

	m.generate, _ = m.generate.Update(batchSavedMsg{})
	return m, clearFlashAfter()
}

func (m Model) handleDelete(id string) (tea.Model, tea.Cmd) {
	if m.store == nil {
		return m, nil
	}

	if err := m.store.DeleteBatch(id); err != nil {
		if m.active == viewDetail {
			m.detail.flash = "delete: " + err.Error()
			return m, clearFlashAfter()
		}
		m.list.flash = "delete: " + err.Error()
		return m, clearFlashAfter()
	}

	// back to a fresh list from either view
	m, cmd := m.loadList()
	if m.list.flash == "" {
		m.list.flash = "deleted " + id
	}
	return m, tea.Batch(cmd, clearFlashAfter())
}

func (m Model) loadList() (Model, tea.Cmd) {
	if m.store == nil {
		m.list = newListModel(nil)
		m.active = viewList
		return m, nil
	}

	bs, err := m.store.ListBatches()
	if err != nil {
		m.list = newListModel(nil)
		m.list.flash = "load: " + err.Error()
		m.active = viewList
		return m, clearFlashAfter()
	}

	m.list = newListModel(bs)
	m.active = viewList
	return m, nil
}

func (m Model) handleSaveSettings(cfg card.Config) (tea.Model, tea.Cmd) {
	if m.store == nil {
		return m, nil
	}

	if err := m.store.SaveConfig(cfg); err != nil {
		m.settings.flash = fmt.Sprintf("save: %v", err)
		m.settings.flashErr = true
		return m, clearFlashAfter()
	}

	m.cfg = cfg
	m.gen = card.New(cfg)
	m.settings.flash = "saved"
	m.settings.flashErr = false
	return m, clearFlashAfter()
}

// Config returns the generator config in effect.
func (m Model) Config() card.Config {
	return m.cfg
}

// Close cleans up resources. Call after the program exits.
func (m Model) Close() {
	if m.store != nil {
		m.store.Close()
	}
}
