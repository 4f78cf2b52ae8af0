package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/zcard/internal/card"
	"github.com/zarlcorp/zcard/internal/luhn"
	"github.com/zarlcorp/zcard/internal/store"
)

// helpers

type errTest string

func (e errTest) Error() string { return string(e) }

func keyMsg(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func specialKey(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func enterKey() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEnter}
}

func escKey() tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyEsc}
}

func testBatch() card.Batch {
	return card.Batch{
		ID:     "abc12345",
		Prefix: "557571",
		Cards: []card.Card{
			{Number: "5575710000000008", Month: "03", Year: "2028", CVV: "417"},
			{Number: "5575711234567891", Month: "11", Year: "2027", CVV: "902"},
			{Number: "5575719999999992", Month: "07", Year: "2030", CVV: "150"},
		},
		CreatedAt: time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC),
		Elapsed:   2 * time.Millisecond,
	}
}

// setupModel creates a root Model with an open store in a temp dir,
// bypassing the password flow.
func setupModel(t *testing.T) Model {
	t.Helper()
	dir := t.TempDir()
	s, err := store.Open(dir, []byte("testpass"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)

	m := New("1.0", dir, false)
	m.store = s
	m.cfg = s.LoadConfig()
	m.gen = card.New(m.cfg)
	m.active = viewMenu
	return m
}

// processMsg sends a message through the model and returns the updated model.
func processMsg(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	result, _ := m.Update(msg)
	rm, ok := result.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", result)
	}
	return rm
}

// cmdMsg runs cmd and returns its message, failing if cmd is nil.
func cmdMsg(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return cmd()
}

// menu view tests

func TestMenuViewShowsItems(t *testing.T) {
	m := newMenuModel("1.0")
	view := m.View()

	for _, item := range menuItems {
		if !strings.Contains(view, item) {
			t.Errorf("menu should contain %q", item)
		}
	}
	if !strings.Contains(view, "1.0") {
		t.Error("menu should show version")
	}
}

func TestMenuShowsBatchCount(t *testing.T) {
	m := newMenuModel("1.0")
	m.batchCount = 4
	if !strings.Contains(m.View(), "(4)") {
		t.Error("menu should show saved batch count")
	}
}

func TestMenuNavigation(t *testing.T) {
	m := newMenuModel("1.0")

	m, _ = m.Update(keyMsg('j'))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.cursor)
	}

	m, _ = m.Update(keyMsg('k'))
	m, _ = m.Update(keyMsg('k'))
	m, _ = m.Update(keyMsg('k'))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0 (clamped)", m.cursor)
	}

	for range menuItems {
		m, _ = m.Update(keyMsg('j'))
	}
	if m.cursor != len(menuItems)-1 {
		t.Errorf("cursor = %d, want %d (clamped)", m.cursor, len(menuItems)-1)
	}
}

func TestMenuSelect(t *testing.T) {
	tests := []struct {
		choice menuChoice
		want   viewID
	}{
		{menuGenerate, viewPrefix},
		{menuCheck, viewCheck},
		{menuBrowse, viewList},
		{menuSettings, viewSettings},
	}

	for _, tt := range tests {
		t.Run(menuItems[tt.choice], func(t *testing.T) {
			m := newMenuModel("1.0")
			m.cursor = int(tt.choice)
			_, cmd := m.Update(enterKey())

			nav, ok := cmdMsg(t, cmd).(navigateMsg)
			if !ok {
				t.Fatal("should emit navigateMsg")
			}
			if nav.view != tt.want {
				t.Errorf("view = %d, want %d", nav.view, tt.want)
			}
		})
	}
}

func TestMenuQuit(t *testing.T) {
	m := newMenuModel("1.0")
	_, cmd := m.Update(keyMsg('q'))
	if _, ok := cmdMsg(t, cmd).(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}

	m.cursor = int(menuQuit)
	_, cmd = m.Update(enterKey())
	if _, ok := cmdMsg(t, cmd).(tea.QuitMsg); !ok {
		t.Error("selecting Quit should quit")
	}
}

// prefix view tests

func TestPrefixSubmitValid(t *testing.T) {
	m := newPrefixModel("")
	m.input.SetValue("5575 71")
	_, cmd := m.Update(enterKey())

	gen, ok := cmdMsg(t, cmd).(generateMsg)
	if !ok {
		t.Fatal("should emit generateMsg")
	}
	if gen.prefix != "557571" {
		t.Errorf("prefix = %q, want 557571", gen.prefix)
	}
}

func TestPrefixSubmitInvalid(t *testing.T) {
	for _, in := range []string{"", "12345", "12345678901234567"} {
		m := newPrefixModel("")
		m.input.SetValue(in)
		m, cmd := m.Update(enterKey())
		if cmd != nil {
			t.Errorf("%q: invalid prefix should not emit command", in)
		}
		if m.errMsg != card.ErrInvalidPrefix.Error() {
			t.Errorf("%q: errMsg = %q, want %q", in, m.errMsg, card.ErrInvalidPrefix.Error())
		}
	}
}

func TestPrefixKeepsLastValue(t *testing.T) {
	m := newPrefixModel("401288")
	if m.input.Value() != "401288" {
		t.Errorf("input = %q, want last prefix", m.input.Value())
	}
}

func TestPrefixQIsText(t *testing.T) {
	m := newPrefixModel("")
	m, cmd := m.Update(keyMsg('q'))
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Fatal("q should not quit the prefix view")
		}
	}
	if m.input.Value() != "q" {
		t.Errorf("input = %q, want q", m.input.Value())
	}
}

func TestPrefixEscBack(t *testing.T) {
	m := newPrefixModel("")
	_, cmd := m.Update(escKey())
	nav, ok := cmdMsg(t, cmd).(navigateMsg)
	if !ok || nav.view != viewMenu {
		t.Error("esc should navigate to menu")
	}
}

// generate view tests

func TestGenerateViewShowsCards(t *testing.T) {
	b := testBatch()
	view := newGenerateModel(b).View()

	for _, line := range b.Lines() {
		if !strings.Contains(view, line) {
			t.Errorf("view should contain %q", line)
		}
	}
	if !strings.Contains(view, "prefix 557571") {
		t.Error("view should show prefix")
	}
	if !strings.Contains(view, "3 cards") {
		t.Error("view should show card count")
	}
}

func TestGenerateNavigation(t *testing.T) {
	m := newGenerateModel(testBatch())

	m, _ = m.Update(keyMsg('j'))
	m, _ = m.Update(keyMsg('j'))
	m, _ = m.Update(keyMsg('j'))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, want 2 (clamped)", m.cursor)
	}

	m, _ = m.Update(keyMsg('k'))
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
}

func TestGenerateSaveEmitsMsg(t *testing.T) {
	m := newGenerateModel(testBatch())
	_, cmd := m.Update(keyMsg('s'))

	save, ok := cmdMsg(t, cmd).(saveBatchMsg)
	if !ok {
		t.Fatal("s should emit saveBatchMsg")
	}
	if save.batch.ID != "abc12345" {
		t.Errorf("batch ID = %q, want abc12345", save.batch.ID)
	}
}

func TestGenerateSaveTwice(t *testing.T) {
	m := newGenerateModel(testBatch())
	m, _ = m.Update(batchSavedMsg{})
	if !m.saved || m.flash != "saved" {
		t.Fatalf("saved = %v flash = %q after batchSavedMsg", m.saved, m.flash)
	}

	m, _ = m.Update(keyMsg('s'))
	if m.flash != "already saved" {
		t.Errorf("flash = %q, want already saved", m.flash)
	}
}

func TestGenerateNewSamePrefix(t *testing.T) {
	m := newGenerateModel(testBatch())
	_, cmd := m.Update(keyMsg('n'))

	gen, ok := cmdMsg(t, cmd).(generateMsg)
	if !ok {
		t.Fatal("n should emit generateMsg")
	}
	if gen.prefix != "557571" {
		t.Errorf("prefix = %q, want 557571", gen.prefix)
	}
}

func TestGenerateBackToMenu(t *testing.T) {
	m := newGenerateModel(testBatch())
	_, cmd := m.Update(escKey())
	nav, ok := cmdMsg(t, cmd).(navigateMsg)
	if !ok || nav.view != viewMenu {
		t.Error("esc should navigate to menu")
	}
}

func TestGenerateFlashClears(t *testing.T) {
	m := newGenerateModel(testBatch())
	m.flash = "copied!"
	m, _ = m.Update(flashMsg{})
	if m.flash != "" {
		t.Errorf("flash = %q, want empty", m.flash)
	}
}

// check view tests

func TestCheckNumber(t *testing.T) {
	tests := []struct {
		in    string
		valid bool
		want  string
	}{
		{"4111111111111111", true, "valid"},
		{"4111-1111-1111-1111", true, "4111111111111111 valid"},
		{"4111111111111112", false, "check digit should be 1"},
		{"7", false, "7 invalid"},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, valid := checkNumber(tt.in)
			if valid != tt.valid {
				t.Errorf("valid = %v, want %v", valid, tt.valid)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("verdict %q should contain %q", got, tt.want)
			}
		})
	}
}

func TestCheckViewShowsVerdict(t *testing.T) {
	m := newCheckModel()
	m.input.SetValue("5555555555554444")
	m, _ = m.Update(enterKey())

	if !m.checked || !m.valid {
		t.Fatalf("checked = %v valid = %v, want both true", m.checked, m.valid)
	}
	if !strings.Contains(m.View(), "5555555555554444 valid") {
		t.Error("view should show verdict")
	}
}

func TestCheckEscBack(t *testing.T) {
	m := newCheckModel()
	_, cmd := m.Update(escKey())
	nav, ok := cmdMsg(t, cmd).(navigateMsg)
	if !ok || nav.view != viewMenu {
		t.Error("esc should navigate to menu")
	}
}

// list view tests

func TestListEmpty(t *testing.T) {
	m := newListModel(nil)
	if !strings.Contains(m.View(), "no saved batches") {
		t.Error("empty list should say so")
	}

	_, cmd := m.Update(enterKey())
	if cmd != nil {
		t.Error("enter on empty list should do nothing")
	}
}

func TestListSelectAndDelete(t *testing.T) {
	a := testBatch()
	b := testBatch()
	b.ID = "def67890"
	b.Prefix = "401288"

	m := newListModel([]card.Batch{a, b})
	view := m.View()
	if !strings.Contains(view, "abc12345") || !strings.Contains(view, "401288") {
		t.Error("list should show batch IDs and prefixes")
	}

	m, _ = m.Update(keyMsg('j'))
	_, cmd := m.Update(enterKey())
	vb, ok := cmdMsg(t, cmd).(viewBatchMsg)
	if !ok || vb.batch.ID != "def67890" {
		t.Fatal("enter should view the selected batch")
	}

	_, cmd = m.Update(keyMsg('d'))
	del, ok := cmdMsg(t, cmd).(deleteBatchMsg)
	if !ok || del.id != "def67890" {
		t.Fatal("d should delete the selected batch")
	}
}

// detail view tests

func TestDetailView(t *testing.T) {
	m := newDetailModel(testBatch())
	view := m.View()
	if !strings.Contains(view, "abc12345") {
		t.Error("detail should show batch ID")
	}
	if !strings.Contains(view, "2026-10-19 09:30") {
		t.Error("detail should show creation time")
	}

	_, cmd := m.Update(keyMsg('d'))
	del, ok := cmdMsg(t, cmd).(deleteBatchMsg)
	if !ok || del.id != "abc12345" {
		t.Fatal("d should delete the batch")
	}

	_, cmd = m.Update(escKey())
	nav, ok := cmdMsg(t, cmd).(navigateMsg)
	if !ok || nav.view != viewList {
		t.Error("esc should go back to the list")
	}
}

// settings view tests

func TestSettingsFormDefaults(t *testing.T) {
	m := newSettingsModel(card.DefaultConfig())
	cfg, err := m.config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg != card.DefaultConfig() {
		t.Errorf("config() = %+v, want default", cfg)
	}
}

func TestSettingsToggleYearFormat(t *testing.T) {
	m := newSettingsModel(card.DefaultConfig())

	// tab past both inputs to the year row
	m, _ = m.Update(specialKey(tea.KeyTab))
	m, _ = m.Update(specialKey(tea.KeyTab))
	if m.focus != int(setFieldCount) {
		t.Fatalf("focus = %d, want year row", m.focus)
	}

	m, _ = m.Update(enterKey())
	if m.yearFormat != card.YearShort {
		t.Errorf("yearFormat = %q, want yy", m.yearFormat)
	}
	if !strings.Contains(m.View(), "27 (yy)") {
		t.Error("view should show short year format")
	}

	m, _ = m.Update(enterKey())
	if m.yearFormat != card.YearLong {
		t.Errorf("yearFormat = %q, want yyyy", m.yearFormat)
	}
}

func TestSettingsFocusWraps(t *testing.T) {
	m := newSettingsModel(card.DefaultConfig())
	m, _ = m.Update(specialKey(tea.KeyShiftTab))
	if m.focus != m.totalFields()-1 {
		t.Errorf("focus = %d, want %d", m.focus, m.totalFields()-1)
	}
	m, _ = m.Update(specialKey(tea.KeyTab))
	if m.focus != 0 {
		t.Errorf("focus = %d, want 0", m.focus)
	}
}

func TestSettingsSaveEmitsConfig(t *testing.T) {
	m := newSettingsModel(card.DefaultConfig())
	m.inputs[setCount].SetValue("25")
	m.inputs[setMaxAttempts].SetValue("300")

	_, cmd := m.Update(specialKey(tea.KeyCtrlS))
	save, ok := cmdMsg(t, cmd).(saveSettingsMsg)
	if !ok {
		t.Fatal("ctrl+s should emit saveSettingsMsg")
	}
	want := card.Config{Count: 25, YearFormat: card.YearLong, MaxAttempts: 300}
	if save.cfg != want {
		t.Errorf("cfg = %+v, want %+v", save.cfg, want)
	}
}

func TestSettingsSaveRejectsNonNumeric(t *testing.T) {
	m := newSettingsModel(card.DefaultConfig())
	m.inputs[setCount].SetValue("ten")

	m, _ = m.Update(specialKey(tea.KeyCtrlS))
	if !m.flashErr {
		t.Error("non-numeric count should flash an error")
	}
	if !strings.Contains(m.View(), "cards per batch: not a number") {
		t.Error("view should name the bad field")
	}
}

// root model tests

func TestOpenStoreFirstRun(t *testing.T) {
	m := New("1.0", t.TempDir(), true)
	m = processMsg(t, m, passwordSubmitMsg{password: "secret"})
	t.Cleanup(m.Close)

	if m.active != viewMenu {
		t.Errorf("active = %d, want menu", m.active)
	}
	if m.store == nil {
		t.Fatal("store should be open")
	}
	if m.Config() != card.DefaultConfig() {
		t.Errorf("config = %+v, want default", m.Config())
	}
}

func TestOpenStoreWrongPassword(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(dir, []byte("correct"))
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	m := New("1.0", dir, false)
	m = processMsg(t, m, passwordSubmitMsg{password: "wrong"})

	if m.active != viewPassword {
		t.Errorf("active = %d, want password view", m.active)
	}
	if m.store != nil {
		t.Error("store should stay closed")
	}
	if m.password.errMsg == "" {
		t.Error("password view should show an error")
	}
}

func TestOpenStoreLoadsConfig(t *testing.T) {
	dir := t.TempDir()
	want := card.Config{Count: 4, YearFormat: card.YearShort, MaxAttempts: 50}

	s, err := store.Open(dir, []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SaveConfig(want); err != nil {
		t.Fatal(err)
	}
	s.Close()

	m := New("1.0", dir, false)
	m = processMsg(t, m, passwordSubmitMsg{password: "secret"})
	t.Cleanup(m.Close)

	if m.Config() != want {
		t.Errorf("config = %+v, want %+v", m.Config(), want)
	}

	m = processMsg(t, m, generateMsg{prefix: "401288"})
	if len(m.generate.batch.Cards) != 4 {
		t.Errorf("got %d cards, want 4", len(m.generate.batch.Cards))
	}
	for _, c := range m.generate.batch.Cards {
		if len(c.Year) != 2 {
			t.Errorf("year %q should be short", c.Year)
		}
	}
}

func TestNavigateViews(t *testing.T) {
	tests := []struct {
		view viewID
	}{
		{viewPrefix},
		{viewCheck},
		{viewList},
		{viewSettings},
		{viewMenu},
	}

	m := setupModel(t)
	for _, tt := range tests {
		m = processMsg(t, m, navigateMsg{view: tt.view})
		if m.active != tt.view {
			t.Errorf("active = %d, want %d", m.active, tt.view)
		}
		if m.View() == "" {
			t.Errorf("view %d renders nothing", tt.view)
		}
	}
}

func TestGenerateFlow(t *testing.T) {
	m := setupModel(t)
	m = processMsg(t, m, navigateMsg{view: viewPrefix})

	m.prefix.input.SetValue("557571")
	_, cmd := m.Update(enterKey())
	m = processMsg(t, m, cmdMsg(t, cmd))

	if m.active != viewGenerate {
		t.Fatalf("active = %d, want generate view", m.active)
	}

	b := m.generate.batch
	if len(b.Cards) != card.DefaultConfig().Count {
		t.Fatalf("got %d cards, want %d", len(b.Cards), card.DefaultConfig().Count)
	}
	for _, c := range b.Cards {
		if !strings.HasPrefix(c.Number, "557571") || !luhn.Valid(c.Number) {
			t.Errorf("bad number %q", c.Number)
		}
	}

	if !strings.Contains(m.View(), b.Cards[0].String()) {
		t.Error("root view should render the batch")
	}

	// regenerate with the same prefix
	_, cmd = m.Update(keyMsg('n'))
	m = processMsg(t, m, cmdMsg(t, cmd))
	if m.generate.batch.ID == b.ID {
		t.Error("n should produce a new batch")
	}
	if m.lastPrefix != "557571" {
		t.Errorf("lastPrefix = %q, want 557571", m.lastPrefix)
	}
}

func TestGenerateFailureReturnsToPrefix(t *testing.T) {
	m := setupModel(t)
	m = processMsg(t, m, generateMsg{prefix: "4111111111111112"})

	if m.active != viewPrefix {
		t.Fatalf("active = %d, want prefix view", m.active)
	}
	if !strings.Contains(m.prefix.errMsg, card.ErrGenerationExhausted.Error()) {
		t.Errorf("errMsg = %q, want generation exhausted", m.prefix.errMsg)
	}
}

func TestSaveBatchPersists(t *testing.T) {
	m := setupModel(t)
	m = processMsg(t, m, generateMsg{prefix: "401288"})

	_, cmd := m.Update(keyMsg('s'))
	m = processMsg(t, m, cmdMsg(t, cmd))

	if !m.generate.saved {
		t.Error("generate view should be marked saved")
	}

	bs, err := m.store.ListBatches()
	if err != nil {
		t.Fatal(err)
	}
	if len(bs) != 1 || bs[0].ID != m.generate.batch.ID {
		t.Fatalf("stored batches = %+v, want the generated one", bs)
	}

	m = processMsg(t, m, navigateMsg{view: viewMenu})
	if m.menu.batchCount != 1 {
		t.Errorf("menu batchCount = %d, want 1", m.menu.batchCount)
	}
}

func TestBrowseAndDelete(t *testing.T) {
	m := setupModel(t)

	a := testBatch()
	b := testBatch()
	b.ID = "def67890"
	b.CreatedAt = a.CreatedAt.Add(time.Hour)
	for _, batch := range []card.Batch{a, b} {
		if err := m.store.SaveBatch(batch); err != nil {
			t.Fatal(err)
		}
	}

	m = processMsg(t, m, navigateMsg{view: viewList})
	if len(m.list.batches) != 2 {
		t.Fatalf("list has %d batches, want 2", len(m.list.batches))
	}
	if m.list.batches[0].ID != "def67890" {
		t.Errorf("newest batch should be first, got %s", m.list.batches[0].ID)
	}

	// open the second (older) batch and delete it from the detail view
	m = processMsg(t, m, keyMsg('j'))
	_, cmd := m.Update(enterKey())
	m = processMsg(t, m, cmdMsg(t, cmd))
	if m.active != viewDetail || m.detail.batch.ID != "abc12345" {
		t.Fatalf("active = %d batch = %s, want detail of abc12345", m.active, m.detail.batch.ID)
	}

	_, cmd = m.Update(keyMsg('d'))
	m = processMsg(t, m, cmdMsg(t, cmd))

	if m.active != viewList {
		t.Errorf("active = %d, want list after delete", m.active)
	}
	if len(m.list.batches) != 1 || m.list.batches[0].ID != "def67890" {
		t.Errorf("remaining = %+v, want only def67890", m.list.batches)
	}
	if !strings.Contains(m.list.flash, "deleted abc12345") {
		t.Errorf("flash = %q, want deleted message", m.list.flash)
	}
}

func TestSaveSettings(t *testing.T) {
	m := setupModel(t)
	m = processMsg(t, m, navigateMsg{view: viewSettings})

	want := card.Config{Count: 3, YearFormat: card.YearShort, MaxAttempts: 20}
	m = processMsg(t, m, saveSettingsMsg{cfg: want})

	if m.settings.flash != "saved" || m.settings.flashErr {
		t.Errorf("flash = %q err = %v, want saved", m.settings.flash, m.settings.flashErr)
	}
	if m.Config() != want {
		t.Errorf("config = %+v, want %+v", m.Config(), want)
	}
	if got := m.store.LoadConfig(); got != want {
		t.Errorf("stored config = %+v, want %+v", got, want)
	}

	m = processMsg(t, m, generateMsg{prefix: "557571"})
	if len(m.generate.batch.Cards) != 3 {
		t.Errorf("got %d cards, want 3 after settings change", len(m.generate.batch.Cards))
	}
}

func TestSaveSettingsInvalid(t *testing.T) {
	m := setupModel(t)
	m = processMsg(t, m, navigateMsg{view: viewSettings})

	bad := card.Config{Count: card.MaxCount + 1, YearFormat: card.YearLong, MaxAttempts: 10}
	m = processMsg(t, m, saveSettingsMsg{cfg: bad})

	if !m.settings.flashErr {
		t.Error("invalid settings should flash an error")
	}
	if m.Config() != card.DefaultConfig() {
		t.Errorf("config = %+v, want unchanged default", m.Config())
	}
}

func TestWindowSize(t *testing.T) {
	m := New("1.0", t.TempDir(), false)
	m = processMsg(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	if m.width != 100 || m.height != 40 {
		t.Errorf("size = %dx%d, want 100x40", m.width, m.height)
	}
}
