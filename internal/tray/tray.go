// Package tray provides the system tray menu used to launch translation
// sessions and change the settings, suggestion mode and history.
package tray

import (
	"fmt"
	"strings"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/signbridge/internal/store"
	"github.com/ayusman/signbridge/internal/suggest"
)

const (
	// maxTranscriptLabel bounds transcripts shown in the menu.
	maxTranscriptLabel = 40

	// HistorySlots is how many recent transcripts the History submenu lists.
	HistorySlots = 5
)

// modes lists the suggestion modes in menu order.
var modes = []suggest.Mode{suggest.ModeOff, suggest.ModeInbuilt, suggest.ModeCustom}

// holdSeconds lists the stability thresholds offered in the menu.
var holdSeconds = func() []float64 {
	var out []float64
	for s := store.MinStabilitySeconds; s <= store.MaxStabilitySeconds; s++ {
		out = append(out, s)
	}
	return out
}()

// historyItem is one History submenu slot and its Delete child.
type historyItem struct {
	entry  *systray.MenuItem
	delete *systray.MenuItem
}

// Tray represents the system tray application.
type Tray struct {
	onStart         func()
	onStop          func()
	onQuit          func()
	onSettings      func(store.Settings)
	onDeleteHistory func(id string)
	onClearHistory  func()

	active   bool
	last     string
	settings store.Settings
	history  []*store.Entry
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuSession *systray.MenuItem
	menuLast    *systray.MenuItem
	menuMirror  *systray.MenuItem
	menuDark    *systray.MenuItem
	menuAuto    *systray.MenuItem
	menuModes   []*systray.MenuItem
	menuHold    []*systray.MenuItem
	menuHistory []historyItem
	menuClear   *systray.MenuItem
}

// New creates a new Tray with no session running and default settings.
func New() *Tray {
	return &Tray{settings: store.DefaultSettings()}
}

// OnStart sets the callback run when "Start translating" is clicked.
func (t *Tray) OnStart(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStart = fn
}

// OnStop sets the callback run when "Stop translating" is clicked.
func (t *Tray) OnStop(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStop = fn
}

// OnQuit sets the callback run when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// OnSettings sets the callback run with the full settings after any setting
// item is clicked.
func (t *Tray) OnSettings(fn func(store.Settings)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnDeleteHistory sets the callback run when a transcript's Delete is clicked.
func (t *Tray) OnDeleteHistory(fn func(id string)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDeleteHistory = fn
}

// OnClearHistory sets the callback run when "Clear history" is clicked.
func (t *Tray) OnClearHistory(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClearHistory = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit exits the tray loop.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("SignBridge")
	systray.SetTooltip("SignBridge sign language translator")

	t.mu.Lock()
	t.menuSession = systray.AddMenuItem(sessionTitle(t.active), "Start or stop a translation session")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(LastLabel(t.last), "Last saved transcript")
	t.menuLast.Disable()
	systray.AddSeparator()

	t.menuMirror = systray.AddMenuItemCheckbox("Mirror camera", "Flip the camera image horizontally", false)
	t.menuDark = systray.AddMenuItemCheckbox("Dark overlay", "Use the dark sidebar", false)
	t.menuAuto = systray.AddMenuItemCheckbox("Auto-type letters", "Commit a letter after holding it", false)

	modeMenu := systray.AddMenuItem("Suggestions", "Where word suggestions come from")
	t.menuModes = make([]*systray.MenuItem, len(modes))
	for i, m := range modes {
		t.menuModes[i] = modeMenu.AddSubMenuItemCheckbox(ModeTitle(m), "", false)
	}

	holdMenu := systray.AddMenuItem("Hold time", "How long a letter must be held to auto-type")
	t.menuHold = make([]*systray.MenuItem, len(holdSeconds))
	for i, s := range holdSeconds {
		t.menuHold[i] = holdMenu.AddSubMenuItemCheckbox(HoldTitle(s), "", false)
	}
	systray.AddSeparator()

	historyMenu := systray.AddMenuItem("History", "Saved transcripts")
	t.menuHistory = make([]historyItem, HistorySlots)
	for i := range t.menuHistory {
		entry := historyMenu.AddSubMenuItem("", "")
		t.menuHistory[i] = historyItem{entry: entry, delete: entry.AddSubMenuItem("Delete", "Delete this transcript")}
	}
	t.menuClear = historyMenu.AddSubMenuItem("Clear history", "Delete every saved transcript")
	t.syncSettings()
	t.syncHistory()
	t.mu.Unlock()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit SignBridge")

	watch(t.menuSession, t.handleSession)
	watch(t.menuMirror, t.toggleMirror)
	watch(t.menuDark, t.toggleDark)
	watch(t.menuAuto, t.toggleAuto)
	for i, m := range modes {
		watch(t.menuModes[i], func() { t.selectMode(m) })
	}
	for i, s := range holdSeconds {
		watch(t.menuHold[i], func() { t.selectHold(s) })
	}
	for i, item := range t.menuHistory {
		watch(item.delete, func() { t.deleteHistory(i) })
	}
	watch(t.menuClear, t.clearHistory)

	go func() {
		<-menuQuit.ClickedCh
		t.handleQuit()
	}()
}

func (t *Tray) onExit() {}

// watch runs fn for every click on item.
func watch(item *systray.MenuItem, fn func()) {
	go func() {
		for range item.ClickedCh {
			fn()
		}
	}()
}

// handleSession starts a session when none is running and stops it otherwise.
// The menu title follows SetActive, not the click.
func (t *Tray) handleSession() {
	t.mu.RLock()
	callback := t.onStart
	if t.active {
		callback = t.onStop
	}
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

func (t *Tray) toggleMirror() { t.updateSettings(func(st *store.Settings) { st.Mirror = !st.Mirror }) }
func (t *Tray) toggleDark() { t.updateSettings(func(st *store.Settings) { st.DarkOverlay = !st.DarkOverlay }) }
func (t *Tray) toggleAuto() { t.updateSettings(func(st *store.Settings) { st.AutoInput = !st.AutoInput }) }

func (t *Tray) selectMode(m suggest.Mode) {
	t.updateSettings(func(st *store.Settings) { st.SuggestionMode = m })
}

func (t *Tray) selectHold(secs float64) {
	t.updateSettings(func(st *store.Settings) { st.StabilitySeconds = secs })
}

// updateSettings applies fn to the shown settings and hands the result to
// the OnSettings callback.
func (t *Tray) updateSettings(fn func(*store.Settings)) {
	t.mu.Lock()
	fn(&t.settings)
	st := t.settings
	t.syncSettings()
	callback := t.onSettings
	t.mu.Unlock()

	if callback != nil {
		callback(st)
	}
}

// SetSettings shows st in the menu. It may be called before Run.
func (t *Tray) SetSettings(st store.Settings) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.settings = st
	t.syncSettings()
}

// Settings returns the settings the menu shows.
func (t *Tray) Settings() store.Settings {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.settings
}

// syncSettings updates the check marks. The caller holds mu.
func (t *Tray) syncSettings() {
	if t.menuMirror == nil {
		return
	}
	setChecked(t.menuMirror, t.settings.Mirror)
	setChecked(t.menuDark, t.settings.DarkOverlay)
	setChecked(t.menuAuto, t.settings.AutoInput)
	for i, m := range modes {
		setChecked(t.menuModes[i], m == t.settings.SuggestionMode)
	}
	for i, s := range holdSeconds {
		setChecked(t.menuHold[i], s == t.settings.StabilitySeconds)
	}
}

func setChecked(item *systray.MenuItem, on bool) {
	if on {
		item.Check()
	} else {
		item.Uncheck()
	}
}

// SetHistory shows the newest entries, up to HistorySlots, in the History
// submenu. It may be called before Run.
func (t *Tray) SetHistory(entries []*store.Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(entries) > HistorySlots {
		entries = entries[:HistorySlots]
	}
	t.history = append([]*store.Entry(nil), entries...)
	t.syncHistory()
}

// syncHistory shows one slot per entry and hides the rest. The caller holds mu.
func (t *Tray) syncHistory() {
	if t.menuHistory == nil {
		return
	}
	for i, item := range t.menuHistory {
		if i >= len(t.history) {
			item.entry.Hide()
			continue
		}
		e := t.history[i]
		item.entry.SetTitle(HistoryTitle(e))
		item.entry.Show()
	}
	if len(t.history) == 0 {
		t.menuClear.Disable()
	} else {
		t.menuClear.Enable()
	}
}

func (t *Tray) deleteHistory(slot int) {
	t.mu.RLock()
	var id string
	if slot < len(t.history) {
		id = t.history[slot].ID
	}
	callback := t.onDeleteHistory
	t.mu.RUnlock()

	if id != "" && callback != nil {
		callback(id)
	}
}

func (t *Tray) clearHistory() {
	t.mu.RLock()
	callback := t.onClearHistory
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// SetActive updates the menu to reflect whether a session is running.
func (t *Tray) SetActive(active bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active = active
	if t.menuSession != nil {
		t.menuSession.SetTitle(sessionTitle(active))
	}
}

// IsActive reports whether the tray believes a session is running.
func (t *Tray) IsActive() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// SetLastTranscript shows the most recent transcript in the menu. It may be
// called before Run.
func (t *Tray) SetLastTranscript(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = text
	if t.menuLast != nil {
		t.menuLast.SetTitle(LastLabel(text))
	}
}

func sessionTitle(active bool) string {
	if active {
		return "■ Stop translating"
	}
	return "▶ Start translating"
}

// LastLabel formats the "Last:" menu entry.
func LastLabel(text string) string {
	body := truncate(text)
	if body == "" {
		return "Last: none"
	}
	return "Last: " + body
}

// HistoryTitle formats a History submenu slot.
func HistoryTitle(e *store.Entry) string {
	return e.CreatedAt.Format("Jan 2 15:04") + "  " + truncate(e.Text)
}

// ModeTitle is the menu label of a suggestion mode.
func ModeTitle(m suggest.Mode) string {
	switch m {
	case suggest.ModeOff:
		return "Off"
	case suggest.ModeInbuilt:
		return "Spelling (inbuilt)"
	case suggest.ModeCustom:
		return "Custom dictionary"
	}
	return m.String()
}

// HoldTitle is the menu label of a stability threshold.
func HoldTitle(secs float64) string {
	return fmt.Sprintf("%g s", secs)
}

// truncate trims text and cuts it on a rune boundary.
func truncate(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > maxTranscriptLabel {
		return string(runes[:maxTranscriptLabel-1]) + "…"
	}
	return string(runes)
}
