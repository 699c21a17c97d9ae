// Package tray provides the system tray interface of the FitFlow exercise tracker.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/Kkkiiiirran/FitFlow/internal/exercise"
	"github.com/Kkkiiiirran/FitFlow/internal/rep"
)

// Item is one selectable exercise.
type Item struct {
	ID   string
	Name string
}

// Tray represents the system tray application.
type Tray struct {
	items      []Item
	onToggle   func(enabled bool)
	onSelect   func(id string) error
	onReset    func()
	onSettings func()
	onQuit     func()
	enabled    bool
	selected   string
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
	menuItems  map[string]*systray.MenuItem
}

// New creates a new Tray listing items with selected checked. Detection
// starts enabled.
func New(items []Item, selected string) *Tray {
	return &Tray{
		items:     items,
		enabled:   true,
		selected:  selected,
		menuItems: make(map[string]*systray.MenuItem),
	}
}

// ItemsFromProfiles lists profiles as tray items.
func ItemsFromProfiles(profiles []exercise.Profile) []Item {
	items := make([]Item, 0, len(profiles))
	for _, p := range profiles {
		items = append(items, Item{ID: p.ID, Name: p.Name})
	}
	return items
}

// OnToggle sets the callback function to be called when detection is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSelect sets the callback called when an exercise is picked. The check
// mark only moves when it returns nil.
func (t *Tray) OnSelect(fn func(id string) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSelect = fn
}

// OnReset sets the callback called when the counter reset item is clicked.
func (t *Tray) OnReset(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onReset = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray from outside the menu.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("FitFlow")
	systray.SetTooltip("FitFlow Exercise Tracker")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem("● Enabled", "Toggle detection")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem(t.nameLocked(t.selected), "Current exercise")
	t.menuStatus.Disable()
	menuReset := systray.AddMenuItem("Reset Counter", "Start counting from zero")
	systray.AddSeparator()

	menuExercise := systray.AddMenuItem("Exercise", "Select the tracked exercise")
	selectCh := make(chan string)
	for _, it := range t.items {
		item := menuExercise.AddSubMenuItem(it.Name, it.ID)
		if it.ID == t.selected {
			item.Check()
		}
		t.menuItems[it.ID] = item

		go func(id string, clicked <-chan struct{}) {
			for range clicked {
				selectCh <- id
			}
		}(it.ID, item.ClickedCh)
	}
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit FitFlow")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuReset.ClickedCh:
				t.handleReset()
			case id := <-selectCh:
				t.handleSelect(id)
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if enabled {
		t.menuToggle.SetTitle("● Enabled")
	} else {
		t.menuToggle.SetTitle("○ Disabled")
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleSelect(id string) {
	t.mu.RLock()
	callback := t.onSelect
	t.mu.RUnlock()

	if callback != nil {
		if err := callback(id); err != nil {
			return
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if prev, ok := t.menuItems[t.selected]; ok {
		prev.Uncheck()
	}
	if next, ok := t.menuItems[id]; ok {
		next.Check()
	}
	t.selected = id
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(t.nameLocked(id))
	}
	systray.SetTitle("FitFlow")
}

func (t *Tray) handleReset() {
	t.mu.RLock()
	callback := t.onReset
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetResult shows the latest result of exerciseID. Results for an exercise
// other than the selected one are ignored.
func (t *Tray) SetResult(exerciseID string, res rep.Result) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if exerciseID != t.selected || t.menuStatus == nil {
		return
	}
	t.menuStatus.SetTitle(StatusText(t.nameLocked(exerciseID), res))
	systray.SetTitle(Title(res))
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Selected returns the checked exercise.
func (t *Tray) Selected() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.selected
}

func (t *Tray) nameLocked(id string) string {
	for _, it := range t.items {
		if it.ID == id {
			return it.Name
		}
	}
	return id
}

// Title is the short tray title for a result.
func Title(res rep.Result) string {
	if res.Kind == exercise.KindHold {
		return fmt.Sprintf("%ds", res.Seconds)
	}
	return fmt.Sprintf("%d", res.Count)
}

// StatusText describes a result in the status menu item.
func StatusText(name string, res rep.Result) string {
	if !res.Visible {
		return fmt.Sprintf("%s: not visible", name)
	}
	if res.Kind == exercise.KindHold {
		return fmt.Sprintf("%s: %s, %ds", name, res.Stage, res.Seconds)
	}
	unit := "reps"
	if res.Count == 1 {
		unit = "rep"
	}
	return fmt.Sprintf("%s: %s, %d %s", name, res.Stage, res.Count, unit)
}
