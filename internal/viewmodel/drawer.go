package viewmodel

import "jobdeck/internal/models"

// DrawerState is the transient per-session UI state of the jobs drawer:
// which groups are collapsed and which job's menu is open. It belongs to
// one viewing session and resets to defaults whenever the drawer closes.
type DrawerState struct {
	collapsed map[models.Status]bool
	openMenu  string
}

func NewDrawerState() *DrawerState {
	return &DrawerState{collapsed: make(map[models.Status]bool)}
}

// ToggleGroup flips the collapsed state of a group.
func (d *DrawerState) ToggleGroup(status models.Status) {
	d.collapsed[status] = !d.collapsed[status]
}

// Collapsed reports whether a group is currently collapsed. Groups start
// expanded.
func (d *DrawerState) Collapsed(status models.Status) bool {
	return d.collapsed[status]
}

// OpenMenu records the display key of the job whose action menu is open.
// An empty key closes the menu.
func (d *DrawerState) OpenMenu(displayKey string) {
	d.openMenu = displayKey
}

func (d *DrawerState) MenuOpenFor() string {
	return d.openMenu
}

// Reset returns the drawer to its default state. Called when the drawer
// closes so a reopened drawer never inherits stale UI state.
func (d *DrawerState) Reset() {
	d.collapsed = make(map[models.Status]bool)
	d.openMenu = ""
}
