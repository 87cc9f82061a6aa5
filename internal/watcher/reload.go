package watcher

import (
	"github.com/raoulx24/irotate/internal/logging"
)

// RequestReload asks the loop to re-read the settings file at the start of
// its next select. Safe to call from any goroutine; extra requests coalesce.
func (w *Watcher) RequestReload() {
	select {
	case w.reload <- struct{}{}:
	default:
	}
}

// reloadSettings replaces the settings wholesale. A bad file leaves the
// previous settings in force.
func (w *Watcher) reloadSettings() {
	prev := w.store.Get()
	next, err := w.store.Reload()
	if err != nil {
		w.log.Error("error", logging.KeyKind, "settings_reload", logging.KeyPath, w.settingsPath, logging.KeyError, err)
		return
	}
	w.log.Info("settings reloaded",
		"previous", prev.String(),
		"current", next.String(),
		"sleep", next.SleepInterval.String(),
		"threshold", next.Threshold(),
	)
}
