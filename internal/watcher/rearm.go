package watcher

import (
	"github.com/raoulx24/irotate/internal/logging"
)

// subscribeTarget watches the current target file and records its identity.
func (w *Watcher) subscribeTarget() error {
	info, err := w.fs.Stat(w.target)
	if err != nil {
		return err
	}
	if err := w.src.Add(w.target); err != nil {
		return err
	}
	w.targetInfo = info
	w.targetWatched = true
	return nil
}

// rearmTarget moves the subscription to whatever file now lives at the target
// path and reports whether it had to. It is a no-op when the subscription
// already follows that file.
func (w *Watcher) rearmTarget() bool {
	if w.targetWatched {
		info, err := w.fs.Stat(w.target)
		if err == nil && info.Inode != 0 && info.SameFile(w.targetInfo) {
			return false
		}
	}

	w.dropTarget()
	if err := w.subscribeTarget(); err != nil {
		w.log.Error("error", logging.KeyKind, "notify", logging.KeyPath, w.target, logging.KeyError, err)
		return true
	}
	w.log.Debug("target watch re-armed", logging.KeyPath, w.target, "inode", w.targetInfo.Inode)
	return true
}

func (w *Watcher) dropTarget() {
	if err := w.src.Remove(w.target); err != nil {
		w.log.Debug("removing target watch", logging.KeyError, err)
	}
	w.targetWatched = false
}

// recoverSubscriptions re-subscribes paths whose watch was lost, as soon as
// the file is back.
func (w *Watcher) recoverSubscriptions() {
	if !w.targetWatched && w.exists(w.target) {
		if err := w.subscribeTarget(); err != nil {
			w.log.Error("error", logging.KeyKind, "notify", logging.KeyPath, w.target, logging.KeyError, err)
		}
	}

	if !w.settingsWatched && w.exists(w.settingsPath) {
		if err := w.src.Add(w.settingsPath); err != nil {
			w.log.Error("error", logging.KeyKind, "notify", logging.KeyPath, w.settingsPath, logging.KeyError, err)
			return
		}
		w.settingsWatched = true
	}
}

// exists treats a failed stat as absent and logs it.
func (w *Watcher) exists(path string) bool {
	ok, err := w.fs.Exists(path)
	if err != nil {
		w.log.Error("error", logging.KeyKind, "notify", logging.KeyPath, path, logging.KeyError, err)
		return false
	}
	return ok
}

// onSettingsEvent follows an atomically replaced settings file, then reloads.
func (w *Watcher) onSettingsEvent(ev Event) {
	if ev.Op == Replaced {
		if err := w.src.Remove(w.settingsPath); err != nil {
			w.log.Debug("removing settings watch", logging.KeyError, err)
		}
		w.settingsWatched = false
		w.recoverSubscriptions()
		if !w.settingsWatched {
			w.log.Warn("settings file gone, keeping current settings", logging.KeyPath, w.settingsPath)
			return
		}
	}
	w.reloadSettings()
}
