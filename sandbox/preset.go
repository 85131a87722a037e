package sandbox

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"material-sandbox/core"
)

// SavePreset writes t to path as TOML.
func SavePreset(path string, t Tunables) error {
	data, err := toml.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}

// LoadPreset reads the preset at path over t. Keys missing from the file
// keep their current value; unknown keys are an error and leave t untouched.
func LoadPreset(path string, t *Tunables) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read preset: %w", err)
	}
	return decodePreset(data, t)
}

func decodePreset(data []byte, t *Tunables) error {
	next := *t
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&next); err != nil {
		return fmt.Errorf("decode preset: %w", err)
	}
	*t = next
	return nil
}

// PresetWatcher reports changes to a preset file. The file's directory is
// watched so editors that replace the file on save are still seen.
type PresetWatcher struct {
	w       *fsnotify.Watcher
	name    string
	changed chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	log     *zap.Logger
}

// WatchPreset starts watching path.
func WatchPreset(path string, log *zap.Logger) (*PresetWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch preset: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, fmt.Errorf("watch preset: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch preset %q: %w", path, err)
	}

	pw := &PresetWatcher{
		w:       w,
		name:    abs,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     core.OrNop(log),
	}
	pw.wg.Add(1)
	go pw.loop()
	return pw, nil
}

func (pw *PresetWatcher) loop() {
	defer pw.wg.Done()
	for {
		select {
		case <-pw.done:
			return
		case ev, ok := <-pw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != pw.name {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			pw.log.Debug("preset changed", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))
			select {
			case pw.changed <- struct{}{}:
			default:
			}
		case err, ok := <-pw.w.Errors:
			if !ok {
				return
			}
			pw.log.Warn("preset watcher", zap.Error(err))
		}
	}
}

// Changed receives a value after the file changes. Bursts of events are
// coalesced into one.
func (pw *PresetWatcher) Changed() <-chan struct{} { return pw.changed }

// Close stops the watcher and waits for its goroutine.
func (pw *PresetWatcher) Close() error {
	close(pw.done)
	err := pw.w.Close()
	pw.wg.Wait()
	return err
}
