package config

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 200 * time.Millisecond

// Holder publishes the current configuration snapshot to concurrent readers.
// Readers always see a complete Config; a failed reload never replaces a
// good snapshot.
type Holder struct {
	value atomic.Pointer[Config]
}

func NewHolder(cfg Config) *Holder {
	h := &Holder{}
	h.value.Store(&cfg)
	return h
}

func (h *Holder) Get() Config {
	return *h.value.Load()
}

func (h *Holder) Set(cfg Config) {
	h.value.Store(&cfg)
}

// Watch reloads the config file into the holder whenever it changes, until
// ctx is cancelled. Reload failures keep the previous snapshot.
//
// Address and registry-path fields take effect only on restart; fetch and
// verification settings apply to subsequent requests.
func Watch(ctx context.Context, path string, h *Holder, log zerolog.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}

	base := filepath.Base(path)
	timer := time.NewTimer(reloadDebounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) &&
				!ev.Op.Has(fsnotify.Rename) && !ev.Op.Has(fsnotify.Remove) {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(reloadDebounce)
		case <-timer.C:
			cfg, err := Load(path)
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("config reload failed, keeping previous snapshot")
				continue
			}
			prev := h.Get()
			h.Set(cfg)
			if cfg.RegistryPath != prev.RegistryPath {
				log.Warn().Str("old", prev.RegistryPath).Str("new", cfg.RegistryPath).
					Msg("registry_path changed; restart to apply")
			}
			log.Info().Str("path", path).Str("gateway", cfg.Gateway).Str("mode", cfg.Mode).
				Msg("config reloaded")
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(werr).Msg("config watcher error")
		}
	}
}
