package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// reloadDebounce coalesces the event bursts editors and atomic-rename
// writers produce into one reload.
const reloadDebounce = 200 * time.Millisecond

// fileJSON is the on-disk registry format:
//
//	{
//	  "records": {
//	    "example.com": {
//	      "token_low":  "0x0",
//	      "token_high": "0x1",
//	      "uri":        "ipfs://...",
//	      "owner":      "0xabc..."
//	    }
//	  }
//	}
type fileJSON struct {
	Records map[string]Record `json:"records"`
}

// LoadRecords reads and validates a registry file.
func LoadRecords(path string) (Static, error) {
	if path == "" {
		return nil, errors.New("registry: empty file path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f fileJSON
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("registry: %s: %w", path, err)
	}
	if len(f.Records) == 0 {
		return nil, fmt.Errorf("registry: %s: no records", path)
	}
	for name, rec := range f.Records {
		if name == "" {
			return nil, fmt.Errorf("registry: %s: empty domain name", path)
		}
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("registry: %s: record %q: %w", path, name, err)
		}
	}
	return Static(f.Records), nil
}

// FileSource is a Source backed by a JSON registry file.
//
// Lookups are served from an atomically swapped snapshot, so readers never
// block on a reload and never observe a half-applied file. A failed reload
// keeps the last good snapshot.
type FileSource struct {
	path    string
	log     zerolog.Logger
	records atomic.Pointer[Static]
}

var _ Source = (*FileSource)(nil)

// OpenFile loads path and returns a FileSource serving its records.
func OpenFile(path string, log zerolog.Logger) (*FileSource, error) {
	f := &FileSource{path: path, log: log}
	recs, err := LoadRecords(path)
	if err != nil {
		return nil, err
	}
	f.records.Store(&recs)
	return f, nil
}

func (f *FileSource) Lookup(ctx context.Context, root string) (Record, error) {
	return (*f.records.Load()).Lookup(ctx, root)
}

// Len reports the number of records in the current snapshot.
func (f *FileSource) Len() int {
	return len(*f.records.Load())
}

// Path returns the backing file path.
func (f *FileSource) Path() string { return f.path }

// Reload re-reads the backing file and swaps the snapshot in. On failure
// the previous snapshot stays live and the error is returned.
func (f *FileSource) Reload() error {
	recs, err := LoadRecords(f.path)
	if err != nil {
		return err
	}
	f.records.Store(&recs)
	return nil
}

// Watch reloads the source whenever the backing file changes, until ctx is
// done. The parent directory is watched rather than the file itself so
// atomic rename-into-place updates are seen.
func (f *FileSource) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(f.path)); err != nil {
		return err
	}

	base := filepath.Base(f.path)
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
			if err := f.Reload(); err != nil {
				f.log.Warn().Err(err).Str("path", f.path).Msg("registry reload failed, keeping previous snapshot")
				continue
			}
			f.log.Info().Str("path", f.path).Int("records", f.Len()).Msg("registry reloaded")
		case werr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			f.log.Warn().Err(werr).Msg("registry watcher error")
		}
	}
}
