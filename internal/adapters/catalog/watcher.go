package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/PabloGalante/shopassist/internal/domain"
	"github.com/PabloGalante/shopassist/internal/observability"
)

// FileProvider serves the items of a YAML catalog file. Reload swaps the
// whole item slice, so messages holding earlier snapshots are unaffected.
type FileProvider struct {
	path  string
	items atomic.Pointer[[]domain.Item]

	// onReload is called after every successful reload (tests hook in here).
	onReload func(n int)
}

// NewFileProvider loads path once and fails if the file is missing or invalid.
func NewFileProvider(path string) (*FileProvider, error) {
	p := &FileProvider{path: path}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *FileProvider) Items() []domain.Item {
	return *p.items.Load()
}

func (p *FileProvider) Path() string {
	return p.path
}

// Reload re-reads the file. On error the previous items stay active.
func (p *FileProvider) Reload() error {
	items, err := LoadFile(p.path)
	if err != nil {
		observability.CatalogReloads.WithLabelValues("error").Inc()
		return err
	}
	p.items.Store(&items)
	observability.CatalogReloads.WithLabelValues("ok").Inc()
	observability.CatalogItems.Set(float64(len(items)))
	if p.onReload != nil {
		p.onReload(len(items))
	}
	return nil
}

// Watch reloads the catalog whenever its file is written, created or
// renamed into place, until ctx is done. The parent directory is watched
// so that editors replacing the file atomically are picked up.
func (p *FileProvider) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating catalog watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(p.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	log := observability.WithFields("component", "catalog_watcher", "path", p.path)
	log.Info().Msg("watching catalog file")

	target := filepath.Clean(p.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := p.Reload(); err != nil {
				log.Warn().Err(err).Msg("catalog reload failed, keeping previous items")
				continue
			}
			log.Info().Int("items", len(p.Items())).Msg("catalog reloaded")
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("catalog watcher error")
		}
	}
}
