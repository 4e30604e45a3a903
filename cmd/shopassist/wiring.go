package main

import (
	"context"

	"github.com/PabloGalante/shopassist/internal/adapters/catalog"
	memstore "github.com/PabloGalante/shopassist/internal/adapters/storage/memory"
	"github.com/PabloGalante/shopassist/internal/app/conversation"
	"github.com/PabloGalante/shopassist/internal/config"
	"github.com/PabloGalante/shopassist/internal/domain"
	"github.com/PabloGalante/shopassist/internal/observability"
)

// catalogSource is the configured catalog plus, for file catalogs with
// watching enabled, the loop that keeps it fresh.
type catalogSource struct {
	provider domain.CatalogProvider
	watch    func(ctx context.Context) error
}

func buildCatalog(cfg *config.Config) (*catalogSource, error) {
	if cfg.CatalogPath == "" {
		observability.Logger().Info().Msg("using built-in sample catalog")
		return &catalogSource{provider: catalog.NewStatic(catalog.DefaultItems())}, nil
	}

	fp, err := catalog.NewFileProvider(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	observability.Logger().Info().
		Str("path", fp.Path()).
		Int("items", len(fp.Items())).
		Msg("loaded catalog file")

	src := &catalogSource{provider: fp}
	if cfg.WatchCatalog {
		src.watch = fp.Watch
	}
	return src, nil
}

func serviceOptions(cfg *config.Config) conversation.Options {
	opts := conversation.DefaultOptions()
	opts.ReplyDelay = cfg.ReplyDelay
	opts.CancelPendingOnReset = cfg.CancelPendingOnReset
	opts.FilterRead = cfg.FilterReadMode
	return opts
}

func newConversationService(cat domain.CatalogProvider, sched domain.Scheduler, cfg *config.Config) *conversation.Service {
	return conversation.NewService(
		cat,
		memstore.NewSessionStore(),
		memstore.NewMessageStore(),
		sched,
		serviceOptions(cfg),
	)
}
