// Package app wires the catalog components from configuration.
package app

import (
	"context"
	"fmt"

	"github.com/raine/kawthar-catalog/config"
	"github.com/raine/kawthar-catalog/internal/gallery"
	"github.com/raine/kawthar-catalog/internal/images"
	"github.com/raine/kawthar-catalog/internal/loader"
	"github.com/raine/kawthar-catalog/internal/source"
	"github.com/raine/kawthar-catalog/internal/storage"
	"github.com/raine/kawthar-catalog/internal/translate"
	"github.com/rs/zerolog/log"
)

// App holds the long-lived components shared by the binaries.
type App struct {
	Repository *loader.Repository
	Gallery    *gallery.Loader
	// Store is nil when no database is configured.
	Store *storage.Store
}

// New builds the components described by cfg. The catalog is not loaded.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{}

	if cfg.DBDSN != "" {
		store, err := storage.Open(ctx, cfg.DBDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize store: %w", err)
		}
		a.Store = store
		log.Info().Msg("catalog store initialized")
	}

	var enricher loader.Enricher
	if cfg.Translate {
		if cfg.GeminiAPIKey == "" {
			a.Close()
			return nil, fmt.Errorf("CATALOG_TRANSLATE requires GEMINI_API_KEY")
		}
		gemini, err := translate.NewGeminiTranslator(ctx, cfg.GeminiAPIKey)
		if err != nil {
			a.Close()
			return nil, err
		}
		var translator translate.Translator = gemini
		if a.Store != nil {
			translator = translate.NewCachedTranslator(gemini, a.Store)
			log.Info().Msg("translation caching enabled")
		}
		enricher = translate.NewEnricher(translator)
	}

	fetcher := source.New(cfg.SourceRoot())
	log.Info().Str("root", cfg.SourceRoot()).Msg("catalog source")

	a.Repository = loader.New(loader.Opts{
		Fetcher:  fetcher,
		Location: cfg.WarehousePath,
		Enricher: enricher,
	})

	warner := images.NewWarner()
	var prober *images.Prober
	if cfg.ProbeImages {
		prober = images.NewProber(cfg.PublicDir)
	}
	a.Gallery = gallery.NewLoader(fetcher, images.NewIndexStore(fetcher, warner), prober, warner)

	return a, nil
}

func (a *App) Close() {
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close store")
		}
	}
}
