package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/canvas/internal/component"
	"github.com/roach88/canvas/internal/config"
	"github.com/roach88/canvas/internal/library"
	"github.com/roach88/canvas/internal/model"
	"github.com/roach88/canvas/internal/pagestore"
)

func newRegistry(logger *slog.Logger) *component.Registry {
	return component.NewRegistry(model.UUIDv7Generator{}, component.WithLogger(logger))
}

// loadRegistry builds a component registry from the page store's saved
// components, then the CUE library directory. Library components replace
// stored ones with the same id.
func loadRegistry(ctx context.Context, cfg config.Config, logger *slog.Logger) (*component.Registry, error) {
	reg := newRegistry(logger)

	if cfg.Database != "" {
		st, err := pagestore.Open(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open page store: %w", err)
		}
		defer st.Close()
		if err := loadStored(ctx, reg, st); err != nil {
			return nil, err
		}
		logger.Debug("components loaded from store", "count", reg.Len())
	}

	if cfg.LibraryDir != "" {
		compiled, err := library.LoadDir(cfg.LibraryDir)
		if err != nil {
			return nil, err
		}
		if err := loadAll(reg, compiled, "library"); err != nil {
			return nil, err
		}
		logger.Debug("components loaded from library", "dir", cfg.LibraryDir, "count", len(compiled))
	}
	return reg, nil
}

// loadStored loads every component saved in st into reg.
func loadStored(ctx context.Context, reg *component.Registry, st *pagestore.Store) error {
	stored, err := st.LoadComponents(ctx)
	if err != nil {
		return err
	}
	return loadAll(reg, stored, "stored")
}

func loadAll(reg *component.Registry, components []*model.Component, source string) error {
	for _, c := range components {
		if err := reg.Load(c); err != nil {
			return fmt.Errorf("%s component %s: %w", source, c.ID, err)
		}
	}
	return nil
}
