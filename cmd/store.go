package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fincase/bizcase-cli/internal/analyze"
	"github.com/fincase/bizcase-cli/internal/calc"
	"github.com/fincase/bizcase-cli/internal/engine"
	"github.com/fincase/bizcase-cli/internal/store"
	"github.com/fincase/bizcase-cli/pkg/anthropic"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.Path
		if dsn == "" {
			dsn = "bizcase.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initEngine opens the store and wires the engine. The LLM analyzer is
// attached only when an API key is configured and the caller wants it.
func initEngine(ctx context.Context, withLLM bool) (*engine.Engine, store.Store, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, nil, eris.Wrap(err, "migrate store")
	}

	var an *analyze.Analyzer
	if withLLM && cfg.Anthropic.Key != "" {
		client := anthropic.NewClient(cfg.Anthropic.Key, cfg.Anthropic.RequestsPerSec)
		an = analyze.New(client, cfg.Anthropic.Model, int64(cfg.Anthropic.MaxTokens))
	}

	c := calc.New(cfg.Engine.BaseYear, cfg.Engine.HorizonYears, cfg.Engine.OverflowCeiling)
	return engine.New(st, c, an), st, nil
}
