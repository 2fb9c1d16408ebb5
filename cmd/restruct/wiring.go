package main

import (
	"restruct/internal/batch"
	"restruct/internal/config"
	"restruct/internal/index"
	"restruct/internal/move"
	"restruct/internal/resolve"
	"restruct/internal/storage"
)

// loadConfig resolves settings and applies the persistent flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if flagRoot != "" {
		cfg.Root = flagRoot
	}
	if flagResolver != "" {
		cfg.Resolver = flagResolver
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func engineOptions(cfg config.Config) move.Options {
	var resolver resolve.Resolver = resolve.Heuristic{}
	if cfg.Resolver == "table" {
		resolver = resolve.Table{}
	}
	return move.Options{InjectFields: cfg.InjectFields, Resolver: resolver}
}

// newOrchestrator builds a batch runner over the configured root. CLI runs
// commit once at batch end; reports go through notify as they happen.
func newOrchestrator(cfg config.Config, notify func(batch.Report)) (*batch.Orchestrator, error) {
	store, err := storage.New(cfg.Root)
	if err != nil {
		return nil, err
	}
	cache, err := index.NewCache(index.Config{
		MaxProjects: cfg.MaxProjects,
		MaxParsed:   cfg.MaxParsed,
		ParseTTL:    cfg.ParseTTL,
	})
	if err != nil {
		return nil, err
	}
	return &batch.Orchestrator{
		Store:  store,
		Cache:  cache,
		Opts:   engineOptions(cfg),
		Notify: notify,
	}, nil
}
