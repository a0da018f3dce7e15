package cli

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/ppiankov/medfactors/internal/cache"
	"github.com/ppiankov/medfactors/internal/catalog"
	"github.com/ppiankov/medfactors/internal/engine"
	"github.com/ppiankov/medfactors/internal/fetch"
	"github.com/ppiankov/medfactors/internal/logging"
	"github.com/ppiankov/medfactors/internal/model"
)

// app is what every engine-backed command needs
type app struct {
	cfg    *model.Config
	logger logging.Logger
	loaded *catalog.LoadResult
	engine *engine.Engine
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	loaded, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	eng := engine.New(loaded.Catalog,
		engine.WithContextWindow(cfg.Engine.ContextWindow),
		engine.WithBaseSpecialties(cfg.Engine.BaseSpecialties),
		engine.WithLogger(logger.Named("engine")),
	)
	return &app{cfg: cfg, logger: logger, loaded: loaded, engine: eng}, nil
}

func loadCatalog(ctx context.Context, cfg *model.Config, logger logging.Logger) (*catalog.LoadResult, error) {
	format, err := catalog.ParseFormat(cfg.Catalog.Format)
	if err != nil {
		return nil, err
	}

	var c cache.Cache = cache.Nop{}
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
	}

	// A zero ttl lets each layer apply its own configured expiry.
	loader := catalog.NewLoader(c, 0)

	var loaded *catalog.LoadResult
	if fetch.IsRemote(cfg.Catalog.Path) {
		loaded, err = loadRemote(ctx, loader, cfg, format, logger)
	} else {
		loaded, err = loader.Load(cfg.Catalog.Path, format)
	}
	if err != nil {
		return nil, err
	}
	if loaded.CacheErr != nil {
		logger.Warn("catalog snapshot not cached", logging.Err(loaded.CacheErr))
	}
	logger.Debug("catalog loaded",
		logging.String("source", loaded.Source),
		logging.String("format", string(loaded.Format)),
		logging.Int("rules", loaded.Catalog.Len()),
		logging.Int("dropped", loaded.Stats.DroppedTotal()),
		logging.Bool("from_cache", loaded.FromCache),
	)
	return loaded, nil
}

// loadRemote downloads a catalog source. Without an explicit format the
// URL path extension decides, then the content type, then sniffing.
func loadRemote(ctx context.Context, loader *catalog.Loader, cfg *model.Config, format catalog.Format, logger logging.Logger) (*catalog.LoadResult, error) {
	f := fetch.NewFetcher(fetch.Options{
		Timeout:       cfg.Fetch.Timeout,
		UserAgent:     cfg.Fetch.UserAgent,
		MaxBytes:      cfg.Fetch.MaxBytes,
		RespectRobots: cfg.Fetch.RespectRobots,
		HTTPProxy:     cfg.Fetch.HTTPProxy,
		HTTPSProxy:    cfg.Fetch.HTTPSProxy,
	})

	res, err := f.FetchWithRetry(ctx, cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	logger.Debug("catalog fetched",
		logging.String("url", res.FinalURL),
		logging.Int("bytes", len(res.Body)),
		logging.String("content_type", res.ContentType),
	)

	if format == catalog.FormatAuto {
		format = remoteFormat(res)
	}
	return loader.LoadBytes(cfg.Catalog.Path, res.Body, format)
}

func remoteFormat(res *fetch.Result) catalog.Format {
	name := ""
	if u, err := url.Parse(res.FinalURL); err == nil {
		name = path.Base(u.Path)
	}
	if ext := path.Ext(name); ext != "" {
		return catalog.DetectFormat(name, res.Body)
	}
	switch ct := res.ContentType; {
	case strings.Contains(ct, "html"):
		return catalog.FormatHTML
	case strings.Contains(ct, "json"):
		return catalog.FormatJSON
	case strings.Contains(ct, "yaml"):
		return catalog.FormatYAML
	}
	return catalog.DetectFormat("", res.Body)
}

func (a *app) catalogInfo() model.CatalogInfo {
	return model.CatalogInfo{
		Source:    a.loaded.Source,
		Rules:     a.loaded.Catalog.Len(),
		FromCache: a.loaded.FromCache,
	}
}
