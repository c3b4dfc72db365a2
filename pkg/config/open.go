package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/adforge/pkg/artifact"
	"github.com/matzehuels/adforge/pkg/cache"
)

// OpenCache opens the configured cache backend. The caller closes it.
func (s Server) OpenCache(ctx context.Context) (cache.Cache, error) {
	switch s.Cache {
	case CacheNull:
		return cache.NewNullCache(), nil
	case CacheRedis:
		return cache.ConnectRedis(ctx, s.RedisURL, cache.DefaultRedisPrefix)
	default:
		dir := s.CacheDir
		if dir == "" {
			dir = cache.DefaultDir()
		}
		return cache.NewFileCache(dir)
	}
}

// OpenStore opens the configured artifact store. The returned close
// function releases its connection, if any.
func (s Server) OpenStore(ctx context.Context) (artifact.Store, func(context.Context) error, error) {
	opts := []artifact.Option{artifact.WithURLPrefix(strings.TrimRight(s.PublicURL, "/") + artifact.DefaultURLPrefix)}
	noop := func(context.Context) error { return nil }
	switch s.Store {
	case StoreFile:
		fs, err := artifact.NewFileStore(s.StoreDir, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("open artifact dir: %w", err)
		}
		return fs, noop, nil
	case StoreGridFS:
		g, err := artifact.ConnectGridFS(ctx, s.MongoURI, s.MongoDB, s.MongoBucket, opts...)
		if err != nil {
			return nil, nil, err
		}
		return g, g.Close, nil
	default:
		return artifact.NewMemory(opts...), noop, nil
	}
}
