// Package factory selects a document store backend from environment
// configuration.
package factory

import (
	"context"
	"fmt"
	"strings"

	envcfg "github.com/secondlabor/laborhub/internal/config"
	"github.com/secondlabor/laborhub/store"
	"github.com/secondlabor/laborhub/store/jsonfile"
	redisstore "github.com/secondlabor/laborhub/store/redis"
	sqlitestore "github.com/secondlabor/laborhub/store/sqlite"
)

func FromEnv(ctx context.Context) (store.Store, error) {
	_ = ctx

	backend := strings.ToLower(envcfg.Getenv("LABORHUB_STORE_BACKEND", "jsonfile"))
	switch backend {
	case "jsonfile":
		path := envcfg.Getenv("LABORHUB_DATA_PATH", "./.laborhub/collection.json")
		return jsonfile.New(path)

	case "sqlite":
		path := envcfg.Getenv("LABORHUB_SQLITE_PATH", "./.laborhub/collection.db")
		return sqlitestore.New(path)

	case "redis":
		addr := envcfg.Getenv("LABORHUB_REDIS_ADDR", "127.0.0.1:6379")
		opts := []redisstore.Option{
			redisstore.WithPassword(envcfg.Getenv("LABORHUB_REDIS_PASSWORD", "")),
			redisstore.WithDB(envcfg.ParseIntEnv("LABORHUB_REDIS_DB", 0)),
		}
		return redisstore.New(addr, opts...)

	default:
		return nil, fmt.Errorf("unsupported LABORHUB_STORE_BACKEND %q (use jsonfile, sqlite, or redis)", backend)
	}
}
