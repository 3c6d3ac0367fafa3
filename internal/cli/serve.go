package cli

import (
	"context"
	"errors"
	"log"

	"github.com/secondlabor/laborhub/config"
	"github.com/secondlabor/laborhub/credentials"
	"github.com/secondlabor/laborhub/gateway"
	"github.com/secondlabor/laborhub/httpapi"
	envcfg "github.com/secondlabor/laborhub/internal/config"
	"github.com/secondlabor/laborhub/oauth"
	"github.com/secondlabor/laborhub/observe"
	auditsqlite "github.com/secondlabor/laborhub/observe/store/sqlite"
	"github.com/secondlabor/laborhub/store"
	"github.com/secondlabor/laborhub/store/factory"
	"github.com/secondlabor/laborhub/task"
	"github.com/secondlabor/laborhub/worker"
)

func runServe(ctx context.Context) {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("labor catalog: %v", err)
	}

	creds := credentials.NewStore()
	if cfg.AccessToken != "" || cfg.RefreshToken != "" {
		creds.Seed(cfg.AccessToken, cfg.RefreshToken)
	}

	docStore, err := factory.FromEnv(ctx)
	if err != nil {
		log.Fatalf("document store: %v", err)
	}
	defer closeStore(docStore)

	sinks := []observe.Sink{observe.LogSink{}}
	audit, err := openAuditStore()
	if err != nil {
		log.Fatalf("audit store: %v", err)
	}
	if audit != nil {
		defer func() { _ = audit.Close() }()
		sinks = append(sinks, observe.SinkFunc(audit.SaveEvent))
	}
	async := observe.NewAsyncSink(observe.NewMultiSink(sinks...), 256)
	defer async.Close()

	gw, err := gateway.New(cfg.BaseURL,
		gateway.WithAppID(cfg.AppID),
		gateway.WithCredentials(creds),
		gateway.WithSink(async),
	)
	if err != nil {
		log.Fatalf("gateway: %v", err)
	}

	workers := worker.NewService(docStore, gw, catalog)
	engine := task.NewEngine(docStore, gw, gw, catalog, task.WithSink(async))
	oauthSvc := oauth.NewService(gw, creds, cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.OAuthRedirectURI)

	srvCfg := httpapi.Config{
		Addr:    cfg.Addr,
		Engine:  engine,
		Workers: workers,
		OAuth:   oauthSvc,
		Catalog: catalog,
		Sink:    async,
	}
	if audit != nil {
		srvCfg.Audit = audit
	}
	srv := httpapi.NewServer(srvCfg)
	log.Printf("laborhub listening on %s (platform %s)", cfg.Addr, cfg.BaseURL)
	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("server: %v", err)
	}
}

// openAuditStore returns nil when no audit db is configured.
func openAuditStore() (*auditsqlite.Store, error) {
	path := envcfg.Getenv("LABORHUB_AUDIT_DB", "")
	if path == "" {
		return nil, nil
	}
	return auditsqlite.New(path)
}

func closeStore(st store.Store) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		log.Printf("document store close failed: %v", err)
	}
}
