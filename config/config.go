// Package config assembles process configuration from the environment
// and the on-disk labor-type catalog.
package config

import (
	"fmt"
	"strings"

	envcfg "github.com/secondlabor/laborhub/internal/config"
)

// Config is everything the serve command needs to wire the process.
// Fields come from LABORHUB_* environment variables; a .env file is
// loaded by the CLI before this runs.
type Config struct {
	Addr string

	// Upstream platform.
	BaseURL string
	AppID   string

	// OAuth client registration.
	OAuthClientID     string
	OAuthClientSecret string
	OAuthRedirectURI  string

	// Seed tokens for the process-wide credential store.
	AccessToken  string
	RefreshToken string

	// Document store selection, consumed by store/factory.
	CatalogPath string
}

func FromEnv() Config {
	return Config{
		Addr:              envcfg.Getenv("LABORHUB_ADDR", "127.0.0.1:8090"),
		BaseURL:           envcfg.Getenv("LABORHUB_SECONDME_BASE_URL", "https://app.secondme.io"),
		AppID:             envcfg.Getenv("LABORHUB_APP_ID", ""),
		OAuthClientID:     envcfg.Getenv("LABORHUB_OAUTH_CLIENT_ID", ""),
		OAuthClientSecret: envcfg.Getenv("LABORHUB_OAUTH_CLIENT_SECRET", ""),
		OAuthRedirectURI:  envcfg.Getenv("LABORHUB_OAUTH_REDIRECT_URI", ""),
		AccessToken:       envcfg.Getenv("LABORHUB_ACCESS_TOKEN", ""),
		RefreshToken:      envcfg.Getenv("LABORHUB_REFRESH_TOKEN", ""),
		CatalogPath:       envcfg.Getenv("LABORHUB_LABOR_CATALOG", ""),
	}
}

// Validate checks the fields every deployment needs. OAuth client
// settings are validated lazily by the oauth service because manual
// token flows work without them.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("LABORHUB_SECONDME_BASE_URL is required")
	}
	return nil
}
