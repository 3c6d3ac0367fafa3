package cli

import (
	"fmt"

	"github.com/secondlabor/laborhub/config"
)

func printUsage() {
	fmt.Println("laborhub - AI worker coordination service")
	fmt.Println("Usage:")
	fmt.Println("  laborhub serve")
	fmt.Println("  laborhub token authorize-url|exchange|refresh|set|clear")
	fmt.Println("  laborhub labor-types")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  LABORHUB_ADDR                  Listen address (default 127.0.0.1:8090)")
	fmt.Println("  LABORHUB_SECONDME_BASE_URL     Upstream platform base URL")
	fmt.Println("  LABORHUB_APP_ID                Platform app id for chat calls")
	fmt.Println("  LABORHUB_OAUTH_CLIENT_ID       OAuth client id")
	fmt.Println("  LABORHUB_OAUTH_CLIENT_SECRET   OAuth client secret")
	fmt.Println("  LABORHUB_OAUTH_REDIRECT_URI    OAuth redirect URI")
	fmt.Println("  LABORHUB_ACCESS_TOKEN          Seed access token")
	fmt.Println("  LABORHUB_REFRESH_TOKEN         Seed refresh token")
	fmt.Println("  LABORHUB_STORE_BACKEND         jsonfile (default), sqlite, or redis")
	fmt.Println("  LABORHUB_LABOR_CATALOG         Optional labor-type catalog YAML")
	fmt.Println("  LABORHUB_AUDIT_DB              Optional sqlite audit-event db path")
	fmt.Println("  LABORHUB_PROMPT_DIR            Optional prompt override directory")
}

func printLaborTypes() {
	cfg := config.FromEnv()
	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		fmt.Printf("labor catalog: %v\n", err)
		return
	}
	for _, entry := range catalog.Entries() {
		fmt.Printf("%-18s %s\n", entry.ID, entry.Name)
	}
}
