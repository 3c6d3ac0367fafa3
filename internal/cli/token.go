package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/secondlabor/laborhub/config"
	"github.com/secondlabor/laborhub/credentials"
	"github.com/secondlabor/laborhub/gateway"
	"github.com/secondlabor/laborhub/oauth"
)

// runTokenCLI exercises the token lifecycle without a running server:
// authorize-url, exchange, refresh, set, clear.
func runTokenCLI(ctx context.Context, args []string) {
	if len(args) < 1 {
		printTokenUsage()
		return
	}

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("configuration error: %v", err)
	}
	creds := credentials.NewStore()
	if cfg.AccessToken != "" || cfg.RefreshToken != "" {
		creds.Seed(cfg.AccessToken, cfg.RefreshToken)
	}
	gw, err := gateway.New(cfg.BaseURL, gateway.WithAppID(cfg.AppID), gateway.WithCredentials(creds))
	if err != nil {
		log.Fatalf("gateway: %v", err)
	}
	svc := oauth.NewService(gw, creds, cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.OAuthRedirectURI)

	switch strings.TrimSpace(args[0]) {
	case "authorize-url":
		authorizeURL, state, err := svc.AuthorizeURL("", "")
		if err != nil {
			log.Fatalf("authorize-url: %v", err)
		}
		printJSON(map[string]string{"authorizeUrl": authorizeURL, "state": state})
	case "exchange":
		if len(args) < 2 {
			log.Fatalf("usage: laborhub token exchange <code>")
		}
		set, err := svc.ExchangeCode(ctx, args[1], "", "", "")
		if err != nil {
			log.Fatalf("exchange: %v", err)
		}
		printJSON(set)
	case "refresh":
		refreshToken := ""
		if len(args) > 1 {
			refreshToken = args[1]
		}
		set, err := svc.Refresh(ctx, refreshToken)
		if err != nil {
			log.Fatalf("refresh: %v", err)
		}
		printJSON(set)
	case "set":
		if len(args) < 2 {
			log.Fatalf("usage: laborhub token set <access-token> [refresh-token] [expires-in]")
		}
		set := credentials.Set{AccessToken: args[1]}
		if len(args) > 2 {
			set.RefreshToken = args[2]
		}
		if len(args) > 3 {
			expiresIn, err := strconv.Atoi(args[3])
			if err != nil {
				log.Fatalf("expires-in must be an integer: %v", err)
			}
			set.ExpiresIn = expiresIn
		}
		stored, err := svc.SetManual(set)
		if err != nil {
			log.Fatalf("set: %v", err)
		}
		printJSON(stored)
	case "clear":
		printJSON(svc.ClearManual())
	default:
		printTokenUsage()
	}
}

func printTokenUsage() {
	fmt.Println("Usage:")
	fmt.Println("  laborhub token authorize-url")
	fmt.Println("  laborhub token exchange <code>")
	fmt.Println("  laborhub token refresh [refresh-token]")
	fmt.Println("  laborhub token set <access-token> [refresh-token] [expires-in]")
	fmt.Println("  laborhub token clear")
}

func printJSON(payload any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
