// Package cli implements the laborhub command surface.
package cli

import (
	"context"
	"strings"

	"github.com/joho/godotenv"

	envcfg "github.com/secondlabor/laborhub/internal/config"
	"github.com/secondlabor/laborhub/prompt"
)

func Run(ctx context.Context, args []string) {
	_ = godotenv.Load()
	prompt.RegisterBuiltins()
	_, _ = prompt.LoadDir(envcfg.Getenv("LABORHUB_PROMPT_DIR", "./.laborhub/prompts"))

	if len(args) < 1 {
		runServe(ctx)
		return
	}

	switch strings.TrimSpace(args[0]) {
	case "serve":
		runServe(ctx)
	case "token":
		runTokenCLI(ctx, args[1:])
	case "labor-types":
		printLaborTypes()
	case "help", "-h", "--help":
		printUsage()
	default:
		printUsage()
	}
}
