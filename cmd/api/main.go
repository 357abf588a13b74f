package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/lifelog/core/cmd/api/commands"
)

// @title LifeLog API
// @version 1.0
// @description Personal journaling service with a dual-mode client and an AI-assistant tool surface

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a JWT access token.

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and an ll_ API key.

func main() {
	rootCmd := &cobra.Command{
		Use:   "lifelog",
		Short: "LifeLog API Server",
		Long:  `LifeLog is a personal journaling service: daily entries with todos, notes and links, synced from a local trial mode and queryable by AI assistants over an API-key surface.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewAPIKeyCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
