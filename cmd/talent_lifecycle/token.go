package main

import (
	"fmt"

	"github.com/jonathan/talent-lifecycle/internal/config"
	"github.com/jonathan/talent-lifecycle/internal/server"
	"github.com/spf13/cobra"
)

var tokenActor actorFlags

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for an actor",
	Long: `Sign a JWT carrying the given actor's role, organization and jurisdiction
with JWT_SECRET. Useful for local testing and service accounts.`,
	RunE: runToken,
}

func init() {
	tokenActor.register(tokenCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	actor, err := tokenActor.actor()
	if err != nil {
		return err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(actor)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
