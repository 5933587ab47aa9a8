// Command comptoirctl is the operator CLI for the comptoir server: it renders
// the marketing plan, previews prompts, lists access requests and probes the
// gRPC health endpoint.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds a fresh command tree so tests never share flag state.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "comptoirctl",
		Short:         "Operate a comptoir portfolio chat server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newPlanCmd(),
		newPromptCmd(),
		newPersonasCmd(),
		newLeadsCmd(),
		newAskCmd(),
		newHealthCmd(),
	)
	return root
}
