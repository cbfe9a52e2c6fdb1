package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
)

const defaultServer = "http://127.0.0.1:8640"

func newRootCommand() *cobra.Command {
	var serverFlag string

	rootCmd := &cobra.Command{
		Use:           "framecast",
		Short:         "Framecast rendering service CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&serverFlag, "server", "s", "", "Base URL of the framecastd API")

	client := func() *apiClient {
		return newAPIClient(resolveServer(serverFlag))
	}

	rootCmd.AddCommand(newSubmitCommand(client))
	rootCmd.AddCommand(newStatusCommand(client))
	rootCmd.AddCommand(newJobsCommand(client))
	rootCmd.AddCommand(newFetchCommand(client))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// resolveServer picks the API base URL: flag, then FRAMECAST_SERVER, then
// the default local bind.
func resolveServer(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv("FRAMECAST_SERVER")); v != "" {
		return strings.TrimRight(v, "/")
	}
	return defaultServer
}
