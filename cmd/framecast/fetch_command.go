package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newFetchCommand(client func() *apiClient) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "fetch <job-id>",
		Short: "Download a finished artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fileName := args[0] + ".mp4"
			target := outputPath
			if target == "" {
				target = fileName
			}

			f, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("create %s: %w", target, err)
			}
			defer f.Close()

			if err := client().Fetch(fileName, f); err != nil {
				os.Remove(target)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination path (defaults to <job-id>.mp4)")
	return cmd
}
