package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"framecast/internal/jobstore"
)

func newStatusCommand(client func() *apiClient) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status <job-id>",
		Short: "Show the status of a rendering job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := client().Status(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoded, err := json.MarshalIndent(doc, "", "  ")
				if err != nil {
					return fmt.Errorf("encode status: %w", err)
				}
				fmt.Fprintln(out, string(encoded))
				return nil
			}

			fmt.Fprintf(out, "Job:      %s\n", doc.JobID)
			fmt.Fprintf(out, "Status:   %s\n", doc.Status)
			if doc.Progress != nil {
				fmt.Fprintf(out, "Progress: %d%%\n", *doc.Progress)
			}
			if doc.Error != "" {
				fmt.Fprintf(out, "Error:    %s\n", doc.Error)
			}
			if doc.VideoURL != "" {
				fmt.Fprintf(out, "Video:    %s\n", doc.VideoURL)
			}
			if doc.Status == jobstore.StatusNotFound {
				return fmt.Errorf("job %s not found", doc.JobID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the raw status document")
	return cmd
}
