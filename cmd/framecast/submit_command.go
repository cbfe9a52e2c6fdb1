package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"framecast/internal/jobstore"
)

func newSubmitCommand(client func() *apiClient) *cobra.Command {
	var wait bool
	var pollInterval time.Duration

	cmd := &cobra.Command{
		Use:   "submit <composition.json>",
		Short: "Submit a composition request for rendering",
		Long:  "Submit a composition document to the rendering service. Pass \"-\" to read the document from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(args[0])
			if err != nil {
				return err
			}

			api := client()
			accepted, err := api.Submit(payload)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Job %s accepted\n", accepted.JobID)
			fmt.Fprintf(out, "Result will be at %s\n", accepted.VideoURL)

			if !wait {
				return nil
			}
			return pollUntilTerminal(cmd, api, accepted.JobID, pollInterval)
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Poll the job until it reaches a terminal status")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", 2*time.Second, "Interval between status polls with --wait")
	return cmd
}

func readPayload(arg string) ([]byte, error) {
	if arg == "-" {
		payload, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return payload, nil
	}
	payload, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("read composition: %w", err)
	}
	return payload, nil
}

func pollUntilTerminal(cmd *cobra.Command, api *apiClient, jobID string, interval time.Duration) error {
	out := cmd.OutOrStdout()
	lastStatus := jobstore.Status("")
	for {
		doc, err := api.Status(jobID)
		if err != nil {
			return err
		}
		if doc.Status != lastStatus {
			if doc.Progress != nil {
				fmt.Fprintf(out, "%s (%d%%)\n", doc.Status, *doc.Progress)
			} else {
				fmt.Fprintln(out, doc.Status)
			}
			lastStatus = doc.Status
		}
		if doc.Status.Terminal() || doc.Status == jobstore.StatusNotFound {
			if doc.Status == jobstore.StatusFailed {
				return fmt.Errorf("job failed: %s", doc.Error)
			}
			if doc.Status == jobstore.StatusNotFound {
				return fmt.Errorf("job %s disappeared", jobID)
			}
			fmt.Fprintf(out, "Done: %s\n", doc.VideoURL)
			return nil
		}

		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(interval):
		}
	}
}
