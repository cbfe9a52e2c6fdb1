package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"framecast/internal/jobstore"
)

func newJobsCommand(client func() *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List known rendering jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := client().Jobs()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(docs) == 0 {
				fmt.Fprintln(out, "No jobs.")
				return nil
			}

			rows := make([][]string, 0, len(docs))
			for _, doc := range docs {
				rows = append(rows, []string{
					doc.JobID,
					string(doc.Status),
					progressCell(doc),
					detailCell(doc),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"JOB", "STATUS", "PROGRESS", "DETAIL"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func progressCell(doc jobstore.Document) string {
	if doc.Progress == nil {
		return "-"
	}
	return strconv.Itoa(*doc.Progress) + "%"
}

func detailCell(doc jobstore.Document) string {
	switch {
	case doc.Error != "":
		return truncateCell(doc.Error, 60)
	case doc.VideoURL != "":
		return doc.VideoURL
	default:
		return ""
	}
}

func truncateCell(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit-1] + "…"
}
