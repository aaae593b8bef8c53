package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleartag/cleartag/internal/batch"
	"github.com/cleartag/cleartag/internal/scan"
)

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var (
		dir string
		out string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Scan every image in a directory and export the results",
		Long: `Sends each .jpg, .jpeg and .png file in a directory to the scan server,
one at a time, and writes one Parquet row per image plus a YAML summary next
to it.`,
		Example: `  cleartag batch --dir ./labels --out results/labels.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := opts.cfg, opts.logger

			paths, err := batch.Discover(dir)
			if err != nil {
				return err
			}

			client, err := scan.NewClient(cfg.ServerURL, scan.Options{
				Quality:   cfg.Scan.Quality,
				Timeout:   cfg.Scan.Timeout,
				UserAgent: opts.userAgent(),
				Logger:    logger,
			})
			if err != nil {
				return err
			}

			logger.Info("Starting batch", "dir", dir, "images", len(paths), "server", client.Endpoint())
			rows, err := batch.NewRunner(client, logger).Run(cmd.Context(), paths)
			if err != nil {
				return fmt.Errorf("batch interrupted after %d images: %w", len(rows), err)
			}

			if err := batch.WriteParquet(out, rows); err != nil {
				return err
			}

			summary := batch.Summarize(rows, batch.SummaryConfig{
				Server:    cfg.ServerURL,
				Dir:       dir,
				Output:    out,
				Timestamp: time.Now().Format(time.RFC3339),
			})
			summaryPath := batch.SummaryPath(out)
			if err := batch.WriteSummary(summaryPath, summary); err != nil {
				return err
			}

			batch.PrintSummary(cmd.OutOrStdout(), summary)
			absPath, _ := filepath.Abs(out)
			fmt.Fprintf(cmd.OutOrStdout(), "\nResults saved to: %s\n", absPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Summary saved to: %s\n", summaryPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory of label images")
	cmd.Flags().StringVarP(&out, "out", "o", "results.parquet", "Parquet output file")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}
