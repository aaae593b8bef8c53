package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleartag/cleartag/internal/camera"
	"github.com/cleartag/cleartag/internal/output"
	"github.com/cleartag/cleartag/internal/panel"
	"github.com/cleartag/cleartag/internal/station"
)

func newScanCmd(opts *rootOptions) *cobra.Command {
	var (
		format  string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Capture one label and print the verdict",
		Example: `  # Scan with the Pi camera
  cleartag scan

  # Scan a saved photo and print JSON
  cleartag scan --image label.jpg --format json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := output.New(format, cmd.OutOrStdout(), noColor)
			if err != nil {
				return err
			}
			if c, ok := w.(io.Closer); ok {
				defer c.Close()
			}

			st, err := station.FromConfig(opts.cfg, opts.userAgent(), opts.logger)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			status := st.Start(ctx)
			defer st.Shutdown()

			if status.Notice.Kind == camera.NoticeAlert {
				if err := w.WriteCamera(status); err != nil {
					return err
				}
			}

			snap, err := st.Capture(ctx)
			if err != nil {
				return err
			}
			if err := w.WritePanel(snap); err != nil {
				return fmt.Errorf("failed to write result: %w", err)
			}
			if snap.State == panel.StateFailed {
				return errors.New("scan did not produce a result")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format ("+strings.Join(output.Formats, ", ")+")")
	cmd.Flags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "Disable coloured output")

	return cmd
}
