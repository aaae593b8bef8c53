package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cleartag/cleartag/internal/camera"
	"github.com/cleartag/cleartag/internal/output"
	"github.com/cleartag/cleartag/internal/panel"
	"github.com/cleartag/cleartag/internal/station"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var noColor bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the station interactively in the terminal",
		Long: `Runs the station with single-key controls:

  Space/Enter  capture and scan
  s            switch between rear and front camera
  c            close the results
  q, Ctrl+C    quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var out, errOut io.Writer = cmd.OutOrStdout(), os.Stderr
			if term.IsTerminal(int(os.Stdin.Fd())) {
				out = output.RawWriter{W: out}
				errOut = output.RawWriter{W: errOut}
			}
			logger := opts.newLogger(errOut)

			st, err := station.FromConfig(opts.cfg, opts.userAgent(), logger)
			if err != nil {
				return err
			}

			actions, restore, err := output.ReadActions(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to enable raw terminal: %w", err)
			}
			defer restore()

			loop := &interactive{
				station: st,
				writer:  output.NewTextWriter(out, noColor),
			}
			defer st.Shutdown()
			return loop.run(cmd.Context(), actions, out)
		},
	}

	cmd.Flags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "Disable coloured output")

	return cmd
}

type interactive struct {
	station *station.Station

	mu     sync.Mutex
	writer output.Writer
	wg     sync.WaitGroup
}

func (l *interactive) run(ctx context.Context, actions <-chan output.Action, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		l.wg.Wait()
	}()

	l.camera(l.station.Start(ctx))
	fmt.Fprintln(out, output.KeyHelp)

	for {
		select {
		case <-ctx.Done():
			return nil
		case a, ok := <-actions:
			if !ok {
				return nil
			}
			switch a {
			case output.ActionCapture:
				l.wg.Add(1)
				go func() {
					defer l.wg.Done()
					l.capture(ctx)
				}()
			case output.ActionSwitch:
				l.camera(l.station.SwitchCamera(ctx))
			case output.ActionClose:
				l.panel(l.station.ClosePanel())
			case output.ActionQuit:
				return nil
			}
		}
	}
}

// capture prints the loader, then the outcome. A rejected capture prints the
// in-flight snapshot again.
func (l *interactive) capture(ctx context.Context) {
	if !l.station.Panel().State.Busy() {
		l.panel(panel.Snapshot{State: panel.StateCapturing, Visible: true, Loading: true})
	}
	snap, _ := l.station.Capture(ctx)
	l.panel(snap)
}

func (l *interactive) camera(st camera.Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.writer.WriteCamera(st)
}

func (l *interactive) panel(snap panel.Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.writer.WritePanel(snap)
}
