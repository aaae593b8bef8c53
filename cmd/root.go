package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cleartag/cleartag/internal/config"
)

// rootOptions carries the persistent flags and the configuration they
// resolve to. Subcommands read cfg and logger after PersistentPreRunE.
type rootOptions struct {
	version    string
	configPath string
	logLevel   string
	server     string
	mode       string
	facing     string
	image      string

	cfg    *config.Config
	logger *slog.Logger
}

func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{version: version}

	cmd := &cobra.Command{
		Use:   "cleartag",
		Short: "Label compliance scanner station",
		Long: `ClearTag drives a label scanning station: it captures a photo of a
product label, sends it to a compliance scan server and shows the verdict.

It can run as a kiosk web page, an interactive terminal, a one-shot scan or a
batch export over a directory of images.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return opts.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.server, "server", "", "Scan server base URL")
	flags.StringVar(&opts.mode, "mode", "", "Capture mode (local or remote)")
	flags.StringVar(&opts.facing, "facing", "", "Camera facing mode (environment or user)")
	flags.StringVar(&opts.image, "image", "", "Use an image file instead of the camera")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newScanCmd(opts))
	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newBatchCmd(opts))

	return cmd
}

// load resolves defaults, config file, environment and flags, in that order
func (o *rootOptions) load(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	overrides := []struct {
		name string
		src  string
		dst  *string
	}{
		{"log-level", o.logLevel, &cfg.LogLevel},
		{"server", o.server, &cfg.ServerURL},
		{"mode", o.mode, &cfg.Mode},
		{"facing", o.facing, &cfg.Camera.Facing},
		{"image", o.image, &cfg.Camera.Image},
	}
	for _, ov := range overrides {
		if flags.Changed(ov.name) {
			*ov.dst = ov.src
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	o.cfg = cfg
	o.logger = o.newLogger(os.Stderr)
	slog.SetDefault(o.logger)
	return nil
}

func (o *rootOptions) newLogger(w io.Writer) *slog.Logger {
	level, _ := config.ParseLevel(o.cfg.LogLevel)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *rootOptions) userAgent() string {
	return "cleartag/" + o.version
}
