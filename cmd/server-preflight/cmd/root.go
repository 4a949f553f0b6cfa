// Package cmd provides the CLI commands for server-preflight.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/serverpreflight/internal/config"
	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
	"github.com/Aman-CERP/serverpreflight/internal/logging"
	"github.com/Aman-CERP/serverpreflight/pkg/version"
)

// globals holds the persistent flags and what PersistentPreRunE builds from them.
type globals struct {
	configPath   string
	defaultsPath string
	settingsPath string
	logLevel     string

	// jsonErrors is set by commands asked for JSON output so the final
	// error is printed as JSON too.
	jsonErrors bool

	settings *config.Settings
	logger   *slog.Logger
	cleanup  func()
}

// NewRootCmd creates the root command. Without a subcommand it runs all validators.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&globals{})
}

func newRootCmd(g *globals) *cobra.Command {
	var run runOptions

	cmd := &cobra.Command{
		Use:   "server-preflight",
		Short: "Validate server configuration before services are reconfigured",
		Long: `server-preflight checks the Chef Infra Server configuration and the host
before dependent services are reconfigured or started.

It merges the operator overrides with the shipped defaults, runs every
validator and exits non-zero if any check fails. Warnings are reported but
do not block.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreflight(cmd.Context(), cmd, g, run)
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.setup(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			g.teardown()
			return nil
		},
	}
	cmd.SetVersionTemplate("server-preflight version {{.Version}}\n")

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", config.DefaultUserConfigPath, "Operator configuration file (user layer)")
	pf.StringVar(&g.defaultsPath, "defaults", "", "Shipped defaults file (default layer); empty uses the built-in defaults")
	pf.StringVar(&g.settingsPath, "settings", "", "Tool settings file")
	pf.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	run.bind(cmd)

	cmd.AddCommand(newRunCmd(g))
	cmd.AddCommand(newConfigCmd(g))
	cmd.AddCommand(newStatusCmd(g))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads tool settings and configures logging.
func (g *globals) setup(cmd *cobra.Command) error {
	s, err := config.LoadSettings(g.settingsPath)
	if err != nil {
		return err
	}
	if g.logLevel != "" {
		s.LogLevel = g.logLevel
	}
	if err := s.Validate(); err != nil {
		return err
	}
	g.settings = s

	cfg := logging.DefaultConfig()
	cfg.Level = s.LogLevel
	cfg.FilePath = s.LogFile
	cfg.Stderr = cmd.ErrOrStderr()
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return perrors.New(perrors.ErrCodeFilePermission, "failed to set up logging", err)
	}
	g.logger = logger
	g.cleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func (g *globals) teardown() {
	if g.cleanup != nil {
		g.cleanup()
		g.cleanup = nil
	}
}

// Execute runs the root command with a signal-aware context and prints any
// error in the coded CLI or JSON format.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := &globals{}
	err := newRootCmd(g).ExecuteContext(ctx)
	writeError(os.Stderr, err, g.jsonErrors)
	return err
}

// writeError prints err as a coded JSON object when asJSON is set, and in the
// CLI text format otherwise.
func writeError(w io.Writer, err error, asJSON bool) {
	if err == nil {
		return
	}
	if asJSON {
		if data, jerr := perrors.FormatJSON(err); jerr == nil {
			_, _ = fmt.Fprintf(w, "%s\n", data)
			return
		}
	}
	_, _ = fmt.Fprint(w, perrors.FormatForCLI(err))
}
