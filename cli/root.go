// Package cli implements the mddocs command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/foomo/mddocs/config"
)

type options struct {
	configFile string
	addr       string
	contentDir string
	staticDir  string
	mcp        bool
	logLevel   string
}

// Execute runs the root command.
func Execute(ctx context.Context, version string) error {
	return NewRootCmd(version).ExecuteContext(ctx)
}

// NewRootCmd builds the command tree. Running it without a subcommand serves
// the documentation.
func NewRootCmd(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "mddocs",
		Short:         "Serve a directory of markdown documents over HTTP and MCP",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "configuration file (JSON or YAML), defaults to $"+config.EnvConfigFile)
	flags.StringVarP(&opts.contentDir, "content-dir", "d", "", "directory holding the markdown documents")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	serveFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "HTTP listen address, defaults to :$"+config.EnvPort)
		cmd.Flags().StringVar(&opts.staticDir, "static-dir", "", "directory for static files, defaults to the content directory")
		cmd.Flags().BoolVar(&opts.mcp, "mcp", false, "expose the MCP tools over HTTP")
	}
	serveFlags(rootCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve documents over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
	serveFlags(serveCmd)

	rootCmd.AddCommand(
		serveCmd,
		newMCPCmd(opts),
		newListCmd(opts),
	)

	return rootCmd
}

// loadConfig reads the configuration and applies flags that were set
// explicitly on cmd.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = opts.addr
	}
	if flags.Changed("content-dir") {
		cfg.ContentDir = opts.contentDir
	}
	if flags.Changed("static-dir") {
		cfg.StaticDir = opts.staticDir
	}
	if flags.Changed("mcp") {
		cfg.MCP.Enabled = opts.mcp
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zapConfig := zap.NewProductionConfig()
	if cfg.Log.Development {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	return zapConfig.Build()
}
