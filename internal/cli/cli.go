package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zenem/zenem/internal/config"
	"github.com/zenem/zenem/internal/logging"
)

// App represents the CLI application with all wired dependencies
type App struct {
	// Root command
	rootCmd *cobra.Command

	// Configuration (loaded before any subcommand runs)
	cfg *config.Config

	// Persistent flags
	verbose    bool
	configPath string
	apiURL     string

	// logOut receives log output; stderr unless a test swaps it
	logOut io.Writer

	// Version information
	versionInfo VersionInfo
}

// VersionInfo is stamped into the binary at build time
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new CLI application
func New() *App {
	app := &App{logOut: os.Stderr}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// ExecuteContext runs the CLI application with ctx available to commands
func (a *App) ExecuteContext(ctx context.Context) error {
	return a.rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string for the version command
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = VersionInfo{Version: version, Commit: commit, Date: date}
}

// Config returns the loaded configuration, or nil before a command has run
func (a *App) Config() *config.Config {
	return a.cfg
}

// setupRootCmd configures the root Cobra command
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "zenem",
		Short: "Terminal client for the Zenem engineering-management backend",
		Long: `zenem talks to the Zenem REST API: refresh backend data from connected
systems, set up connector jobs, and browse the team calendar.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}

	// Add persistent flags
	a.rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Verbose output")
	a.rootCmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath(),
		"Path to config file")
	a.rootCmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "",
		"Override api.base_url")

	a.rootCmd.AddCommand(
		NewAuthCmd(a),
		NewRefreshCmd(a),
		NewConnectorsCmd(a),
		NewCalendarCmd(a),
		NewListCmd(a),
		NewVersionCmd(a),
	)
}

// loadConfig reads the config file and initializes logging.
// --api-url and --verbose win over file and environment values.
func (a *App) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	if err := logging.Init(cfg.LogLevel, a.logOut); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}
