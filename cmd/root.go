package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/sitesmith-cli/internal/config"
	"github.com/KaramelBytes/sitesmith-cli/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile        string
	debug          bool
	httpTimeoutSec int

	// cfg is nil until loadConfig or requireConfig succeeds.
	cfg *cfgpkg.Global
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "sitesmith",
	Short: "Sitesmith CLI: generate, import and preview static websites",
	Long: `Sitesmith builds static websites from a prompt or from imported files, keeps them
in a local project store, and renders self-contained previews and thumbnails.`,
	SilenceUsage: true,
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	_ = log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogger, loadConfig)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/.sitesmith/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "log debug output to stderr")
	pf.IntVar(&httpTimeoutSec, "http-timeout", 0, "HTTP timeout in seconds for generation calls (overrides config)")
}

func initLogger() {
	l, err := logging.New(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to build logger: %v\n", err)
		return
	}
	log = l
}

// loadConfig runs before every command. A broken config is only a warning
// here; commands that need it fail later through requireConfig.
func loadConfig() {
	if _, err := requireConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
	}
}

// requireConfig returns the loaded config, loading it on first use.
func requireConfig() (*cfgpkg.Global, error) {
	if cfg != nil {
		return cfg, nil
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if rootCmd.PersistentFlags().Changed("http-timeout") && httpTimeoutSec > 0 {
		c.HTTPTimeoutSec = httpTimeoutSec
	}
	log.Debug("config loaded",
		zap.String("provider", c.DefaultProvider),
		zap.String("store_backend", c.StoreBackend),
		zap.String("data_dir", c.DataDir))
	cfg = c
	return cfg, nil
}
