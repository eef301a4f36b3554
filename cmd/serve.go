package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/KaramelBytes/sitesmith-cli/internal/metrics"
	"github.com/KaramelBytes/sitesmith-cli/internal/preview"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveOrigins []string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve website previews, thumbnails and metrics over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		st, err := openStore(c)
		if err != nil {
			return err
		}
		defer st.Close()
		m, err := metrics.New()
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = c.PreviewAddr
		}
		srv := preview.New(preview.Config{Addr: addr, AllowedOrigins: serveOrigins}, st, m, log)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		fmt.Printf("✓ Serving previews on http://%s (Ctrl+C to stop)\n", addr)
		return srv.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config preview_addr)")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allow-origin", nil, "CORS origin allowed on /api (repeatable; default localhost only)")
}
