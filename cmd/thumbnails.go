package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"github.com/KaramelBytes/sitesmith-cli/internal/thumbnail"
	"github.com/spf13/cobra"
)

var (
	thumbForce bool
	thumbQuiet bool
)

var thumbnailsCmd = &cobra.Command{
	Use:   "thumbnails",
	Short: "Manage website thumbnails",
}

var thumbnailsRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Generate thumbnails for websites that are missing one",
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
		ctx := context.Background()

		var rep thumbnail.Reporter = thumbnail.NopReporter{}
		if !thumbQuiet {
			rep = thumbnail.NewReporter(os.Stderr)
		}
		thumbs := newSnapshotter(c, nil).Refresh(ctx, st.Load(ctx), thumbForce, rep)
		if len(thumbs) == 0 {
			fmt.Println("(no thumbnails updated)")
			return nil
		}
		if err := st.Update(ctx, func(rs []project.Record) ([]project.Record, error) {
			return project.SetThumbnails(rs, thumbs), nil
		}); err != nil {
			return fmt.Errorf("save thumbnails: %w", err)
		}
		fmt.Printf("✓ Updated %d thumbnail(s)\n", len(thumbs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(thumbnailsCmd)
	thumbnailsCmd.AddCommand(thumbnailsRefreshCmd)
	thumbnailsRefreshCmd.Flags().BoolVar(&thumbForce, "force", false, "regenerate thumbnails that already exist")
	thumbnailsRefreshCmd.Flags().BoolVarP(&thumbQuiet, "quiet", "q", false, "suppress progress output")
}
