package cmd

import (
	"context"
	"fmt"

	"github.com/KaramelBytes/sitesmith-cli/internal/ingest"
	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"github.com/spf13/cobra"
)

var (
	importMode    string
	importInclude []string
	importExclude []string
	importNoThumb bool
)

var importCmd = &cobra.Command{
	Use:   "import <paths...>",
	Short: "Import an existing website from files or directories",
	Example: `  sitesmith import ./my-site
  sitesmith import ./site --exclude "node_modules/**" --exclude "**/*.map"
  sitesmith import --mode wordpress ./wordpress`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := ingest.ParseMode(importMode)
		if err != nil {
			return err
		}
		raw, err := ingest.LoadPaths(args, ingest.LoadOptions{Include: importInclude, Exclude: importExclude})
		if err != nil {
			return err
		}
		if len(raw) == 0 {
			return fmt.Errorf("no files matched")
		}

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

		rec, err := ingest.Ingest(raw, mode, ingest.Options{UserID: currentUserID(ctx, st)})
		if err != nil {
			return err
		}
		if err := st.Update(ctx, func(rs []project.Record) ([]project.Record, error) {
			return project.Append(rs, *rec), nil
		}); err != nil {
			return fmt.Errorf("save website: %w", err)
		}

		out := *rec
		if !importNoThumb {
			out = applyThumbnail(ctx, st, newSnapshotter(c, nil), out)
		}
		fmt.Printf("✓ Imported %q (%s) with %d files\n", out.Name, out.ID, len(out.Files))
		if p := out.Primary(); p != nil {
			fmt.Printf("  Primary document: %s\n", p.Name)
		}
		if out.Thumbnail == "" {
			fmt.Println("⚠ No thumbnail was generated; run 'sitesmith thumbnails refresh' later.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().StringVar(&importMode, "mode", string(ingest.ModeStandard), "import mode: standard|wordpress")
	importCmd.Flags().StringSliceVar(&importInclude, "include", nil, "glob of files to include (repeatable)")
	importCmd.Flags().StringSliceVar(&importExclude, "exclude", nil, "glob of files to exclude (repeatable)")
	importCmd.Flags().BoolVar(&importNoThumb, "no-thumbnail", false, "skip the thumbnail snapshot")
}
