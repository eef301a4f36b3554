package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/account"
	"github.com/KaramelBytes/sitesmith-cli/internal/ai"
	"github.com/KaramelBytes/sitesmith-cli/internal/generation"
	"github.com/KaramelBytes/sitesmith-cli/internal/preview"
	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"github.com/KaramelBytes/sitesmith-cli/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	genModel      string
	genProvider   string
	genStream     bool
	genTimeoutSec int
	genJSON       bool
	genNoThumb    bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate a website from a prompt and save it as a project",
	Example: `  sitesmith generate "A landing page for a neighbourhood bakery"
  sitesmith generate --provider openai --stream "Portfolio for a wildlife photographer"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.TrimSpace(strings.Join(args, " "))
		if prompt == "" {
			return fmt.Errorf("prompt cannot be empty")
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

		timeoutSec := genTimeoutSec
		if timeoutSec <= 0 {
			timeoutSec = 180
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
		defer cancel()

		mgr := &account.Manager{Store: st}
		userID := currentUserID(ctx, st)
		records := st.Load(ctx)
		if err := generation.CheckPreviewLimit(records, userID, mgr.Plan(ctx), c.FreePreviewLimit); err != nil {
			return err
		}

		svc, provider, err := newService(c, runtimeOptions{ProviderFlag: genProvider, TimeoutSec: genTimeoutSec}, genModel)
		if err != nil {
			return explainError(err, provider, genModel)
		}
		if n, budget := utils.CountTokens(prompt), ai.PromptBudget(svc.Model); n > budget {
			fmt.Fprintf(os.Stderr, "⚠ Warning: prompt is ~%d tokens (budget %d for %s); the page may be truncated.\n", n, budget, svc.Model)
		}

		quiet := genJSON
		if !quiet {
			fmt.Printf("⚙ Analyzing with model=%s ...\n", svc.Model)
		}
		analysis, err := svc.AnalyzeStream(ctx, prompt, deltaPrinter(genStream && !quiet, os.Stdout))
		if err != nil {
			return explainError(err, provider, svc.Model)
		}
		if genStream && !quiet {
			fmt.Println()
		}
		if !quiet {
			fmt.Println("⚙ Generating website ...")
		}
		code, err := svc.GenerateSiteStream(ctx, prompt, deltaPrinter(genStream && !quiet, os.Stdout))
		if err != nil {
			return explainError(err, provider, svc.Model)
		}
		if genStream && !quiet {
			fmt.Println()
		}

		seq := generation.BuilderCount(records, userID) + 1
		rec := svc.NewRecord(userID, prompt, code, seq)
		if err := st.Update(ctx, func(rs []project.Record) ([]project.Record, error) {
			return project.Append(rs, rec), nil
		}); err != nil {
			return fmt.Errorf("save website: %w", err)
		}

		if !genNoThumb {
			rec = applyThumbnail(context.Background(), st, newSnapshotter(c, nil), rec)
		}

		if genJSON {
			return formatAndWriteOutput("", map[string]any{
				"analysis": analysis,
				"website":  preview.Summarize(rec),
			}, outputOptions{JSON: true})
		}
		if !genStream {
			_ = formatAndWriteOutput(analysis, nil, outputOptions{Title: "Design Analysis"})
		}
		fmt.Printf("\n✓ Saved %q (%s)\n", rec.Name, rec.ID)
		fmt.Printf("Preview: sitesmith preview %s --output site.html\n", rec.ID)
		return nil
	},
}

// applyThumbnail snapshots rec and stores the result. Failures keep the
// record as it was.
func applyThumbnail(ctx context.Context, st storeUpdater, snap thumbnailer, rec project.Record) project.Record {
	uri, ok := snap.Snapshot(ctx, rec.Files)
	if !ok {
		log.Debug("thumbnail skipped", zap.String("id", rec.ID))
		return rec
	}
	thumbs := map[string]string{rec.ID: uri}
	if err := st.Update(ctx, func(rs []project.Record) ([]project.Record, error) {
		return project.SetThumbnails(rs, thumbs), nil
	}); err != nil {
		log.Warn("save thumbnail", zap.String("id", rec.ID), zap.Error(err))
		return rec
	}
	rec.Thumbnail = uri
	return rec
}

type storeUpdater interface {
	Update(ctx context.Context, fn func([]project.Record) ([]project.Record, error)) error
}

type thumbnailer interface {
	Snapshot(ctx context.Context, files []project.File) (string, bool)
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVar(&genModel, "model", "", "model to use (overrides config)")
	generateCmd.Flags().StringVar(&genProvider, "provider", "", "provider: openrouter|openai (overrides config)")
	generateCmd.Flags().BoolVar(&genStream, "stream", false, "stream tokens as they arrive")
	generateCmd.Flags().IntVar(&genTimeoutSec, "timeout-sec", 0, "request timeout in seconds (default 180)")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "print the result as JSON")
	generateCmd.Flags().BoolVar(&genNoThumb, "no-thumbnail", false, "skip the thumbnail snapshot")
}
