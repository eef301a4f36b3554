package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/billing"
	"github.com/KaramelBytes/sitesmith-cli/internal/preview"
	"github.com/KaramelBytes/sitesmith-cli/internal/project"
	"github.com/KaramelBytes/sitesmith-cli/internal/store"
	"github.com/KaramelBytes/sitesmith-cli/internal/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	previewFile   string
	previewOutput string

	upgradePlan   string
	upgradeCard   string
	upgradeExpiry string
	upgradeCVC    string
)

// withStore opens the configured store and hands it to fn.
func withStore(fn func(context.Context, *store.Store) error) error {
	c, err := requireConfig()
	if err != nil {
		return err
	}
	st, err := openStore(c)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(context.Background(), st)
}

var previewCmd = &cobra.Command{
	Use:   "preview <id>",
	Short: "Write a website's document with its images inlined",
	Example: `  sitesmith preview 01J9Z3K4QH3W5X8Y6Z7A8B9C0D --output site.html
  sitesmith preview 01J9Z3K4QH3W5X8Y6Z7A8B9C0D --file about.html`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, st *store.Store) error {
			rec, err := project.Find(st.Load(ctx), args[0])
			if err != nil {
				return err
			}
			markup, stats, err := preview.Render(rec.Files, previewFile)
			if err != nil {
				return err
			}
			log.Debug("rendered preview",
				zap.String("id", rec.ID),
				zap.Int("images", stats.Images),
				zap.Int("backgrounds", stats.Backgrounds))
			if previewOutput == "" {
				fmt.Fprintln(os.Stdout, markup)
				return nil
			}
			if err := utils.SafeWriteFile(previewOutput, []byte(markup)); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %s (%d image and %d background references inlined)\n", previewOutput, stats.Images, stats.Backgrounds)
			return nil
		})
	},
}

var renameCmd = &cobra.Command{
	Use:   "rename <id> <name>",
	Short: "Rename a website",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args[1:], " ")
		return withStore(func(ctx context.Context, st *store.Store) error {
			err := st.Update(ctx, func(rs []project.Record) ([]project.Record, error) {
				return project.Rename(rs, args[0], name, time.Now())
			})
			if err != nil {
				return err
			}
			fmt.Printf("✓ Renamed %s to %q\n", args[0], strings.TrimSpace(name))
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a website",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, st *store.Store) error {
			err := st.Update(ctx, func(rs []project.Record) ([]project.Record, error) {
				return project.Delete(rs, args[0])
			})
			if err != nil {
				return err
			}
			fmt.Printf("✓ Deleted %s\n", args[0])
			return nil
		})
	},
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade <id>",
	Short: "Move a website to a paid plan and publish it",
	Example: `  sitesmith upgrade 01J9Z3K4QH3W5X8Y6Z7A8B9C0D --plan professional
  sitesmith upgrade 01J9Z3K4QH3W5X8Y6Z7A8B9C0D --plan enterprise --card "4111 1111 1111 1111"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := project.ParsePlan(upgradePlan)
		if err != nil {
			return err
		}
		var card *billing.Card
		if upgradeCard != "" {
			card = &billing.Card{Number: upgradeCard, Expiry: upgradeExpiry, CVC: upgradeCVC}
		}
		return withStore(func(ctx context.Context, st *store.Store) error {
			up := &billing.Upgrader{Store: st, Gateway: billing.NewStubGateway(), Log: log}
			rec, err := up.Upgrade(ctx, args[0], plan, card)
			if err != nil {
				if errors.Is(err, billing.ErrPaymentDeclined) {
					return fmt.Errorf("%w. Please check your card details and try again", err)
				}
				return err
			}
			info, _ := billing.Lookup(rec.Plan)
			fmt.Printf("✓ %q is now on the %s plan (%s) and %s\n", rec.Name, info.Name, info.DisplayPrice(), rec.Status)
			return nil
		})
	},
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "Show available hosting plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, p := range billing.Plans() {
			fmt.Printf("%s (%s): %s\n", p.Name, p.Plan, p.DisplayPrice())
			for _, f := range p.Features {
				fmt.Printf("  - %s\n", f)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd, renameCmd, deleteCmd, upgradeCmd, plansCmd)
	previewCmd.Flags().StringVar(&previewFile, "file", "", "file to render (default: primary document)")
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "write to this path instead of stdout")

	upgradeCmd.Flags().StringVar(&upgradePlan, "plan", "", "target plan: professional|enterprise")
	upgradeCmd.Flags().StringVar(&upgradeCard, "card", "", "card number (required for enterprise)")
	upgradeCmd.Flags().StringVar(&upgradeExpiry, "expiry", "", "card expiry MM/YY")
	upgradeCmd.Flags().StringVar(&upgradeCVC, "cvc", "", "card CVC")
	_ = upgradeCmd.MarkFlagRequired("plan")
}
