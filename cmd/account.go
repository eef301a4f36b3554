package cmd

import (
	"context"
	"fmt"

	"github.com/KaramelBytes/sitesmith-cli/internal/account"
	"github.com/KaramelBytes/sitesmith-cli/internal/billing"
	"github.com/KaramelBytes/sitesmith-cli/internal/store"
	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
	authName     string
)

// withAccount opens the store and hands a manager to fn.
func withAccount(fn func(context.Context, *account.Manager) error) error {
	c, err := requireConfig()
	if err != nil {
		return err
	}
	st, err := openStore(c)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(context.Background(), &account.Manager{Store: st})
}

var signinCmd = &cobra.Command{
	Use:     "signin",
	Short:   "Sign in with the demo account",
	Example: `  sitesmith signin --email demo@example.com --password demo123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccount(func(ctx context.Context, m *account.Manager) error {
			u, err := m.SignIn(ctx, authEmail, authPassword)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Signed in as %s\n", u.Email)
			return nil
		})
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a local account on the free plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccount(func(ctx context.Context, m *account.Manager) error {
			u, err := m.SignUp(ctx, authEmail, authPassword, authName)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Created account %s (%s)\n", u.Email, u.ID)
			return nil
		})
	},
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Forget the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccount(func(ctx context.Context, m *account.Manager) error {
			if err := m.SignOut(ctx); err != nil {
				return err
			}
			fmt.Println("✓ Signed out")
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account and subscription",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withAccount(func(ctx context.Context, m *account.Manager) error {
			u, sub := m.Current(ctx)
			if u == nil {
				fmt.Println("(not signed in)")
				return nil
			}
			fmt.Printf("User: %s", u.Email)
			if u.Name != "" {
				fmt.Printf(" (%s)", u.Name)
			}
			fmt.Printf("\nID: %s\n", u.ID)
			if sub == nil {
				return nil
			}
			plan := string(sub.Plan)
			if info, err := billing.Lookup(sub.Plan); err == nil {
				plan = fmt.Sprintf("%s %s", info.Name, info.DisplayPrice())
			}
			fmt.Printf("Plan: %s [%s], renews %s\n", plan, sub.Status, sub.RenewalDate)
			if pm := sub.PaymentMethod; pm != nil {
				fmt.Printf("Card: %s ending %s (exp %s)\n", pm.Brand, pm.Last4, pm.Expiry)
			}
			return nil
		})
	},
}

// currentUserID returns the signed-in user id, or "" when signed out.
func currentUserID(ctx context.Context, st *store.Store) string {
	u, _ := (&account.Manager{Store: st}).Current(ctx)
	if u == nil {
		return ""
	}
	return u.ID
}

func init() {
	rootCmd.AddCommand(signinCmd, signupCmd, signoutCmd, whoamiCmd)
	for _, c := range []*cobra.Command{signinCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "account password")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("password")
	}
	signupCmd.Flags().StringVar(&authName, "name", "", "display name")
}
