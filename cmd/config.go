package cmd

import (
	"fmt"

	cfgpkg "github.com/KaramelBytes/sitesmith-cli/internal/config"
	"github.com/spf13/cobra"
)

var (
	configShowJSON bool
	configReveal   bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change settings in ~/.sitesmith/config.yaml",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every setting after env and file overrides",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		values := make(map[string]string, len(cfgpkg.Keys))
		for _, k := range cfgpkg.Keys {
			if values[k], err = displayValue(c, k); err != nil {
				return err
			}
		}
		if configShowJSON {
			return formatAndWriteOutput("", values, outputOptions{JSON: true})
		}
		for _, k := range cfgpkg.Keys {
			fmt.Printf("%s: %s\n", k, values[k])
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a single setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		v, err := displayValue(c, args[0])
		if err != nil {
			return err
		}
		fmt.Println(v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting and write the config file",
	Example: `  sitesmith config set api_key sk-or-...
  sitesmith config set store_backend sqlite
  sitesmith config set free_preview_limit 5`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		key, val := args[0], args[1]
		if err := c.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		log.Debug("config saved")
		if cfgpkg.Secret(key) {
			val = mask(val)
		}
		fmt.Printf("✓ %s = %s\n", key, val)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configGetCmd, configSetCmd)
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "print settings as JSON")
	configCmd.PersistentFlags().BoolVar(&configReveal, "reveal", false, "print API keys unmasked")
}

// displayValue reads key from c, masking secrets unless --reveal is set.
func displayValue(c *cfgpkg.Global, key string) (string, error) {
	v, err := c.Get(key)
	if err != nil {
		return "", err
	}
	if cfgpkg.Secret(key) && !configReveal {
		v = mask(v)
	}
	return v, nil
}

// mask keeps the first and last three characters of a secret.
func mask(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 6:
		return "******"
	default:
		return s[:3] + "****" + s[len(s)-3:]
	}
}
