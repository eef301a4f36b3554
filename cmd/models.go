package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/KaramelBytes/sitesmith-cli/internal/ai"
	"github.com/spf13/cobra"
)

var (
	modelsFile  string
	modelsURL   string
	modelsMerge bool
	modelsJSON  bool
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect the model catalog and pricing",
}

var modelsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the model catalog, optionally overlaid with a JSON catalog",
	Example: `  sitesmith models show
  sitesmith models show --file ./models.json --merge
  sitesmith models show --url https://example.com/models.json --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if modelsFile != "" {
			m, err := ai.LoadCatalogFromJSON(modelsFile)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			applyCatalog(m, modelsMerge)
		}
		if modelsURL != "" {
			if err := fetchAndApplyCatalog(modelsURL, modelsMerge); err != nil {
				return err
			}
		}

		cat := ai.Catalog()
		if modelsJSON {
			return formatAndWriteOutput("", cat, outputOptions{JSON: true})
		}
		keys := make([]string, 0, len(cat))
		for k := range cat {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "MODEL\tCONTEXT\tIN/1K\tOUT/1K")
		for _, k := range keys {
			mi := cat[k]
			fmt.Fprintf(tw, "%s\t%d\t$%.4f\t$%.4f\n", k, mi.ContextTokens, mi.InputPerK, mi.OutputPerK)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsShowCmd)
	modelsShowCmd.Flags().StringVar(&modelsFile, "file", "", "path to a JSON catalog file")
	modelsShowCmd.Flags().StringVar(&modelsURL, "url", "", "URL of a JSON catalog")
	modelsShowCmd.Flags().BoolVar(&modelsMerge, "merge", false, "merge into the built-in catalog instead of replacing it")
	modelsShowCmd.Flags().BoolVar(&modelsJSON, "json", false, "print the catalog as JSON")
}

// fetchAndApplyCatalog downloads a JSON catalog and installs it.
func fetchAndApplyCatalog(url string, merge bool) error {
	client := &http.Client{Timeout: 20 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("fetch catalog: unexpected status %s: %s", resp.Status, string(b))
	}
	m, err := ai.DecodeCatalog(resp.Body)
	if err != nil {
		return err
	}
	applyCatalog(m, merge)
	return nil
}

func applyCatalog(m map[string]ai.ModelInfo, merge bool) {
	if merge {
		ai.MergeCatalog(m)
		return
	}
	ai.OverrideCatalog(m)
}
