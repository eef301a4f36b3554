package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/KaramelBytes/sitesmith-cli/internal/preview"
	"github.com/spf13/cobra"
)

var (
	listJSON bool
	listMine bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved websites",
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

		records := st.Load(ctx)
		uid := ""
		if listMine {
			uid = currentUserID(ctx, st)
		}
		summaries := make([]preview.Summary, 0, len(records))
		for _, r := range records {
			if listMine && r.UserID != uid {
				continue
			}
			summaries = append(summaries, preview.Summarize(r))
		}

		if listJSON {
			return formatAndWriteOutput("", summaries, outputOptions{JSON: true})
		}
		if len(summaries) == 0 {
			fmt.Println("(no websites)")
			return nil
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tPLAN\tFILES\tMODIFIED")
		for _, s := range summaries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
				s.ID, s.Name, s.Status, s.Plan, len(s.Files), s.LastModified.Local().Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print summaries as JSON")
	listCmd.Flags().BoolVar(&listMine, "mine", false, "only websites owned by the signed-in user")
}
