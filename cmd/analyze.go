package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	anaModel    string
	anaProvider string
	anaStream   bool
	anaJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <prompt>",
	Short: "Ask the design consultant about a website idea without generating it",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := strings.TrimSpace(strings.Join(args, " "))
		if prompt == "" {
			return fmt.Errorf("prompt cannot be empty")
		}
		c, err := requireConfig()
		if err != nil {
			return err
		}
		svc, provider, err := newService(c, runtimeOptions{ProviderFlag: anaProvider}, anaModel)
		if err != nil {
			return explainError(err, provider, anaModel)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
		defer cancel()

		stream := anaStream && !anaJSON
		if stream {
			fmt.Println("(streaming)")
		}
		analysis, err := svc.AnalyzeStream(ctx, prompt, deltaPrinter(stream, os.Stdout))
		if err != nil {
			return explainError(err, provider, svc.Model)
		}
		if stream {
			fmt.Println()
			return nil
		}
		return formatAndWriteOutput(analysis, map[string]any{
			"model":    svc.Model,
			"prompt":   prompt,
			"analysis": analysis,
		}, outputOptions{JSON: anaJSON, Title: "Design Analysis"})
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaModel, "model", "", "model to use (overrides config)")
	analyzeCmd.Flags().StringVar(&anaProvider, "provider", "", "provider: openrouter|openai (overrides config)")
	analyzeCmd.Flags().BoolVar(&anaStream, "stream", false, "stream tokens as they arrive")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "print the result as JSON")
}
