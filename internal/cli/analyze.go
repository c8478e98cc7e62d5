package cli

import (
	"github.com/spf13/cobra"

	"github.com/andremarcal/draftsync/internal/ops"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [project]",
	Short: "Summarize a project's timeline",
	Long: `Print one line per track: type, segment count, duration and the
resolved material name. Accepts a project folder or a draft file path.

Examples:
  draftsync analyze ~/projects/my-video
  draftsync analyze ~/projects/my-video/draft_content.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	resp, err := service.Analyze(cmd.Context(), ops.AnalyzeRequest{Path: args[0]})
	if err != nil {
		return err
	}
	return printJSON(resp)
}
