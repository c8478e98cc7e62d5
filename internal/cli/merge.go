package cli

import (
	"github.com/spf13/cobra"

	"github.com/andremarcal/draftsync/internal/ops"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [project...]",
	Short: "Combine several projects into a new one",
	Long: `Merge two or more projects, in the given order, into a freshly
created project folder. Flat mode appends every track onto one timeline;
groups mode keeps each project as a composite clip.

Examples:
  draftsync merge ~/projects/intro ~/projects/part1 --name compilation
  draftsync merge ~/projects/a ~/projects/b --mode groups`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMerge,
}

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().StringP("mode", "m", "flat", "Merge mode (flat, groups)")
	mergeCmd.Flags().StringP("name", "n", "", "Name of the merged project")
	mergeCmd.Flags().StringP("output-dir", "o", "", "Where to create the new project folder")
}

func runMerge(cmd *cobra.Command, args []string) error {
	mode, _ := cmd.Flags().GetString("mode")
	name, _ := cmd.Flags().GetString("name")
	outputDir, _ := cmd.Flags().GetString("output-dir")

	resp, err := service.MergeProjects(cmd.Context(), ops.MergeProjectsRequest{
		Paths:      args,
		Mode:       mode,
		OutputName: name,
		OutputDir:  outputDir,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}
