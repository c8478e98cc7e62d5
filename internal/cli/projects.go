package cli

import (
	"github.com/spf13/cobra"

	"github.com/andremarcal/draftsync/internal/ops"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List the editor's project folders, newest first",
	Long: `List every project in the editor's projects directory. The
directory is detected per platform; override it with --dir or the
DRAFTSYNC_PROJECTS_DIR environment variable.`,
	Args: cobra.NoArgs,
	RunE: runProjects,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether the editor is running",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(statusCmd)

	projectsCmd.Flags().StringP("dir", "d", "", "Projects directory to scan")
}

func runProjects(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	resp, err := service.ListProjects(cmd.Context(), ops.ListProjectsRequest{Dir: dir})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runStatus(cmd *cobra.Command, args []string) error {
	return printJSON(service.EditorStatus(cmd.Context()))
}
