package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/andremarcal/draftsync/internal/ops"
)

var exportCmd = &cobra.Command{
	Use:   "export [project]",
	Short: "Pack a project and its media into a portable zip",
	Long: `Copy every media file the project references into the archive and
rewrite the draft to archive-relative paths, so the project opens on
another machine after import. Unreadable media keeps its original path
and is listed in the archive's manifest.

Example:
  draftsync export ~/projects/my-video --out ~/my-video.zip`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [archive]",
	Short: "Unpack an exported archive as a new registered project",
	Long: `Extract an exported zip into the projects directory, give the copy
a fresh draft ID and a unique name, and register it so the editor lists
it.

Example:
  draftsync import ~/my-video.zip --dir ~/editor-projects`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var mediaCmd = &cobra.Command{
	Use:   "media [project]",
	Short: "List or rewrite the media paths a project references",
	Long: `Without flags, list every media file the draft references. With
--map, rewrite matching paths and save the draft, for projects whose
media moved.

Examples:
  draftsync media ~/projects/my-video
  draftsync media ~/projects/my-video --map '{"/old/a.mp3":"/new/a.mp3"}'`,
	Args: cobra.ExactArgs(1),
	RunE: runMedia,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(mediaCmd)

	exportCmd.Flags().StringP("out", "o", "", "Where to write the archive")

	importCmd.Flags().StringP("dir", "d", "", "Projects directory to import into")

	mediaCmd.Flags().String("map", "", "JSON object of old-to-new media paths")
}

func runExport(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	resp, err := service.ExportProject(cmd.Context(), ops.ExportProjectRequest{
		Path:       args[0],
		OutputPath: out,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runImport(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	resp, err := service.ImportProject(cmd.Context(), ops.ImportProjectRequest{
		ZipPath:   args[0],
		OutputDir: dir,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runMedia(cmd *cobra.Command, args []string) error {
	mapJSON, _ := cmd.Flags().GetString("map")
	if mapJSON == "" {
		resp, err := service.MediaPaths(cmd.Context(), ops.MediaPathsRequest{Path: args[0]})
		if err != nil {
			return err
		}
		return printJSON(resp)
	}

	var mapping map[string]string
	if err := json.Unmarshal([]byte(mapJSON), &mapping); err != nil {
		return err
	}
	resp, err := service.UpdateMediaPaths(cmd.Context(), ops.UpdateMediaPathsRequest{
		Path:    args[0],
		Mapping: mapping,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}
