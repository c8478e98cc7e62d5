package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andremarcal/draftsync/internal/ops"
)

var srtCmd = &cobra.Command{
	Use:   "srt",
	Short: "Scan, insert and generate SRT subtitles",
}

var srtScanCmd = &cobra.Command{
	Use:   "scan [project]",
	Short: "Match a folder's SRT files against the project's audio clips",
	Long: `List which SRT files in a folder pair with the project's audio
clips. Pairing is by file base name, ignoring case and extensions:
"Intro.SRT" matches "intro.mp3".

Example:
  draftsync srt scan ~/projects/my-video --folder ~/subtitles`,
	Args: cobra.ExactArgs(1),
	RunE: runSrtScan,
}

var srtInsertCmd = &cobra.Command{
	Use:   "insert [project]",
	Short: "Insert matched SRT files over their audio clips",
	Long: `Insert every matched SRT file at its audio clip's position on the
timeline. Entries that would outlast their clip are dropped. Folders
accumulate; a file name appearing in several folders is taken from the
first one that holds it.

Examples:
  draftsync srt insert ~/projects/my-video --folder ~/subtitles --titles
  draftsync srt insert ~/projects/my-video --folder ~/a --folder ~/b --select intro,part1`,
	Args: cobra.ExactArgs(1),
	RunE: runSrtInsert,
}

var srtBatchScanCmd = &cobra.Command{
	Use:   "batch-scan",
	Short: "List SRT files across folders for batch insertion",
	Args:  cobra.NoArgs,
	RunE:  runSrtBatchScan,
}

var srtBatchInsertCmd = &cobra.Command{
	Use:   "batch-insert [project]",
	Short: "Concatenate whole SRT files onto one new track",
	Long: `Place the given SRT files one after another on a single new text
track, starting at zero, with a configurable gap between files.

Example:
  draftsync srt batch-insert ~/projects/my-video --file a.srt --file b.srt --gap-ms 500 --titles`,
	Args: cobra.ExactArgs(1),
	RunE: runSrtBatchInsert,
}

var srtCreateCmd = &cobra.Command{
	Use:   "create [project]",
	Short: "Generate timed subtitles from a plain-text script",
	Long: `Split a script into subtitle-sized blocks, time them by reading
speed, write them as an SRT file beside the draft, and insert them.
Refuses to run while the editor is open unless --force is given.

Examples:
  draftsync srt create ~/projects/my-video --script roteiro.txt
  draftsync srt create ~/projects/my-video --script roteiro.txt --max-chars 90 --force`,
	Args: cobra.ExactArgs(1),
	RunE: runSrtCreate,
}

func init() {
	rootCmd.AddCommand(srtCmd)
	srtCmd.AddCommand(srtScanCmd)
	srtCmd.AddCommand(srtInsertCmd)
	srtCmd.AddCommand(srtBatchScanCmd)
	srtCmd.AddCommand(srtBatchInsertCmd)
	srtCmd.AddCommand(srtCreateCmd)

	srtScanCmd.Flags().StringP("folder", "f", "", "Folder containing SRT files")
	srtScanCmd.MarkFlagRequired("folder")

	srtInsertCmd.Flags().StringArrayP("folder", "f", nil, "Folder containing SRT files (repeatable)")
	srtInsertCmd.Flags().Bool("titles", false, "Add a title segment per audio clip")
	srtInsertCmd.Flags().Bool("shared-track", false, "Put everything on one track (single clip only)")
	srtInsertCmd.Flags().String("select", "", "Comma-separated base names to insert")
	srtInsertCmd.MarkFlagRequired("folder")

	srtBatchScanCmd.Flags().StringArrayP("folder", "f", nil, "Folder to scan (repeatable)")
	srtBatchScanCmd.MarkFlagRequired("folder")

	srtBatchInsertCmd.Flags().StringArrayP("file", "f", nil, "SRT file to insert, in order (repeatable)")
	srtBatchInsertCmd.Flags().Bool("titles", false, "Add a title segment per file")
	srtBatchInsertCmd.Flags().Int64P("gap-ms", "g", 0, "Gap between files in milliseconds")
	srtBatchInsertCmd.MarkFlagRequired("file")

	srtCreateCmd.Flags().StringP("script", "s", "", "Path to the plain-text script")
	srtCreateCmd.Flags().Int("max-chars", 0, "Maximum characters per subtitle block")
	srtCreateCmd.Flags().Float64("reading-rate", 0, "Reading speed in characters per second")
	srtCreateCmd.Flags().String("srt-out", "", "Where to write the generated SRT file")
	srtCreateCmd.Flags().Bool("force", false, "Proceed even while the editor is running")
	srtCreateCmd.MarkFlagRequired("script")
}

func runSrtScan(cmd *cobra.Command, args []string) error {
	folder, _ := cmd.Flags().GetString("folder")
	resp, err := service.ScanSrtMatches(cmd.Context(), ops.ScanSrtMatchesRequest{
		Path:   args[0],
		Folder: folder,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runSrtInsert(cmd *cobra.Command, args []string) error {
	folders, _ := cmd.Flags().GetStringArray("folder")
	titles, _ := cmd.Flags().GetBool("titles")
	sharedTrack, _ := cmd.Flags().GetBool("shared-track")
	selectList, _ := cmd.Flags().GetString("select")

	resp, err := service.InsertSrt(cmd.Context(), ops.InsertSrtRequest{
		Path:           args[0],
		Folders:        folders,
		CreateTitle:    titles,
		SeparateTracks: !sharedTrack,
		Selected:       splitSelection(selectList),
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

// splitSelection parses the --select value into clean base names.
func splitSelection(list string) []string {
	if list == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func runSrtBatchScan(cmd *cobra.Command, args []string) error {
	folders, _ := cmd.Flags().GetStringArray("folder")
	resp, err := service.ScanSrtBatch(cmd.Context(), ops.ScanSrtBatchRequest{Folders: folders})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runSrtBatchInsert(cmd *cobra.Command, args []string) error {
	files, _ := cmd.Flags().GetStringArray("file")
	titles, _ := cmd.Flags().GetBool("titles")
	gapMs, _ := cmd.Flags().GetInt64("gap-ms")

	resp, err := service.InsertSrtBatch(cmd.Context(), ops.InsertSrtBatchRequest{
		Path:        args[0],
		SrtFiles:    files,
		CreateTitle: titles,
		GapMs:       gapMs,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runSrtCreate(cmd *cobra.Command, args []string) error {
	scriptPath, _ := cmd.Flags().GetString("script")
	maxChars, _ := cmd.Flags().GetInt("max-chars")
	readingRate, _ := cmd.Flags().GetFloat64("reading-rate")
	srtOut, _ := cmd.Flags().GetString("srt-out")
	force, _ := cmd.Flags().GetBool("force")

	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return err
	}

	resp, err := service.CreateAndInsertSrt(cmd.Context(), ops.CreateAndInsertSrtRequest{
		Path:        args[0],
		Script:      string(script),
		MaxChars:    maxChars,
		ReadingRate: readingRate,
		SrtPath:     srtOut,
		Force:       force,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}
