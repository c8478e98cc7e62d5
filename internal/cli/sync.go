package cli

import (
	"github.com/spf13/cobra"

	"github.com/andremarcal/draftsync/internal/ops"
)

var syncCmd = &cobra.Command{
	Use:   "sync [project]",
	Short: "Remove gaps and align media to the audio",
	Long: `Pack the reference audio track so its segments run back-to-back,
then re-time the first video track one-to-one against it. With
--subtitles the first text track follows too.

Examples:
  draftsync sync ~/projects/my-video
  draftsync sync ~/projects/my-video --audio-track 2 --subtitles
  draftsync sync ~/projects/my-video --mode by_subtitle`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().IntP("audio-track", "t", 0, "Index of the reference audio track")
	syncCmd.Flags().StringP("mode", "m", "by_audio", "Alignment mode (by_audio, by_subtitle)")
	syncCmd.Flags().BoolP("subtitles", "s", false, "Also re-time the first text track")
	syncCmd.Flags().Bool("animations", false, "Add entrance animations to still photos")
}

func runSync(cmd *cobra.Command, args []string) error {
	audioTrack, _ := cmd.Flags().GetInt("audio-track")
	mode, _ := cmd.Flags().GetString("mode")
	subtitles, _ := cmd.Flags().GetBool("subtitles")
	animations, _ := cmd.Flags().GetBool("animations")

	resp, err := service.Sync(cmd.Context(), ops.SyncRequest{
		Path:            args[0],
		AudioTrackIndex: audioTrack,
		Mode:            mode,
		SyncSubtitles:   subtitles,
		ApplyAnimations: animations,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}
