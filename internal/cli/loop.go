package cli

import (
	"github.com/spf13/cobra"

	"github.com/andremarcal/draftsync/internal/ops"
)

var loopCmd = &cobra.Command{
	Use:   "loop",
	Short: "Repeat track segments to fill a time span",
}

var loopMediaCmd = &cobra.Command{
	Use:   "media [project]",
	Short: "Loop the video track under the reference audio",
	Long: `Replace the first video track's segments with copies repeated from
time zero until the reference audio track's end is covered exactly.

Examples:
  draftsync loop media ~/projects/my-video
  draftsync loop media ~/projects/my-video --order sequential`,
	Args: cobra.ExactArgs(1),
	RunE: runLoopMedia,
}

var loopAudioCmd = &cobra.Command{
	Use:   "audio [project]",
	Short: "Loop an audio track to a target duration",
	Long: `Repeat the addressed audio track's segments, in order, until the
target duration is covered exactly.

Example:
  draftsync loop audio ~/projects/my-video --track 1 --target 60000000`,
	Args: cobra.ExactArgs(1),
	RunE: runLoopAudio,
}

func init() {
	rootCmd.AddCommand(loopCmd)
	loopCmd.AddCommand(loopMediaCmd)
	loopCmd.AddCommand(loopAudioCmd)

	loopMediaCmd.Flags().IntP("audio-track", "t", 0, "Index of the reference audio track")
	loopMediaCmd.Flags().StringP("order", "r", "random", "Replication order (random, sequential)")

	loopAudioCmd.Flags().IntP("track", "t", 0, "Index of the audio track to loop")
	loopAudioCmd.Flags().Int64P("target", "d", 0, "Target duration in microseconds")
}

func runLoopMedia(cmd *cobra.Command, args []string) error {
	audioTrack, _ := cmd.Flags().GetInt("audio-track")
	order, _ := cmd.Flags().GetString("order")

	resp, err := service.LoopMedia(cmd.Context(), ops.LoopMediaRequest{
		Path:            args[0],
		AudioTrackIndex: audioTrack,
		Order:           order,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runLoopAudio(cmd *cobra.Command, args []string) error {
	track, _ := cmd.Flags().GetInt("track")
	target, _ := cmd.Flags().GetInt64("target")

	resp, err := service.LoopAudio(cmd.Context(), ops.LoopAudioRequest{
		Path:           args[0],
		TrackIndex:     track,
		TargetDuration: target,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}
