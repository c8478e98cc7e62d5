package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andremarcal/draftsync/internal/config"
	"github.com/andremarcal/draftsync/internal/logging"
	"github.com/andremarcal/draftsync/internal/ops"
)

var (
	verbose bool
	logger  *logging.Logger
	service *ops.Service
)

var rootCmd = &cobra.Command{
	Use:   "draftsync",
	Short: "Timeline automation for video editor draft files",
	Long: `Draftsync edits a video editor's JSON project files directly:
it removes timeline gaps, synchronizes media and subtitles to the audio,
loops tracks, inserts SRT subtitles, and merges projects.

Every mutation snapshots the draft first so it can be undone.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)
		cfg, err := config.New()
		if err != nil {
			return err
		}
		service = ops.NewService(cfg, logger)
		return nil
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// printJSON renders an operation result the way the host UI consumes it.
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
