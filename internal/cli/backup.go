package cli

import (
	"github.com/spf13/cobra"

	"github.com/andremarcal/draftsync/internal/ops"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Inspect and restore draft snapshots",
}

var backupListCmd = &cobra.Command{
	Use:   "list [project]",
	Short: "List a project's backups, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupList,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [project]",
	Short: "Replace the draft with a backup",
	Long: `Restore the named backup, or the most recent one when --name is
omitted. The current draft is overwritten.

Examples:
  draftsync backup restore ~/projects/my-video
  draftsync backup restore ~/projects/my-video --name draft_content_backup_20260831_120000.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupRestore,
}

var backupDeleteCmd = &cobra.Command{
	Use:   "delete [project]",
	Short: "Delete a single backup by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupDelete,
}

var backupDeleteAllCmd = &cobra.Command{
	Use:   "delete-all [project]",
	Short: "Delete every backup of a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupDeleteAll,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupDeleteCmd)
	backupCmd.AddCommand(backupDeleteAllCmd)

	backupRestoreCmd.Flags().StringP("name", "n", "", "Backup file name (default: newest)")

	backupDeleteCmd.Flags().StringP("name", "n", "", "Backup file name")
	backupDeleteCmd.MarkFlagRequired("name")
}

func runBackupList(cmd *cobra.Command, args []string) error {
	resp, err := service.ListBackups(cmd.Context(), ops.ListBackupsRequest{Path: args[0]})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runBackupRestore(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	resp, err := service.RestoreBackup(cmd.Context(), ops.RestoreBackupRequest{
		Path: args[0],
		Name: name,
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runBackupDelete(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	err := service.DeleteBackup(cmd.Context(), ops.DeleteBackupRequest{
		Path: args[0],
		Name: name,
	})
	if err != nil {
		return err
	}
	logger.Infow("backup deleted", "name", name)
	return nil
}

func runBackupDeleteAll(cmd *cobra.Command, args []string) error {
	resp, err := service.DeleteAllBackups(cmd.Context(), ops.DeleteAllBackupsRequest{Path: args[0]})
	if err != nil {
		return err
	}
	return printJSON(resp)
}
