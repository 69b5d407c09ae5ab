package cmd

import (
	"github.com/marcus/qn/internal/output"
	"github.com/marcus/qn/internal/store"
	"github.com/marcus/qn/internal/syncconfig"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show note counts and sync state",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.Open(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer s.Close()

		notes, err := s.CountNotes()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		pending, err := s.CountPendingOps()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		output.Info("notes:   %d", notes)
		if !syncconfig.SyncEnabled() {
			output.Info("sync:    disabled (local only)")
			return nil
		}
		output.Info("sync:    %s", syncconfig.GetServerURL())
		output.Info("queue:   %s", output.FormatPendingCount(pending))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
