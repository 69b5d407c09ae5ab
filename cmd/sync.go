package cmd

import (
	"context"
	"fmt"

	"github.com/marcus/qn/internal/engine"
	"github.com/marcus/qn/internal/output"
	"github.com/marcus/qn/internal/syncconfig"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Run a sync cycle against the remote server",
	GroupID: "sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := openEngine()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer cleanup()

		if !e.Configured() {
			output.Error("sync not configured (run: qn auth login, then qn config sync on)")
			return fmt.Errorf("sync not configured")
		}

		statusOnly, _ := cmd.Flags().GetBool("status")
		if statusOnly {
			return runSyncStatus(e)
		}

		rep := e.SyncNow(context.Background())
		if rep.Err != nil {
			output.Error("sync failed: %v", rep.Err)
			return rep.Err
		}
		output.Success("synced: pushed %d, pulled %d (adopted %d, updated %d)",
			rep.Pushed, rep.Pulled, rep.Adopted, rep.Overwritten)
		if rep.Dropped > 0 {
			output.Warning("dropped %d operation(s) whose records vanished remotely", rep.Dropped)
		}
		return nil
	},
}

func runSyncStatus(e *engine.Engine) error {
	pending, err := e.PendingOps()
	if err != nil {
		output.Error("%v", err)
		return err
	}
	output.Info("server:  %s", syncconfig.GetServerURL())
	output.Info("state:   %s", e.State())
	output.Info("queue:   %s", output.FormatPendingCount(pending))
	return nil
}

// maybeAutoSync opportunistically drains the queue after a mutation.
// Best effort only: a failure just leaves the operations queued.
func maybeAutoSync(e *engine.Engine) {
	if !e.Configured() || !syncconfig.AutoSyncEnabled() {
		return
	}
	pending, err := e.PendingOps()
	if err != nil || pending == 0 {
		return
	}
	if rep := e.SyncNow(context.Background()); rep.Err != nil {
		output.Warning("background sync deferred: %v", rep.Err)
	}
}

func init() {
	syncCmd.Flags().Bool("status", false, "Show sync status instead of syncing")
	rootCmd.AddCommand(syncCmd)
}
