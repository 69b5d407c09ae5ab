package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/marcus/qn/internal/output"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run in the foreground, syncing as changes arrive",
	Long: `Run the sync engine in the foreground until interrupted.

Connectivity edges and remote change notifications trigger sync cycles;
each cycle that changes the local note set reprints the list.`,
	GroupID: "sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := openEngine()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer cleanup()

		if !e.Configured() {
			output.Warning("sync not configured; watching local state only")
		}

		printNotes := func() {
			notes, err := e.GetAllNotes()
			if err != nil {
				output.Error("%v", err)
				return
			}
			output.Info("--- %d note(s) ---", len(notes))
			for i := range notes {
				output.Info("%s", output.FormatNoteLine(&notes[i]))
			}
		}
		printNotes()

		unsub := e.Subscribe(printNotes)
		defer unsub()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return e.Start(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
