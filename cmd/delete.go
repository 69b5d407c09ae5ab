package cmd

import (
	"github.com/marcus/qn/internal/output"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a note",
	GroupID: "notes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := openEngine()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer cleanup()

		if err := e.DeleteNote(args[0]); err != nil {
			output.Error("%v", err)
			return err
		}
		maybeAutoSync(e)

		output.Success("deleted %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
