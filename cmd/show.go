package cmd

import (
	"fmt"

	"github.com/marcus/qn/internal/output"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show a note with its content",
	GroupID: "notes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := openEngine()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer cleanup()

		rec, err := e.GetNote(args[0])
		if err != nil {
			output.Error("%v", err)
			return err
		}
		if rec == nil {
			output.Error("note not found: %s", args[0])
			return fmt.Errorf("not found")
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return output.JSON(rec)
		}
		output.Info("%s", output.FormatNoteLong(rec))
		return nil
	},
}

func init() {
	showCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(showCmd)
}
