package cmd

import (
	"github.com/marcus/qn/internal/models"
	"github.com/marcus/qn/internal/output"
	"github.com/spf13/cobra"
)

var colorCmd = &cobra.Command{
	Use:     "color <id> <color>",
	Short:   "Recolor a note",
	Long:    "Recolor a note. Valid colors: yellow, mint, rose, sky, lavender, sand.",
	GroupID: "notes",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := openEngine()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer cleanup()

		rec, err := e.UpdateColor(args[0], models.NormalizeColor(args[1]))
		if err != nil {
			output.Error("%v", err)
			return err
		}
		maybeAutoSync(e)

		output.Success("recolored %s %s", rec.ID, output.FormatColor(rec.Color))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(colorCmd)
}
