package cmd

import (
	"fmt"

	"github.com/marcus/qn/internal/models"
	"github.com/marcus/qn/internal/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List notes, newest first",
	GroupID: "notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, cleanup, err := openEngine()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer cleanup()

		notes, err := e.GetAllNotes()
		if err != nil {
			output.Error("%v", err)
			return err
		}

		colorFilter, _ := cmd.Flags().GetString("color")
		if colorFilter != "" {
			c := models.NormalizeColor(colorFilter)
			if !models.IsValidColor(c) {
				output.Error("invalid color: %s (valid: %v)", colorFilter, models.Palette())
				return fmt.Errorf("invalid color")
			}
			filtered := notes[:0]
			for _, n := range notes {
				if n.Color == c {
					filtered = append(filtered, n)
				}
			}
			notes = filtered
		}

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return output.JSON(notes)
		}
		if len(notes) == 0 {
			output.Info("no notes")
			return nil
		}
		for i := range notes {
			output.Info("%s", output.FormatNoteLine(&notes[i]))
		}
		return nil
	},
}

func init() {
	listCmd.Flags().String("color", "", "Only show notes with this color")
	listCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(listCmd)
}
