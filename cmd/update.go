package cmd

import (
	"fmt"

	"github.com/marcus/qn/internal/output"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Aliases: []string{"edit"},
	Short:   "Update a note's title or content",
	GroupID: "notes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("title") && !cmd.Flags().Changed("content") {
			output.Error("nothing to update (use --title and/or --content)")
			return fmt.Errorf("no changes")
		}

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

		title, content := rec.Title, rec.Content
		if cmd.Flags().Changed("title") {
			title, _ = cmd.Flags().GetString("title")
		}
		if cmd.Flags().Changed("content") {
			content, _ = cmd.Flags().GetString("content")
		}

		rec, err = e.UpdateNote(args[0], title, content)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		maybeAutoSync(e)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return output.JSON(rec)
		}
		output.Success("updated %s", rec.ID)
		return nil
	},
}

func init() {
	updateCmd.Flags().StringP("title", "t", "", "New title")
	updateCmd.Flags().StringP("content", "c", "", "New body")
	updateCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(updateCmd)
}
