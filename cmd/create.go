package cmd

import (
	"fmt"
	"strings"

	"github.com/marcus/qn/internal/output"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create [title]",
	Aliases: []string{"add", "new"},
	Short:   "Create a new note",
	GroupID: "notes",
	RunE: func(cmd *cobra.Command, args []string) error {
		title := strings.Join(args, " ")
		content, _ := cmd.Flags().GetString("content")
		if title == "" && content == "" {
			output.Error("title or --content is required")
			return fmt.Errorf("empty note")
		}

		e, cleanup, err := openEngine()
		if err != nil {
			output.Error("%v", err)
			return err
		}
		defer cleanup()

		rec, err := e.CreateNote(title, content)
		if err != nil {
			output.Error("%v", err)
			return err
		}
		maybeAutoSync(e)

		asJSON, _ := cmd.Flags().GetBool("json")
		if asJSON {
			return output.JSON(rec)
		}
		output.Success("created %s", rec.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("content", "c", "", "Note body")
	createCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.AddCommand(createCmd)
}
