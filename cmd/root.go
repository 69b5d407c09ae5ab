package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	version string
	baseDir string
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "qn",
	Short: "Offline-first note taking CLI",
	Long: `qn - quick notes with offline-first sync.

Every edit applies locally first and is durable immediately. When a sync
server is configured and reachable, changes replicate in the background;
while offline they queue and replay in order on reconnect.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initBaseDir)

	// Accept underscore flag spellings (--log_level) as dashes.
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.AddGroup(
		&cobra.Group{ID: "notes", Title: "Note Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)
	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")
}

// initBaseDir resolves where the local note database lives.
// QN_HOME overrides; default is the user's home directory.
func initBaseDir() {
	if v := os.Getenv("QN_HOME"); v != "" {
		baseDir = v
		return
	}
	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot determine home directory: %v\n", err)
		os.Exit(1)
	}
	baseDir = home
}

// getBaseDir returns the base directory for the note database
func getBaseDir() string {
	return baseDir
}
