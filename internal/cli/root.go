package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "notebot",
	Short: "notebot serves GitLab comment-triggered agent pipelines",
	Long: `notebot reacts to GitLab webhook note events. When a comment contains a
registered trigger command (e.g. /oc_review), it acknowledges the trigger,
checks out the relevant revision into a disposable workspace, runs the
opencode agent there, and posts the agent's reply back to the thread.

Configuration comes from notebot.yaml plus NOTEBOT_* environment variables.
Run history is stored in ~/.notebot/notebot.db (SQLite).`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./notebot.yaml)")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(handleCmd)
	rootCmd.AddCommand(runsCmd)
}
