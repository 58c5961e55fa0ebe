package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lucasnoah/notebot/internal/config"
	"github.com/lucasnoah/notebot/internal/db"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		database, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := database.ListRuns(limit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STARTED\tCOMMAND\tTHREAD\tRESULT\tDURATION\tERROR")
		for _, r := range runs {
			result := "ok"
			if !r.Success {
				result = "failed"
			}
			fmt.Fprintf(w, "%s\t%s\t%s !%d\t%s\t%dms\t%s\n",
				r.StartedAt, r.Command, r.NoteableType, r.NoteableIID, result, r.DurationMs, r.Error)
		}
		return w.Flush()
	},
}

func openDB(cfg *config.Config) (*db.DB, error) {
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		return nil, err
	}
	database, err := db.Open(db.PathIn(dataDir))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return database, nil
}

func init() {
	runsCmd.Flags().Int("limit", 20, "Maximum number of runs to show")
}
