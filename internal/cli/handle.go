package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var handleCmd = &cobra.Command{
	Use:   "handle <payload.json>",
	Short: "Run one webhook payload through the pipeline",
	Long: `Process a single webhook payload from a file (or - for stdin) exactly as
the server would, synchronously, and print the outcome as JSON. Useful
for replaying captured events.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if args[0] == "-" {
			raw, err = os.ReadFile("/dev/stdin")
		} else {
			raw, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read payload: %w", err)
		}

		a, err := buildApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()

		outcome, err := a.service.Handle(raw)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}
