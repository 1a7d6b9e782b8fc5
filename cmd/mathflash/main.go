package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mathflash",
	Short: "Adaptive arithmetic practice server",
	Long: `mathflash serves arithmetic practice sessions whose difficulty adapts
to each answer: correctness, speed against the level's time limit and
accuracy over the last five attempts decide whether the next puzzle is
easier, harder or the same.

Environment Variables:
  ADDR                    - listen address (default :8080)
  DB_PATH                 - SQLite database path (default file:mathflash.db)
  LOG_LEVEL               - DEBUG, INFO, WARN or ERROR
  MAX_PUZZLES             - puzzles per session (default 10)
  DEFAULT_DIFFICULTY      - starting level (default Medium)
  WORKER_COUNT            - background workers (default 1)
  WORKER_QUEUE_SIZE       - background queue size (default 16)
  SESSION_IDLE_MINUTES    - idle time before a session is closed (default 30)
  SWEEP_INTERVAL_MINUTES  - how often idle sessions are swept (default 5)`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(decideCmd)
	rootCmd.AddCommand(levelsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
