package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/vytor/mathflash/internal/adaptive"
	"github.com/vytor/mathflash/internal/difficulty"
)

var decideFlags struct {
	level     string
	correct   bool
	elapsed   float64
	timeLimit float64
	accuracy  float64
}

var decideCmd = &cobra.Command{
	Use:   "decide",
	Short: "Evaluate the difficulty rule for one answer",
	Example: `  mathflash decide --level easy --correct --elapsed 5 --accuracy 0.8
  mathflash decide --level hard --elapsed 14 --accuracy 0.2`,
	RunE: runDecide,
}

func init() {
	f := decideCmd.Flags()
	f.StringVar(&decideFlags.level, "level", "Medium", "current difficulty (Easy, Medium, Hard)")
	f.BoolVar(&decideFlags.correct, "correct", false, "the answer was correct")
	f.Float64Var(&decideFlags.elapsed, "elapsed", 0, "seconds taken to answer")
	f.Float64Var(&decideFlags.timeLimit, "time-limit", 0, "time limit in seconds (default: the level's limit)")
	f.Float64Var(&decideFlags.accuracy, "accuracy", 0, "recent accuracy in [0, 1]")
}

func runDecide(cmd *cobra.Command, args []string) error {
	level, err := difficulty.ParseLevel(decideFlags.level)
	if err != nil {
		return err
	}

	limit := decideFlags.timeLimit
	if !cmd.Flags().Changed("time-limit") {
		limit = difficulty.MustConfigFor(level).TimeLimitSeconds
	}

	res, err := adaptive.Evaluate(adaptive.Input{
		Current:        level,
		Correct:        decideFlags.correct,
		ElapsedSeconds: decideFlags.elapsed,
		TimeLimit:      limit,
		RecentAccuracy: decideFlags.accuracy,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
