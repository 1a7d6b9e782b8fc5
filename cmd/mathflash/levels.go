package main

import (
	"github.com/spf13/cobra"
	"github.com/vytor/mathflash/internal/difficulty"
	"gopkg.in/yaml.v3"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "Print the difficulty table as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{"levels": difficulty.Table()}); err != nil {
			return err
		}
		return enc.Close()
	},
}
