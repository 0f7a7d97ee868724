package main

import (
	"github.com/spf13/cobra"

	"github.com/1broseidon/bongocat/internal/ipc"
	"github.com/1broseidon/bongocat/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Long:  "Show live daemon status and the remembered per-app positions. Keys: 1-4 move to a corner, v toggles visibility, c toggles click animation, d forgets the selected app, h hides the cat for it, X clears everything.",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return tui.Run(ipc.NewClient())
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
