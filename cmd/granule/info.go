package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/granule/material"
	"github.com/pthm-cable/granule/world"
)

var infoWorldDir string

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print registry and world metadata summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		mats := material.NewRegistry()
		reactions := material.NewReactions(mats)

		fmt.Printf("materials: %d\n", mats.Len())
		for id := 0; id < mats.Len(); id++ {
			def := mats.Get(uint16(id))
			fmt.Printf("  %3d %-14s %-7s density=%-6.3g structural=%-5v flammable=%v\n",
				def.ID, def.Name, def.Type, def.Density, def.Structural, def.Flammable)
		}
		fmt.Printf("reactions: %d\n", reactions.Len())

		if infoWorldDir != "" {
			store, err := world.NewFileStore(infoWorldDir)
			if err != nil {
				return fmt.Errorf("opening world store: %w", err)
			}
			meta := store.LoadMetadata()
			fmt.Printf("world %q:\n", infoWorldDir)
			fmt.Printf("  version:    %d\n", meta.Version)
			fmt.Printf("  seed:       %d\n", meta.Seed)
			fmt.Printf("  spawn:      (%.1f, %.1f)\n", meta.SpawnPoint[0], meta.SpawnPoint[1])
			fmt.Printf("  created:    %s\n", meta.CreatedAt)
			fmt.Printf("  last play:  %s\n", meta.LastPlayed)
			fmt.Printf("  play time:  %ds\n", meta.PlayTimeSeconds)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().StringVar(&infoWorldDir, "world", "", "world directory to inspect")
}
