package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/granule/config"
	"github.com/pthm-cable/granule/sim"
	"github.com/pthm-cable/granule/telemetry"
)

var (
	runSteps    int
	runSeed     int64
	runWorldDir string
	runFocusX   float64
	runFocusY   float64
	runCSVDir   string
	runSaveEach int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation headless for a number of steps",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		collector := telemetry.NewCollector(cfg.Telemetry.WindowSteps)
		output, err := telemetry.NewOutputManager(runCSVDir)
		if err != nil {
			return fmt.Errorf("opening telemetry output: %w", err)
		}
		defer output.Close()

		w, err := sim.New(sim.Options{
			Config:   cfg,
			Seed:     runSeed,
			Dir:      runWorldDir,
			Recorder: collector,
		})
		if err != nil {
			return fmt.Errorf("creating world: %w", err)
		}

		w.SetFocus(runFocusX, runFocusY)
		log.Info().
			Int("steps", runSteps).
			Int64("seed", runSeed).
			Str("world", runWorldDir).
			Msg("starting headless run")

		start := time.Now()
		dt := cfg.Step.DT
		for i := 0; i < runSteps; i++ {
			w.Step(dt)

			if runSaveEach > 0 && (i+1)%runSaveEach == 0 {
				saved := w.SaveAll()
				log.Debug().Int("step", i+1).Int("chunks", saved).Msg("periodic save")
			}
			if err := output.WriteWindows(collector.DrainWindows()); err != nil {
				log.Error().Err(err).Msg("failed to write telemetry window")
			}
		}
		elapsed := time.Since(start)

		saved := w.SaveAll()
		collector.Flush()
		if err := output.WriteWindows(collector.DrainWindows()); err != nil {
			log.Error().Err(err).Msg("failed to write final telemetry window")
		}

		log.Info().
			Dur("elapsed", elapsed).
			Float64("steps_per_sec", float64(runSteps)/elapsed.Seconds()).
			Int("chunks_loaded", w.Chunks().Len()).
			Int("chunks_saved", saved).
			Int("debris_in_flight", w.DebrisCount()).
			Msg("run complete")
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runSteps, "steps", 3600, "number of fixed steps to run")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "world seed (config default if zero)")
	runCmd.Flags().StringVar(&runWorldDir, "world", "", "world directory (ephemeral if unset)")
	runCmd.Flags().Float64Var(&runFocusX, "focus-x", 0, "observer x position")
	runCmd.Flags().Float64Var(&runFocusY, "focus-y", 100, "observer y position")
	runCmd.Flags().StringVar(&runCSVDir, "telemetry", "", "directory for telemetry CSV output")
	runCmd.Flags().IntVar(&runSaveEach, "save-every", 0, "save dirty chunks every N steps (0 disables)")
}
