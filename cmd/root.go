package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/landsim/landsim/sim/restart"
	"github.com/landsim/landsim/sim/scenario"
	"github.com/landsim/landsim/sim/simulation"
)

var (
	scenarioPath string // Path to the scenario YAML
	seed         int64  // Overrides the scenario seed when set
	years        int    // Overrides the scenario year count when set
	logLevel     string // Log verbosity level
	workers      int    // Income update workers (0 = GOMAXPROCS)
	restartDir   string // Directory receiving restart tables every year
	restartDB    string // SQLite database receiving restart snapshots every year
	resumeDB     string // SQLite database the run resumes its land state from
	resumeRun    string // Run id to resume; empty picks the newest saved run
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "landsim",
	Short: "Year-by-year housing and job market simulator over zones and regions",
}

// runOptions carries the parsed run flags.
type runOptions struct {
	scenarioPath string
	seed         *int64
	years        *int
	workers      int
	restartDir   string
	restartDB    string
	resumeDB     string
	resumeRun    string
}

// runCmd executes a scenario using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario",
	Run: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if scenarioPath == "" {
			logrus.Fatalf("Scenario file not provided. Exiting simulation.")
		}
		opts := runOptions{
			scenarioPath: scenarioPath,
			workers:      workers,
			restartDir:   restartDir,
			restartDB:    restartDB,
			resumeDB:     resumeDB,
			resumeRun:    resumeRun,
		}
		if cmd.Flags().Changed("seed") {
			opts.seed = &seed
		}
		if cmd.Flags().Changed("years") {
			opts.years = &years
		}
		if err := runScenario(opts, os.Stdout); err != nil {
			logrus.Fatalf("%v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// runScenario loads, validates and runs a scenario, then prints the report to out.
func runScenario(opts runOptions, out io.Writer) error {
	spec, err := scenario.Load(opts.scenarioPath)
	if err != nil {
		return err
	}
	if opts.seed != nil {
		logrus.Infof("CLI --seed %d overrides scenario seed %d", *opts.seed, spec.Seed)
		spec.Seed = *opts.seed
	}
	if opts.years != nil {
		spec.Years = *opts.years
	}
	if opts.resumeDB != "" {
		logrus.Infof("CLI --resume-db %s replaces the scenario restart state", opts.resumeDB)
		spec.Restart = &scenario.RestartSpec{DB: opts.resumeDB, Run: opts.resumeRun}
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("invalid scenario %s: %w", opts.scenarioPath, err)
	}

	s, err := simulation.FromScenario(spec, opts.workers)
	if err != nil {
		return err
	}
	if opts.restartDir != "" {
		s.AddExporter(simulation.RestartDir{Dir: opts.restartDir, LandUseColumn: spec.LandUseColumn})
	}
	if opts.restartDB != "" {
		store, err := restart.OpenSQLite(opts.restartDB)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		if err := store.StartRun(spec.Seed); err != nil {
			return err
		}
		s.AddExporter(store)
	}

	logrus.Infof("Starting simulation: %d years from %d, seed=%d, %d zones",
		spec.Years, spec.StartYear, spec.Seed, len(spec.Zones))
	startTime := time.Now()
	if err := s.Run(); err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	PrintReport(out, s, time.Since(startTime))
	return nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&scenarioPath, "scenario", "", "Path to scenario YAML")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed overriding the scenario seed")
	runCmd.Flags().IntVar(&years, "years", 1, "Number of years overriding the scenario")
	runCmd.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Income update workers (0 = one per CPU)")
	runCmd.Flags().StringVar(&restartDir, "restart-dir", "", "Directory for restart tables written every year")
	runCmd.Flags().StringVar(&restartDB, "restart-db", "", "SQLite database for restart snapshots")
	runCmd.Flags().StringVar(&resumeDB, "resume-db", "", "SQLite restart database to resume the land state from")
	runCmd.Flags().StringVar(&resumeRun, "resume-run", "", "Run id to resume from --resume-db (default: newest saved run)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
