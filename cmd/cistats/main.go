package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/visvikbharti/stickforstats-new-sub004/internal/coverage"
	"github.com/visvikbharti/stickforstats-new-sub004/internal/db"
	"github.com/visvikbharti/stickforstats-new-sub004/internal/interval"
	"github.com/visvikbharti/stickforstats-new-sub004/internal/variate"
)

var dbPath string

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "cistats.db"
	}
	return filepath.Join(home, ".cistats", "cistats.db")
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "cistats",
		Short: "Confidence-interval estimation and coverage verification",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "database path")

	rootCmd.AddCommand(intervalCmd())
	rootCmd.AddCommand(simulateCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(deleteCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func intervalCmd() *cobra.Command {
	var (
		dataStr   string
		dataFile  string
		methodStr string
		level     float64
		knownSD   float64
		resamples int
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "interval",
		Short: "Compute a confidence interval for a data set",
		RunE: func(cmd *cobra.Command, args []string) error {
			sample, err := loadSample(dataStr, dataFile)
			if err != nil {
				return err
			}

			method, err := interval.ParseMethod(methodStr)
			if err != nil {
				return err
			}

			var ci interval.ConfidenceInterval
			switch method {
			case interval.MethodT:
				ci, err = interval.TInterval(sample, level)
			case interval.MethodZ:
				ci, err = interval.ZInterval(sample, knownSD, level)
			case interval.MethodBootstrapPercentile:
				ci, err = interval.BootstrapPercentile(variate.NewSource(seed), sample, level, resamples)
			case interval.MethodBootstrapBCa:
				ci, err = interval.BootstrapBCa(variate.NewSource(seed), sample, level, resamples)
			}
			if err != nil {
				return err
			}

			printInterval(ci, level, len(sample))
			return nil
		},
	}

	cmd.Flags().StringVar(&dataStr, "data", "", "comma-separated sample values")
	cmd.Flags().StringVar(&dataFile, "file", "", "file with one value per line")
	cmd.Flags().StringVar(&methodStr, "method", "t", "interval method (t, z, bootstrap-percentile, bootstrap-bca)")
	cmd.Flags().Float64Var(&level, "level", 0.95, "confidence level in (0,1)")
	cmd.Flags().Float64Var(&knownSD, "known-sd", 0, "known population std dev (z method)")
	cmd.Flags().IntVar(&resamples, "resamples", interval.DefaultResamples, "bootstrap resample count")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")

	return cmd
}

func simulateCmd() *cobra.Command {
	var (
		distStr   string
		mean      float64
		sd        float64
		p         float64
		methodStr string
		level     float64
		knownSD   float64
		n         int
		sims      int
		resamples int
		workers   int
		seed      int64
		record    bool
		notes     string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Estimate empirical coverage of an interval method",
		RunE: func(cmd *cobra.Command, args []string) error {
			method, err := interval.ParseMethod(methodStr)
			if err != nil {
				return err
			}

			spec := coverage.DistributionSpec{
				Kind:   coverage.Distribution(distStr),
				Mean:   mean,
				StdDev: sd,
				P:      p,
			}

			cfg := coverage.Config{
				Distribution:    spec,
				Method:          method,
				KnownStdDev:     knownSD,
				ConfidenceLevel: level,
				SampleSize:      n,
				NumSimulations:  sims,
				Resamples:       resamples,
				Workers:         workers,
				Seed:            seed,
			}

			start := time.Now()
			result, err := coverage.Simulate(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			printCoverage(cfg, result, elapsed)

			if !record {
				return nil
			}

			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
				}
			}()

			simID, err := database.InsertSimulation(&db.Simulation{
				Method:            string(method),
				Distribution:      string(spec.Kind),
				TrueParameter:     spec.TrueParameter(),
				SampleSize:        n,
				NumSimulations:    sims,
				ConfidenceLevel:   level,
				Resamples:         resamples,
				Seed:              seed,
				EmpiricalCoverage: result.EmpiricalCoverage,
				AverageWidth:      result.AverageWidth,
				RunDate:           time.Now().Format(time.RFC3339),
				Notes:             notes,
			})
			if err != nil {
				return err
			}

			rows := make([]db.TrialRow, len(result.Trials))
			for i, t := range result.Trials {
				rows[i] = db.TrialRow{
					SimulationID: simID,
					TrialIndex:   i,
					SampleMean:   t.SampleMean,
					LowerBound:   t.Lower,
					UpperBound:   t.Upper,
					Covers:       t.Covers,
				}
			}
			if err := database.InsertTrials(rows); err != nil {
				return err
			}

			color.Green("Recorded simulation #%d", simID)
			return nil
		},
	}

	cmd.Flags().StringVar(&distStr, "dist", "normal", "sampling distribution (normal, bernoulli)")
	cmd.Flags().Float64Var(&mean, "mean", 10, "normal mean")
	cmd.Flags().Float64Var(&sd, "sd", 2, "normal std dev")
	cmd.Flags().Float64Var(&p, "p", 0.5, "bernoulli success probability")
	cmd.Flags().StringVar(&methodStr, "method", "t", "interval method (t, z, bootstrap-percentile, bootstrap-bca)")
	cmd.Flags().Float64Var(&level, "level", 0.95, "confidence level in (0,1)")
	cmd.Flags().Float64Var(&knownSD, "known-sd", 0, "known population std dev (z method, defaults to --sd)")
	cmd.Flags().IntVar(&n, "n", 30, "sample size per trial")
	cmd.Flags().IntVar(&sims, "sims", 2000, "number of simulated trials")
	cmd.Flags().IntVar(&resamples, "resamples", interval.DefaultResamples, "bootstrap resample count")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker count (0 = GOMAXPROCS)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time-based)")
	cmd.Flags().BoolVar(&record, "record", false, "record the run to the database")
	cmd.Flags().StringVar(&notes, "notes", "", "optional notes")

	return cmd
}

func listCmd() *cobra.Command {
	var limit int
	var method string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded simulations",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
				}
			}()

			sims, err := database.ListSimulations(limit, method)
			if err != nil {
				return err
			}

			if len(sims) == 0 {
				fmt.Println("No simulations found")
				return nil
			}

			cyan := color.New(color.FgCyan)
			dim := color.New(color.Faint)

			_, _ = cyan.Printf("%-6s %-22s %-10s %6s %6s %9s %9s %-20s\n",
				"ID", "Method", "Dist", "N", "Sims", "Coverage", "Width", "Date")
			_, _ = dim.Println(strings.Repeat("-", 96))

			for _, s := range sims {
				date := s.RunDate
				if len(date) > 19 {
					date = date[:19]
				}
				fmt.Printf("%-6d %-22s %-10s %6d %6d %8.1f%% %9.4f %-20s\n",
					s.ID, s.Method, s.Distribution, s.SampleSize, s.NumSimulations,
					s.EmpiricalCoverage*100, s.AverageWidth, date)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "max simulations to show")
	cmd.Flags().StringVar(&method, "method", "", "filter by method")

	return cmd
}

func showCmd() *cobra.Command {
	var trials int

	cmd := &cobra.Command{
		Use:   "show [simulation_id]",
		Short: "Show details of a recorded simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid simulation ID: %w", err)
			}

			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
				}
			}()

			sim, err := database.GetSimulation(id)
			if err != nil {
				return fmt.Errorf("simulation not found: %w", err)
			}

			cyan := color.New(color.FgCyan)
			dim := color.New(color.Faint)

			_, _ = cyan.Printf("Simulation #%d\n", sim.ID)
			_, _ = dim.Println(strings.Repeat("-", 50))
			fmt.Printf("Method:       %s\n", sim.Method)
			fmt.Printf("Distribution: %s (true parameter %.4f)\n", sim.Distribution, sim.TrueParameter)
			fmt.Printf("Sample size:  %d\n", sim.SampleSize)
			fmt.Printf("Trials:       %d\n", sim.NumSimulations)
			fmt.Printf("Level:        %.0f%%\n", sim.ConfidenceLevel*100)
			fmt.Printf("Seed:         %d\n", sim.Seed)
			fmt.Printf("Coverage:     %.2f%% (nominal %.0f%%)\n",
				sim.EmpiricalCoverage*100, sim.ConfidenceLevel*100)
			fmt.Printf("Avg width:    %.4f\n", sim.AverageWidth)
			fmt.Printf("Date:         %s\n", sim.RunDate)
			if sim.Notes != "" {
				fmt.Printf("Notes:        %s\n", sim.Notes)
			}

			if trials <= 0 {
				return nil
			}

			rows, err := database.GetTrials(id)
			if err != nil {
				return err
			}
			if len(rows) > trials {
				rows = rows[:trials]
			}

			fmt.Println()
			_, _ = cyan.Printf("%-8s %12s %12s %12s %s\n", "Trial", "Mean", "Lower", "Upper", "Covers")
			_, _ = dim.Println(strings.Repeat("-", 56))
			for _, r := range rows {
				mark := color.GreenString("yes")
				if !r.Covers {
					mark = color.RedString("no")
				}
				fmt.Printf("%-8d %12.4f %12.4f %12.4f %s\n",
					r.TrialIndex, r.SampleMean, r.LowerBound, r.UpperBound, mark)
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&trials, "trials", 0, "show the first N per-trial rows")

	return cmd
}

func deleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [simulation_id]",
		Short: "Delete a recorded simulation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid simulation ID: %w", err)
			}

			database, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() {
				if err := database.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Error closing database: %v\n", err)
				}
			}()

			if err := database.DeleteSimulation(id); err != nil {
				return err
			}

			color.Green("Deleted simulation #%d", id)
			return nil
		},
	}

	return cmd
}

func loadSample(dataStr, dataFile string) ([]float64, error) {
	if dataStr == "" && dataFile == "" {
		return nil, fmt.Errorf("either --data or --file is required")
	}
	if dataStr != "" && dataFile != "" {
		return nil, fmt.Errorf("--data and --file are mutually exclusive")
	}

	var fields []string
	if dataStr != "" {
		fields = strings.Split(dataStr, ",")
	} else {
		raw, err := os.ReadFile(dataFile)
		if err != nil {
			return nil, fmt.Errorf("read data file: %w", err)
		}
		fields = strings.Fields(string(raw))
	}

	sample := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("parse value %q: %w", f, err)
		}
		sample = append(sample, v)
	}
	if len(sample) == 0 {
		return nil, fmt.Errorf("no data values supplied")
	}
	return sample, nil
}

func printInterval(ci interval.ConfidenceInterval, level float64, n int) {
	cyan := color.New(color.FgCyan)
	dim := color.New(color.Faint)

	_, _ = cyan.Printf("%.0f%% confidence interval (%s, n=%d)\n", level*100, ci.Method, n)
	_, _ = dim.Println(strings.Repeat("-", 50))
	fmt.Printf("Point estimate: %.6f\n", ci.PointEstimate)
	fmt.Printf("Interval:       [%.6f, %.6f]\n", ci.Lower, ci.Upper)
	fmt.Printf("Margin:         %.6f\n", ci.MarginOfError)
	fmt.Printf("Std error:      %.6f\n", ci.StandardError)
	if ci.CriticalValue != 0 {
		fmt.Printf("Critical value: %.6f\n", ci.CriticalValue)
	}
}

func printCoverage(cfg coverage.Config, r *coverage.Result, elapsed time.Duration) {
	cyan := color.New(color.FgCyan)
	dim := color.New(color.Faint)

	_, _ = cyan.Printf("Coverage of %s interval at %.0f%% (%s, n=%d, %d trials)\n",
		cfg.Method, cfg.ConfidenceLevel*100, cfg.Distribution.Kind, cfg.SampleSize, r.NumSimulations)
	_, _ = dim.Println(strings.Repeat("-", 60))

	diff := r.EmpiricalCoverage - r.TheoreticalCoverage
	line := fmt.Sprintf("Empirical coverage: %.2f%% (nominal %.0f%%, %+.2f pp)",
		r.EmpiricalCoverage*100, r.TheoreticalCoverage*100, diff*100)
	if diff < -0.02 {
		color.Red("%s", line)
	} else {
		color.Green("%s", line)
	}
	fmt.Printf("Average width:      %.4f\n", r.AverageWidth)
	fmt.Printf("Elapsed:            %s\n", elapsed.Round(time.Millisecond))
}
