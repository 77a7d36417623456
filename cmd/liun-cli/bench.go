package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luxfi/liun/pkg/dkg"
	"github.com/luxfi/liun/pkg/metrics"
)

func runBench(cmd *cobra.Command, args []string) error {
	if err := ensureOutputDir(); err != nil {
		return fmt.Errorf("bench: %w", err)
	}

	sizes, _ := cmd.Flags().GetIntSlice("sizes")
	projectTo, _ := cmd.Flags().GetInt("project-to")

	collector := metrics.NewCollector()
	for _, n := range sizes {
		nodeIDs := make([]int, n)
		for i := range nodeIDs {
			nodeIDs[i] = i + 1
		}
		collector.Measure("dkg_run", n, func(m *metrics.Measurement) {
			d := dkg.New(nodeIDs, 0, cryptoSource{})
			if _, err := d.Run(context.Background(), true); err != nil {
				panic(fmt.Errorf("bench: DKG run at n=%d failed: %w", n, err))
			}
		})
		if verbose {
			fmt.Printf("dkg_run n=%d done\n", n)
		}
	}

	reporter := metrics.NewReporter(collector)
	summary := reporter.Summarize("dkg_run")
	fmt.Printf("dkg_run: %d samples, avg %.4fs, range [%.4fs, %.4fs]\n",
		summary.Count, summary.AvgTime, summary.MinTime, summary.MaxTime)

	if projectTo > 0 {
		analyzer := metrics.NewEfficiencyAnalyzer(collector)
		if _, err := analyzer.Analyze("dkg_run", nil, nil); err != nil {
			return fmt.Errorf("bench: fitting scaling curve: %w", err)
		}
		projected, err := analyzer.Extrapolate("dkg_run", []int{projectTo})
		if err != nil {
			return fmt.Errorf("bench: extrapolating: %w", err)
		}
		fmt.Printf("projected dkg_run time at n=%d: %.4fs\n", projectTo, projected[projectTo])
	}

	path := outputFile
	if path == "" {
		path = filepath.Join(outputDir, "bench-dkg.csv")
	}
	if err := reporter.WriteCSV(path, "dkg_run"); err != nil {
		return fmt.Errorf("bench: writing report: %w", err)
	}
	fmt.Printf("Benchmark report written to %s\n", path)
	return nil
}
