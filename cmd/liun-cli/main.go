// Command liun-cli drives the Liun threshold-overlay packages from the
// command line: key generation, signing, verification, bootstrap, trust
// computation, and benchmarking.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	outputDir string
	verbose   bool

	// Shared protocol parameters
	nParties  int
	threshold int
	outputFile string
	inputFile  string

	rootCmd = &cobra.Command{
		Use:   "liun-cli",
		Short: "CLI for the Liun information-theoretic threshold overlay",
		Long: `liun-cli drives distributed key generation, unconditionally secure
signing and verification, PSK bootstrap, and trust-graph analysis for the
Liun overlay protocol suite.`,
	}

	keygenCmd = &cobra.Command{
		Use:   "keygen",
		Short: "Run distributed key generation across a simulated committee",
		RunE:  runKeygen,
	}

	signCmd = &cobra.Command{
		Use:   "sign",
		Short: "Produce and combine a threshold signature over a message",
		RunE:  runSign,
	}

	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Verify a combined signature against fresh verification points",
		RunE:  runVerify,
	}

	bootstrapCmd = &cobra.Command{
		Use:   "bootstrap",
		Short: "Run a multi-path PSK bootstrap session",
		RunE:  runBootstrap,
	}

	pagerankCmd = &cobra.Command{
		Use:   "pagerank",
		Short: "Compute personalized PageRank trust scores over a channel graph",
		RunE:  runPagerank,
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Benchmark DKG across network sizes and project scaling",
		RunE:  runBench,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "d", "./liun-data", "Directory for output artifacts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	keygenCmd.Flags().IntVarP(&nParties, "parties", "n", 5, "Number of committee members")
	keygenCmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "Signing threshold (0 = floor(2n/3)+1)")
	keygenCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for committee shares (JSON)")
	keygenCmd.Flags().Bool("verify-consistency", true, "Run consistency verification before combining")

	signCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Committee shares file from keygen (required)")
	signCmd.Flags().Uint64("message", 0, "Message to sign, as a field element")
	signCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for the combined signature (JSON)")
	_ = signCmd.MarkFlagRequired("input")

	verifyCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Signature file from sign (required)")
	_ = verifyCmd.MarkFlagRequired("input")

	bootstrapCmd.Flags().IntVarP(&nParties, "targets", "n", 20, "Number of bootstrap targets")
	bootstrapCmd.Flags().IntVarP(&threshold, "threshold", "t", 14, "Reconstruction threshold")
	bootstrapCmd.Flags().Float64("eclipse-fraction", 0, "Fraction of paths an adversary observes, for simulation")
	bootstrapCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for the bootstrap result (JSON; includes derived PSKs with --verbose)")

	pagerankCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Adjacency list file (JSON: node -> [neighbors]) (required)")
	pagerankCmd.Flags().Int("seed", 0, "Seed node for personalized PageRank")
	pagerankCmd.Flags().Float64("damping", 0.85, "PageRank damping factor")
	pagerankCmd.Flags().Int("iterations", 20, "Number of power-iteration rounds")
	_ = pagerankCmd.MarkFlagRequired("input")

	benchCmd.Flags().IntSlice("sizes", []int{5, 10, 20, 40}, "Committee sizes to benchmark")
	benchCmd.Flags().Int("project-to", 0, "Network size to extrapolate timing for (0 = skip)")
	benchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file for the benchmark report (CSV)")

	rootCmd.AddCommand(keygenCmd, signCmd, verifyCmd, bootstrapCmd, pagerankCmd, benchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func ensureOutputDir() error {
	return os.MkdirAll(outputDir, 0o755)
}
