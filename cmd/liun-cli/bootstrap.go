package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/luxfi/liun/pkg/bootstrap"
)

// BootstrapOutput reports a multi-path bootstrap session's outcome.
type BootstrapOutput struct {
	NTargets  int               `json:"n_targets"`
	Observed  int               `json:"observed"`
	Corrupted int               `json:"corrupted"`
	Clean     int               `json:"clean"`
	Success   bool              `json:"success"`
	PSKs      map[string]string `json:"psks,omitempty"`
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	if err := ensureOutputDir(); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	eclipseFraction, _ := cmd.Flags().GetFloat64("eclipse-fraction")

	targetIDs := make([]int, nParties)
	for i := range targetIDs {
		targetIDs[i] = i + 1
	}

	mpb := bootstrap.NewMultiPathBootstrap(nParties, threshold)

	observed := make(map[int]bool, int(float64(nParties)*eclipseFraction))
	nObserve := int(float64(nParties) * eclipseFraction)
	for i := 0; i < nObserve && i < nParties; i++ {
		observed[targetIDs[i]] = true
	}

	result, err := mpb.Bootstrap(targetIDs, rand.Reader,
		func(targetID int, secret []byte) bool { return observed[targetID] },
		nil,
	)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	out := BootstrapOutput{
		NTargets:  result.NTargets,
		Observed:  result.Observed,
		Corrupted: result.Corrupted,
		Clean:     result.Clean,
		Success:   result.Success,
	}
	if verbose {
		out.PSKs = make(map[string]string, len(result.PSKs))
		for id, psk := range result.PSKs {
			out.PSKs[strconv.Itoa(id)] = base64.StdEncoding.EncodeToString(psk)
		}
	}

	path := outputFile
	if path == "" {
		path = filepath.Join(outputDir, "bootstrap-result.json")
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("bootstrap: marshaling output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("bootstrap: writing %s: %w", path, err)
	}

	fmt.Printf("Bootstrap %s: %d/%d clean paths (needed 1) written to %s\n",
		successLabel(out.Success), out.Clean, out.NTargets, path)
	if !out.Success {
		os.Exit(1)
	}
	return nil
}

func successLabel(ok bool) string {
	if ok {
		return "succeeded"
	}
	return "failed"
}
