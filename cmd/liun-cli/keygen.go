package main

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/luxfi/liun/pkg/dkg"
	"github.com/luxfi/liun/pkg/field"
)

// cryptoSource adapts crypto/rand.Reader to the field.Source interface
// DKG's polynomial sampling expects.
type cryptoSource struct{}

func (cryptoSource) Uint64() uint64 {
	n, err := rand.Int(rand.Reader, new(big.Int).SetUint64(^uint64(0)))
	if err != nil {
		panic(fmt.Errorf("liun-cli: reading randomness: %w", err))
	}
	return n.Uint64()
}

// KeygenOutput is the committee key material produced by a DKG run,
// serialized for the sign/verify subcommands to load.
type KeygenOutput struct {
	NodeIDs        []int            `json:"node_ids"`
	Threshold      int              `json:"threshold"`
	Degree         int              `json:"degree"`
	CombinedShares map[string]uint64 `json:"combined_shares"`
}

func runKeygen(cmd *cobra.Command, args []string) error {
	if err := ensureOutputDir(); err != nil {
		return fmt.Errorf("keygen: %w", err)
	}

	verifyConsistency, _ := cmd.Flags().GetBool("verify-consistency")

	// nParties and threshold are shared with the bootstrap subcommand, whose
	// flag registration overwrites them with its own defaults; restore
	// keygen's defaults for any flag not given on the command line.
	for _, name := range []string{"parties", "threshold"} {
		if f := cmd.Flags().Lookup(name); f != nil && !f.Changed {
			_ = f.Value.Set(f.DefValue)
		}
	}

	nodeIDs := make([]int, nParties)
	for i := range nodeIDs {
		nodeIDs[i] = i + 1
	}

	d := dkg.New(nodeIDs, threshold, cryptoSource{})
	combined, err := d.Run(context.Background(), verifyConsistency)
	if err != nil {
		return fmt.Errorf("keygen: DKG run failed: %w", err)
	}

	out := KeygenOutput{
		NodeIDs:        d.NodeIDs,
		Threshold:      d.Threshold,
		Degree:         d.Degree,
		CombinedShares: make(map[string]uint64, len(combined)),
	}
	for nodeID, share := range combined {
		out.CombinedShares[strconv.Itoa(nodeID)] = share.Uint64()
	}

	path := outputFile
	if path == "" {
		path = filepath.Join(outputDir, fmt.Sprintf("committee-n%d-t%d.json", d.NodeIDs[len(d.NodeIDs)-1], d.Threshold))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("keygen: marshaling output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("keygen: writing %s: %w", path, err)
	}

	if verbose {
		fmt.Printf("DKG completed: %d nodes, threshold %d, degree %d\n", len(out.NodeIDs), out.Threshold, out.Degree)
	}
	fmt.Printf("Committee shares written to %s\n", path)
	return nil
}

func loadKeygenOutput(path string) (KeygenOutput, error) {
	var out KeygenOutput
	data, err := os.ReadFile(path)
	if err != nil {
		return out, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("parsing %s: %w", path, err)
	}
	return out, nil
}

func (o KeygenOutput) shareFor(nodeID int) (field.Element, bool) {
	v, ok := o.CombinedShares[strconv.Itoa(nodeID)]
	return field.New(v), ok
}
