package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/luxfi/liun/pkg/field"
	"github.com/luxfi/liun/pkg/node"
	"github.com/luxfi/liun/pkg/polynomial"
	"github.com/luxfi/liun/pkg/uss"
)

// SignOutput is a combined threshold signature plus the verification
// points needed to check it, serialized for the verify subcommand.
type SignOutput struct {
	Message        uint64   `json:"message"`
	Sigma          uint64   `json:"sigma"`
	Degree         int      `json:"degree"`
	CommitteeIDs   []uint64 `json:"committee_ids"`
	VerifierPoints []Point  `json:"verifier_points"`
}

// Point is a JSON-friendly (x, F(x)) evaluation point.
type Point struct {
	X uint64 `json:"x"`
	Y uint64 `json:"y"`
}

func runSign(cmd *cobra.Command, args []string) error {
	committee, err := loadKeygenOutput(inputFile)
	if err != nil {
		return fmt.Errorf("sign: %w", err)
	}

	messageRaw, _ := cmd.Flags().GetUint64("message")
	message := field.New(messageRaw)

	// The signing committee is every node up to the threshold; the
	// remaining nodes' shares become the verifier's evaluation points.
	signingIDs := committee.NodeIDs[:committee.Threshold]
	verifierIDs := committee.NodeIDs[committee.Threshold:]

	committeeIDs := make([]field.Element, len(signingIDs))
	for i, id := range signingIDs {
		committeeIDs[i] = field.New(uint64(id))
	}

	partials := make([]field.Element, 0, len(signingIDs))
	for _, id := range signingIDs {
		shareY, ok := committee.shareFor(id)
		if !ok {
			return fmt.Errorf("sign: missing share for committee member %d", id)
		}
		signer := uss.NewPartialSigner(field.New(uint64(id)), shareY)
		p, err := signer.PartialSign(message, committeeIDs)
		if err != nil {
			return fmt.Errorf("sign: node %d: %w", id, err)
		}
		partials = append(partials, p)
	}
	sigma := node.CombineSignatures(partials)

	verifierPoints := make([]Point, 0, len(verifierIDs))
	for _, id := range verifierIDs {
		y, ok := committee.shareFor(id)
		if !ok {
			continue
		}
		verifierPoints = append(verifierPoints, Point{X: uint64(id), Y: y.Uint64()})
	}

	out := SignOutput{
		Message:        message.Uint64(),
		Sigma:          sigma.Uint64(),
		Degree:         committee.Degree,
		CommitteeIDs:   uint64Slice(committeeIDs),
		VerifierPoints: verifierPoints,
	}

	path := outputFile
	if path == "" {
		path = filepath.Join(outputDir, fmt.Sprintf("signature-%d.json", message.Uint64()))
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("sign: marshaling output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("sign: writing %s: %w", path, err)
	}

	fmt.Printf("Signature sigma=%d over message=%d written to %s\n", out.Sigma, out.Message, path)
	return nil
}

func uint64Slice(elems []field.Element) []uint64 {
	out := make([]uint64, len(elems))
	for i, e := range elems {
		out[i] = e.Uint64()
	}
	return out
}

func runVerify(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("verify: reading %s: %w", inputFile, err)
	}
	var sig SignOutput
	if err := json.Unmarshal(data, &sig); err != nil {
		return fmt.Errorf("verify: parsing %s: %w", inputFile, err)
	}

	points := make([]polynomial.Point, len(sig.VerifierPoints))
	for i, p := range sig.VerifierPoints {
		points[i] = polynomial.Point{X: field.New(p.X), Y: field.New(p.Y)}
	}
	verifier := uss.NewVerifier(points, sig.Degree)

	ok, err := verifier.Verify(field.New(sig.Message), field.New(sig.Sigma))
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	if ok {
		fmt.Println("VALID")
		return nil
	}
	fmt.Println("FORGED")
	os.Exit(1)
	return nil
}
