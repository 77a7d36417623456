package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/luxfi/liun/pkg/overlay"
)

func runPagerank(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("pagerank: reading %s: %w", inputFile, err)
	}
	var adjacency map[string][]int
	if err := json.Unmarshal(data, &adjacency); err != nil {
		return fmt.Errorf("pagerank: parsing %s: %w", inputFile, err)
	}

	adj := make(map[int][]int, len(adjacency))
	for k, neighbors := range adjacency {
		var id int
		if _, err := fmt.Sscanf(k, "%d", &id); err != nil {
			return fmt.Errorf("pagerank: invalid node id %q: %w", k, err)
		}
		adj[id] = neighbors
	}
	g := overlay.FromAdjacency(adj)

	seed, _ := cmd.Flags().GetInt("seed")
	damping, _ := cmd.Flags().GetFloat64("damping")
	iterations, _ := cmd.Flags().GetInt("iterations")

	scores := overlay.PersonalizedPageRank(seed, g, damping, iterations)

	nodes := make([]int, 0, len(scores))
	for id := range scores {
		nodes = append(nodes, id)
	}
	sort.Slice(nodes, func(i, j int) bool { return scores[nodes[i]] > scores[nodes[j]] })

	for _, id := range nodes {
		fmt.Printf("%d\t%.6f\n", id, scores[id])
	}
	return nil
}
