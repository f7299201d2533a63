package cmd

import (
	"fmt"
	"os"

	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/graph/image"
	"github.com/spf13/cobra"
)

type genConfig struct {
	edgeList    string
	numVertices uint64
	numEdges    uint64
	maxWeight   uint64
	seed        int64
	algorithm   string
	outDir      string
}

var genCfg genConfig

var genCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate the vertex and edge images of a graph.",
	Long: `Generate the vertex and edge images of a graph from a text edge ` +
		`list (--edge-list) or from random edges (--edges). The images are ` +
		`written to the --out directory and can be run with "sega run --graph".`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return generate(genCfg)
	},
}

func init() {
	f := genCmd.Flags()
	c := &genCfg

	f.StringVar(&c.edgeList, "edge-list", "", "text edge list, one \"src dst [weight]\" per line")
	f.Uint64Var(&c.numVertices, "num-vertices", 0, "number of vertices, 0 to infer from the edge list")
	f.Uint64Var(&c.numEdges, "edges", 0, "number of random edges when no edge list is given")
	f.Uint64Var(&c.maxWeight, "max-weight", 1, "largest random edge weight")
	f.Int64Var(&c.seed, "seed", 1, "seed of the random edges")
	f.StringVar(&c.algorithm, "algorithm", "bfs", "algorithm the initial vertex values are set for")
	f.StringVar(&c.outDir, "out", "graph", "directory to write the images into")

	rootCmd.AddCommand(genCmd)
}

func generate(c genConfig) error {
	alg, err := graph.ParseAlgorithm(c.algorithm)
	if err != nil {
		return err
	}

	workload := graph.Workload{Algorithm: alg}

	var img *image.Image
	if c.edgeList != "" {
		img, err = buildFromEdgeList(c.edgeList, c.numVertices, workload)
	} else {
		if c.numVertices == 0 {
			return fmt.Errorf("--num-vertices is needed for random edges")
		}

		edges := image.RandomEdges(c.numVertices, c.numEdges, c.maxWeight, c.seed)
		img, err = image.Build(c.numVertices, edges, workload)
	}

	if err != nil {
		return err
	}

	if err := img.Save(c.outDir); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%d vertices and %d edges written to %s\n",
		img.NumVertices, img.NumEdges(), c.outDir)

	return nil
}
