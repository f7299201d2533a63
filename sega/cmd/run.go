package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/browser"
	"github.com/sarchlab/sega/datarecording"
	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/graph/coalesce"
	"github.com/sarchlab/sega/graph/image"
	"github.com/sarchlab/sega/graph/mpu"
	"github.com/sarchlab/sega/monitoring"
	"github.com/sarchlab/sega/platform"
	"github.com/sarchlab/sega/sim"
	"github.com/sarchlab/sega/tracing"
	"github.com/spf13/cobra"
)

type runConfig struct {
	graphDir    string
	edgeList    string
	numVertices uint64

	algorithm string
	alpha     float32
	threshold float32
	initAddr  uint64
	initValue uint32
	seedAll   bool

	numTiles  int
	partition string
	freqGHz   float64
	maxCycles uint64

	intakeSize             int
	registerFileSize       int
	numReducePerCycle      int
	numFlushPerCycle       int
	cacheCapacity          int
	numWays                int
	numMSHR                int
	numTargetsPerMSHR      int
	rmwQueueSize           int
	activationQueueSize    int
	maxActivationsPerCycle int
	victim                 string
	victimSeed             int64
	pushQueueSize          int
	pushRespQueueSize      int
	numPushPerCycle        int

	vertexLatency int
	vertexWidth   int
	vertexAtom    uint64
	edgeLatency   int
	edgeWidth     int
	edgeAtom      uint64

	recordDB    string
	trace       bool
	monitor     bool
	monitorPort int
	openBrowser bool
	quiet       bool
	logEvents   bool
}

var runCfg runConfig

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an algorithm on a graph.",
	Long: `Run an algorithm on a graph given either as saved images ` +
		`(--graph) or as a text edge list (--edge-list). The final vertex ` +
		`values are printed one per line.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := runCfg
		cfg.seedAll = !cmd.Flags().Changed("init-addr")

		return runSimulation(cfg, cmd.OutOrStdout())
	},
}

func init() {
	f := runCmd.Flags()
	c := &runCfg

	f.StringVar(&c.graphDir, "graph", "", "directory with the vertices and edgelist images")
	f.StringVar(&c.edgeList, "edge-list", "", "text edge list, one \"src dst [weight]\" per line")
	f.Uint64Var(&c.numVertices, "num-vertices", 0, "number of vertices of the edge list, 0 to infer")

	f.StringVar(&c.algorithm, "algorithm", "bfs", "bfs, sssp, or pr")
	f.Float32Var(&c.alpha, "alpha", 0.85, "damping factor of page rank")
	f.Float32Var(&c.threshold, "threshold", 0.0001, "smallest page rank change that is propagated")
	f.Uint64Var(&c.initAddr, "init-addr", 0, "address of the seed vertex; page rank seeds every vertex if not given")
	f.Uint32Var(&c.initValue, "init-value", 0, "value of the seed update, page rank always uses 1-alpha")

	f.IntVar(&c.numTiles, "tiles", 1, "number of tiles")
	f.StringVar(&c.partition, "partition", "", "vertex ranges owned by the tiles, as \"0-100:0,100-200:1\"")
	f.Float64Var(&c.freqGHz, "freq", 1, "frequency in GHz")
	f.Uint64Var(&c.maxCycles, "max-cycles", 0, "stop after this many cycles, 0 for no limit")

	f.IntVar(&c.intakeSize, "intake", 32, "intake queue capacity of a work-list engine")
	f.IntVar(&c.registerFileSize, "register-file", 64, "merge buffer capacity of a work-list engine")
	f.IntVar(&c.numReducePerCycle, "reduce-per-cycle", 1, "updates merged per cycle")
	f.IntVar(&c.numFlushPerCycle, "flush-per-cycle", 1, "merged updates sent to the cache per cycle")
	f.IntVar(&c.cacheCapacity, "cache-capacity", 256, "vertices a cache engine can hold")
	f.IntVar(&c.numWays, "ways", 16, "associativity of the cache engine")
	f.IntVar(&c.numMSHR, "mshrs", 32, "miss trackers of a cache engine")
	f.IntVar(&c.numTargetsPerMSHR, "targets-per-mshr", 8, "updates coalesced into one miss tracker")
	f.IntVar(&c.rmwQueueSize, "rmw-queue", 16, "updates waiting for the cache engine")
	f.IntVar(&c.activationQueueSize, "activation-queue", 16, "activations a cache engine holds for the push engine")
	f.IntVar(&c.maxActivationsPerCycle, "max-activations", 1, "activations sent to the push engine per cycle")
	f.StringVar(&c.victim, "victim", "lru", "victim selection, lru or random")
	f.Int64Var(&c.victimSeed, "victim-seed", 1, "seed of the random victim selection")
	f.IntVar(&c.pushQueueSize, "push-queue", 32, "activations waiting for the push engine")
	f.IntVar(&c.pushRespQueueSize, "push-resp-queue", 32, "outstanding edge reads and responses of a push engine")
	f.IntVar(&c.numPushPerCycle, "push-per-cycle", 1, "updates pushed per cycle")

	f.IntVar(&c.vertexLatency, "vertex-latency", 30, "vertex memory latency in cycles")
	f.IntVar(&c.vertexWidth, "vertex-width", 1, "vertex memory requests served per cycle")
	f.Uint64Var(&c.vertexAtom, "vertex-atom", 64, "vertex memory atom size in bytes")
	f.IntVar(&c.edgeLatency, "edge-latency", 30, "edge memory latency in cycles")
	f.IntVar(&c.edgeWidth, "edge-width", 1, "edge memory requests served per cycle")
	f.Uint64Var(&c.edgeAtom, "edge-atom", 64, "edge memory atom size in bytes")

	f.StringVar(&c.recordDB, "record-db", "", "SQLite file to record tile statistics into, without extension")
	f.BoolVar(&c.trace, "trace", false, "record the tasks of the engines")
	f.BoolVar(&c.monitor, "monitor", false, "serve the web monitor while running")
	f.IntVar(&c.monitorPort, "monitor-port", 0, "port of the web monitor, random if 0")
	f.BoolVar(&c.openBrowser, "open-browser", false, "open the web monitor in a browser")
	f.BoolVar(&c.quiet, "quiet", false, "do not print the vertex values")
	f.BoolVar(&c.logEvents, "log-events", false, "print every event to stderr")

	rootCmd.AddCommand(runCmd)
}

func (c runConfig) workload() (graph.Workload, error) {
	alg, err := graph.ParseAlgorithm(c.algorithm)
	if err != nil {
		return graph.Workload{}, err
	}

	switch alg {
	case graph.BFS:
		return graph.NewBFS(), nil
	case graph.SSSP:
		return graph.NewSSSP(), nil
	default:
		return graph.NewPageRank(c.alpha, c.threshold), nil
	}
}

func (c runConfig) loadImage(workload graph.Workload) (*image.Image, error) {
	if (c.graphDir == "") == (c.edgeList == "") {
		return nil, fmt.Errorf("exactly one of --graph and --edge-list is needed")
	}

	if c.graphDir != "" {
		return image.Load(c.graphDir)
	}

	return buildFromEdgeList(c.edgeList, c.numVertices, workload)
}

func buildFromEdgeList(
	path string,
	numVertices uint64,
	workload graph.Workload,
) (*image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	edges, err := image.ParseEdgeList(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if numVertices == 0 {
		numVertices = image.NumVerticesOf(edges)
	}

	return image.Build(numVertices, edges, workload)
}

// parsePartition reads vertex ID ranges such as "0-100:0,100-200:1". The tile
// of a range is its position in the list if omitted.
func parsePartition(s string) (*graph.PartitionMap, error) {
	p := graph.NewPartitionMap()

	for i, item := range strings.Split(s, ",") {
		rangeStr, tileStr, hasTile := strings.Cut(strings.TrimSpace(item), ":")

		startStr, endStr, ok := strings.Cut(rangeStr, "-")
		if !ok {
			return nil, fmt.Errorf("range %q is not \"start-end\"", rangeStr)
		}

		start, err := strconv.ParseUint(startStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", rangeStr, err)
		}

		end, err := strconv.ParseUint(endStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", rangeStr, err)
		}

		tile := i
		if hasTile {
			tile, err = strconv.Atoi(tileStr)
			if err != nil {
				return nil, fmt.Errorf("tile of range %q: %w", rangeStr, err)
			}
		}

		p.AddRange(graph.VertexAddr(start), graph.VertexAddr(end), tile)
	}

	return p, nil
}

func (c runConfig) victimFinder() (coalesce.VictimFinder, error) {
	switch c.victim {
	case "lru":
		return coalesce.NewLRUVictimFinder(), nil
	case "random":
		return coalesce.NewRandomVictimFinder(c.victimSeed), nil
	default:
		return nil, fmt.Errorf("unknown victim selection %q", c.victim)
	}
}

func (c runConfig) tileBuilder() (mpu.Builder, error) {
	finder, err := c.victimFinder()
	if err != nil {
		return mpu.Builder{}, err
	}

	if c.cacheCapacity <= 0 || c.numWays <= 0 ||
		c.cacheCapacity%c.numWays != 0 {
		return mpu.Builder{}, fmt.Errorf(
			"cache capacity %d must be a positive multiple of the ways %d",
			c.cacheCapacity, c.numWays)
	}

	if c.numMSHR <= 0 || c.numTargetsPerMSHR <= 0 {
		return mpu.Builder{}, fmt.Errorf("miss trackers and targets must be positive")
	}

	if c.activationQueueSize <= 0 {
		return mpu.Builder{}, fmt.Errorf("activation queue must be positive")
	}

	if c.vertexAtom < graph.WorkListItemSize {
		return mpu.Builder{}, fmt.Errorf(
			"vertex atom size %d cannot hold a vertex", c.vertexAtom)
	}

	return mpu.MakeBuilder().
		WithIntakeSize(c.intakeSize).
		WithRegisterFileSize(c.registerFileSize).
		WithNumReducePerCycle(c.numReducePerCycle).
		WithNumFlushPerCycle(c.numFlushPerCycle).
		WithCacheCapacity(c.cacheCapacity).
		WithNumWays(c.numWays).
		WithNumMSHR(c.numMSHR).
		WithNumTargetsPerMSHR(c.numTargetsPerMSHR).
		WithRMWQueueSize(c.rmwQueueSize).
		WithActivationQueueSize(c.activationQueueSize).
		WithMaxActivationsPerCycle(c.maxActivationsPerCycle).
		WithVictimFinder(finder).
		WithPushActivationQueueSize(c.pushQueueSize).
		WithPushRespQueueSize(c.pushRespQueueSize).
		WithNumPushPerCycle(c.numPushPerCycle).
		WithVertexMemLatency(c.vertexLatency).
		WithVertexMemWidth(c.vertexWidth).
		WithVertexAtomSize(c.vertexAtom).
		WithEdgeMemLatency(c.edgeLatency).
		WithEdgeMemWidth(c.edgeWidth).
		WithEdgeAtomSize(c.edgeAtom), nil
}

func runSimulation(cfg runConfig, out io.Writer) error {
	workload, err := cfg.workload()
	if err != nil {
		return err
	}

	img, err := cfg.loadImage(workload)
	if err != nil {
		return err
	}

	tileBuilder, err := cfg.tileBuilder()
	if err != nil {
		return err
	}

	engine := sim.NewSerialEngine()
	if cfg.logEvents {
		engine.AcceptHook(sim.NewEventLogger(log.New(os.Stderr, "", 0)))
	}

	rmwLatency := tracing.NewTotalTimeTracer(engine, tracing.KindIs("rmw"))
	rmwBusy := tracing.NewBusyTimeTracer(engine, tracing.KindIs("rmw"))

	builder := platform.MakeBuilder().
		WithEngine(engine).
		WithFreq(sim.Freq(cfg.freqGHz) * sim.GHz).
		WithNumTiles(cfg.numTiles).
		WithWorkload(workload).
		WithImage(img).
		WithTileBuilder(tileBuilder).
		WithMaxCycles(cfg.maxCycles).
		WithTracer(rmwLatency).
		WithTracer(rmwBusy)

	if cfg.partition != "" {
		partition, err := parsePartition(cfg.partition)
		if err != nil {
			return err
		}

		builder = builder.WithPartition(partition)
	}

	var recorder datarecording.DataRecorder
	if cfg.recordDB != "" || cfg.trace {
		recorder = datarecording.New(cfg.recordDB)
		defer recorder.Close()
	}

	if cfg.trace {
		builder = builder.WithTracer(tracing.NewDBTracer(engine, recorder))
	}

	var monitor *monitoring.Monitor
	if cfg.monitor {
		monitor = monitoring.NewMonitor().WithPortNumber(cfg.monitorPort)
		builder = builder.WithMonitor(monitor)
	}

	p, err := builder.Build()
	if err != nil {
		return err
	}

	if monitor != nil {
		monitor.StartServer()

		if cfg.openBrowser {
			if err := browser.OpenURL(monitor.URL()); err != nil {
				fmt.Fprintf(os.Stderr, "cannot open browser: %v\n", err)
			}
		}
	}

	result, err := p.Run(cfg.seeds(p)...)
	if err != nil {
		return err
	}

	if recorder != nil {
		recordTileStats(recorder, result)
	}

	reportResult(out, workload, result, cfg.quiet)

	freq := float64(sim.Freq(cfg.freqGHz) * sim.GHz)
	fmt.Fprintf(os.Stderr,
		"%d read-modify-writes, %.2f cycles on average, caches busy for %.0f cycles\n",
		rmwLatency.TaskCount(),
		float64(rmwLatency.AverageTime())*freq,
		float64(rmwBusy.BusyTime())*freq)

	return nil
}

func (c runConfig) seeds(p *platform.Platform) []platform.Seed {
	if c.seedAll && p.Workload().Algorithm == graph.PageRank {
		return p.SeedAll(p.Workload().SeedValue())
	}

	value := c.initValue
	if p.Workload().Algorithm == graph.PageRank {
		value = p.Workload().SeedValue()
	}

	return []platform.Seed{{Addr: c.initAddr, Value: value}}
}

func reportResult(
	out io.Writer,
	workload graph.Workload,
	result *platform.Result,
	quiet bool,
) {
	fmt.Fprintf(os.Stderr, "%s after %d cycles (%.10f s)\n",
		result.Cause, result.Cycles, float64(result.Time))

	for _, s := range result.TileStats {
		fmt.Fprintf(os.Stderr,
			"Tile[%d]: %d updates merged, %d hits, %d misses, "+
				"%d coalesced, %d activations, %d local and %d remote pushes\n",
			s.TileID, s.WLEngine.Merged, s.Cache.Hits, s.Cache.Misses,
			s.Cache.Coalesced, s.Cache.Activations,
			s.Push.LocalUpdates, s.Push.RemoteUpdates)
	}

	if quiet {
		return
	}

	for i, v := range result.Vertices {
		fmt.Fprintf(out, "%d %s\n", i, workload.FormatValue(v.Prop))
	}
}
