package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/sega/graph"
	"github.com/spf13/pflag"
)

const diamondEdges = `# 0 -> 1, 0 -> 2, 1 -> 3
0 1
0 2
1 3
`

func writeDiamond(dir string) string {
	path := filepath.Join(dir, "diamond.txt")
	Expect(os.WriteFile(path, []byte(diamondEdges), 0o644)).To(Succeed())

	return path
}

var _ = Describe("Partition flag", func() {
	It("should parse ranges with and without tiles", func() {
		p, err := parsePartition("2-4:0, 0-2")

		Expect(err).NotTo(HaveOccurred())
		Expect(p.Validate(graph.VertexAddr(4), 2)).To(Succeed())
		Expect(p.MustFind(graph.VertexAddr(0))).To(Equal(1))
		Expect(p.MustFind(graph.VertexAddr(3))).To(Equal(0))
	})

	It("should reject a range without an end", func() {
		_, err := parsePartition("0:0")

		Expect(err).To(HaveOccurred())
	})

	It("should reject a bad tile", func() {
		_, err := parsePartition("0-4:x")

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Environment", func() {
	AfterEach(func() {
		os.Unsetenv("SEGA_CACHE_CAPACITY")
	})

	It("should name variables after flags", func() {
		Expect(envName("cache-capacity")).To(Equal("SEGA_CACHE_CAPACITY"))
	})

	It("should override defaults but not given flags", func() {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		capacity := flags.Int("cache-capacity", 256, "")
		ways := flags.Int("ways", 16, "")
		Expect(flags.Parse([]string{"--ways", "4"})).To(Succeed())

		os.Setenv("SEGA_CACHE_CAPACITY", "64")
		os.Setenv("SEGA_WAYS", "8")
		defer os.Unsetenv("SEGA_WAYS")

		Expect(applyEnv(flags)).To(Succeed())
		Expect(*capacity).To(Equal(64))
		Expect(*ways).To(Equal(4))
	})

	It("should report a bad value", func() {
		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.Int("cache-capacity", 256, "")
		os.Setenv("SEGA_CACHE_CAPACITY", "many")

		Expect(applyEnv(flags)).To(MatchError(ContainSubstring("SEGA_CACHE_CAPACITY")))
	})

	It("should load a .env file", func() {
		path := filepath.Join(GinkgoT().TempDir(), ".env")
		Expect(os.WriteFile(path, []byte("SEGA_CACHE_CAPACITY=32\n"), 0o644)).
			To(Succeed())

		Expect(loadDotEnv(path)).To(Succeed())
		Expect(os.Getenv("SEGA_CACHE_CAPACITY")).To(Equal("32"))
	})

	It("should ignore a missing .env file", func() {
		Expect(loadDotEnv(filepath.Join(GinkgoT().TempDir(), ".env"))).
			To(Succeed())
	})
})

var _ = Describe("Run", func() {
	var (
		dir string
		cfg runConfig
		out *bytes.Buffer
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		cfg = runCfg
		cfg.edgeList = writeDiamond(dir)
		out = new(bytes.Buffer)
	})

	It("should print the levels", func() {
		Expect(runSimulation(cfg, out)).To(Succeed())

		Expect(out.String()).To(Equal("0 0\n1 1\n2 1\n3 2\n"))
	})

	It("should print unreachable vertices as inf", func() {
		cfg.initAddr = graph.VertexAddr(1)
		cfg.numTiles = 2

		Expect(runSimulation(cfg, out)).To(Succeed())

		Expect(out.String()).To(Equal("0 inf\n1 0\n2 inf\n3 1\n"))
	})

	It("should run with an explicit partition and random victims", func() {
		cfg.numTiles = 2
		cfg.partition = "0-1,1-4"
		cfg.victim = "random"
		cfg.cacheCapacity = 2
		cfg.numWays = 2

		Expect(runSimulation(cfg, out)).To(Succeed())

		Expect(out.String()).To(Equal("0 0\n1 1\n2 1\n3 2\n"))
	})

	It("should run page rank from every vertex", func() {
		cfg.algorithm = "pr"
		cfg.seedAll = true
		cfg.quiet = true

		Expect(runSimulation(cfg, out)).To(Succeed())
		Expect(out.String()).To(BeEmpty())
	})

	It("should record tile statistics and traces", func() {
		cfg.recordDB = filepath.Join(dir, "run")
		cfg.trace = true
		cfg.quiet = true

		Expect(runSimulation(cfg, out)).To(Succeed())

		_, err := os.Stat(cfg.recordDB + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should log events", func() {
		cfg.logEvents = true
		cfg.quiet = true

		Expect(runSimulation(cfg, out)).To(Succeed())
	})

	It("should need exactly one graph source", func() {
		cfg.graphDir = dir

		Expect(runSimulation(cfg, out)).To(HaveOccurred())
	})

	It("should reject an unknown algorithm", func() {
		cfg.algorithm = "dfs"

		Expect(runSimulation(cfg, out)).To(HaveOccurred())
	})

	It("should reject an unknown victim selection", func() {
		cfg.victim = "fifo"

		Expect(runSimulation(cfg, out)).To(HaveOccurred())
	})

	It("should reject a cache that does not divide into ways", func() {
		cfg.cacheCapacity = 10
		cfg.numWays = 4

		Expect(runSimulation(cfg, out)).To(HaveOccurred())
	})

	It("should run with one-entry queues", func() {
		cfg.intakeSize = 1
		cfg.registerFileSize = 1
		cfg.rmwQueueSize = 1
		cfg.activationQueueSize = 1
		cfg.numMSHR = 1
		cfg.numTargetsPerMSHR = 1
		cfg.pushQueueSize = 1
		cfg.pushRespQueueSize = 1

		Expect(runSimulation(cfg, out)).To(Succeed())

		Expect(out.String()).To(Equal("0 0\n1 1\n2 1\n3 2\n"))
	})

	It("should reject an empty activation queue", func() {
		cfg.activationQueueSize = 0

		Expect(runSimulation(cfg, out)).
			To(MatchError(ContainSubstring("activation queue")))
	})

	It("should reject a partition that misses vertices", func() {
		cfg.partition = "0-2"

		Expect(runSimulation(cfg, out)).
			To(MatchError(ContainSubstring("invalid partition")))
	})
})

var _ = Describe("Gen", func() {
	It("should save images that can be run", func() {
		dir := GinkgoT().TempDir()
		outDir := filepath.Join(dir, "diamond")

		Expect(generate(genConfig{
			edgeList:  writeDiamond(dir),
			algorithm: "bfs",
			outDir:    outDir,
		})).To(Succeed())

		cfg := runCfg
		cfg.edgeList = ""
		cfg.graphDir = outDir
		out := new(bytes.Buffer)

		Expect(runSimulation(cfg, out)).To(Succeed())
		Expect(out.String()).To(Equal("0 0\n1 1\n2 1\n3 2\n"))
	})

	It("should generate a random graph", func() {
		outDir := filepath.Join(GinkgoT().TempDir(), "random")

		Expect(generate(genConfig{
			numVertices: 16,
			numEdges:    40,
			maxWeight:   3,
			seed:        5,
			algorithm:   "sssp",
			outDir:      outDir,
		})).To(Succeed())

		info, err := os.Stat(filepath.Join(outDir, "vertices"))
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Size()).To(Equal(int64(16 * graph.WorkListItemSize)))
	})

	It("should need the number of random vertices", func() {
		err := generate(genConfig{numEdges: 4, algorithm: "bfs", outDir: "x"})

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Root command", func() {
	It("should run from the command line", func() {
		dir := GinkgoT().TempDir()
		out := new(bytes.Buffer)

		saved := runCfg
		defer func() { runCfg = saved }()

		rootCmd.SetOut(out)
		rootCmd.SetArgs([]string{
			"run", "--edge-list", writeDiamond(dir), "--tiles", "2",
		})

		Expect(Execute()).To(Succeed())
		Expect(strings.Split(strings.TrimSpace(out.String()), "\n")).
			To(HaveLen(4))
	})
})
