package platform

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/graph/controller"
	"github.com/sarchlab/sega/graph/image"
	"github.com/sarchlab/sega/graph/mpu"
	"github.com/sarchlab/sega/monitoring"
	"github.com/sarchlab/sega/tracing"
)

const inf = math.MaxUint32

var diamond = []image.InputEdge{
	{Src: 0, Dst: 1, Weight: 1},
	{Src: 0, Dst: 2, Weight: 1},
	{Src: 1, Dst: 3, Weight: 1},
}

func mustBuildImage(
	numVertices uint64,
	edges []image.InputEdge,
	workload graph.Workload,
) *image.Image {
	img, err := image.Build(numVertices, edges, workload)
	Expect(err).NotTo(HaveOccurred())

	return img
}

func props(r *Result) []uint32 {
	values := make([]uint32, 0, len(r.Vertices))
	for _, v := range r.Vertices {
		values = append(values, v.Prop)
	}

	return values
}

var _ = Describe("Platform", func() {
	Context("with BFS", func() {
		var (
			workload graph.Workload
			builder  Builder
		)

		BeforeEach(func() {
			workload = graph.NewBFS()
			builder = MakeBuilder().
				WithWorkload(workload).
				WithImage(mustBuildImage(4, diamond, workload))
		})

		It("should find the levels with one tile", func() {
			p, err := builder.Build()
			Expect(err).NotTo(HaveOccurred())

			r, err := p.Run(Seed{Addr: 0, Value: 0})

			Expect(err).NotTo(HaveOccurred())
			Expect(r.Cause).To(Equal(controller.CauseQuiescent))
			Expect(props(r)).To(Equal([]uint32{0, 1, 1, 2}))
			Expect(r.TileStats).To(HaveLen(1))
			Expect(r.TileStats[0].Cache.Activations).To(Equal(uint64(4)))
			Expect(r.Time).To(BeNumerically(">", 0))
		})

		It("should find the same levels with two tiles", func() {
			p, err := builder.WithNumTiles(2).Build()
			Expect(err).NotTo(HaveOccurred())

			r, err := p.Run(Seed{Addr: 0, Value: 0})

			Expect(err).NotTo(HaveOccurred())
			Expect(r.Cause).To(Equal(controller.CauseQuiescent))
			Expect(props(r)).To(Equal([]uint32{0, 1, 1, 2}))

			remote := uint64(0)
			for _, s := range r.TileStats {
				remote += s.Push.RemoteUpdates
			}
			Expect(remote).To(Equal(uint64(2)))
		})

		It("should use an explicit partition", func() {
			partition := graph.NewPartitionMap()
			partition.AddRange(0, graph.VertexAddr(1), 1)
			partition.AddRange(graph.VertexAddr(1), graph.VertexAddr(4), 0)

			p, err := builder.
				WithNumTiles(2).
				WithPartition(partition).
				Build()
			Expect(err).NotTo(HaveOccurred())

			r, err := p.Run(Seed{Addr: 0, Value: 0})

			Expect(err).NotTo(HaveOccurred())
			Expect(props(r)).To(Equal([]uint32{0, 1, 1, 2}))
		})

		It("should leave unreachable vertices untouched", func() {
			p, err := builder.Build()
			Expect(err).NotTo(HaveOccurred())

			r, err := p.Run(Seed{Addr: graph.VertexAddr(1), Value: 0})

			Expect(err).NotTo(HaveOccurred())
			Expect(props(r)).To(Equal([]uint32{inf, 0, inf, 1}))
		})

		It("should end without seeds", func() {
			p, err := builder.Build()
			Expect(err).NotTo(HaveOccurred())

			r, err := p.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(r.Cause).To(Equal(controller.CauseQuiescent))
			Expect(props(r)).To(Equal([]uint32{inf, inf, inf, inf}))
		})

		It("should wait for room to inject many seeds", func() {
			p, err := builder.
				WithTileBuilder(mpu.MakeBuilder().WithIntakeSize(1)).
				Build()
			Expect(err).NotTo(HaveOccurred())

			r, err := p.Run(p.SeedAll(0)...)

			Expect(err).NotTo(HaveOccurred())
			Expect(props(r)).To(Equal([]uint32{0, 0, 0, 0}))
			Expect(p.Controller.NumSeeds()).To(Equal(4))
		})

		It("should stop at the cycle limit", func() {
			p, err := builder.WithMaxCycles(3).Build()
			Expect(err).NotTo(HaveOccurred())

			r, err := p.Run(Seed{Addr: 0, Value: 0})

			Expect(err).NotTo(HaveOccurred())
			Expect(r.Cause).To(Equal(controller.CauseCycleLimit))
			Expect(r.Cycles).To(Equal(uint64(3)))
		})

		It("should not run twice", func() {
			p, err := builder.Build()
			Expect(err).NotTo(HaveOccurred())

			_, err = p.Run()
			Expect(err).NotTo(HaveOccurred())

			_, err = p.Run()
			Expect(err).To(HaveOccurred())
		})

		It("should reject a seed outside the graph", func() {
			p, err := builder.Build()
			Expect(err).NotTo(HaveOccurred())

			_, err = p.Run(Seed{Addr: graph.VertexAddr(9)})

			Expect(errors.Is(err, graph.ErrAddrNotMapped)).To(BeTrue())
		})

		It("should collect traces", func() {
			tracer := tracing.NewStepCountTracer(tracing.KindIs("rmw"))
			p, err := builder.WithTracer(tracer).Build()
			Expect(err).NotTo(HaveOccurred())

			_, err = p.Run(Seed{Addr: 0, Value: 0})

			Expect(err).NotTo(HaveOccurred())
			Expect(tracer.GetTaskCount("miss")).To(BeNumerically(">", 0))
		})

		It("should report to a monitor", func() {
			monitor := monitoring.NewMonitor()
			p, err := builder.WithMonitor(monitor).Build()
			Expect(err).NotTo(HaveOccurred())

			_, err = p.Run(Seed{Addr: 0, Value: 0})

			Expect(err).NotTo(HaveOccurred())
		})
	})

	It("should find the shortest paths", func() {
		workload := graph.NewSSSP()
		edges := []image.InputEdge{
			{Src: 0, Dst: 1, Weight: 4},
			{Src: 0, Dst: 2, Weight: 1},
			{Src: 2, Dst: 1, Weight: 2},
			{Src: 1, Dst: 3, Weight: 1},
			{Src: 2, Dst: 3, Weight: 5},
		}

		p, err := MakeBuilder().
			WithNumTiles(2).
			WithWorkload(workload).
			WithImage(mustBuildImage(4, edges, workload)).
			Build()
		Expect(err).NotTo(HaveOccurred())

		r, err := p.Run(Seed{Addr: 0, Value: 0})

		Expect(err).NotTo(HaveOccurred())
		Expect(props(r)).To(Equal([]uint32{0, 3, 1, 4}))
	})

	It("should match BFS levels on a random graph with a tiny cache", func() {
		workload := graph.NewBFS()
		edges := image.RandomEdges(64, 256, 1, 42)
		img := mustBuildImage(64, edges, workload)

		tileBuilder := mpu.MakeBuilder().
			WithCacheCapacity(4).
			WithNumWays(2).
			WithNumMSHR(2).
			WithNumTargetsPerMSHR(2)

		p, err := MakeBuilder().
			WithNumTiles(4).
			WithWorkload(workload).
			WithImage(img).
			WithTileBuilder(tileBuilder).
			Build()
		Expect(err).NotTo(HaveOccurred())

		r, err := p.Run(Seed{Addr: 0, Value: 0})

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Cause).To(Equal(controller.CauseQuiescent))
		Expect(props(r)).To(Equal(bfsLevels(64, edges, 0)))
	})

	Context("with a dense cyclic graph on one tile", func() {
		var (
			workload graph.Workload
			edges    []image.InputEdge
			img      *image.Image
		)

		BeforeEach(func() {
			workload = graph.NewBFS()
			edges = image.RandomEdges(256, 4096, 1, 7)
			img = mustBuildImage(256, edges, workload)
		})

		It("should finish with the default sizes", func() {
			p, err := MakeBuilder().
				WithWorkload(workload).
				WithImage(img).
				WithMaxCycles(1_000_000).
				Build()
			Expect(err).NotTo(HaveOccurred())

			r, err := p.Run(Seed{Addr: 0, Value: 0})

			Expect(err).NotTo(HaveOccurred())
			Expect(r.Cause).To(Equal(controller.CauseQuiescent))
			Expect(props(r)).To(Equal(bfsLevels(256, edges, 0)))
		})

		It("should finish with one-entry queues", func() {
			tileBuilder := mpu.MakeBuilder().
				WithIntakeSize(1).
				WithRegisterFileSize(1).
				WithRMWQueueSize(1).
				WithActivationQueueSize(1).
				WithNumMSHR(1).
				WithNumTargetsPerMSHR(1).
				WithPushActivationQueueSize(1).
				WithPushRespQueueSize(1)

			p, err := MakeBuilder().
				WithWorkload(workload).
				WithImage(img).
				WithTileBuilder(tileBuilder).
				WithMaxCycles(5_000_000).
				Build()
			Expect(err).NotTo(HaveOccurred())

			r, err := p.Run(Seed{Addr: 0, Value: 0})

			Expect(err).NotTo(HaveOccurred())
			Expect(r.Cause).To(Equal(controller.CauseQuiescent))
			Expect(props(r)).To(Equal(bfsLevels(256, edges, 0)))
		})
	})

	It("should converge page rank on a cycle", func() {
		workload := graph.NewPageRank(0.85, 0.0001)
		edges := []image.InputEdge{
			{Src: 0, Dst: 1, Weight: 1},
			{Src: 1, Dst: 2, Weight: 1},
			{Src: 2, Dst: 0, Weight: 1},
		}

		p, err := MakeBuilder().
			WithWorkload(workload).
			WithImage(mustBuildImage(3, edges, workload)).
			Build()
		Expect(err).NotTo(HaveOccurred())

		r, err := p.Run(p.SeedAll(workload.SeedValue())...)

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Cause).To(Equal(controller.CauseQuiescent))
		for _, v := range r.Vertices {
			Expect(math.Float32frombits(v.Prop)).To(BeNumerically("~", 1, 0.01))
			Expect(math.Float32frombits(v.TempProp)).
				To(BeNumerically("<", 0.0001))
		}
	})

	It("should keep a page rank residual below the threshold", func() {
		workload := graph.NewPageRank(0.85, 0.3)

		p, err := MakeBuilder().
			WithWorkload(workload).
			WithImage(mustBuildImage(4, diamond, workload)).
			Build()
		Expect(err).NotTo(HaveOccurred())

		r, err := p.Run(Seed{Addr: 0, Value: math.Float32bits(0.2)})

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Cause).To(Equal(controller.CauseQuiescent))
		Expect(math.Float32frombits(r.Vertices[0].TempProp)).
			To(BeNumerically("~", 0.2, 1e-6))
		Expect(r.Vertices[0].Prop).To(Equal(uint32(0)))
		Expect(r.TileStats[0].WLEngine.Flushed).To(Equal(uint64(1)))
		Expect(r.TileStats[0].Cache.Activations).To(Equal(uint64(0)))
	})

	Describe("configuration errors", func() {
		var workload graph.Workload

		BeforeEach(func() {
			workload = graph.NewBFS()
		})

		It("should reject an unknown algorithm", func() {
			_, err := MakeBuilder().
				WithImage(mustBuildImage(4, diamond, workload)).
				Build()

			Expect(errors.Is(err, graph.ErrNoReduceOperator)).To(BeTrue())
		})

		It("should reject a partition that leaves a vertex out", func() {
			partition := graph.NewPartitionMap()
			partition.AddRange(0, graph.VertexAddr(3), 0)

			_, err := MakeBuilder().
				WithWorkload(workload).
				WithImage(mustBuildImage(4, diamond, workload)).
				WithPartition(partition).
				Build()

			Expect(err).To(MatchError(ContainSubstring("invalid partition")))
		})

		It("should reject an edge to a vertex outside the partitions", func() {
			img := mustBuildImage(4, diamond, workload)
			img.NumVertices = 3
			img.Vertices = img.Vertices[:graph.VertexAddr(3)]

			_, err := MakeBuilder().
				WithWorkload(workload).
				WithImage(img).
				Build()

			Expect(errors.Is(err, image.ErrMalformedImage)).To(BeTrue())
		})

		It("should reject a platform without tiles", func() {
			_, err := MakeBuilder().
				WithNumTiles(0).
				WithWorkload(workload).
				WithImage(mustBuildImage(4, diamond, workload)).
				Build()

			Expect(err).To(HaveOccurred())
		})

		It("should reject a missing image", func() {
			_, err := MakeBuilder().WithWorkload(workload).Build()

			Expect(err).To(HaveOccurred())
		})
	})
})

func bfsLevels(n uint64, edges []image.InputEdge, src uint64) []uint32 {
	adj := make([][]uint64, n)
	for _, e := range edges {
		adj[e.Src] = append(adj[e.Src], e.Dst)
	}

	levels := make([]uint32, n)
	for i := range levels {
		levels[i] = inf
	}

	levels[src] = 0
	queue := []uint64{src}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]

		for _, u := range adj[v] {
			if levels[u] == inf {
				levels[u] = levels[v] + 1
				queue = append(queue, u)
			}
		}
	}

	return levels
}
