package mpu

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/sega/graph"
	"github.com/sarchlab/sega/mem"
	"github.com/sarchlab/sega/sim"
)

var _ = Describe("MPU", func() {
	var (
		engine        *sim.SerialEngine
		workload      graph.Workload
		vertexStorage *mem.Storage
		edgeStorage   *mem.Storage
		tile          *MPU
	)

	// 0 -> 1, 0 -> 2, 1 -> 3, all of weight 1.
	loadDiamond := func() {
		degrees := []uint32{2, 1, 0, 0}
		edgeIndices := []uint32{0, 2, 3, 3}

		for i := range degrees {
			item := workload.InitialItem(degrees[i], edgeIndices[i])
			Expect(vertexStorage.Write(graph.VertexAddr(uint64(i)),
				item.Bytes())).To(Succeed())
		}

		var edges []byte
		for _, dst := range []uint64{1, 2, 3} {
			e := graph.Edge{Weight: 1, Neighbor: graph.VertexAddr(dst)}
			edges = append(edges, e.Bytes()...)
		}
		Expect(edgeStorage.Write(0, edges)).To(Succeed())
	}

	build := func(b Builder) {
		partition := graph.NewUniformPartition(4, 1)
		Expect(partition.Validate(graph.VertexAddr(4), 1)).To(Succeed())

		tile = b.
			WithEngine(engine).
			WithWorkload(workload).
			WithPartition(partition).
			WithVertexStorage(vertexStorage).
			WithEdgeStorage(edgeStorage).
			Build("Tile[0]")
	}

	props := func() []uint32 {
		var values []uint32
		for i := uint64(0); i < 4; i++ {
			item, err := tile.ReadVertex(graph.VertexAddr(i))
			Expect(err).NotTo(HaveOccurred())
			values = append(values, item.Prop)
		}

		return values
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		workload = graph.NewBFS()
		vertexStorage = mem.NewStorage(4096)
		edgeStorage = mem.NewStorage(4096)
	})

	It("should expose its ports and components", func() {
		loadDiamond()
		build(MakeBuilder())

		Expect(tile.Name()).To(Equal("Tile[0]"))
		Expect(tile.GetReqPort()).To(BeIdenticalTo(tile.PushEngine.GetReqPort()))
		Expect(tile.GetRespPort()).
			To(BeIdenticalTo(tile.WLEngine.GetUpdatePort()))
		Expect(tile.Components()).To(HaveLen(7))
		Expect(tile.IsIdle()).To(BeTrue())
	})

	It("should run breadth-first search from a seed", func() {
		loadDiamond()
		build(MakeBuilder().WithVertexMemLatency(5).WithEdgeMemLatency(5))

		Expect(tile.InjectUpdate(graph.Update{Addr: 0, Value: 0})).To(BeTrue())
		Expect(tile.IsIdle()).To(BeFalse())
		Expect(engine.Run()).To(Succeed())

		Expect(tile.IsIdle()).To(BeTrue())
		Expect(props()).To(Equal([]uint32{0, 1, 1, 2}))

		stats := tile.Stats()
		Expect(stats.Cache.Activations).To(Equal(uint64(4)))
		Expect(stats.Push.LocalUpdates).To(Equal(uint64(3)))
		Expect(stats.Push.RemoteUpdates).To(Equal(uint64(0)))
	})

	It("should write the results back with a functional flush", func() {
		loadDiamond()
		build(MakeBuilder())

		Expect(tile.InjectUpdate(graph.Update{Addr: 0, Value: 0})).To(BeTrue())
		Expect(engine.Run()).To(Succeed())
		Expect(tile.FunctionalFlush()).To(Succeed())

		data, err := vertexStorage.Read(graph.VertexAddr(3), graph.WorkListItemSize)
		Expect(err).NotTo(HaveOccurred())
		Expect(graph.DecodeWorkListItem(data).Prop).To(Equal(uint32(2)))
	})

	It("should give the same result with a tiny cache", func() {
		loadDiamond()
		build(MakeBuilder().
			WithCacheCapacity(1).
			WithNumWays(1).
			WithNumMSHR(1).
			WithNumTargetsPerMSHR(1).
			WithRegisterFileSize(1).
			WithIntakeSize(1).
			WithRMWQueueSize(1))

		Expect(tile.InjectUpdate(graph.Update{Addr: 0, Value: 0})).To(BeTrue())
		Expect(engine.Run()).To(Succeed())

		Expect(props()).To(Equal([]uint32{0, 1, 1, 2}))
		Expect(tile.Stats().Cache.WriteBacks).To(BeNumerically(">", 0))
	})

	It("should leave unreachable vertices untouched", func() {
		loadDiamond()
		build(MakeBuilder())

		Expect(tile.InjectUpdate(graph.Update{Addr: 16, Value: 0})).To(BeTrue())
		Expect(engine.Run()).To(Succeed())

		Expect(props()).To(Equal([]uint32{math.MaxUint32, 0, math.MaxUint32, 1}))
	})
})
