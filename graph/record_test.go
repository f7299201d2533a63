package graph

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Records", func() {
	It("should encode a vertex in little endian", func() {
		item := WorkListItem{TempProp: 1, Prop: 2, Degree: 3, EdgeIndex: 0x01020304}

		buf := item.Bytes()

		Expect(buf).To(HaveLen(WorkListItemSize))
		Expect(buf[0]).To(Equal(byte(1)))
		Expect(buf[4]).To(Equal(byte(2)))
		Expect(buf[8]).To(Equal(byte(3)))
		Expect(buf[12:16]).To(Equal([]byte{4, 3, 2, 1}))
		Expect(DecodeWorkListItem(buf)).To(Equal(item))
	})

	It("should panic when decoding a short vertex record", func() {
		Expect(func() { DecodeWorkListItem(make([]byte, 8)) }).To(Panic())
	})

	It("should locate the edges of a vertex", func() {
		item := WorkListItem{EdgeIndex: 5, Degree: 2}
		Expect(item.EdgeAddr()).To(Equal(uint64(80)))
	})

	It("should decode the complete edges of a buffer", func() {
		buf := append(Edge{Weight: 7, Neighbor: 32}.Bytes(),
			Edge{Weight: 1, Neighbor: 48}.Bytes()...)
		buf = append(buf, 0xff, 0xff)

		Expect(DecodeEdges(buf)).To(Equal([]Edge{
			{Weight: 7, Neighbor: 32},
			{Weight: 1, Neighbor: 48},
		}))
	})

	It("should convert between vertex ids and addresses", func() {
		Expect(VertexAddr(3)).To(Equal(uint64(48)))
		Expect(VertexID(48)).To(Equal(uint64(3)))
	})

	It("should build update messages", func() {
		msg := UpdateMsgBuilder{}.
			WithSrc("A.Port").
			WithDst("B.Port").
			WithUpdate(Update{Addr: 16, Value: 3, Src: 0}).
			Build()

		Expect(msg.Meta().ID).NotTo(BeEmpty())
		Expect(msg.Meta().Src).To(BeEquivalentTo("A.Port"))
		Expect(msg.Meta().Dst).To(BeEquivalentTo("B.Port"))
		Expect(msg.Update.Value).To(Equal(uint32(3)))
	})
})
