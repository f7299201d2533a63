package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("BufferedSender", func() {
	var (
		mockCtrl *gomock.Controller
		comp     *MockComponent
		conn     *MockConnection
		port     Port
		sender   BufferedSender
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		comp = NewMockComponent(mockCtrl)
		conn = NewMockConnection(mockCtrl)
		port = NewPort(comp, 1, 1, "Port")
		port.SetConnection(conn)
		sender = NewBufferedSender(port, NewBuffer("Sender.Buf", 2))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	newMsg := func() *sampleMsg {
		msg := &sampleMsg{}
		msg.Src = port.AsRemote()
		msg.Dst = "Dst"

		return msg
	}

	It("should tell if there is room", func() {
		Expect(sender.CanSend(2)).To(BeTrue())

		sender.Send(newMsg())

		Expect(sender.CanSend(1)).To(BeTrue())
		Expect(sender.CanSend(2)).To(BeFalse())
		Expect(func() { sender.CanSend(3) }).To(Panic())
	})

	It("should send in order and stop when the port is busy", func() {
		msg1 := newMsg()
		msg2 := newMsg()
		sender.Send(msg1)
		sender.Send(msg2)
		conn.EXPECT().NotifySend()

		Expect(sender.Tick()).To(BeTrue())
		Expect(sender.Tick()).To(BeFalse())
		Expect(sender.Size()).To(Equal(1))
		Expect(port.PeekOutgoing()).To(BeIdenticalTo(msg1))
	})

	It("should do nothing when empty", func() {
		Expect(sender.Tick()).To(BeFalse())
	})

	It("should clear", func() {
		sender.Send(newMsg())

		sender.Clear()

		Expect(sender.Size()).To(Equal(0))
	})
})
