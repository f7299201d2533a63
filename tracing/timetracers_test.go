package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/sega/sim"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("BusyTimeTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		t          *BusyTimeTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		t = NewBusyTimeTracer(timeTeller, nil)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should track busy time, one task", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		t.EndTask(Task{ID: "1"})

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(1.0)))
	})

	It("should track busy time, two separate tasks", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(2))
		t.EndTask(Task{ID: "1"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3))
		t.StartTask(Task{ID: "2"})
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(4))
		t.EndTask(Task{ID: "2"})

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(2.0)))
	})

	It("should count overlapping tasks once", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1"})
		t.StartTask(Task{ID: "2"})
		t.EndTask(Task{ID: "1"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(4))
		t.EndTask(Task{ID: "2"})

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(3.0)))
	})

	It("should terminate tasks in flight", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1))
		t.StartTask(Task{ID: "1"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(5))
		t.TerminateAllTasks()

		Expect(t.BusyTime()).To(Equal(sim.VTimeInSec(4.0)))
	})
})

var _ = Describe("TotalTimeTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		t          *TotalTimeTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		t = NewTotalTimeTracer(timeTeller, KindIs("req_in"))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should add up overlapping tasks", func() {
		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(1)).Times(2)
		t.StartTask(Task{ID: "1", Kind: "req_in"})
		t.StartTask(Task{ID: "2", Kind: "req_in"})

		timeTeller.EXPECT().CurrentTime().Return(sim.VTimeInSec(3)).Times(2)
		t.EndTask(Task{ID: "1"})
		t.EndTask(Task{ID: "2"})

		Expect(t.TotalTime()).To(Equal(sim.VTimeInSec(4.0)))
		Expect(t.TaskCount()).To(Equal(uint64(2)))
		Expect(t.AverageTime()).To(Equal(sim.VTimeInSec(2.0)))
	})

	It("should ignore filtered tasks", func() {
		t.StartTask(Task{ID: "1", Kind: "req_out"})
		t.EndTask(Task{ID: "1"})

		Expect(t.TaskCount()).To(Equal(uint64(0)))
		Expect(t.AverageTime()).To(Equal(sim.VTimeInSec(0)))
	})
})

var _ = Describe("StepCountTracer", func() {
	It("should count steps and tasks", func() {
		t := NewStepCountTracer(KindIs("rmw"))

		t.StartTask(Task{ID: "1", Kind: "rmw"})
		t.StartTask(Task{ID: "2", Kind: "rmw"})
		t.StartTask(Task{ID: "3", Kind: "other"})

		t.StepTask(Task{ID: "1", Steps: []TaskStep{{What: "miss"}}})
		t.StepTask(Task{ID: "1", Steps: []TaskStep{{What: "miss"}}})
		t.StepTask(Task{ID: "2", Steps: []TaskStep{{What: "hit"}}})
		t.StepTask(Task{ID: "3", Steps: []TaskStep{{What: "hit"}}})

		Expect(t.GetStepNames()).To(Equal([]string{"miss", "hit"}))
		Expect(t.GetStepCount("miss")).To(Equal(uint64(2)))
		Expect(t.GetTaskCount("miss")).To(Equal(uint64(1)))
		Expect(t.GetStepCount("hit")).To(Equal(uint64(1)))

		t.EndTask(Task{ID: "1"})
		t.StepTask(Task{ID: "1", Steps: []TaskStep{{What: "miss"}}})
		Expect(t.GetStepCount("miss")).To(Equal(uint64(2)))
	})
})
