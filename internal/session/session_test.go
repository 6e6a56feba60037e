package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/joshuapare/memsim/internal/config"
	"github.com/joshuapare/memsim/mem/alloc"
	"github.com/joshuapare/memsim/mem/printer"
	"github.com/joshuapare/memsim/mem/strategy"
	"github.com/joshuapare/memsim/mem/trace"
)

var _ = Describe("Session", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockRecorder
		out      *bytes.Buffer
		events   []trace.Event
		ctx      context.Context
	)

	procs := []config.Process{{Name: "P1", Size: 30}, {Name: "P2", Size: 40}, {Name: "P3", Size: 20}}

	newSession := func(mutate func(*Config)) *Session {
		cfg := Config{
			Total:    100,
			Strategy: strategy.FirstFit,
			Out:      out,
			Printer:  printer.DefaultOptions(),
			Recorder: recorder,
		}
		if mutate != nil {
			mutate(&cfg)
		}
		s, err := New(cfg)
		Expect(err).NotTo(HaveOccurred())
		return s
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockRecorder(mockCtrl)
		out = &bytes.Buffer{}
		events = nil
		ctx = context.Background()

		recorder.EXPECT().
			Record(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ev trace.Event) error {
				events = append(events, ev)
				return nil
			}).
			AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should reject an invalid total", func() {
		_, err := New(Config{Total: 0, Strategy: strategy.FirstFit})
		Expect(err).To(HaveOccurred())
	})

	It("should place the initial processes and print one report", func() {
		s := newSession(nil)

		Expect(s.AllocateAll(ctx, procs)).To(Succeed())

		text := out.String()
		Expect(text).To(HavePrefix("\n--- FIRST FIT Allocation ---\n\n"))
		Expect(text).To(ContainSubstring("Process P1 allocated to partition 1\n"))
		Expect(text).To(ContainSubstring("Process P2 allocated to partition 2\n"))
		Expect(text).To(ContainSubstring("Process P3 allocated to partition 3\n"))
		Expect(text).To(ContainSubstring("Partition 4: Size=10, Free=true\n"))
		Expect(strings.Count(text, "Partition Status:")).To(Equal(1))
		Expect(events).To(HaveLen(3))
	})

	It("should keep going when an initial process does not fit", func() {
		s := newSession(nil)

		batch := []config.Process{procs[0], {Name: "Big", Size: 500}, procs[1]}
		Expect(s.AllocateAll(ctx, batch)).To(Succeed())

		text := out.String()
		Expect(text).To(ContainSubstring("Allocation failed for process Big of size 500\n"))
		Expect(text).To(ContainSubstring("Process P2 allocated to partition"))
		Expect(strings.Count(text, "Partition Status:")).To(Equal(1))
		Expect(events[1].Outcome).To(Equal(trace.OutcomeNoFit))
		Expect(events[1].Compacted).To(BeTrue())
	})

	It("should record every operation with the settled table", func() {
		s := newSession(nil)
		Expect(s.AllocateAll(ctx, procs)).To(Succeed())

		Expect(s.Deallocate(ctx, "P2")).To(Succeed())

		Expect(events).To(HaveLen(4))
		ev := events[3]
		Expect(ev.Session).To(Equal(s.ID()))
		Expect(ev.Seq).To(Equal(4))
		Expect(ev.Op).To(Equal(trace.OpDeallocate))
		Expect(ev.Outcome).To(Equal(trace.OutcomeOK))
		Expect(ev.PartitionID).To(BeEquivalentTo(2))
		Expect(ev.TotalFree).To(Equal(50))
		Expect(ev.Partitions).To(Equal(4))
		Expect(ev.Table).To(HaveLen(4))
		Expect(ev.Table[1].Free).To(BeTrue())

		for i, e := range events {
			Expect(e.Seq).To(Equal(i + 1))
		}
	})

	It("should report a missing process without changing memory", func() {
		s := newSession(nil)
		Expect(s.AllocateAll(ctx, procs)).To(Succeed())
		before := s.Engine().Snapshot()
		out.Reset()

		err := s.Deallocate(ctx, "Z")

		Expect(err).To(MatchError(alloc.ErrProcessNotFound))
		Expect(Recoverable(err)).To(BeTrue())
		Expect(out.String()).To(HavePrefix("Process Z not found in memory\n"))
		Expect(out.String()).To(ContainSubstring("Partition Status:"))
		Expect(s.Engine().Snapshot()).To(Equal(before))
		Expect(events[len(events)-1].Outcome).To(Equal(trace.OutcomeNotFound))
	})

	It("should compact and retry when no partition fits", func() {
		s := newSession(nil)
		Expect(s.AllocateAll(ctx, procs)).To(Succeed())
		Expect(s.Deallocate(ctx, "P2")).To(Succeed())
		out.Reset()

		a, err := s.Allocate(ctx, "P4", 45)

		Expect(err).NotTo(HaveOccurred())
		Expect(a.Compacted).To(BeTrue())
		Expect(out.String()).To(HavePrefix(
			"Allocation failed for process P4, trying to compact memory and retry...\n" +
				"Memory Compacted\n" +
				"Process P4 allocated to partition 7\n"))
		Expect(out.String()).To(ContainSubstring("Partition 5: Size=30, Free=false, Process=P1\n"))
		Expect(out.String()).To(ContainSubstring("Total Free Memory: 5\n"))
	})

	It("should report a failed allocation and keep running", func() {
		s := newSession(nil)
		Expect(s.AllocateAll(ctx, procs)).To(Succeed())
		out.Reset()

		_, err := s.Allocate(ctx, "P5", 11)

		Expect(err).To(MatchError(alloc.ErrNoFit))
		Expect(out.String()).To(ContainSubstring("Allocation failed for process P5\n"))
		Expect(out.String()).To(ContainSubstring("Partition Status:"))
	})

	It("should print compaction and merge results", func() {
		s := newSession(nil)
		Expect(s.AllocateAll(ctx, procs)).To(Succeed())
		Expect(s.Deallocate(ctx, "P1")).To(Succeed())
		out.Reset()

		Expect(s.Compact(ctx)).To(Succeed())
		Expect(out.String()).To(HavePrefix("Memory Compacted\n"))
		Expect(s.Engine().TotalFree()).To(Equal(40))
		Expect(s.Engine().Snapshot()).To(HaveLen(3))

		out.Reset()
		Expect(s.Merge(ctx)).To(Succeed())
		Expect(out.String()).To(HavePrefix("Merged 0 free partition pair(s)\n"))

		last := events[len(events)-1]
		Expect(last.Op).To(Equal(trace.OpMerge))
		Expect(events[len(events)-2].Op).To(Equal(trace.OpCompact))
	})

	It("should keep simulating when the recorder fails", func() {
		failing := NewMockRecorder(mockCtrl)
		failing.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("disk full")).Times(1)
		s := newSession(func(c *Config) { c.Recorder = failing })

		a, err := s.Allocate(ctx, "P1", 10)

		Expect(err).NotTo(HaveOccurred())
		Expect(a.ID).To(BeEquivalentTo(1))
	})

	It("should close the recorder", func() {
		recorder.EXPECT().Close().Return(nil)
		s := newSession(nil)
		Expect(s.Close()).To(Succeed())
	})

	It("should print only reports in JSON mode", func() {
		s := newSession(func(c *Config) { c.Printer.Format = printer.FormatJSON })

		_, err := s.Allocate(ctx, "P1", 30)
		Expect(err).NotTo(HaveOccurred())

		var r printer.Report
		Expect(json.Unmarshal(out.Bytes(), &r)).To(Succeed())
		Expect(r.Partitions).To(HaveLen(2))
		Expect(r.TotalFree).To(Equal(70))
	})

	It("should print nothing when quiet", func() {
		s := newSession(func(c *Config) { c.Quiet = true })

		Expect(s.AllocateAll(ctx, procs)).To(Succeed())
		Expect(s.Deallocate(ctx, "P1")).To(Succeed())

		Expect(out.Len()).To(BeZero())
		Expect(events).To(HaveLen(4))
	})

	Describe("Run", func() {
		It("should run a scenario in order", func() {
			sc := &config.Scenario{
				TotalMemory:  100,
				StrategyName: "best",
				Processes:    procs,
				Actions: []config.Action{
					{Op: config.ActionDeallocate, Name: "P2"},
					{Op: config.ActionDeallocate, Name: "missing"},
					{Op: config.ActionAllocate, Name: "P4", Size: 5},
					{Op: config.ActionCompact},
					{Op: config.ActionMerge},
				},
			}
			s := newSession(func(c *Config) { c.Strategy = strategy.BestFit })

			Expect(s.Run(ctx, sc)).To(Succeed())

			Expect(events).To(HaveLen(8))
			Expect(out.String()).To(ContainSubstring("--- BEST FIT Allocation ---"))
			// best fit picks the 10-unit tail over the 40-unit hole
			Expect(out.String()).To(ContainSubstring("Process P4 allocated to partition 4\n"))
		})

		It("should stop on an unknown action", func() {
			sc := &config.Scenario{
				TotalMemory: 100,
				Actions:     []config.Action{{Op: "defrag"}},
			}
			s := newSession(nil)

			err := s.Run(ctx, sc)
			Expect(err).To(MatchError(config.ErrInvalidScenario))
		})

		It("should stop when the context is cancelled", func() {
			sc := &config.Scenario{
				TotalMemory: 100,
				Processes:   procs,
				Actions:     []config.Action{{Op: config.ActionCompact}},
			}
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			s := newSession(nil)

			Expect(s.Run(cctx, sc)).To(MatchError(context.Canceled))
		})
	})
})
