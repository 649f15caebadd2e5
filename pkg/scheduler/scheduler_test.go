/*
Copyright (c) automateprint authors.
Licensed under the MIT license.
*/

package scheduler_test

import (
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/multierr"

	"github.com/Vishnuvikas56/automateprint/pkg/engineerr"
	"github.com/Vishnuvikas56/automateprint/pkg/printtypes"
	"github.com/Vishnuvikas56/automateprint/pkg/scheduler"
)

// baselineFleet is the seed fleet from the scheduling engine's seed
// scenarios: six printers spanning every print type combination.
func baselineFleet() map[string]*printtypes.PrinterDef {
	pt := func(ts ...string) map[printtypes.PrintType]struct{} {
		out := make(map[printtypes.PrintType]struct{}, len(ts))
		for _, t := range ts {
			out[printtypes.PrintType(t)] = struct{}{}
		}
		return out
	}
	return map[string]*printtypes.PrinterDef{
		"P1": {ID: "P1", Supported: pt("bw", "color"), PaperCount: map[printtypes.PaperKind]int{"A4": 180, "A3": 50}, Ink: map[printtypes.InkChannel]float64{printtypes.InkBlack: 70, printtypes.InkCyan: 60, printtypes.InkMag: 55, printtypes.InkYel: 50}, Speed: 35},
		"P2": {ID: "P2", Supported: pt("bw", "thick"), PaperCount: map[printtypes.PaperKind]int{"A4": 90, "Thick": 40}, Ink: map[printtypes.InkChannel]float64{printtypes.InkBlack: 80}, Speed: 25},
		"P3": {ID: "P3", Supported: pt("color", "glossy"), PaperCount: map[printtypes.PaperKind]int{"Glossy": 30, "A4": 70}, Ink: map[printtypes.InkChannel]float64{printtypes.InkBlack: 50, printtypes.InkCyan: 45, printtypes.InkMag: 46, printtypes.InkYel: 42}, Speed: 20},
		"P4": {ID: "P4", Supported: pt("postersize"), PaperCount: map[printtypes.PaperKind]int{"Poster": 15}, Ink: map[printtypes.InkChannel]float64{printtypes.InkBlack: 40, printtypes.InkCyan: 30, printtypes.InkMag: 32, printtypes.InkYel: 28}, Speed: 15},
		"P5": {ID: "P5", Supported: pt("bw", "color", "glossy"), PaperCount: map[printtypes.PaperKind]int{"A4": 200, "Glossy": 60}, Ink: map[printtypes.InkChannel]float64{printtypes.InkBlack: 85, printtypes.InkCyan: 80, printtypes.InkMag: 79, printtypes.InkYel: 78}, Speed: 50},
		"P6": {ID: "P6", Supported: pt("bw", "color", "thick", "glossy", "postersize"), PaperCount: map[printtypes.PaperKind]int{"A4": 300, "Thick": 80, "Glossy": 100, "Poster": 40}, Ink: map[printtypes.InkChannel]float64{printtypes.InkBlack: 95, printtypes.InkCyan: 92, printtypes.InkMag: 93, printtypes.InkYel: 94}, Speed: 65},
	}
}

func req(kind string, n int) printtypes.Requirement {
	return printtypes.Requirement{PaperCount: map[printtypes.PaperKind]int{printtypes.PaperKind(kind): n}}
}

var _ = Describe("ScheduleOrder", func() {
	var s *scheduler.Scheduler

	BeforeEach(func() {
		var err error
		s, err = scheduler.New(baselineFleet(), nil)
		Expect(err).NotTo(HaveOccurred())
	})

	It("assigns a simple multi-type order to the strongest capable printer (S1)", func() {
		order := printtypes.Order{
			"bw":    req("A4", 10),
			"color": req("A4", 5),
		}
		result, err := s.ScheduleOrder(order, "", 5, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Assignments).To(HaveLen(1))
		Expect(result.Assignments[0]).To(BeElementOf("P5", "P6"))
		Expect(result.SubOrders[0]).To(ConsistOf(printtypes.PrintType("bw"), printtypes.PrintType("color")))

		winner := result.Assignments[0]
		after, err := s.PrinterStatus(winner)
		Expect(err).NotTo(HaveOccurred())
		Expect(after.PaperCount["A4"]).To(Equal(beforeA4(winner) - 15))
	})

	It("decomposes a four-type order and routes postersize through P6 (S2)", func() {
		order := printtypes.Order{
			"bw":         req("A4", 50),
			"color":      req("A4", 20),
			"glossy":     req("Glossy", 10),
			"postersize": req("Poster", 2),
		}

		result, err := s.ScheduleOrder(order, "", 5, nil)
		Expect(err).NotTo(HaveOccurred())

		union := map[printtypes.PrintType]struct{}{}
		for _, sub := range result.SubOrders {
			for _, t := range sub {
				union[t] = struct{}{}
			}
		}
		Expect(union).To(HaveLen(4))

		foundPosterOnP6 := false
		for i, sub := range result.SubOrders {
			for _, t := range sub {
				if t == "postersize" && result.Assignments[i] == "P6" {
					foundPosterOnP6 = true
				}
			}
		}
		Expect(foundPosterOnP6).To(BeTrue())
	})

	It("rejects an order with no capable printer (S3)", func() {
		order := printtypes.Order{
			"holographic": req("Holo", 5),
		}

		beforeStatus := snapshotAll(s)

		_, err := s.ScheduleOrder(order, "", 5, nil)
		Expect(err).To(HaveOccurred())
		var noCapable *engineerr.NoCapablePrinter
		Expect(errors.As(err, &noCapable)).To(BeTrue())

		Expect(snapshotAll(s)).To(Equal(beforeStatus))
	})

	It("hard-fails on paper exhaustion across every capable printer (S4)", func() {
		order := printtypes.Order{
			"bw": req("A4", 10000),
		}

		_, err := s.ScheduleOrder(order, "", 5, nil)
		Expect(err).To(HaveOccurred())

		found := false
		for _, e := range multierr.Errors(err) {
			var ir *engineerr.InsufficientResource
			if errors.As(e, &ir) && ir.Resource == "paper:A4" {
				found = true
			}
		}
		if !found {
			var ir *engineerr.InsufficientResource
			found = errors.As(err, &ir) && ir.Resource == "paper:A4"
		}
		Expect(found).To(BeTrue())
	})

	It("overflows the queue on the third order routed to the same printer (S6)", func() {
		single := map[string]*printtypes.PrinterDef{
			"P6": baselineFleet()["P6"],
		}
		sOverflow, err := scheduler.New(single, nil, scheduler.WithMaxQueueLength(2))
		Expect(err).NotTo(HaveOccurred())

		order := printtypes.Order{"postersize": req("Poster", 1)}

		_, err = sOverflow.ScheduleOrder(order, "o1", 5, nil)
		Expect(err).NotTo(HaveOccurred())
		_, err = sOverflow.ScheduleOrder(order, "o2", 5, nil)
		Expect(err).NotTo(HaveOccurred())

		before, ferr := sOverflow.PrinterStatus("P6")
		Expect(ferr).NotTo(HaveOccurred())

		_, err = sOverflow.ScheduleOrder(order, "o3", 5, nil)
		Expect(err).To(HaveOccurred())
		var overflow *engineerr.QueueOverflow
		Expect(errors.As(err, &overflow)).To(BeTrue())

		after, ferr := sOverflow.PrinterStatus("P6")
		Expect(ferr).NotTo(HaveOccurred())
		Expect(after.PaperCount).To(Equal(before.PaperCount))
		Expect(after.Ink).To(Equal(before.Ink))
	})

	It("serves a repeated identical order from cache without re-running the planner (S7)", func() {
		order := printtypes.Order{
			"bw": req("A4", 5),
		}

		first, err := s.ScheduleOrder(order, "o1", 3, nil)
		Expect(err).NotTo(HaveOccurred())

		// The cache key covers paper, ink and queue sizes, so the first
		// commit is cancelled to bring the fleet back to the state the
		// cached entry was keyed on.
		cancelled, cerr := s.CancelOrder("o1", "")
		Expect(cerr).NotTo(HaveOccurred())
		Expect(cancelled).To(BeTrue())

		second, err := s.ScheduleOrder(order, "o2", 7, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Assignments).To(Equal(first.Assignments))
		Expect(s.SystemStatus().CacheEntries).To(Equal(1))

		status, ferr := s.PrinterStatus(first.Assignments[0])
		Expect(ferr).NotTo(HaveOccurred())
		Expect(status.QueueSize).To(Equal(1))
	})

	It("resolves concurrent conflicting schedules via retry, consuming one A4 sheet per success (S5)", func() {
		single := map[string]*printtypes.PrinterDef{
			"P1": {ID: "P1", Supported: map[printtypes.PrintType]struct{}{"bw": {}}, PaperCount: map[printtypes.PaperKind]int{"A4": 2}, Ink: map[printtypes.InkChannel]float64{printtypes.InkBlack: 70}, Speed: 35},
		}
		sConflict, err := scheduler.New(single, nil, scheduler.WithMaxRetries(5), scheduler.WithRetryDelay(5*time.Millisecond))
		Expect(err).NotTo(HaveOccurred())

		order := printtypes.Order{"bw": req("A4", 1)}

		var wg sync.WaitGroup
		results := make([]error, 2)
		wg.Add(2)
		for i := 0; i < 2; i++ {
			i := i
			go func() {
				defer wg.Done()
				_, callErr := sConflict.ScheduleOrder(order, "", 5, nil)
				results[i] = callErr
			}()
		}
		wg.Wait()

		successes := 0
		for _, e := range results {
			if e == nil {
				successes++
			}
		}
		Expect(successes).To(BeNumerically(">=", 1))

		status, ferr := sConflict.PrinterStatus("P1")
		Expect(ferr).NotTo(HaveOccurred())
		Expect(status.PaperCount["A4"]).To(Equal(2 - successes))
	})
})

func beforeA4(printerID string) int {
	switch printerID {
	case "P5":
		return 200
	case "P6":
		return 300
	}
	return 0
}

func snapshotAll(s *scheduler.Scheduler) map[string]map[printtypes.PaperKind]int {
	out := map[string]map[printtypes.PaperKind]int{}
	for _, id := range []string{"P1", "P2", "P3", "P4", "P5", "P6"} {
		st, err := s.PrinterStatus(id)
		if err == nil {
			out[id] = st.PaperCount
		}
	}
	return out
}
