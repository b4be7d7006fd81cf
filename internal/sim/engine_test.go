package sim_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"bactsim/internal/dynamo"
	"bactsim/internal/integrators"
	"bactsim/internal/model"
	"bactsim/internal/sim"
)

var _ = Describe("Simulate", func() {
	var (
		ctx context.Context
		cfg sim.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = sim.DefaultConfig()
	})

	It("is deterministic for fixed inputs", func() {
		p := model.DefaultParams()

		a, err := sim.Simulate(ctx, p, cfg)
		Expect(err).NotTo(HaveOccurred())
		b, err := sim.Simulate(ctx, p, cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(b.Times).To(Equal(a.Times))
		Expect(b.Damage).To(Equal(a.Damage))
		Expect(b.Density).To(Equal(a.Density))
	})

	It("produces the requested grid", func() {
		cfg.Horizon = 6.0
		cfg.Samples = 100

		tr, err := sim.Simulate(ctx, model.DefaultParams(), cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(tr.Len()).To(Equal(100))
		Expect(tr.Times[0]).To(BeZero())
		Expect(tr.Times[99]).To(BeNumerically("~", 6.0, 1e-12))

		interval := 6.0 / 99.0
		for i := 1; i < tr.Len(); i++ {
			Expect(tr.Times[i] - tr.Times[i-1]).To(BeNumerically("~", interval, 1e-9))
		}
	})

	It("rejects k = 0 before integrating", func() {
		p := model.DefaultParams()
		p.K = 0

		_, err := sim.Simulate(ctx, p, cfg)
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})

	It("rejects a degenerate horizon", func() {
		cfg.Horizon = 0
		_, err := sim.Simulate(ctx, model.DefaultParams(), cfg)
		Expect(err).To(MatchError(dynamo.ErrDegenerateHorizon))

		cfg.Horizon = -1
		_, err = sim.Simulate(ctx, model.DefaultParams(), cfg)
		Expect(err).To(MatchError(dynamo.ErrDegenerateHorizon))
	})

	It("rejects too few samples", func() {
		cfg.Samples = 1
		_, err := sim.Simulate(ctx, model.DefaultParams(), cfg)
		Expect(err).To(HaveOccurred())
	})

	It("honors context cancellation", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := sim.Simulate(canceled, model.DefaultParams(), cfg)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("supports fixed-step integrators through the same grid", func() {
		p := model.DefaultParams()

		s := sim.New(model.NewBacterial(p), integrators.NewRK4())
		tr, err := s.Run(ctx, p.InitState(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(tr.Len()).To(Equal(cfg.Samples))

		// RK4 on substeps agrees with the adaptive reference to well under
		// the sampling resolution.
		ref, err := sim.Simulate(ctx, p, cfg)
		Expect(err).NotTo(HaveOccurred())
		for i := range ref.Damage {
			Expect(tr.Damage[i]).To(BeNumerically("~", ref.Damage[i], 1e-4))
		}
	})

	Describe("damage relaxation", func() {
		It("approaches alpha*c monotonically", func() {
			p := model.Params{R: 1, K: 1, T: 100, Alpha: 1, C: 0.5, X0: 0.1, Y0: 0}
			cfg.Horizon = 30

			tr, err := sim.Simulate(ctx, p, cfg)
			Expect(err).NotTo(HaveOccurred())

			for i := 1; i < tr.Len(); i++ {
				Expect(tr.Damage[i]).To(BeNumerically(">=", tr.Damage[i-1]-1e-9))
			}
			Expect(tr.Damage[tr.Len()-1]).To(BeNumerically("~", 0.5, 1e-6))
		})
	})

	Describe("growth gating", func() {
		It("freezes density at x0 when T = 0", func() {
			p := model.Params{R: 1, K: 1, T: 0, Alpha: 2.5, C: 0.2, X0: 0.1, Y0: 0}

			tr, err := sim.Simulate(ctx, p, cfg)
			Expect(err).NotTo(HaveOccurred())

			for _, x := range tr.Density {
				Expect(x).To(BeNumerically("~", 0.1, 1e-12))
			}
		})

		It("saturates logistically at k when the gate stays open", func() {
			p := model.Params{R: 1, K: 1, T: 100, Alpha: 1, C: 0.5, X0: 0.1, Y0: 0}
			cfg.Horizon = 30

			tr, err := sim.Simulate(ctx, p, cfg)
			Expect(err).NotTo(HaveOccurred())

			for i := 1; i < tr.Len(); i++ {
				Expect(tr.Density[i]).To(BeNumerically(">=", tr.Density[i-1]-1e-9))
			}
			Expect(tr.Density[tr.Len()-1]).To(BeNumerically("~", 1.0, 1e-6))
		})
	})

	Describe("end-to-end collapse scenario", func() {
		It("reports the crash within one sampling interval and halts growth after it", func() {
			// y(t) = alpha*c*(1-e^{-rt}) crosses T at t* = ln(ac/(ac-T)).
			p := model.Params{R: 1, K: 1, T: 0.4, Alpha: 2.5, C: 0.2, X0: 0.1, Y0: 0}
			cfg.Horizon = 6
			cfg.Samples = 100

			tr, err := sim.Simulate(ctx, p, cfg)
			Expect(err).NotTo(HaveOccurred())

			ac := p.Alpha * p.C
			tStar := math.Log(ac / (ac - p.T))

			crashAt, crashed := sim.CrashTime(tr, p.T)
			Expect(crashed).To(BeTrue())
			Expect(crashAt).To(BeNumerically("~", tStar, tr.Interval()))

			// Damage keeps rising toward alpha*c past the threshold.
			Expect(tr.Damage[tr.Len()-1]).To(BeNumerically(">", p.T))
			Expect(tr.Damage[tr.Len()-1]).To(BeNumerically("<", ac))

			// Density grows until the crash, then plateaus.
			var crashIdx int
			for i, t := range tr.Times {
				if t >= crashAt {
					crashIdx = i
					break
				}
			}
			Expect(tr.Density[crashIdx]).To(BeNumerically(">", p.X0))
			plateau := tr.Density[crashIdx]
			Expect(tr.Density[tr.Len()-1]).To(BeNumerically("~", plateau, 1e-3))
		})
	})
})

var _ = Describe("CrashTime", func() {
	It("returns the first sample at or above the threshold", func() {
		tr := &sim.Trajectory{
			Times:   []float64{0, 1, 2, 3, 4},
			Damage:  []float64{0.1, 0.3, 0.5, 0.7, 0.9},
			Density: []float64{1, 1, 1, 1, 1},
		}

		at, ok := sim.CrashTime(tr, 0.5)
		Expect(ok).To(BeTrue())
		Expect(at).To(Equal(2.0))
	})

	It("treats exact threshold equality as crashed", func() {
		tr := &sim.Trajectory{
			Times:  []float64{0, 1},
			Damage: []float64{0.2, 0.5},
		}

		at, ok := sim.CrashTime(tr, 0.5)
		Expect(ok).To(BeTrue())
		Expect(at).To(Equal(1.0))
	})

	It("reports never observed when damage stays below threshold", func() {
		tr := &sim.Trajectory{
			Times:  []float64{0, 1, 2},
			Damage: []float64{0.1, 0.2, 0.3},
		}

		_, ok := sim.CrashTime(tr, 0.5)
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Compare", func() {
	var (
		ctx  context.Context
		cfg  sim.Config
		base model.Params
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = sim.DefaultConfig()
		base = model.DefaultParams() // T = 0.5
	})

	It("varies exactly one parameter across two concurrent runs", func() {
		// alpha*c = 0.25 for run A (never crashes), 2.0 for run B.
		res, err := sim.Compare(ctx, base, "conc", 0.1, 0.8, cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Param).To(Equal("conc"))
		Expect(res.Runs[0].Value).To(Equal(0.1))
		Expect(res.Runs[1].Value).To(Equal(0.8))

		Expect(res.Runs[0].Crashed).To(BeFalse())
		Expect(res.Runs[1].Crashed).To(BeTrue())

		// y(t) = 2(1-e^{-t}) crosses 0.5 at ln(2/1.5).
		tStar := math.Log(2.0 / 1.5)
		Expect(res.Runs[1].CrashAt).To(BeNumerically("~", tStar, res.Runs[1].Trajectory.Interval()))
	})

	It("computes shared axis bounds with 1.1x headroom", func() {
		res, err := sim.Compare(ctx, base, "conc", 0.1, 0.8, cfg)
		Expect(err).NotTo(HaveOccurred())

		maxDamage := math.Max(res.Runs[0].Trajectory.MaxDamage(), res.Runs[1].Trajectory.MaxDamage())
		maxDensity := math.Max(res.Runs[0].Trajectory.MaxDensity(), res.Runs[1].Trajectory.MaxDensity())

		Expect(res.Bounds.MaxDamage).To(BeNumerically("~", 1.1*maxDamage, 1e-12))
		Expect(res.Bounds.MaxDensity).To(BeNumerically("~", 1.1*maxDensity, 1e-12))
	})

	It("matches two independent single runs", func() {
		res, err := sim.Compare(ctx, base, "k", 0.5, 1.0, cfg)
		Expect(err).NotTo(HaveOccurred())

		pa, err := base.WithParam("k", 0.5)
		Expect(err).NotTo(HaveOccurred())
		solo, err := sim.Simulate(ctx, pa, cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(res.Runs[0].Trajectory.Damage).To(Equal(solo.Damage))
		Expect(res.Runs[0].Trajectory.Density).To(Equal(solo.Density))
	})

	It("rejects an unknown parameter name", func() {
		_, err := sim.Compare(ctx, base, "bogus", 0.1, 0.2, cfg)
		Expect(err).To(MatchError(dynamo.ErrUnknownParameter))
	})

	It("rejects values outside the parameter domain", func() {
		_, err := sim.Compare(ctx, base, "k", 0.5, 0.0, cfg)
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})
})
