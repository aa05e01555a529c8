package solver_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ultrafast-lab/demag/internal/demag"
	"github.com/ultrafast-lab/demag/internal/integrators"
	"github.com/ultrafast-lab/demag/internal/material"
	"github.com/ultrafast-lab/demag/internal/solver"
	"github.com/ultrafast-lab/demag/internal/structure"
	"github.com/ultrafast-lab/demag/internal/threetemp"
)

func buildNickel(n int) *structure.Structure {
	props, err := material.Resolve("Ni", 631)
	Expect(err).NotTo(HaveOccurred())
	st, err := structure.Build(props, n)
	Expect(err).NotTo(HaveOccurred())
	return st
}

var _ = Describe("Solver", func() {
	var (
		sv  *solver.Solver
		p   solver.Params
		cfg demag.RunConfig
	)

	BeforeEach(func() {
		sv = solver.New()
		p = solver.Params{
			Material:      "Ni",
			InitialTemp:   300,
			CurieTemp:     631,
			Fluence:       2.5,
			PulseDuration: 0.1,
			Wavelength:    800,
			Layers:        5,
		}
		cfg = demag.DefaultRunConfig()
		cfg.TStart = -0.2e-12
		cfg.TEnd = 0.5e-12
		cfg.OutputStep = 10e-15
	})

	Describe("parameter validation", func() {
		It("rejects negative fluence before any work", func() {
			p.Fluence = -1
			res, err := sv.Run(context.Background(), buildNickel(5), p, cfg)
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(demag.ErrInvalidParameter))
		})

		It("rejects non-positive initial temperature", func() {
			p.InitialTemp = 0
			_, err := sv.Run(context.Background(), buildNickel(5), p, cfg)
			Expect(err).To(MatchError(demag.ErrInvalidParameter))
		})

		It("rejects non-positive pulse duration", func() {
			p.PulseDuration = 0
			_, err := sv.Run(context.Background(), buildNickel(5), p, cfg)
			Expect(err).To(MatchError(demag.ErrInvalidParameter))
		})

		It("rejects an inverted time window", func() {
			cfg.TEnd = cfg.TStart - 1e-12
			_, err := sv.Run(context.Background(), buildNickel(5), p, cfg)
			Expect(err).To(MatchError(demag.ErrInvalidParameter))
		})
	})

	Describe("zero-fluence run", func() {
		It("stays at the initial temperatures and equilibrium magnetization", func() {
			p.Fluence = 0
			st := buildNickel(3)
			res, err := sv.Run(context.Background(), st, p, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.ShapesMatch()).To(BeTrue())

			m0 := threetemp.EquilibriumMagnetization(300, 631)
			for k := range res.Times {
				for i := range res.Positions {
					Expect(res.Electrons[k][i]).To(BeNumerically("~", 300, 1e-6))
					Expect(res.Phonons[k][i]).To(BeNumerically("~", 300, 1e-6))
					Expect(res.Magnetization[k][i]).To(BeNumerically("~", m0, 1e-6))
				}
			}
		})
	})

	Describe("pulsed run", func() {
		It("produces a well-formed result grid", func() {
			st := buildNickel(5)
			res, err := sv.Run(context.Background(), st, p, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.ShapesMatch()).To(BeTrue())

			Expect(res.Times[0]).To(Equal(cfg.TStart))
			Expect(res.Times[len(res.Times)-1]).To(BeNumerically("~", cfg.TEnd, 1e-18))
			for k := 1; k < len(res.Times); k++ {
				Expect(res.Times[k]).To(BeNumerically(">", res.Times[k-1]))
			}
			for k := 1; k < len(res.Positions); k++ {
				Expect(res.Positions[k]).To(BeNumerically(">", res.Positions[k-1]))
			}
			Expect(res.Stats.Steps).To(BeNumerically(">", 0))
		})

		It("heats the absorbing surface within one pulse duration", func() {
			st := buildNickel(5)
			res, err := sv.Run(context.Background(), st, p, cfg)
			Expect(err).NotTo(HaveOccurred())

			pulseEnd := p.PulseDuration * 1e-12
			heated := false
			for k, t := range res.Times {
				if t > 0 && t <= pulseEnd && res.Electrons[k][0] > 310 {
					heated = true
					break
				}
			}
			Expect(heated).To(BeTrue(), "surface electrons should heat during the pulse")
		})

		It("keeps electrons at or above phonons through the pulse", func() {
			st := buildNickel(5)
			res, err := sv.Run(context.Background(), st, p, cfg)
			Expect(err).NotTo(HaveOccurred())

			for k, t := range res.Times {
				if t < 0 || t > 0.2e-12 {
					continue
				}
				Expect(res.Electrons[k][0]).To(BeNumerically(">=", res.Phonons[k][0]-1e-6))
			}
		})

		It("relaxes both temperatures toward a common equilibrium", func() {
			cfg.TEnd = 1.0e-12
			st := buildNickel(5)
			res, err := sv.Run(context.Background(), st, p, cfg)
			Expect(err).NotTo(HaveOccurred())

			peakGap := 0.0
			for k := range res.Times {
				gap := res.Electrons[k][0] - res.Phonons[k][0]
				peakGap = math.Max(peakGap, gap)
			}
			last := len(res.Times) - 1
			finalGap := res.Electrons[last][0] - res.Phonons[last][0]

			Expect(peakGap).To(BeNumerically(">", 10))
			Expect(math.Abs(finalGap)).To(BeNumerically("<", peakGap/10))
		})

		It("quenches magnetization during heating and recovers it on cooling", func() {
			// Representative scenario: Ni, T0=300 K, 2.5 mJ/cm^2, 0.1 ps, N=10.
			p.Layers = 10
			cfg.TEnd = 2.0e-12
			st := buildNickel(10)
			res, err := sv.Run(context.Background(), st, p, cfg)
			Expect(err).NotTo(HaveOccurred())

			avg := func(k int) float64 {
				sum := 0.0
				for i := range res.Positions {
					sum += res.Magnetization[k][i]
				}
				return sum / float64(len(res.Positions))
			}

			m0 := avg(0)
			minM, minK := m0, 0
			for k := range res.Times {
				if m := avg(k); m < minM {
					minM, minK = m, k
				}
			}
			final := avg(len(res.Times) - 1)

			Expect(minM).To(BeNumerically("<", 0.95*m0), "pulse should demagnetize the film")
			Expect(final).To(BeNumerically(">", minM), "moment should recover after cooling")
			Expect(res.Times[minK]).To(BeNumerically(">", 0), "quench happens after the pump")
			Expect(res.Stats.MMin).To(BeNumerically("<=", minM))
		})
	})

	Describe("output grid", func() {
		It("clamps the final sample to the window end for a non-dividing step", func() {
			cfg.OutputStep = 3e-15 // 0.7 ps / 3 fs is not an integer
			st := buildNickel(3)
			res, err := sv.Run(context.Background(), st, p, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.ShapesMatch()).To(BeTrue())

			Expect(res.Times[len(res.Times)-1]).To(Equal(cfg.TEnd))
			for k := 1; k < len(res.Times); k++ {
				Expect(res.Times[k]).To(BeNumerically(">", res.Times[k-1]))
			}
		})
	})

	Describe("integrator selection", func() {
		It("completes a run with the fixed-step integrator", func() {
			sv.SetIntegrator(integrators.NewRK4())
			cfg.Dt = 5e-16
			st := buildNickel(3)
			res, err := sv.Run(context.Background(), st, p, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.ShapesMatch()).To(BeTrue())

			heated := false
			for k, t := range res.Times {
				if t > 0 && res.Electrons[k][0] > 310 {
					heated = true
					break
				}
			}
			Expect(heated).To(BeTrue(), "fixed-step run should resolve the pulse heating")
		})
	})

	Describe("cancellation", func() {
		It("aborts with CancelledError and returns no result", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			res, err := sv.Run(ctx, buildNickel(5), p, cfg)
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(demag.ErrCancelled))

			var cerr *demag.CancelledError
			Expect(errors.As(err, &cerr)).To(BeTrue())
		})
	})

	Describe("budgets", func() {
		It("surfaces an exhausted step budget as TimeoutError", func() {
			cfg.MaxSteps = 10
			res, err := sv.Run(context.Background(), buildNickel(5), p, cfg)
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(demag.ErrTimeout))
		})
	})

	Describe("divergence", func() {
		It("fails with DivergenceError when the tolerance is unreachable", func() {
			// With the floor just under the initial step, the first rejected
			// trial already drives the controller below MinDt; a tolerance
			// this far under the rounding noise of the error estimate
			// guarantees that rejection.
			cfg.Dt = 1e-15
			cfg.MinDt = 9e-16
			cfg.MaxDt = 1e-14
			cfg.Tolerance = 1e-18

			res, err := sv.Run(context.Background(), buildNickel(5), p, cfg)
			Expect(res).To(BeNil())
			Expect(err).To(MatchError(demag.ErrDivergence))

			var derr *demag.DivergenceError
			Expect(errors.As(err, &derr)).To(BeTrue())
			Expect(derr.Subsystem).NotTo(BeEmpty())
		})
	})

	Describe("progress reporting", func() {
		It("reaches 100 percent through non-decreasing milestones", func() {
			var percents []int
			sv.AddObserver(solver.FuncObserver(func(percent int, t float64) {
				percents = append(percents, percent)
			}))

			_, err := sv.Run(context.Background(), buildNickel(3), p, cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(percents).NotTo(BeEmpty())
			for i := 1; i < len(percents); i++ {
				Expect(percents[i]).To(BeNumerically(">=", percents[i-1]))
			}
			Expect(percents[len(percents)-1]).To(Equal(100))
		})
	})

	Describe("run isolation", func() {
		It("returns independent results for back-to-back runs", func() {
			st := buildNickel(3)
			a, err := sv.Run(context.Background(), st, p, cfg)
			Expect(err).NotTo(HaveOccurred())
			b, err := sv.Run(context.Background(), st, p, cfg)
			Expect(err).NotTo(HaveOccurred())

			b.Electrons[0][0] = -1
			Expect(a.Electrons[0][0]).To(BeNumerically("~", 300, 1e-6))
			for k := range a.Times {
				for i := range a.Positions {
					if k == 0 && i == 0 {
						continue
					}
					Expect(a.Electrons[k][i]).To(Equal(b.Electrons[k][i]))
				}
			}
		})
	})
})
