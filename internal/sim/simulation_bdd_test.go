package sim_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pendsim/internal/dynamo"
	"github.com/san-kum/pendsim/internal/integrators"
	"github.com/san-kum/pendsim/internal/physics"
	"github.com/san-kum/pendsim/internal/sim"
	"github.com/san-kum/pendsim/internal/solver"
)

var _ = Describe("Simulation", func() {
	var s *sim.Simulation

	newSim := func(cfg sim.Config) *sim.Simulation {
		GinkgoHelper()
		out, err := sim.New(cfg)
		Expect(err).NotTo(HaveOccurred())
		return out
	}

	Context("a double pendulum released from the horizontal", func() {
		BeforeEach(func() {
			s = newSim(sim.DefaultConfig())
		})

		It("starts integrating", func() {
			Expect(s.Mode()).To(Equal(sim.Integrating))
			Expect(s.Positions()).To(HaveLen(2))
		})

		It("converts potential into kinetic energy as it falls", func() {
			start := s.Energy()
			Expect(start.Kinetic).To(BeZero())
			for i := 0; i < 20; i++ {
				Expect(s.Step()).To(Succeed())
			}
			now := s.Energy()
			Expect(now.Kinetic).To(BeNumerically(">", 0))
			Expect(now.Potential).To(BeNumerically("<", start.Potential))
			Expect(now.Total).To(BeNumerically("~", start.Total, 1e-6*start.Total))
		})

		When("grabbed", func() {
			BeforeEach(func() {
				for i := 0; i < 10; i++ {
					Expect(s.Step()).To(Succeed())
				}
				Expect(s.SetManualAngle(0, 0.25)).To(Succeed())
			})

			It("pins the angle and drops all velocity", func() {
				Expect(s.Mode()).To(Equal(sim.ManuallyPositioned))
				x := s.State()
				Expect(x[0]).To(Equal(0.25))
				Expect(x.Velocities()).To(HaveEach(BeZero()))
			})

			It("ignores steps", func() {
				before := s.State()
				Expect(s.Step()).To(Succeed())
				Expect(s.State()).To(Equal(before))
			})

			It("resumes with the seeded velocity on release", func() {
				Expect(s.EndManualPositioning(0.5, 0)).To(Succeed())
				Expect(s.Mode()).To(Equal(sim.Integrating))
				Expect(s.State()[2]).To(Equal(0.5))
				Expect(s.Step()).To(Succeed())
				Expect(s.State()[0]).NotTo(Equal(0.25))
			})
		})
	})

	Context("hanging at rest", func() {
		DescribeTable("stays put under every integrator",
			func(kind integrators.Kind) {
				cfg := sim.DefaultConfig()
				cfg.Integrator = kind
				cfg.Initial = nil
				s = newSim(cfg)
				for i := 0; i < 100; i++ {
					Expect(s.Step()).To(Succeed())
				}
				Expect(s.State()).To(Equal(dynamo.State{0, 0, 0, 0}))
				Expect(s.Energy().Total).To(BeZero())
			},
			Entry("euler", integrators.KindEuler),
			Entry("leapfrog", integrators.KindLeapfrog),
			Entry("rk4", integrators.KindRK4),
			Entry("gauss-legendre", integrators.KindGaussLegendre),
		)
	})

	Context("when the stage solver cannot converge", func() {
		It("reports a step error and keeps the state", func() {
			s = newSim(sim.Config{
				Variant:    physics.Simple,
				Params:     physics.DefaultParams(),
				Integrator: integrators.KindGaussLegendre,
				Dt:         0.05,
				Initial:    dynamo.State{math.Pi / 3, 1},
				Solver:     solver.Options{Tolerance: 1e-30, MaxIter: 1},
			})
			before := s.State()

			err := s.Step()
			Expect(err).To(MatchError(dynamo.ErrConvergenceFailure))
			var stepErr *dynamo.StepError
			Expect(errors.As(err, &stepErr)).To(BeTrue())
			Expect(stepErr.State).To(Equal(before))
			Expect(s.State()).To(Equal(before))
		})
	})

	Context("construction", func() {
		It("rejects non-positive lengths", func() {
			cfg := sim.DefaultConfig()
			cfg.Params.L2 = 0
			_, err := sim.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
		})
	})
})
