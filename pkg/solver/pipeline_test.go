package solver

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/optiroute/optiroute/internal/engine/descent"
	"github.com/optiroute/optiroute/internal/engine/simplex"
	"github.com/optiroute/optiroute/internal/registry"
	"github.com/optiroute/optiroute/pkg/mp"
)

var _ = Describe("Run", func() {
	var s *Solver

	BeforeEach(func() {
		r := registry.New()
		Expect(r.Register(simplex.New())).To(Succeed())
		Expect(r.Register(descent.New())).To(Succeed())
		s = New(Params{Registry: r})
	})

	Context("with a linear model", func() {
		It("should route to the LP engine and prove optimality", func() {
			result := s.Run(context.Background(), capacityModel(), mp.Options{})
			Expect(result.Status).To(Equal(mp.StatusOptimal))
			Expect(result.Engine).To(Equal(simplex.Name))
			Expect(result.Class).To(Equal(mp.ClassLP))
			Expect(result.Objective).NotTo(BeNil())
			Expect(*result.Objective).To(BeNumerically("~", 10.0, 1e-9))
		})
	})

	Context("with a nonlinear model", func() {
		It("should route to the descent engine", func() {
			shifted := mp.Add{Terms: []mp.Expr{mp.Ref{Name: "x"}, mp.Const{Value: -3}}}
			m := &mp.Model{
				Name: "parabola",
				Variables: []mp.Variable{
					{Name: "x", Kind: mp.Continuous, Lower: math.Inf(-1), Upper: math.Inf(1)},
				},
				Objective: mp.Objective{Sense: mp.Minimize, Expr: mp.Pow{Base: shifted, Exp: 2}},
			}

			result := s.Run(context.Background(), m, mp.Options{})
			Expect(result.Class).To(Equal(mp.ClassNLP))
			Expect(result.Engine).To(Equal(descent.Name))
			Expect(result.Status).To(Equal(mp.StatusFeasible))
			Expect(result.Assignment).To(HaveKey("x"))
			Expect(result.Assignment["x"]).To(BeNumerically("~", 3.0, 1e-3))
		})
	})

	Context("with an infeasible model", func() {
		It("should report INFEASIBLE without an assignment", func() {
			m := capacityModel()
			m.Constraints = append(m.Constraints, mp.Constraint{
				Expr: mp.Ref{Name: "x"}, Op: mp.GE, RHS: 100,
			})

			result := s.Run(context.Background(), m, mp.Options{})
			Expect(result.Status).To(Equal(mp.StatusInfeasible))
			Expect(result.Objective).To(BeNil())
			Expect(result.Assignment).To(BeNil())
		})
	})

	Context("with an integer model and no integer engine", func() {
		It("should fail before dispatch with an environment failure", func() {
			m := capacityModel()
			m.Variables[0].Kind = mp.Integer
			m.Variables[1].Kind = mp.Integer

			result := s.Run(context.Background(), m, mp.Options{})
			Expect(result.Class).To(Equal(mp.ClassIP))
			Expect(result.Status).To(Equal(mp.StatusError))
			Expect(result.Failure).To(Equal(mp.FailureEnvironment))
		})
	})
})
