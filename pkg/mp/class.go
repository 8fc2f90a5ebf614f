package mp

// ProblemClass is the mathematical-programming class a model belongs to.
// The class is derived from the model's variable domains and linearity
// tags, never set by the user.
type ProblemClass string

const (
	// ClassLP: all expressions linear, all variables continuous.
	ClassLP ProblemClass = "LP"
	// ClassIP: all expressions linear, every variable integer or binary.
	ClassIP ProblemClass = "IP"
	// ClassNLP: at least one nonlinear expression, all variables continuous.
	ClassNLP ProblemClass = "NLP"
	// ClassMILP: all expressions linear, a mix of continuous and
	// integer/binary variables.
	ClassMILP ProblemClass = "MILP"
	// ClassMINLP: at least one nonlinear expression and at least one
	// integer/binary variable.
	ClassMINLP ProblemClass = "MINLP"
)

// Nonlinear reports whether the class admits nonlinear expressions.
func (c ProblemClass) Nonlinear() bool {
	return c == ClassNLP || c == ClassMINLP
}

// Integral reports whether the class admits integer variables.
func (c ProblemClass) Integral() bool {
	return c == ClassIP || c == ClassMILP || c == ClassMINLP
}
