// Package solver is the front door of optiroute: it classifies a model,
// selects a compatible engine, builds the engine-specific form, runs the
// solve under timeout enforcement, and normalizes the outcome.
//
// Pipeline stages, in order:
//
//   - Classify: derive the problem class (LP, IP, NLP, MILP, MINLP) from
//     variable kinds and expression structure
//   - Select: pick an installed engine whose capabilities cover the class
//   - Build: translate the model into the engine's native form
//   - Dispatch: run the engine in isolation with a hard time ceiling
//   - Normalize: fold the engine's native status into the uniform vocabulary
//
// Example usage:
//
//	s, err := solver.NewDefault()
//	if err != nil {
//	    return err
//	}
//	result := s.Run(ctx, model, mp.Options{TimeLimit: 30 * time.Second})
//	if result.Status.HasSolution() {
//	    fmt.Println(*result.Objective)
//	}
//
// Run never returns an error: every failure mode is folded into the
// result with a status of ERROR and a failure kind telling the caller
// whether the model, the environment, or optiroute itself is at fault.
package solver
