// Package impedance computes the two-leg equivalent circuit of a grid
// connection point and the fault impedance of each fault-ride-through test.
//
// The grid-parameter stage (NewEquivalentCircuit) runs once per project.
// The per-fault stage (Calculator.Solve) is a pure function of one test and
// the shared, read-only circuit, so tests may be solved in any order or in
// parallel.
//
// Intermediate values are rounded to fixed decimal places (7 for the
// network impedance, 5 for the leg split, 4 for the zero-sequence
// resistance) so results match the reference worksheets digit for digit.
package impedance
