// Package scenario turns calculated tests into simulation scenario plans:
// the element settings of the two-leg equivalent circuit, and per test the
// events, the active leg and the controller setpoints the simulation layer
// has to apply.
package scenario
