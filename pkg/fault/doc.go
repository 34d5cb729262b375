// Package fault defines fault-ride-through test definitions and the ordered
// catalogs that hold them.
//
// A Test describes one grid-code test point: how long the fault lasts, which
// residual voltage it must produce, which equivalent-circuit leg it is applied
// to and how the generating plant is operated before the fault. Tests never
// carry computed values; fault impedances are produced by package impedance.
//
// # Catalogs
//
// A Catalog is keyed by a standard identifier and a unit type, for example
// 4110-1 for medium-voltage type 1 units. The built-in catalogs are returned
// by Standard:
//
//	cat, err := fault.Standard(fault.Key{Standard: "4110", Type: 1})
//
// Catalogs can also be read from YAML files with LoadCatalog or persisted with
// package catalogstore.
//
// # Fault type overload
//
// FaultType TwoPhaseOrSwitch is used by the grid code both for two-phase short
// circuits and for voltage-step (switching) tests. Which one is meant depends
// on the residual voltage. Kind resolves the overload in one place and every
// consumer dispatches on the Kind instead of re-inspecting the raw fields.
package fault
