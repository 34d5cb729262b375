package fault

import (
	"errors"
	"fmt"
	"sort"
)

// Standard identifiers of the built-in catalogs.
const (
	// StandardMV is the medium-voltage connection standard (VDE-AR-N 4110).
	StandardMV = "4110"

	// StandardHV is the high-voltage connection standard (VDE-AR-N 4120).
	StandardHV = "4120"
)

// ErrUnknownCatalog is returned by Standard for keys without a built-in
// definition.
var ErrUnknownCatalog = errors.New("unknown catalog")

type row struct {
	id       int
	duration float64
	ft       FaultType
	uf       float64
	leg      GridLeg
	q        ReactivePowerMode
	phases   int
	uv       float64
}

const (
	lo   = Local
	up   = Upstream
	q0   = ReactiveZero
	qUnd = ReactiveUnderexcited
	qOvr = ReactiveOverexcited
)

// Test tables per FGW TR8 rev. 9.
var standardRows = map[Key][]row{
	{StandardMV, 1}: {
		{1, 0.150, 0, 0.325, lo, qUnd, 3, 0.95},
		{2, 0.150, 0, 0.500, lo, qUnd, 3, 0.95},
		{3, 0.967, 0, 0.750, lo, qUnd, 3, 0.95},
		{4, 3.000, 0, 0.925, lo, qUnd, 3, 1.00},
		{5, 0.220, 1, 0.325, lo, qUnd, 2, 0.95},
		{6, 0.220, 1, 0.500, lo, qUnd, 2, 0.95},
		{7, 3.000, 1, 0.750, lo, qUnd, 2, 0.95},
		{8, 3.000, 1, 0.925, lo, qUnd, 2, 1.00},
		{9, 5.000, 1, 1.050, lo, qOvr, 3, 1.00},
		{10, 5.000, 1, 1.200, lo, qOvr, 3, 1.05},
		{11, 5.000, 1, 1.150, lo, qOvr, 2, 1.00},
		{12, 0.967, 0, 0.750, up, qUnd, 3, 0.95},
		{13, 0.220, 2, 0.325, lo, qUnd, 1, 0.95},
		{14, 60.000, 1, 1.150, lo, q0, 3, 1.00},
		{15, 60.000, 0, 0.850, lo, q0, 3, 1.00},
	},
	{StandardMV, 2}: {
		{1, 0.557, 0, 0.250, lo, qUnd, 3, 1.00},
		{2, 1.575, 0, 0.500, lo, qOvr, 3, 1.00},
		{3, 2.593, 0, 0.750, lo, qUnd, 3, 1.00},
		{4, 3.000, 0, 0.925, lo, q0, 3, 1.00},
		{5, 0.683, 1, 0.250, lo, qUnd, 2, 1.00},
		{6, 1.842, 1, 0.500, lo, qUnd, 2, 1.00},
		{7, 3.000, 1, 0.750, lo, qOvr, 2, 1.00},
		{8, 3.000, 1, 0.925, lo, q0, 2, 1.00},
		{9, 5.000, 1, 1.050, lo, qOvr, 3, 1.00},
		{10, 5.000, 1, 1.200, lo, qOvr, 3, 1.05},
		{11, 5.000, 1, 1.150, lo, qOvr, 2, 1.00},
		{12, 2.593, 0, 0.750, up, qUnd, 3, 1.00},
		{13, 0.683, 2, 0.250, lo, q0, 1, 1.00},
		{14, 60.000, 1, 1.150, lo, q0, 3, 1.00},
		{15, 60.000, 0, 0.850, lo, q0, 3, 1.00},
	},
	{StandardHV, 1}: {
		{1, 0.150, 0, 0.025, lo, qUnd, 3, 0.95},
		{2, 0.150, 0, 0.250, lo, qUnd, 3, 0.95},
		{3, 0.233, 0, 0.500, lo, qUnd, 3, 0.95},
		{4, 0.883, 0, 0.750, lo, qUnd, 3, 0.95},
		{5, 3.000, 1, 0.925, lo, qUnd, 3, 1.00},
		{6, 0.220, 1, 0.025, lo, qUnd, 2, 0.95},
		{7, 0.220, 1, 0.250, lo, qUnd, 2, 0.95},
		{8, 0.384, 1, 0.500, lo, qUnd, 2, 0.95},
		{9, 3.000, 1, 0.750, lo, qUnd, 2, 0.95},
		{10, 3.000, 1, 0.925, lo, qUnd, 2, 1.00},
		{11, 5.000, 1, 1.050, lo, qOvr, 3, 1.00},
		{12, 5.000, 1, 1.200, lo, qOvr, 3, 1.10},
		{13, 5.000, 1, 1.100, lo, qOvr, 2, 1.00},
		{14, 0.833, 0, 0.750, up, qUnd, 3, 0.95},
		{15, 0.220, 2, 0.025, lo, qUnd, 1, 0.95},
		{16, 60.000, 1, 1.150, lo, q0, 3, 1.00},
		{17, 60.000, 2, 0.850, lo, q0, 3, 1.00},
	},
	{StandardHV, 2}: {
		{1, 0.150, 0, 0.000, lo, q0, 3, 1.00},
		{2, 0.988, 0, 0.250, lo, qUnd, 3, 1.00},
		{3, 1.826, 0, 0.500, lo, qOvr, 3, 1.00},
		{4, 2.664, 0, 0.750, lo, qUnd, 3, 1.00},
		{5, 3.000, 1, 0.925, lo, q0, 3, 1.00},
		{6, 0.220, 1, 0.000, lo, q0, 2, 1.00},
		{7, 1.147, 1, 0.250, lo, qUnd, 2, 1.00},
		{8, 2.073, 1, 0.500, lo, qUnd, 2, 1.00},
		{9, 3.000, 1, 0.750, lo, qOvr, 2, 1.00},
		{10, 3.000, 1, 0.925, lo, q0, 2, 1.00},
		{11, 5.000, 1, 1.050, lo, qOvr, 3, 1.00},
		{12, 5.000, 1, 1.200, lo, qOvr, 3, 1.00},
		{13, 5.000, 1, 1.100, lo, qOvr, 2, 1.10},
		{14, 2.664, 0, 0.750, up, qUnd, 3, 1.00},
		{15, 0.220, 2, 0.000, lo, q0, 1, 1.00},
		{16, 60.000, 1, 1.150, lo, q0, 3, 1.00},
		{17, 60.000, 2, 0.850, lo, q0, 3, 1.00},
	},
}

// Standard returns a fresh copy of a built-in catalog.
func Standard(key Key) (*Catalog, error) {
	rows, ok := standardRows[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCatalog, key)
	}
	c := NewCatalog(key)
	for _, r := range rows {
		if err := c.Append(Test{
			ID:              r.id,
			Duration:        r.duration,
			FaultType:       r.ft,
			ResidualVoltage: r.uf,
			Leg:             r.leg,
			ReactivePower:   r.q,
			Phases:          r.phases,
			PreFaultVoltage: r.uv,
		}); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Keys lists the keys of the built-in catalogs in sorted order.
func Keys() []Key {
	keys := make([]Key, 0, len(standardRows))
	for k := range standardRows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Standard != keys[j].Standard {
			return keys[i].Standard < keys[j].Standard
		}
		return keys[i].Type < keys[j].Type
	})
	return keys
}
