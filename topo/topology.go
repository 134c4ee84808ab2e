// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package topo implements the Cartesian (i,j,k) process topology that
// every other package in gopwdft reduces and broadcasts across. Axis i
// partitions the FFT grid, axis j partitions the orbital index, and axis k
// partitions the Brillouin-zone sample (size 1 in the Gamma-point variant).
package topo

// Axis selects which leg of the Cartesian process grid a collective runs on.
type Axis int

// Axes of the process grid. AxisGlobal reduces across every rank.
const (
	AxisI Axis = iota
	AxisJ
	AxisK
	AxisGlobal
)

// Topology is the collective surface every other package depends on. It is
// resolved once at construction (design note: capability sets over dynamic
// dispatch) rather than branched on at each call site.
type Topology interface {

	// NP returns the number of ranks along axis.
	NP(axis Axis) int

	// TaskID returns this rank's coordinate along axis.
	TaskID(axis Axis) int

	// SumAll reduces val across every rank on axis and returns the sum on
	// every rank (allreduce semantics).
	SumAll(axis Axis, val float64) float64

	// VectorSumAll reduces buf in place across every rank on axis.
	VectorSumAll(axis Axis, buf []float64)

	// BrdcstValues broadcasts buf from root to every rank on axis, in place.
	BrdcstValues(axis Axis, root int, buf []float64)

	// IsMaster reports whether this rank is the global master (rank 0).
	IsMaster() bool
}

// Coords decomposes a global rank into (taskid_i, taskid_j, taskid_k) given
// the process-grid sizes, with i varying fastest and k slowest -- the same
// layout the restart write path assumes (see restart package).
func Coords(rank, npI, npJ, npK int) (ti, tj, tk int) {
	ti = rank % npI
	tj = (rank / npI) % npJ
	tk = rank / (npI * npJ)
	return
}

// Rank recomposes a global rank from Cartesian coordinates; the inverse of
// Coords.
func Rank(ti, tj, tk, npI, npJ int) int {
	return tk*npJ*npI + tj*npI + ti
}
