// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topo

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/mpi"
)

// MPITopology is the production Topology backed by github.com/cpmech/gosl/mpi,
// exactly the way gofem's main.go drives mpi.Start/mpi.Rank/mpi.Size. One
// sub-communicator is built per axis so SumAll/VectorSumAll/BrdcstValues can
// be ordering-preserving collectives restricted to that axis, per spec §4.1.
type MPITopology struct {
	npI, npJ, npK   int
	tiI, tiJ, tiK   int
	commI           *mpi.Communicator
	commJ           *mpi.Communicator
	commK           *mpi.Communicator
	commGlobal      *mpi.Communicator
	globalRank      int
}

// NewMPITopology builds a Cartesian (npI, npJ, npK) process grid over
// mpi.Size() ranks. mpi.Start must have been called already (see
// cmd/gopwdft/main.go).
func NewMPITopology(npI, npJ, npK int) *MPITopology {
	if npI*npJ*npK != mpi.Size() {
		chk.Panic("process grid %d*%d*%d=%d does not match mpi.Size()=%d", npI, npJ, npK, npI*npJ*npK, mpi.Size())
	}
	o := &MPITopology{npI: npI, npJ: npJ, npK: npK, globalRank: mpi.Rank()}
	o.tiI, o.tiJ, o.tiK = Coords(o.globalRank, npI, npJ, npK)

	var ranksI, ranksJ, ranksK []int
	for r := 0; r < mpi.Size(); r++ {
		ci, cj, ck := Coords(r, npI, npJ, npK)
		if cj == o.tiJ && ck == o.tiK {
			ranksI = append(ranksI, r)
		}
		if ci == o.tiI && ck == o.tiK {
			ranksJ = append(ranksJ, r)
		}
		if ci == o.tiI && cj == o.tiJ {
			ranksK = append(ranksK, r)
		}
	}
	o.commI = mpi.NewCommunicator(ranksI)
	o.commJ = mpi.NewCommunicator(ranksJ)
	o.commK = mpi.NewCommunicator(ranksK)
	o.commGlobal = mpi.NewCommunicator(nil) // nil => all ranks, world communicator
	return o
}

func (o *MPITopology) comm(axis Axis) *mpi.Communicator {
	switch axis {
	case AxisI:
		return o.commI
	case AxisJ:
		return o.commJ
	case AxisK:
		return o.commK
	default:
		return o.commGlobal
	}
}

// NP implements Topology.
func (o *MPITopology) NP(axis Axis) int {
	switch axis {
	case AxisI:
		return o.npI
	case AxisJ:
		return o.npJ
	case AxisK:
		return o.npK
	default:
		return o.npI * o.npJ * o.npK
	}
}

// TaskID implements Topology.
func (o *MPITopology) TaskID(axis Axis) int {
	switch axis {
	case AxisI:
		return o.tiI
	case AxisJ:
		return o.tiJ
	case AxisK:
		return o.tiK
	default:
		return o.globalRank
	}
}

// SumAll implements Topology.
func (o *MPITopology) SumAll(axis Axis, val float64) float64 {
	orig := []float64{val}
	dest := []float64{0}
	o.comm(axis).AllReduceSum(dest, orig)
	return dest[0]
}

// VectorSumAll implements Topology.
func (o *MPITopology) VectorSumAll(axis Axis, buf []float64) {
	dest := make([]float64, len(buf))
	o.comm(axis).AllReduceSum(dest, buf)
	copy(buf, dest)
}

// BrdcstValues implements Topology.
func (o *MPITopology) BrdcstValues(axis Axis, root int, buf []float64) {
	o.comm(axis).Bcast(buf, root)
}

// IsMaster implements Topology.
func (o *MPITopology) IsMaster() bool {
	return o.globalRank == 0
}
