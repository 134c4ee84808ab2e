// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topo

// LocalTopology is a single-rank, in-process Topology. Every collective is a
// no-op copy since there is only ever one rank in the group. Used by tests
// and by serial runs (mpi.IsOn() == false in gofem's own fem.go).
type LocalTopology struct{}

// NewLocalTopology returns a Topology with np=1 on every axis.
func NewLocalTopology() *LocalTopology {
	return &LocalTopology{}
}

// NP implements Topology.
func (o *LocalTopology) NP(axis Axis) int { return 1 }

// TaskID implements Topology.
func (o *LocalTopology) TaskID(axis Axis) int { return 0 }

// SumAll implements Topology.
func (o *LocalTopology) SumAll(axis Axis, val float64) float64 { return val }

// VectorSumAll implements Topology.
func (o *LocalTopology) VectorSumAll(axis Axis, buf []float64) {}

// BrdcstValues implements Topology.
func (o *LocalTopology) BrdcstValues(axis Axis, root int, buf []float64) {}

// IsMaster implements Topology.
func (o *LocalTopology) IsMaster() bool { return true }
