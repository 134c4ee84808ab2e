// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import "github.com/cpmech/gosl/chk"

// Map1 decides how the orbital index is partitioned across process axis j,
// dealing orbitals round-robin, per spec §4.2. Grounded on
// original_source/Nwpw/nwpwlib/D3dB/Mapping1.hpp.
type Map1 struct {
	NP, TaskID int
	Ispin      int
	Ne         [2]int // global orbital count per spin
	Neq        [2]int // local orbital count owned by this rank, per spin

	pmap [2][]int // pmap[ms][n] -> owning rank
	qmap [2][]int // qmap[ms][n] -> local slot on the owning rank
}

// NewMap1 deals ne[ms] orbitals of each spin round-robin across np ranks.
func NewMap1(np, taskid, ispin int, ne [2]int) *Map1 {
	if np <= 0 {
		chk.Panic("np must be positive, got %d", np)
	}
	o := &Map1{NP: np, TaskID: taskid, Ispin: ispin, Ne: ne}
	for ms := 0; ms < ispin; ms++ {
		o.pmap[ms] = make([]int, ne[ms])
		o.qmap[ms] = make([]int, ne[ms])
		counts := make([]int, np)
		for n := 0; n < ne[ms]; n++ {
			p := n % np
			o.pmap[ms][n] = p
			o.qmap[ms][n] = counts[p]
			counts[p]++
		}
		o.Neq[ms] = counts[taskid]
	}
	return o
}

// MsNToIndex returns the local offset for orbital n of spin ms within the
// flat per-spin-contiguous local array (qmap[ms][n] + ms*Neq[0]), matching
// Mapping1::msntoindex.
func (o *Map1) MsNToIndex(ms, n int) int {
	return o.qmap[ms][n] + ms*o.Neq[0]
}

// MsNToP returns the owning rank of orbital n of spin ms, matching
// Mapping1::msntop.
func (o *Map1) MsNToP(ms, n int) int {
	return o.pmap[ms][n]
}

// LocalOrbitals returns the global orbital indices this rank owns for spin
// ms, in local-slot order.
func (o *Map1) LocalOrbitals(ms int) []int {
	out := make([]int, o.Neq[ms])
	for n := 0; n < o.Ne[ms]; n++ {
		if o.pmap[ms][n] == o.TaskID {
			out[o.qmap[ms][n]] = n
		}
	}
	return out
}
