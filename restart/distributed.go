// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package restart

import (
	"io"

	"github.com/cpmech/gopwdft/grid"
	"github.com/cpmech/gopwdft/topo"
)

// KMap deals the nbrillouin Brillouin-zone samples round-robin across axis
// k, the same round-robin rule grid.Map1 applies to the orbital index --
// Cneb's ktoindex/ktop are this mapping applied to k instead of (ms,n).
type KMap struct {
	NP     int
	TaskID int
	Neq    int
	pmap   []int
	qmap   []int
}

// NewKMap deals nbrillouin k-points round-robin across np ranks.
func NewKMap(np, taskid, nbrillouin int) *KMap {
	o := &KMap{NP: np, TaskID: taskid}
	o.pmap = make([]int, nbrillouin)
	o.qmap = make([]int, nbrillouin)
	counts := make([]int, np)
	for k := 0; k < nbrillouin; k++ {
		p := k % np
		o.pmap[k] = p
		o.qmap[k] = counts[p]
		counts[p]++
	}
	o.Neq = counts[taskid]
	return o
}

// KToIndex returns the local slot owning Brillouin sample nb, matching
// Cneb::ktoindex.
func (o *KMap) KToIndex(nb int) int { return o.qmap[nb] }

// KToP returns the owning rank of Brillouin sample nb, matching Cneb::ktop.
func (o *KMap) KToP(nb int) int { return o.pmap[nb] }

// columnOwner reproduces Cneb::g_write's per-(ms,n,nb) ownership check.
// Spec §9 documents an observed anomaly in the original write path: taskid_k
// is assigned from parall->taskid_j() rather than parall->taskid_k(), so the
// k-axis comparison is actually checking the j-axis coordinate twice. This
// function preserves that anomaly rather than silently correcting it --
// when npK>1 it will skip columns the rank actually owns (see
// restart_test.go), exactly the symptom spec §9 calls out ("may
// collapse the k-axis during I/O").
func columnOwner(t topo.Topology, ownerJ, ownerK int) bool {
	taskidJ := t.TaskID(topo.AxisJ)
	taskidK := t.TaskID(topo.AxisJ) // anomaly: should be topo.AxisK
	return ownerJ == taskidJ && ownerK == taskidK
}

// WriteDistributed writes the restart file header and then, for every
// (ms,n) column of the single Brillouin sample nb this rank's Neb carries
// (spec §6's restart layout has no Brillouin-index loop -- it is written
// once per k-point file, exactly as Cneb::g_write does for the Gamma-point
// case), writes either this rank's local column data -- when columnOwner
// reports ownership -- or a zero-filled block otherwise. column is only
// invoked when this rank owns that column under the (possibly anomalous)
// ownership check.
func WriteDistributed(w io.Writer, t topo.Topology, h Header, m1 *grid.Map1, km *KMap, nb int, column func(ms, n int) []float64) error {
	if err := writeHeader(w, h); err != nil {
		return err
	}
	want := orbitalLen(h.Nfft)
	zero := make([]float64, want)
	ownerK := km.KToP(nb)
	for ms := 0; ms < int(h.Ispin); ms++ {
		for n := 0; n < int(h.Ne[ms]); n++ {
			ownerJ := m1.MsNToP(ms, n)
			buf := zero
			if columnOwner(t, ownerJ, ownerK) {
				buf = column(ms, n)
				if len(buf) != want {
					panic("WriteDistributed: column returned wrong length")
				}
			}
			if err := writeFloat64s(w, buf); err != nil {
				return err
			}
		}
	}
	return nil
}
