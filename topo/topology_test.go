// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package topo

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestCoordsRoundTrip(tst *testing.T) {
	chk.PrintTitle("CoordsRoundTrip")
	npI, npJ, npK := 2, 3, 2
	for r := 0; r < npI*npJ*npK; r++ {
		ti, tj, tk := Coords(r, npI, npJ, npK)
		back := Rank(ti, tj, tk, npI, npJ)
		if back != r {
			tst.Errorf("rank %d -> (%d,%d,%d) -> %d, want round trip", r, ti, tj, tk, back)
		}
	}
}

func TestLocalTopology(tst *testing.T) {
	chk.PrintTitle("LocalTopology")
	o := NewLocalTopology()
	if o.NP(AxisI) != 1 || o.NP(AxisJ) != 1 || o.NP(AxisK) != 1 {
		tst.Errorf("LocalTopology must report np=1 on every axis")
	}
	if !o.IsMaster() {
		tst.Errorf("the only rank in a LocalTopology must be master")
	}
	if got := o.SumAll(AxisGlobal, 3.5); got != 3.5 {
		tst.Errorf("SumAll on a single rank must be the identity: got %v", got)
	}
}
