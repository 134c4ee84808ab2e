// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package grid

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

// buildAll builds one Map3 per rank of an np-rank grid and checks that the
// union of local slots covers every transverse-plane cell exactly once, for
// every rotation -- spec §3's Map3 invariant.
func buildAll(tst *testing.T, mtype MapType, np, nx, ny, nz int) {
	maps := make([]*Map3, np)
	for p := 0; p < np; p++ {
		maps[p] = NewMap3(mtype, np, p, nx, ny, nz)
	}
	lastRot := RotYZ
	if mtype != Slab {
		lastRot = RotXY
	}
	for rot := RotYZ; rot <= lastRot; rot++ {
		rows, cols := dims(rot, nx, ny, nz)
		seen := make([][]bool, rows*cols)
		for i := range seen {
			seen[i] = make([]bool, 0)
		}
		owners := make(map[int]map[int]bool)
		for cell := 0; cell < rows*cols; cell++ {
			owners[cell] = make(map[int]bool)
		}
		for p := 0; p < np; p++ {
			pmap := maps[p].Pmap[rot]
			qmap := maps[p].Qmap[rot]
			if pmap == nil {
				continue
			}
			localSlots := make(map[int]bool)
			for cell := 0; cell < rows*cols; cell++ {
				if pmap[cell] == p {
					if localSlots[qmap[cell]] {
						tst.Errorf("rotation %d: rank %d has duplicate local slot %d", rot, p, qmap[cell])
					}
					localSlots[qmap[cell]] = true
					owners[cell][p] = true
				}
			}
		}
		for cell := 0; cell < rows*cols; cell++ {
			if len(owners[cell]) != 1 {
				tst.Errorf("rotation %d: cell %d owned by %d ranks, want exactly 1", rot, cell, len(owners[cell]))
			}
		}
	}
}

func TestMap3Slab(tst *testing.T) {
	chk.PrintTitle("Map3Slab")
	buildAll(tst, Slab, 4, 16, 16, 16)
}

func TestMap3Hilbert(tst *testing.T) {
	chk.PrintTitle("Map3Hilbert")
	buildAll(tst, Hilbert, 3, 8, 8, 8)
}

func TestMap3Hcurve(tst *testing.T) {
	chk.PrintTitle("Map3Hcurve")
	buildAll(tst, Hcurve, 5, 12, 10, 14)
}

func TestMap1RoundRobin(tst *testing.T) {
	chk.PrintTitle("Map1RoundRobin")
	np := 3
	ne := [2]int{7, 5}
	maps := make([]*Map1, np)
	for p := 0; p < np; p++ {
		maps[p] = NewMap1(np, p, 2, ne)
	}
	for ms := 0; ms < 2; ms++ {
		total := 0
		for p := 0; p < np; p++ {
			total += maps[p].Neq[ms]
		}
		if total != ne[ms] {
			tst.Errorf("spin %d: sum of local counts = %d, want %d", ms, total, ne[ms])
		}
	}
	for ms := 0; ms < 2; ms++ {
		for n := 0; n < ne[ms]; n++ {
			owner := maps[0].MsNToP(ms, n)
			if owner != n%np {
				tst.Errorf("orbital (%d,%d): owner %d, want round-robin %d", ms, n, owner, n%np)
			}
		}
	}
}
