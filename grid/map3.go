// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package grid implements the two mapping strategies of spec §4.2: Map3
// partitions the FFT grid across axis i, Map1 partitions the orbital index
// across axis j. Grounded on original_source/Nwpw/nwpwlib/D3dB/Mapping3.cpp
// and Mapping1.hpp.
package grid

import "github.com/cpmech/gosl/chk"

// MapType selects the FFT-grid partitioning strategy.
type MapType int

// Partitioning strategies, mirroring Mapping3.cpp's maptype values.
const (
	Slab MapType = iota
	Hilbert
	Hcurve
)

// Rotation identifies one of the three orthogonal 2D slices a Map3 keeps a
// (pmap, qmap) pair for: the (y,z) plane, the (z,x) plane, and the (x,y)
// plane -- each FFT rotation used by a different pass of the 3D transform.
type Rotation int

// The three FFT-grid rotations.
const (
	RotYZ Rotation = iota
	RotZX
	RotXY
)

// Map3 decides how the FFT grid is partitioned across process axis i.
type Map3 struct {
	Type       MapType
	NP         int
	TaskID     int
	Nx, Ny, Nz int

	// Pmap/Qmap[rot] give, for every transverse-plane index, the owning
	// rank and the owner's local slot, one pair per rotation.
	Pmap [3][]int
	Qmap [3][]int

	Nfft3D int // local padded complex element count (max over rotations)
	N2FT3D int // 2 * Nfft3D
}

// dims returns the (rows, cols) of the transverse plane for a rotation.
func dims(rot Rotation, nx, ny, nz int) (rows, cols int) {
	switch rot {
	case RotYZ:
		return ny, nz
	case RotZX:
		return nz, nx/2 + 1
	default: // RotXY
		return nx/2 + 1, ny
	}
}

// NewMap3 builds a Map3 for the given partitioning strategy and process grid.
func NewMap3(mtype MapType, np, taskid, nx, ny, nz int) *Map3 {
	if np <= 0 {
		chk.Panic("np must be positive, got %d", np)
	}
	o := &Map3{Type: mtype, NP: np, TaskID: taskid, Nx: nx, Ny: ny, Nz: nz}

	if mtype == Slab {
		o.buildSlab()
		return o
	}

	maxNfft := 0
	for rot := RotYZ; rot <= RotXY; rot++ {
		rows, cols := dims(rot, nx, ny, nz)
		order := curveOrder(mtype, rows, cols)
		pmap, qmap, _ := dealRoundRobin(order, rows*cols, np, taskid)
		o.Pmap[rot] = pmap
		o.Qmap[rot] = qmap
		n := rows * cols
		// local element count along this rotation's leading dimension.
		local := countOwned(pmap, taskid)
		size := leadingDim(rot, nx, ny, nz) * local
		if n > 0 && size > maxNfft {
			maxNfft = size
		}
	}
	o.Nfft3D = maxNfft
	o.N2FT3D = 2 * maxNfft
	return o
}

func leadingDim(rot Rotation, nx, ny, nz int) int {
	switch rot {
	case RotYZ:
		return nx/2 + 1
	case RotZX:
		return ny
	default:
		return nz
	}
}

func countOwned(pmap []int, taskid int) int {
	n := 0
	for _, p := range pmap {
		if p == taskid {
			n++
		}
	}
	return n
}

// buildSlab assigns contiguous z-slabs to ranks: each rank owns nz/np
// consecutive slabs, and the first nz%np ranks own one slab more
// (Mapping3.cpp's slab branch, maptype==1).
func (o *Map3) buildSlab() {
	nz := o.Nz
	pmap := make([]int, nz)
	qmap := make([]int, nz)
	nq1, rmdr := nz/o.NP, nz%o.NP
	nq := 0
	for k := 0; k < nz; k++ {
		p, q := k/(nq1+1), k%(nq1+1)
		if k >= rmdr*(nq1+1) {
			p, q = rmdr+(k-rmdr*(nq1+1))/nq1, (k-rmdr*(nq1+1))%nq1
		}
		qmap[k] = q
		pmap[k] = p
		if p == o.TaskID {
			nq = q + 1
		}
	}
	o.Pmap[RotYZ] = pmap
	o.Qmap[RotYZ] = qmap
	o.Nfft3D = (o.Nx/2 + 1) * o.Ny * nq
	o.N2FT3D = 2 * o.Nfft3D
}

// dealRoundRobin assigns each of the n cells of the curve its owner and
// local slot, cutting the curve into np contiguous segments (the first
// n%np segments one position longer), per generate_map_indexes in
// Mapping3.cpp. It returns pmap/qmap reordered back
// into row-major (not curve) index order, plus this rank's local count.
func dealRoundRobin(order []int, n, np, taskid int) (pmap, qmap []int, nq int) {
	indxProc := make([]int, n)
	indxQ := make([]int, n)
	nq1 := n / np
	rmdr1 := n % np
	nq2 := nq1
	if rmdr1 > 0 {
		nq2++
	}
	p, q := 0, 0
	for i := 0; i < n; i++ {
		indxProc[i] = p
		indxQ[i] = q
		if taskid == p {
			nq++
		}
		q++
		if q >= nq2 {
			q = 0
			p = (p + 1) % np
			if p >= rmdr1 {
				nq2 = nq1
			}
		}
	}
	pmap = make([]int, n)
	qmap = make([]int, n)
	for rowMajorIdx, curveIdx := range order {
		pmap[rowMajorIdx] = indxProc[curveIdx]
		qmap[rowMajorIdx] = indxQ[curveIdx]
	}
	return
}

// curveOrder returns, for each row-major transverse-plane index, the
// position that index occupies along the requested space-filling curve. For
// Slab this function is not used.
func curveOrder(mtype MapType, rows, cols int) []int {
	switch mtype {
	case Hilbert:
		return hilbertOrder(rows, cols)
	case Hcurve:
		return hcurveOrder(rows, cols)
	default:
		chk.Panic("curveOrder: unsupported map type %v", mtype)
		return nil
	}
}

// hcurveOrder lays a boustrophedon (snake) curve over the rows x cols plane:
// row 0 left-to-right, row 1 right-to-left, and so on. This keeps
// consecutive curve positions adjacent in the plane, the property the
// "hcurve" partition needs for load balance across FFT rotations.
func hcurveOrder(rows, cols int) []int {
	order := make([]int, rows*cols)
	pos := 0
	for r := 0; r < rows; r++ {
		if r%2 == 0 {
			for c := 0; c < cols; c++ {
				order[r*cols+c] = pos
				pos++
			}
		} else {
			for c := cols - 1; c >= 0; c-- {
				order[r*cols+c] = pos
				pos++
			}
		}
	}
	return order
}

// hilbertOrder lays a Hilbert space-filling curve over the rows x cols
// plane. The classical bit-interleaving construction requires a square
// power-of-two side; for other shapes it falls back to hcurveOrder, which
// degrades load balance but preserves correctness (every cell still gets
// exactly one position).
func hilbertOrder(rows, cols int) []int {
	side := rows
	if cols > side {
		side = cols
	}
	n := 1
	for n < side {
		n *= 2
	}
	if n != rows || n != cols {
		return hcurveOrder(rows, cols)
	}
	order := make([]int, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			order[y*cols+x] = hilbertD(n, x, y)
		}
	}
	return order
}

// hilbertD converts (x,y) on an n x n grid (n a power of two) into its
// distance along the Hilbert curve.
func hilbertD(n, x, y int) int {
	d := 0
	for s := n / 2; s > 0; s /= 2 {
		var rx, ry int
		if (x & s) > 0 {
			rx = 1
		}
		if (y & s) > 0 {
			ry = 1
		}
		d += s * s * ((3 * rx) ^ ry)
		// rotate
		if ry == 0 {
			if rx == 1 {
				x = s - 1 - x
				y = s - 1 - y
			}
			x, y = y, x
		}
	}
	return d
}

// ExpandDoubleGrid quadruples a coarse Map3 (built on ny/2, nz/2) into the
// double-grid map used by the upsampled density mesh, per spec §4.2:
// pmap_out[j+a*ny, k+b*nz] = pmap_in[j,k], with qmap_out offset by the
// per-rank coarse count so all four quadrants stay co-owned.
func ExpandDoubleGrid(coarse *Map3, ny, nz int) *Map3 {
	nyh, nzh := ny/2, nz/2
	if len(coarse.Pmap[RotYZ]) != nyh*nzh {
		chk.Panic("coarse map must be sized ny/2 x nz/2 = %d, got %d", nyh*nzh, len(coarse.Pmap[RotYZ]))
	}
	out := &Map3{Type: coarse.Type, NP: coarse.NP, TaskID: coarse.TaskID, Nx: coarse.Nx, Ny: ny, Nz: nz}
	pin, qin := coarse.Pmap[RotYZ], coarse.Qmap[RotYZ]
	pout := make([]int, ny*nz)
	qout := make([]int, ny*nz)

	nqp := make([]int, coarse.NP)
	for k := 0; k < nzh; k++ {
		for j := 0; j < nyh; j++ {
			p := pin[j+k*nyh]
			if qin[j+k*nyh]+1 > nqp[p] {
				nqp[p] = qin[j+k*nyh] + 1
			}
		}
	}
	put := func(j, k, p, q int) {
		pout[j+k*ny] = p
		qout[j+k*ny] = q
	}
	for k := 0; k < nzh; k++ {
		for j := 0; j < nyh; j++ {
			p := pin[j+k*nyh]
			q := qin[j+k*nyh]
			n := nqp[p]
			put(j, k, p, q)
			put(j+nyh, k, p, q+n)
			put(j, k+nzh, p, q+2*n)
			put(j+nyh, k+nzh, p, q+3*n)
		}
	}
	out.Pmap[RotYZ] = pout
	out.Qmap[RotYZ] = qout
	local := countOwned(pout, coarse.TaskID)
	out.Nfft3D = (out.Nx/2 + 1) * local
	out.N2FT3D = 2 * out.Nfft3D
	return out
}
