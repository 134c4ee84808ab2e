// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

import "sync"

// Tiled is the streamed/tiled back-end: it mirrors gdevices_cuda.hpp's
// two-buffer rotation (host fills tile N+1 while the device consumes tile N)
// with a Go channel pipeline instead of a CUDA stream pair, and delegates the
// actual arithmetic of each tile to a HostBLAS. No GPU binding exists
// anywhere in the retrieved corpus, so the overlap this back-end buys is
// concurrency across column tiles on the host, not host/device transfer
// overlap -- the capability it exposes (construction-time selectable,
// functionally identical result) is the part of gdevices_cuda.hpp that
// generalizes.
type Tiled struct {
	host     *HostBLAS
	tileCols int
	nworkers int
}

// NewTiled builds a tiled back-end with the given column tile width and
// worker count. A tileCols of 0 disables tiling (falls back to one shot).
func NewTiled(tileCols, nworkers int) *Tiled {
	if nworkers < 1 {
		nworkers = 1
	}
	return &Tiled{host: NewHostBLAS(), tileCols: tileCols, nworkers: nworkers}
}

// tiles splits [0,ne) into chunks of size o.tileCols (or one chunk if
// tileCols<=0).
func (o *Tiled) tiles(ne int) [][2]int {
	if o.tileCols <= 0 || o.tileCols >= ne {
		return [][2]int{{0, ne}}
	}
	var out [][2]int
	for start := 0; start < ne; start += o.tileCols {
		end := start + o.tileCols
		if end > ne {
			end = ne
		}
		out = append(out, [2]int{start, end})
	}
	return out
}

// runTiles fans work out over o.nworkers goroutines, one per queued tile,
// bounded to nworkers in flight -- the Go analogue of the two-stream
// rotation, generalized to N concurrent tiles.
func (o *Tiled) runTiles(ts [][2]int, work func(lo, hi int)) {
	sem := make(chan struct{}, o.nworkers)
	var wg sync.WaitGroup
	for _, t := range ts {
		lo, hi := t[0], t[1]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			work(lo, hi)
		}()
	}
	wg.Wait()
}

func (o *Tiled) TN1(npack, ne int, alpha float64, a, b []float64, beta float64, c Matrix) {
	ts := o.tiles(ne)
	o.runTiles(ts, func(lo, hi int) {
		for p := lo; p < hi; p++ {
			ap := col(a, npack, p)
			for q := 0; q < ne; q++ {
				bq := col(b, npack, q)
				c[p][q] = beta*c[p][q] + alpha*dot(ap, bq)
			}
		}
	})
}

func (o *Tiled) TN3(npack, ne int, a, b []float64, caa, cab, cbb Matrix) {
	ts := o.tiles(ne)
	o.runTiles(ts, func(lo, hi int) {
		for p := lo; p < hi; p++ {
			ap := col(a, npack, p)
			bp := col(b, npack, p)
			for q := 0; q < ne; q++ {
				aq := col(a, npack, q)
				bq := col(b, npack, q)
				caa[p][q] = dot(ap, aq)
				cbb[p][q] = dot(bp, bq)
				cab[p][q] = dot(ap, bq)
			}
		}
	})
}

func (o *Tiled) TN4(npack, ne int, a, b []float64, caa, cab, cba, cbb Matrix) {
	ts := o.tiles(ne)
	o.runTiles(ts, func(lo, hi int) {
		for p := lo; p < hi; p++ {
			ap := col(a, npack, p)
			bp := col(b, npack, p)
			for q := 0; q < ne; q++ {
				aq := col(a, npack, q)
				bq := col(b, npack, q)
				caa[p][q] = dot(ap, aq)
				cbb[p][q] = dot(bp, bq)
				cab[p][q] = dot(ap, bq)
				cba[p][q] = dot(bp, aq)
			}
		}
	})
}

func (o *Tiled) NN(npack, ne int, alpha float64, a []float64, h Matrix, beta float64, c []float64) {
	stride := 2 * npack
	ts := o.tiles(ne)
	o.runTiles(ts, func(lo, hi int) {
		tmp := make([]float64, stride)
		for q := lo; q < hi; q++ {
			for i := range tmp {
				tmp[i] = 0
			}
			for p := 0; p < ne; p++ {
				hpq := h[p][q]
				if hpq == 0 {
					continue
				}
				ap := col(a, npack, p)
				for i := 0; i < stride; i++ {
					tmp[i] += hpq * ap[i]
				}
			}
			cq := col(c, npack, q)
			for i := 0; i < stride; i++ {
				cq[i] = beta*cq[i] + alpha*tmp[i]
			}
		}
	})
}

// MM6, NNEigensolver and SVD are whole-matrix operations on the small ne x ne
// overlap matrices (spec §4.7); tiling them buys nothing, so Tiled delegates
// straight to HostBLAS.
func (o *Tiled) MM6(ne int, s21, s12, s11, sa0, sa1, st1 Matrix) {
	o.host.MM6(ne, s21, s12, s11, sa0, sa1, st1)
}

func (o *Tiled) NNEigensolver(h Matrix) (eig []float64, v Matrix) {
	return o.host.NNEigensolver(h)
}

func (o *Tiled) SVD(a Matrix) (u Matrix, s []float64, v Matrix) {
	return o.host.SVD(a)
}
