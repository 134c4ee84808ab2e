// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pack

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gopwdft/lattice"
)

func fullEcutLattice(n int) *lattice.Lattice {
	unita := [3][3]float64{{8, 0, 0}, {0, 8, 0}, {0, 0, 8}}
	// a cutoff comfortably above the Nyquist radius keeps every grid point,
	// so the packed representation loses nothing and FFT round trips exactly.
	lat := lattice.New(unita, 1e6, 1e6, n, n, n)
	return lat
}

func TestFFTRoundTrip(tst *testing.T) {
	chk.PrintTitle("FFTRoundTrip")
	n := 16
	lat := fullEcutLattice(n)
	g := NewGrid(lat, true, [][3]float64{{0, 0, 0}})

	// Gaussian of width 1 a.u. centered on the cell, per scenario S4.
	x := make([]float64, n*n*n)
	c := float64(n) / 2
	h := 8.0 / float64(n) // grid spacing in a.u.
	sigma := 1.0
	maxAbs := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				dx, dy, dz := (float64(i)-c)*h, (float64(j)-c)*h, (float64(k)-c)*h
				r2 := dx*dx + dy*dy + dz*dz
				v := math.Exp(-r2 / (2 * sigma * sigma))
				x[idx(i, j, k, n, n)] = v
				if math.Abs(v) > maxAbs {
					maxAbs = v
				}
			}
		}
	}

	packed := g.RcFft3d(0, x)
	back := g.CrPfft3bDirect(0, packed)

	maxDiff := 0.0
	for i := range x {
		d := math.Abs(x[i] - back[i])
		if d > maxDiff {
			maxDiff = d
		}
	}
	if maxDiff > 1e-9*maxAbs {
		tst.Errorf("FFT round trip max diff = %v, want < 1e-9*%v", maxDiff, maxAbs)
	}
}

func TestPipelineFIFO(tst *testing.T) {
	chk.PrintTitle("PipelineFIFO")
	n := 8
	lat := fullEcutLattice(n)
	g := NewGrid(lat, true, [][3]float64{{0, 0, 0}})

	npack := g.Npack[0]
	nsubmit := 5
	submitted := make([][]float64, nsubmit)
	for s := 0; s < nsubmit; s++ {
		v := make([]float64, 2*npack)
		v[0] = float64(s + 1) // distinguishable zero-frequency amplitude
		submitted[s] = v
		g.CrPfft3bQueuein(0, v)
	}
	results := g.CrPfft3bFlush()
	if len(results) != nsubmit {
		tst.Fatalf("got %d results, want %d", len(results), nsubmit)
	}
	for s := 0; s < nsubmit; s++ {
		// zero-frequency (DC) component of the real-space result must equal
		// the submitted amplitude divided by grid size (inverse-FFT DC term).
		mean := 0.0
		for _, v := range results[s] {
			mean += v
		}
		mean /= float64(len(results[s]))
		want := float64(s+1) / float64(n*n*n)
		if math.Abs(mean-want) > 1e-9 {
			tst.Errorf("submission %d: fifo order broken or DC term wrong: mean=%v want=%v", s, mean, want)
		}
	}
}

func TestCcPackIdotGammaDoubling(tst *testing.T) {
	chk.PrintTitle("CcPackIdotGammaDoubling")
	n := 8
	lat := fullEcutLattice(n)
	g := NewGrid(lat, true, [][3]float64{{0, 0, 0}})
	npack := g.Npack[0]
	a := make([]float64, 2*npack)
	a[0] = 1.0 // only the zero-frequency component set
	raw := g.CcPackDot(0, a, a)
	idot := g.CcPackIdot(0, a, a)
	// with only the zero component populated, doubling then subtracting the
	// zero contribution must recover the raw (undoubled) value exactly.
	chk.Float64(tst, "idot with only G=0 populated", 1e-14, idot, raw)
}

func TestNoImagZero(tst *testing.T) {
	chk.PrintTitle("NoImagZero")
	n := 8
	lat := fullEcutLattice(n)
	g := NewGrid(lat, true, [][3]float64{{0, 0, 0}})
	npack := g.Npack[0]
	a := make([]float64, 2*npack)
	a[1] = 5.0
	g.CPackNoImagZero(0, a)
	if a[1] != 0 {
		tst.Errorf("imag(G=0) = %v, want 0", a[1])
	}
}
