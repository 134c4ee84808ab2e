// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package strfac

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gopwdft/lattice"
	"github.com/cpmech/gopwdft/pack"
)

func setup(tst *testing.T) (*lattice.Lattice, *pack.Grid) {
	unita := [3][3]float64{{8, 0, 0}, {0, 8, 0}, {0, 0, 8}}
	lat := lattice.New(unita, 20.0, 80.0, 16, 16, 16)
	g := pack.NewGrid(lat, true, [][3]float64{{0, 0, 0}})
	return lat, g
}

// S5: two ions, checks S_2(g)/S_1(g) = exp(i*Gx(g)) for any packed index g.
func TestStrfacRatio(tst *testing.T) {
	chk.PrintTitle("StrfacRatio")
	lat, g := setup(tst)
	sf := New(lat, g, 2)
	rion := [][3]float64{{0, 0, 0}, {1, 0, 0}}
	sf.Phafac(rion)

	s1 := sf.StrfacPack(0, 0)
	s2 := sf.StrfacPack(0, 1)

	ii, jj, kk := g.IIndx[0], g.JIndx[0], g.KIndx[0]
	nx, ny, nz := lat.Nx, lat.Ny, lat.Nz
	for gidx := 0; gidx < g.Npack[0]; gidx++ {
		h := unwrap(ii[gidx], nx)
		j := unwrap(jj[gidx], ny)
		l := unwrap(kk[gidx], nz)
		gv := lat.GVector(h, j, l)
		want := cmplx.Exp(complex(0, gv[0]))

		c1 := complex(s1[2*gidx], s1[2*gidx+1])
		c2 := complex(s2[2*gidx], s2[2*gidx+1])
		if cmplx.Abs(c1) < 1e-12 {
			continue // skip the zeroed Nyquist component
		}
		ratio := c2 / c1
		diff := cmplx.Abs(ratio - want)
		if diff > 1e-8 {
			tst.Errorf("g=%d: S2/S1=%v want exp(i*Gx)=%v diff=%v", gidx, ratio, want, diff)
		}
	}
}

func unwrap(w, n int) int {
	if w > n/2 {
		return w - n
	}
	return w
}

// S5 extended: |S_i(G)| == 1 for every retained plane wave (excluding the
// zeroed Nyquist component), and the zero-wavevector component is real.
func TestStrfacUnitMagnitude(tst *testing.T) {
	chk.PrintTitle("StrfacUnitMagnitude")
	lat, g := setup(tst)
	sf := New(lat, g, 1)
	sf.Phafac([][3]float64{{1.3, -0.7, 2.1}})
	s := sf.StrfacPack(0, 0)

	c0 := complex(s[0], s[1])
	if math.Abs(imag(c0)) > 1e-8 {
		tst.Errorf("S(G=0) should be real-ish by conjugate symmetry of the recurrence, got %v", c0)
	}

	for gidx := 1; gidx < g.Npack[0]; gidx++ {
		c := complex(s[2*gidx], s[2*gidx+1])
		mag := cmplx.Abs(c)
		if mag < 1e-12 {
			continue // Nyquist component is deliberately zeroed
		}
		if math.Abs(mag-1.0) > 1e-8 {
			tst.Errorf("g=%d: |S(g)|=%v, want 1", gidx, mag)
		}
	}
}
