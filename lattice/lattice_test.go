// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lattice

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestReciprocalOrthogonality(tst *testing.T) {
	chk.PrintTitle("ReciprocalOrthogonality")
	unita := [3][3]float64{
		{8.0, 0, 0},
		{0, 8.0, 0},
		{0, 0, 8.0},
	}
	lat := New(unita, 20.0, 80.0, 16, 16, 16)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dot := unita[i][0]*lat.Unitg[j][0] + unita[i][1]*lat.Unitg[j][1] + unita[i][2]*lat.Unitg[j][2]
			want := 0.0
			if i == j {
				want = TwoPi
			}
			chk.Float64(tst, "unita.unitg^T", 1e-10, dot, want)
		}
	}
}

func TestOmegaCubic(tst *testing.T) {
	chk.PrintTitle("OmegaCubic")
	unita := [3][3]float64{
		{8.0, 0, 0},
		{0, 8.0, 0},
		{0, 0, 8.0},
	}
	lat := New(unita, 20.0, 80.0, 16, 16, 16)
	chk.Float64(tst, "omega", 1e-10, lat.Omega, 512.0)
}

func TestN2FT3D(tst *testing.T) {
	chk.PrintTitle("N2FT3D")
	unita := [3][3]float64{{8, 0, 0}, {0, 8, 0}, {0, 0, 8}}
	lat := New(unita, 20.0, 80.0, 16, 16, 16)
	if lat.N2FT3D() != 2*(16/2+1)*16*16 {
		tst.Errorf("N2FT3D mismatch: got %d", lat.N2FT3D())
	}
}
