// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neb

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gopwdft/device"
)

// TestFmQRReconstructs checks fm_QR's basic contract: A = Q*R with Q's
// columns orthonormal.
func TestFmQRReconstructs(tst *testing.T) {
	chk.PrintTitle("FmQRReconstructs")
	a := device.Matrix{{1, 1}, {0, 1}, {1, 0}}
	q, r := FmQR(a)
	m, n := len(a), len(a[0])
	recon := make(device.Matrix, m)
	for i := range recon {
		recon[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			sum := 0.0
			for k := 0; k < n; k++ {
				sum += q[i][k] * r[k][j]
			}
			recon[i][j] = sum
		}
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			chk.Float64(tst, "QR reconstruction", 1e-10, recon[i][j], a[i][j])
		}
	}
}

// TestM4FactorSkewAllBlocksRotatesCorrectly exercises the mb==-1 path, the
// only one the teacher's source actually executes (see below), and checks
// M4RotationSkew(0)=I and that R(t) stays orthogonal for nonzero t.
func TestM4FactorSkewAllBlocksRotatesCorrectly(tst *testing.T) {
	chk.PrintTitle("M4FactorSkewAllBlocksRotatesCorrectly")
	k4 := device.Matrix{
		{0, 1},
		{-1, 0},
	}
	v, w, sigma := M4FactorSkew(-1, k4)
	r0 := M4RotationSkew(0, v, w, sigma)
	n := len(r0)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			chk.Float64(tst, "R(0)", 1e-8, r0[i][j], want)
		}
	}

	rt := M4RotationSkew(0.7, v, w, sigma)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dot := 0.0
			for k := 0; k < n; k++ {
				dot += rt[k][i] * rt[k][j]
			}
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(dot-want) > 1e-6 {
				tst.Errorf("R(t) not orthogonal at (%d,%d): %v", i, j, dot)
			}
		}
	}
}

// TestM4FactorSkewSingleBlockAnomaly documents and pins the teacher's
// observed anomaly (spec §9): Cneb::m4_FactorSkew's single-block code path
// loops "for (ms=mb; ms<mb; ++ms)" -- ms2 is set to mb, not mb+1 -- so the
// loop body never runs when mb>=0. This Go port preserves that behavior
// (returns a zero V/W/sigma) rather than silently fixing it, per spec §9's
// "flag these in the test suite rather than silently fixing them".
func TestM4FactorSkewSingleBlockAnomaly(tst *testing.T) {
	chk.PrintTitle("M4FactorSkewSingleBlockAnomaly")
	k4 := device.Matrix{
		{0, 1},
		{-1, 0},
	}
	v, w, sigma := M4FactorSkew(0, k4)
	for i := range sigma {
		chk.Float64(tst, "sigma (anomalous zero path)", 1e-15, sigma[i], 0)
	}
	for i := range v {
		for j := range v[i] {
			if v[i][j] != 0 || w[i][j] != 0 {
				tst.Errorf("expected the mb>=0 no-op anomaly to leave V/W zero, got V[%d][%d]=%v W=%v", i, j, v[i][j], w[i][j])
			}
		}
	}
}
