// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package restart

// ExpandGrid rewrites one orbital's unpacked coefficients from the ngrid
// half-grid (nx/2+1, ny, nz) onto the dngrid half-grid, preserving
// low-frequency components and padding or truncating high-frequency ones.
// This is a direct port of wvfnc_expander_convert: jreverse/kreverse pick
// which side of the copy carries the folded (low-frequency-preserving)
// index, so the same routine handles both expansion (dngrid>ngrid) and
// truncation (dngrid<ngrid) without a branch at the call site.
func ExpandGrid(ngrid [3]int, psi1 []float64, dngrid [3]int) []float64 {
	dn2ft3d := orbitalLenInts(dngrid)
	psi2 := make([]float64, dn2ft3d)

	inc2 := ngrid[0]/2 + 1
	dinc2 := dngrid[0]/2 + 1
	inc3 := inc2 * ngrid[1]
	dinc3 := dinc2 * dngrid[1]

	n1, n2, n3 := ngrid[0], ngrid[1], ngrid[2]
	if n1 > dngrid[0] {
		n1 = dngrid[0]
	}
	if n2 > dngrid[1] {
		n2 = dngrid[1]
	}
	if n3 > dngrid[2] {
		n3 = dngrid[2]
	}

	jdiff := dngrid[1] - ngrid[1]
	kdiff := dngrid[2] - ngrid[2]
	jreverse := jdiff < 0
	kreverse := kdiff < 0
	if jreverse {
		jdiff = -jdiff
	}
	if kreverse {
		kdiff = -kdiff
	}

	for k := 0; k < n3; k++ {
		for j := 0; j < n2; j++ {
			for i := 0; i < n1/2+1; i++ {
				indx := i
				dindx := i

				var k2 int
				if k < n3/2 {
					k2 = k
				} else {
					k2 = kdiff + k
				}
				var j2 int
				if j < n2/2 {
					j2 = j
				} else {
					j2 = jdiff + j
				}

				if jreverse {
					indx += j2 * inc2
					dindx += j * dinc2
				} else {
					indx += j * inc2
					dindx += j2 * dinc2
				}

				if kreverse {
					indx += k2 * inc3
					dindx += k * dinc3
				} else {
					indx += k * inc3
					dindx += k2 * dinc3
				}

				psi2[2*dindx] = psi1[2*indx]
				psi2[2*dindx+1] = psi1[2*indx+1]
			}
		}
	}
	return psi2
}

func orbitalLenInts(nfft [3]int) int {
	return 2 * (nfft[0]/2 + 1) * nfft[1] * nfft[2]
}
