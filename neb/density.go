// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neb

// GhFftb implements gh_fftb(psi, psi_r): the batched inverse 3D FFT of every
// local orbital, pipelined through the packed grid's FIFO queue (spec §4.5,
// §5). psi_r[nbq][ms] receives one real-space array per orbital, each of
// length grid.Lat.Nfft3D() (or 2x that for a general k-point).
func (b *Bundle) GhFftb(psi [][2][]float64) (psiR [][2][][]float64) {
	grid := b.Grid
	psiR = make([][2][][]float64, len(psi))
	for nbq := range psi {
		stride := b.stride(nbq)
		for ms := 0; ms < b.Ispin; ms++ {
			n := len(psi[nbq][ms]) / stride
			psiR[nbq][ms] = make([][]float64, n)
			for col := 0; col < n; col++ {
				pk := b.Column(psi, nbq, ms, col)
				grid.CrPfft3bQueuein(nbq, pk)
			}
			for col := 0; col < n; col++ {
				psiR[nbq][ms][col] = grid.CrPfft3bQueueout(nbq)
			}
		}
	}
	return psiR
}

// HrASumSqr implements hr_aSumSqr(alpha, psir, dn): dn[ms,r] = alpha *
// Sum_n |psi_r[ms,n,r]|^2, summed across every Brillouin slot this rank
// owns. Only the local slots are summed; no reduction across ranks of the
// k axis is performed.
func (b *Bundle) HrASumSqr(alpha float64, psiR [][2][][]float64, dn [2][]float64) {
	for ms := 0; ms < b.Ispin; ms++ {
		for i := range dn[ms] {
			dn[ms][i] = 0
		}
	}
	for nbq := range psiR {
		for ms := 0; ms < b.Ispin; ms++ {
			for _, col := range psiR[nbq][ms] {
				for r, v := range col {
					dn[ms][r] += alpha * v * v
				}
			}
		}
	}
}
