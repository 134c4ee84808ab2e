// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pack

import (
	"gonum.org/v1/gonum/fourier"
)

// engine caches one gonum/v1/gonum/fourier.CmplxFFT per FFT-grid axis length
// and applies the separable 3D transform as three passes of batched 1D
// transforms, the same shape as gdevices.hpp's batch_cfftx/y/z.
type engine struct {
	nx, ny, nz int
	fx, fy, fz *fourier.CmplxFFT
}

func newEngine(nx, ny, nz int) *engine {
	return &engine{
		nx: nx, ny: ny, nz: nz,
		fx: fourier.NewCmplxFFT(nx),
		fy: fourier.NewCmplxFFT(ny),
		fz: fourier.NewCmplxFFT(nz),
	}
}

func idx(i, j, k, nx, ny int) int { return i + nx*(j+ny*k) }

// forward3D applies the unnormalized forward DFT along x, then y, then z, in
// place -- this is rc_fft3d's transform direction (real/complex space to
// reciprocal space).
func (e *engine) forward3D(a []complex128) {
	line := make([]complex128, e.nx)
	out := make([]complex128, e.nx)
	for k := 0; k < e.nz; k++ {
		for j := 0; j < e.ny; j++ {
			for i := 0; i < e.nx; i++ {
				line[i] = a[idx(i, j, k, e.nx, e.ny)]
			}
			e.fx.Coefficients(out, line)
			for i := 0; i < e.nx; i++ {
				a[idx(i, j, k, e.nx, e.ny)] = out[i]
			}
		}
	}
	line = make([]complex128, e.ny)
	out = make([]complex128, e.ny)
	for k := 0; k < e.nz; k++ {
		for i := 0; i < e.nx; i++ {
			for j := 0; j < e.ny; j++ {
				line[j] = a[idx(i, j, k, e.nx, e.ny)]
			}
			e.fy.Coefficients(out, line)
			for j := 0; j < e.ny; j++ {
				a[idx(i, j, k, e.nx, e.ny)] = out[j]
			}
		}
	}
	line = make([]complex128, e.nz)
	out = make([]complex128, e.nz)
	for j := 0; j < e.ny; j++ {
		for i := 0; i < e.nx; i++ {
			for k := 0; k < e.nz; k++ {
				line[k] = a[idx(i, j, k, e.nx, e.ny)]
			}
			e.fz.Coefficients(out, line)
			for k := 0; k < e.nz; k++ {
				a[idx(i, j, k, e.nx, e.ny)] = out[k]
			}
		}
	}
}

// inverse3D applies the normalized inverse DFT along x, y, z, in place, the
// mathematical inverse of forward3D -- this is cr_pfft3b's transform
// direction (reciprocal space to real/complex space).
func (e *engine) inverse3D(a []complex128) {
	line := make([]complex128, e.nx)
	out := make([]complex128, e.nx)
	for k := 0; k < e.nz; k++ {
		for j := 0; j < e.ny; j++ {
			for i := 0; i < e.nx; i++ {
				line[i] = a[idx(i, j, k, e.nx, e.ny)]
			}
			e.fx.Sequence(out, line)
			for i := 0; i < e.nx; i++ {
				a[idx(i, j, k, e.nx, e.ny)] = out[i]
			}
		}
	}
	line = make([]complex128, e.ny)
	out = make([]complex128, e.ny)
	for k := 0; k < e.nz; k++ {
		for i := 0; i < e.nx; i++ {
			for j := 0; j < e.ny; j++ {
				line[j] = a[idx(i, j, k, e.nx, e.ny)]
			}
			e.fy.Sequence(out, line)
			for j := 0; j < e.ny; j++ {
				a[idx(i, j, k, e.nx, e.ny)] = out[j]
			}
		}
	}
	line = make([]complex128, e.nz)
	out = make([]complex128, e.nz)
	for j := 0; j < e.ny; j++ {
		for i := 0; i < e.nx; i++ {
			for k := 0; k < e.nz; k++ {
				line[k] = a[idx(i, j, k, e.nx, e.ny)]
			}
			e.fz.Sequence(out, line)
			for k := 0; k < e.nz; k++ {
				a[idx(i, j, k, e.nx, e.ny)] = out[k]
			}
		}
	}
	scale := complex(1/float64(e.nx*e.ny*e.nz), 0)
	for i := range a {
		a[i] *= scale
	}
}

// unpack expands a packed reciprocal-space vector onto the full (nx,ny,nz)
// complex grid. For the Gamma point the Hermitian partner -G is filled with
// the complex conjugate, since only one representative of each (G,-G) pair
// is stored (see NewGrid).
func (o *Grid) unpack(nb int, packed []float64, e *engine) []complex128 {
	full := make([]complex128, e.nx*e.ny*e.nz)
	ii, jj, kk := o.IIndx[nb], o.JIndx[nb], o.KIndx[nb]
	for g := 0; g < o.Npack[nb]; g++ {
		full[idx(ii[g], jj[g], kk[g], e.nx, e.ny)] = complex(packed[2*g], packed[2*g+1])
	}
	if o.Gamma {
		for g := 0; g < o.Npack[nb]; g++ {
			i, j, k := ii[g], jj[g], kk[g]
			if i == 0 && j == 0 && k == 0 {
				continue
			}
			mi, mj, mk := wrap(-i, e.nx), wrap(-j, e.ny), wrap(-k, e.nz)
			full[idx(mi, mj, mk, e.nx, e.ny)] = complex(packed[2*g], -packed[2*g+1])
		}
	}
	return full
}

// repack extracts the packed coefficients from the full complex grid.
func (o *Grid) repack(nb int, full []complex128, e *engine) []float64 {
	packed := make([]float64, 2*o.Npack[nb])
	ii, jj, kk := o.IIndx[nb], o.JIndx[nb], o.KIndx[nb]
	for g := 0; g < o.Npack[nb]; g++ {
		c := full[idx(ii[g], jj[g], kk[g], e.nx, e.ny)]
		packed[2*g] = real(c)
		packed[2*g+1] = imag(c)
	}
	if o.Gamma {
		o.CPackNoImagZero(nb, packed)
	}
	return packed
}

// RcFft3d is the forward transform: a real-space array of length
// Lat.Nfft3D() onto packed reciprocal-space coefficients, i.e. rc_fft3d of
// spec §4.3/§8. The input is read as real values only; interleaved complex
// input is not handled.
func (o *Grid) RcFft3d(nb int, real []float64) []float64 {
	o.checkNb(nb)
	e := o.pipeline.engine
	full := make([]complex128, e.nx*e.ny*e.nz)
	n := e.nx * e.ny * e.nz
	for i := 0; i < n; i++ {
		full[i] = complex(real[i], 0)
	}
	e.forward3D(full)
	return o.repack(nb, full, e)
}

// CrPfft3bDirect is the synchronous (non-pipelined) inverse transform: packed
// reciprocal-space coefficients to a real-space array, i.e. cr_pfft3b of
// spec §4.3. For the Gamma point the result is real by construction (the
// Hermitian fill in unpack guarantees it); for a general k-point the
// imaginary part carries physical content and is returned as the second
// half of the result (interleaved).
func (o *Grid) CrPfft3bDirect(nb int, packed []float64) []float64 {
	o.checkNb(nb)
	e := o.pipeline.engine
	full := o.unpack(nb, packed, e)
	e.inverse3D(full)
	n := len(full)
	if o.Gamma {
		out := make([]float64, n)
		for i, c := range full {
			out[i] = real(c)
		}
		return out
	}
	out := make([]float64, 2*n)
	for i, c := range full {
		out[2*i] = real(c)
		out[2*i+1] = imag(c)
	}
	return out
}
