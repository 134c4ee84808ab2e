// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package restart implements the binary restart-file codec of spec §6: the
// exact on-disk layout (version, grid shape, lattice, orbital counts,
// unpacked orbital coefficients, optional occupations), the grid-expander
// that lets a file written on one FFT grid seed a run on another, and the
// distributed ownership check the original write path used -- including the
// taskid_k/taskid_j anomaly spec §9 says to preserve rather than fix.
// Grounded on original_source/Nwpw/pspw/lib/psi/psi.cpp's wvfnc_expander and
// original_source/Nwpw/nwpwlib/C3dB/Cneb.cpp's g_write/g_read.
package restart

import (
	"encoding/binary"
	"io"

	"github.com/cpmech/gosl/chk"
)

// Version is the restart file format version this codec writes.
const Version = int32(3)

// Header is the fixed-size preamble of a restart file, laid out exactly as
// spec §6 describes it: native int32 and double, no padding.
type Header struct {
	Version        int32
	Nfft           [3]int32
	Unita          [9]float64 // row-major
	Ispin          int32
	Ne             [2]int32
	OccupationFlag int32 // -1: no occupations follow; >0: occupations follow
}

// writeHeader writes just the fixed-size preamble, shared by WriteLocal and
// WriteDistributed.
func writeHeader(w io.Writer, h Header) error {
	for _, v := range []interface{}{h.Version, h.Nfft, h.Unita, h.Ispin, h.Ne, h.OccupationFlag} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func writeFloat64s(w io.Writer, v []float64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

// orbitalLen returns the length, in float64 words, of one orbital's unpacked
// coefficient block: 2*(nfft_x/2+1)*nfft_y*nfft_z interleaved real pairs.
func orbitalLen(nfft [3]int32) int {
	return 2 * (int(nfft[0])/2 + 1) * int(nfft[1]) * int(nfft[2])
}

// WriteLocal writes one rank's full restart file: header, every (ms,n)
// orbital's unpacked coefficients in ms-major, n-minor order, and -- when
// occupations is non-nil -- the per-orbital occupation numbers. This is the
// single-process codec exercised directly by tests; WriteDistributed in
// distributed.go layers the multi-rank ownership check on top of it.
func WriteLocal(w io.Writer, h Header, orbitals [][]float64, occupations []float64) error {
	flag := h.OccupationFlag
	if occupations == nil {
		flag = -1
	}
	hh := h
	hh.OccupationFlag = flag
	if err := writeHeader(w, hh); err != nil {
		return err
	}

	want := orbitalLen(h.Nfft)
	total := int(h.Ne[0])
	if h.Ispin == 2 {
		total += int(h.Ne[1])
	}
	if len(orbitals) != total {
		chk.Panic("WriteLocal: expected %d orbitals, got %d", total, len(orbitals))
	}
	for _, psi := range orbitals {
		if len(psi) != want {
			chk.Panic("WriteLocal: orbital has %d words, grid wants %d", len(psi), want)
		}
		if err := binary.Write(w, binary.LittleEndian, psi); err != nil {
			return err
		}
	}

	if flag > 0 {
		if len(occupations) != flag {
			chk.Panic("WriteLocal: occupation_flag=%d but %d occupations given", flag, len(occupations))
		}
		if err := binary.Write(w, binary.LittleEndian, occupations); err != nil {
			return err
		}
	}
	return nil
}

// ReadLocal reads back a file written by WriteLocal (or by the original
// source's g_write), returning the header, the unpacked per-orbital
// coefficients, and the occupations slice (nil when occupation_flag<=0).
func ReadLocal(r io.Reader) (Header, [][]float64, []float64, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h.Version); err != nil {
		return h, nil, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Nfft); err != nil {
		return h, nil, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Unita); err != nil {
		return h, nil, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Ispin); err != nil {
		return h, nil, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Ne); err != nil {
		return h, nil, nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &h.OccupationFlag); err != nil {
		return h, nil, nil, err
	}

	want := orbitalLen(h.Nfft)
	total := int(h.Ne[0])
	if h.Ispin == 2 {
		total += int(h.Ne[1])
	}
	orbitals := make([][]float64, total)
	for i := range orbitals {
		psi := make([]float64, want)
		if err := binary.Read(r, binary.LittleEndian, psi); err != nil {
			return h, nil, nil, err
		}
		orbitals[i] = psi
	}

	var occupations []float64
	if h.OccupationFlag > 0 {
		occupations = make([]float64, h.OccupationFlag)
		if err := binary.Read(r, binary.LittleEndian, occupations); err != nil {
			return h, nil, nil, err
		}
	}
	return h, orbitals, occupations, nil
}
