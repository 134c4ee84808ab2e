// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pack

// pipeline backs cr_pfft3b_queuein/_queuefilled/_queueout (spec §4.3): a
// FIFO queue of pending inverse 3D FFTs, drained by a single worker
// goroutine so the submitting rank can keep enqueueing orbitals while
// earlier ones finish -- the Go analogue of the C++ pipeline's internal
// stream queueing (spec §5: "the FFT queue is FIFO within a single rank").
type pipeline struct {
	engine *engine
	grid   *Grid

	jobs    chan fftJob
	results chan []float64
	pending int
}

type fftJob struct {
	nb     int
	packed []float64
}

func newPipeline(g *Grid) *pipeline {
	nx, ny, nz := g.Lat.Nx, g.Lat.Ny, g.Lat.Nz
	p := &pipeline{
		engine:  newEngine(nx, ny, nz),
		grid:    g,
		jobs:    make(chan fftJob, 4096),
		results: make(chan []float64, 4096),
	}
	go p.worker()
	return p
}

func (p *pipeline) worker() {
	for job := range p.jobs {
		full := p.grid.unpack(job.nb, job.packed, p.engine)
		p.engine.inverse3D(full)
		n := len(full)
		var out []float64
		if p.grid.Gamma {
			out = make([]float64, n)
			for i, c := range full {
				out[i] = real(c)
			}
		} else {
			out = make([]float64, 2*n)
			for i, c := range full {
				out[2*i] = real(c)
				out[2*i+1] = imag(c)
			}
		}
		p.results <- out
	}
}

// CrPfft3bQueuein submits a packed complex vector for inverse 3D FFT. The
// caller's slice is copied; it may be reused immediately.
func (o *Grid) CrPfft3bQueuein(nb int, v []float64) {
	o.checkNb(nb)
	packed := make([]float64, 2*o.Npack[nb])
	copy(packed, v[:2*o.Npack[nb]])
	o.pipeline.pending++
	o.pipeline.jobs <- fftJob{nb: nb, packed: packed}
}

// CrPfft3bQueuefilled reports whether at least one queued transform has
// completed and is ready to be retrieved with CrPfft3bQueueout.
func (o *Grid) CrPfft3bQueuefilled() bool {
	return len(o.pipeline.results) > 0
}

// CrPfft3bQueueout retrieves the next completed real-space result, in FIFO
// submission order. It blocks until a result is available; callers should
// guard with CrPfft3bQueuefilled when non-blocking behavior is required.
func (o *Grid) CrPfft3bQueueout(nb int) []float64 {
	o.checkNb(nb)
	r := <-o.pipeline.results
	o.pipeline.pending--
	return r
}

// CrPfft3bFlush drains every outstanding queued transform, blocking until
// all complete, and returns their results in FIFO order. The pipeline must
// not drop work on flush (spec §4.3).
func (o *Grid) CrPfft3bFlush() [][]float64 {
	out := make([][]float64, 0, o.pipeline.pending)
	for o.pipeline.pending > 0 {
		out = append(out, o.CrPfft3bQueueout(0))
	}
	return out
}
