// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ion implements the Ion collaborator contract of spec §6: ionic
// positions, velocities, masses, and the derived quantities (center of
// mass, temperature, degrees of freedom) the Verlet step and the
// thermostat need. Grounded on original_source/Nwpw/pspw/cpsd/cpmd.cpp's
// use of myion.com/vcom/Temperature/ndof and the Ion.hpp contract it
// implies.
package ion

import "math"

const kb = 3.16679e-6 // Hartree per Kelvin, carried over from cpmd.cpp's kb constant

// Ion holds the positions, velocities, and per-species data for every atom
// in the cell, plus the Nose-Hoover thermostat's extended variables.
type Ion struct {
	Nion int

	Rion1 [][3]float64 // current positions
	Rion0 [][3]float64 // previous positions (Verlet history)
	Vion  [][3]float64 // velocities

	Amu    []float64 // per-ion mass, atomic mass units
	Charge []float64 // per-ion ionic charge
	Symbol []string  // per-ion chemical symbol

	// Nose-Hoover thermostat extended coordinate and velocity (ionic bath).
	NoseHoover bool
	EtaIon     float64
	VetaIon    float64
	Qion       float64 // thermostat mass
	TargetTemp float64 // target temperature, Kelvin

	FixTranslation bool
	FixRotation    bool
}

// New allocates an Ion set for nion atoms with the given masses.
func New(amu []float64, charge []float64, symbol []string) *Ion {
	n := len(amu)
	return &Ion{
		Nion:   n,
		Rion1:  make([][3]float64, n),
		Rion0:  make([][3]float64, n),
		Vion:   make([][3]float64, n),
		Amu:    amu,
		Charge: charge,
		Symbol: symbol,
		Qion:   1.0,
	}
}

// Ndof returns the number of degrees of freedom: 3*Nion minus 3 for a fixed
// center of mass and minus 3 more if rotation is also constrained.
func (o *Ion) Ndof() int {
	n := 3 * o.Nion
	if o.FixTranslation {
		n -= 3
	}
	if o.FixRotation {
		n -= 3
	}
	if n < 0 {
		n = 0
	}
	return n
}

func (o *Ion) totalMass() float64 {
	sum := 0.0
	for _, m := range o.Amu {
		sum += m
	}
	return sum
}

// Com returns the center of mass of the current positions.
func (o *Ion) Com() [3]float64 {
	var c [3]float64
	mt := o.totalMass()
	for i := 0; i < o.Nion; i++ {
		for d := 0; d < 3; d++ {
			c[d] += o.Amu[i] * o.Rion1[i][d]
		}
	}
	for d := 0; d < 3; d++ {
		c[d] /= mt
	}
	return c
}

// Vcom returns the center-of-mass velocity.
func (o *Ion) Vcom() [3]float64 {
	var c [3]float64
	mt := o.totalMass()
	for i := 0; i < o.Nion; i++ {
		for d := 0; d < 3; d++ {
			c[d] += o.Amu[i] * o.Vion[i][d]
		}
	}
	for d := 0; d < 3; d++ {
		c[d] /= mt
	}
	return c
}

// ke returns the ionic kinetic energy Sum_i 0.5*m_i*|v_i|^2 for the given
// velocities.
func (o *Ion) ke(v [][3]float64) float64 {
	sum := 0.0
	for i := 0; i < o.Nion; i++ {
		v2 := v[i][0]*v[i][0] + v[i][1]*v[i][1] + v[i][2]*v[i][2]
		sum += 0.5 * o.Amu[i] * v2
	}
	return sum
}

// KineticEnergy returns the instantaneous ionic kinetic energy, Hartree.
func (o *Ion) KineticEnergy() float64 { return o.ke(o.Vion) }

// Temperature returns the instantaneous ionic temperature in Kelvin,
// T = 2*KE/(ndof*kb).
func (o *Ion) Temperature() float64 {
	ndof := o.Ndof()
	if ndof == 0 {
		return 0
	}
	return 2 * o.ke(o.Vion) / (float64(ndof) * kb)
}

// ComTemperature returns the center-of-mass translational temperature.
func (o *Ion) ComTemperature() float64 {
	vc := o.Vcom()
	mt := o.totalMass()
	v2 := vc[0]*vc[0] + vc[1]*vc[1] + vc[2]*vc[2]
	return mt * v2 / (3 * kb)
}

// RescaleVelocities rescales every ionic velocity so the instantaneous
// temperature matches target -- used on startup (spec §4.9 step 4).
func (o *Ion) RescaleVelocities(target float64) {
	t := o.Temperature()
	if t <= 0 {
		return
	}
	scale := math.Sqrt(target / t)
	for i := range o.Vion {
		o.Vion[i][0] *= scale
		o.Vion[i][1] *= scale
		o.Vion[i][2] *= scale
	}
}

// FixCom removes any net center-of-mass velocity when FixTranslation is set
// (the translation constraint fix of spec §4.9 step 4).
func (o *Ion) FixCom() {
	if !o.FixTranslation {
		return
	}
	vc := o.Vcom()
	for i := range o.Vion {
		o.Vion[i][0] -= vc[0]
		o.Vion[i][1] -= vc[1]
		o.Vion[i][2] -= vc[2]
	}
}

// VerletStep advances ionic positions and velocities by one step of dt
// under force Fion (Hartree/bohr), optionally through the Nose-Hoover bath.
// verlet selects the position-Verlet form (true) over the explicit
// initial half-step (false), per spec §4.9's "Initial half-step uses the
// velocity explicitly" note.
func (o *Ion) VerletStep(dt float64, fion [][3]float64, verlet bool) {
	if o.NoseHoover {
		o.noseHooverKick(dt)
	}
	for i := 0; i < o.Nion; i++ {
		acc := [3]float64{
			fion[i][0] / o.Amu[i],
			fion[i][1] / o.Amu[i],
			fion[i][2] / o.Amu[i],
		}
		if verlet {
			var rNext [3]float64
			for d := 0; d < 3; d++ {
				rNext[d] = 2*o.Rion1[i][d] - o.Rion0[i][d] + dt*dt*acc[d]
				o.Vion[i][d] = (rNext[d] - o.Rion0[i][d]) / (2 * dt)
			}
			o.Rion0[i] = o.Rion1[i]
			o.Rion1[i] = rNext
		} else {
			for d := 0; d < 3; d++ {
				o.Vion[i][d] += 0.5 * dt * acc[d]
				o.Rion0[i][d] = o.Rion1[i][d]
				o.Rion1[i][d] += dt * o.Vion[i][d]
			}
		}
	}
	o.FixCom()
}

func (o *Ion) noseHooverKick(dt float64) {
	ndof := float64(o.Ndof())
	ke := o.ke(o.Vion)
	gdot := (2*ke - ndof*kb*o.TargetTemp) / o.Qion
	o.VetaIon += dt * gdot
	o.EtaIon += dt * o.VetaIon
	scale := math.Exp(-o.VetaIon * dt)
	for i := range o.Vion {
		o.Vion[i][0] *= scale
		o.Vion[i][1] *= scale
		o.Vion[i][2] *= scale
	}
}
