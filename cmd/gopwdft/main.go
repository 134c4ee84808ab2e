// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gopwdft is the thin CLI entry point of spec §6: it is invoked as
// `cpmd(comm_world, rtdb_json)` and returns 0 on success. Grounded almost
// verbatim on the root gofem main.go (mpi.Start/Stop, the recover+chk error
// report, utl.DoProf). Geometry (Lattice/Ion) and the pseudopotential/
// Ewald/XC physics are external collaborators per spec §1/§6 -- this
// package does not parse any of those file formats; it wires mpi, reads
// the RTDB JSON document, and hands off to a registered Builder.
package main

import (
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"
	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/gopwdft/cpmd"
	"github.com/cpmech/gopwdft/rtdb"
)

// Builder constructs the pieces of a run that this module treats as
// external collaborators (spec §1): the Lattice-backed orbital bundle, the
// ion set, and the Hamiltonian wired to a real pseudopotential/Ewald/XC
// stack. main looks it up by name so an embedding application can register
// one without this package needing to depend on a geometry or
// pseudopotential file format.
type Builder func(db *rtdb.RTDB) (*cpmd.CPMD, func() [][3]float64, error)

var builders = make(map[string]Builder)

// RegisterBuilder makes a named Builder available to the CLI's -builder
// flag. Called from an embedding application's init(), the same pattern
// gofem's fem package uses for solverallocators.
func RegisterBuilder(name string, b Builder) {
	builders[name] = b
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				chk.Verbose = true
				for i := 8; i > 3; i-- {
					chk.CallerInfo(i)
				}
				io.PfRed("ERROR: %v\n", err)
			}
		}
		mpi.Stop(false)
	}()
	mpi.Start(false)

	if mpi.Rank() == 0 {
		io.PfWhite("\ngopwdft -- plane-wave Car-Parrinello MD\n\n")
	}

	builderName := flag.String("builder", "", "registered collaborator Builder name")
	flag.Parse()
	var rtdbPath string
	if len(flag.Args()) > 0 {
		rtdbPath = flag.Arg(0)
	} else {
		chk.Panic("Please, provide an RTDB JSON filename. Ex.: gopwdft -builder=... h2o.json")
	}

	defer utl.DoProf(false)()

	db, err := rtdb.Read(rtdbPath)
	if err != nil {
		chk.Panic("cannot read RTDB file: %v", err)
	}

	build, ok := builders[*builderName]
	if !ok {
		chk.Panic("no Builder registered under name %q", *builderName)
	}
	integrator, fionOf, err := build(db)
	if err != nil {
		chk.Panic("builder %q failed: %v", *builderName, err)
	}

	integrator.Start(0)
	if _, err := integrator.Run(fionOf); err != nil {
		chk.Panic("Run failed: %v", err)
	}
	integrator.End()

	if err := rtdb.Write(rtdbPath, db); err != nil {
		chk.Panic("cannot write RTDB file: %v", err)
	}
}
