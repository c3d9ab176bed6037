// Command dynamo drives one event-driven molecular dynamics run: it packs
// an initial configuration (or loads one from an existing configuration
// file), runs the event loop for a requested number of events, and writes
// the resulting output XML and, optionally, a new configuration file.
//
// Grounded on taskstore/service/main.go: package-level flag
// variables, flag.Parse in main, and a validate-then-run shape that prints
// a usage message and exits non-zero on bad input rather than panicking.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/dynamo-sim/dynamo/internal/boundary"
	"github.com/dynamo-sim/dynamo/internal/config"
	"github.com/dynamo-sim/dynamo/internal/outputxml"
	"github.com/dynamo-sim/dynamo/internal/packer"
	"github.com/dynamo-sim/dynamo/internal/scheduler"
	"github.com/dynamo-sim/dynamo/internal/sim"
	"github.com/dynamo-sim/dynamo/internal/sysevent"
	"github.com/dynamo-sim/dynamo/internal/units"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
	"github.com/dynamo-sim/dynamo/internal/visbridge"
)

// Exit codes, per the driver's documented contract: 0 success, 1 usage
// error, anything greater a simulation error.
const (
	exitOK = 0
	exitUsage = 1
	exitSimError = 2
)

var (
	mode = flag.String("i1name", string(packer.ModeFCC), "packer mode: fcc, bcc, sc, binary, squarewell, sheared, wallslab")
	cellsPerDim = flag.Int("c", 5, "cells per dimension for the packer lattice")
	densityF = flag.Float64("density", 0.5, "reduced number density")
	particleCount = flag.Int("n", 0, "particle-count override (0: derive from cells-per-dim and the lattice basis)")
	seed = flag.Int64("seed", 1, "PRNG seed")

	configIn = flag.String("config", "", "load initial particle positions/velocities from this configuration file instead of packing")
	configOut = flag.String("o", "", "write the final configuration to this file (omit to skip)")
	outputOut = flag.String("output", "output.xml", "write the output-plugin XML tree to this file")
	indent = flag.Bool("indent", true, "pretty-print written XML")

	maxEvents = flag.Int("events", 100000, "maximum number of events to run")
	sorterName = flag.String("sorter", "tree", "event queue implementation: tree or calendar")

	visAddr = flag.String("vis-addr", "", "if set, serve the persisted visualisation bridge on this address (e.g. :8080) while running")

	fFlags [8]float64
	iFlags [8]int
	sFlags [4]string
	bFlags [4]bool
)

func init() {
	for i := range fFlags {
		flag.Float64Var(&fFlags[i], fmt.Sprintf("f%d", i+1), 0, fmt.Sprintf("packer numeric parameter f%d", i+1))
	}
	for i := range iFlags {
		flag.IntVar(&iFlags[i], fmt.Sprintf("i%d", i+1), 0, fmt.Sprintf("packer integer parameter i%d", i+1))
	}
	for i := range sFlags {
		flag.StringVar(&sFlags[i], fmt.Sprintf("s%d", i+1), "", fmt.Sprintf("packer string parameter s%d", i+1))
	}
	for i := range bFlags {
		flag.BoolVar(&bFlags[i], fmt.Sprintf("b%d", i+1), false, fmt.Sprintf("packer boolean parameter b%d", i+1))
	}
}

func main() {
	flag.Parse()

	if *densityF <= 0 {
		fmt.Println("dynamo: -density must be positive")
		os.Exit(exitUsage)
	}
	if *cellsPerDim <= 0 && *configIn == "" {
		fmt.Println("dynamo: -c (cells per dimension) must be positive when not loading -config")
		os.Exit(exitUsage)
	}
	if *sorterName != "tree" && *sorterName != "calendar" {
		fmt.Println("dynamo: -sorter must be \"tree\" or \"calendar\"")
		os.Exit(exitUsage)
	}

	s, u, err := buildSimulation()
	if err != nil {
		fmt.Println("dynamo:", err)
		os.Exit(exitUsage)
	}

	misc := outputxml.NewMisc()
	s.Plugins = append(s.Plugins, misc)

	if *visAddr != "" {
		bridge := visbridge.New()
		ticker := sysevent.NewSystemTicker(0.1, bridge.Callback(s.Store), s.Now())
		s.Systems = append(s.Systems, ticker)
		mux := http.NewServeMux()
		mux.Handle("/", bridge.Handler())
		go func() {
			if err := http.ListenAndServe(*visAddr, mux); err != nil {
				fmt.Println("dynamo: visualisation bridge stopped:", err)
			}
		}()
	}

	sorter := newSorter(*sorterName, s.MeanFreeTime())
	if err := s.Initialise(sorter); err != nil {
		fmt.Println("dynamo: setup error:", err)
		os.Exit(exitSimError)
	}

	s.Run(*maxEvents)

	if violations := s.Store.CheckPeculiarTimeInvariant(s.Now()); violations > 0 {
		fmt.Printf("dynamo: %d particles violate the peculiar-time invariant\n", violations)
		os.Exit(exitSimError)
	}

	if err := writeOutput(s, u, misc); err != nil {
		fmt.Println("dynamo: failed to write output:", err)
		os.Exit(exitSimError)
	}

	if *configOut != "" {
		if err := writeConfig(s, u); err != nil {
			fmt.Println("dynamo: failed to write configuration:", err)
			os.Exit(exitSimError)
		}
	}

	os.Exit(exitOK)
}

// buildSimulation constructs a Simulation either by loading an existing
// configuration file's particle set (layering it over a freshly packed
// interaction/boundary set of the requested mode, since the raw
// Topology/Interactions/Locals/Globals/Systems sections are stored opaque
// by internal/config and are not decoded into live objects here) or, in
// the common case, entirely from the packer.
func buildSimulation() (*sim.Simulation, units.Units, error) {
	p := packer.Params{
		Mode: packer.Mode(*mode),
		CellsPerDim: *cellsPerDim,
		Density: *densityF,
		N: *particleCount,
		F: fFlags[:],
		I: iFlags[:],
		S: sFlags[:],
		B: bFlags[:],
		Seed: *seed,
	}

	s, err := packer.Build(p)
	if err != nil {
		return nil, units.Units{}, err
	}
	u := units.NewReduced()

	if *configIn != "" {
		f, err := os.Open(*configIn)
		if err != nil {
			return nil, units.Units{}, fmt.Errorf("opening -config: %w", err)
		}
		defer f.Close()

		doc, err := config.Load(f)
		if err != nil {
			return nil, units.Units{}, fmt.Errorf("loading -config: %w", err)
		}
		store, err := doc.BuildStore()
		if err != nil {
			return nil, units.Units{}, fmt.Errorf("decoding -config particle data: %w", err)
		}
		s.Store = store
		u = doc.Units
	}

	return s, u, nil
}

func newSorter(name string, mft float64) scheduler.Sorter {
	if name == "calendar" {
		dt := mft
		if dt <= 0 {
			dt = 1
		}
		return scheduler.NewCalendarQueue(1024, dt, 0)
	}
	return scheduler.NewTreeSorter()
}

func writeOutput(s *sim.Simulation, u units.Units, misc outputxml.Plugin) error {
	f, err := os.Create(*outputOut)
	if err != nil {
		return err
	}
	defer f.Close()
	return outputxml.WriteTree(f, *indent, s, u, []outputxml.Plugin{misc})
}

func writeConfig(s *sim.Simulation, u units.Units) error {
	f, err := os.Create(*configOut)
	if err != nil {
		return err
	}
	defer f.Close()

	doc := &config.Document{
		Version: config.CurrentVersion,
		Ensemble: "NVE",
		Scheduler: *sorterName,
		Box: boxSize(s.Boundary),
		Units: u,
		Boundary: s.Boundary.Name(),
		Liouvillean: "Newtonian",
	}
	doc.FillFromStore(s.Store)
	return config.Save(f, doc, *indent)
}

// boxSize recovers the box dimensions from whichever boundary.Condition
// variant the Simulation was built with; None has no box and reports zero.
func boxSize(cond boundary.Condition) vecmath.Vec3 {
	switch b := cond.(type) {
	case boundary.Periodic:
		return b.Box
	case boundary.PeriodicExceptX:
		return b.Box
	case boundary.PeriodicXOnly:
		return b.Box
	case *boundary.LeesEdwards:
		return b.Box
	default:
		return vecmath.Vec3{}
	}
}
