package outputxml

import (
	"math"
	"time"

	"github.com/dynamo-sim/dynamo/internal/boundary"
	"github.com/dynamo-sim/dynamo/internal/config"
	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/sim"
	"github.com/dynamo-sim/dynamo/internal/units"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
)

// Misc reports the same whole-system summary as the original's COPMisc:
// number density, packing fraction, species/particle counts, total
// momentum, mean free time and timing. It does not itself count events —
// sim.Simulation already tallies DualEvents/SingleEvents for
// Simulation.MeanFreeTime, so EventUpdate here only needs to exist to
// satisfy sim.Plugin.
type Misc struct {
	start time.Time
}

// NewMisc starts the wall-clock timer the Timing section reports, the
// same moment COPMisc::initialise calls std::time.
func NewMisc() *Misc { return &Misc{start: time.Now()} }

func (m *Misc) Name() string  { return "Misc" }
func (m *Misc) Priority() int { return 0 }

func (m *Misc) EventUpdate(store *particle.Store, changes []int) {}

func boxVolume(b boundary.Condition) (float64, bool) {
	var box vecmath.Vec3
	switch v := b.(type) {
	case boundary.Periodic:
		box = v.Box
	case boundary.PeriodicExceptX:
		box = v.Box
	case boundary.PeriodicXOnly:
		box = v.Box
	case *boundary.LeesEdwards:
		box = v.Box
	default:
		return 0, false
	}
	if box.X <= 0 || box.Y <= 0 || box.Z <= 0 {
		return 0, false
	}
	return box.X * box.Y * box.Z, true
}

func (m *Misc) Output(x *config.Writer, u units.Units, s *sim.Simulation) {
	n := s.Store.Len()

	var density, packing float64
	if vol, ok := boxVolume(s.Boundary); ok {
		density = float64(n) / vol * u.Length * u.Length * u.Length

		var excluded float64
		for _, sp := range s.Store.Species() {
			if sp.InteractionID < 0 || sp.InteractionID >= len(s.Interactions) {
				continue
			}
			d := s.Interactions[sp.InteractionID].Diameter
			excluded += (math.Pi / 6.0) * d * d * d * float64(sp.Count())
		}
		packing = excluded / vol
	}

	x.Begin("Misc")

	x.Begin("Density").AttrFloat("val", density).End()
	x.Begin("PackingFraction").AttrFloat("val", packing).End()
	x.Begin("SpeciesCount").AttrInt("val", len(s.Store.Species())).End()
	x.Begin("ParticleCount").AttrInt("val", n).End()

	x.Begin("SimLength").
		AttrInt("Collisions", s.DualEvents+s.SingleEvents).
		AttrFloat("Time", u.TimeToConfig(s.Now())).
		End()

	end := time.Now()
	duration := end.Sub(m.start).Seconds()
	var collPerSec float64
	if duration > 0 {
		collPerSec = float64(s.DualEvents+s.SingleEvents) / duration
	}

	x.Begin("Timing")
	x.Begin("Start").Attr("val", m.start.Format(time.RFC1123)).End()
	x.Begin("End").Attr("val", end.Format(time.RFC1123)).End()
	x.Begin("Duration").AttrFloat("val", duration).End()
	x.Begin("CollPerSec").AttrFloat("val", collPerSec).End()
	x.End() // Timing

	var momentum vecmath.Vec3
	for _, p := range s.Store.All() {
		if !p.IsDynamic() {
			continue
		}
		sp := s.Store.SpeciesOf(p.ID)
		mass := 1.0
		if sp != nil {
			mass = sp.Mass(p.ID)
		}
		momentum = momentum.Add(p.Vel.SMul(mass))
	}
	momentumUnit := u.Mass * u.Velocity()

	x.Begin("TotalMomentum").
		AttrFloat("x", momentum.X/momentumUnit).
		AttrFloat("y", momentum.Y/momentumUnit).
		AttrFloat("z", momentum.Z/momentumUnit).
		End()

	x.Begin("TotMeanFreeTime").AttrFloat("val", u.TimeToConfig(s.MeanFreeTime())).End()

	x.End() // Misc
}
