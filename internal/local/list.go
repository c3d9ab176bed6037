package local

import (
	"github.com/dynamo-sim/dynamo/internal/liouvillean"
	"github.com/dynamo-sim/dynamo/internal/particle"
)

// List is the registered set of Local geometry a System checks a particle
// against. Unlike interaction.List (first-match-wins), every Local that
// applies to a particle is a candidate event source — a particle confined
// between a Cylinder and an OscillatingPlate end-cap needs both checked —
// so Predict returns the single soonest event across all applicable
// entries, mirroring how the scheduler treats a particle's local events as
// one more competing event source alongside its pair events.
type List []Local

// Predict returns the soonest predicted event for particle id against any
// applicable Local, and which Local produced it.
func (l List) Predict(p *particle.Particle, liou *liouvillean.Liouvillean, now, horizon float64) (Local, float64, bool) {
	var best Local
	bestT := horizon
	found := false

	for _, loc := range l {
		if !loc.AppliesTo(p.ID) {
			continue
		}
		t, ok := loc.Predict(p, liou, now, horizon)
		if ok && t < bestT {
			best, bestT, found = loc, t, true
		}
	}
	return best, bestT, found
}
