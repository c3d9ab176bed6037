// Package outputxml implements the output file: on demand the core
// writes a tree of plugin sub-sections, every numeric value emitted in the
// configuration unit system, each plugin responsible for its own inverse
// scaling.
//
// Grounded on outputplugins/0partproperty/misc.cpp, whose output method
// streams a flat set of tagged values (Density, PackingFraction,
// ParticleCount, SimLength, Timing, Total_momentum, totMeanFreeTime) onto
// an xmlw::XmlStream — the same shape this package's Writer/Plugin split
// reproduces with internal/config's streaming writer standing in for
// xmlw::XmlStream.
package outputxml

import (
	"io"
	"sort"

	"github.com/dynamo-sim/dynamo/internal/config"
	"github.com/dynamo-sim/dynamo/internal/sim"
	"github.com/dynamo-sim/dynamo/internal/units"
)

// Plugin is one output-plugin sub-section. Name tags the wrapping element,
// Priority controls emission order (lower first, matching "sorted by
// declared priority" in the control-flow description), Output writes the
// plugin's own values through x in configuration units.
//
// Plugin also satisfies sim.Plugin (EventUpdate), so the same value can be
// registered on Simulation.Plugins to be notified as events execute and
// then asked to Output its accumulated state later.
type Plugin interface {
	sim.Plugin
	Name() string
	Priority() int
	Output(x *config.Writer, u units.Units, s *sim.Simulation)
}

// WriteTree writes every plugin's section inside one <OutputData> root, in
// priority order, through a single Writer so indentation nests correctly.
func WriteTree(w io.Writer, indent bool, s *sim.Simulation, u units.Units, plugins []Plugin) error {
	ordered := make([]Plugin, len(plugins))
	copy(ordered, plugins)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority() < ordered[j].Priority() })

	x := config.NewWriter(w, indent)
	x.Begin("OutputData")
	for _, p := range ordered {
		p.Output(x, u, s)
	}
	x.End()
	return x.Close()
}
