package outputxml

import (
	"bytes"
	"testing"

	"github.com/dynamo-sim/dynamo/internal/boundary"
	"github.com/dynamo-sim/dynamo/internal/interaction"
	"github.com/dynamo-sim/dynamo/internal/liouvillean"
	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/scheduler"
	"github.com/dynamo-sim/dynamo/internal/sim"
	"github.com/dynamo-sim/dynamo/internal/units"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPairSim(t *testing.T) *sim.Simulation {
	t.Helper()
	store := particle.NewStore()
	store.Add(vecmath.Vec3{X: -2}, vecmath.Vec3{X: 1}, particle.Dynamic|particle.Alive)
	store.Add(vecmath.Vec3{X: 2}, vecmath.Vec3{X: -1}, particle.Dynamic|particle.Alive)
	sp := particle.NewSpecies("sphere", []int{0, 1}, 1.0)
	sp.InteractionID = 0
	store.AddSpecies(sp)

	interactions := interaction.List{
		{Name: "core", Kind: interaction.HardSphere, Range: interaction.All{}, Diameter: 1.0},
	}

	s := sim.New(store, boundary.Periodic{Box: vecmath.Vec3{X: 10, Y: 10, Z: 10}},
		liouvillean.New(liouvillean.Newtonian), interactions, nil, nil, nil,
		vecmath.NewSource(1), 100.0)
	require.NoError(t, s.Initialise(scheduler.NewTreeSorter()))
	return s
}

func TestMiscOutputsDensityAndParticleCount(t *testing.T) {
	s := newPairSim(t)
	s.Run(5)

	m := NewMisc()
	var buf bytes.Buffer
	err := WriteTree(&buf, false, s, units.NewReduced(), []Plugin{m})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "<Misc>")
	assert.Contains(t, out, `<ParticleCount val="2"/>`)
	assert.Contains(t, out, "<Density")
	assert.Contains(t, out, "<TotalMomentum")
}

func TestMiscTracksEventCountsViaSimulation(t *testing.T) {
	s := newPairSim(t)
	s.Run(1)
	assert.Equal(t, 1, s.DualEvents, "one executed two-particle collision counts as one dual event")
	assert.Equal(t, 0, s.SingleEvents)
}
