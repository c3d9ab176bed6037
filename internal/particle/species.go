package particle

import "fmt"

// MassFunc returns the mass of the particle with the given ID. A species
// with uniform mass returns a constant regardless of argument; a
// per-particle-indexed species (e.g. polydisperse Gaussian hard spheres)
// closes over a lookup table.
type MassFunc func(id int) float64

// UniformMass returns a MassFunc that always returns m.
func UniformMass(m float64) MassFunc {
	return func(int) float64 { return m }
}

// Species is a named, disjoint partition of particle IDs carrying mass and
// a reference to one self-Interaction used for excluded-volume, drawing and
// default pair dispatch. InteractionID is resolved against the
// owning Simulation's interaction list at Initialise time;
// it is -1 until resolved.
type Species struct {
	Name string
	IDs []int
	Mass MassFunc
	InteractionID int

	resolved bool
	idSet map[int]struct{}
}

// NewSpecies creates a species over the given particle IDs with a uniform
// mass. InteractionID is left unresolved (-1) until Initialise is called.
func NewSpecies(name string, ids []int, mass float64) *Species {
	return &Species{
		Name: name,
		IDs: ids,
		Mass: UniformMass(mass),
		InteractionID: -1,
	}
}

// Contains reports whether id is a member of this species.
func (s *Species) Contains(id int) bool {
	s.ensureIndex()
	_, ok := s.idSet[id]
	return ok
}

// Count returns the number of particles in this species.
func (s *Species) Count() int { return len(s.IDs) }

func (s *Species) ensureIndex() {
	if s.idSet != nil {
		return
	}
	s.idSet = make(map[int]struct{}, len(s.IDs))
	for _, id := range s.IDs {
		s.idSet[id] = struct{}{}
	}
}

// Initialise resolves the species against the known particle count and the
// number of available interactions, per step 1: it validates that
// every member ID is in range and that InteractionID (if set) indexes a
// real interaction. The interaction count is supplied by the caller (the
// Simulation facade) rather than imported here, keeping this package free
// of a dependency on the interaction package.
func (s *Species) Initialise(numParticles, numInteractions int) error {
	for _, id := range s.IDs {
		if id < 0 || id >= numParticles {
			return fmt.Errorf("particle: species %q: member id %d out of range [0,%d)", s.Name, id, numParticles)
		}
	}
	if s.InteractionID >= numInteractions {
		return fmt.Errorf("particle: species %q: interaction id %d out of range [0,%d)", s.Name, s.InteractionID, numInteractions)
	}
	s.ensureIndex()
	s.resolved = true
	return nil
}

// Resolved reports whether Initialise has succeeded.
func (s *Species) Resolved() bool { return s.resolved }
