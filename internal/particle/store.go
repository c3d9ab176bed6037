package particle

import "fmt"

// Store owns every particle in the simulation. IDs form the contiguous
// range [0,N) and double as slice indices, so lookup by ID
// is O(1) with no auxiliary map — unlike taskstore.TaskStore, which
// needs a map because task IDs are sparse and externally assigned, particle
// IDs here are dense and store-assigned.
type Store struct {
	particles []*Particle
	species []*Species
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add appends a new particle, assigning it the next contiguous ID. Returns
// the created particle.
func (s *Store) Add(pos, vel Vec3, flags Flags) *Particle {
	p := New(len(s.particles), pos, vel, flags)
	s.particles = append(s.particles, p)
	return p
}

// Len returns the number of particles in the store (N).
func (s *Store) Len() int { return len(s.particles) }

// Get returns the particle with the given ID. Panics on an out-of-range ID,
// since every caller in the core obtains IDs from the store itself or from
// an already-validated event.
func (s *Store) Get(id int) *Particle {
	return s.particles[id]
}

// All returns every particle in the store, in ID order. The returned slice
// aliases internal storage and must not be mutated by the caller (append
// new elements via Add, not by editing this slice).
func (s *Store) All() []*Particle {
	return s.particles
}

// AddSpecies registers a species. Species membership is validated lazily,
// at Initialise, not here, since particle IDs may still be in flux during
// configuration.
func (s *Store) AddSpecies(sp *Species) {
	s.species = append(s.species, sp)
}

// Species returns the registered species list.
func (s *Store) Species() []*Species { return s.species }

// SpeciesOf returns the species owning the given particle ID, or nil if no
// species claims it (a setup error caught by Initialise).
func (s *Store) SpeciesOf(id int) *Species {
	for _, sp := range s.species {
		if sp.Contains(id) {
			return sp
		}
	}
	return nil
}

// Initialise validates the data-model invariants from and step 2:
// every particle belongs to exactly one species, and species counts sum to
// N. Returns a descriptive error on the first violation found; it does not
// attempt to collect every violation, since setup errors are fatal and the
// caller fixes one problem at a time.
func (s *Store) Initialise(numInteractions int) error {
	owner := make([]int, len(s.particles))
	for i := range owner {
		owner[i] = -1
	}

	for si, sp := range s.species {
		if err := sp.Initialise(len(s.particles), numInteractions); err != nil {
			return err
		}
		for _, id := range sp.IDs {
			if owner[id] != -1 {
				return fmt.Errorf("particle: particle %d claimed by both species %q and %q",
					id, s.species[owner[id]].Name, sp.Name)
			}
			owner[id] = si
		}
	}

	for id, o := range owner {
		if o == -1 {
			return fmt.Errorf("particle: particle %d belongs to no species", id)
		}
	}

	total := 0
	for _, sp := range s.species {
		total += sp.Count()
	}
	if total != len(s.particles) {
		return fmt.Errorf("particle: species counts sum to %d, want %d", total, len(s.particles))
	}

	for _, p := range s.particles {
		if !p.IsDynamic() && p.Vel != (Vec3{}) {
			return fmt.Errorf("particle: non-dynamic particle %d has nonzero velocity %v", p.ID, p.Vel)
		}
	}

	return nil
}

// CheckPeculiarTimeInvariant counts particles whose peculiar time exceeds the
// given global simulation time, which would violate the invariant that
// peculiar time never exceeds global simulation time.
func (s *Store) CheckPeculiarTimeInvariant(globalTime float64) (violations int) {
	for _, p := range s.particles {
		if p.PeculiarTime > globalTime {
			violations++
		}
	}
	return violations
}
