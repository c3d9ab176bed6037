// Package units implements the scale factors converting between simulation
// and reduced (configuration-file) units, per the unit policy:
// "all loaded scalars are scaled by the reciprocal of the Units object so
// the core always sees simulation units; on save, scaled back."
package units

// Units holds the three independent scale factors (length, time, mass) that
// every other physical quantity (energy, velocity,...) is derived from.
// The zero value is invalid; use NewReduced or New.
type Units struct {
	Length float64
	Time float64
	Mass float64
}

// NewReduced returns the identity scaling (reduced units == simulation
// units), the default for configurations that don't specify a Units
// element.
func NewReduced() Units {
	return Units{Length: 1, Time: 1, Mass: 1}
}

// New returns a Units with the given scale factors.
func New(length, time, mass float64) Units {
	return Units{Length: length, Time: time, Mass: mass}
}

// Energy returns the derived energy scale: mass * length^2 / time^2.
func (u Units) Energy() float64 {
	return u.Mass * u.Length * u.Length / (u.Time * u.Time)
}

// Velocity returns the derived velocity scale: length / time.
func (u Units) Velocity() float64 {
	return u.Length / u.Time
}

// LengthToSim converts a length-dimensioned scalar from configuration units to
// simulation units by dividing by the length scale: scaled by the
// reciprocal of the Units object.
func (u Units) LengthToSim(v float64) float64 { return v / u.Length }

// LengthToConfig converts a length-dimensioned scalar from simulation units
// back to configuration units for saving.
func (u Units) LengthToConfig(v float64) float64 { return v * u.Length }

// TimeToSim converts a time-dimensioned scalar to simulation units.
func (u Units) TimeToSim(v float64) float64 { return v / u.Time }

// TimeToConfig converts a time-dimensioned scalar back to configuration units.
func (u Units) TimeToConfig(v float64) float64 { return v * u.Time }

// MassToSim converts a mass-dimensioned scalar to simulation units.
func (u Units) MassToSim(v float64) float64 { return v / u.Mass }

// MassToConfig converts a mass-dimensioned scalar back to configuration units.
func (u Units) MassToConfig(v float64) float64 { return v * u.Mass }

// EnergyToSim converts an energy-dimensioned scalar to simulation units.
func (u Units) EnergyToSim(v float64) float64 { return v / u.Energy() }

// EnergyToConfig converts an energy-dimensioned scalar back to configuration units.
func (u Units) EnergyToConfig(v float64) float64 { return v * u.Energy() }

// VelocityToSim converts a velocity-dimensioned scalar to simulation units.
func (u Units) VelocityToSim(v float64) float64 { return v / u.Velocity() }

// VelocityToConfig converts a velocity-dimensioned scalar back to configuration units.
func (u Units) VelocityToConfig(v float64) float64 { return v * u.Velocity() }
