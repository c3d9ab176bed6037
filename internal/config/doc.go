package config

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/units"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
)

// CurrentVersion is the only configuration-document version this loader
// accepts; any other value is a fatal Configuration error.
const CurrentVersion = "1.0"

// SpeciesRecord is one <Species> entry: a name, its member particle IDs,
// and its uniform mass (polydisperse species are a packer-time construct,
// not a configuration-file one, so mass here is always scalar).
type SpeciesRecord struct {
	Name string
	IDs []int
	Mass float64
}

// ParticleRecord is one <Pt> entry: ID, flags, position and velocity, all
// in configuration units until Document.BuildStore converts them.
type ParticleRecord struct {
	ID int
	Flags particle.Flags
	Pos vecmath.Vec3
	Vel vecmath.Vec3
}

// Document is the in-memory form of the configuration file: metadata,
// ensemble/scheduler declaration, box dimensions, species list, boundary
// condition name, liouvillean name, particle list and unit system, in the
// section order the format specifies. The polymorphic
// interaction/local/global/system-event/topology/property lists are kept
// as opaque, already-serialized XML fragments (RawXXX) rather than decoded
// into this module's tagged-variant types: decoding a `get_class_from_xml`-
// style factory generically from XML is a parser in its own right, and
// nothing requires this loader to be the place that does it — the
// packer and config-driven sim assembly are expected to re-parse whichever
// fragment their packer mode cares about.
type Document struct {
	Version string
	TrajectoryLength int
	LastMFT float64
	Ensemble string
	Scheduler string
	Box vecmath.Vec3
	Units units.Units
	Species []SpeciesRecord
	Boundary string
	Liouvillean string
	Particles []ParticleRecord

	RawTopology string
	RawInteractions string
	RawLocals string
	RawGlobals string
	RawSystems string
	RawProperties string
}

type xmlAttrOnly struct {
	Type string `xml:"Type,attr"`
}

type xmlSpecies struct {
	Name string `xml:"Name,attr"`
	Mass float64 `xml:"Mass,attr"`
	IDs string `xml:"IDs,attr"`
}

type xmlParticle struct {
	ID int `xml:"ID,attr"`
	Flags uint8 `xml:"Flags,attr"`
	X float64 `xml:"px,attr"`
	Y float64 `xml:"py,attr"`
	Z float64 `xml:"pz,attr"`
	VX float64 `xml:"vx,attr"`
	VY float64 `xml:"vy,attr"`
	VZ float64 `xml:"vz,attr"`
}

type rawNode struct {
	InnerXML string `xml:",innerxml"`
}

type xmlDoc struct {
	XMLName xml.Name `xml:"DYNAMOconfig"`
	Version string `xml:"version,attr"`

	Metadata struct {
		TrajectoryLength int `xml:"TrajectoryLength,attr"`
		LastMFT float64 `xml:"LastMFT,attr"`
	} `xml:"Metadata"`

	Ensemble xmlAttrOnly `xml:"Ensemble"`
	Scheduler xmlAttrOnly `xml:"Scheduler"`

	Box struct {
		X float64 `xml:"x,attr"`
		Y float64 `xml:"y,attr"`
		Z float64 `xml:"z,attr"`
	} `xml:"Box"`

	Units struct {
		Length float64 `xml:"Length,attr"`
		Time float64 `xml:"Time,attr"`
		Mass float64 `xml:"Mass,attr"`
	} `xml:"Units"`

	Species []xmlSpecies `xml:"SpeciesList>Species"`
	Boundary xmlAttrOnly `xml:"Boundary"`
	Topology rawNode `xml:"Topology"`
	Interactions rawNode `xml:"Interactions"`
	Locals rawNode `xml:"Locals"`
	Globals rawNode `xml:"Globals"`
	Systems rawNode `xml:"Systems"`
	Liouvillean xmlAttrOnly `xml:"Liouvillean"`
	Particles []xmlParticle `xml:"ParticleData>Pt"`
	Properties rawNode `xml:"Properties"`
}

// parseIDs parses a comma-delimited particle-ID list, the format
// packer descriptors also use for explicit membership lists.
func parseIDs(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		var id int
		if _, err := fmt.Sscanf(strings.TrimSpace(p), "%d", &id); err != nil {
			return nil, fmt.Errorf("config: bad particle id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ",")
}

// Load parses a configuration document from r. A version mismatch against
// CurrentVersion is reported as a Configuration error and is
// fatal — the caller should not attempt to use the returned Document,
// which is nil on any error.
func Load(r io.Reader) (*Document, error) {
	var x xmlDoc
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&x); err != nil {
		return nil, fmt.Errorf("config: malformed document: %w", err)
	}
	if x.Version != CurrentVersion {
		return nil, fmt.Errorf("config: version mismatch: document is %q, this build reads %q", x.Version, CurrentVersion)
	}

	doc := &Document{
		Version: x.Version,
		TrajectoryLength: x.Metadata.TrajectoryLength,
		LastMFT: x.Metadata.LastMFT,
		Ensemble: x.Ensemble.Type,
		Scheduler: x.Scheduler.Type,
		Box: vecmath.Vec3{X: x.Box.X, Y: x.Box.Y, Z: x.Box.Z},
		Units: units.New(x.Units.Length, x.Units.Time, x.Units.Mass),
		Boundary: x.Boundary.Type,
		Liouvillean: x.Liouvillean.Type,
		RawTopology: x.Topology.InnerXML,
		RawInteractions: x.Interactions.InnerXML,
		RawLocals: x.Locals.InnerXML,
		RawGlobals: x.Globals.InnerXML,
		RawSystems: x.Systems.InnerXML,
		RawProperties: x.Properties.InnerXML,
	}
	if doc.Units == (units.Units{}) {
		doc.Units = units.NewReduced()
	}

	for _, sp := range x.Species {
		ids, err := parseIDs(sp.IDs)
		if err != nil {
			return nil, err
		}
		doc.Species = append(doc.Species, SpeciesRecord{Name: sp.Name, Mass: sp.Mass, IDs: ids})
	}

	for _, p := range x.Particles {
		doc.Particles = append(doc.Particles, ParticleRecord{
			ID: p.ID,
			Flags: particle.Flags(p.Flags),
			Pos: vecmath.Vec3{X: p.X, Y: p.Y, Z: p.Z},
			Vel: vecmath.Vec3{X: p.VX, Y: p.VY, Z: p.VZ},
		})
	}

	return doc, nil
}

// Save writes doc using the streaming Writer, in the same section order
// Load expects, so Save followed by Load round-trips every field.
func Save(w io.Writer, doc *Document, indent bool) error {
	x := NewWriter(w, indent)

	x.Begin("DYNAMOconfig").Attr("version", doc.Version)

	x.Begin("Metadata").
		AttrInt("TrajectoryLength", doc.TrajectoryLength).
		AttrFloat("LastMFT", doc.LastMFT).
		End()

	x.Begin("Ensemble").Attr("Type", doc.Ensemble).End()
	x.Begin("Scheduler").Attr("Type", doc.Scheduler).End()

	x.Begin("Box").
		AttrFloat("x", doc.Box.X).
		AttrFloat("y", doc.Box.Y).
		AttrFloat("z", doc.Box.Z).
		End()

	x.Begin("Units").
		AttrFloat("Length", doc.Units.Length).
		AttrFloat("Time", doc.Units.Time).
		AttrFloat("Mass", doc.Units.Mass).
		End()

	x.Begin("SpeciesList")
	for _, sp := range doc.Species {
		x.Begin("Species").
			Attr("Name", sp.Name).
			AttrFloat("Mass", sp.Mass).
			Attr("IDs", formatIDs(sp.IDs)).
			End()
	}
	x.End()

	x.Begin("Boundary").Attr("Type", doc.Boundary).End()

	writeRaw(x, "Topology", doc.RawTopology)
	writeRaw(x, "Interactions", doc.RawInteractions)
	writeRaw(x, "Locals", doc.RawLocals)
	writeRaw(x, "Globals", doc.RawGlobals)
	writeRaw(x, "Systems", doc.RawSystems)

	x.Begin("Liouvillean").Attr("Type", doc.Liouvillean).End()

	x.Begin("ParticleData")
	for _, p := range doc.Particles {
		x.Begin("Pt").
			AttrInt("ID", p.ID).
			AttrInt("Flags", int(p.Flags)).
			AttrFloat("px", p.Pos.X).AttrFloat("py", p.Pos.Y).AttrFloat("pz", p.Pos.Z).
			AttrFloat("vx", p.Vel.X).AttrFloat("vy", p.Vel.Y).AttrFloat("vz", p.Vel.Z).
			End()
	}
	x.End()

	writeRaw(x, "Properties", doc.RawProperties)

	x.End() // DYNAMOconfig
	return x.Close()
}

// BuildStore converts doc's particle and species records into a live
// particle.Store, scaling every position and velocity from configuration
// units into simulation units via doc.Units. The returned store has not
// been through Store.Initialise; the caller does that once every
// Interaction/Local/Global/System section has also been parsed.
func (doc *Document) BuildStore() (*particle.Store, error) {
	store := particle.NewStore()
	byID := make(map[int]int, len(doc.Particles))
	for _, rec := range doc.Particles {
		pos := vecmath.Vec3{
			X: doc.Units.LengthToSim(rec.Pos.X),
			Y: doc.Units.LengthToSim(rec.Pos.Y),
			Z: doc.Units.LengthToSim(rec.Pos.Z),
		}
		vel := vecmath.Vec3{
			X: doc.Units.VelocityToSim(rec.Vel.X),
			Y: doc.Units.VelocityToSim(rec.Vel.Y),
			Z: doc.Units.VelocityToSim(rec.Vel.Z),
		}
		p := store.Add(pos, vel, rec.Flags)
		byID[rec.ID] = p.ID
	}

	for _, sp := range doc.Species {
		ids := make([]int, 0, len(sp.IDs))
		for _, id := range sp.IDs {
			mapped, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("config: species %q references unknown particle id %d", sp.Name, id)
			}
			ids = append(ids, mapped)
		}
		store.AddSpecies(particle.NewSpecies(sp.Name, ids, doc.Units.MassToSim(sp.Mass)))
	}

	return store, nil
}

// FillFromStore populates doc.Particles and doc.Species from a live store,
// scaling positions and velocities from simulation units back into
// configuration units via doc.Units — the inverse of BuildStore, used by
// callers assembling a Document to Save after a run.
func (doc *Document) FillFromStore(store *particle.Store) {
	doc.Particles = doc.Particles[:0]
	for _, p := range store.All() {
		doc.Particles = append(doc.Particles, ParticleRecord{
			ID: p.ID,
			Flags: p.Flags,
			Pos: vecmath.Vec3{
				X: doc.Units.LengthToConfig(p.Pos.X),
				Y: doc.Units.LengthToConfig(p.Pos.Y),
				Z: doc.Units.LengthToConfig(p.Pos.Z),
			},
			Vel: vecmath.Vec3{
				X: doc.Units.VelocityToConfig(p.Vel.X),
				Y: doc.Units.VelocityToConfig(p.Vel.Y),
				Z: doc.Units.VelocityToConfig(p.Vel.Z),
			},
		})
	}

	doc.Species = doc.Species[:0]
	for _, sp := range store.Species() {
		doc.Species = append(doc.Species, SpeciesRecord{
			Name: sp.Name,
			IDs: append([]int(nil), sp.IDs...),
			Mass: doc.Units.MassToConfig(sp.Mass(firstID(sp.IDs))),
		})
	}
}

// firstID returns ids[0], or 0 for an empty species (Mass is then read at
// an arbitrary ID, which is fine for a uniform-mass species and the only
// kind Save/Load round-trips).
func firstID(ids []int) int {
	if len(ids) == 0 {
		return 0
	}
	return ids[0]
}

func writeRaw(x *Writer, tag, inner string) {
	x.Begin(tag)
	if inner != "" {
		x.CharData(inner)
	}
	x.End()
}
