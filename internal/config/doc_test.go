package config

import (
	"bytes"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/units"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
)

func sampleDocument() *Document {
	return &Document{
		Version:          CurrentVersion,
		TrajectoryLength: 1000,
		LastMFT:          0.0,
		Ensemble:         "NVE",
		Scheduler:        "NeighbourList",
		Box:              vecmath.Vec3{X: 10, Y: 10, Z: 10},
		Units:            units.NewReduced(),
		Species: []SpeciesRecord{
			{Name: "sphere", Mass: 1.0, IDs: []int{0, 1, 2}},
		},
		Boundary:    "PBC",
		Liouvillean: "Newtonian",
		Particles: []ParticleRecord{
			{ID: 0, Flags: particle.Dynamic | particle.Alive, Pos: vecmath.Vec3{X: 1, Y: 2, Z: 3}, Vel: vecmath.Vec3{X: 0.5, Y: -0.5, Z: 0}},
			{ID: 1, Flags: particle.Dynamic | particle.Alive, Pos: vecmath.Vec3{X: -1, Y: 0, Z: 0}, Vel: vecmath.Vec3{X: -0.5, Y: 0.5, Z: 0}},
			{ID: 2, Flags: particle.Dynamic | particle.Alive, Pos: vecmath.Vec3{X: 4, Y: 4, Z: 4}, Vel: vecmath.Vec3{X: 0, Y: 0, Z: 1}},
		},
		RawInteractions: `<Interaction Type="HardSphere" Diameter="1.0"/>`,
	}
}

func TestConfigRoundTrip(t *testing.T) {
	Convey("Given a configuration document", t, func() {
		doc := sampleDocument()

		Convey("When it is saved and reloaded", func() {
			var buf bytes.Buffer
			err := Save(&buf, doc, true)
			So(err, ShouldBeNil)

			loaded, err := Load(&buf)
			So(err, ShouldBeNil)

			Convey("every scalar field round-trips exactly", func() {
				So(loaded.Version, ShouldEqual, doc.Version)
				So(loaded.TrajectoryLength, ShouldEqual, doc.TrajectoryLength)
				So(loaded.Ensemble, ShouldEqual, doc.Ensemble)
				So(loaded.Scheduler, ShouldEqual, doc.Scheduler)
				So(loaded.Boundary, ShouldEqual, doc.Boundary)
				So(loaded.Liouvillean, ShouldEqual, doc.Liouvillean)
				So(loaded.Box.X, ShouldEqual, doc.Box.X)
				So(loaded.Box.Y, ShouldEqual, doc.Box.Y)
				So(loaded.Box.Z, ShouldEqual, doc.Box.Z)
			})

			Convey("the species and particle lists round-trip", func() {
				So(len(loaded.Species), ShouldEqual, 1)
				So(loaded.Species[0].Name, ShouldEqual, "sphere")
				So(loaded.Species[0].IDs, ShouldResemble, []int{0, 1, 2})

				So(len(loaded.Particles), ShouldEqual, 3)
				for i, p := range doc.Particles {
					So(loaded.Particles[i].ID, ShouldEqual, p.ID)
					So(loaded.Particles[i].Pos.X, ShouldEqual, p.Pos.X)
					So(loaded.Particles[i].Vel.Z, ShouldEqual, p.Vel.Z)
				}
			})

			Convey("the opaque interaction fragment survives untouched", func() {
				So(strings.TrimSpace(loaded.RawInteractions), ShouldEqual, doc.RawInteractions)
			})
		})
	})
}

func TestConfigVersionMismatchIsFatal(t *testing.T) {
	Convey("Given a document whose version attribute is wrong", t, func() {
		doc := sampleDocument()
		doc.Version = "0.9"

		var buf bytes.Buffer
		So(Save(&buf, doc, false), ShouldBeNil)

		Convey("When it is loaded", func() {
			_, err := Load(&buf)

			Convey("loading fails instead of silently accepting it", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "version mismatch")
			})
		})
	})
}

func TestConfigDefaultsToReducedUnitsWhenUnset(t *testing.T) {
	Convey("Given a minimal document with no Units element", t, func() {
		raw := `<DYNAMOconfig version="1.0"><Metadata TrajectoryLength="0" LastMFT="0"/>` +
			`<Ensemble Type="NVE"/><Scheduler Type="NeighbourList"/>` +
			`<Box x="1" y="1" z="1"/><Boundary Type="PBC"/>` +
			`<Liouvillean Type="Newtonian"/></DYNAMOconfig>`

		Convey("When it is loaded", func() {
			doc, err := Load(strings.NewReader(raw))
			So(err, ShouldBeNil)

			Convey("the unit system falls back to reduced units", func() {
				So(doc.Units, ShouldResemble, units.NewReduced())
			})
		})
	})
}
