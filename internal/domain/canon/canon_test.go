package canon

import (
	"errors"
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/clubops/gpscanon/internal/domain/units"
)

func TestRegistryLookup(t *testing.T) {
	Convey("Given the built-in metric registry", t, func() {
		reg := NewRegistry()

		Convey("When looking up a known code", func() {
			m, err := reg.Lookup("total_distance")

			Convey("Then the metric should be returned", func() {
				So(err, ShouldBeNil)
				So(m.Code, ShouldEqual, "total_distance")
				So(m.Dimension, ShouldEqual, units.Distance)
				So(m.CanonicalUnit, ShouldEqual, "m")
			})
		})

		Convey("When looking up with mixed case and padding", func() {
			m, err := reg.Lookup("  Total_Distance ")

			Convey("Then the lookup should still succeed", func() {
				So(err, ShouldBeNil)
				So(m.Code, ShouldEqual, "total_distance")
			})
		})

		Convey("When looking up an unknown code", func() {
			_, err := reg.Lookup("teleport_distance")

			Convey("Then a not-found error should be returned", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, ErrMetricNotFound), ShouldBeTrue)
			})
		})

		Convey("When looking up an empty code", func() {
			_, err := reg.Lookup("   ")

			Convey("Then a not-found error should be returned", func() {
				So(errors.Is(err, ErrMetricNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestRegistryCatalog(t *testing.T) {
	Convey("Given the built-in metric registry", t, func() {
		reg := NewRegistry()
		all := reg.All()

		Convey("Then the catalog should be fully populated", func() {
			So(len(all), ShouldEqual, 57)
		})

		Convey("Then codes should be unique and sorted", func() {
			codes := reg.Codes()
			So(len(codes), ShouldEqual, len(all))
			seen := make(map[string]bool, len(codes))
			for i, code := range codes {
				So(seen[code], ShouldBeFalse)
				seen[code] = true
				if i > 0 {
					So(codes[i-1] < code, ShouldBeTrue)
				}
			}
		})

		Convey("Then every zone family should span zones 1 through 6", func() {
			families := []string{
				"distance_zone%d", "time_in_speed_zone%d", "speed_zone%d_entries",
				"acc_zone%d_count", "dec_zone%d_count", "time_in_hr_zone%d",
			}
			for _, family := range families {
				for z := 1; z <= 6; z++ {
					_, err := reg.Lookup(fmt.Sprintf(family, z))
					So(err, ShouldBeNil)
				}
			}
		})

		Convey("Then every canonical unit should be its dimension's base unit", func() {
			for _, m := range all {
				base, err := units.BaseUnit(m.Dimension)
				So(err, ShouldBeNil)
				So(m.CanonicalUnit, ShouldEqual, base)
			}
		})

		Convey("Then every supported unit should belong to the metric's dimension", func() {
			for _, m := range all {
				So(len(m.SupportedUnits), ShouldBeGreaterThan, 0)
				for _, u := range m.SupportedUnits {
					So(units.HasUnit(m.Dimension, u), ShouldBeTrue)
				}
			}
		})
	})
}

func TestRegistryUnits(t *testing.T) {
	Convey("Given the built-in metric registry", t, func() {
		reg := NewRegistry()

		Convey("When asking for a metric's canonical unit", func() {
			unit, err := reg.CanonicalUnitFor("max_speed")

			Convey("Then the base unit of the dimension should be returned", func() {
				So(err, ShouldBeNil)
				So(unit, ShouldEqual, "m/s")
			})
		})

		Convey("When asking for supported units", func() {
			supported, err := reg.SupportedUnitsFor("avg_heart_rate")

			Convey("Then the metric's unit set should be returned", func() {
				So(err, ShouldBeNil)
				So(supported, ShouldContain, "bpm")
				So(supported, ShouldContain, "%HRmax")
			})

			Convey("Then mutating the result should not alter the registry", func() {
				supported[0] = "furlongs"
				again, err := reg.SupportedUnitsFor("avg_heart_rate")
				So(err, ShouldBeNil)
				So(again, ShouldContain, "bpm")
			})
		})

		Convey("When checking unit support", func() {
			Convey("Then declared units should be accepted", func() {
				So(reg.SupportsUnit("total_distance", "km"), ShouldBeTrue)
				So(reg.SupportsUnit("hsr_percentage", "%"), ShouldBeTrue)
			})

			Convey("Then foreign units should be rejected", func() {
				So(reg.SupportsUnit("total_distance", "bpm"), ShouldBeFalse)
				So(reg.SupportsUnit("player_load", "m"), ShouldBeFalse)
			})
		})

		Convey("Then ratio metrics should be canonical in ratio, not percent", func() {
			for _, code := range []string{"hsr_percentage", "work_ratio"} {
				unit, err := reg.CanonicalUnitFor(code)
				So(err, ShouldBeNil)
				So(unit, ShouldEqual, "ratio")
			}
		})

		Convey("Then distance_per_min should be a derived speed metric", func() {
			m, err := reg.Lookup("distance_per_min")
			So(err, ShouldBeNil)
			So(m.IsDerived, ShouldBeTrue)
			So(m.Dimension, ShouldEqual, units.Speed)
			So(m.CanonicalUnit, ShouldEqual, "m/s")
			So(m.Formula, ShouldNotBeEmpty)
		})
	})
}
