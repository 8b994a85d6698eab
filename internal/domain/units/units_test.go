package units_test

import (
	"context"
	"errors"
	"testing"

	"github.com/clubops/gpscanon/internal/domain/units"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRegistry(t *testing.T) {
	Convey("Given the dimension registry", t, func() {
		Convey("When listing dimensions", func() {
			dims := units.Dimensions()

			Convey("Then all ten dimensions should be present", func() {
				So(len(dims), ShouldEqual, 10)
				So(units.IsDimension(units.Distance), ShouldBeTrue)
				So(units.IsDimension(units.HeartRate), ShouldBeTrue)
				So(units.IsDimension(units.Identity), ShouldBeTrue)
				So(units.IsDimension("voltage"), ShouldBeFalse)
			})
		})

		Convey("When looking up base units", func() {
			Convey("Then each dimension should report its factor-1 unit", func() {
				cases := map[units.Dimension]string{
					units.Distance:      "m",
					units.Time:          "s",
					units.Speed:         "m/s",
					units.Acceleration:  "m/s^2",
					units.HeartRate:     "bpm",
					units.Load:          "AU",
					units.PowerMassNorm: "W/kg",
					units.Ratio:         "ratio",
					units.Count:         "count",
					units.Identity:      "string",
				}
				for dim, want := range cases {
					base, err := units.BaseUnit(dim)
					So(err, ShouldBeNil)
					So(base, ShouldEqual, want)
				}
			})

			Convey("Then an unknown dimension should fail", func() {
				_, err := units.BaseUnit("voltage")
				So(errors.Is(err, units.ErrUnknownDimension), ShouldBeTrue)
			})
		})

		Convey("When looking up unit factors", func() {
			Convey("Then registry factors should be returned", func() {
				f, err := units.Factor(units.Distance, "km")
				So(err, ShouldBeNil)
				So(f, ShouldEqual, 1000)

				f, err = units.Factor(units.Speed, "mph")
				So(err, ShouldBeNil)
				So(f, ShouldEqual, 0.44704)

				f, err = units.Factor(units.Ratio, "%")
				So(err, ShouldBeNil)
				So(f, ShouldEqual, 0.01)
			})

			Convey("Then a foreign unit should fail with the unsupported kind", func() {
				_, err := units.Factor(units.Distance, "km/h")
				So(errors.Is(err, units.ErrUnsupportedUnit), ShouldBeTrue)
			})
		})

		Convey("When checking contextual units", func() {
			So(units.RequiresContext("%HRmax"), ShouldBeTrue)
			So(units.RequiresContext("bpm"), ShouldBeFalse)
			So(units.RequiresContext("m"), ShouldBeFalse)
		})

		Convey("When listing units of a dimension", func() {
			list := units.UnitsFor(units.Speed)

			Convey("Then the registry order should be preserved", func() {
				So(len(list), ShouldEqual, 4)
				So(list[0].Code, ShouldEqual, "m/s")
			})

			Convey("And mutating the copy should not touch the registry", func() {
				list[0].Factor = 999
				again := units.UnitsFor(units.Speed)
				So(again[0].Factor, ShouldEqual, 1)
			})
		})
	})
}

func TestConvert(t *testing.T) {
	Convey("Given a conversion engine", t, func() {
		ctx := context.Background()
		engine := units.NewEngine()

		Convey("When converting between units of one dimension", func() {
			Convey("Then km to m should multiply by 1000", func() {
				v, err := engine.Convert(ctx, 5, "km", "m", units.Distance)
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 5000)
			})

			Convey("Then km/h to m/s should use the pivot", func() {
				v, err := engine.Convert(ctx, 36, "km/h", "m/s", units.Speed)
				So(err, ShouldBeNil)
				So(v, ShouldAlmostEqual, 10, 1e-6)
			})

			Convey("Then percent to ratio should divide by 100", func() {
				v, err := engine.Convert(ctx, 45, "%", "ratio", units.Ratio)
				So(err, ShouldBeNil)
				So(v, ShouldAlmostEqual, 0.45, 1e-12)
			})
		})

		Convey("When converting a value to its own unit", func() {
			v, err := engine.Convert(ctx, 0.1, "km/h", "km/h", units.Speed)

			Convey("Then the value should be returned exactly, without arithmetic", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 0.1)
			})
		})

		Convey("When round-tripping across every unit pair", func() {
			Convey("Then the original value should come back within tolerance", func() {
				for _, dim := range units.Dimensions() {
					if dim == units.Identity {
						continue
					}
					list := units.UnitsFor(dim)
					for _, a := range list {
						for _, b := range list {
							mid, err := engine.Convert(ctx, 123.456, a.Code, b.Code, dim)
							So(err, ShouldBeNil)
							back, err := engine.Convert(ctx, mid, b.Code, a.Code, dim)
							So(err, ShouldBeNil)
							So(back, ShouldAlmostEqual, 123.456, 1e-9)
						}
					}
				}
			})
		})

		Convey("When the units do not belong to the dimension", func() {
			_, err := engine.Convert(ctx, 1, "m", "s", units.Distance)

			Convey("Then it should fail naming both units", func() {
				So(errors.Is(err, units.ErrUnsupportedUnit), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "distance")
				So(err.Error(), ShouldContainSubstring, `"m"`)
				So(err.Error(), ShouldContainSubstring, `"s"`)
			})
		})

		Convey("When converting an identity value", func() {
			_, err := engine.Convert(ctx, 1, "string", "string", units.Identity)

			Convey("Then it should fail", func() {
				So(errors.Is(err, units.ErrIdentityConversion), ShouldBeTrue)
			})
		})

		Convey("When the dimension is unknown", func() {
			_, err := engine.Convert(ctx, 1, "m", "km", "voltage")

			So(errors.Is(err, units.ErrUnknownDimension), ShouldBeTrue)
		})

		Convey("When converting %HRmax", func() {
			v, err := engine.Convert(ctx, 85, "%HRmax", "bpm", units.HeartRate)

			Convey("Then it should convert as factor 1 rather than fail", func() {
				So(err, ShouldBeNil)
				So(v, ShouldEqual, 85)
			})
		})
	})
}
