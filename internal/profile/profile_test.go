package profile

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/clubops/gpscanon/internal/adapters/repository"
	"github.com/clubops/gpscanon/internal/domain/canon"
)

type stubNotifier struct {
	profileID string
	addedKeys []string
	calls     int
	err       error
}

func (s *stubNotifier) NotifyRecalc(_ context.Context, profileID string, addedKeys []string) error {
	s.calls++
	s.profileID = profileID
	s.addedKeys = addedKeys
	return s.err
}

func baseColumns() []repository.ColumnMapping {
	return []repository.ColumnMapping{
		{CanonicalMetric: "total_distance", SourceColumn: "TD", SourceUnit: "m", DisplayName: "Distance", DisplayUnit: "km", Order: 1},
		{CanonicalMetric: "max_speed", SourceColumn: "Max Speed", SourceUnit: "km/h", DisplayUnit: "km/h", Order: 2},
	}
}

func TestSaveProfileValidation(t *testing.T) {
	ctx := context.Background()
	registry := canon.NewRegistry()

	Convey("Given an engine over an empty store", t, func() {
		store := repository.NewMemory()
		engine := New(registry, store)

		Convey("a valid save creates the profile", func() {
			p, err := engine.SaveProfile(ctx, SaveInput{
				Name:      "Catapult match",
				GpsSystem: "catapult",
				Columns:   baseColumns(),

				HiddenCanonicalKeys: []string{"max_speed"},
			})
			So(err, ShouldBeNil)
			So(p.ID, ShouldNotBeEmpty)
			So(p.UsageCount, ShouldEqual, 0)
			So(p.HiddenCanonicalKeys, ShouldResemble, []string{"max_speed"})
		})

		Convey("a save without columns is rejected", func() {
			_, err := engine.SaveProfile(ctx, SaveInput{Name: "empty", GpsSystem: "catapult"})
			So(errors.Is(err, ErrEmptyProfile), ShouldBeTrue)
		})

		Convey("an unknown canonical metric is rejected", func() {
			cols := baseColumns()
			cols[0].CanonicalMetric = "warp_speed"
			_, err := engine.SaveProfile(ctx, SaveInput{Name: "bad", GpsSystem: "catapult", Columns: cols})
			So(errors.Is(err, canon.ErrMetricNotFound), ShouldBeTrue)
		})

		Convey("duplicate canonical metrics are rejected case-insensitively", func() {
			cols := baseColumns()
			cols[1] = repository.ColumnMapping{CanonicalMetric: " Total_Distance ", SourceColumn: "Dist 2", SourceUnit: "m"}
			_, err := engine.SaveProfile(ctx, SaveInput{Name: "dup", GpsSystem: "catapult", Columns: cols})
			So(errors.Is(err, ErrDuplicateCanonicalKey), ShouldBeTrue)
		})

		Convey("a display unit outside the metric's supported set is rejected", func() {
			cols := baseColumns()
			cols[0].DisplayUnit = "bpm"
			_, err := engine.SaveProfile(ctx, SaveInput{Name: "bad unit", GpsSystem: "catapult", Columns: cols})
			So(errors.Is(err, ErrUnsupportedDisplayUnit), ShouldBeTrue)
		})

		Convey("a source unit outside the metric's supported set is rejected", func() {
			cols := baseColumns()
			cols[1].SourceUnit = "m"
			_, err := engine.SaveProfile(ctx, SaveInput{Name: "bad source", GpsSystem: "catapult", Columns: cols})
			So(errors.Is(err, ErrUnsupportedSourceUnit), ShouldBeTrue)
		})
	})
}

func TestSaveProfileGuard(t *testing.T) {
	ctx := context.Background()
	registry := canon.NewRegistry()

	Convey("Given a saved profile", t, func() {
		store := repository.NewMemory()
		notifier := &stubNotifier{}
		engine := New(registry, store, WithNotifier(notifier))

		created, err := engine.SaveProfile(ctx, SaveInput{
			Name:      "Polar training",
			GpsSystem: "polar",
			Columns:   baseColumns(),
		})
		So(err, ShouldBeNil)

		Convey("while unlocked, rows can be removed and re-keyed freely", func() {
			updated, err := engine.SaveProfile(ctx, SaveInput{
				ID:        created.ID,
				Name:      "Polar training",
				GpsSystem: "polar",
				Columns: []repository.ColumnMapping{
					{CanonicalMetric: "duration", SourceColumn: "Time", SourceUnit: "s", DisplayUnit: "min"},
				},
			})
			So(err, ShouldBeNil)
			So(updated.Columns, ShouldHaveLength, 1)
			So(notifier.calls, ShouldEqual, 0)
		})

		Convey("once a report used the profile", func() {
			So(store.IncrementProfileUsage(ctx, created.ID), ShouldBeNil)

			Convey("removing a row is rejected and nothing is written", func() {
				_, err := engine.SaveProfile(ctx, SaveInput{
					ID:        created.ID,
					Name:      "Polar training",
					GpsSystem: "polar",
					Columns:   baseColumns()[:1],
				})
				So(errors.Is(err, ErrProfileGuardViolation), ShouldBeTrue)

				stored, err := store.GetProfile(ctx, created.ID)
				So(err, ShouldBeNil)
				So(stored.Columns, ShouldHaveLength, 2)
			})

			Convey("changing the gps system is rejected and nothing is written", func() {
				_, err := engine.SaveProfile(ctx, SaveInput{
					ID:        created.ID,
					Name:      "Polar training",
					GpsSystem: "catapult",
					Columns:   baseColumns(),
				})
				So(errors.Is(err, ErrProfileGuardViolation), ShouldBeTrue)

				stored, err := store.GetProfile(ctx, created.ID)
				So(err, ShouldBeNil)
				So(stored.GpsSystem, ShouldEqual, "polar")
			})

			Convey("re-keying a row's source column is rejected", func() {
				cols := baseColumns()
				cols[0].SourceColumn = "Total Dist"
				_, err := engine.SaveProfile(ctx, SaveInput{
					ID:        created.ID,
					Name:      "Polar training",
					GpsSystem: "polar",
					Columns:   cols,
				})
				So(errors.Is(err, ErrProfileGuardViolation), ShouldBeTrue)
				So(notifier.calls, ShouldEqual, 0)
			})

			Convey("editing presentation fields on existing rows succeeds", func() {
				cols := baseColumns()
				cols[0].DisplayName = "Total distance covered"
				cols[0].DisplayUnit = "m"
				cols[1].Order = 7
				updated, err := engine.SaveProfile(ctx, SaveInput{
					ID:        created.ID,
					Name:      "Polar matchday",
					GpsSystem: "polar",
					Columns:   cols,
				})
				So(err, ShouldBeNil)
				So(updated.Name, ShouldEqual, "Polar matchday")
				So(updated.Columns[0].DisplayUnit, ShouldEqual, "m")
				So(notifier.calls, ShouldEqual, 0)
			})

			Convey("appending a row succeeds and enqueues a recalc", func() {
				cols := append(baseColumns(), repository.ColumnMapping{
					CanonicalMetric: "hsr_distance", SourceColumn: "HSR", SourceUnit: "m", DisplayUnit: "m", Order: 3,
				})
				updated, err := engine.SaveProfile(ctx, SaveInput{
					ID:        created.ID,
					Name:      "Polar training",
					GpsSystem: "polar",
					Columns:   cols,
				})
				So(err, ShouldBeNil)
				So(updated.Columns, ShouldHaveLength, 3)
				So(notifier.calls, ShouldEqual, 1)
				So(notifier.profileID, ShouldEqual, created.ID)
				So(notifier.addedKeys, ShouldResemble, []string{RowKey("hsr_distance", "HSR")})
			})

			Convey("a notifier failure does not fail the save", func() {
				notifier.err = errors.New("queue full")
				cols := append(baseColumns(), repository.ColumnMapping{
					CanonicalMetric: "player_load", SourceColumn: "Load", SourceUnit: "AU", Order: 3,
				})
				_, err := engine.SaveProfile(ctx, SaveInput{
					ID:        created.ID,
					Name:      "Polar training",
					GpsSystem: "polar",
					Columns:   cols,
				})
				So(err, ShouldBeNil)
				So(notifier.calls, ShouldEqual, 1)
			})
		})

		Convey("updating a missing profile reports not found", func() {
			_, err := engine.SaveProfile(ctx, SaveInput{
				ID:        "missing",
				Name:      "ghost",
				GpsSystem: "polar",
				Columns:   baseColumns(),
			})
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestRowKey(t *testing.T) {
	Convey("Row keys are case-insensitive and trimmed", t, func() {
		So(RowKey("Total_Distance", " TD "), ShouldEqual, "total_distance__@@__td")
		So(RowKey("total_distance", "td"), ShouldEqual, RowKey("TOTAL_DISTANCE", "TD"))
		So(RowKey("total_distance", "td"), ShouldNotEqual, RowKey("total_distance", "dist"))
	})
}
