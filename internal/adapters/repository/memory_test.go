package repository

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMemoryProfiles(t *testing.T) {
	ctx := context.Background()

	Convey("Given an in-memory store", t, func() {
		store := NewMemory()

		Convey("CreateProfile assigns an id and timestamps", func() {
			p := &Profile{
				Name:      "Catapult default",
				GpsSystem: "catapult",
				Columns: []ColumnMapping{
					{CanonicalMetric: "total_distance", SourceColumn: "TD", SourceUnit: "m", DisplayUnit: "km"},
				},
			}
			So(store.CreateProfile(ctx, p), ShouldBeNil)
			So(p.ID, ShouldNotBeEmpty)
			So(p.CreatedAt.IsZero(), ShouldBeFalse)

			Convey("and the stored copy is isolated from the caller", func() {
				p.Columns[0].SourceColumn = "mutated"
				got, err := store.GetProfile(ctx, p.ID)
				So(err, ShouldBeNil)
				So(got.Columns[0].SourceColumn, ShouldEqual, "TD")
			})

			Convey("creating the same id again conflicts", func() {
				err := store.CreateProfile(ctx, &Profile{ID: p.ID, Name: "dup"})
				So(errors.Is(err, ErrConflict), ShouldBeTrue)
			})
		})

		Convey("GetProfile on an unknown id returns not found", func() {
			_, err := store.GetProfile(ctx, "missing")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("UpdateProfile applies the mutation", func() {
			p := &Profile{Name: "old", GpsSystem: "polar"}
			So(store.CreateProfile(ctx, p), ShouldBeNil)

			updated, err := store.UpdateProfile(ctx, p.ID, func(prof *Profile) error {
				prof.Name = "new"
				prof.Columns = append(prof.Columns, ColumnMapping{CanonicalMetric: "duration", SourceColumn: "Time"})
				return nil
			})
			So(err, ShouldBeNil)
			So(updated.Name, ShouldEqual, "new")
			So(updated.Columns, ShouldHaveLength, 1)

			got, err := store.GetProfile(ctx, p.ID)
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "new")
		})

		Convey("a mutation error aborts the write and surfaces unchanged", func() {
			p := &Profile{Name: "keep", GpsSystem: "statsports"}
			So(store.CreateProfile(ctx, p), ShouldBeNil)

			boom := errors.New("rejected")
			_, err := store.UpdateProfile(ctx, p.ID, func(prof *Profile) error {
				prof.Name = "discarded"
				return boom
			})
			So(err, ShouldEqual, boom)

			got, err := store.GetProfile(ctx, p.ID)
			So(err, ShouldBeNil)
			So(got.Name, ShouldEqual, "keep")
		})

		Convey("IncrementProfileUsage bumps the counter", func() {
			p := &Profile{Name: "counted", GpsSystem: "wimu"}
			So(store.CreateProfile(ctx, p), ShouldBeNil)

			So(store.IncrementProfileUsage(ctx, p.ID), ShouldBeNil)
			So(store.IncrementProfileUsage(ctx, p.ID), ShouldBeNil)

			got, err := store.GetProfile(ctx, p.ID)
			So(err, ShouldBeNil)
			So(got.UsageCount, ShouldEqual, 2)
		})

		Convey("a closed store rejects every call", func() {
			store.Close()
			So(errors.Is(store.CreateProfile(ctx, &Profile{}), ErrStoreClosed), ShouldBeTrue)
			_, err := store.GetProfile(ctx, "any")
			So(errors.Is(err, ErrStoreClosed), ShouldBeTrue)
			_, err = store.UpdateProfile(ctx, "any", func(*Profile) error { return nil })
			So(errors.Is(err, ErrStoreClosed), ShouldBeTrue)
		})
	})
}

func TestMemoryReports(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with one report", t, func() {
		store := NewMemory()
		report := &Report{
			Name:      "Matchday 12",
			ProfileID: "prof-1",
			TeamID:    "team-1",
			FileName:  "session.csv",
		}
		So(store.CreateReport(ctx, report), ShouldBeNil)

		Convey("it starts in the uploaded state", func() {
			got, err := store.GetReport(ctx, report.ID)
			So(err, ShouldBeNil)
			So(got.Status, ShouldEqual, ReportUploaded)
		})

		Convey("SaveReportData stores the batch and marks it processed", func() {
			rows := []ReportData{
				{PlayerName: "Ivanov", CanonicalMetric: "total_distance", Value: 5400, Unit: "m"},
				{PlayerName: "Petrov", CanonicalMetric: "total_distance", Value: 6100, Unit: "m"},
			}
			So(store.SaveReportData(ctx, report.ID, rows), ShouldBeNil)

			got, err := store.GetReport(ctx, report.ID)
			So(err, ShouldBeNil)
			So(got.Status, ShouldEqual, ReportProcessed)
			So(got.RowCount, ShouldEqual, 2)

			stored, err := store.ReportData(ctx, report.ID)
			So(err, ShouldBeNil)
			So(stored, ShouldHaveLength, 2)
			So(stored[0].ID, ShouldNotBeEmpty)
			So(stored[0].ReportID, ShouldEqual, report.ID)

			Convey("and a second save replaces the batch", func() {
				So(store.SaveReportData(ctx, report.ID, rows[:1]), ShouldBeNil)
				stored, err := store.ReportData(ctx, report.ID)
				So(err, ShouldBeNil)
				So(stored, ShouldHaveLength, 1)
			})
		})

		Convey("SetUnresolvedPlayers records names awaiting a decision", func() {
			So(store.SetUnresolvedPlayers(ctx, report.ID, []string{"Sidorov"}), ShouldBeNil)
			got, err := store.GetReport(ctx, report.ID)
			So(err, ShouldBeNil)
			So(got.UnresolvedPlayers, ShouldResemble, []string{"Sidorov"})
		})

		Convey("MarkReportFailed records the failure", func() {
			So(store.MarkReportFailed(ctx, report.ID, "conversion failed for column Speed"), ShouldBeNil)
			got, err := store.GetReport(ctx, report.ID)
			So(err, ShouldBeNil)
			So(got.Status, ShouldEqual, ReportFailed)
			So(got.Error, ShouldEqual, "conversion failed for column Speed")
		})

		Convey("operations on an unknown report return not found", func() {
			So(errors.Is(store.SaveReportData(ctx, "missing", nil), ErrNotFound), ShouldBeTrue)
			So(errors.Is(store.SetUnresolvedPlayers(ctx, "missing", nil), ErrNotFound), ShouldBeTrue)
			So(errors.Is(store.MarkReportFailed(ctx, "missing", "x"), ErrNotFound), ShouldBeTrue)
			_, err := store.ReportData(ctx, "missing")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestMemoryPlayers(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store with a roster", t, func() {
		store := NewMemory()
		So(store.UpsertPlayer(ctx, &Player{ID: "p1", TeamID: "team-1", FirstName: "Ivan", LastName: "Ivanov"}), ShouldBeNil)
		So(store.UpsertPlayer(ctx, &Player{ID: "p2", TeamID: "team-1", FirstName: "Petr", LastName: "Petrov"}), ShouldBeNil)

		Convey("PlayersByTeam returns only that team", func() {
			So(store.UpsertPlayer(ctx, &Player{ID: "p3", TeamID: "team-2", FirstName: "Other", LastName: "Club"}), ShouldBeNil)
			roster, err := store.PlayersByTeam(ctx, "team-1")
			So(err, ShouldBeNil)
			So(roster, ShouldHaveLength, 2)
		})

		Convey("upserting an existing id updates in place", func() {
			So(store.UpsertPlayer(ctx, &Player{ID: "p1", TeamID: "team-1", FirstName: "Ivan", LastName: "Sidorov"}), ShouldBeNil)
			roster, err := store.PlayersByTeam(ctx, "team-1")
			So(err, ShouldBeNil)
			So(roster, ShouldHaveLength, 2)
			So(roster[0].LastName, ShouldEqual, "Sidorov")
		})

		Convey("an unknown team yields an empty roster", func() {
			roster, err := store.PlayersByTeam(ctx, "nobody")
			So(err, ShouldBeNil)
			So(roster, ShouldBeEmpty)
		})
	})
}

func TestMemoryMappings(t *testing.T) {
	ctx := context.Background()

	Convey("Given a store", t, func() {
		store := NewMemory()

		Convey("ActiveMapping returns nil when nothing is saved", func() {
			got, err := store.ActiveMapping(ctx, "team-1", "catapult", "ivanov i")
			So(err, ShouldBeNil)
			So(got, ShouldBeNil)
		})

		Convey("SaveMapping stores an active mapping", func() {
			So(store.SaveMapping(ctx, &PlayerMapping{
				ReportName:     "Ivanov I.",
				NormalizedName: "ivanov i",
				PlayerID:       "p1",
				TeamID:         "team-1",
				GpsSystem:      "catapult",
				Confidence:     0.97,
				MappingType:    "manual",
			}), ShouldBeNil)

			got, err := store.ActiveMapping(ctx, "team-1", "catapult", "ivanov i")
			So(err, ShouldBeNil)
			So(got, ShouldNotBeNil)
			So(got.PlayerID, ShouldEqual, "p1")
			So(got.IsActive, ShouldBeTrue)

			Convey("saving the same key again deactivates the previous mapping", func() {
				So(store.SaveMapping(ctx, &PlayerMapping{
					ReportName:     "Ivanov I.",
					NormalizedName: "ivanov i",
					PlayerID:       "p2",
					TeamID:         "team-1",
					GpsSystem:      "catapult",
					Confidence:     1,
					MappingType:    "manual",
				}), ShouldBeNil)

				got, err := store.ActiveMapping(ctx, "team-1", "catapult", "ivanov i")
				So(err, ShouldBeNil)
				So(got.PlayerID, ShouldEqual, "p2")

				all := store.Mappings("team-1")
				So(all, ShouldHaveLength, 2)
				So(all[0].IsActive, ShouldBeTrue)
				So(all[1].IsActive, ShouldBeFalse)
			})

			Convey("a different gps system is a different key", func() {
				got, err := store.ActiveMapping(ctx, "team-1", "polar", "ivanov i")
				So(err, ShouldBeNil)
				So(got, ShouldBeNil)
			})
		})
	})
}
