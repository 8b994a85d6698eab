package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/clubops/gpscanon/internal/adapters/repository"
	service "github.com/clubops/gpscanon/internal/app"
	"github.com/clubops/gpscanon/internal/domain/reconcile"
	"github.com/clubops/gpscanon/internal/profile"
	"github.com/clubops/gpscanon/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const sessionCSV = "Player,TD,Max Speed,Time\n" +
	"Ivan Ivanov,5400,31.2,01:30:00\n" +
	"Petr Petrov,6100,29.8,01:30:00\n" +
	"Average,5750,30.5,01:30:00\n"

func startService(t *testing.T, store repository.Store) *service.Service {
	t.Helper()
	opts := []service.Option{
		service.WithWorkerCount(1),
		service.WithQueueSize(16),
	}
	if store != nil {
		opts = append(opts, service.WithStore(store))
	}
	svc := service.New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func saveTestProfile(ctx context.Context, svc *service.Service) (*repository.Profile, error) {
	return svc.SaveProfile(ctx, profile.SaveInput{
		Name:      "Catapult match",
		GpsSystem: "catapult",
		Columns: []repository.ColumnMapping{
			{CanonicalMetric: "total_distance", SourceColumn: "TD", SourceUnit: "m", DisplayUnit: "km", Order: 1},
			{CanonicalMetric: "max_speed", SourceColumn: "Max Speed", SourceUnit: "km/h", DisplayUnit: "km/h", Order: 2},
			{CanonicalMetric: "duration", SourceColumn: "Time", SourceUnit: "s", DisplayUnit: "min", Order: 3},
		},
	})
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()

		Convey("stats report it as stopped", func() {
			So(svc.GetStats()["started"], ShouldBeFalse)
		})

		Convey("after Start it is running and idempotent", func() {
			ctx := context.Background()
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)

			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats["metricCount"], ShouldBeGreaterThan, 50)

			Convey("and Stop brings it down", func() {
				svc.Stop()
				So(svc.GetStats()["started"], ShouldBeFalse)
			})
		})
	})
}

func TestParseVendorFile(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running service", t, func() {
		svc := startService(t, nil)

		Convey("a CSV upload is parsed, validated and mapped", func() {
			result, err := svc.ParseVendorFile(ctx, []byte(sessionCSV), "session.csv")
			So(err, ShouldBeNil)
			So(result.Headers, ShouldResemble, []string{"Player", "TD", "Max Speed", "Time"})
			So(result.Players, ShouldResemble, []string{"Ivan Ivanov", "Petr Petrov"})
			So(result.Validation.IsValid, ShouldBeTrue)

			So(result.Suggestions, ShouldContainKey, "TD")
			So(result.Suggestions["TD"].CanonicalKey, ShouldEqual, "total_distance")
			So(result.Suggestions, ShouldContainKey, "Max Speed")
			So(result.Suggestions["Max Speed"].CanonicalKey, ShouldEqual, "max_speed")
			So(result.Suggestions, ShouldNotContainKey, "Player")
		})

		Convey("conversions go through the engine", func() {
			km, err := svc.Convert(ctx, 5400, "m", "km", "distance")
			So(err, ShouldBeNil)
			So(km, ShouldAlmostEqual, 5.4, 1e-9)

			_, err = svc.Convert(ctx, 1, "m", "km", "volume")
			So(errors.Is(err, service.ErrUnknownDimension), ShouldBeTrue)
		})

		Convey("the metric catalog is exposed", func() {
			catalog := svc.MetricCatalog()
			So(len(catalog), ShouldBeGreaterThan, 50)
		})
	})
}

func TestIngestReport(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running service with a profile and a roster", t, func() {
		store := repository.NewMemory()
		svc := startService(t, store)

		So(store.UpsertPlayer(ctx, &repository.Player{ID: "p1", TeamID: "team-1", FirstName: "Ivan", LastName: "Ivanov"}), ShouldBeNil)
		So(store.UpsertPlayer(ctx, &repository.Player{ID: "p2", TeamID: "team-1", FirstName: "Petr", LastName: "Petrov"}), ShouldBeNil)

		prof, err := saveTestProfile(ctx, svc)
		So(err, ShouldBeNil)

		file, err := svc.ParseFile(ctx, []byte(sessionCSV), "session.csv")
		So(err, ShouldBeNil)

		Convey("ingestion canonicalizes every mapped cell", func() {
			report, err := svc.IngestReport(ctx, service.IngestInput{
				Name:      "Matchday 12",
				TeamID:    "team-1",
				EventID:   "event-12",
				ProfileID: prof.ID,
				FileName:  "session.csv",
				File:      file,
			})
			So(err, ShouldBeNil)
			So(report.Status, ShouldEqual, repository.ReportProcessed)
			So(report.EventID, ShouldEqual, "event-12")
			So(report.ProfileSnapshot, ShouldHaveLength, 3)
			So(report.UnresolvedPlayers, ShouldBeEmpty)

			rows, err := svc.GetReportData(ctx, report.ID)
			So(err, ShouldBeNil)
			// 2 players (service row skipped) x 3 mapped columns.
			So(rows, ShouldHaveLength, 6)

			byMetric := make(map[string]map[string]repository.ReportData)
			for _, row := range rows {
				if byMetric[row.CanonicalMetric] == nil {
					byMetric[row.CanonicalMetric] = make(map[string]repository.ReportData)
				}
				byMetric[row.CanonicalMetric][row.PlayerName] = row
			}

			Convey("distances stay in meters", func() {
				So(byMetric["total_distance"]["Ivan Ivanov"].Value, ShouldAlmostEqual, 5400, 1e-9)
				So(byMetric["total_distance"]["Ivan Ivanov"].Unit, ShouldEqual, "m")
			})

			Convey("speeds convert from km/h to m/s", func() {
				So(byMetric["max_speed"]["Ivan Ivanov"].Value, ShouldAlmostEqual, 31.2/3.6, 1e-6)
			})

			Convey("clock times become seconds", func() {
				So(byMetric["duration"]["Petr Petrov"].Value, ShouldAlmostEqual, 5400, 1e-9)
			})

			Convey("player rows carry resolved roster ids", func() {
				So(byMetric["total_distance"]["Ivan Ivanov"].PlayerID, ShouldEqual, "p1")
				So(byMetric["total_distance"]["Petr Petrov"].PlayerID, ShouldEqual, "p2")
			})

			Convey("and profile usage is incremented", func() {
				stored, err := store.GetProfile(ctx, prof.ID)
				So(err, ShouldBeNil)
				So(stored.UsageCount, ShouldEqual, 1)
			})
		})

		Convey("a name with no confident match blocks only its own rows", func() {
			mixed, err := svc.ParseFile(ctx, []byte("Player,TD\nIvan Ivanov,5400\nNeznakomets,4000\n"), "mixed.csv")
			So(err, ShouldBeNil)

			report, err := svc.IngestReport(ctx, service.IngestInput{
				Name:      "Mixed roster",
				TeamID:    "team-1",
				ProfileID: prof.ID,
				FileName:  "mixed.csv",
				File:      mixed,
			})
			So(err, ShouldBeNil)
			So(report.Status, ShouldEqual, repository.ReportProcessed)
			So(report.UnresolvedPlayers, ShouldResemble, []string{"Neznakomets"})

			rows, err := svc.GetReportData(ctx, report.ID)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
			So(rows[0].PlayerName, ShouldEqual, "Ivan Ivanov")
			So(rows[0].PlayerID, ShouldEqual, "p1")
		})

		Convey("a caller decision admits a name the matcher cannot place", func() {
			mixed, err := svc.ParseFile(ctx, []byte("Player,TD\nIvan Ivanov,5400\nNeznakomets,4000\n"), "mixed.csv")
			So(err, ShouldBeNil)

			report, err := svc.IngestReport(ctx, service.IngestInput{
				Name:           "Mixed roster",
				TeamID:         "team-1",
				ProfileID:      prof.ID,
				FileName:       "mixed.csv",
				File:           mixed,
				PlayerMappings: map[string]string{"Neznakomets": "p2"},
			})
			So(err, ShouldBeNil)
			So(report.Status, ShouldEqual, repository.ReportProcessed)
			So(report.UnresolvedPlayers, ShouldBeEmpty)

			rows, err := svc.GetReportData(ctx, report.ID)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 2)

			byName := make(map[string]string)
			for _, row := range rows {
				byName[row.PlayerName] = row.PlayerID
			}
			So(byName["Neznakomets"], ShouldEqual, "p2")
			So(byName["Ivan Ivanov"], ShouldEqual, "p1")
		})

		Convey("an invalid file marks its report failed", func() {
			bad, err := svc.ParseFile(ctx, []byte("Player,TD\nIvanov,fast\n"), "broken.csv")
			So(err, ShouldBeNil)

			report, err := svc.IngestReport(ctx, service.IngestInput{
				Name:      "Broken",
				TeamID:    "team-1",
				ProfileID: prof.ID,
				FileName:  "broken.csv",
				File:      bad,
			})
			So(errors.Is(err, service.ErrValidationFailed), ShouldBeTrue)
			So(report.Status, ShouldEqual, repository.ReportFailed)
			So(report.Error, ShouldNotBeEmpty)
		})
	})
}

func TestAutoMatchAndMappings(t *testing.T) {
	ctx := context.Background()

	Convey("Given a running service with a roster", t, func() {
		store := repository.NewMemory()
		svc := startService(t, store)

		So(store.UpsertPlayer(ctx, &repository.Player{ID: "p1", TeamID: "team-1", FirstName: "Ivan", LastName: "Ivanov"}), ShouldBeNil)
		So(store.UpsertPlayer(ctx, &repository.Player{ID: "p2", TeamID: "team-1", FirstName: "Petr", LastName: "Petrov"}), ShouldBeNil)

		Convey("a permuted name auto-confirms", func() {
			result, err := svc.AutoMatch(ctx, "Ivanov Ivan", "team-1", "catapult")
			So(err, ShouldBeNil)
			So(result.Action, ShouldEqual, reconcile.ActionConfirm)
			So(result.Suggested.ID, ShouldEqual, "p1")
		})

		Convey("a saved manual decision wins on the next match", func() {
			So(svc.SaveMapping(ctx, service.SaveMappingInput{
				ReportName: "Vanya",
				TeamID:     "team-1",
				GpsSystem:  "catapult",
				PlayerID:   "p1",
				Confidence: 1,
			}), ShouldBeNil)

			result, err := svc.AutoMatch(ctx, "Vanya", "team-1", "catapult")
			So(err, ShouldBeNil)
			So(result.Action, ShouldEqual, reconcile.ActionConfirm)
			So(result.Source, ShouldEqual, reconcile.SourceSaved)
			So(result.Suggested.ID, ShouldEqual, "p1")
		})

		Convey("an unknown name on an empty roster asks for a roster addition", func() {
			result, err := svc.AutoMatch(ctx, "Христофоров", "team-2", "catapult")
			So(err, ShouldBeNil)
			So(result.Action, ShouldEqual, reconcile.ActionCreate)
		})
	})
}

func TestRecalcFlow(t *testing.T) {
	ctx := context.Background()

	Convey("Given a processed report on a locked profile", t, func() {
		store := repository.NewMemory()
		svc := startService(t, store)

		So(store.UpsertPlayer(ctx, &repository.Player{ID: "p1", TeamID: "team-1", FirstName: "Ivan", LastName: "Ivanov"}), ShouldBeNil)
		So(store.UpsertPlayer(ctx, &repository.Player{ID: "p2", TeamID: "team-1", FirstName: "Petr", LastName: "Petrov"}), ShouldBeNil)

		prof, err := saveTestProfile(ctx, svc)
		So(err, ShouldBeNil)

		file, err := svc.ParseFile(ctx, []byte(sessionCSV), "session.csv")
		So(err, ShouldBeNil)

		report, err := svc.IngestReport(ctx, service.IngestInput{
			Name:      "Matchday 12",
			TeamID:    "team-1",
			ProfileID: prof.ID,
			FileName:  "session.csv",
			File:      file,
		})
		So(err, ShouldBeNil)
		So(report.Status, ShouldEqual, repository.ReportProcessed)

		Convey("appending a derived metric recalculates existing reports", func() {
			cols := append(prof.Columns, repository.ColumnMapping{
				CanonicalMetric: "distance_per_min", SourceColumn: "M/min", SourceUnit: "m/min", DisplayUnit: "m/min", Order: 4,
			})
			_, err := svc.SaveProfile(ctx, profile.SaveInput{
				ID:        prof.ID,
				Name:      prof.Name,
				GpsSystem: prof.GpsSystem,
				Columns:   cols,
			})
			So(err, ShouldBeNil)

			derived := func() map[string]float64 {
				rows, err := svc.GetReportData(ctx, report.ID)
				if err != nil {
					return nil
				}
				out := make(map[string]float64)
				for _, row := range rows {
					if row.CanonicalMetric == "distance_per_min" {
						out[row.PlayerName] = row.Value
					}
				}
				return out
			}

			deadline := time.Now().Add(2 * time.Second)
			for time.Now().Before(deadline) && len(derived()) < 2 {
				time.Sleep(10 * time.Millisecond)
			}

			values := derived()
			So(values, ShouldHaveLength, 2)
			// 5400 m over 90 min is 60 m/min, stored canonically in m/s.
			So(values["Ivan Ivanov"], ShouldAlmostEqual, 1.0, 1e-6)
			So(values["Petr Petrov"], ShouldAlmostEqual, 6100.0/5400.0, 1e-6)
		})
	})
}
