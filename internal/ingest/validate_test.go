package ingest

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func parseCSVString(t *testing.T, csv string) *ParsedFile {
	t.Helper()
	parsed, err := NewParser().Parse(context.Background(), []byte(csv), "session.csv")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return parsed
}

func TestValidate(t *testing.T) {
	Convey("Given parsed vendor files", t, func() {
		Convey("When one cell is not numeric", func() {
			parsed := parseCSVString(t, "Player,Total Distance\nIvanov,5000\nPetrov,fast\n")
			report := Validate(parsed)

			Convey("Then exactly that cell should error", func() {
				So(report.IsValid, ShouldBeFalse)
				So(len(report.Errors), ShouldEqual, 1)
				So(report.Errors[0].Kind, ShouldEqual, IssueInvalidData)
				So(report.Errors[0].Row, ShouldEqual, 2)
				So(report.Errors[0].Column, ShouldEqual, "Total Distance")
				So(report.Errors[0].Value, ShouldEqual, "fast")
			})
		})

		Convey("When the file has no data rows", func() {
			report := Validate(&ParsedFile{Headers: []string{"Player"}})

			Convey("Then only the empty-file error should be reported", func() {
				So(report.IsValid, ShouldBeFalse)
				So(len(report.Errors), ShouldEqual, 1)
				So(report.Errors[0].Kind, ShouldEqual, IssueEmptyFile)
			})
		})

		Convey("When no player column exists", func() {
			parsed := parseCSVString(t, "Distance,Speed\n5000,8\n")
			report := Validate(parsed)

			Convey("Then missing-column and no-players errors should be reported", func() {
				So(report.IsValid, ShouldBeFalse)
				kinds := make(map[string]bool)
				for _, issue := range report.Errors {
					kinds[issue.Kind] = true
				}
				So(kinds[IssueMissingColumn], ShouldBeTrue)
				So(kinds[IssueNoPlayers], ShouldBeTrue)
			})
		})

		Convey("When cells are blank", func() {
			parsed := parseCSVString(t, "Player,Total Distance\nIvanov,\n")
			report := Validate(parsed)

			Convey("Then a warning is raised but the file stays valid", func() {
				So(report.IsValid, ShouldBeTrue)
				So(len(report.Warnings), ShouldEqual, 1)
				So(report.Warnings[0].Row, ShouldEqual, 1)
			})
		})

		Convey("When service rows are present", func() {
			parsed := parseCSVString(t, "Player,Total Distance\nIvanov,5000\nAverage,not-a-number\nИтого,99999999\n-,\n")
			report := Validate(parsed)

			Convey("Then service rows should be skipped by cell checks", func() {
				So(report.IsValid, ShouldBeTrue)
				So(len(report.Errors), ShouldEqual, 0)
				So(len(report.Warnings), ShouldEqual, 0)
			})
		})

		Convey("When positions are checked", func() {
			Convey("Then valid codes and numbers pass", func() {
				parsed := parseCSVString(t, "Player,Position\nIvanov,GK\nPetrov,ЦЗ\nSidorov,7\n")
				report := Validate(parsed)
				So(report.IsValid, ShouldBeTrue)
			})

			Convey("Then out-of-range numbers and unknown codes fail", func() {
				parsed := parseCSVString(t, "Player,Position\nIvanov,12\nPetrov,XX\n")
				report := Validate(parsed)
				So(report.IsValid, ShouldBeFalse)
				So(len(report.Errors), ShouldEqual, 2)
			})
		})

		Convey("When time columns are checked", func() {
			Convey("Then clock strings and plain seconds pass", func() {
				parsed := parseCSVString(t, "Player,Время\nIvanov,01:30:00\nPetrov,5400\n")
				report := Validate(parsed)
				So(report.IsValid, ShouldBeTrue)
			})

			Convey("Then overflowing minutes fail", func() {
				parsed := parseCSVString(t, "Player,Время\nIvanov,1:75\n")
				report := Validate(parsed)
				So(report.IsValid, ShouldBeFalse)
			})
		})
	})
}

func TestRangeWarnings(t *testing.T) {
	Convey("Given numeric cell values", t, func() {
		Convey("When heart rate sits on the boundaries", func() {
			cases := map[string]int{
				"Player,Avg HR\nIvanov,29\n":  1,
				"Player,Avg HR\nIvanov,30\n":  0,
				"Player,Avg HR\nIvanov,220\n": 0,
				"Player,Avg HR\nIvanov,221\n": 1,
			}
			for csv, wantWarnings := range cases {
				report := Validate(parseCSVString(t, csv))
				So(report.IsValid, ShouldBeTrue)
				So(len(report.Warnings), ShouldEqual, wantWarnings)
			}
		})

		Convey("When distance exceeds 50km", func() {
			report := Validate(parseCSVString(t, "Player,Total Distance\nIvanov,50001\n"))
			So(len(report.Warnings), ShouldEqual, 1)
		})

		Convey("When speed is negative", func() {
			report := Validate(parseCSVString(t, "Player,Max Speed\nIvanov,-1\n"))
			So(len(report.Warnings), ShouldEqual, 1)
		})

		Convey("When acceleration magnitude exceeds the bound", func() {
			report := Validate(parseCSVString(t, "Player,Max Acceleration\nIvanov,-16\n"))
			So(len(report.Warnings), ShouldEqual, 1)
		})

		Convey("When a percentage leaves 0-100", func() {
			report := Validate(parseCSVString(t, "Player,HSR Percent\nIvanov,120\n"))
			So(len(report.Warnings), ShouldEqual, 1)
		})

		Convey("When counts are plausible no warning is raised", func() {
			report := Validate(parseCSVString(t, "Player,Sprints Count\nIvanov,14\n"))
			So(len(report.Warnings), ShouldEqual, 0)
		})
	})
}
