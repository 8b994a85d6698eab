package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test-namespace"),
				WithSubsystem("test-subsystem"),
				WithMetricPrefix("test-prefix"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(10*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then it should be created successfully", func() {
				So(manager, ShouldNotBeNil)
			})
		})

		Convey("When creating with empty or zero option values", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should apply and creation should succeed", func() {
				So(manager, ShouldNotBeNil)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given metrics recording", t, func() {
		Convey("When recording ingestion metrics", func() {
			Convey("Then it should record parsed files and durations", func() {
				So(func() {
					RecordFileParsed("csv", "ok")
					RecordFileParsed("xlsx", "error")
					RecordParseDuration("csv", 12.5)
				}, ShouldNotPanic)
			})

			Convey("And it should record validation outcomes", func() {
				So(func() {
					RecordRowsValidated(25)
					RecordValidationError("cell")
					RecordValidationWarning("range")
					RecordServiceRowSkipped()
				}, ShouldNotPanic)
			})

			Convey("And it should record report outcomes", func() {
				So(func() {
					RecordReportIngested("processed")
					RecordReportIngested("failed")
					RecordReportDataRows(120)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording conversion metrics", func() {
			So(func() {
				RecordConversion("distance")
				RecordConversion("speed")
				RecordConversionError()
			}, ShouldNotPanic)
		})

		Convey("When recording profile metrics", func() {
			So(func() {
				RecordProfileSaved("created")
				RecordProfileSaved("rejected")
				RecordGuardViolation()
				RecordDuplicateKey()
			}, ShouldNotPanic)
		})

		Convey("When recording player match metrics", func() {
			So(func() {
				RecordPlayerMatch("confirm", "saved")
				RecordPlayerMatch("manual", "fuzzy")
			}, ShouldNotPanic)
		})

		Convey("When recording queue and worker metrics", func() {
			So(func() {
				UpdateQueueSize(10)
				UpdateQueueCapacity(1000)
				UpdateQueueUtilization(0.01)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				UpdateWorkerActiveCount(2)
				RecordWorkerProcessingLatency(50.0)
				RecordWorkerError()
			}, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() {
				RecordHTTPRequest("/parse", "POST", "200")
				RecordHTTPRequestDuration("/profiles", "PUT", "409", 8.0)
			}, ShouldNotPanic)
		})

		Convey("When recording repository and system metrics", func() {
			So(func() {
				RecordRepositoryWriteLatency(5.0)
				RecordRepositoryQueryLatency(2.0)
				RecordErrorByComponent("repository", "tx_conflict")
				UpdateSystemMemoryUsage(1024 * 1024)
				UpdateSystemGoroutineCount(42)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsEdgeCases(t *testing.T) {
	Convey("Given metrics edge cases", t, func() {
		Convey("When recording with zero, negative, and large values", func() {
			So(func() {
				UpdateQueueSize(0)
				UpdateQueueSize(-5)
				UpdateQueueSize(1000000)
				RecordRowsValidated(0)
				RecordParseDuration("json", 0.0)
				RecordParseDuration("xml", 30000.0)
			}, ShouldNotPanic)
		})

		Convey("When recording with empty and awkward label values", func() {
			So(func() {
				RecordHTTPRequest("", "", "200")
				RecordFileParsed("", "")
				RecordErrorByComponent("component-with-dash", "error_with_underscore")
				RecordHTTPRequest("/parse?debug=1", "POST", "400")
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent metric recording", t, func() {
		done := make(chan bool, 10)

		for i := 0; i < 10; i++ {
			go func() {
				for j := 0; j < 100; j++ {
					RecordConversion("speed")
					UpdateQueueSize(j)
					RecordRowsValidated(1)
					RecordHTTPRequest("/convert", "POST", "200")
				}
				done <- true
			}()
		}

		for i := 0; i < 10; i++ {
			<-done
		}

		Convey("Then it should handle concurrent access without panics", func() {
			So(true, ShouldBeTrue)
		})
	})
}
