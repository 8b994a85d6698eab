package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/clubops/gpscanon/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.MaxFileSizeBytes, convey.ShouldEqual, 10*1024*1024)
			convey.So(cfg.MatchConfirmThreshold, convey.ShouldEqual, 0.80)
			convey.So(cfg.RecalcQueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.RecalcWorkerCount, convey.ShouldEqual, runtime.NumCPU())
		})
	})
}
