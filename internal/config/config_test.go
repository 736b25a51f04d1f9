package config_test

import (
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/podium/internal/config"
	"github.com/okian/podium/internal/domain/model"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.PointsGold, convey.ShouldEqual, 10)
			convey.So(cfg.PointsSilver, convey.ShouldEqual, 7)
			convey.So(cfg.PointsBronze, convey.ShouldEqual, 5)
			convey.So(cfg.CacheEnabled, convey.ShouldBeFalse)
			convey.So(cfg.LockWait(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.RequestTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.ShutdownTimeout(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the scheme follows the points", func() {
			cfg.PointsGold = 3
			scheme := cfg.Scheme()
			convey.So(scheme.Points(model.Gold()), convey.ShouldEqual, 3)
			convey.So(scheme.Points(model.Silver()), convey.ShouldEqual, 7)
		})
	})
}
