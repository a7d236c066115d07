package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/bistro/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverMemory)
			convey.So(cfg.MaxBodyBytes, convey.ShouldEqual, int64(1<<20))
			convey.So(cfg.ConnMaxLifetime(), convey.ShouldEqual, 5*time.Minute)
			convey.So(cfg.GaugeInterval(), convey.ShouldEqual, 10*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the driver is unknown", func() {
			cfg.StoreDriver = "postgres"
			err := cfg.Validate()

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "unknown store_driver")
			})
		})

		convey.Convey("When a SQL driver has no DSN", func() {
			cfg.StoreDriver = config.DriverSQLite
			err := cfg.Validate()

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "store_dsn is required")
			})
		})

		convey.Convey("When sqlite has a DSN", func() {
			cfg.StoreDriver = config.DriverSQLite
			cfg.StoreDSN = "file::memory:?cache=shared"

			convey.Convey("Then it validates", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When mysql has a well formed DSN", func() {
			cfg.StoreDriver = config.DriverMySQL
			cfg.StoreDSN = "app:secret@tcp(db:3306)/bistro?parseTime=true"

			convey.Convey("Then it validates", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When mysql has a malformed DSN", func() {
			cfg.StoreDriver = config.DriverMySQL
			cfg.StoreDSN = "app:secret@tcp(db:3306"

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the body limit is not positive", func() {
			cfg.MaxBodyBytes = 0

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When pool settings are negative", func() {
			cfg.StoreDriver = config.DriverSQLite
			cfg.StoreDSN = "bistro.db"
			cfg.DBMaxOpenConns = -1

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})
	})
}
