package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/scoutmatch/internal/config"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.StoreDriver, convey.ShouldEqual, config.DriverMemory)
			convey.So(cfg.DefaultK, convey.ShouldEqual, 6)
			convey.So(cfg.DefaultLimit, convey.ShouldEqual, 5)
			convey.So(cfg.StoreTimeout(), convey.ShouldEqual, 2*time.Second)
			convey.So(cfg.BreakerTimeout(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.BreakerInterval(), convey.ShouldEqual, time.Minute)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given invalid configs", t, func() {
		cases := []struct {
			name   string
			mutate func(c *config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"postgres without dsn", func(c *config.Config) { c.StoreDriver = config.DriverPostgres }},
			{"unknown driver", func(c *config.Config) { c.StoreDriver = "redis" }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"zero k", func(c *config.Config) { c.DefaultK = 0 }},
			{"max below default", func(c *config.Config) { c.MaxLimit = 2 }},
			{"zero timeout", func(c *config.Config) { c.StoreTimeoutMS = 0 }},
			{"zero threshold", func(c *config.Config) { c.BreakerFailureThreshold = 0 }},
		}
		for _, tc := range cases {
			convey.Convey("When "+tc.name, func() {
				cfg := config.New()
				tc.mutate(cfg)
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}
	})

	convey.Convey("Given a postgres config with a DSN", t, func() {
		cfg := config.New()
		cfg.StoreDriver = config.DriverPostgres
		cfg.DatabaseURL = "postgres://localhost/scout"
		convey.So(cfg.Validate(), convey.ShouldBeNil)
	})
}
