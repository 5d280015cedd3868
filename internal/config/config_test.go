package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/courtside/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {
	Convey("Given no file and no environment overrides", t, func() {
		cfg, err := config.Load()

		Convey("Then the defaults apply", func() {
			So(err, ShouldBeNil)
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.RedisURL, ShouldEqual, "")
			So(cfg.PostgresDSN, ShouldEqual, "")
			So(cfg.CurrentSeason, ShouldEqual, "2024/25")
			So(cfg.SyncEnabled, ShouldBeTrue)
			So(cfg.SyncIntervalMS, ShouldEqual, 60_000)
			So(cfg.SnapshotTTLMin, ShouldEqual, 240)
			So(cfg.RosterRefreshHours, ShouldEqual, 24)
			So(cfg.FlushOnCompletion, ShouldBeTrue)
		})
	})
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COURTSIDE_ADDR", ":9090")
	t.Setenv("COURTSIDE_CURRENT_SEASON", "2025/26")
	t.Setenv("COURTSIDE_SYNC_INTERVAL_MS", "5000")
	t.Setenv("COURTSIDE_REDIS_URL", "redis://localhost:6379/0")

	Convey("Given environment overrides", t, func() {
		cfg, err := config.Load()

		Convey("Then they win over the defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.CurrentSeason, ShouldEqual, "2025/26")
			So(cfg.SyncIntervalMS, ShouldEqual, 5000)
			So(cfg.RedisURL, ShouldEqual, "redis://localhost:6379/0")

			Convey("And untouched fields keep their defaults", func() {
				So(cfg.SnapshotTTLMin, ShouldEqual, 240)
			})
		})
	})
}

func TestFileLayer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("addr: \":7070\"\nsync_interval_ms: 1000\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COURTSIDE_CONFIG", path)
	t.Setenv("COURTSIDE_ADDR", ":9090")

	Convey("Given a config file and an env override of the same key", t, func() {
		cfg, err := config.Load()

		Convey("Then env beats file beats defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":9090")
			So(cfg.SyncIntervalMS, ShouldEqual, 1000)
			So(cfg.CurrentSeason, ShouldEqual, "2024/25")
		})
	})
}

func TestValidation(t *testing.T) {
	Convey("Given an invalid sync interval", t, func() {
		t.Setenv("COURTSIDE_SYNC_INTERVAL_MS", "0")

		_, err := config.Load()

		Convey("Then loading fails with the invalid-config kind", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("Given a missing config file", t, func() {
		t.Setenv("COURTSIDE_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

		_, err := config.Load()

		Convey("Then loading fails with the load kind", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}
