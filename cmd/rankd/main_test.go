package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestStart(t *testing.T) {
	convey.Convey("Given the rankd entrypoint", t, func() {
		var stderr bytes.Buffer

		convey.Convey("When the config holds an unknown delete policy", func() {
			_ = os.Setenv("RANKD_TIERS__DELETE_POLICY", "cascade")
			defer func() { _ = os.Unsetenv("RANKD_TIERS__DELETE_POLICY") }()
			code := start(context.Background(), "", &stderr)

			convey.Convey("Then it exits 1 and says why", func() {
				convey.So(code, convey.ShouldEqual, 1)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "rankd stopped")
				convey.So(stderr.String(), convey.ShouldContainSubstring, "tiers.delete_policy")
				convey.So(stderr.String(), convey.ShouldContainSubstring, "cascade")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			missing := filepath.Join(t.TempDir(), "missing.yaml")
			code := start(context.Background(), missing, &stderr)

			convey.Convey("Then the load error is reported", func() {
				convey.So(code, convey.ShouldEqual, 1)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "missing.yaml")
			})
		})

		convey.Convey("When the log level is unknown", func() {
			_ = os.Setenv("RANKD_LOG_LEVEL", "loud")
			defer func() { _ = os.Unsetenv("RANKD_LOG_LEVEL") }()
			code := start(context.Background(), "", &stderr)

			convey.Convey("Then the level error is reported", func() {
				convey.So(code, convey.ShouldEqual, 1)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "unknown log level")
			})
		})

		convey.Convey("When the context is already done", func() {
			_ = os.Setenv("RANKD_ADDR", "127.0.0.1:0")
			_ = os.Setenv("RANKD_DB_PATH", filepath.Join(t.TempDir(), "rankd.db"))
			defer func() {
				_ = os.Unsetenv("RANKD_ADDR")
				_ = os.Unsetenv("RANKD_DB_PATH")
			}()
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			code := start(ctx, "", &stderr)

			convey.Convey("Then it shuts down cleanly", func() {
				convey.So(code, convey.ShouldEqual, 0)
				convey.So(stderr.String(), convey.ShouldContainSubstring, "shutting down")
			})
		})
	})
}
