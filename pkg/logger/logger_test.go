package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized twice", func() {
			So(Init(), ShouldBeNil)
			first := Get()
			So(Init(), ShouldBeNil)
			second := Get()

			Convey("Then both calls yield usable loggers", func() {
				So(first, ShouldNotBeNil)
				So(second, ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a JSON logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithFormat("json"), WithCaller(false)), ShouldBeNil)
		So(SetLevelString("info"), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with typed fields", func() {
			Named("clock").Info(ctx, "tick",
				String("mode", "chronometer"),
				Int("elapsed", 61),
				Int64("match_id", 7),
				Bool("running", true),
				Duration("interval", time.Second),
				Error(errors.New("boom")),
			)

			Convey("Then the record carries the group and fields", func() {
				var rec map[string]any
				So(json.Unmarshal(buf.Bytes(), &rec), ShouldBeNil)
				So(rec["msg"], ShouldEqual, "tick")
				group, ok := rec["clock"].(map[string]any)
				So(ok, ShouldBeTrue)
				So(group["mode"], ShouldEqual, "chronometer")
				So(group["elapsed"], ShouldEqual, 61.0)
				So(group["running"], ShouldEqual, true)
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Debug(ctx, "hidden")

			Convey("Then nothing below error is written", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
			So(SetLevelString("info"), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "INFO", " warn ", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("loud"), ShouldNotBeNil)
		So(SetLevelString("info"), ShouldBeNil)
	})
}

func TestNop(t *testing.T) {
	Convey("Nop logger never panics", t, func() {
		l := Nop().Named("x")
		So(func() { l.Error(context.Background(), "ignored", Int("n", 1)) }, ShouldNotPanic)
	})
}
