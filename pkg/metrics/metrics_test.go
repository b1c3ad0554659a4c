package metrics

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			manager := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
			So(manager, ShouldNotBeNil)
			So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then collectors use the namespace and labels", func() {
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
				manager.goals.WithLabelValues("home").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				var found bool
				for _, f := range families {
					if f.GetName() == "test_namespace_test_subsystem_goals_total" {
						found = true
						So(f.GetMetric()[0].GetLabel(), ShouldNotBeEmpty)
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When options carry empty values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithSubsystem(""),
				WithHistogramBuckets(nil),
				WithCustomLabels(nil),
				WithRefreshInterval(-time.Second),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "matchclock")
				So(manager.subsystem, ShouldEqual, "clock")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording clock activity", func() {
			before := testutil.ToFloat64(globalManager.ticks.WithLabelValues("chronometer"))
			RecordTick("chronometer", 0.02)
			RecordTick("chronometer", 0.03)

			Convey("Then the tick counter moves", func() {
				So(testutil.ToFloat64(globalManager.ticks.WithLabelValues("chronometer")), ShouldEqual, before+2)
			})
		})

		Convey("When recording match activity", func() {
			before := testutil.ToFloat64(globalManager.goals.WithLabelValues("away"))
			RecordGoal("away")
			So(testutil.ToFloat64(globalManager.goals.WithLabelValues("away")), ShouldEqual, before+1)

			So(func() {
				RecordCard("yellow")
				RecordMatchMinute()
				RecordHalfTime()
				RecordMatchFinalized()
				RecordDuplicateEvent()
				RecordModeSwitch("football_match")
				RecordRejectedCommand("configure_timer")
				RecordAlarmTriggered()
				RecordTimerFinished()
			}, ShouldNotPanic)
		})

		Convey("When recording the persistence pipeline", func() {
			So(func() {
				RecordPersistJob("goal", "ok")
				RecordPersistLatency(3.5)
				RecordPersistRetry()
				UpdateQueueSize(3)
				UpdateQueueCapacity(64)
				UpdateQueueUtilization(3.0 / 64)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(1)
				UpdateWorkerActiveCount(1)
				RecordRepositoryQueryLatency(0.4)
				RecordRepositoryUpdateLatency(1.2)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3)
		})

		Convey("When recording HTTP, errors and system data", func() {
			So(func() {
				RecordHTTPRequest("/clock", "GET", "200")
				RecordHTTPRequestDuration("/clock", "GET", "200", 1.5)
				RecordErrorByComponent("worker", "persist")
				RecordErrorByEndpoint("/match/goals", "POST", "conflict")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.3)
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsRegistry(t *testing.T) {
	Convey("Given the custom registry", t, func() {
		RecordHalfTime()
		families, err := GetRegistry().Gather()
		So(err, ShouldBeNil)

		Convey("Then it exposes only matchclock metrics", func() {
			So(families, ShouldNotBeEmpty)
			for _, f := range families {
				So(strings.HasPrefix(f.GetName(), "matchclock_clock_"), ShouldBeTrue)
			}
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for range 100 {
					RecordTick("wall_clock", float64(i))
					RecordPersistJob("card", "ok")
					UpdateQueueSize(i)
				}
			}(i)
		}
		wg.Wait()
		So(testutil.ToFloat64(globalManager.ticks.WithLabelValues("wall_clock")), ShouldBeGreaterThanOrEqualTo, 800)
	})
}
