package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry and custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 10}),
				WithMetricsEnabled(true),
				WithPrometheusRegistry(registry),
			)

			Convey("Then every collector is registered under the namespace", func() {
				So(manager, ShouldNotBeNil)
				manager.podiumUpdates.WithLabelValues("ok").Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_podium_updates_total"], ShouldBeTrue)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording podium updates", func() {
			before := testutil.ToFloat64(globalManager.podiumUpdates.WithLabelValues("ok"))
			RecordPodiumUpdate("ok")
			RecordPodiumUpdate("ok")

			Convey("Then the counter advances", func() {
				So(testutil.ToFloat64(globalManager.podiumUpdates.WithLabelValues("ok")), ShouldEqual, before+2)
			})
		})

		Convey("When recording entry mutations and cache lookups", func() {
			before := testutil.ToFloat64(globalManager.entryMutations.WithLabelValues("create", "ok"))
			RecordEntryMutation("create", "ok")
			hits := testutil.ToFloat64(globalManager.cacheHits.WithLabelValues("overall"))
			RecordCacheHit("overall")
			RecordCacheMiss("overall")

			Convey("Then the labelled counters advance", func() {
				So(testutil.ToFloat64(globalManager.entryMutations.WithLabelValues("create", "ok")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.cacheHits.WithLabelValues("overall")), ShouldEqual, hits+1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateStoreEntries(12)
			UpdateRankedCommunities(4)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.storeEntries), ShouldEqual, float64(12))
				So(testutil.ToFloat64(globalManager.rankedEntities), ShouldEqual, float64(4))
			})
		})

		Convey("When observing histograms", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordLockWait(0.3)
					RecordLockConflict()
					RecordRankingDuration("podium", 1.2)
					RecordStoreLatency("memory", "put", 0.01)
					RecordHTTPRequest("leaderboard", "GET", "200")
					RecordHTTPRequestDuration("leaderboard", "GET", "200", 2)
					RecordErrorByComponent("coordinator", "validation")
					RecordErrorByEndpoint("podium", "PUT", "client_error")
				}, ShouldNotPanic)
			})
		})

		Convey("Then the registry is exposed", func() {
			So(GetRegistry(), ShouldNotBeNil)
		})
	})
}
