package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with defaults", func() {
				So(manager, ShouldNotBeNil)
				So(manager.Enabled(), ShouldBeTrue)
				So(manager.RefreshInterval(), ShouldEqual, defaultRefreshInterval)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithMetricPrefix("pre"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(false),
				WithRefreshInterval(3*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.restaurantsCreated.Inc()

			Convey("Then names carry namespace, subsystem and prefix", func() {
				So(manager.Enabled(), ShouldBeFalse)
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)

				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_unit_pre_created_total"], ShouldBeTrue)
			})
		})
	})
}

func TestMetricsCustomLabels(t *testing.T) {
	Convey("Given labels supplied by several options", t, func() {
		registry := prometheus.NewRegistry()
		labels := map[string]string{"env": "test"}
		manager := NewManager(
			WithCustomLabels(labels),
			WithReplica("a"),
			WithPrometheusRegistry(registry),
		)
		labels["env"] = "mutated"
		manager.restaurantsCreated.Inc()

		Convey("Then they are merged and copied onto every collector", func() {
			families, err := registry.Gather()
			So(err, ShouldBeNil)

			got := map[string]string{}
			for _, f := range families {
				if f.GetName() != "bistro_restaurants_created_total" {
					continue
				}
				for _, lp := range f.GetMetric()[0].GetLabel() {
					got[lp.GetName()] = lp.GetValue()
				}
			}
			So(got, ShouldResemble, map[string]string{"env": "test", "replica": "a"})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording resource lifecycle events", func() {
			before := testutil.ToFloat64(globalManager.restaurantsCreated)
			RecordRestaurantCreated()
			RecordRestaurantCreated()

			Convey("Then the created counter grows", func() {
				So(testutil.ToFloat64(globalManager.restaurantsCreated), ShouldEqual, before+2)
			})
		})

		Convey("When recording updates by mode", func() {
			before := testutil.ToFloat64(globalManager.restaurantsUpdated.WithLabelValues("partial"))
			RecordRestaurantUpdated("partial")

			Convey("Then only that mode increments", func() {
				So(testutil.ToFloat64(globalManager.restaurantsUpdated.WithLabelValues("partial")), ShouldEqual, before+1)
			})
		})

		Convey("When setting the records gauge", func() {
			UpdateRestaurantsTotal(42)

			Convey("Then the gauge reflects it", func() {
				So(testutil.ToFloat64(globalManager.restaurantsTotal), ShouldEqual, 42)
			})
		})

		Convey("When recording validation failures", func() {
			before := testutil.ToFloat64(globalManager.validationFailures.WithLabelValues("name"))
			RecordValidationFailure("name")

			Convey("Then the field counter increments", func() {
				So(testutil.ToFloat64(globalManager.validationFailures.WithLabelValues("name")), ShouldEqual, before+1)
			})
		})

		Convey("When recording repository operations", func() {
			before := testutil.ToFloat64(globalManager.repositoryOpErrors.WithLabelValues("memory", "delete"))
			RecordRepositoryOperation("memory", "delete", 0.5, false)
			RecordRepositoryOperation("memory", "delete", 0.7, true)

			Convey("Then only failed operations count as errors", func() {
				So(testutil.ToFloat64(globalManager.repositoryOpErrors.WithLabelValues("memory", "delete")), ShouldEqual, before+1)
			})
		})

		Convey("When recording HTTP, error and system metrics", func() {
			So(func() {
				RecordHTTPRequest("restaurants", "GET", "200")
				RecordHTTPRequestDuration("restaurants", "GET", "200", 3.0)
				RecordRestaurantDeleted()
				RecordErrorByComponent("repository", "not_found")
				RecordErrorByType("client_error", "medium")
				RecordErrorByEndpoint("restaurant", "GET", "not_found")
				RecordErrorLatency("http", "not_found", 1.0)
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(10)
				RecordSystemGCPauseTime(0.2)
			}, ShouldNotPanic)
		})

		Convey("Then the custom registry can be gathered", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}
