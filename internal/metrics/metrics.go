package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_seconds",
			Help:    "Duration of a full pipeline run per employer.",
			Buckets: []float64{30, 60, 300, 900, 1800, 3600},
		},
		[]string{"employer"},
	)
	StageDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "pipeline_stage_duration_seconds",
			Help:       "Duration of each stage in a pipeline run.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"stage"},
	)
	JobsFoundCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_jobs_found_total",
			Help: "Total number of raw listings fetched from sources.",
		},
	)
	ClassificationsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_classifications_total",
			Help: "Total number of jobs classified and activated.",
		},
	)
	ClassificationsFailedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_classifications_failed_total",
			Help: "Total number of jobs left pending after a failed classification.",
		},
	)
	ClassificationCost = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_classification_cost_usd_total",
			Help: "Estimated cumulative classification spend.",
		},
	)
)

func StartMetricsServer(addr string) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(RunDuration)
	prometheus.MustRegister(StageDuration)
	prometheus.MustRegister(JobsFoundCounter)
	prometheus.MustRegister(ClassificationsCounter)
	prometheus.MustRegister(ClassificationsFailedCounter)
	prometheus.MustRegister(ClassificationCost)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(addr, nil))
	}()
}
