package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tasksProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "illustration_tasks_processed_total",
			Help: "Total number of illustration tasks processed.",
		},
		[]string{"status"}, // "success", "error_generation", "error_save", "error_unmarshal"
	)
	taskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "illustration_task_duration_seconds",
		Help:    "Duration of illustration task processing.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
	imageAPIErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "illustration_image_api_errors_total",
		Help: "Total number of errors calling the image generation API.",
	})
	saveErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "illustration_save_errors_total",
		Help: "Total number of errors saving generated images.",
	})
)
