package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	authAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neuroteach_auth_attempts_total",
		Help: "Total number of login/register attempts.",
	}, []string{"operation", "result"})

	lessonGenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neuroteach_lesson_generations_total",
		Help: "Total number of lesson plan and video script generations.",
	}, []string{"kind", "result"})

	lessonGenerationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neuroteach_lesson_generation_duration_seconds",
		Help:    "Histogram of generation durations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	lessonFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neuroteach_lesson_fetch_total",
		Help: "Total number of remote lesson list fetches.",
	}, []string{"result"})
)

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
