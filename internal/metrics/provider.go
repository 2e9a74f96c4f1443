package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebuilder",
			Subsystem: "ai",
			Name:      "requests_total",
			Help:      "Chat completion 调用次数。",
		},
		[]string{"operation", "outcome"},
	)

	imageUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resumebuilder",
			Subsystem: "image",
			Name:      "uploads_total",
			Help:      "头像上传次数。",
		},
		[]string{"provider", "outcome"},
	)
)

// ObserveAIRequest 记录一次 AI 调用的结果。
func ObserveAIRequest(operation string, err error) {
	aiRequestsTotal.WithLabelValues(operation, outcome(err)).Inc()
}

// ObserveImageUpload 记录一次头像上传的结果。
func ObserveImageUpload(provider string, err error) {
	imageUploadsTotal.WithLabelValues(provider, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
