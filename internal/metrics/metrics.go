package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casedesk_http_requests_total",
		Help: "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "casedesk_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ChatMessages = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "casedesk_chat_messages",
		Help: "Messages currently held in the chat store",
	})

	// Labels: "ok", "too_large", "invalid", "error"
	Uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casedesk_uploads_total",
		Help: "Upload attempts by result",
	}, []string{"result"})

	UploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casedesk_upload_bytes_total",
		Help: "Bytes written by successful uploads",
	})

	// Labels: "ok", "error", "dropped"
	ResponderReplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casedesk_responder_replies_total",
		Help: "Responder reply attempts by result",
	}, []string{"result"})
)
