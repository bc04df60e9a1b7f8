package metrics

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	rendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watermark_renders_total",
			Help: "Watermark renders by layout and outcome.",
		},
		[]string{"layout", "success"},
	)

	renderSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "watermark_render_seconds",
			Help:    "Time spent decoding, compositing and encoding one image.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"layout"},
	)

	fontFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "watermark_font_fallbacks_total",
			Help: "Renders that used the built-in font because the configured one was unavailable.",
		},
	)

	botUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Telegram updates handled, by kind.",
		},
		[]string{"kind"},
	)

	queueJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watermark_jobs_processed_total",
			Help: "Queued watermark jobs processed, labeled by status.",
		},
		[]string{"status"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			rendersTotal, renderSeconds, fontFallbacks,
			botUpdates, queueJobs,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func ObserveRender(layout string, success bool, d time.Duration) {
	l := norm(layout)
	if l == "" {
		l = "unknown"
	}
	rendersTotal.WithLabelValues(l, strconv.FormatBool(success)).Inc()
	renderSeconds.WithLabelValues(l).Observe(d.Seconds())
}

func IncFontFallback() {
	fontFallbacks.Inc()
}

func IncBotUpdate(kind string) {
	botUpdates.WithLabelValues(norm(kind)).Inc()
}

func IncJob(status string) {
	queueJobs.WithLabelValues(norm(status)).Inc()
}
