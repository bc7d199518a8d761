package api

import (
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grid-clash/internal/view"
)

// Metrics with bounded cardinality - no per-unit or per-client labels.
var (
	turnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "battle_turn_duration_seconds",
		Help:    "Time spent resolving one battle turn and applying it to the view",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05},
	})

	turnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "battle_turns_total",
		Help: "Battle turns resolved",
	})

	boardUnits = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "battle_board_units",
		Help: "Units currently on the board, corpses included",
	})

	flashCells = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "view_flash_cells",
		Help: "Cells currently flashing an attack pattern",
	})

	shakeCells = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "view_shake_cells",
		Help: "Cells currently shaking from hits",
	})

	slideUnits = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "view_slide_units",
		Help: "Units currently carrying a slide offset",
	})

	popupCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "view_popup_count",
		Help: "Floating damage popups currently visible",
	})

	wsConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "websocket_connections_active",
		Help: "Currently active WebSocket render surfaces",
	})

	wsMessagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "websocket_messages_total",
		Help: "State pushes sent over WebSocket",
	})

	requestsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "requests_rejected_total",
		Help: "Requests rejected before reaching a handler",
	}, []string{"reason"}) // bounded: "rate_limit", "invalid", "ws_capacity"
)

// RecordTurn observes one resolved turn.
func RecordTurn(d time.Duration, unitsOnBoard int) {
	turnDuration.Observe(d.Seconds())
	turnsTotal.Inc()
	boardUnits.Set(float64(unitsOnBoard))
}

// UpdatePoolGauges publishes the sizes of the four effect pools.
func UpdatePoolGauges(st view.State) {
	flashCells.Set(float64(len(st.Flash)))
	shakeCells.Set(float64(len(st.Shake)))
	slideUnits.Set(float64(len(st.Slides)))
	popupCount.Set(float64(len(st.Popups)))
}

// UpdateWSConnections publishes the active connection count.
func UpdateWSConnections(n int) {
	wsConnectionsActive.Set(float64(n))
}

// RecordWSMessage counts one state push.
func RecordWSMessage() {
	wsMessagesTotal.Inc()
}

// RecordRejected counts a rejected request by bounded reason.
func RecordRejected(reason string) {
	requestsRejected.WithLabelValues(reason).Inc()
}

// MountObservability attaches /metrics and /debug/pprof to the router.
func MountObservability(r chi.Router) {
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/debug/pprof", func(r chi.Router) {
		r.Get("/", pprof.Index)
		r.Get("/cmdline", pprof.Cmdline)
		r.Get("/profile", pprof.Profile)
		r.Get("/symbol", pprof.Symbol)
		r.Get("/trace", pprof.Trace)
		r.Get("/heap", pprof.Handler("heap").ServeHTTP)
		r.Get("/goroutine", pprof.Handler("goroutine").ServeHTTP)
	})
}
