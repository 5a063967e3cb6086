// Path: internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
)

var (
	Fetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogviewer_fetches_total",
		Help: "Catalog page fetches by outcome",
	}, []string{"outcome"})
	Actions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogviewer_actions_total",
		Help: "User actions applied to the viewer state",
	}, []string{"action"})
	Renders = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalogviewer_renders_total",
		Help: "The total number of rendered views",
	})
	VisibleProducts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalogviewer_visible_products",
		Help: "Products visible in the last rendered view",
	})
	Favorites = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalogviewer_favorites",
		Help: "Products currently marked favorite",
	})
)
