package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "convertd_conversions_total",
		Help: "Completed conversions by kind (local or batch) and output format.",
	}, []string{"kind", "format"})

	conversionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "convertd_conversion_errors_total",
		Help: "Failed conversions by kind (local or batch).",
	}, []string{"kind"})
)
