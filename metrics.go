package eventz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const labelOperator = "operator"

// watermarkRegressions counts watermark candidates rejected for running
// backwards. Regressions are clamped, never fatal.
var watermarkRegressions = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "eventz_assigner",
	Name:      "watermark_regressions_total",
	Help:      "Total number of rejected out-of-order watermark candidates",
}, []string{labelOperator})

// lateRecordsDropped counts records dropped because their window had
// already fired when they arrived.
var lateRecordsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "eventz_window",
	Name:      "late_records_dropped_total",
	Help:      "Total number of late records dropped after their window fired",
}, []string{labelOperator})

// windowsFired counts window firings, which happen at most once per
// (key, window) pair.
var windowsFired = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "eventz_window",
	Name:      "windows_fired_total",
	Help:      "Total number of windows fired by watermark advancement",
}, []string{labelOperator})

// joinedTuples counts tuples emitted by join operators.
var joinedTuples = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "eventz_join",
	Name:      "emitted_total",
	Help:      "Total number of joined tuples emitted",
}, []string{labelOperator})

// sinkErrors counts sink consume failures, which are fatal to their branch
// only.
var sinkErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Subsystem: "eventz_sink",
	Name:      "error_total",
	Help:      "Total number of sink consume errors",
}, []string{labelOperator})
