package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/stagelink/wdmxrx/transport"
)

// registerMetrics exports the receiver's diagnostic counters to the default
// Prometheus registry. The counters are read live from the receiver's
// atomics, so the collectors carry no state of their own.
func registerMetrics(r *transport.Receiver) {
	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "wdmx_rx_frames_total",
		Help: "Valid frames received since lock.",
	}, func() float64 { return float64(r.RxCount()) })

	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "wdmx_rx_invalid_total",
		Help: "Frames dropped for an unrecognised magic byte.",
	}, func() float64 { return float64(r.RxInvalid()) })

	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "wdmx_rx_overruns_total",
		Help: "Radio FIFO-full events; each implies at least one lost frame.",
	}, func() float64 { return float64(r.RxOverruns()) })

	promauto.NewCounterFunc(prometheus.CounterOpts{
		Name: "wdmx_rx_sequence_gaps_total",
		Help: "Gaps observed in the payload ID sequence.",
	}, func() float64 { return float64(r.RxSeqErrors()) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "wdmx_locked",
		Help: "1 once the receiver has locked onto a transmitter.",
	}, func() float64 {
		if r.Locked() {
			return 1
		}
		return 0
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "wdmx_rf_channel",
		Help: "RF channel of the locked transmitter.",
	}, func() float64 { return float64(r.Channel()) })

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "wdmx_last_rx_timestamp_seconds",
		Help: "Unix time of the last valid frame, 0 before the first.",
	}, func() float64 {
		t := r.LastRx()
		if t.IsZero() {
			return 0
		}
		return float64(t.UnixMilli()) / 1000
	})
}
