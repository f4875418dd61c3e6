package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promOraclePrice = promauto.NewGaugeVec(
		prometheus.GaugeOpts{Name: "lst_oracle_price", Help: "Last accepted price per asset"},
		[]string{"asset"},
	)
	promOracleAPY = promauto.NewGaugeVec(
		prometheus.GaugeOpts{Name: "lst_oracle_apy", Help: "Last accepted annualized yield per asset"},
		[]string{"asset"},
	)
	promEmergencyStop = promauto.NewGauge(
		prometheus.GaugeOpts{Name: "lst_oracle_emergency_stop", Help: "1 while the emergency stop is active"},
	)
	promRejectedUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "lst_oracle_rejected_updates_total", Help: "Rejected oracle updates by reason"},
		[]string{"asset", "reason"},
	)
)

func SetPrice(asset string, price float64) {
	promOraclePrice.WithLabelValues(asset).Set(price)
}

func SetAPY(asset string, apy float64) {
	promOracleAPY.WithLabelValues(asset).Set(apy)
}

func SetEmergencyStop(stopped bool) {
	if stopped {
		promEmergencyStop.Set(1)
		return
	}
	promEmergencyStop.Set(0)
}

func IncRejected(asset, reason string) {
	promRejectedUpdates.WithLabelValues(asset, reason).Inc()
}
