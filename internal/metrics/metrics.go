package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the engine's Prometheus instruments.
type Metrics struct {
	TradesExecuted  prometheus.Counter
	TradeRejections *prometheus.CounterVec
	Liquidations    prometheus.Counter
	Bankruptcies    prometheus.Counter
	ExecDuration    prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TradesExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csb_trades_executed_total",
			Help: "Committed trades.",
		}),
		TradeRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "csb_trade_rejections_total",
			Help: "Rejected orders by error kind.",
		}, []string{"kind"}),
		Liquidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csb_liquidations_total",
			Help: "Forced liquidations.",
		}),
		Bankruptcies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "csb_bankruptcies_total",
			Help: "Accounts flipped bankrupt by liquidation.",
		}),
		ExecDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "csb_trade_execution_seconds",
			Help:    "Wall time of ExecuteTrade including the transaction.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.TradesExecuted, m.TradeRejections, m.Liquidations, m.Bankruptcies, m.ExecDuration)
	return m
}
