package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type StakingMetrics struct {
	operations      *prometheus.CounterVec
	rejections      *prometheus.CounterVec
	poolsConfigured prometheus.Gauge
	principalStaked *prometheus.GaugeVec
}

var (
	stakingOnce     sync.Once
	stakingRegistry *StakingMetrics
)

func Staking() *StakingMetrics {
	stakingOnce.Do(func() {
		stakingRegistry = &StakingMetrics{
			operations: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "staking_operations_total",
				Help: "Count of successful staking operations by method.",
			}, []string{"method"}),
			rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "staking_rejections_total",
				Help: "Count of rejected staking operations by method.",
			}, []string{"method"}),
			poolsConfigured: prometheus.NewGauge(prometheus.GaugeOpts{
				Name: "staking_pools_configured",
				Help: "Number of pools registered since process start.",
			}),
			principalStaked: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: "staking_principal_staked",
				Help: "Principal currently staked per pool.",
			}, []string{"pool"}),
		}
		prometheus.MustRegister(
			stakingRegistry.operations,
			stakingRegistry.rejections,
			stakingRegistry.poolsConfigured,
			stakingRegistry.principalStaked,
		)
	})
	return stakingRegistry
}

// ObserveOperation records the outcome of a staking RPC method.
func (m *StakingMetrics) ObserveOperation(method string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.rejections.WithLabelValues(method).Inc()
		return
	}
	m.operations.WithLabelValues(method).Inc()
}

// PoolConfigured bumps the configured-pool gauge.
func (m *StakingMetrics) PoolConfigured() {
	if m == nil {
		return
	}
	m.poolsConfigured.Inc()
}

// SetPrincipal records the staked principal for a pool label. The value is
// supplied as a float because Prometheus gauges cannot carry big integers
// losslessly; it is an operational signal, not an accounting source.
func (m *StakingMetrics) SetPrincipal(pool string, value float64) {
	if m == nil {
		return
	}
	m.principalStaked.WithLabelValues(pool).Set(value)
}
