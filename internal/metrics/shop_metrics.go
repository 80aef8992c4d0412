package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// カート操作の種類（ラベル値）
const (
	CartOpAdd    = "add"
	CartOpUpdate = "update"
	CartOpRemove = "remove"
)

// ShopMetrics はカート・注文まわりのPrometheusメトリクス。
type ShopMetrics struct {
	cartOperations *prometheus.CounterVec
	stockReserved  prometheus.Counter
	stockReleased  prometheus.Counter
	ordersPlaced   prometheus.Counter
	orderStates    *prometheus.CounterVec
}

// NewShopMetrics はデフォルトレジストリに登録する。
func NewShopMetrics() *ShopMetrics {
	return NewShopMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewShopMetricsWithRegisterer(registerer prometheus.Registerer) *ShopMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &ShopMetrics{
		cartOperations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "techshop_cart_operations_total",
			Help: "Total number of cart operations by kind",
		}, []string{"op"}),
		stockReserved: registerCounter(registerer, prometheus.CounterOpts{
			Name: "techshop_stock_reserved_units_total",
			Help: "Product units taken out of stock by carts",
		}),
		stockReleased: registerCounter(registerer, prometheus.CounterOpts{
			Name: "techshop_stock_released_units_total",
			Help: "Product units returned to stock by carts and canceled orders",
		}),
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "techshop_orders_placed_total",
			Help: "Total number of orders placed",
		}),
		orderStates: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "techshop_order_state_changes_total",
			Help: "Order state changes by target state",
		}, []string{"state"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func (m *ShopMetrics) RecordCartOperation(op string) {
	m.cartOperations.WithLabelValues(op).Inc()
}

// 在庫の増減を記録（マイナスは予約、プラスは戻し）
func (m *ShopMetrics) RecordStockDelta(delta int64) {
	switch {
	case delta < 0:
		m.stockReserved.Add(float64(-delta))
	case delta > 0:
		m.stockReleased.Add(float64(delta))
	}
}

func (m *ShopMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

func (m *ShopMetrics) RecordOrderState(state string) {
	m.orderStates.WithLabelValues(state).Inc()
}
