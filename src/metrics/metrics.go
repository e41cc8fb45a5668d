// Package metrics provides Prometheus metrics for the billing engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the engine.
type Collector struct {
	// Member ledger metrics
	DueStatuses     *prometheus.CounterVec
	HistoriesBuilt  prometheus.Counter
	OverridesStored *prometheus.CounterVec

	// Payment metrics
	PaymentsRegistered *prometheus.CounterVec
	PaymentRejections  *prometheus.CounterVec

	// Balance metrics
	BalanceTotal *prometheus.GaugeVec

	// Platform invoicing metrics
	InvoicesIssued  prometheus.Counter
	InvoicesSkipped *prometheus.CounterVec
	InvoiceAmount   prometheus.Histogram
}

// New creates a collector registered against reg.
// A nil reg yields working metrics that are not exported anywhere.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		DueStatuses: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ezclub",
				Name:      "due_statuses_total",
				Help:      "Monthly due statuses computed, by status",
			},
			[]string{"status"},
		),
		HistoriesBuilt: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ezclub",
				Name:      "member_histories_built_total",
				Help:      "Member payment histories built",
			},
		),
		OverridesStored: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ezclub",
				Name:      "overrides_stored_total",
				Help:      "Manual overrides set or cleared",
			},
			[]string{"value"},
		),

		PaymentsRegistered: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ezclub",
				Name:      "payments_registered_total",
				Help:      "Payment records registered, by category",
			},
			[]string{"category"},
		),
		PaymentRejections: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ezclub",
				Name:      "payment_rejections_total",
				Help:      "Payment writes rejected at validation",
			},
			[]string{"reason"},
		),

		BalanceTotal: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "ezclub",
				Name:      "balance_total",
				Help:      "Last computed collected balance, by period",
			},
			[]string{"period"},
		),

		InvoicesIssued: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: "ezclub",
				Name:      "platform_invoices_issued_total",
				Help:      "Platform invoices appended to the ledger",
			},
		),
		InvoicesSkipped: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ezclub",
				Name:      "platform_invoices_skipped_total",
				Help:      "Tenants skipped during an invoicing run, by reason",
			},
			[]string{"reason"},
		),
		InvoiceAmount: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "ezclub",
				Name:      "platform_invoice_amount",
				Help:      "Total of each issued platform invoice",
				Buckets:   []float64{50000, 100000, 250000, 500000, 750000, 1000000, 2000000},
			},
		),
	}
}

// RecordDueStatus counts one computed due status
func (c *Collector) RecordDueStatus(status string) {
	if c == nil {
		return
	}
	c.DueStatuses.WithLabelValues(status).Inc()
}

// RecordHistory counts one built member history
func (c *Collector) RecordHistory() {
	if c == nil {
		return
	}
	c.HistoriesBuilt.Inc()
}

// RecordOverride counts an override write; value is empty for clears
func (c *Collector) RecordOverride(value string) {
	if c == nil {
		return
	}
	if value == "" {
		value = "cleared"
	}
	c.OverridesStored.WithLabelValues(value).Inc()
}

// RecordPayment counts a registered payment
func (c *Collector) RecordPayment(category string) {
	if c == nil {
		return
	}
	c.PaymentsRegistered.WithLabelValues(category).Inc()
}

// RecordRejection counts a rejected payment write
func (c *Collector) RecordRejection(reason string) {
	if c == nil {
		return
	}
	c.PaymentRejections.WithLabelValues(reason).Inc()
}

// SetBalance stores the last balance computed for period
func (c *Collector) SetBalance(period string, total float64) {
	if c == nil {
		return
	}
	c.BalanceTotal.WithLabelValues(period).Set(total)
}

// RecordInvoice counts an issued invoice and observes its total
func (c *Collector) RecordInvoice(total float64) {
	if c == nil {
		return
	}
	c.InvoicesIssued.Inc()
	c.InvoiceAmount.Observe(total)
}

// RecordSkippedInvoice counts a tenant left without an invoice
func (c *Collector) RecordSkippedInvoice(reason string) {
	if c == nil {
		return
	}
	c.InvoicesSkipped.WithLabelValues(reason).Inc()
}
