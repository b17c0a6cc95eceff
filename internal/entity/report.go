package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinancialReport contains all computed financial metrics for a reporting period.
type FinancialReport struct {
	Period TimeRange

	// Aggregates
	GrossRevenue  MetricWithComparison
	NetRevenue    MetricWithComparison
	TotalRefunded MetricWithComparison
	TotalDiscount MetricWithComparison
	COGS          MetricWithComparison
	Profit        MetricWithComparison
	MarginPct     MetricWithComparison
	OrdersCount   MetricWithComparison
	AvgOrderValue MetricWithComparison

	// DeliveryRate is delivered / total orders * 100, fixed to two decimals.
	DeliveryRate string

	// Order status funnel (includes cancelled)
	OrdersByStatus []StatusCount

	// Time series for charts, one point per day over the period
	RevenueByDay  []TimeSeriesPoint
	COGSByDay     []TimeSeriesPoint
	ProfitByDay   []TimeSeriesPoint
	MarginByDay   []TimeSeriesPoint
	OrdersByDay   []TimeSeriesPoint
	RefundsByDay  []TimeSeriesPoint
	DiscountByDay []TimeSeriesPoint
	ShippingByDay []TimeSeriesPoint

	MarginTrend MarginTrend

	YearOverYear   *ComparisonWindow
	MonthOverMonth *ComparisonWindow
}

// ComparisonWindow holds the shifted-period aggregates for YoY / MoM deltas.
type ComparisonWindow struct {
	Period      TimeRange
	NetRevenue  decimal.Decimal
	Profit      decimal.Decimal
	MarginPct   decimal.Decimal
	OrdersCount int
}

// MarginTrend splits the period at its midpoint and compares half margins.
type MarginTrend struct {
	FirstHalfMarginPct  decimal.Decimal
	SecondHalfMarginPct decimal.Decimal
	Direction           string // up, down, flat
}

type TimeRange struct {
	From time.Time
	To   time.Time
}

type MetricWithComparison struct {
	Value        decimal.Decimal
	CompareValue *decimal.Decimal
	ChangePct    *float64
}

type StatusCount struct {
	StatusName string
	Count      int
}

type TimeSeriesPoint struct {
	Date  time.Time
	Value decimal.Decimal
	Count int
}

// OrderSummary is the flattened order view the report aggregator consumes.
// Loaded once per request; the aggregator filters it per window in memory.
type OrderSummary struct {
	ID             int
	Placed         time.Time
	Status         OrderStatusName
	TotalPrice     decimal.Decimal
	ShippingCost   decimal.Decimal
	RefundedAmount decimal.Decimal
	DiscountAmount decimal.Decimal
	Items          []OrderItemSummary
}

type OrderItemSummary struct {
	ProductID    int
	ProductPrice decimal.Decimal
	ProductCost  decimal.NullDecimal
	Quantity     int
}
