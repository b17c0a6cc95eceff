// Package analytics computes financial reports from flattened order data.
// The caller loads orders once for the widest window it needs; everything
// here is pure in-memory aggregation so the same slice can be filtered
// repeatedly for the current period and its comparison windows.
package analytics

import (
	"fmt"
	"time"

	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
	"github.com/shopspring/decimal"
)

// DefaultCostRatio estimates COGS for order items snapshotted without a cost:
// cost is assumed to be this fraction of the sale price.
var DefaultCostRatio = decimal.NewFromFloat(0.4)

const dateLayout = "2006-01-02"

// ParsePeriod parses from/to date strings into an inclusive reporting range.
// The to date is extended to the end of its day so a single-day period covers
// the full day.
func ParsePeriod(fromStr, toStr string) (entity.TimeRange, error) {
	from, err := time.ParseInLocation(dateLayout, fromStr, time.UTC)
	if err != nil {
		return entity.TimeRange{}, fmt.Errorf("%w: bad from date %q", gerr.ErrInvalidPeriod, fromStr)
	}
	to, err := time.ParseInLocation(dateLayout, toStr, time.UTC)
	if err != nil {
		return entity.TimeRange{}, fmt.Errorf("%w: bad to date %q", gerr.ErrInvalidPeriod, toStr)
	}
	if from.After(to) {
		return entity.TimeRange{}, fmt.Errorf("%w: from %s is after to %s", gerr.ErrInvalidPeriod, fromStr, toStr)
	}
	to = time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
	return entity.TimeRange{From: from, To: to}, nil
}

// windowAgg holds the aggregates of one reporting window. Cancelled orders
// are excluded from all money metrics.
type windowAgg struct {
	gross       decimal.Decimal
	refunds     decimal.Decimal
	discounts   decimal.Decimal
	net         decimal.Decimal
	cogs        decimal.Decimal
	profit      decimal.Decimal
	marginPct   decimal.Decimal
	ordersCount int
}

// itemCOGS returns the cost of goods for one order item. Items without a
// snapshotted cost fall back to price * DefaultCostRatio.
func itemCOGS(it entity.OrderItemSummary) decimal.Decimal {
	cost := it.ProductPrice.Mul(DefaultCostRatio)
	if it.ProductCost.Valid {
		cost = it.ProductCost.Decimal
	}
	return cost.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func filterWindow(orders []entity.OrderSummary, from, to time.Time) []entity.OrderSummary {
	var out []entity.OrderSummary
	for _, o := range orders {
		if !o.Placed.Before(from) && !o.Placed.After(to) {
			out = append(out, o)
		}
	}
	return out
}

func aggregate(orders []entity.OrderSummary) windowAgg {
	agg := windowAgg{}
	for _, o := range orders {
		if o.Status == entity.Cancelled {
			continue
		}
		agg.ordersCount++
		agg.gross = agg.gross.Add(o.TotalPrice)
		agg.refunds = agg.refunds.Add(o.RefundedAmount)
		agg.discounts = agg.discounts.Add(o.DiscountAmount)
		for _, it := range o.Items {
			agg.cogs = agg.cogs.Add(itemCOGS(it))
		}
	}
	agg.net = agg.gross.Sub(agg.refunds).Sub(agg.discounts)
	// Net revenue never reported below zero even if refunds exceed sales.
	if agg.net.IsNegative() {
		agg.net = decimal.Zero
	}
	agg.profit = agg.net.Sub(agg.cogs)
	if !agg.net.IsZero() {
		agg.marginPct = agg.profit.Div(agg.net).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return agg
}

// BuildReport computes the full financial report for the period. The orders
// slice must cover at least [period.From - 1 year, period.To] for the
// comparison windows to be meaningful.
func BuildReport(orders []entity.OrderSummary, period entity.TimeRange) *entity.FinancialReport {
	current := filterWindow(orders, period.From, period.To)
	cur := aggregate(current)

	yoyRange := entity.TimeRange{From: period.From.AddDate(-1, 0, 0), To: period.To.AddDate(-1, 0, 0)}
	momRange := entity.TimeRange{From: period.From.AddDate(0, -1, 0), To: period.To.AddDate(0, -1, 0)}
	yoy := aggregate(filterWindow(orders, yoyRange.From, yoyRange.To))
	mom := aggregate(filterWindow(orders, momRange.From, momRange.To))

	avgOrderValue := decimal.Zero
	if cur.ordersCount > 0 {
		avgOrderValue = cur.net.Div(decimal.NewFromInt(int64(cur.ordersCount))).Round(2)
	}
	prevAvg := decimal.Zero
	if mom.ordersCount > 0 {
		prevAvg = mom.net.Div(decimal.NewFromInt(int64(mom.ordersCount))).Round(2)
	}

	report := &entity.FinancialReport{
		Period:         period,
		GrossRevenue:   compare(cur.gross, mom.gross),
		NetRevenue:     compare(cur.net, mom.net),
		TotalRefunded:  compare(cur.refunds, mom.refunds),
		TotalDiscount:  compare(cur.discounts, mom.discounts),
		COGS:           compare(cur.cogs, mom.cogs),
		Profit:         compare(cur.profit, mom.profit),
		MarginPct:      compare(cur.marginPct, mom.marginPct),
		OrdersCount:    compareInt(cur.ordersCount, mom.ordersCount),
		AvgOrderValue:  compare(avgOrderValue, prevAvg),
		DeliveryRate:   deliveryRate(current),
		OrdersByStatus: ordersByStatus(current),
		MarginTrend:    marginTrend(current, period),
		YearOverYear: &entity.ComparisonWindow{
			Period:      yoyRange,
			NetRevenue:  yoy.net,
			Profit:      yoy.profit,
			MarginPct:   yoy.marginPct,
			OrdersCount: yoy.ordersCount,
		},
		MonthOverMonth: &entity.ComparisonWindow{
			Period:      momRange,
			NetRevenue:  mom.net,
			Profit:      mom.profit,
			MarginPct:   mom.marginPct,
			OrdersCount: mom.ordersCount,
		},
	}

	fillDailySeries(report, current, period)
	return report
}

func compare(current, previous decimal.Decimal) entity.MetricWithComparison {
	return entity.MetricWithComparison{
		Value:        current,
		CompareValue: ptr(previous),
		ChangePct:    changePct(current, previous),
	}
}

func compareInt(current, previous int) entity.MetricWithComparison {
	return entity.MetricWithComparison{
		Value:        decimal.NewFromInt(int64(current)),
		CompareValue: ptr(decimal.NewFromInt(int64(previous))),
		ChangePct:    changePctInt(current, previous),
	}
}

// deliveryRate is delivered orders over all non-cancelled orders, in percent.
func deliveryRate(orders []entity.OrderSummary) string {
	total := 0
	delivered := 0
	for _, o := range orders {
		if o.Status == entity.Cancelled {
			continue
		}
		total++
		if o.Status == entity.Delivered {
			delivered++
		}
	}
	if total == 0 {
		return "0.00"
	}
	rate := decimal.NewFromInt(int64(delivered)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(decimal.NewFromInt(100))
	return rate.StringFixed(2)
}

// statusFunnelOrder is the display order of the status funnel.
var statusFunnelOrder = []entity.OrderStatusName{
	entity.Pending,
	entity.Processing,
	entity.Shipped,
	entity.InTransit,
	entity.OutForDelivery,
	entity.Delivered,
	entity.Cancelled,
}

func ordersByStatus(orders []entity.OrderSummary) []entity.StatusCount {
	counts := make(map[entity.OrderStatusName]int, len(statusFunnelOrder))
	for _, o := range orders {
		counts[o.Status]++
	}
	out := make([]entity.StatusCount, 0, len(statusFunnelOrder))
	for _, s := range statusFunnelOrder {
		out = append(out, entity.StatusCount{StatusName: string(s), Count: counts[s]})
	}
	return out
}

// marginTrend splits the period at its midpoint and compares the margin of
// both halves.
func marginTrend(orders []entity.OrderSummary, period entity.TimeRange) entity.MarginTrend {
	mid := period.From.Add(period.To.Sub(period.From) / 2)
	first := aggregate(filterWindow(orders, period.From, mid))
	second := aggregate(filterWindow(orders, mid.Add(time.Nanosecond), period.To))

	direction := "flat"
	switch second.marginPct.Cmp(first.marginPct) {
	case 1:
		direction = "up"
	case -1:
		direction = "down"
	}
	return entity.MarginTrend{
		FirstHalfMarginPct:  first.marginPct,
		SecondHalfMarginPct: second.marginPct,
		Direction:           direction,
	}
}

// dayAgg accumulates one day bucket of the time series.
type dayAgg struct {
	net      decimal.Decimal
	cogs     decimal.Decimal
	refunds  decimal.Decimal
	discount decimal.Decimal
	shipping decimal.Decimal
	orders   int
}

// fillDailySeries builds continuous one-point-per-day series over the period,
// missing days filled with zeros. Daily net revenue is left unclamped so the
// series sums back to the aggregate.
func fillDailySeries(report *entity.FinancialReport, orders []entity.OrderSummary, period entity.TimeRange) {
	days := make(map[string]*dayAgg)
	for _, o := range orders {
		if o.Status == entity.Cancelled {
			continue
		}
		key := o.Placed.Format(dateLayout)
		d, ok := days[key]
		if !ok {
			d = &dayAgg{}
			days[key] = d
		}
		d.orders++
		d.net = d.net.Add(o.TotalPrice).Sub(o.RefundedAmount).Sub(o.DiscountAmount)
		d.refunds = d.refunds.Add(o.RefundedAmount)
		d.discount = d.discount.Add(o.DiscountAmount)
		d.shipping = d.shipping.Add(o.ShippingCost)
		for _, it := range o.Items {
			d.cogs = d.cogs.Add(itemCOGS(it))
		}
	}

	cur := dayStart(period.From)
	end := dayStart(period.To)
	for !cur.After(end) {
		key := cur.Format(dateLayout)
		d, ok := days[key]
		if !ok {
			d = &dayAgg{}
		}
		profit := d.net.Sub(d.cogs)
		margin := decimal.Zero
		if !d.net.IsZero() {
			margin = profit.Div(d.net).Mul(decimal.NewFromInt(100)).Round(2)
		}
		report.RevenueByDay = append(report.RevenueByDay, point(cur, d.net, d.orders))
		report.COGSByDay = append(report.COGSByDay, point(cur, d.cogs, d.orders))
		report.ProfitByDay = append(report.ProfitByDay, point(cur, profit, d.orders))
		report.MarginByDay = append(report.MarginByDay, point(cur, margin, d.orders))
		report.OrdersByDay = append(report.OrdersByDay, point(cur, decimal.NewFromInt(int64(d.orders)), d.orders))
		report.RefundsByDay = append(report.RefundsByDay, point(cur, d.refunds, d.orders))
		report.DiscountByDay = append(report.DiscountByDay, point(cur, d.discount, d.orders))
		report.ShippingByDay = append(report.ShippingByDay, point(cur, d.shipping, d.orders))
		cur = cur.AddDate(0, 0, 1)
	}
}

func point(date time.Time, value decimal.Decimal, count int) entity.TimeSeriesPoint {
	return entity.TimeSeriesPoint{Date: date, Value: value, Count: count}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func changePct(current, previous decimal.Decimal) *float64 {
	if previous.IsZero() {
		return nil
	}
	diff := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100))
	f, _ := diff.Float64()
	return &f
}

func changePctInt(current, previous int) *float64 {
	if previous == 0 {
		return nil
	}
	f := (float64(current-previous) / float64(previous)) * 100
	return &f
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
