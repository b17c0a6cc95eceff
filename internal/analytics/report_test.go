package analytics

import (
	"testing"
	"time"

	"github.com/aurelab/aurelab-manager/internal/entity"
	gerr "github.com/aurelab/aurelab-manager/internal/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func order(placed time.Time, status entity.OrderStatusName, total float64, items ...entity.OrderItemSummary) entity.OrderSummary {
	return entity.OrderSummary{
		Placed:     placed,
		Status:     status,
		TotalPrice: decimal.NewFromFloat(total),
		Items:      items,
	}
}

func item(price float64, qty int) entity.OrderItemSummary {
	return entity.OrderItemSummary{
		ProductPrice: decimal.NewFromFloat(price),
		Quantity:     qty,
	}
}

func TestParsePeriod(t *testing.T) {
	period, err := ParsePeriod("2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Equal(t, day("2026-01-01"), period.From)
	assert.Equal(t, day("2026-01-31").Add(24*time.Hour-time.Nanosecond), period.To)

	_, err = ParsePeriod("2026-31-01", "2026-01-31")
	require.ErrorIs(t, err, gerr.ErrInvalidPeriod)

	_, err = ParsePeriod("2026-01-01", "not-a-date")
	require.ErrorIs(t, err, gerr.ErrInvalidPeriod)

	_, err = ParsePeriod("2026-02-01", "2026-01-01")
	require.ErrorIs(t, err, gerr.ErrInvalidPeriod)

	// Single day period covers the whole day.
	period, err = ParsePeriod("2026-03-15", "2026-03-15")
	require.NoError(t, err)
	placed := day("2026-03-15").Add(18 * time.Hour)
	assert.True(t, placed.After(period.From) && placed.Before(period.To))
}

func TestBuildReport(t *testing.T) {
	period, err := ParsePeriod("2026-06-01", "2026-06-30")
	require.NoError(t, err)

	orders := []entity.OrderSummary{
		order(day("2026-06-02"), entity.Delivered, 100, item(100, 1)),
		order(day("2026-06-10"), entity.Processing, 200, item(200, 1)),
	}

	report := BuildReport(orders, period)

	// Costs fall back to price * DefaultCostRatio: 300 * 0.4 = 120.
	assert.True(t, report.GrossRevenue.Value.Equal(decimal.NewFromInt(300)), "gross %s", report.GrossRevenue.Value)
	assert.True(t, report.NetRevenue.Value.Equal(decimal.NewFromInt(300)))
	assert.True(t, report.COGS.Value.Equal(decimal.NewFromInt(120)), "cogs %s", report.COGS.Value)
	assert.True(t, report.Profit.Value.Equal(decimal.NewFromInt(180)))
	assert.Equal(t, "60", report.MarginPct.Value.String())
	assert.True(t, report.OrdersCount.Value.Equal(decimal.NewFromInt(2)))
	assert.True(t, report.AvgOrderValue.Value.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, "50.00", report.DeliveryRate)
}

func TestBuildReportSnapshottedCost(t *testing.T) {
	period, err := ParsePeriod("2026-06-01", "2026-06-30")
	require.NoError(t, err)

	it := item(100, 2)
	it.ProductCost = decimal.NewNullDecimal(decimal.NewFromInt(30))
	orders := []entity.OrderSummary{
		order(day("2026-06-05"), entity.Shipped, 200, it),
	}

	report := BuildReport(orders, period)
	assert.True(t, report.COGS.Value.Equal(decimal.NewFromInt(60)), "cogs %s", report.COGS.Value)
	assert.True(t, report.Profit.Value.Equal(decimal.NewFromInt(140)))
}

func TestBuildReportCancelledExcluded(t *testing.T) {
	period, err := ParsePeriod("2026-06-01", "2026-06-30")
	require.NoError(t, err)

	orders := []entity.OrderSummary{
		order(day("2026-06-02"), entity.Delivered, 100, item(100, 1)),
		order(day("2026-06-03"), entity.Cancelled, 500, item(500, 1)),
	}

	report := BuildReport(orders, period)
	assert.True(t, report.GrossRevenue.Value.Equal(decimal.NewFromInt(100)))
	assert.True(t, report.OrdersCount.Value.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, "100.00", report.DeliveryRate)

	// Cancelled still shows in the status funnel.
	var cancelled int
	for _, sc := range report.OrdersByStatus {
		if sc.StatusName == "cancelled" {
			cancelled = sc.Count
		}
	}
	assert.Equal(t, 1, cancelled)
}

func TestBuildReportNetRevenueClamped(t *testing.T) {
	period, err := ParsePeriod("2026-06-01", "2026-06-30")
	require.NoError(t, err)

	o := order(day("2026-06-02"), entity.Delivered, 100, item(100, 1))
	o.RefundedAmount = decimal.NewFromInt(150)
	report := BuildReport([]entity.OrderSummary{o}, period)

	assert.True(t, report.NetRevenue.Value.IsZero(), "net %s", report.NetRevenue.Value)
	// Profit still reflects the cost spent.
	assert.True(t, report.Profit.Value.Equal(decimal.NewFromInt(-40)), "profit %s", report.Profit.Value)
}

func TestBuildReportDailySeries(t *testing.T) {
	period, err := ParsePeriod("2026-06-01", "2026-06-10")
	require.NoError(t, err)

	orders := []entity.OrderSummary{
		order(day("2026-06-01"), entity.Delivered, 100, item(100, 1)),
		order(day("2026-06-05"), entity.Processing, 200, item(200, 1)),
		order(day("2026-06-05"), entity.Processing, 50, item(50, 1)),
	}

	report := BuildReport(orders, period)
	require.Len(t, report.RevenueByDay, 10)

	sum := decimal.Zero
	totalOrders := 0
	for _, p := range report.RevenueByDay {
		sum = sum.Add(p.Value)
		totalOrders += p.Count
	}
	assert.True(t, sum.Equal(report.NetRevenue.Value), "daily sum %s vs aggregate %s", sum, report.NetRevenue.Value)
	assert.Equal(t, 3, totalOrders)

	// Gap days are zero-filled.
	assert.True(t, report.RevenueByDay[1].Value.IsZero())
	assert.Equal(t, day("2026-06-02"), report.RevenueByDay[1].Date)
}

func TestBuildReportComparisonWindows(t *testing.T) {
	period, err := ParsePeriod("2026-06-01", "2026-06-30")
	require.NoError(t, err)

	orders := []entity.OrderSummary{
		// Current period
		order(day("2026-06-10"), entity.Delivered, 200, item(200, 1)),
		// One month earlier
		order(day("2026-05-10"), entity.Delivered, 100, item(100, 1)),
		// One year earlier
		order(day("2025-06-10"), entity.Delivered, 400, item(400, 1)),
	}

	report := BuildReport(orders, period)

	require.NotNil(t, report.MonthOverMonth)
	assert.True(t, report.MonthOverMonth.NetRevenue.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, report.YearOverYear)
	assert.True(t, report.YearOverYear.NetRevenue.Equal(decimal.NewFromInt(400)))

	require.NotNil(t, report.NetRevenue.ChangePct)
	assert.InDelta(t, 100.0, *report.NetRevenue.ChangePct, 0.001)
}

func TestBuildReportMarginTrend(t *testing.T) {
	period, err := ParsePeriod("2026-06-01", "2026-06-30")
	require.NoError(t, err)

	cheap := item(100, 1)
	cheap.ProductCost = decimal.NewNullDecimal(decimal.NewFromInt(80))
	pricey := item(100, 1)
	pricey.ProductCost = decimal.NewNullDecimal(decimal.NewFromInt(20))

	orders := []entity.OrderSummary{
		order(day("2026-06-02"), entity.Delivered, 100, cheap),
		order(day("2026-06-28"), entity.Delivered, 100, pricey),
	}

	report := BuildReport(orders, period)
	assert.Equal(t, "up", report.MarginTrend.Direction)
	assert.Equal(t, "20", report.MarginTrend.FirstHalfMarginPct.String())
	assert.Equal(t, "80", report.MarginTrend.SecondHalfMarginPct.String())
}

func TestBuildReportEmpty(t *testing.T) {
	period, err := ParsePeriod("2026-06-01", "2026-06-30")
	require.NoError(t, err)

	report := BuildReport(nil, period)
	assert.True(t, report.GrossRevenue.Value.IsZero())
	assert.True(t, report.Profit.Value.IsZero())
	assert.True(t, report.MarginPct.Value.IsZero())
	assert.Equal(t, "0.00", report.DeliveryRate)
	assert.Nil(t, report.NetRevenue.ChangePct)
	assert.Len(t, report.RevenueByDay, 30)
}
