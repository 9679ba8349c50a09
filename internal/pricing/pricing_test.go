package pricing

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segwise-dev/segwise/internal/metrics"
	"github.com/segwise-dev/segwise/internal/model"
	"github.com/segwise-dev/segwise/internal/segment"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func sampleRow() metrics.Row {
	return metrics.Row{
		Month:      model.Month{Year: 2025, Month: time.January},
		Segment:    segment.Segment{Balance: 2, Spend: 1},
		UserCount:  10,
		AvgBalance: dec("200"),
		Families: map[model.Family]metrics.FamilyMetrics{
			model.FamilyCard:           {TxCount: 20, AvgPerTx: dec("50"), AvgPerUser: dec("100")},
			model.FamilyInvestmentBuy:  {TxCount: 4, AvgPerTx: dec("100"), AvgPerUser: dec("40")},
			model.FamilyInvestmentSell: {TxCount: 2, AvgPerTx: dec("50"), AvgPerUser: dec("10")},
			model.FamilyCryptoWithdraw: {TxCount: 3, AvgPerTx: dec("70"), AvgPerUser: dec("21")},
			model.FamilyFiatDeposit:    {TxCount: 5, AvgPerTx: dec("40"), AvgPerUser: dec("20")},
		},
	}
}

func TestRevenueBySegment(t *testing.T) {
	fees := FeeSchedule{
		CardFeePct:            0.01,
		InvestmentFeePct:      0.02,
		CryptoWithdrawFee:     5,
		FiatTransferFeePct:    0.005,
		MonthlyMaintenanceFee: 2,
	}

	out := RevenueBySegment([]metrics.Row{sampleRow()}, fees)
	require.Len(t, out, 1)

	r := out[0]
	assert.Equal(t, "B:<500_S:<10", r.SegmentLabel)
	// card volume 1000 * 1%
	assert.True(t, r.CardRevenue.Equal(dec("10")), "card %s", r.CardRevenue)
	// investment volume 400+100 * 2%
	assert.True(t, r.InvestmentRevenue.Equal(dec("10")))
	// 3 withdrawals * 5
	assert.True(t, r.WithdrawRevenue.Equal(dec("15")))
	// fiat volume 200 * 0.5%
	assert.True(t, r.FiatRevenue.Equal(dec("1")))
	// 10 users * 2
	assert.True(t, r.MaintenanceRevenue.Equal(dec("20")))
	assert.True(t, r.TotalRevenue.Equal(dec("56")))
}

func TestRevenueBySegment_ZeroActivity(t *testing.T) {
	row := metrics.Row{
		Month:    model.Month{Year: 2025, Month: time.January},
		Segment:  segment.Segment{},
		Families: map[model.Family]metrics.FamilyMetrics{},
	}
	out := RevenueBySegment([]metrics.Row{row}, DefaultSchedule())
	require.Len(t, out, 1)
	assert.True(t, out[0].TotalRevenue.IsZero())
}

func TestCompareScenarios(t *testing.T) {
	rows := []metrics.Row{sampleRow()}
	base := FeeSchedule{CardFeePct: 0.01}
	scenarios := map[string]FeeSchedule{
		"aggressive": {CardFeePct: 0.02},
		"discount":   {CardFeePct: 0.005},
	}

	out := CompareScenarios(rows, base, scenarios)
	require.Len(t, out, 3)

	assert.Equal(t, "current", out[0].Name)
	assert.True(t, out[0].TotalRevenue.Equal(dec("10")))
	assert.True(t, out[0].RevenuePerUser.Equal(dec("1")))

	assert.Equal(t, "aggressive", out[1].Name)
	assert.True(t, out[1].TotalRevenue.Equal(dec("20")))
	assert.True(t, out[1].RevenueChange.Equal(dec("10")))
	assert.True(t, out[1].RevenueChangePct.Equal(dec("100")))

	assert.Equal(t, "discount", out[2].Name)
	assert.True(t, out[2].RevenueChange.Equal(dec("-5")))
}

func TestLoadSaveSchedules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fees.yaml")
	sf := &ScheduleFile{
		Base: DefaultSchedule(),
		Scenarios: map[string]FeeSchedule{
			"premium": {CardFeePct: 0.005, MonthlyMaintenanceFee: 19.99},
		},
	}
	require.NoError(t, SaveSchedules(path, sf))

	loaded, err := LoadSchedules(path)
	require.NoError(t, err)
	assert.Equal(t, sf, loaded)
}
