package stats

import (
	"math"
	"testing"
	"time"

	"github.com/dvloznov/expense-ledger/internal/domain"
)

func expense(category string, amount float64, date time.Time) domain.Transaction {
	return domain.Transaction{
		ID:          category + date.String(),
		Amount:      amount,
		Kind:        domain.KindExpense,
		Category:    category,
		Description: category,
		Date:        date,
		CreatedAt:   date,
	}
}

func income(amount float64, date time.Time) domain.Transaction {
	return domain.Transaction{
		ID:       "income" + date.String(),
		Amount:   amount,
		Kind:     domain.KindIncome,
		Category: "工资",
		Date:     date,
	}
}

func TestComputeMonth(t *testing.T) {
	anchor := time.Date(2026, 2, 15, 10, 0, 0, 0, time.Local)
	txs := []domain.Transaction{
		expense("餐饮", 9.7, time.Date(2026, 2, 11, 20, 34, 31, 0, time.Local)),
		expense("餐饮", 30.3, time.Date(2026, 2, 11, 12, 0, 0, 0, time.Local)),
		expense("交通", 25, time.Date(2026, 2, 1, 8, 0, 0, 0, time.Local)),
		expense("购物", 100, time.Date(2026, 1, 31, 23, 59, 59, 0, time.Local)), // outside
		expense("购物", 100, time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)),     // outside
		income(8000, time.Date(2026, 2, 10, 9, 0, 0, 0, time.Local)),           // filtered
	}

	sum, err := Compute(txs, PeriodMonth, anchor)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if sum.Total != 65 {
		t.Errorf("Total = %v, want 65", sum.Total)
	}

	// February 2026 has 28 days.
	if len(sum.Series) != 28 {
		t.Fatalf("Series has %d buckets, want 28", len(sum.Series))
	}
	if want := 65.0 / 28; math.Abs(sum.Average-want) > 1e-9 {
		t.Errorf("Average = %v, want %v", sum.Average, want)
	}

	if sum.Series[10].Amount != 40 { // Feb 11
		t.Errorf("bucket for day 11 = %v, want 40", sum.Series[10].Amount)
	}
	if sum.Series[0].Amount != 25 { // Feb 1
		t.Errorf("bucket for day 1 = %v, want 25", sum.Series[0].Amount)
	}

	zeroFilled := 0
	for _, b := range sum.Series {
		if b.Amount == 0 {
			zeroFilled++
		}
	}
	if zeroFilled != 26 {
		t.Errorf("%d zero buckets, want 26", zeroFilled)
	}
}

func TestComputeRankingInvariants(t *testing.T) {
	anchor := time.Date(2026, 2, 15, 0, 0, 0, 0, time.Local)
	txs := []domain.Transaction{
		expense("餐饮", 40, time.Date(2026, 2, 3, 0, 0, 0, 0, time.Local)),
		expense("交通", 25, time.Date(2026, 2, 5, 0, 0, 0, 0, time.Local)),
		expense("购物", 135, time.Date(2026, 2, 20, 0, 0, 0, 0, time.Local)),
	}

	sum, err := Compute(txs, PeriodMonth, anchor)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	var rankTotal, pctTotal float64
	for _, r := range sum.Ranking {
		rankTotal += r.Amount
		pctTotal += r.Percent
	}
	if math.Abs(rankTotal-sum.Total) > 1e-9 {
		t.Errorf("ranking amounts sum to %v, want window total %v", rankTotal, sum.Total)
	}
	if math.Abs(pctTotal-100) > 1e-9 {
		t.Errorf("percentages sum to %v, want 100", pctTotal)
	}

	for i := 1; i < len(sum.Ranking); i++ {
		if sum.Ranking[i].Amount > sum.Ranking[i-1].Amount {
			t.Errorf("ranking not sorted descending at %d: %+v", i, sum.Ranking)
		}
	}
	if sum.Ranking[0].Category != "购物" {
		t.Errorf("top category = %q, want 购物", sum.Ranking[0].Category)
	}
}

func TestComputeEmptyWindow(t *testing.T) {
	sum, err := Compute(nil, PeriodMonth, time.Date(2026, 2, 1, 0, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if sum.Total != 0 || sum.Average != 0 {
		t.Errorf("Total/Average = %v/%v, want 0/0", sum.Total, sum.Average)
	}
	if len(sum.Ranking) != 0 {
		t.Errorf("Ranking has %d entries, want 0", len(sum.Ranking))
	}
	for _, b := range sum.Series {
		if b.Amount != 0 {
			t.Errorf("expected zero-filled series, got %+v", b)
		}
	}
}

func TestComputeWeekMondayStart(t *testing.T) {
	// 2026-02-11 is a Wednesday; its week runs Mon 2026-02-09 .. Sun 2026-02-15.
	anchor := time.Date(2026, 2, 11, 15, 0, 0, 0, time.Local)
	txs := []domain.Transaction{
		expense("餐饮", 10, time.Date(2026, 2, 9, 0, 0, 0, 0, time.Local)),      // Monday, in
		expense("餐饮", 20, time.Date(2026, 2, 15, 23, 59, 0, 0, time.Local)),   // Sunday, in
		expense("餐饮", 99, time.Date(2026, 2, 8, 23, 59, 59, 0, time.Local)),   // previous Sunday, out
		expense("餐饮", 99, time.Date(2026, 2, 16, 0, 0, 0, 0, time.Local)),     // next Monday, out
	}

	sum, err := Compute(txs, PeriodWeek, anchor)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	if sum.Total != 30 {
		t.Errorf("Total = %v, want 30", sum.Total)
	}
	if len(sum.Series) != 7 {
		t.Fatalf("Series has %d buckets, want 7", len(sum.Series))
	}
	if sum.Series[0].Label != "Mon" || sum.Series[6].Label != "Sun" {
		t.Errorf("series runs %s..%s, want Mon..Sun", sum.Series[0].Label, sum.Series[6].Label)
	}
	if sum.Series[0].Amount != 10 {
		t.Errorf("Monday bucket = %v, want 10", sum.Series[0].Amount)
	}
	if sum.Series[6].Amount != 20 {
		t.Errorf("Sunday bucket = %v, want 20", sum.Series[6].Amount)
	}
	if want := 30.0 / 7; math.Abs(sum.Average-want) > 1e-9 {
		t.Errorf("Average = %v, want %v", sum.Average, want)
	}
}

func TestComputeYear(t *testing.T) {
	anchor := time.Date(2026, 6, 1, 0, 0, 0, 0, time.Local)
	txs := []domain.Transaction{
		expense("餐饮", 120, time.Date(2026, 1, 10, 0, 0, 0, 0, time.Local)),
		expense("交通", 240, time.Date(2026, 12, 31, 23, 0, 0, 0, time.Local)),
		expense("购物", 99, time.Date(2025, 12, 31, 23, 0, 0, 0, time.Local)), // out
	}

	sum, err := Compute(txs, PeriodYear, anchor)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if sum.Total != 360 {
		t.Errorf("Total = %v, want 360", sum.Total)
	}
	if len(sum.Series) != 12 {
		t.Fatalf("Series has %d buckets, want 12", len(sum.Series))
	}
	if sum.Series[0].Amount != 120 || sum.Series[11].Amount != 240 {
		t.Errorf("Jan/Dec buckets = %v/%v, want 120/240", sum.Series[0].Amount, sum.Series[11].Amount)
	}
	if sum.Average != 30 {
		t.Errorf("Average = %v, want 30", sum.Average)
	}
}

func TestComputeMonthLengths(t *testing.T) {
	tests := []struct {
		anchor time.Time
		days   int
	}{
		{time.Date(2026, 2, 10, 0, 0, 0, 0, time.Local), 28},
		{time.Date(2028, 2, 10, 0, 0, 0, 0, time.Local), 29}, // leap year
		{time.Date(2026, 4, 10, 0, 0, 0, 0, time.Local), 30},
		{time.Date(2026, 1, 10, 0, 0, 0, 0, time.Local), 31},
	}

	for _, tt := range tests {
		sum, err := Compute(nil, PeriodMonth, tt.anchor)
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		if len(sum.Series) != tt.days {
			t.Errorf("%v: %d buckets, want %d", tt.anchor, len(sum.Series), tt.days)
		}
	}
}

func TestComputeUnknownPeriod(t *testing.T) {
	if _, err := Compute(nil, Period("decade"), time.Now()); err == nil {
		t.Error("expected error for unknown period")
	}
}
