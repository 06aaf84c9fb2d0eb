// Package stats derives per-period and per-category views over the
// transaction collection. Everything here is a pure read; window boundaries
// follow calendar semantics, not fixed-length durations.
package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/dvloznov/expense-ledger/internal/domain"
)

// Period selects the statistics window shape.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	return p == PeriodWeek || p == PeriodMonth || p == PeriodYear
}

// Bucket is one entry of the time series: a weekday, a day of month or a
// month, depending on the period. Buckets with no transactions stay at zero.
type Bucket struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// CategoryRank is one category's share of the window total.
type CategoryRank struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  float64 `json:"percent"`
}

// Summary is the derived view for one window.
type Summary struct {
	Period  Period         `json:"period"`
	Start   time.Time      `json:"start"`
	End     time.Time      `json:"end"` // exclusive
	Total   float64        `json:"total"`
	Average float64        `json:"average"`
	Series  []Bucket       `json:"series"`
	Ranking []CategoryRank `json:"ranking"`
}

// Compute aggregates the expense transactions falling inside the window that
// contains anchor. Week windows start on Monday; month and year windows are
// calendar months and years.
func Compute(txs []domain.Transaction, period Period, anchor time.Time) (*Summary, error) {
	if !period.Valid() {
		return nil, fmt.Errorf("stats: unknown period %q", period)
	}

	start, end := windowBounds(period, anchor)
	series := emptySeries(period, start)
	divisor := averageDivisor(period, start)

	total := 0.0
	byCategory := make(map[string]float64)

	for _, tx := range txs {
		if tx.Kind != domain.KindExpense {
			continue
		}
		if tx.Date.Before(start) || !tx.Date.Before(end) {
			continue
		}
		total += tx.Amount
		byCategory[tx.Category] += tx.Amount
		series[bucketIndex(period, tx.Date)].Amount += tx.Amount
	}

	ranking := make([]CategoryRank, 0, len(byCategory))
	for cat, amount := range byCategory {
		r := CategoryRank{Category: cat, Amount: amount}
		if total > 0 {
			r.Percent = amount / total * 100
		}
		ranking = append(ranking, r)
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Amount > ranking[j].Amount
	})

	return &Summary{
		Period:  period,
		Start:   start,
		End:     end,
		Total:   total,
		Average: total / divisor,
		Series:  series,
		Ranking: ranking,
	}, nil
}

// windowBounds returns the [start, end) window containing anchor.
func windowBounds(period Period, anchor time.Time) (time.Time, time.Time) {
	y, m, d := anchor.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, anchor.Location())

	switch period {
	case PeriodWeek:
		// Monday-based week: Monday offset 0 ... Sunday offset 6.
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7)
	case PeriodMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, anchor.Location())
		return start, start.AddDate(0, 1, 0)
	default: // PeriodYear
		start := time.Date(y, 1, 1, 0, 0, 0, 0, anchor.Location())
		return start, start.AddDate(1, 0, 0)
	}
}

func averageDivisor(period Period, start time.Time) float64 {
	switch period {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return float64(daysInMonth(start))
	default:
		return 12
	}
}

func emptySeries(period Period, start time.Time) []Bucket {
	switch period {
	case PeriodWeek:
		buckets := make([]Bucket, 7)
		for i := range buckets {
			buckets[i].Label = start.AddDate(0, 0, i).Weekday().String()[:3]
		}
		return buckets
	case PeriodMonth:
		buckets := make([]Bucket, daysInMonth(start))
		for i := range buckets {
			buckets[i].Label = fmt.Sprintf("%02d", i+1)
		}
		return buckets
	default:
		buckets := make([]Bucket, 12)
		for i := range buckets {
			buckets[i].Label = fmt.Sprintf("%02d", i+1)
		}
		return buckets
	}
}

func bucketIndex(period Period, ts time.Time) int {
	switch period {
	case PeriodWeek:
		return (int(ts.Weekday()) + 6) % 7
	case PeriodMonth:
		return ts.Day() - 1
	default:
		return int(ts.Month()) - 1
	}
}

func daysInMonth(start time.Time) int {
	return start.AddDate(0, 1, -1).Day()
}
