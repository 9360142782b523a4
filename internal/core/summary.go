package core

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// CategoryAmount is a PricePaid sum grouped by category name.
	CategoryAmount struct {
		Name   string
		Amount decimal.Decimal
	}

	// ItemAmount is a PricePaid sum grouped by item name.
	ItemAmount struct {
		Name   string
		Amount decimal.Decimal
	}

	// MonthRollup aggregates one calendar month within a year, including the
	// raw transaction rows for that month.
	MonthRollup struct {
		Year       int
		Month      int // 1-12
		MonthName  string
		Total      decimal.Decimal
		ByCategory []CategoryAmount
		ByItem     []ItemAmount
		Records    []Record
	}

	// YearRollup aggregates one calendar year with its nested months.
	YearRollup struct {
		Year       int
		Total      decimal.Decimal
		ByCategory []CategoryAmount
		ByItem     []ItemAmount
		Months     []MonthRollup
	}

	Summary struct {
		Years []YearRollup
	}

	// TrendPoint is the average price-per-unit of one item over one
	// Year-Month bucket.
	TrendPoint struct {
		Year            int
		Month           int
		AvgPricePerUnit decimal.Decimal
	}

	// ItemTrend is an item's chronologically ordered trend series.
	ItemTrend struct {
		Item   string
		Points []TrendPoint
	}
)

// Label renders the Year-Month bucket as YYYY-MM.
func (p TrendPoint) Label() string {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// BuildSummary computes the year and month rollups for a partition. Years
// are sorted ascending and months in calendar order; an empty partition
// yields an empty summary rather than an error.
func BuildSummary(t Table) Summary {
	if len(t) == 0 {
		return Summary{}
	}

	byYear := map[int]Table{}
	var years []int
	for _, r := range t {
		y := r.Date.Year()
		if _, ok := byYear[y]; !ok {
			years = append(years, y)
		}
		byYear[y] = append(byYear[y], r)
	}
	sort.Ints(years)

	s := Summary{Years: make([]YearRollup, 0, len(years))}
	for _, y := range years {
		rows := byYear[y]
		yr := YearRollup{
			Year:       y,
			Total:      sumPrices(rows),
			ByCategory: groupByCategory(rows),
			ByItem:     groupByItem(rows),
		}

		byMonth := map[int]Table{}
		var months []int
		for _, r := range rows {
			m := r.Date.Month()
			if _, ok := byMonth[m]; !ok {
				months = append(months, m)
			}
			byMonth[m] = append(byMonth[m], r)
		}
		sort.Ints(months)

		for _, m := range months {
			mrows := byMonth[m]
			yr.Months = append(yr.Months, MonthRollup{
				Year:       y,
				Month:      m,
				MonthName:  time.Month(m).String(),
				Total:      sumPrices(mrows),
				ByCategory: groupByCategory(mrows),
				ByItem:     groupByItem(mrows),
				Records:    mrows,
			})
		}
		s.Years = append(s.Years, yr)
	}
	return s
}

// PriceTrend computes the price-per-unit trend series for one item: the mean
// PricePerUnit per Year-Month bucket, in chronological order. A zero
// quantity divides by 1 (see PricePerUnit).
func PriceTrend(t Table, item string) []TrendPoint {
	type bucket struct {
		sum   decimal.Decimal
		count int64
	}
	buckets := map[int]*bucket{} // year*100 + month
	var keys []int
	for _, r := range t {
		if r.Item != item {
			continue
		}
		key := r.Date.Year()*100 + r.Date.Month()
		b, ok := buckets[key]
		if !ok {
			b = &bucket{sum: decimal.Zero}
			buckets[key] = b
			keys = append(keys, key)
		}
		b.sum = b.sum.Add(PricePerUnit(r.PricePaid, r.Quantity))
		b.count++
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Ints(keys)

	points := make([]TrendPoint, 0, len(keys))
	for _, key := range keys {
		b := buckets[key]
		points = append(points, TrendPoint{
			Year:            key / 100,
			Month:           key % 100,
			AvgPricePerUnit: b.sum.DivRound(decimal.NewFromInt(b.count), 6),
		})
	}
	return points
}

// PriceTrends computes the trend series for every distinct item in the
// partition, items in first-seen order.
func PriceTrends(t Table) []ItemTrend {
	var out []ItemTrend
	for _, item := range t.Items() {
		out = append(out, ItemTrend{Item: item, Points: PriceTrend(t, item)})
	}
	return out
}

// Items returns the distinct item names in first-seen order.
func (t Table) Items() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, r := range t {
		if r.Item == "" {
			continue
		}
		if _, ok := seen[r.Item]; ok {
			continue
		}
		seen[r.Item] = struct{}{}
		out = append(out, r.Item)
	}
	return out
}

func sumPrices(rows Table) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.PricePaid)
	}
	return total
}

func groupByCategory(rows Table) []CategoryAmount {
	sums := map[string]decimal.Decimal{}
	var order []string
	for _, r := range rows {
		if _, ok := sums[r.Category]; !ok {
			order = append(order, r.Category)
		}
		sums[r.Category] = sums[r.Category].Add(r.PricePaid)
	}
	out := make([]CategoryAmount, 0, len(order))
	for _, name := range order {
		out = append(out, CategoryAmount{Name: name, Amount: sums[name]})
	}
	return out
}

func groupByItem(rows Table) []ItemAmount {
	sums := map[string]decimal.Decimal{}
	var order []string
	for _, r := range rows {
		if _, ok := sums[r.Item]; !ok {
			order = append(order, r.Item)
		}
		sums[r.Item] = sums[r.Item].Add(r.PricePaid)
	}
	out := make([]ItemAmount, 0, len(order))
	for _, name := range order {
		out = append(out, ItemAmount{Name: name, Amount: sums[name]})
	}
	return out
}
